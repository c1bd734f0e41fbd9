package handler

import (
	"errors"
	"net/http"

	"github.com/dtroode/campuschat-server/internal/livesync"
	"github.com/dtroode/campuschat-server/internal/logger"
	"github.com/dtroode/campuschat-server/internal/model"
)

var errUnauthenticated = errors.New("unauthenticated")

type errorResponse struct {
	Error   string        `json:"error"`
	Verdict model.Verdict `json:"verdict,omitempty"`
	Reason  string        `json:"reason,omitempty"`
}

// handleError writes the status matching err. Unknown errors are logged and
// reported as 500 without details.
func handleError(w http.ResponseWriter, logger *logger.Logger, err error) {
	var permErr *model.PermissionError
	switch {
	case errors.As(err, &permErr):
		writeJSON(w, http.StatusForbidden, errorResponse{
			Error:   model.ErrPermissionDenied.Error(),
			Verdict: permErr.Verdict,
			Reason:  permErr.Verdict.Reason(),
		})
	case errors.Is(err, errUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
	case errors.Is(err, model.ErrForbidden), errors.Is(err, model.ErrPermissionDenied):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: model.ErrForbidden.Error()})
	case errors.Is(err, model.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: model.ErrNotFound.Error()})
	case errors.Is(err, model.ErrTransientWrite):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: model.ErrTransientWrite.Error()})
	case errors.Is(err, model.ErrSelfConversation),
		errors.Is(err, model.ErrEmptyMessage),
		errors.Is(err, model.ErrInvalidArgument):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, livesync.ErrSessionClosed):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		logger.Error("Unhandled request error", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}
