package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/dtroode/campuschat-server/internal/logger"
	"github.com/dtroode/campuschat-server/internal/model"
)

// DirectoryService defines the directory operations exposed over HTTP.
type DirectoryService interface {
	Get(ctx context.Context, id uuid.UUID) (model.User, error)
	ListPeers(ctx context.Context, actorID uuid.UUID) ([]model.User, error)
	Block(ctx context.Context, actorID, targetID uuid.UUID) error
	Unblock(ctx context.Context, actorID, targetID uuid.UUID) error
	SetAllowChat(ctx context.Context, actorID uuid.UUID, allow bool) error
	AddToWhitelist(ctx context.Context, actorID, targetID uuid.UUID) error
	RemoveFromWhitelist(ctx context.Context, actorID, targetID uuid.UUID) error
	Follow(ctx context.Context, actorID, targetID uuid.UUID) error
	Unfollow(ctx context.Context, actorID, targetID uuid.UUID) error
}

// ErasureService removes accounts.
type ErasureService interface {
	EraseAccount(ctx context.Context, executorID, targetID uuid.UUID) (model.ErasureResult, error)
}

// Directory handles directory endpoints. Every relationship mutation acts on
// the caller's own record.
type Directory struct {
	directory      DirectoryService
	erasure        ErasureService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewDirectory creates a new Directory handler.
func NewDirectory(
	directory DirectoryService,
	erasure ErasureService,
	contextManager model.ContextManager,
	logger *logger.Logger,
) *Directory {
	return &Directory{
		directory:      directory,
		erasure:        erasure,
		contextManager: contextManager,
		logger:         logger,
	}
}

type allowChatRequest struct {
	Allow *bool `json:"allow"`
}

// ListPeers returns everyone but the caller, admins first.
func (h *Directory) ListPeers(w http.ResponseWriter, r *http.Request) {
	userID, err := caller(r, h.contextManager)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	peers, err := h.directory.ListPeers(r.Context(), userID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	if peers == nil {
		peers = []model.User{}
	}
	writeJSON(w, http.StatusOK, peers)
}

// Me returns the caller's own entry.
func (h *Directory) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := caller(r, h.contextManager)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	h.writeUser(w, r, userID)
}

// Get returns the entry in the path.
func (h *Directory) Get(w http.ResponseWriter, r *http.Request) {
	if _, err := caller(r, h.contextManager); err != nil {
		handleError(w, h.logger, err)
		return
	}
	id, err := pathUUID(r, "userID")
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	h.writeUser(w, r, id)
}

// SetAllowChat opens or closes the caller's chat.
func (h *Directory) SetAllowChat(w http.ResponseWriter, r *http.Request) {
	userID, err := caller(r, h.contextManager)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	var req allowChatRequest
	if err := decodeBody(w, r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}
	if req.Allow == nil {
		handleError(w, h.logger, model.ErrInvalidArgument)
		return
	}

	if err := h.directory.SetAllowChat(r.Context(), userID, *req.Allow); err != nil {
		handleError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Directory) Block(w http.ResponseWriter, r *http.Request) {
	h.relate(w, r, h.directory.Block)
}

func (h *Directory) Unblock(w http.ResponseWriter, r *http.Request) {
	h.relate(w, r, h.directory.Unblock)
}

func (h *Directory) Follow(w http.ResponseWriter, r *http.Request) {
	h.relate(w, r, h.directory.Follow)
}

func (h *Directory) Unfollow(w http.ResponseWriter, r *http.Request) {
	h.relate(w, r, h.directory.Unfollow)
}

func (h *Directory) AddToWhitelist(w http.ResponseWriter, r *http.Request) {
	h.relate(w, r, h.directory.AddToWhitelist)
}

func (h *Directory) RemoveFromWhitelist(w http.ResponseWriter, r *http.Request) {
	h.relate(w, r, h.directory.RemoveFromWhitelist)
}

// Erase removes the account in the path. Only its owner or an admin may do it.
func (h *Directory) Erase(w http.ResponseWriter, r *http.Request) {
	userID, err := caller(r, h.contextManager)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	targetID, err := pathUUID(r, "userID")
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	result, err := h.erasure.EraseAccount(r.Context(), userID, targetID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	h.logger.Info("Account erased", "executor", userID, "target", targetID,
		"messages", result.MessagesDeleted, "notifications", result.NotificationsDeleted)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Directory) writeUser(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	user, err := h.directory.Get(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Directory) relate(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, actorID, targetID uuid.UUID) error,
) {
	userID, err := caller(r, h.contextManager)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	targetID, err := pathUUID(r, "userID")
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	if err := op(r.Context(), userID, targetID); err != nil {
		handleError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
