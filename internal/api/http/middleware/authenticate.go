package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/dtroode/campuschat-server/internal/logger"
	"github.com/dtroode/campuschat-server/internal/model"
)

var (
	errMissingToken = errors.New("missing authorization token")
	errInvalidToken = errors.New("invalid authorization token")
	errBanned       = errors.New("account is banned")
)

// TokenParser resolves the user id behind a bearer token.
type TokenParser interface {
	ParseAccessToken(token string) (uuid.UUID, error)
}

// UserLookup loads the caller's directory entry.
type UserLookup interface {
	Get(ctx context.Context, id uuid.UUID) (model.User, error)
}

// Authenticate validates bearer tokens and injects the user id into the request context.
type Authenticate struct {
	tokens         TokenParser
	users          UserLookup
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(tokens TokenParser, users UserLookup, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{tokens: tokens, users: users, contextManager: contextManager, logger: logger}
}

// Handle rejects requests without a valid token with 401 and requests from
// unknown or banned users with 403.
func (m *Authenticate) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := m.authenticateUser(r)
		if err != nil {
			m.logger.Debug("Rejected request", "path", r.URL.Path, "error", err)
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		user, err := m.users.Get(r.Context(), userID)
		switch {
		case errors.Is(err, model.ErrNotFound):
			http.Error(w, model.ErrForbidden.Error(), http.StatusForbidden)
			return
		case err != nil:
			m.logger.Error("Failed to load caller", "user_id", userID, "error", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		case user.IsBanned:
			http.Error(w, errBanned.Error(), http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r.WithContext(m.contextManager.SetUserIDToContext(r.Context(), userID)))
	})
}

func (m *Authenticate) authenticateUser(r *http.Request) (uuid.UUID, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	tokenString, ok := strings.CutPrefix(header, "Bearer ")
	// EventSource cannot set headers, so the live stream passes the token as a query parameter.
	if !ok {
		tokenString = r.URL.Query().Get("access_token")
	}
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return uuid.Nil, errMissingToken
	}

	userID, err := m.tokens.ParseAccessToken(tokenString)
	if err != nil || userID == uuid.Nil {
		return uuid.Nil, errInvalidToken
	}

	return userID, nil
}
