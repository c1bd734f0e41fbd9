package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/dtroode/campuschat-server/internal/logger"
	"github.com/dtroode/campuschat-server/internal/model"
)

// NotificationService defines the inbox operations exposed over HTTP.
type NotificationService interface {
	List(ctx context.Context, recipientID uuid.UUID) ([]model.Notification, error)
	MarkRead(ctx context.Context, recipientID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error)
	Delete(ctx context.Context, recipientID, id uuid.UUID) error
}

// Notifications handles inbox endpoints.
type Notifications struct {
	notifications  NotificationService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewNotifications creates a new Notifications handler.
func NewNotifications(notifications NotificationService, contextManager model.ContextManager, logger *logger.Logger) *Notifications {
	return &Notifications{notifications: notifications, contextManager: contextManager, logger: logger}
}

type inboxResponse struct {
	Notifications []model.Notification `json:"notifications"`
	Unread        int                  `json:"unread"`
}

type markAllResponse struct {
	Updated int64 `json:"updated"`
}

// List returns the caller's notifications, newest first, with the unread count.
func (h *Notifications) List(w http.ResponseWriter, r *http.Request) {
	userID, err := caller(r, h.contextManager)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	list, err := h.notifications.List(r.Context(), userID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	resp := inboxResponse{Notifications: list}
	if resp.Notifications == nil {
		resp.Notifications = []model.Notification{}
	}
	for _, n := range list {
		if !n.Read {
			resp.Unread++
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// MarkRead marks one of the caller's notifications as read.
func (h *Notifications) MarkRead(w http.ResponseWriter, r *http.Request) {
	h.withNotification(w, r, h.notifications.MarkRead)
}

// Delete removes one of the caller's notifications. Deleting twice succeeds.
func (h *Notifications) Delete(w http.ResponseWriter, r *http.Request) {
	h.withNotification(w, r, h.notifications.Delete)
}

// MarkAllRead marks every unread notification of the caller as read.
func (h *Notifications) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, err := caller(r, h.contextManager)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	updated, err := h.notifications.MarkAllRead(r.Context(), userID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, markAllResponse{Updated: updated})
}

func (h *Notifications) withNotification(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, recipientID, id uuid.UUID) error,
) {
	userID, err := caller(r, h.contextManager)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	id, err := pathUUID(r, "notificationID")
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	if err := op(r.Context(), userID, id); err != nil {
		handleError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
