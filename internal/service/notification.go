package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dtroode/campuschat-server/internal/logger"
	"github.com/dtroode/campuschat-server/internal/model"
)

// Dispatcher creates inbox notifications.
type Dispatcher interface {
	Dispatch(ctx context.Context, params model.DispatchParams) (model.Notification, error)
}

var _ Dispatcher = (*Notifications)(nil)

// Notifications manages recipients' inboxes.
type Notifications struct {
	store   model.NotificationStore
	feed    model.ChangeFeed
	auditor *Auditor
	logger  *logger.Logger
}

func NewNotifications(
	store model.NotificationStore,
	feed model.ChangeFeed,
	auditor *Auditor,
	logger *logger.Logger,
) *Notifications {
	return &Notifications{
		store:   store,
		feed:    feed,
		auditor: auditor,
		logger:  logger,
	}
}

// Dispatch creates an unread notification for the recipient. The write is
// retried once with the same id. A failure is logged, audited and returned.
func (s *Notifications) Dispatch(ctx context.Context, params model.DispatchParams) (model.Notification, error) {
	if params.RecipientID == uuid.Nil {
		return model.Notification{}, fmt.Errorf("%w: recipient is required", model.ErrInvalidArgument)
	}
	if params.Type == "" {
		params.Type = model.NotificationSystem
	}
	if !params.Type.Valid() {
		return model.Notification{}, fmt.Errorf("%w: unknown notification type %q", model.ErrInvalidArgument, params.Type)
	}

	n := model.Notification{
		ID:          uuid.New(),
		RecipientID: params.RecipientID,
		SenderID:    params.SenderID,
		Type:        params.Type,
		Title:       params.Title,
		Text:        params.Text,
	}

	saved, err := s.store.Create(ctx, n)
	if err != nil {
		s.logger.Warn("Retrying notification write", "recipient", params.RecipientID, "error", err)
		saved, err = s.store.Create(ctx, n)
	}
	if err != nil {
		s.logger.Error("Failed to dispatch notification", "recipient", params.RecipientID, "type", params.Type, "error", err)
		s.auditor.Record(ctx, model.ActionNotificationFailed,
			fmt.Sprintf("recipient %s, type %s: %v", params.RecipientID, params.Type, err), params.SenderID)
		return model.Notification{}, fmt.Errorf("%w: %w", model.ErrTransientWrite, err)
	}

	publish(ctx, s.feed, s.logger, model.InboxTopic(params.RecipientID))

	return saved, nil
}

// List returns the recipient's notifications, newest first.
func (s *Notifications) List(ctx context.Context, recipientID uuid.UUID) ([]model.Notification, error) {
	list, err := s.store.ListByRecipient(ctx, recipientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return list, nil
}

// UnreadCount returns the number of unread notifications of the recipient.
func (s *Notifications) UnreadCount(ctx context.Context, recipientID uuid.UUID) (int, error) {
	list, err := s.List(ctx, recipientID)
	if err != nil {
		return 0, err
	}

	unread := 0
	for _, n := range list {
		if !n.Read {
			unread++
		}
	}
	return unread, nil
}

// MarkRead marks one of the recipient's notifications read.
func (s *Notifications) MarkRead(ctx context.Context, recipientID, id uuid.UUID) error {
	if _, err := s.owned(ctx, recipientID, id); err != nil {
		return err
	}

	if err := s.store.MarkRead(ctx, id); err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}

	publish(ctx, s.feed, s.logger, model.InboxTopic(recipientID))
	return nil
}

// MarkAllRead marks every unread notification of the recipient read and
// returns how many changed.
func (s *Notifications) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	updated, err := s.store.MarkAllRead(ctx, recipientID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}

	if updated > 0 {
		publish(ctx, s.feed, s.logger, model.InboxTopic(recipientID))
	}
	return updated, nil
}

// Delete removes one of the recipient's notifications. Deleting an id that
// no longer exists succeeds.
func (s *Notifications) Delete(ctx context.Context, recipientID, id uuid.UUID) error {
	_, err := s.owned(ctx, recipientID, id)
	if errors.Is(err, errGone) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}

	publish(ctx, s.feed, s.logger, model.InboxTopic(recipientID))
	return nil
}

// errGone marks a notification id that does not exist at all, as opposed to
// one that belongs to somebody else.
var errGone = fmt.Errorf("notification gone: %w", model.ErrNotFound)

func (s *Notifications) owned(ctx context.Context, recipientID, id uuid.UUID) (model.Notification, error) {
	n, err := s.store.GetByID(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return model.Notification{}, errGone
	}
	if err != nil {
		return model.Notification{}, fmt.Errorf("failed to get notification: %w", err)
	}
	if n.RecipientID != recipientID {
		return model.Notification{}, model.ErrNotFound
	}
	return n, nil
}
