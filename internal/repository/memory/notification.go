package memory

import (
	"context"
	"slices"

	"github.com/google/uuid"

	"github.com/dtroode/campuschat-server/internal/model"
)

var _ model.NotificationStore = (*NotificationRepository)(nil)

type NotificationRepository struct {
	db *DB
}

func NewNotificationRepository(db *DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(_ context.Context, n model.Notification) (model.Notification, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if existing, ok := r.db.notifications[n.ID]; ok {
		return cloneNotification(existing), nil
	}

	n = cloneNotification(n)
	n.CreatedAt = r.db.timestamp()
	r.db.notifications[n.ID] = n

	return cloneNotification(n), nil
}

func (r *NotificationRepository) GetByID(_ context.Context, id uuid.UUID) (model.Notification, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	n, ok := r.db.notifications[id]
	if !ok {
		return model.Notification{}, model.ErrNotFound
	}
	return cloneNotification(n), nil
}

// ListByRecipient returns the recipient's notifications newest first.
func (r *NotificationRepository) ListByRecipient(_ context.Context, recipientID uuid.UUID) ([]model.Notification, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var list []model.Notification
	for _, n := range r.db.notifications {
		if n.RecipientID == recipientID {
			list = append(list, cloneNotification(n))
		}
	}
	slices.SortFunc(list, func(a, b model.Notification) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	return list, nil
}

func (r *NotificationRepository) MarkRead(_ context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	n, ok := r.db.notifications[id]
	if !ok {
		return model.ErrNotFound
	}
	n.Read = true
	r.db.notifications[id] = n

	return nil
}

func (r *NotificationRepository) MarkAllRead(_ context.Context, recipientID uuid.UUID) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var updated int64
	for id, n := range r.db.notifications {
		if n.RecipientID != recipientID || n.Read {
			continue
		}
		n.Read = true
		r.db.notifications[id] = n
		updated++
	}

	return updated, nil
}

func (r *NotificationRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	delete(r.db.notifications, id)
	return nil
}
