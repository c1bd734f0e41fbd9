package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dtroode/campuschat-server/internal/model"
)

var _ model.NotificationStore = (*NotificationRepository)(nil)

const notificationColumns = `id, recipient_id, sender_id, type, title, text, read, created_at`

type NotificationRepository struct {
	db *Connection
}

func NewNotificationRepository(db *Connection) *NotificationRepository {
	return &NotificationRepository{
		db: db,
	}
}

func (r *NotificationRepository) Create(ctx context.Context, n model.Notification) (model.Notification, error) {
	query := `INSERT INTO notifications (id, recipient_id, sender_id, type, title, text, read)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  ON CONFLICT (id) DO UPDATE SET id = EXCLUDED.id
			  RETURNING ` + notificationColumns

	saved, err := scanNotification(r.db.QueryRow(ctx, query,
		n.ID, n.RecipientID, n.SenderID, string(n.Type), n.Title, n.Text, n.Read,
	))
	if err != nil {
		return model.Notification{}, fmt.Errorf("failed to create notification: %w", err)
	}

	return saved, nil
}

func (r *NotificationRepository) GetByID(ctx context.Context, id uuid.UUID) (model.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1`

	n, err := scanNotification(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Notification{}, model.ErrNotFound
		}
		return model.Notification{}, fmt.Errorf("failed to get notification: %w", err)
	}

	return n, nil
}

func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipientID uuid.UUID) ([]model.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications
			  WHERE recipient_id = $1
			  ORDER BY created_at DESC, id`

	rows, err := r.db.Query(ctx, query, recipientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	return notifications, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `UPDATE notifications SET read = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx, `UPDATE notifications SET read = TRUE WHERE recipient_id = $1 AND read = FALSE`, recipientID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Delete removes a notification. Deleting a missing id is not an error.
func (r *NotificationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM notifications WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	return nil
}

func scanNotification(row pgx.Row) (model.Notification, error) {
	var n model.Notification
	var notificationType string

	err := row.Scan(&n.ID, &n.RecipientID, &n.SenderID, &notificationType, &n.Title, &n.Text, &n.Read, &n.CreatedAt)
	if err != nil {
		return model.Notification{}, err
	}
	n.Type = model.NotificationType(notificationType)

	return n, nil
}
