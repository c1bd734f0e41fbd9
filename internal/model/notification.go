package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// NotificationStore defines persistence operations for inbox records.
type NotificationStore interface {
	Create(ctx context.Context, notification Notification) (Notification, error)
	GetByID(ctx context.Context, id uuid.UUID) (Notification, error)
	ListByRecipient(ctx context.Context, recipientID uuid.UUID) ([]Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// NotificationType classifies a notification.
type NotificationType string

const (
	NotificationMessage NotificationType = "message"
	NotificationSocial  NotificationType = "social"
	NotificationSystem  NotificationType = "system"
)

// Valid reports whether t is a known notification type.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationMessage, NotificationSocial, NotificationSystem:
		return true
	}
	return false
}

// Notification is an inbox record targeted at one recipient.
type Notification struct {
	ID          uuid.UUID        `json:"id"`
	RecipientID uuid.UUID        `json:"recipientId"`
	SenderID    *uuid.UUID       `json:"senderId,omitempty"`
	Type        NotificationType `json:"type"`
	Title       string           `json:"title"`
	Text        string           `json:"text"`
	Read        bool             `json:"read"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// SelfAuthored reports whether the notification was sent by its own recipient.
func (n Notification) SelfAuthored() bool {
	return n.SenderID != nil && *n.SenderID == n.RecipientID
}

// DispatchParams contains parameters to create a notification.
type DispatchParams struct {
	RecipientID uuid.UUID
	SenderID    *uuid.UUID
	Type        NotificationType
	Title       string
	Text        string
}
