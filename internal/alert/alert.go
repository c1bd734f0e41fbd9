// Package alert surfaces transient alerts for a connected user: toasts for
// newly arrived notifications, a chime, and a banner channel for state
// changes of the open conversation.
package alert

import (
	"context"

	"github.com/google/uuid"

	"github.com/dtroode/campuschat-server/internal/model"
)

// Presenter shows a notification as a transient alert.
type Presenter interface {
	Show(ctx context.Context, n model.Notification)
}

// Chime plays the alert sound.
type Chime interface {
	Play(ctx context.Context)
}

// Announcer shows a short banner message.
type Announcer interface {
	Announce(ctx context.Context, text string)
}

// Toast is a visible notification alert.
type Toast struct {
	ID     uuid.UUID              `json:"id"`
	Type   model.NotificationType `json:"type"`
	Title  string                 `json:"title"`
	Text   string                 `json:"text"`
	Sender *uuid.UUID             `json:"senderId,omitempty"`
}

// Banner is a visible banner message.
type Banner struct {
	ID   uuid.UUID `json:"id"`
	Text string    `json:"text"`
}

// Display renders alerts for one client.
type Display interface {
	ShowToast(toast Toast)
	DismissToast(id uuid.UUID)
	ShowBanner(banner Banner)
	DismissBanner(id uuid.UUID)
	PlayChime()
}
