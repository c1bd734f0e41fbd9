package model

import (
	"context"

	"github.com/google/uuid"
)

// ErasureStore removes every trace of an account in one transaction.
type ErasureStore interface {
	EraseAccount(ctx context.Context, userID uuid.UUID) (ErasureResult, error)
}

// ErasureResult describes what an erasure touched so that caches, object
// storage and live subscribers can be brought up to date.
type ErasureResult struct {
	BodyKeys             []string
	Conversations        []ConversationID
	AffectedUsers        []uuid.UUID
	AffectedInboxes      []uuid.UUID
	MessagesDeleted      int64
	NotificationsDeleted int64
}
