package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AuditStore persists system log entries.
type AuditStore interface {
	Record(ctx context.Context, entry AuditEntry) error
}

// AuditEntry is a system log line attributed to an actor.
type AuditEntry struct {
	ID        uuid.UUID
	Action    string
	Details   string
	ActorID   *uuid.UUID
	CreatedAt time.Time
}

// Audit actions.
const (
	ActionSendMessage        = "SEND_MESSAGE"
	ActionBlock              = "BLOCK_USER"
	ActionUnblock            = "UNBLOCK_USER"
	ActionChatSettings       = "CHAT_SETTINGS"
	ActionWhitelistAdd       = "WHITELIST_ADD"
	ActionWhitelistRemove    = "WHITELIST_REMOVE"
	ActionNotificationFailed = "NOTIFICATION_FAILED"
	ActionErasureStarted     = "ACCOUNT_ERASURE_STARTED"
	ActionErased             = "ACCOUNT_ERASED"
)
