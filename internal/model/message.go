package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MessageStore defines persistence operations for the per-conversation log.
type MessageStore interface {
	Create(ctx context.Context, message Message) (Message, error)
	ListByConversation(ctx context.Context, conversationID ConversationID) ([]Message, error)
}

// ConversationID identifies the unordered pair of participants of a direct chat.
type ConversationID string

// Message is one immutable entry of a conversation log.
//
// Body holds the at-rest encoded payload while the message travels through
// the store and the decoded text once returned by the messaging service.
// BodyKey is set instead of Body when the payload was spilled to object storage.
type Message struct {
	ID             uuid.UUID      `json:"id"`
	ConversationID ConversationID `json:"conversationId"`
	SenderID       uuid.UUID      `json:"senderId"`
	RequestID      uuid.UUID      `json:"requestId,omitzero"`
	Body           string         `json:"body"`
	BodyKey        string         `json:"-"`
	CreatedAt      time.Time      `json:"createdAt"`
	Seq            int64          `json:"seq"`
}

// SendParams contains parameters to append a message.
type SendParams struct {
	SenderID  uuid.UUID
	PeerID    uuid.UUID
	Body      string
	RequestID uuid.UUID
}
