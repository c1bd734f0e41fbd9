package memory

import (
	"context"
	"slices"

	"github.com/google/uuid"

	"github.com/dtroode/campuschat-server/internal/model"
)

var _ model.MessageStore = (*MessageRepository)(nil)

type MessageRepository struct {
	db *DB
}

func NewMessageRepository(db *DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create appends message with a fresh timestamp and sequence number.
// Replays of a known id, or of a request id the sender already used in the
// same conversation, return the stored message.
func (r *MessageRepository) Create(_ context.Context, message model.Message) (model.Message, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, m := range r.db.messages {
		if m.ID == message.ID {
			return m, nil
		}
		if message.RequestID != uuid.Nil && m.ConversationID == message.ConversationID &&
			m.SenderID == message.SenderID && m.RequestID == message.RequestID {
			return m, nil
		}
	}

	r.db.seq++
	message.Seq = r.db.seq
	message.CreatedAt = r.db.timestamp()
	r.db.messages = append(r.db.messages, message)

	return message, nil
}

func (r *MessageRepository) ListByConversation(_ context.Context, conversationID model.ConversationID) ([]model.Message, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var messages []model.Message
	for _, m := range r.db.messages {
		if m.ConversationID == conversationID {
			messages = append(messages, m)
		}
	}
	slices.SortStableFunc(messages, func(a, b model.Message) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		switch {
		case a.Seq < b.Seq:
			return -1
		case a.Seq > b.Seq:
			return 1
		}
		return 0
	})

	return messages, nil
}
