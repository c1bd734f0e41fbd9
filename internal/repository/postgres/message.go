package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dtroode/campuschat-server/internal/model"
)

var _ model.MessageStore = (*MessageRepository)(nil)

const messageColumns = `id, conversation_id, sender_id, request_id, body, body_key, created_at, seq`

type MessageRepository struct {
	db *Connection
}

func NewMessageRepository(db *Connection) *MessageRepository {
	return &MessageRepository{
		db: db,
	}
}

// Create appends message to its conversation. The timestamp and sequence are
// assigned by the database. Replaying a message with a known id, or a request
// id the sender already used in the same conversation, returns the stored
// message.
func (r *MessageRepository) Create(ctx context.Context, message model.Message) (model.Message, error) {
	query := `INSERT INTO messages (id, conversation_id, sender_id, request_id, body, body_key)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  ON CONFLICT DO NOTHING
			  RETURNING ` + messageColumns

	saved, err := scanMessage(r.db.QueryRow(ctx, query,
		message.ID, string(message.ConversationID), message.SenderID, nullUUID(message.RequestID),
		message.Body, message.BodyKey,
	))
	if err == nil {
		return saved, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.Message{}, fmt.Errorf("failed to create message: %w", err)
	}

	query = `SELECT ` + messageColumns + ` FROM messages
			 WHERE id = $1 OR (conversation_id = $2 AND sender_id = $3 AND request_id = $4)
			 LIMIT 1`

	saved, err = scanMessage(r.db.QueryRow(ctx, query,
		message.ID, string(message.ConversationID), message.SenderID, nullUUID(message.RequestID),
	))
	if err != nil {
		return model.Message{}, fmt.Errorf("failed to load replayed message: %w", err)
	}

	return saved, nil
}

func (r *MessageRepository) ListByConversation(ctx context.Context, conversationID model.ConversationID) ([]model.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages
			  WHERE conversation_id = $1
			  ORDER BY created_at ASC, seq ASC`

	rows, err := r.db.Query(ctx, query, string(conversationID))
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []model.Message
	for rows.Next() {
		message, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, message)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	return messages, nil
}

func scanMessage(row pgx.Row) (model.Message, error) {
	var message model.Message
	var conversationID string
	var requestID *uuid.UUID

	err := row.Scan(
		&message.ID, &conversationID, &message.SenderID, &requestID,
		&message.Body, &message.BodyKey, &message.CreatedAt, &message.Seq,
	)
	if err != nil {
		return model.Message{}, err
	}

	message.ConversationID = model.ConversationID(conversationID)
	if requestID != nil {
		message.RequestID = *requestID
	}

	return message, nil
}

func nullUUID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}
