package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dtroode/campuschat-server/internal/model"
)

var _ model.ErasureStore = (*ErasureRepository)(nil)

type ErasureRepository struct {
	db *Connection
}

func NewErasureRepository(db *Connection) *ErasureRepository {
	return &ErasureRepository{
		db: db,
	}
}

// EraseAccount deletes the user, the messages they sent and the
// notifications they sent or received, and removes their id from every
// relationship set, all in one transaction.
func (r *ErasureRepository) EraseAccount(ctx context.Context, userID uuid.UUID) (model.ErasureResult, error) {
	var result model.ErasureResult

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to begin erasure: %w", err)
	}
	defer tx.Rollback(ctx)

	var locked uuid.UUID
	if err := tx.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&locked); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return result, model.ErrNotFound
		}
		return result, fmt.Errorf("failed to lock user: %w", err)
	}

	if err := r.deleteMessages(ctx, tx, userID, &result); err != nil {
		return result, err
	}
	if err := r.deleteNotifications(ctx, tx, userID, &result); err != nil {
		return result, err
	}
	if err := r.purgeRelationships(ctx, tx, userID, &result); err != nil {
		return result, err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID); err != nil {
		return result, fmt.Errorf("failed to delete user: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return model.ErasureResult{}, fmt.Errorf("failed to commit erasure: %w", err)
	}

	return result, nil
}

func (r *ErasureRepository) deleteMessages(ctx context.Context, tx pgx.Tx, userID uuid.UUID, result *model.ErasureResult) error {
	rows, err := tx.Query(ctx, `DELETE FROM messages WHERE sender_id = $1 RETURNING conversation_id, body_key`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete messages: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]struct{})
	for rows.Next() {
		var conversationID, bodyKey string
		if err := rows.Scan(&conversationID, &bodyKey); err != nil {
			return fmt.Errorf("failed to scan deleted message: %w", err)
		}
		result.MessagesDeleted++
		if bodyKey != "" {
			result.BodyKeys = append(result.BodyKeys, bodyKey)
		}
		if _, ok := seen[conversationID]; !ok {
			seen[conversationID] = struct{}{}
			result.Conversations = append(result.Conversations, model.ConversationID(conversationID))
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to delete messages: %w", err)
	}

	return nil
}

func (r *ErasureRepository) deleteNotifications(ctx context.Context, tx pgx.Tx, userID uuid.UUID, result *model.ErasureResult) error {
	rows, err := tx.Query(ctx, `DELETE FROM notifications WHERE recipient_id = $1 OR sender_id = $1 RETURNING recipient_id`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete notifications: %w", err)
	}
	defer rows.Close()

	seen := make(map[uuid.UUID]struct{})
	for rows.Next() {
		var recipientID uuid.UUID
		if err := rows.Scan(&recipientID); err != nil {
			return fmt.Errorf("failed to scan deleted notification: %w", err)
		}
		result.NotificationsDeleted++
		if _, ok := seen[recipientID]; ok || recipientID == userID {
			continue
		}
		seen[recipientID] = struct{}{}
		result.AffectedInboxes = append(result.AffectedInboxes, recipientID)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to delete notifications: %w", err)
	}

	return nil
}

func (r *ErasureRepository) purgeRelationships(ctx context.Context, tx pgx.Tx, userID uuid.UUID, result *model.ErasureResult) error {
	seen := make(map[uuid.UUID]struct{})

	for _, set := range model.UserSets {
		column := setColumns[set]
		query := fmt.Sprintf(`UPDATE users SET %[1]s = array_remove(%[1]s, $1::uuid), updated_at = NOW()
				  WHERE $1::uuid = ANY(%[1]s) AND id <> $1
				  RETURNING id`, column)

		rows, err := tx.Query(ctx, query, userID)
		if err != nil {
			return fmt.Errorf("failed to purge %s: %w", column, err)
		}

		for rows.Next() {
			var id uuid.UUID
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return fmt.Errorf("failed to scan purged user: %w", err)
			}
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				result.AffectedUsers = append(result.AffectedUsers, id)
			}
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("failed to purge %s: %w", column, err)
		}
	}

	return nil
}
