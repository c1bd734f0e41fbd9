package memory

import (
	"context"
	"slices"

	"github.com/google/uuid"

	"github.com/dtroode/campuschat-server/internal/model"
)

var _ model.ErasureStore = (*ErasureRepository)(nil)

type ErasureRepository struct {
	db *DB
}

func NewErasureRepository(db *DB) *ErasureRepository {
	return &ErasureRepository{db: db}
}

func (r *ErasureRepository) EraseAccount(_ context.Context, userID uuid.UUID) (model.ErasureResult, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var result model.ErasureResult
	if _, ok := r.db.users[userID]; !ok {
		return result, model.ErrNotFound
	}

	kept := r.db.messages[:0:0]
	for _, m := range r.db.messages {
		if m.SenderID != userID {
			kept = append(kept, m)
			continue
		}
		result.MessagesDeleted++
		if m.BodyKey != "" {
			result.BodyKeys = append(result.BodyKeys, m.BodyKey)
		}
		if !slices.Contains(result.Conversations, m.ConversationID) {
			result.Conversations = append(result.Conversations, m.ConversationID)
		}
	}
	r.db.messages = kept

	for id, n := range r.db.notifications {
		if n.RecipientID != userID && (n.SenderID == nil || *n.SenderID != userID) {
			continue
		}
		delete(r.db.notifications, id)
		result.NotificationsDeleted++
		if n.RecipientID != userID && !slices.Contains(result.AffectedInboxes, n.RecipientID) {
			result.AffectedInboxes = append(result.AffectedInboxes, n.RecipientID)
		}
	}

	for id, u := range r.db.users {
		if id == userID {
			continue
		}
		touched := false
		for _, set := range model.UserSets {
			field := setField(&u, set)
			if slices.Contains(*field, userID) {
				*field = slices.DeleteFunc(slices.Clone(*field), func(v uuid.UUID) bool { return v == userID })
				touched = true
			}
		}
		if touched {
			u.UpdatedAt = r.db.timestamp()
			r.db.users[id] = u
			result.AffectedUsers = append(result.AffectedUsers, id)
		}
	}

	delete(r.db.users, userID)

	return result, nil
}
