package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dtroode/campuschat-server/internal/logger"
	"github.com/dtroode/campuschat-server/internal/model"
)

// Erasure deletes accounts together with everything they authored.
type Erasure struct {
	users   model.UserStore
	store   model.ErasureStore
	storage model.Storage
	feed    model.ChangeFeed
	auditor *Auditor
	logger  *logger.Logger
}

func NewErasure(
	users model.UserStore,
	store model.ErasureStore,
	storage model.Storage,
	feed model.ChangeFeed,
	auditor *Auditor,
	logger *logger.Logger,
) *Erasure {
	return &Erasure{
		users:   users,
		store:   store,
		storage: storage,
		feed:    feed,
		auditor: auditor,
		logger:  logger,
	}
}

// EraseAccount erases targetID on behalf of executorID, who must be the
// account owner or an admin.
func (s *Erasure) EraseAccount(ctx context.Context, executorID, targetID uuid.UUID) (model.ErasureResult, error) {
	executor, err := s.users.GetByID(ctx, executorID)
	if err != nil {
		return model.ErasureResult{}, fmt.Errorf("failed to get executor: %w", err)
	}
	if executorID != targetID && !executor.IsAdmin() {
		return model.ErasureResult{}, model.ErrForbidden
	}

	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return model.ErasureResult{}, fmt.Errorf("failed to get user: %w", err)
	}
	identifier := target.Email
	if identifier == "" {
		identifier = target.ID.String()
	}

	s.auditor.Record(ctx, model.ActionErasureStarted, fmt.Sprintf("erasing %s", identifier), &executorID)

	result, err := s.store.EraseAccount(ctx, targetID)
	if err != nil {
		return model.ErasureResult{}, fmt.Errorf("failed to erase account: %w", err)
	}

	if s.storage != nil {
		for _, key := range result.BodyKeys {
			if err := s.storage.Delete(ctx, key); err != nil {
				s.logger.Error("Failed to delete message body from storage", "key", key, "error", err)
			}
		}
	}

	topics := []string{model.UserTopic(targetID), model.InboxTopic(targetID), model.DirectoryTopic}
	for _, id := range result.AffectedUsers {
		topics = append(topics, model.UserTopic(id))
	}
	for _, id := range result.Conversations {
		topics = append(topics, model.ConversationTopic(id))
	}
	for _, id := range result.AffectedInboxes {
		topics = append(topics, model.InboxTopic(id))
	}
	publish(ctx, s.feed, s.logger, topics...)

	s.auditor.Record(ctx, model.ActionErased,
		fmt.Sprintf("erased %s: %d messages, %d notifications", identifier, result.MessagesDeleted, result.NotificationsDeleted), &executorID)

	s.logger.Info("Account erased", "user", targetID, "executor", executorID)

	return result, nil
}
