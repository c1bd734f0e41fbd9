package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/dtroode/campuschat-server/internal/logger"
	"github.com/dtroode/campuschat-server/internal/model"
)

const followNotificationTitle = "New follower"

// Directory reads and mutates directory entries. Every mutation touches a
// single field of the acting user, except Follow and Unfollow which also
// update the target's followers.
type Directory struct {
	users      model.UserStore
	dispatcher Dispatcher
	feed       model.ChangeFeed
	auditor    *Auditor
	logger     *logger.Logger
}

func NewDirectory(
	users model.UserStore,
	dispatcher Dispatcher,
	feed model.ChangeFeed,
	auditor *Auditor,
	logger *logger.Logger,
) *Directory {
	return &Directory{
		users:      users,
		dispatcher: dispatcher,
		feed:       feed,
		auditor:    auditor,
		logger:     logger,
	}
}

// Get returns the directory entry of id.
func (s *Directory) Get(ctx context.Context, id uuid.UUID) (model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to get user %s: %w", id, err)
	}
	return user, nil
}

// Ensure creates user unless an entry with its id already exists, in which
// case the stored entry is returned unchanged.
func (s *Directory) Ensure(ctx context.Context, user model.User) (model.User, error) {
	existing, err := s.users.GetByID(ctx, user.ID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return model.User{}, fmt.Errorf("failed to get user %s: %w", user.ID, err)
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	publish(ctx, s.feed, s.logger, model.DirectoryTopic)
	return created, nil
}

// ListPeers returns everyone but actorID, admins first, then by name.
func (s *Directory) ListPeers(ctx context.Context, actorID uuid.UUID) ([]model.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users = slices.DeleteFunc(users, func(u model.User) bool { return u.ID == actorID })
	slices.SortStableFunc(users, func(a, b model.User) int {
		if a.IsAdmin() != b.IsAdmin() {
			if a.IsAdmin() {
				return -1
			}
			return 1
		}
		return strings.Compare(strings.ToLower(a.DisplayName), strings.ToLower(b.DisplayName))
	})

	return users, nil
}

// Block adds targetID to the actor's blocked set.
func (s *Directory) Block(ctx context.Context, actorID, targetID uuid.UUID) error {
	if err := s.addToSet(ctx, actorID, model.SetBlocked, targetID); err != nil {
		return err
	}
	s.auditor.Record(ctx, model.ActionBlock, fmt.Sprintf("blocked %s", targetID), &actorID)
	return nil
}

// Unblock removes targetID from the actor's blocked set.
func (s *Directory) Unblock(ctx context.Context, actorID, targetID uuid.UUID) error {
	if err := s.removeFromSet(ctx, actorID, model.SetBlocked, targetID); err != nil {
		return err
	}
	s.auditor.Record(ctx, model.ActionUnblock, fmt.Sprintf("unblocked %s", targetID), &actorID)
	return nil
}

// SetAllowChat opens or closes the actor's direct messages.
func (s *Directory) SetAllowChat(ctx context.Context, actorID uuid.UUID, allow bool) error {
	if err := s.users.SetAllowChat(ctx, actorID, allow); err != nil {
		return fmt.Errorf("failed to set allow chat: %w", err)
	}
	s.changed(ctx, actorID)
	s.auditor.Record(ctx, model.ActionChatSettings, fmt.Sprintf("allow chat %t", allow), &actorID)
	return nil
}

// AddToWhitelist lets targetID message the actor while chat is closed.
func (s *Directory) AddToWhitelist(ctx context.Context, actorID, targetID uuid.UUID) error {
	if err := s.addToSet(ctx, actorID, model.SetChatWhitelist, targetID); err != nil {
		return err
	}
	s.auditor.Record(ctx, model.ActionWhitelistAdd, fmt.Sprintf("whitelisted %s", targetID), &actorID)
	return nil
}

// RemoveFromWhitelist revokes a whitelist exception.
func (s *Directory) RemoveFromWhitelist(ctx context.Context, actorID, targetID uuid.UUID) error {
	if err := s.removeFromSet(ctx, actorID, model.SetChatWhitelist, targetID); err != nil {
		return err
	}
	s.auditor.Record(ctx, model.ActionWhitelistRemove, fmt.Sprintf("removed %s from whitelist", targetID), &actorID)
	return nil
}

// Follow records that the actor follows targetID on both records and
// notifies the target.
func (s *Directory) Follow(ctx context.Context, actorID, targetID uuid.UUID) error {
	if actorID == targetID {
		return fmt.Errorf("%w: cannot follow yourself", model.ErrInvalidArgument)
	}

	actor, err := s.Get(ctx, actorID)
	if err != nil {
		return err
	}
	if _, err := s.Get(ctx, targetID); err != nil {
		return err
	}
	if actor.IsFollowing(targetID) {
		return nil
	}

	if err := s.addToSet(ctx, actorID, model.SetFollowing, targetID); err != nil {
		return err
	}
	if err := s.addToSet(ctx, targetID, model.SetFollowers, actorID); err != nil {
		return err
	}

	_, err = s.dispatcher.Dispatch(ctx, model.DispatchParams{
		RecipientID: targetID,
		SenderID:    &actorID,
		Type:        model.NotificationSocial,
		Title:       followNotificationTitle,
		Text:        fmt.Sprintf("%s started following you.", actor.DisplayName),
	})
	if err != nil {
		s.logger.Warn("Follow recorded without notification", "actor", actorID, "target", targetID, "error", err)
	}

	return nil
}

// Unfollow reverses Follow.
func (s *Directory) Unfollow(ctx context.Context, actorID, targetID uuid.UUID) error {
	if err := s.removeFromSet(ctx, actorID, model.SetFollowing, targetID); err != nil {
		return err
	}
	if err := s.removeFromSet(ctx, targetID, model.SetFollowers, actorID); err != nil {
		return err
	}
	return nil
}

// SetOnline records the user's presence.
func (s *Directory) SetOnline(ctx context.Context, userID uuid.UUID, online bool) error {
	if err := s.users.SetOnline(ctx, userID, online); err != nil {
		return fmt.Errorf("failed to set online: %w", err)
	}
	s.changed(ctx, userID)
	return nil
}

func (s *Directory) addToSet(ctx context.Context, id uuid.UUID, set model.UserSet, member uuid.UUID) error {
	if id == member {
		return fmt.Errorf("%w: %s cannot contain its owner", model.ErrInvalidArgument, set)
	}
	if err := s.users.AddToSet(ctx, id, set, member); err != nil {
		return fmt.Errorf("failed to add to %s: %w", set, err)
	}
	s.changed(ctx, id)
	return nil
}

func (s *Directory) removeFromSet(ctx context.Context, id uuid.UUID, set model.UserSet, member uuid.UUID) error {
	if err := s.users.RemoveFromSet(ctx, id, set, member); err != nil {
		return fmt.Errorf("failed to remove from %s: %w", set, err)
	}
	s.changed(ctx, id)
	return nil
}

func (s *Directory) changed(ctx context.Context, id uuid.UUID) {
	publish(ctx, s.feed, s.logger, model.UserTopic(id), model.DirectoryTopic)
}
