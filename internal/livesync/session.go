// Package livesync keeps a connected user's view of the portal current. A
// Session holds one subscription per data source, replaces the held view with
// every snapshot and raises alerts for notifications that arrive after the
// initial backlog.
package livesync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/campuschat-server/internal/alert"
	"github.com/dtroode/campuschat-server/internal/conversation"
	"github.com/dtroode/campuschat-server/internal/logger"
	"github.com/dtroode/campuschat-server/internal/model"
	"github.com/dtroode/campuschat-server/internal/permission"
)

const presenceTimeout = 5 * time.Second

// ErrSessionClosed is returned by operations on a closed Session.
var ErrSessionClosed = errors.New("session is closed")

// Directory reads directory entries and flips presence.
type Directory interface {
	Get(ctx context.Context, id uuid.UUID) (model.User, error)
	ListPeers(ctx context.Context, actorID uuid.UUID) ([]model.User, error)
	SetOnline(ctx context.Context, userID uuid.UUID, online bool) error
}

// Conversations reads decoded conversation logs.
type Conversations interface {
	Conversation(ctx context.Context, conversationID model.ConversationID) ([]model.Message, error)
}

// Inbox reads a recipient's notifications.
type Inbox interface {
	List(ctx context.Context, recipientID uuid.UUID) ([]model.Notification, error)
}

// Config holds the collaborators of a Session.
type Config struct {
	UserID        uuid.UUID
	Feed          model.ChangeFeed
	Directory     Directory
	Conversations Conversations
	Inbox         Inbox
	Presenter     alert.Presenter
	Chime         alert.Chime
	Announcer     alert.Announcer
	Sink          Sink
	Logger        *logger.Logger
}

// Session is the live view of one connected user.
type Session struct {
	cfg    Config
	logger *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	view      View
	seen      map[uuid.UUID]struct{}
	subs      []*subscription
	conv      *subscription
	closed    bool
	switching sync.Mutex

	lost     chan struct{}
	lostOnce sync.Once
}

// Start marks the user online and opens the profile, roster and inbox
// subscriptions. The session lives until Close or until ctx is done.
func Start(ctx context.Context, cfg Config) (*Session, error) {
	sctx, cancel := context.WithCancel(ctx)
	s := &Session{
		cfg:    cfg,
		logger: cfg.Logger.With("user_id", cfg.UserID),
		ctx:    sctx,
		cancel: cancel,
		seen:   make(map[uuid.UUID]struct{}),
		lost:   make(chan struct{}),
	}

	if err := cfg.Directory.SetOnline(ctx, cfg.UserID, true); err != nil {
		s.logger.Warn("Failed to mark user online", "error", err)
	}

	sources := []struct {
		name   string
		topics []string
		load   loadFunc
	}{
		{"profile", []string{model.UserTopic(cfg.UserID)}, s.loadProfile},
		{"roster", []string{model.DirectoryTopic}, s.loadRoster},
		{"inbox", []string{model.InboxTopic(cfg.UserID)}, s.loadInbox},
	}
	for _, src := range sources {
		sub, err := startSubscription(sctx, cfg.Feed, s.logger, src.name, src.topics, src.load, s.feedLost)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to subscribe to %s: %w", src.name, err)
		}
		s.mu.Lock()
		s.subs = append(s.subs, sub)
		s.mu.Unlock()
	}

	s.logger.Info("Live session started")
	return s, nil
}

// UserID returns the id of the connected user.
func (s *Session) UserID() uuid.UUID {
	return s.cfg.UserID
}

// Lost is closed once the change feed dropped one of the session's
// subscriptions. The view stops following changes from then on and the
// client has to open a new session.
func (s *Session) Lost() <-chan struct{} {
	return s.lost
}

func (s *Session) feedLost() {
	s.lostOnce.Do(func() { close(s.lost) })
}

// View returns a copy of the current view.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view.clone()
}

// SwitchConversation opens the conversation with peerID. The previous
// conversation subscription is stopped before the new one starts.
func (s *Session) SwitchConversation(ctx context.Context, peerID uuid.UUID) (model.ConversationID, error) {
	cid, err := conversation.Resolve(s.cfg.UserID, peerID)
	if err != nil {
		return "", err
	}

	s.switching.Lock()
	defer s.switching.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return "", ErrSessionClosed
	}
	prev := s.conv
	s.conv = nil
	s.mu.Unlock()

	if prev != nil {
		prev.stop()
	}

	s.mu.Lock()
	s.view.Conversation = ConversationView{ID: cid, PeerID: peerID}
	s.mu.Unlock()

	topics := []string{model.ConversationTopic(cid), model.UserTopic(peerID)}
	sub, err := startSubscription(s.ctx, s.cfg.Feed, s.logger, "conversation", topics, s.conversationLoader(cid, peerID), s.feedLost)
	if err != nil {
		s.mu.Lock()
		s.view.Conversation = ConversationView{}
		s.mu.Unlock()
		return "", fmt.Errorf("failed to subscribe to conversation: %w", err)
	}

	s.mu.Lock()
	s.conv = sub
	s.mu.Unlock()

	return cid, nil
}

// CloseConversation stops the conversation subscription, if any.
func (s *Session) CloseConversation() {
	s.switching.Lock()
	defer s.switching.Unlock()

	s.mu.Lock()
	prev := s.conv
	s.conv = nil
	s.mu.Unlock()

	if prev != nil {
		prev.stop()
	}

	s.mu.Lock()
	s.view.Conversation = ConversationView{}
	s.mu.Unlock()
	s.push(EventConversation, ConversationView{})
}

// Close stops every subscription and marks the user offline. It is safe to
// call more than once.
func (s *Session) Close() {
	s.switching.Lock()
	defer s.switching.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	subs := s.subs
	if s.conv != nil {
		subs = append(subs, s.conv)
	}
	s.subs, s.conv = nil, nil
	s.mu.Unlock()

	s.cancel()
	for _, sub := range subs {
		sub.stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), presenceTimeout)
	defer cancel()
	if err := s.cfg.Directory.SetOnline(ctx, s.cfg.UserID, false); err != nil {
		s.logger.Warn("Failed to mark user offline", "error", err)
	}

	s.logger.Info("Live session closed")
}

func (s *Session) loadProfile(ctx context.Context, backlog bool) error {
	user, err := s.cfg.Directory.Get(ctx, s.cfg.UserID)
	if errors.Is(err, model.ErrNotFound) {
		s.mu.Lock()
		s.view.Profile = model.User{}
		s.mu.Unlock()
		s.push(EventProfile, model.User{})
		return errClosed
	}
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.view.Profile = user
	conv := s.view.Conversation
	changed := false
	if conv.Peer.ID != uuid.Nil && !conv.Closed {
		verdict := permission.Evaluate(user, conv.Peer, user.IsAdmin())
		changed = conv.Verdict != "" && verdict != conv.Verdict
		s.view.Conversation.Verdict = verdict
		conv.Verdict = verdict
	}
	s.mu.Unlock()

	s.push(EventProfile, user)
	if changed {
		s.push(EventConversation, conv)
		if !backlog {
			s.announce(ctx, verdictText(conv.Peer, conv.Verdict))
		}
	}
	return nil
}

func (s *Session) loadRoster(ctx context.Context, _ bool) error {
	peers, err := s.cfg.Directory.ListPeers(ctx, s.cfg.UserID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.view.Roster = peers
	s.mu.Unlock()

	s.push(EventRoster, peers)
	return nil
}

// loadInbox replaces the inbox and alerts for notifications first seen in a
// delta. The seen-set is rebuilt from every snapshot so a redelivered event
// never alerts twice.
func (s *Session) loadInbox(ctx context.Context, backlog bool) error {
	list, err := s.cfg.Inbox.List(ctx, s.cfg.UserID)
	if errors.Is(err, model.ErrNotFound) {
		list = nil
	} else if err != nil {
		return err
	}

	var fresh []model.Notification
	unread := 0
	seen := make(map[uuid.UUID]struct{}, len(list))

	s.mu.Lock()
	for _, n := range list {
		seen[n.ID] = struct{}{}
		if !n.Read {
			unread++
		}
		if backlog || n.Read || n.SelfAuthored() {
			continue
		}
		if _, ok := s.seen[n.ID]; ok {
			continue
		}
		fresh = append(fresh, n)
	}
	s.seen = seen
	s.view.Inbox = list
	s.view.Unread = unread
	s.mu.Unlock()

	s.push(EventInbox, InboxSnapshot{Notifications: list, Unread: unread})

	// Snapshots are newest first; alert in arrival order.
	for i := len(fresh) - 1; i >= 0; i-- {
		if s.cfg.Presenter != nil {
			s.cfg.Presenter.Show(ctx, fresh[i])
		}
		if s.cfg.Chime != nil {
			s.cfg.Chime.Play(ctx)
		}
	}
	return nil
}

func (s *Session) conversationLoader(cid model.ConversationID, peerID uuid.UUID) loadFunc {
	return func(ctx context.Context, backlog bool) error {
		peer, err := s.cfg.Directory.Get(ctx, peerID)
		if errors.Is(err, model.ErrNotFound) {
			s.peerGone(ctx, cid)
			return errClosed
		}
		if err != nil {
			return err
		}

		s.mu.Lock()
		actor := s.view.Profile
		s.mu.Unlock()
		if actor.ID == uuid.Nil {
			if actor, err = s.cfg.Directory.Get(ctx, s.cfg.UserID); err != nil {
				return err
			}
		}

		messages, err := s.cfg.Conversations.Conversation(ctx, cid)
		if err != nil && !errors.Is(err, model.ErrNotFound) {
			return err
		}

		s.mu.Lock()
		if s.view.Conversation.ID != cid {
			s.mu.Unlock()
			return nil
		}
		// The profile subscription may have moved on while we were loading.
		if s.view.Profile.ID != uuid.Nil {
			actor = s.view.Profile
		}
		verdict := permission.Evaluate(actor, peer, actor.IsAdmin())
		prev := s.view.Conversation.Verdict
		conv := ConversationView{
			ID:       cid,
			PeerID:   peerID,
			Peer:     peer,
			Messages: messages,
			Verdict:  verdict,
		}
		s.view.Conversation = conv
		s.mu.Unlock()

		s.push(EventConversation, conv)
		if !backlog && prev != "" && prev != verdict {
			s.announce(ctx, verdictText(peer, verdict))
		}
		return nil
	}
}

func (s *Session) peerGone(ctx context.Context, cid model.ConversationID) {
	s.mu.Lock()
	if s.view.Conversation.ID != cid {
		s.mu.Unlock()
		return
	}
	name := s.view.Conversation.Peer.DisplayName
	conv := ConversationView{ID: cid, PeerID: s.view.Conversation.PeerID, Closed: true}
	s.view.Conversation = conv
	s.mu.Unlock()

	s.push(EventConversation, conv)
	if name == "" {
		s.announce(ctx, "This conversation is no longer available")
		return
	}
	s.announce(ctx, fmt.Sprintf("%s is no longer available", name))
}

func (s *Session) push(kind EventKind, data any) {
	if s.cfg.Sink != nil {
		s.cfg.Sink.Push(Event{Kind: kind, Data: data})
	}
}

func (s *Session) announce(ctx context.Context, text string) {
	if s.cfg.Announcer != nil {
		s.cfg.Announcer.Announce(ctx, text)
	}
}

func verdictText(peer model.User, verdict model.Verdict) string {
	if verdict.CanSend() {
		return fmt.Sprintf("You can message %s again", peer.DisplayName)
	}
	return fmt.Sprintf("%s: %s", peer.DisplayName, verdict.Reason())
}
