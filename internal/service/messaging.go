package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/dtroode/campuschat-server/internal/codec"
	"github.com/dtroode/campuschat-server/internal/conversation"
	"github.com/dtroode/campuschat-server/internal/logger"
	"github.com/dtroode/campuschat-server/internal/model"
	"github.com/dtroode/campuschat-server/internal/permission"
)

const (
	messageNotificationTitle = "New message"
	defaultPreviewLength     = 20
)

// MessagingConfig tunes the message log.
type MessagingConfig struct {
	// InlineBodyLimit is the largest encoded body kept in the log row.
	// Larger bodies go to storage. Zero keeps every body inline.
	InlineBodyLimit int
	// PreviewLength is the number of runes of a message quoted in its notification.
	PreviewLength int
}

// Messaging appends to and reads conversation logs.
type Messaging struct {
	messages   model.MessageStore
	users      model.UserStore
	dispatcher Dispatcher
	storage    model.Storage
	feed       model.ChangeFeed
	auditor    *Auditor
	logger     *logger.Logger
	cfg        MessagingConfig
}

func NewMessaging(
	messages model.MessageStore,
	users model.UserStore,
	dispatcher Dispatcher,
	storage model.Storage,
	feed model.ChangeFeed,
	auditor *Auditor,
	logger *logger.Logger,
	cfg MessagingConfig,
) *Messaging {
	if cfg.PreviewLength <= 0 {
		cfg.PreviewLength = defaultPreviewLength
	}
	return &Messaging{
		messages:   messages,
		users:      users,
		dispatcher: dispatcher,
		storage:    storage,
		feed:       feed,
		auditor:    auditor,
		logger:     logger,
		cfg:        cfg,
	}
}

// Send appends a message from params.SenderID to the conversation with
// params.PeerID after a fresh permission check.
//
// Denied sends return a *model.PermissionError. A store failure that
// survives one retry is model.ErrTransientWrite. The notification to the
// peer and the audit entry are best-effort and never fail the send.
func (s *Messaging) Send(ctx context.Context, params model.SendParams) (model.Message, error) {
	conversationID, err := conversation.Resolve(params.SenderID, params.PeerID)
	if err != nil {
		return model.Message{}, err
	}

	actor, peer, err := s.participants(ctx, params.SenderID, params.PeerID)
	if err != nil {
		return model.Message{}, err
	}

	verdict := permission.Evaluate(actor, peer, actor.IsAdmin())
	if !verdict.CanSend() {
		return model.Message{}, &model.PermissionError{Verdict: verdict}
	}

	if strings.TrimSpace(params.Body) == "" {
		return model.Message{}, model.ErrEmptyMessage
	}

	message := model.Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		SenderID:       actor.ID,
		RequestID:      params.RequestID,
		Body:           codec.Encode(params.Body),
	}

	saved, err := s.saveMessage(ctx, message)
	if err != nil {
		return model.Message{}, err
	}
	if saved.ID != message.ID {
		s.logger.Debug("Replayed message request", "message", saved.ID, "request", params.RequestID)
		return s.decode(ctx, saved)
	}

	publish(ctx, s.feed, s.logger, model.ConversationTopic(conversationID))

	senderID := actor.ID
	_, err = s.dispatcher.Dispatch(ctx, model.DispatchParams{
		RecipientID: peer.ID,
		SenderID:    &senderID,
		Type:        model.NotificationMessage,
		Title:       messageNotificationTitle,
		Text:        s.preview(actor.DisplayName, params.Body),
	})
	if err != nil {
		s.logger.Warn("Message sent without notification", "message", saved.ID, "error", err)
	}

	s.auditor.Record(ctx, model.ActionSendMessage, fmt.Sprintf("recipient %s", peer.ID), &senderID)

	saved.Body = params.Body
	return saved, nil
}

// History returns the conversation between actorID and peerID in log order
// with decoded bodies.
func (s *Messaging) History(ctx context.Context, actorID, peerID uuid.UUID) ([]model.Message, error) {
	conversationID, err := conversation.Resolve(actorID, peerID)
	if err != nil {
		return nil, err
	}

	return s.Conversation(ctx, conversationID)
}

// Conversation returns the log of conversationID with decoded bodies.
func (s *Messaging) Conversation(ctx context.Context, conversationID model.ConversationID) ([]model.Message, error) {
	messages, err := s.messages.ListByConversation(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	for i := range messages {
		if messages[i], err = s.decode(ctx, messages[i]); err != nil {
			return nil, err
		}
	}
	return messages, nil
}

// Verdict evaluates whether actorID may currently message peerID.
func (s *Messaging) Verdict(ctx context.Context, actorID, peerID uuid.UUID) (model.Verdict, error) {
	if actorID == peerID {
		return "", model.ErrSelfConversation
	}

	actor, peer, err := s.participants(ctx, actorID, peerID)
	if err != nil {
		return "", err
	}

	return permission.Evaluate(actor, peer, actor.IsAdmin()), nil
}

func (s *Messaging) participants(ctx context.Context, actorID, peerID uuid.UUID) (model.User, model.User, error) {
	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return model.User{}, model.User{}, fmt.Errorf("failed to get sender %s: %w", actorID, err)
	}
	peer, err := s.users.GetByID(ctx, peerID)
	if err != nil {
		return model.User{}, model.User{}, fmt.Errorf("failed to get recipient %s: %w", peerID, err)
	}
	return actor, peer, nil
}

// saveMessage spills large bodies to storage first, then appends the
// message, retrying the append once.
func (s *Messaging) saveMessage(ctx context.Context, message model.Message) (model.Message, error) {
	if s.storage != nil && s.cfg.InlineBodyLimit > 0 && len(message.Body) > s.cfg.InlineBodyLimit {
		message.BodyKey = bodyKey(message.ConversationID, message.ID)
		if err := s.storage.Upload(ctx, message.BodyKey, strings.NewReader(message.Body)); err != nil {
			return model.Message{}, fmt.Errorf("%w: failed to upload to storage: %w", model.ErrTransientWrite, err)
		}
		message.Body = ""
	}

	saved, err := s.messages.Create(ctx, message)
	if err != nil {
		s.logger.Warn("Retrying message write", "message", message.ID, "error", err)
		saved, err = s.messages.Create(ctx, message)
	}
	if err != nil {
		s.removeBody(ctx, message.BodyKey)
		return model.Message{}, fmt.Errorf("%w: failed to create message: %w", model.ErrTransientWrite, err)
	}

	if saved.ID != message.ID {
		s.removeBody(ctx, message.BodyKey)
	}

	return saved, nil
}

func (s *Messaging) removeBody(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.storage.Delete(ctx, key); err != nil {
		s.logger.Error("Failed to delete message body from storage", "key", key, "error", err)
	}
}

// decode resolves a spilled body and reverses the at-rest encoding.
func (s *Messaging) decode(ctx context.Context, message model.Message) (model.Message, error) {
	if message.BodyKey != "" {
		body, err := s.download(ctx, message.BodyKey)
		if err != nil {
			return model.Message{}, err
		}
		message.Body = body
	}

	message.Body = codec.Decode(message.Body)
	return message, nil
}

func (s *Messaging) download(ctx context.Context, key string) (string, error) {
	if s.storage == nil {
		return "", fmt.Errorf("message body %s is in storage but none is configured", key)
	}

	reader, err := s.storage.Download(ctx, key)
	if errors.Is(err, model.ErrNotFound) {
		s.logger.Warn("Message body missing from storage", "key", key)
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to download from storage: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to read message body: %w", err)
	}
	return string(data), nil
}

func (s *Messaging) preview(displayName, body string) string {
	runes := []rune(body)
	if len(runes) > s.cfg.PreviewLength {
		runes = runes[:s.cfg.PreviewLength]
	}
	return fmt.Sprintf("%s: %s...", displayName, string(runes))
}

func bodyKey(conversationID model.ConversationID, messageID uuid.UUID) string {
	return fmt.Sprintf("conversation-%s/message-%s", conversationID, messageID)
}
