package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/dtroode/campuschat-server/internal/conversation"
	"github.com/dtroode/campuschat-server/internal/logger"
	"github.com/dtroode/campuschat-server/internal/model"
	"github.com/dtroode/campuschat-server/internal/textfilter"
)

// MessagingService defines the conversation operations exposed over HTTP.
type MessagingService interface {
	Send(ctx context.Context, params model.SendParams) (model.Message, error)
	History(ctx context.Context, actorID, peerID uuid.UUID) ([]model.Message, error)
	Verdict(ctx context.Context, actorID, peerID uuid.UUID) (model.Verdict, error)
}

// UserReader loads directory entries.
type UserReader interface {
	Get(ctx context.Context, id uuid.UUID) (model.User, error)
}

// Chat handles conversation endpoints.
type Chat struct {
	messaging      MessagingService
	users          UserReader
	filter         *textfilter.Filter
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewChat creates a new Chat handler.
func NewChat(
	messaging MessagingService,
	users UserReader,
	filter *textfilter.Filter,
	contextManager model.ContextManager,
	logger *logger.Logger,
) *Chat {
	return &Chat{
		messaging:      messaging,
		users:          users,
		filter:         filter,
		contextManager: contextManager,
		logger:         logger,
	}
}

type sendRequest struct {
	Body      string    `json:"body"`
	RequestID uuid.UUID `json:"requestId"`
}

// messageResponse is a message as shown to a viewer. Segments carry the body
// after the viewer's content filter; Body stays untouched.
type messageResponse struct {
	model.Message
	Segments []textfilter.Segment `json:"segments"`
}

type historyResponse struct {
	ConversationID model.ConversationID `json:"conversationId"`
	Messages       []messageResponse    `json:"messages"`
}

type verdictResponse struct {
	ConversationID model.ConversationID `json:"conversationId"`
	Verdict        model.Verdict        `json:"verdict"`
	CanSend        bool                 `json:"canSend"`
	Reason         string               `json:"reason,omitempty"`
}

// Send appends a message to the conversation with the peer in the path.
func (h *Chat) Send(w http.ResponseWriter, r *http.Request) {
	userID, peerID, ok := h.participants(w, r)
	if !ok {
		return
	}

	var req sendRequest
	if err := decodeBody(w, r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}

	message, err := h.messaging.Send(r.Context(), model.SendParams{
		SenderID:  userID,
		PeerID:    peerID,
		Body:      req.Body,
		RequestID: req.RequestID,
	})
	if err != nil {
		h.logger.Debug("Chat handler: send rejected", "user_id", userID, "peer_id", peerID, "error", err)
		handleError(w, h.logger, err)
		return
	}

	viewer, err := h.users.Get(r.Context(), userID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, h.present(viewer, message))
}

// History returns the conversation with the peer in the path.
func (h *Chat) History(w http.ResponseWriter, r *http.Request) {
	userID, peerID, ok := h.participants(w, r)
	if !ok {
		return
	}

	messages, err := h.messaging.History(r.Context(), userID, peerID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	viewer, err := h.users.Get(r.Context(), userID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	conversationID, _ := conversation.Resolve(userID, peerID)
	resp := historyResponse{ConversationID: conversationID, Messages: make([]messageResponse, 0, len(messages))}
	for _, m := range messages {
		resp.Messages = append(resp.Messages, h.present(viewer, m))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Verdict reports whether the caller may currently message the peer.
func (h *Chat) Verdict(w http.ResponseWriter, r *http.Request) {
	userID, peerID, ok := h.participants(w, r)
	if !ok {
		return
	}

	verdict, err := h.messaging.Verdict(r.Context(), userID, peerID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	conversationID, _ := conversation.Resolve(userID, peerID)
	writeJSON(w, http.StatusOK, verdictResponse{
		ConversationID: conversationID,
		Verdict:        verdict,
		CanSend:        verdict.CanSend(),
		Reason:         verdict.Reason(),
	})
}

func (h *Chat) participants(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	userID, err := caller(r, h.contextManager)
	if err != nil {
		handleError(w, h.logger, err)
		return uuid.Nil, uuid.Nil, false
	}
	peerID, err := pathUUID(r, "peerID")
	if err != nil {
		handleError(w, h.logger, err)
		return uuid.Nil, uuid.Nil, false
	}
	return userID, peerID, true
}

func (h *Chat) present(viewer model.User, m model.Message) messageResponse {
	return presentMessage(h.filter, viewer.FilterEnabled, m)
}

func presentMessage(filter *textfilter.Filter, filterEnabled bool, m model.Message) messageResponse {
	resp := messageResponse{Message: m}
	if filterEnabled {
		resp.Segments = filter.Apply(m.Body)
	} else {
		resp.Segments = textfilter.Linkify(m.Body)
	}
	return resp
}
