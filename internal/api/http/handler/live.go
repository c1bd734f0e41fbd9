package handler

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/campuschat-server/internal/alert"
	"github.com/dtroode/campuschat-server/internal/livesync"
	"github.com/dtroode/campuschat-server/internal/logger"
	"github.com/dtroode/campuschat-server/internal/model"
	"github.com/dtroode/campuschat-server/internal/textfilter"
)

const keepAliveInterval = 25 * time.Second

// LiveConfig holds what every live session is wired to.
type LiveConfig struct {
	Feed          model.ChangeFeed
	Directory     livesync.Directory
	Conversations livesync.Conversations
	Inbox         livesync.Inbox
	ToastTTL      time.Duration
	BannerTTL     time.Duration
}

// Live serves the live view as a server-sent event stream and lets the
// client pick the open conversation of its session.
type Live struct {
	cfg            LiveConfig
	filter         *textfilter.Filter
	contextManager model.ContextManager
	logger         *logger.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]liveSession
}

type liveSession struct {
	session *livesync.Session
	stream  *eventStream
}

// NewLive creates a new Live handler.
func NewLive(cfg LiveConfig, filter *textfilter.Filter, contextManager model.ContextManager, logger *logger.Logger) *Live {
	return &Live{
		cfg:            cfg,
		filter:         filter,
		contextManager: contextManager,
		logger:         logger,
		sessions:       make(map[uuid.UUID]liveSession),
	}
}

type sessionEvent struct {
	ID uuid.UUID `json:"id"`
}

type switchRequest struct {
	PeerID uuid.UUID `json:"peerId"`
}

type switchResponse struct {
	ConversationID model.ConversationID `json:"conversationId"`
}

// Stream opens a live session for the caller and streams it until the
// client goes away.
func (h *Live) Stream(w http.ResponseWriter, r *http.Request) {
	userID, err := caller(r, h.contextManager)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		handleError(w, h.logger, fmt.Errorf("response writer does not support streaming"))
		return
	}

	viewer, err := h.cfg.Directory.Get(r.Context(), userID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	stream := newEventStream()
	toaster := alert.NewToaster(stream, h.cfg.ToastTTL)
	banners := alert.NewBanners(stream, h.cfg.BannerTTL)

	session, err := livesync.Start(r.Context(), livesync.Config{
		UserID:        userID,
		Feed:          h.cfg.Feed,
		Directory:     h.cfg.Directory,
		Conversations: h.cfg.Conversations,
		Inbox:         h.cfg.Inbox,
		Presenter:     toaster,
		Chime:         alert.DisplayChime{Display: stream},
		Announcer:     banners,
		Sink:          newPresentingSink(stream, h.filter, viewer),
		Logger:        h.logger,
	})
	if err != nil {
		stream.close()
		handleError(w, h.logger, err)
		return
	}

	sessionID := uuid.New()
	h.mu.Lock()
	h.sessions[sessionID] = liveSession{session: session, stream: stream}
	h.mu.Unlock()

	// The stream is closed first so that senders blocked on a full queue
	// return before the session joins its subscriptions.
	defer func() {
		h.mu.Lock()
		delete(h.sessions, sessionID)
		h.mu.Unlock()
		stream.close()
		toaster.Close()
		banners.Close()
		session.Close()
	}()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if err := writeEvent(w, "session", sessionEvent{ID: sessionID}); err != nil {
		return
	}
	flusher.Flush()

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-stream.done:
			return
		case <-session.Lost():
			h.logger.Warn("Live session lost its change feed, ending stream", "user_id", userID)
			return
		case ev := <-stream.events:
			if err := writeEvent(w, ev.name, ev.data); err != nil {
				h.logger.Debug("Live stream write failed", "user_id", userID, "error", err)
				return
			}
			flusher.Flush()
		case <-keepAlive.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// OpenConversation switches the session's open conversation to a peer.
func (h *Live) OpenConversation(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var req switchRequest
	if err := decodeBody(w, r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}
	if req.PeerID == uuid.Nil {
		handleError(w, h.logger, fmt.Errorf("%w: peerId is required", model.ErrInvalidArgument))
		return
	}

	conversationID, err := session.SwitchConversation(r.Context(), req.PeerID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, switchResponse{ConversationID: conversationID})
}

// CloseConversation closes the session's open conversation.
func (h *Live) CloseConversation(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	session.CloseConversation()
	w.WriteHeader(http.StatusNoContent)
}

// Shutdown ends every open stream. Each stream handler then closes its
// session and returns.
func (h *Live) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, live := range h.sessions {
		live.stream.close()
	}
}

// Sessions returns the number of open live sessions.
func (h *Live) Sessions() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// session resolves the session in the path. Sessions of other users are
// reported as missing.
func (h *Live) session(w http.ResponseWriter, r *http.Request) (*livesync.Session, bool) {
	userID, err := caller(r, h.contextManager)
	if err != nil {
		handleError(w, h.logger, err)
		return nil, false
	}
	sessionID, err := pathUUID(r, "sessionID")
	if err != nil {
		handleError(w, h.logger, err)
		return nil, false
	}

	h.mu.Lock()
	live, ok := h.sessions[sessionID]
	h.mu.Unlock()
	if !ok || live.session.UserID() != userID {
		handleError(w, h.logger, fmt.Errorf("live session %s: %w", sessionID, model.ErrNotFound))
		return nil, false
	}
	return live.session, true
}
