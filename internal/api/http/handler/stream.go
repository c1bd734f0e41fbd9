package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/dtroode/campuschat-server/internal/alert"
	"github.com/dtroode/campuschat-server/internal/livesync"
)

const streamBuffer = 64

var (
	_ alert.Display = (*eventStream)(nil)
	_ livesync.Sink = (*eventStream)(nil)
)

type streamEvent struct {
	name string
	data any
}

type dismissal struct {
	ID uuid.UUID `json:"id"`
}

// eventStream queues view updates and alerts for one server-sent event
// connection. Senders block while the queue is full and give up once the
// stream is closed.
type eventStream struct {
	events    chan streamEvent
	done      chan struct{}
	closeOnce sync.Once
}

func newEventStream() *eventStream {
	return &eventStream{
		events: make(chan streamEvent, streamBuffer),
		done:   make(chan struct{}),
	}
}

func (s *eventStream) send(name string, data any) {
	select {
	case s.events <- streamEvent{name: name, data: data}:
	case <-s.done:
	}
}

func (s *eventStream) close() {
	s.closeOnce.Do(func() { close(s.done) })
}

func (s *eventStream) Push(e livesync.Event) {
	s.send(string(e.Kind), e.Data)
}

func (s *eventStream) ShowToast(t alert.Toast) {
	s.send("toast", t)
}

func (s *eventStream) DismissToast(id uuid.UUID) {
	s.send("toast-dismiss", dismissal{ID: id})
}

func (s *eventStream) ShowBanner(b alert.Banner) {
	s.send("banner", b)
}

func (s *eventStream) DismissBanner(id uuid.UUID) {
	s.send("banner-dismiss", dismissal{ID: id})
}

func (s *eventStream) PlayChime() {
	s.send("chime", struct{}{})
}

func writeEvent(w io.Writer, name string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", name, err)
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, payload)
	return err
}
