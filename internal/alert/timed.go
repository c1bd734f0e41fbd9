package alert

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/campuschat-server/internal/model"
)

var (
	_ Presenter = (*Toaster)(nil)
	_ Announcer = (*Banners)(nil)
	_ Chime     = DisplayChime{}
)

// timers dismisses visible alerts after a fixed window.
type timers struct {
	ttl    time.Duration
	mu     sync.Mutex
	active map[uuid.UUID]*time.Timer
	closed bool
}

func newTimers(ttl time.Duration) *timers {
	return &timers{ttl: ttl, active: make(map[uuid.UUID]*time.Timer)}
}

// schedule calls dismiss(id) once ttl elapses unless stopped first.
func (t *timers) schedule(id uuid.UUID, dismiss func(uuid.UUID)) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return false
	}
	if prev, ok := t.active[id]; ok {
		prev.Stop()
	}
	t.active[id] = time.AfterFunc(t.ttl, func() {
		t.mu.Lock()
		_, ok := t.active[id]
		delete(t.active, id)
		closed := t.closed
		t.mu.Unlock()
		if ok && !closed {
			dismiss(id)
		}
	})
	return true
}

func (t *timers) pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.active)
}

func (t *timers) close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.closed = true
	for id, timer := range t.active {
		timer.Stop()
		delete(t.active, id)
	}
}

// Toaster shows notifications as toasts that dismiss themselves.
type Toaster struct {
	display Display
	timers  *timers
}

// NewToaster creates a Toaster dismissing toasts after ttl.
func NewToaster(display Display, ttl time.Duration) *Toaster {
	return &Toaster{display: display, timers: newTimers(ttl)}
}

func (t *Toaster) Show(_ context.Context, n model.Notification) {
	if !t.timers.schedule(n.ID, t.display.DismissToast) {
		return
	}
	t.display.ShowToast(Toast{
		ID:     n.ID,
		Type:   n.Type,
		Title:  n.Title,
		Text:   n.Text,
		Sender: n.SenderID,
	})
}

// Pending returns the number of toasts still on screen.
func (t *Toaster) Pending() int {
	return t.timers.pending()
}

// Close cancels pending dismissals. Later calls to Show are ignored.
func (t *Toaster) Close() {
	t.timers.close()
}

// Banners shows banner messages that dismiss themselves.
type Banners struct {
	display Display
	timers  *timers
}

// NewBanners creates a Banners dismissing banners after ttl.
func NewBanners(display Display, ttl time.Duration) *Banners {
	return &Banners{display: display, timers: newTimers(ttl)}
}

func (b *Banners) Announce(_ context.Context, text string) {
	id := uuid.New()
	if !b.timers.schedule(id, b.display.DismissBanner) {
		return
	}
	b.display.ShowBanner(Banner{ID: id, Text: text})
}

// Close cancels pending dismissals. Later calls to Announce are ignored.
func (b *Banners) Close() {
	b.timers.close()
}

// DisplayChime plays the chime on a Display.
type DisplayChime struct {
	Display Display
}

func (c DisplayChime) Play(_ context.Context) {
	c.Display.PlayChime()
}
