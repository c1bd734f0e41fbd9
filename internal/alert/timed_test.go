package alert

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/campuschat-server/internal/model"
)

type recordingDisplay struct {
	mu              sync.Mutex
	toasts          []Toast
	dismissedToasts []uuid.UUID
	banners         []Banner
	dismissedBanner []uuid.UUID
	chimes          int
}

func (d *recordingDisplay) ShowToast(t Toast) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.toasts = append(d.toasts, t)
}

func (d *recordingDisplay) DismissToast(id uuid.UUID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dismissedToasts = append(d.dismissedToasts, id)
}

func (d *recordingDisplay) ShowBanner(b Banner) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.banners = append(d.banners, b)
}

func (d *recordingDisplay) DismissBanner(id uuid.UUID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dismissedBanner = append(d.dismissedBanner, id)
}

func (d *recordingDisplay) PlayChime() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.chimes++
}

func (d *recordingDisplay) dismissedToastCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.dismissedToasts)
}

func (d *recordingDisplay) dismissedBannerCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.dismissedBanner)
}

func TestToaster_ShowsAndDismisses(t *testing.T) {
	display := &recordingDisplay{}
	toaster := NewToaster(display, 20*time.Millisecond)
	defer toaster.Close()

	sender := uuid.New()
	n := model.Notification{ID: uuid.New(), Type: model.NotificationMessage, Title: "New message", Text: "Alice: hi...", SenderID: &sender}
	toaster.Show(context.Background(), n)

	require.Len(t, display.toasts, 1)
	assert.Equal(t, n.ID, display.toasts[0].ID)
	assert.Equal(t, "Alice: hi...", display.toasts[0].Text)
	assert.Equal(t, 1, toaster.Pending())

	require.Eventually(t, func() bool { return display.dismissedToastCount() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, n.ID, display.dismissedToasts[0])
	assert.Zero(t, toaster.Pending())
}

func TestToaster_CloseCancelsDismissals(t *testing.T) {
	display := &recordingDisplay{}
	toaster := NewToaster(display, 10*time.Millisecond)

	toaster.Show(context.Background(), model.Notification{ID: uuid.New()})
	toaster.Close()
	toaster.Show(context.Background(), model.Notification{ID: uuid.New()})

	time.Sleep(40 * time.Millisecond)
	assert.Len(t, display.toasts, 1)
	assert.Zero(t, display.dismissedToastCount())
}

func TestBanners_Announce(t *testing.T) {
	display := &recordingDisplay{}
	banners := NewBanners(display, 20*time.Millisecond)
	defer banners.Close()

	banners.Announce(context.Background(), "this user has blocked you")

	require.Len(t, display.banners, 1)
	assert.Equal(t, "this user has blocked you", display.banners[0].Text)
	require.Eventually(t, func() bool { return display.dismissedBannerCount() == 1 }, time.Second, 5*time.Millisecond)
}

func TestDisplayChime(t *testing.T) {
	display := &recordingDisplay{}
	DisplayChime{Display: display}.Play(context.Background())
	assert.Equal(t, 1, display.chimes)
}
