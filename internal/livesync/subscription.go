package livesync

import (
	"context"
	"errors"

	"github.com/dtroode/campuschat-server/internal/logger"
	"github.com/dtroode/campuschat-server/internal/model"
)

// errClosed stops a subscription after its source disappeared.
var errClosed = errors.New("subscription source is gone")

// loadFunc reads a fresh snapshot and hands it to the session. backlog is
// true until the first load succeeds.
type loadFunc func(ctx context.Context, backlog bool) error

// subscription re-reads one data source whenever the change feed announces
// one of its topics.
type subscription struct {
	name   string
	cancel context.CancelFunc
	done   chan struct{}
	lost   func()
	logger *logger.Logger
}

// startSubscription subscribes to topics before the first load, so no change
// can slip between the backlog read and the first delta. lost, if set, is
// called when the feed ends the subscription before it is stopped.
func startSubscription(
	parent context.Context,
	feed model.ChangeFeed,
	logger *logger.Logger,
	name string,
	topics []string,
	load loadFunc,
	lost func(),
) (*subscription, error) {
	ctx, cancel := context.WithCancel(parent)

	events, err := feed.Subscribe(ctx, topics...)
	if err != nil {
		cancel()
		return nil, err
	}

	s := &subscription{
		name:   name,
		cancel: cancel,
		done:   make(chan struct{}),
		lost:   lost,
		logger: logger.With("subscription", name),
	}
	go s.run(ctx, events, load)

	return s, nil
}

func (s *subscription) run(ctx context.Context, events model.FeedSubscription, load loadFunc) {
	defer close(s.done)
	defer events.Close()

	synced := false
	reload := func() bool {
		err := load(ctx, !synced)
		switch {
		case err == nil:
			synced = true
		case errors.Is(err, errClosed):
			s.logger.Debug("Subscription source is gone")
			return false
		case ctx.Err() != nil:
			return false
		default:
			s.logger.Warn("Failed to load snapshot", "error", err)
		}
		return true
	}

	if !reload() {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-events.Events():
			if !ok || !drain(events.Events()) {
				s.feedClosed(ctx)
				return
			}
			if !reload() {
				return
			}
		}
	}
}

func (s *subscription) feedClosed(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	s.logger.Warn("Change feed closed the subscription")
	if s.lost != nil {
		s.lost()
	}
}

// drain drops queued events; one reload covers all of them.
func drain(events <-chan string) bool {
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return false
			}
		default:
			return true
		}
	}
}

// stop cancels the subscription and waits for its goroutine to exit.
func (s *subscription) stop() {
	s.cancel()
	<-s.done
}
