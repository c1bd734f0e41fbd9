package feed

import (
	"context"
	"fmt"
	"sync"

	"github.com/dtroode/campuschat-server/internal/model"
)

var _ model.ChangeFeed = (*MemoryFeed)(nil)

// MemoryFeed is an in-process change feed used with the memory backend.
type MemoryFeed struct {
	mu   sync.Mutex
	subs map[*memorySubscription]struct{}
}

// NewMemoryFeed creates an empty in-process feed.
func NewMemoryFeed() *MemoryFeed {
	return &MemoryFeed{subs: make(map[*memorySubscription]struct{})}
}

// Publish announces a change of topic to every matching subscription.
func (f *MemoryFeed) Publish(ctx context.Context, topic string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for sub := range f.subs {
		if _, ok := sub.topics[topic]; !ok {
			continue
		}
		select {
		case sub.events <- topic:
		default:
		}
	}

	return nil
}

// Subscribe opens a subscription on topics.
func (f *MemoryFeed) Subscribe(ctx context.Context, topics ...string) (model.FeedSubscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(topics) == 0 {
		return nil, fmt.Errorf("%w: no topics", model.ErrInvalidArgument)
	}

	sub := &memorySubscription{
		feed:   f,
		topics: make(map[string]struct{}, len(topics)),
		events: make(chan string, eventBuffer),
	}
	for _, topic := range topics {
		sub.topics[topic] = struct{}{}
	}

	f.mu.Lock()
	f.subs[sub] = struct{}{}
	f.mu.Unlock()

	return sub, nil
}

// Subscribers returns the number of open subscriptions.
func (f *MemoryFeed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

// Close ends every open subscription.
func (f *MemoryFeed) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for sub := range f.subs {
		delete(f.subs, sub)
		close(sub.events)
	}
	return nil
}

type memorySubscription struct {
	feed   *MemoryFeed
	topics map[string]struct{}
	events chan string
}

func (s *memorySubscription) Events() <-chan string {
	return s.events
}

func (s *memorySubscription) Close() error {
	s.feed.mu.Lock()
	defer s.feed.mu.Unlock()

	if _, ok := s.feed.subs[s]; !ok {
		return nil
	}
	delete(s.feed.subs, s)
	close(s.events)
	return nil
}
