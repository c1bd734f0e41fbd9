// Package feed implements model.ChangeFeed on Redis pub/sub and in process.
package feed

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dtroode/campuschat-server/internal/logger"
	"github.com/dtroode/campuschat-server/internal/model"
)

// eventBuffer bounds undelivered events per subscription. Once it is full
// further events are dropped: a reload is already pending and will observe them.
const eventBuffer = 16

var _ model.ChangeFeed = (*RedisFeed)(nil)

// RedisFeed publishes topic changes on Redis channels.
type RedisFeed struct {
	client *redis.Client
	prefix string
	logger *logger.Logger
}

// NewRedisFeed connects to redisURL and returns a feed using channels named prefix+topic.
func NewRedisFeed(redisURL, prefix string, logger *logger.Logger) (*RedisFeed, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisFeedWithClient(client, prefix, logger), nil
}

// NewRedisFeedWithClient creates a feed from an existing Redis client.
func NewRedisFeedWithClient(client *redis.Client, prefix string, logger *logger.Logger) *RedisFeed {
	return &RedisFeed{
		client: client,
		prefix: prefix,
		logger: logger,
	}
}

func (f *RedisFeed) channel(topic string) string {
	return f.prefix + topic
}

// Publish announces a change of topic.
func (f *RedisFeed) Publish(ctx context.Context, topic string) error {
	if err := f.client.Publish(ctx, f.channel(topic), topic).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// Subscribe opens a subscription on topics. It returns once Redis has
// confirmed the subscription, so any change published afterwards is delivered.
func (f *RedisFeed) Subscribe(ctx context.Context, topics ...string) (model.FeedSubscription, error) {
	if len(topics) == 0 {
		return nil, fmt.Errorf("%w: no topics", model.ErrInvalidArgument)
	}

	channels := make([]string, len(topics))
	for i, topic := range topics {
		channels[i] = f.channel(topic)
	}

	ps := f.client.Subscribe(ctx, channels...)
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, fmt.Errorf("subscribe %s: %w", strings.Join(topics, ","), err)
	}

	sub := &redisSubscription{
		ps:     ps,
		events: make(chan string, eventBuffer),
		done:   make(chan struct{}),
	}
	go sub.forward(f.prefix)

	f.logger.Debug("subscribed to change feed", "topics", topics)

	return sub, nil
}

// Close closes the underlying Redis client.
func (f *RedisFeed) Close() error {
	return f.client.Close()
}

// Ping checks if Redis is reachable.
func (f *RedisFeed) Ping(ctx context.Context) error {
	return f.client.Ping(ctx).Err()
}

type redisSubscription struct {
	ps        *redis.PubSub
	events    chan string
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

func (s *redisSubscription) forward(prefix string) {
	defer close(s.done)
	defer close(s.events)

	for msg := range s.ps.Channel() {
		topic := strings.TrimPrefix(msg.Channel, prefix)
		select {
		case s.events <- topic:
		default:
		}
	}
}

func (s *redisSubscription) Events() <-chan string {
	return s.events
}

func (s *redisSubscription) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.ps.Close()
		<-s.done
	})
	return s.closeErr
}
