package main

import (
	"context"
	"fmt"

	"github.com/dtroode/campuschat-server/internal/api/http/handler"
	"github.com/dtroode/campuschat-server/internal/config"
	"github.com/dtroode/campuschat-server/internal/feed"
	"github.com/dtroode/campuschat-server/internal/logger"
	"github.com/dtroode/campuschat-server/internal/model"
	"github.com/dtroode/campuschat-server/internal/repository/memory"
	"github.com/dtroode/campuschat-server/internal/repository/postgres"
	storage "github.com/dtroode/campuschat-server/internal/storage/minio"
)

// backend bundles the stores, change feed and object storage of one deployment.
type backend struct {
	users         model.UserStore
	messages      model.MessageStore
	notifications model.NotificationStore
	erasure       model.ErasureStore
	audit         model.AuditStore
	feed          model.ChangeFeed
	storage       model.Storage
	checks        map[string]handler.Pinger
	closers       []func() error
}

func openBackend(ctx context.Context, cfg *config.Config, logger *logger.Logger) (*backend, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return openMemory(logger), nil
	default:
		return openPostgres(ctx, cfg, logger)
	}
}

func openMemory(logger *logger.Logger) *backend {
	logger.Warn("Using in-memory backend, data is lost on restart")

	db := memory.NewDB()
	memoryFeed := feed.NewMemoryFeed()
	return &backend{
		users:         memory.NewUserRepository(db),
		messages:      memory.NewMessageRepository(db),
		notifications: memory.NewNotificationRepository(db),
		erasure:       memory.NewErasureRepository(db),
		audit:         memory.NewAuditRepository(db),
		feed:          memoryFeed,
		closers:       []func() error{memoryFeed.Close},
	}
}

func openPostgres(ctx context.Context, cfg *config.Config, logger *logger.Logger) (*backend, error) {
	b := &backend{checks: make(map[string]handler.Pinger)}

	conn, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	b.closers = append(b.closers, conn.Close)
	b.checks["postgres"] = conn

	sqlDB := conn.SQL()
	b.closers = append(b.closers, sqlDB.Close)

	redisFeed, err := feed.NewRedisFeed(cfg.Redis.URL, cfg.Redis.ChannelPrefix, logger)
	if err != nil {
		b.close(logger)
		return nil, fmt.Errorf("failed to connect change feed: %w", err)
	}
	b.closers = append(b.closers, redisFeed.Close)
	b.checks["redis"] = redisFeed

	storageClient, err := storage.New(ctx, storage.Config{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Bucket:    cfg.Storage.Bucket,
		UseSSL:    cfg.Storage.UseSSL,
	})
	if err != nil {
		b.close(logger)
		return nil, fmt.Errorf("failed to initialize storage client: %w", err)
	}

	b.users = postgres.NewUserRepository(conn)
	b.messages = postgres.NewMessageRepository(conn)
	b.notifications = postgres.NewNotificationRepository(conn)
	b.erasure = postgres.NewErasureRepository(conn)
	b.audit = postgres.NewAuditRepository(sqlDB)
	b.feed = redisFeed
	b.storage = storageClient

	return b, nil
}

// close releases resources in reverse order of acquisition.
func (b *backend) close(logger *logger.Logger) {
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			logger.Warn("failed to close resource", "error", err)
		}
	}
}
