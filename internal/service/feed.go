package service

import (
	"context"

	"github.com/dtroode/campuschat-server/internal/logger"
	"github.com/dtroode/campuschat-server/internal/model"
)

// publish announces changes on topics. Subscribers re-read on the next event
// anyway, so a failed publish is only logged.
func publish(ctx context.Context, feed model.ChangeFeed, logger *logger.Logger, topics ...string) {
	if feed == nil {
		return
	}
	for _, topic := range topics {
		if err := feed.Publish(ctx, topic); err != nil {
			logger.Warn("Failed to publish change", "topic", topic, "error", err)
		}
	}
}
