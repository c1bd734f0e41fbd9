package model

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// ChangeFeed announces that records behind a topic changed. Delivery is
// at-least-once and carries no payload: subscribers re-read their snapshot.
type ChangeFeed interface {
	Publish(ctx context.Context, topic string) error
	Subscribe(ctx context.Context, topics ...string) (FeedSubscription, error)
}

// FeedSubscription is an open subscription on a ChangeFeed.
type FeedSubscription interface {
	Events() <-chan string
	Close() error
}

// DirectoryTopic changes whenever any directory entry changes.
const DirectoryTopic = "directory"

// UserTopic changes whenever the given user's record changes.
func UserTopic(id uuid.UUID) string {
	return fmt.Sprintf("user:%s", id)
}

// ConversationTopic changes whenever a message is appended to or removed from the conversation.
func ConversationTopic(id ConversationID) string {
	return fmt.Sprintf("conversation:%s", id)
}

// InboxTopic changes whenever the recipient's notifications change.
func InboxTopic(recipientID uuid.UUID) string {
	return fmt.Sprintf("inbox:%s", recipientID)
}
