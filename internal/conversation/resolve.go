// Package conversation derives the identifier shared by both participants of a direct chat.
package conversation

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dtroode/campuschat-server/internal/model"
)

const separator = "_"

// Resolve returns the conversation id of the unordered pair {a, b}.
// The canonical string forms are sorted and joined, so Resolve(a, b) == Resolve(b, a).
func Resolve(a, b uuid.UUID) (model.ConversationID, error) {
	if a == b {
		return "", model.ErrSelfConversation
	}

	first, second := a.String(), b.String()
	if second < first {
		first, second = second, first
	}

	return model.ConversationID(first + separator + second), nil
}

// Participants parses a conversation id back into its two members in id order.
func Participants(id model.ConversationID) (uuid.UUID, uuid.UUID, error) {
	first, second, ok := strings.Cut(string(id), separator)
	if !ok {
		return uuid.Nil, uuid.Nil, fmt.Errorf("%w: malformed conversation id %q", model.ErrInvalidArgument, id)
	}

	a, err := uuid.Parse(first)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("%w: malformed conversation id %q: %w", model.ErrInvalidArgument, id, err)
	}
	b, err := uuid.Parse(second)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("%w: malformed conversation id %q: %w", model.ErrInvalidArgument, id, err)
	}

	resolved, err := Resolve(a, b)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	if resolved != id {
		return uuid.Nil, uuid.Nil, fmt.Errorf("%w: non-canonical conversation id %q", model.ErrInvalidArgument, id)
	}

	return a, b, nil
}

// Peer returns the participant of id that is not self.
func Peer(id model.ConversationID, self uuid.UUID) (uuid.UUID, error) {
	a, b, err := Participants(id)
	if err != nil {
		return uuid.Nil, err
	}

	switch self {
	case a:
		return b, nil
	case b:
		return a, nil
	default:
		return uuid.Nil, fmt.Errorf("%w: %s is not a participant of %s", model.ErrForbidden, self, id)
	}
}
