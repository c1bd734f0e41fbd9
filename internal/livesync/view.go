package livesync

import (
	"slices"

	"github.com/google/uuid"

	"github.com/dtroode/campuschat-server/internal/model"
)

// View is what a connected user currently sees.
type View struct {
	Profile      model.User           `json:"profile"`
	Roster       []model.User         `json:"roster"`
	Conversation ConversationView     `json:"conversation"`
	Inbox        []model.Notification `json:"inbox"`
	Unread       int                  `json:"unread"`
}

// ConversationView is the open conversation. Closed is set once the peer
// disappeared from the directory.
type ConversationView struct {
	ID       model.ConversationID `json:"id,omitempty"`
	PeerID   uuid.UUID            `json:"peerId"`
	Peer     model.User           `json:"peer"`
	Messages []model.Message      `json:"messages"`
	Verdict  model.Verdict        `json:"verdict,omitempty"`
	Closed   bool                 `json:"closed"`
}

func (v View) clone() View {
	v.Roster = slices.Clone(v.Roster)
	v.Inbox = slices.Clone(v.Inbox)
	v.Conversation.Messages = slices.Clone(v.Conversation.Messages)
	return v
}

// EventKind names the part of the view an Event replaces.
type EventKind string

const (
	EventProfile      EventKind = "profile"
	EventRoster       EventKind = "roster"
	EventConversation EventKind = "conversation"
	EventInbox        EventKind = "inbox"
)

// Event carries a replaced part of the view.
type Event struct {
	Kind EventKind `json:"kind"`
	Data any       `json:"data"`
}

// InboxSnapshot is the Data of an EventInbox.
type InboxSnapshot struct {
	Notifications []model.Notification `json:"notifications"`
	Unread        int                  `json:"unread"`
}

// Sink receives view updates of a session.
type Sink interface {
	Push(event Event)
}
