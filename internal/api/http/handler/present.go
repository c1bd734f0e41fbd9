package handler

import (
	"sync"

	"github.com/dtroode/campuschat-server/internal/livesync"
	"github.com/dtroode/campuschat-server/internal/model"
	"github.com/dtroode/campuschat-server/internal/textfilter"
)

var _ livesync.Sink = (*presentingSink)(nil)

// conversationResponse is a live conversation as shown to its viewer.
type conversationResponse struct {
	livesync.ConversationView
	Messages []messageResponse `json:"messages"`
}

// presentingSink runs conversation events through the viewer's content
// filter, the same way the REST history does. The filter setting follows the
// viewer's profile events; a change re-sends the open conversation.
type presentingSink struct {
	next   livesync.Sink
	filter *textfilter.Filter

	mu            sync.Mutex
	filterEnabled bool
	conversation  *livesync.ConversationView
}

func newPresentingSink(next livesync.Sink, filter *textfilter.Filter, viewer model.User) *presentingSink {
	return &presentingSink{
		next:          next,
		filter:        filter,
		filterEnabled: viewer.FilterEnabled,
	}
}

func (s *presentingSink) Push(e livesync.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch data := e.Data.(type) {
	case model.User:
		s.next.Push(e)
		if e.Kind != livesync.EventProfile || data.FilterEnabled == s.filterEnabled {
			return
		}
		s.filterEnabled = data.FilterEnabled
		if s.conversation != nil {
			s.next.Push(livesync.Event{Kind: livesync.EventConversation, Data: s.present(*s.conversation)})
		}
	case livesync.ConversationView:
		s.conversation = &data
		s.next.Push(livesync.Event{Kind: e.Kind, Data: s.present(data)})
	default:
		s.next.Push(e)
	}
}

func (s *presentingSink) present(conv livesync.ConversationView) conversationResponse {
	resp := conversationResponse{
		ConversationView: conv,
		Messages:         make([]messageResponse, 0, len(conv.Messages)),
	}
	for _, m := range conv.Messages {
		resp.Messages = append(resp.Messages, presentMessage(s.filter, s.filterEnabled, m))
	}
	return resp
}
