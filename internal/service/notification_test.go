package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/campuschat-server/internal/model"
	"github.com/dtroode/campuschat-server/internal/testutil"
)

func newNotifications(store *MockNotificationStore, feed *MockFeed, audit *MockAuditStore) *Notifications {
	noop := testutil.MakeNoopLogger()
	return NewNotifications(store, feed, NewAuditor(audit, noop), noop)
}

func TestNotifications_Dispatch(t *testing.T) {
	sender := aliceID
	params := model.DispatchParams{
		RecipientID: bobID,
		SenderID:    &sender,
		Type:        model.NotificationMessage,
		Title:       "New message",
		Text:        "Alice: hi...",
	}

	t.Run("creates unread notification and publishes inbox", func(t *testing.T) {
		store, feed, audit := &MockNotificationStore{}, &MockFeed{}, &MockAuditStore{}
		store.On("Create", mock.Anything, mock.MatchedBy(func(n model.Notification) bool {
			return n.ID != uuid.Nil && n.RecipientID == bobID && !n.Read && n.Type == model.NotificationMessage
		})).Return(model.Notification{RecipientID: bobID}, nil).Once()
		feed.On("Publish", mock.Anything, model.InboxTopic(bobID)).Return(nil).Once()

		_, err := newNotifications(store, feed, audit).Dispatch(context.Background(), params)
		require.NoError(t, err)

		store.AssertExpectations(t)
		feed.AssertExpectations(t)
		audit.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
	})

	t.Run("retries once with the same id", func(t *testing.T) {
		store, feed, audit := &MockNotificationStore{}, &MockFeed{}, &MockAuditStore{}
		store.On("Create", mock.Anything, mock.Anything).Return(model.Notification{}, errors.New("timeout")).Once()
		store.On("Create", mock.Anything, mock.Anything).Return(model.Notification{RecipientID: bobID}, nil).Once()
		feed.On("Publish", mock.Anything, mock.Anything).Return(nil)

		_, err := newNotifications(store, feed, audit).Dispatch(context.Background(), params)
		require.NoError(t, err)

		require.Len(t, store.Calls, 2)
		assert.Equal(t,
			store.Calls[0].Arguments.Get(1).(model.Notification).ID,
			store.Calls[1].Arguments.Get(1).(model.Notification).ID)
	})

	t.Run("failure is audited and returned", func(t *testing.T) {
		store, feed, audit := &MockNotificationStore{}, &MockFeed{}, &MockAuditStore{}
		store.On("Create", mock.Anything, mock.Anything).Return(model.Notification{}, errors.New("timeout")).Twice()
		audit.On("Record", mock.Anything, mock.MatchedBy(func(e model.AuditEntry) bool {
			return e.Action == model.ActionNotificationFailed
		})).Return(nil).Once()

		_, err := newNotifications(store, feed, audit).Dispatch(context.Background(), params)
		assert.ErrorIs(t, err, model.ErrTransientWrite)

		audit.AssertExpectations(t)
		feed.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		bad := params
		bad.Type = "msg"

		_, err := newNotifications(&MockNotificationStore{}, &MockFeed{}, &MockAuditStore{}).Dispatch(context.Background(), bad)
		assert.ErrorIs(t, err, model.ErrInvalidArgument)
	})

	t.Run("rejects missing recipient", func(t *testing.T) {
		bad := params
		bad.RecipientID = uuid.Nil

		_, err := newNotifications(&MockNotificationStore{}, &MockFeed{}, &MockAuditStore{}).Dispatch(context.Background(), bad)
		assert.ErrorIs(t, err, model.ErrInvalidArgument)
	})
}

func TestNotifications_MarkReadAndDelete(t *testing.T) {
	id := uuid.New()
	mine := model.Notification{ID: id, RecipientID: bobID}

	tests := []struct {
		name    string
		setup   func(store *MockNotificationStore, feed *MockFeed)
		call    func(s *Notifications) error
		wantErr error
	}{
		{
			name: "mark own read",
			setup: func(store *MockNotificationStore, feed *MockFeed) {
				store.On("GetByID", mock.Anything, id).Return(mine, nil)
				store.On("MarkRead", mock.Anything, id).Return(nil).Once()
				feed.On("Publish", mock.Anything, model.InboxTopic(bobID)).Return(nil).Once()
			},
			call: func(s *Notifications) error { return s.MarkRead(context.Background(), bobID, id) },
		},
		{
			name: "mark other's read",
			setup: func(store *MockNotificationStore, feed *MockFeed) {
				store.On("GetByID", mock.Anything, id).Return(mine, nil)
			},
			call:    func(s *Notifications) error { return s.MarkRead(context.Background(), aliceID, id) },
			wantErr: model.ErrNotFound,
		},
		{
			name: "delete own",
			setup: func(store *MockNotificationStore, feed *MockFeed) {
				store.On("GetByID", mock.Anything, id).Return(mine, nil)
				store.On("Delete", mock.Anything, id).Return(nil).Once()
				feed.On("Publish", mock.Anything, model.InboxTopic(bobID)).Return(nil).Once()
			},
			call: func(s *Notifications) error { return s.Delete(context.Background(), bobID, id) },
		},
		{
			name: "delete missing is a no-op",
			setup: func(store *MockNotificationStore, feed *MockFeed) {
				store.On("GetByID", mock.Anything, id).Return(model.Notification{}, model.ErrNotFound)
			},
			call: func(s *Notifications) error { return s.Delete(context.Background(), bobID, id) },
		},
		{
			name: "delete other's",
			setup: func(store *MockNotificationStore, feed *MockFeed) {
				store.On("GetByID", mock.Anything, id).Return(mine, nil)
			},
			call:    func(s *Notifications) error { return s.Delete(context.Background(), aliceID, id) },
			wantErr: model.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, feed := &MockNotificationStore{}, &MockFeed{}
			tt.setup(store, feed)

			err := tt.call(newNotifications(store, feed, &MockAuditStore{}))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}

			store.AssertExpectations(t)
			feed.AssertExpectations(t)
		})
	}
}

func TestNotifications_UnreadCountAndMarkAllRead(t *testing.T) {
	store, feed := &MockNotificationStore{}, &MockFeed{}
	store.On("ListByRecipient", mock.Anything, bobID).Return([]model.Notification{
		{ID: uuid.New(), Read: false},
		{ID: uuid.New(), Read: true},
		{ID: uuid.New(), Read: false},
	}, nil)
	store.On("MarkAllRead", mock.Anything, bobID).Return(int64(2), nil).Once()
	store.On("MarkAllRead", mock.Anything, bobID).Return(int64(0), nil).Once()
	feed.On("Publish", mock.Anything, model.InboxTopic(bobID)).Return(nil).Once()

	s := newNotifications(store, feed, &MockAuditStore{})

	unread, err := s.UnreadCount(context.Background(), bobID)
	require.NoError(t, err)
	assert.Equal(t, 2, unread)

	updated, err := s.MarkAllRead(context.Background(), bobID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	updated, err = s.MarkAllRead(context.Background(), bobID)
	require.NoError(t, err)
	assert.Zero(t, updated)

	feed.AssertExpectations(t)
}
