package service

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/campuschat-server/internal/model"
)

// MockUserStore mocks the UserStore interface
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) Create(ctx context.Context, user model.User) (model.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserStore) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserStore) AddToSet(ctx context.Context, id uuid.UUID, set model.UserSet, member uuid.UUID) error {
	args := m.Called(ctx, id, set, member)
	return args.Error(0)
}

func (m *MockUserStore) RemoveFromSet(ctx context.Context, id uuid.UUID, set model.UserSet, member uuid.UUID) error {
	args := m.Called(ctx, id, set, member)
	return args.Error(0)
}

func (m *MockUserStore) SetAllowChat(ctx context.Context, id uuid.UUID, allow bool) error {
	args := m.Called(ctx, id, allow)
	return args.Error(0)
}

func (m *MockUserStore) SetOnline(ctx context.Context, id uuid.UUID, online bool) error {
	args := m.Called(ctx, id, online)
	return args.Error(0)
}

// MockMessageStore mocks the MessageStore interface
type MockMessageStore struct {
	mock.Mock
}

// Create returns the configured message, or the result of a
// func(model.Message) model.Message so tests can echo generated ids.
func (m *MockMessageStore) Create(ctx context.Context, message model.Message) (model.Message, error) {
	args := m.Called(ctx, message)
	if fn, ok := args.Get(0).(func(model.Message) model.Message); ok {
		return fn(message), args.Error(1)
	}
	return args.Get(0).(model.Message), args.Error(1)
}

func (m *MockMessageStore) ListByConversation(ctx context.Context, conversationID model.ConversationID) ([]model.Message, error) {
	args := m.Called(ctx, conversationID)
	return args.Get(0).([]model.Message), args.Error(1)
}

// MockNotificationStore mocks the NotificationStore interface
type MockNotificationStore struct {
	mock.Mock
}

func (m *MockNotificationStore) Create(ctx context.Context, n model.Notification) (model.Notification, error) {
	args := m.Called(ctx, n)
	return args.Get(0).(model.Notification), args.Error(1)
}

func (m *MockNotificationStore) GetByID(ctx context.Context, id uuid.UUID) (model.Notification, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Notification), args.Error(1)
}

func (m *MockNotificationStore) ListByRecipient(ctx context.Context, recipientID uuid.UUID) ([]model.Notification, error) {
	args := m.Called(ctx, recipientID)
	return args.Get(0).([]model.Notification), args.Error(1)
}

func (m *MockNotificationStore) MarkRead(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockNotificationStore) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	args := m.Called(ctx, recipientID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockStorage mocks the Storage interface
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Upload(ctx context.Context, key string, reader io.Reader) error {
	args := m.Called(ctx, key, reader)
	return args.Error(0)
}

func (m *MockStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	rc, _ := args.Get(0).(io.ReadCloser)
	return rc, args.Error(1)
}

func (m *MockStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockStorage) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

// MockAuditStore mocks the AuditStore interface
type MockAuditStore struct {
	mock.Mock
}

func (m *MockAuditStore) Record(ctx context.Context, entry model.AuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// MockDispatcher mocks the Dispatcher interface
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Dispatch(ctx context.Context, params model.DispatchParams) (model.Notification, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(model.Notification), args.Error(1)
}

// MockFeed mocks the ChangeFeed interface
type MockFeed struct {
	mock.Mock
}

func (m *MockFeed) Publish(ctx context.Context, topic string) error {
	args := m.Called(ctx, topic)
	return args.Error(0)
}

func (m *MockFeed) Subscribe(ctx context.Context, topics ...string) (model.FeedSubscription, error) {
	args := m.Called(ctx, topics)
	sub, _ := args.Get(0).(model.FeedSubscription)
	return sub, args.Error(1)
}
