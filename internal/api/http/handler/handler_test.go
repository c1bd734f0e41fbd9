package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	httpctx "github.com/dtroode/campuschat-server/internal/api/http/context"
	"github.com/dtroode/campuschat-server/internal/model"
)

type MockMessagingService struct {
	mock.Mock
}

func (m *MockMessagingService) Send(ctx context.Context, params model.SendParams) (model.Message, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(model.Message), args.Error(1)
}

func (m *MockMessagingService) History(ctx context.Context, actorID, peerID uuid.UUID) ([]model.Message, error) {
	args := m.Called(ctx, actorID, peerID)
	messages, _ := args.Get(0).([]model.Message)
	return messages, args.Error(1)
}

func (m *MockMessagingService) Verdict(ctx context.Context, actorID, peerID uuid.UUID) (model.Verdict, error) {
	args := m.Called(ctx, actorID, peerID)
	return args.Get(0).(model.Verdict), args.Error(1)
}

type MockUserReader struct {
	mock.Mock
}

func (m *MockUserReader) Get(ctx context.Context, id uuid.UUID) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) List(ctx context.Context, recipientID uuid.UUID) ([]model.Notification, error) {
	args := m.Called(ctx, recipientID)
	list, _ := args.Get(0).([]model.Notification)
	return list, args.Error(1)
}

func (m *MockNotificationService) MarkRead(ctx context.Context, recipientID, id uuid.UUID) error {
	return m.Called(ctx, recipientID, id).Error(0)
}

func (m *MockNotificationService) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	args := m.Called(ctx, recipientID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationService) Delete(ctx context.Context, recipientID, id uuid.UUID) error {
	return m.Called(ctx, recipientID, id).Error(0)
}

// serve routes a single request through pattern so that URL parameters are
// populated, acting as userID when it is not nil.
func serve(method, pattern, target, body string, userID uuid.UUID, h http.HandlerFunc) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.MethodFunc(method, pattern, h)

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if userID != uuid.Nil {
		req = req.WithContext(httpctx.NewManager().SetUserIDToContext(req.Context(), userID))
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}
