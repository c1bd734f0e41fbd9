package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/campuschat-server/internal/model"
)

var insertAudit = regexp.QuoteMeta(`INSERT INTO system_logs (id, action, details, actor_id, created_at) VALUES ($1, $2, $3, $4, $5)`)

func TestAuditRepository_Record(t *testing.T) {
	actor := uuid.New()
	entryID := uuid.New()
	createdAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		entry     model.AuditEntry
		setupMock func(mock sqlmock.Sqlmock)
		wantErr   bool
	}{
		{
			name: "with actor",
			entry: model.AuditEntry{
				ID:        entryID,
				Action:    model.ActionBlock,
				Details:   "blocked",
				ActorID:   &actor,
				CreatedAt: createdAt,
			},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(insertAudit).
					WithArgs(entryID.String(), model.ActionBlock, "blocked", actor.String(), createdAt).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "system entry fills id and time",
			entry: model.AuditEntry{
				Action:  model.ActionNotificationFailed,
				Details: "recipient gone",
			},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(insertAudit).
					WithArgs(sqlmock.AnyArg(), model.ActionNotificationFailed, "recipient gone", nil, sqlmock.AnyArg()).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "database error",
			entry: model.AuditEntry{
				Action: model.ActionSendMessage,
			},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(insertAudit).
					WillReturnError(errors.New("connection reset"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.setupMock(mock)

			repo := NewAuditRepository(db)
			err = repo.Record(context.Background(), tt.entry)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
