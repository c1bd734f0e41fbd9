package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/campuschat-server/internal/model"
)

var _ model.AuditStore = (*AuditRepository)(nil)

// AuditRepository writes system log entries through database/sql.
type AuditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{
		db: db,
	}
}

func (r *AuditRepository) Record(ctx context.Context, entry model.AuditEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	var actorID any
	if entry.ActorID != nil {
		actorID = entry.ActorID.String()
	}

	query := `INSERT INTO system_logs (id, action, details, actor_id, created_at) VALUES ($1, $2, $3, $4, $5)`

	if _, err := r.db.ExecContext(ctx, query, entry.ID.String(), entry.Action, entry.Details, actorID, entry.CreatedAt); err != nil {
		return fmt.Errorf("failed to record audit entry: %w", err)
	}

	return nil
}
