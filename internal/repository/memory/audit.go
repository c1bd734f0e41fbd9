package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/dtroode/campuschat-server/internal/model"
)

var _ model.AuditStore = (*AuditRepository)(nil)

type AuditRepository struct {
	db *DB
}

func NewAuditRepository(db *DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Record(_ context.Context, entry model.AuditEntry) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = r.db.timestamp()
	}
	r.db.audit = append(r.db.audit, entry)

	return nil
}
