package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/dtroode/campuschat-server/internal/logger"
	"github.com/dtroode/campuschat-server/internal/model"
)

// Auditor writes system log entries on a best-effort basis: a failed write
// is logged and never reaches the caller.
type Auditor struct {
	store  model.AuditStore
	logger *logger.Logger
}

func NewAuditor(store model.AuditStore, logger *logger.Logger) *Auditor {
	return &Auditor{
		store:  store,
		logger: logger,
	}
}

// Record appends an entry. A nil actor marks a system action.
func (a *Auditor) Record(ctx context.Context, action, details string, actorID *uuid.UUID) {
	if a == nil || a.store == nil {
		return
	}

	err := a.store.Record(ctx, model.AuditEntry{
		ID:      uuid.New(),
		Action:  action,
		Details: details,
		ActorID: actorID,
	})
	if err != nil {
		a.logger.Warn("Failed to record audit entry", "action", action, "error", err)
	}
}
