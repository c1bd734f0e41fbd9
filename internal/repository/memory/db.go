// Package memory keeps every store in process. It backs BACKEND=memory and
// the service tests.
package memory

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/campuschat-server/internal/model"
)

// DB is the shared state behind the memory repositories.
type DB struct {
	mu            sync.RWMutex
	users         map[uuid.UUID]model.User
	messages      []model.Message
	notifications map[uuid.UUID]model.Notification
	audit         []model.AuditEntry
	seq           int64
	last          time.Time
	now           func() time.Time
}

// NewDB returns an empty DB.
func NewDB() *DB {
	return &DB{
		users:         make(map[uuid.UUID]model.User),
		notifications: make(map[uuid.UUID]model.Notification),
		now:           time.Now,
	}
}

// timestamp returns a strictly increasing server time. Callers hold mu.
func (db *DB) timestamp() time.Time {
	t := db.now().UTC()
	if !t.After(db.last) {
		t = db.last.Add(time.Nanosecond)
	}
	db.last = t
	return t
}

// AuditEntries returns a copy of the recorded audit log.
func (db *DB) AuditEntries() []model.AuditEntry {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return slices.Clone(db.audit)
}

func cloneUser(u model.User) model.User {
	u.Blocked = slices.Clone(u.Blocked)
	u.Following = slices.Clone(u.Following)
	u.Followers = slices.Clone(u.Followers)
	u.ChatWhitelist = slices.Clone(u.ChatWhitelist)
	return u
}

func cloneNotification(n model.Notification) model.Notification {
	if n.SenderID != nil {
		sender := *n.SenderID
		n.SenderID = &sender
	}
	return n
}
