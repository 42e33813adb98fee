package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/audit"
	"github.com/google/uuid"
)

// AuditRepository keeps entries in insertion order. Entries exposes them to tests.
type AuditRepository struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func NewAuditRepository() *AuditRepository {
	return &AuditRepository{}
}

// Append implements audit.Repository.
func (r *AuditRepository) Append(ctx context.Context, entry audit.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	r.entries = append(r.entries, entry)
	return nil
}

// DeleteOlderThan implements audit.Repository.
func (r *AuditRepository) DeleteOlderThan(ctx context.Context, before time.Time, limit int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.entries[:0]
	deleted := 0
	for _, e := range r.entries {
		if e.CreatedAt.Before(before) && (limit <= 0 || deleted < limit) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	r.entries = kept
	return deleted, nil
}

func (r *AuditRepository) Entries() []audit.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]audit.Entry, len(r.entries))
	copy(out, r.entries)
	return out
}
