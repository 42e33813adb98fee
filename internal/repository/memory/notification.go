package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/notification"
)

type notificationRepository struct {
	mu      sync.Mutex
	entries []notification.LogEntry
}

func NewNotificationRepository() notification.Repository {
	return &notificationRepository{}
}

// AppendLog implements notification.Repository.
func (r *notificationRepository) AppendLog(ctx context.Context, entry notification.LogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, entry)
	return nil
}

// ListRecent implements notification.Repository.
func (r *notificationRepository) ListRecent(ctx context.Context, limit int) ([]notification.LogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]notification.LogEntry, len(r.entries))
	copy(out, r.entries)
	sort.SliceStable(out, func(i, j int) bool { return out[i].SentAt.After(out[j].SentAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// DeleteLogsOlderThan implements notification.Repository.
func (r *notificationRepository) DeleteLogsOlderThan(ctx context.Context, before time.Time, limit int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.entries[:0]
	deleted := 0
	for _, e := range r.entries {
		if e.SentAt.Before(before) && (limit <= 0 || deleted < limit) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	r.entries = kept
	return deleted, nil
}
