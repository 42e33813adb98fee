package notification

import (
	"context"
	"time"
)

// Repository defines the notification log repository interface
type Repository interface {
	AppendLog(ctx context.Context, entry LogEntry) error
	// ListRecent returns the newest entries first.
	ListRecent(ctx context.Context, limit int) ([]LogEntry, error)
	// DeleteLogsOlderThan removes at most limit entries sent before the cutoff.
	DeleteLogsOlderThan(ctx context.Context, before time.Time, limit int) (int, error)
}
