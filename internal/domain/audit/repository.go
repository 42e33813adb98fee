package audit

import (
	"context"
	"time"
)

type Repository interface {
	Append(ctx context.Context, entry Entry) error
	// DeleteOlderThan removes at most limit entries created before the cutoff.
	DeleteOlderThan(ctx context.Context, before time.Time, limit int) (int, error)
}
