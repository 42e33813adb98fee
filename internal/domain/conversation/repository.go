package conversation

import (
	"context"
	"time"
)

type Repository interface {
	// Get returns nil, nil when the user has no stored state.
	Get(ctx context.Context, userID string) (*State, error)
	// Save overwrites any existing state of the user.
	Save(ctx context.Context, state State) error
	Delete(ctx context.Context, userID string) error
	// DeleteExpired removes at most limit states with ExpiresAt <= now.
	DeleteExpired(ctx context.Context, now time.Time, limit int) (int, error)
}
