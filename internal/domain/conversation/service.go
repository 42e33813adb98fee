package conversation

import (
	"context"
	"time"
)

// Reply is what the dialogue engine wants sent back to the user.
type Reply struct {
	// Handled is false when the user had no active dialogue.
	Handled bool
	// Done is true when the dialogue finished and its state was deleted.
	Done    bool
	Message string
}

type Service interface {
	// Begin starts a dialogue, replacing any existing one for the user.
	Begin(ctx context.Context, userID string, payload Payload) (State, error)

	// Active returns the user's non-expired dialogue or nil.
	Active(ctx context.Context, userID string) (*State, error)

	// Consume routes free text to the active dialogue's current step.
	Consume(ctx context.Context, userID string, text string) (Reply, error)

	// Cancel drops the user's dialogue; false when there was none.
	Cancel(ctx context.Context, userID string) (bool, error)

	// ExpireSweep deletes every state whose expiry is <= now.
	ExpireSweep(ctx context.Context, now time.Time) (int, error)
}
