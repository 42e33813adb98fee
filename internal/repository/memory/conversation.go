package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/conversation"
)

type conversationRepository struct {
	mu     sync.Mutex
	states map[string]conversation.State
}

func NewConversationRepository() conversation.Repository {
	return &conversationRepository{states: make(map[string]conversation.State)}
}

// Get implements conversation.Repository.
func (r *conversationRepository) Get(ctx context.Context, userID string) (*conversation.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.states[userID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

// Save implements conversation.Repository.
func (r *conversationRepository) Save(ctx context.Context, state conversation.State) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.states[state.UserID] = state
	return nil
}

// Delete implements conversation.Repository.
func (r *conversationRepository) Delete(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.states, userID)
	return nil
}

// DeleteExpired implements conversation.Repository.
func (r *conversationRepository) DeleteExpired(ctx context.Context, now time.Time, limit int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	deleted := 0
	for userID, s := range r.states {
		if limit > 0 && deleted >= limit {
			break
		}
		if s.Expired(now) {
			delete(r.states, userID)
			deleted++
		}
	}
	return deleted, nil
}
