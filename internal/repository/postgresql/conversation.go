package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/conversation"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type conversationRepository struct {
	db *database.DB
}

func NewConversationRepository(db *database.DB) conversation.Repository {
	return &conversationRepository{db: db}
}

// Get implements conversation.Repository.
func (r *conversationRepository) Get(ctx context.Context, userID string) (*conversation.State, error) {
	q := GetQuerier(ctx, r.db)

	var (
		state   conversation.State
		typ     string
		payload []byte
	)
	err := q.QueryRow(ctx, `
		SELECT user_id, type, payload, step, expires_at, created_at, updated_at
		FROM conversation_states
		WHERE user_id = $1`, userID,
	).Scan(&state.UserID, &typ, &payload, &state.Step, &state.ExpiresAt, &state.CreatedAt, &state.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get conversation state: %w", err)
	}

	state.Payload, err = conversation.DecodePayload(conversation.Type(typ), payload)
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// Save implements conversation.Repository.
func (r *conversationRepository) Save(ctx context.Context, state conversation.State) error {
	q := GetQuerier(ctx, r.db)

	typ, payload, err := conversation.EncodePayload(state.Payload)
	if err != nil {
		return err
	}

	_, err = q.Exec(ctx, `
		INSERT INTO conversation_states (user_id, type, payload, step, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			type = EXCLUDED.type,
			payload = EXCLUDED.payload,
			step = EXCLUDED.step,
			expires_at = EXCLUDED.expires_at,
			updated_at = NOW()`,
		state.UserID, string(typ), payload, state.Step, state.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save conversation state: %w", err)
	}
	return nil
}

// Delete implements conversation.Repository.
func (r *conversationRepository) Delete(ctx context.Context, userID string) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `DELETE FROM conversation_states WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete conversation state: %w", err)
	}
	return nil
}

// DeleteExpired implements conversation.Repository.
func (r *conversationRepository) DeleteExpired(ctx context.Context, now time.Time, limit int) (int, error) {
	n, err := deleteBatch(ctx, GetQuerier(ctx, r.db), "conversation_states", "expires_at <= $1", now, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired conversations: %w", err)
	}
	return n, nil
}
