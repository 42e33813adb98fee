package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/audit"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/database"
	"github.com/google/uuid"
)

type auditRepository struct {
	db *database.DB
}

func NewAuditRepository(db *database.DB) audit.Repository {
	return &auditRepository{db: db}
}

// Append implements audit.Repository.
func (r *auditRepository) Append(ctx context.Context, entry audit.Entry) error {
	q := GetQuerier(ctx, r.db)

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	var details []byte
	if entry.Details != nil {
		var err error
		if details, err = json.Marshal(entry.Details); err != nil {
			return fmt.Errorf("failed to encode audit details: %w", err)
		}
	}

	_, err := q.Exec(ctx, `
		INSERT INTO audit_logs (id, actor, action, entity_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.ID, entry.Actor, string(entry.Action), entry.EntityID, details, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

// DeleteOlderThan implements audit.Repository.
func (r *auditRepository) DeleteOlderThan(ctx context.Context, before time.Time, limit int) (int, error) {
	n, err := deleteBatch(ctx, GetQuerier(ctx, r.db), "audit_logs", "created_at < $1", before, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to delete audit entries: %w", err)
	}
	return n, nil
}
