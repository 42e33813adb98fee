package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/notification"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/database"
)

type notificationRepository struct {
	db *database.DB
}

func NewNotificationRepository(db *database.DB) notification.Repository {
	return &notificationRepository{db: db}
}

// AppendLog implements notification.Repository.
func (r *notificationRepository) AppendLog(ctx context.Context, entry notification.LogEntry) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `
		INSERT INTO notification_logs (id, recipient, type, message, success, error, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		entry.ID, entry.Recipient, string(entry.Type), entry.Message, entry.Success, entry.Error, entry.SentAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append notification log: %w", err)
	}
	return nil
}

// ListRecent implements notification.Repository.
func (r *notificationRepository) ListRecent(ctx context.Context, limit int) ([]notification.LogEntry, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id, recipient, type, message, success, error, sent_at
		FROM notification_logs
		ORDER BY sent_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notification logs: %w", err)
	}
	defer rows.Close()

	var entries []notification.LogEntry
	for rows.Next() {
		var (
			e   notification.LogEntry
			typ string
		)
		if err := rows.Scan(&e.ID, &e.Recipient, &typ, &e.Message, &e.Success, &e.Error, &e.SentAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification log: %w", err)
		}
		e.Type = notification.NotificationType(typ)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notification logs: %w", err)
	}
	return entries, nil
}

// DeleteLogsOlderThan implements notification.Repository.
func (r *notificationRepository) DeleteLogsOlderThan(ctx context.Context, before time.Time, limit int) (int, error) {
	n, err := deleteBatch(ctx, GetQuerier(ctx, r.db), "notification_logs", "sent_at < $1", before, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to delete notification logs: %w", err)
	}
	return n, nil
}
