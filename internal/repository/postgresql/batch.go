package postgresql

import (
	"context"
	"time"

	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/database"
)

// deleteBatch removes at most limit rows of table matching cond, where cond
// references the cutoff as $1. A limit <= 0 removes every match.
func deleteBatch(ctx context.Context, q database.Querier, table, cond string, cutoff time.Time, limit int) (int, error) {
	query := `DELETE FROM ` + table + ` WHERE ` + cond
	args := []interface{}{cutoff}
	if limit > 0 {
		query = `DELETE FROM ` + table + ` WHERE ctid IN (SELECT ctid FROM ` + table + ` WHERE ` + cond + ` LIMIT $2)`
		args = append(args, limit)
	}

	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
