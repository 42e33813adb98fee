package attendance

import (
	"context"
	"time"
)

// MutateFunc edits a locked record in place. Returning an error aborts the
// write and nothing (including a freshly created record) is persisted.
type MutateFunc func(day *AttendanceDay) error

// AttendanceRepository defines data access methods for attendance days.
type AttendanceRepository interface {
	// GetByEmployeeAndDate returns nil, nil when no record exists.
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*AttendanceDay, error)

	// Mutate atomically creates the (employee, date) record in NOT_STARTED if
	// absent, locks it, and applies fn. Concurrent callers for the same key
	// are serialized.
	Mutate(ctx context.Context, employeeID string, date time.Time, fn MutateFunc) (AttendanceDay, error)

	// ListByRange returns records with from <= date <= to.
	ListByRange(ctx context.Context, from, to time.Time) ([]AttendanceDay, error)

	// ListByEmployee returns one employee's records with from <= date <= to, newest first.
	ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]AttendanceDay, error)

	// CountOpenSince counts CHECKED_IN records whose check-in happened before the given instant.
	CountOpenSince(ctx context.Context, before time.Time) (int, error)
}
