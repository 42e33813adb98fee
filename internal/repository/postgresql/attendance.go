package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/attendance"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/clock"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const attendanceColumns = `
	id, employee_id, date, status,
	check_in_time, check_in_latitude, check_in_longitude, check_in_distance,
	check_out_time, check_out_latitude, check_out_longitude, check_out_distance,
	is_late, is_early_departure, late_minutes, early_minutes,
	late_reason, early_reason, created_at, updated_at`

type attendanceRepository struct {
	db  *database.DB
	loc *time.Location
}

// NewAttendanceRepository returns the pgx store. Dates are read back as
// midnight in loc.
func NewAttendanceRepository(db *database.DB, loc *time.Location) attendance.AttendanceRepository {
	if loc == nil {
		loc = time.UTC
	}
	return &attendanceRepository{db: db, loc: loc}
}

func (a *attendanceRepository) scan(row pgx.Row) (attendance.AttendanceDay, error) {
	var (
		day    attendance.AttendanceDay
		date   time.Time
		status string
	)
	err := row.Scan(
		&day.ID, &day.EmployeeID, &date, &status,
		&day.CheckInTime, &day.CheckInLatitude, &day.CheckInLongitude, &day.CheckInDistance,
		&day.CheckOutTime, &day.CheckOutLatitude, &day.CheckOutLongitude, &day.CheckOutDistance,
		&day.IsLate, &day.IsEarlyDeparture, &day.LateMinutes, &day.EarlyMinutes,
		&day.LateReason, &day.EarlyReason, &day.CreatedAt, &day.UpdatedAt,
	)
	if err != nil {
		return attendance.AttendanceDay{}, err
	}
	day.Date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, a.loc)
	day.Status = attendance.Status(status)
	for _, t := range []*time.Time{day.CheckInTime, day.CheckOutTime} {
		if t != nil {
			*t = t.In(a.loc)
		}
	}
	return day, nil
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.AttendanceDay, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendance_days
		WHERE employee_id = $1 AND date = $2::date`

	day, err := a.scan(q.QueryRow(ctx, query, employeeID, clock.DateKey(date)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance day: %w", err)
	}
	return &day, nil
}

// Mutate implements attendance.AttendanceRepository. The row is created if
// absent and locked with FOR UPDATE, so concurrent callers for the same key
// queue behind each other. Any error from fn rolls the transaction back,
// including the insert.
func (a *attendanceRepository) Mutate(ctx context.Context, employeeID string, date time.Time, fn attendance.MutateFunc) (attendance.AttendanceDay, error) {
	var result attendance.AttendanceDay

	err := WithTransaction(ctx, a.db, func(txCtx context.Context, tx pgx.Tx) error {
		dateKey := clock.DateKey(date)

		_, err := tx.Exec(txCtx, `
			INSERT INTO attendance_days (id, employee_id, date, status)
			VALUES ($1, $2, $3::date, $4)
			ON CONFLICT (employee_id, date) DO NOTHING`,
			uuid.New().String(), employeeID, dateKey, string(attendance.StatusNotStarted),
		)
		if err != nil {
			return fmt.Errorf("failed to ensure attendance day: %w", err)
		}

		day, err := a.scan(tx.QueryRow(txCtx, `SELECT `+attendanceColumns+`
			FROM attendance_days
			WHERE employee_id = $1 AND date = $2::date
			FOR UPDATE`, employeeID, dateKey))
		if err != nil {
			return fmt.Errorf("failed to lock attendance day: %w", err)
		}

		if err := fn(&day); err != nil {
			return err
		}

		err = tx.QueryRow(txCtx, `
			UPDATE attendance_days SET
				status = $2,
				check_in_time = $3, check_in_latitude = $4, check_in_longitude = $5, check_in_distance = $6,
				check_out_time = $7, check_out_latitude = $8, check_out_longitude = $9, check_out_distance = $10,
				is_late = $11, is_early_departure = $12, late_minutes = $13, early_minutes = $14,
				late_reason = $15, early_reason = $16, updated_at = NOW()
			WHERE id = $1
			RETURNING updated_at`,
			day.ID, string(day.Status),
			day.CheckInTime, day.CheckInLatitude, day.CheckInLongitude, day.CheckInDistance,
			day.CheckOutTime, day.CheckOutLatitude, day.CheckOutLongitude, day.CheckOutDistance,
			day.IsLate, day.IsEarlyDeparture, day.LateMinutes, day.EarlyMinutes,
			day.LateReason, day.EarlyReason,
		).Scan(&day.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to update attendance day: %w", err)
		}

		result = day
		return nil
	})
	if err != nil {
		return attendance.AttendanceDay{}, err
	}
	return result, nil
}

func (a *attendanceRepository) list(ctx context.Context, query string, args ...interface{}) ([]attendance.AttendanceDay, error) {
	q := GetQuerier(ctx, a.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance days: %w", err)
	}
	defer rows.Close()

	var days []attendance.AttendanceDay
	for rows.Next() {
		day, err := a.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance day: %w", err)
		}
		days = append(days, day)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attendance days: %w", err)
	}
	return days, nil
}

// ListByRange implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByRange(ctx context.Context, from, to time.Time) ([]attendance.AttendanceDay, error) {
	return a.list(ctx, `SELECT `+attendanceColumns+`
		FROM attendance_days
		WHERE date BETWEEN $1::date AND $2::date
		ORDER BY date, employee_id`,
		clock.DateKey(from), clock.DateKey(to))
}

// ListByEmployee implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.AttendanceDay, error) {
	return a.list(ctx, `SELECT `+attendanceColumns+`
		FROM attendance_days
		WHERE employee_id = $1 AND date BETWEEN $2::date AND $3::date
		ORDER BY date DESC`,
		employeeID, clock.DateKey(from), clock.DateKey(to))
}

// CountOpenSince implements attendance.AttendanceRepository.
func (a *attendanceRepository) CountOpenSince(ctx context.Context, before time.Time) (int, error) {
	q := GetQuerier(ctx, a.db)

	var count int
	err := q.QueryRow(ctx, `
		SELECT COUNT(*) FROM attendance_days
		WHERE status = $1 AND check_in_time < $2`,
		string(attendance.StatusCheckedIn), before,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count open attendance days: %w", err)
	}
	return count, nil
}
