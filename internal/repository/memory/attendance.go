package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/attendance"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/clock"
	"github.com/google/uuid"
)

type attendanceRepository struct {
	mu   sync.Mutex
	days map[string]attendance.AttendanceDay
}

func NewAttendanceRepository() attendance.AttendanceRepository {
	return &attendanceRepository{days: make(map[string]attendance.AttendanceDay)}
}

func dayKey(employeeID string, date time.Time) string {
	return employeeID + "|" + clock.DateKey(date)
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.AttendanceDay, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	day, ok := r.days[dayKey(employeeID, date)]
	if !ok {
		return nil, nil
	}
	return &day, nil
}

// Mutate implements attendance.AttendanceRepository. The whole
// create-lock-apply sequence runs under one mutex.
func (r *attendanceRepository) Mutate(ctx context.Context, employeeID string, date time.Time, fn attendance.MutateFunc) (attendance.AttendanceDay, error) {
	if err := ctx.Err(); err != nil {
		return attendance.AttendanceDay{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := dayKey(employeeID, date)
	day, ok := r.days[key]
	if !ok {
		now := time.Now()
		day = attendance.AttendanceDay{
			ID:         uuid.New().String(),
			EmployeeID: employeeID,
			Date:       clock.StartOfDay(date),
			Status:     attendance.StatusNotStarted,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
	}

	working := day
	if err := fn(&working); err != nil {
		return attendance.AttendanceDay{}, err
	}
	working.ID = day.ID
	working.EmployeeID = day.EmployeeID
	working.Date = day.Date
	working.UpdatedAt = time.Now()
	r.days[key] = working

	return working, nil
}

// ListByRange implements attendance.AttendanceRepository.
func (r *attendanceRepository) ListByRange(ctx context.Context, from, to time.Time) ([]attendance.AttendanceDay, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fromKey, toKey := clock.DateKey(from), clock.DateKey(to)
	var out []attendance.AttendanceDay
	for _, day := range r.days {
		k := clock.DateKey(day.Date)
		if k >= fromKey && k <= toKey {
			out = append(out, day)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].EmployeeID < out[j].EmployeeID
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

// ListByEmployee implements attendance.AttendanceRepository.
func (r *attendanceRepository) ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.AttendanceDay, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fromKey, toKey := clock.DateKey(from), clock.DateKey(to)
	var out []attendance.AttendanceDay
	for _, day := range r.days {
		if day.EmployeeID != employeeID {
			continue
		}
		k := clock.DateKey(day.Date)
		if k >= fromKey && k <= toKey {
			out = append(out, day)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

// CountOpenSince implements attendance.AttendanceRepository.
func (r *attendanceRepository) CountOpenSince(ctx context.Context, before time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, day := range r.days {
		if day.Status == attendance.StatusCheckedIn && day.CheckInTime != nil && day.CheckInTime.Before(before) {
			count++
		}
	}
	return count, nil
}
