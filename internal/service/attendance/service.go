package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/attendance"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/audit"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/employee"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/notification"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/clock"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/geo"
)

const defaultHistoryDays = 7

// Policy holds the geofence and the work-day thresholds.
type Policy struct {
	Fence     geo.Fence
	WorkStart clock.TimeOfDay
	WorkEnd   clock.TimeOfDay
}

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	employee.EmployeeRepository
	auditRepo  audit.Repository
	dispatcher notification.Dispatcher
	clock      clock.Clock
	policy     Policy

	alerts sync.WaitGroup
}

// CheckIn implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CheckIn(ctx context.Context, req attendance.CheckInRequest) (attendance.CheckInResult, error) {
	if err := req.Validate(); err != nil {
		return attendance.CheckInResult{}, err
	}

	emp, err := a.activeEmployee(ctx, req.EmployeeID)
	if err != nil {
		return attendance.CheckInResult{}, err
	}

	verdict, err := a.policy.Fence.Check(req.Location)
	if err != nil {
		return attendance.CheckInResult{}, err
	}
	if !verdict.WithinRadius {
		return attendance.CheckInResult{}, &attendance.OutOfRangeError{
			DistanceMeters: verdict.DistanceMeters,
			RadiusMeters:   a.policy.Fence.RadiusMeters,
		}
	}

	at := req.At.In(a.clock.Location())
	workStart := a.policy.WorkStart.On(at)

	day, err := a.AttendanceRepository.Mutate(ctx, emp.ID, clock.StartOfDay(at), func(day *attendance.AttendanceDay) error {
		switch day.Status {
		case attendance.StatusCheckedIn:
			return attendance.ErrAlreadyCheckedIn
		case attendance.StatusComplete:
			return attendance.ErrAlreadyComplete
		}

		lat, lng, dist := req.Location.Latitude, req.Location.Longitude, verdict.DistanceMeters
		day.CheckInTime = &at
		day.CheckInLatitude = &lat
		day.CheckInLongitude = &lng
		day.CheckInDistance = &dist
		day.IsLate = at.After(workStart)
		if day.IsLate {
			day.LateMinutes = minutesBetween(workStart, at)
		}
		day.Status = attendance.StatusCheckedIn
		return nil
	})
	if err != nil {
		return attendance.CheckInResult{}, a.mutationError(err)
	}

	a.recordAudit(ctx, emp.ID, audit.ActionCheckIn, day.ID, map[string]interface{}{
		"at":       at.Format(time.RFC3339),
		"distance": math.Round(verdict.DistanceMeters),
		"is_late":  day.IsLate,
	})

	if day.IsLate {
		a.alertAdmins(ctx, notification.TypeLateAlert, fmt.Sprintf(
			"⚠️ Late check-in: *%s* checked in %d minutes late at %s.",
			emp.FullName, day.LateMinutes, at.Format("15:04"),
		))
	}

	return attendance.CheckInResult{Day: day, Employee: emp, ReasonNeeded: day.IsLate}, nil
}

// CheckOut implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CheckOut(ctx context.Context, req attendance.CheckOutRequest) (attendance.CheckOutResult, error) {
	if err := req.Validate(); err != nil {
		return attendance.CheckOutResult{}, err
	}

	emp, err := a.activeEmployee(ctx, req.EmployeeID)
	if err != nil {
		return attendance.CheckOutResult{}, err
	}

	verdict, err := a.policy.Fence.Check(req.Location)
	if err != nil {
		return attendance.CheckOutResult{}, err
	}
	if !verdict.WithinRadius {
		return attendance.CheckOutResult{}, &attendance.OutOfRangeError{
			DistanceMeters: verdict.DistanceMeters,
			RadiusMeters:   a.policy.Fence.RadiusMeters,
		}
	}

	at := req.At.In(a.clock.Location())
	workEnd := a.policy.WorkEnd.On(at)

	day, err := a.AttendanceRepository.Mutate(ctx, emp.ID, clock.StartOfDay(at), func(day *attendance.AttendanceDay) error {
		switch day.Status {
		case attendance.StatusNotStarted:
			return attendance.ErrNotCheckedIn
		case attendance.StatusComplete:
			return attendance.ErrAlreadyComplete
		}
		if day.CheckInTime == nil {
			return attendance.ErrNotCheckedIn
		}
		if !at.After(*day.CheckInTime) {
			return attendance.ErrCheckOutBeforeCheckIn
		}

		lat, lng, dist := req.Location.Latitude, req.Location.Longitude, verdict.DistanceMeters
		day.CheckOutTime = &at
		day.CheckOutLatitude = &lat
		day.CheckOutLongitude = &lng
		day.CheckOutDistance = &dist
		day.IsEarlyDeparture = at.Before(workEnd)
		if day.IsEarlyDeparture {
			day.EarlyMinutes = minutesBetween(at, workEnd)
		}
		day.Status = attendance.StatusComplete
		return nil
	})
	if err != nil {
		return attendance.CheckOutResult{}, a.mutationError(err)
	}

	worked, _ := day.WorkingDuration()
	a.recordAudit(ctx, emp.ID, audit.ActionCheckOut, day.ID, map[string]interface{}{
		"at":              at.Format(time.RFC3339),
		"distance":        math.Round(verdict.DistanceMeters),
		"is_early":        day.IsEarlyDeparture,
		"working_minutes": int(worked.Minutes()),
	})

	if day.IsEarlyDeparture {
		a.alertAdmins(ctx, notification.TypeEarlyAlert, fmt.Sprintf(
			"⚠️ Early departure: *%s* checked out %d minutes early at %s.",
			emp.FullName, day.EarlyMinutes, at.Format("15:04"),
		))
	}

	return attendance.CheckOutResult{Day: day, Employee: emp, ReasonNeeded: day.IsEarlyDeparture}, nil
}

// AttachReason implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) AttachReason(ctx context.Context, req attendance.AttachReasonRequest) (attendance.AttendanceDay, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceDay{}, err
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return attendance.AttendanceDay{}, attendance.ErrEmptyReason
	}

	date := clock.StartOfDay(req.Date.In(a.clock.Location()))
	day, err := a.AttendanceRepository.Mutate(ctx, req.EmployeeID, date, func(day *attendance.AttendanceDay) error {
		switch req.Kind {
		case attendance.ReasonLate:
			if !day.IsLate {
				return attendance.ErrReasonNotApplicable
			}
			if day.LateReason != nil {
				return attendance.ErrReasonAlreadySet
			}
			day.LateReason = &text
		case attendance.ReasonEarly:
			if !day.IsEarlyDeparture {
				return attendance.ErrReasonNotApplicable
			}
			if day.EarlyReason != nil {
				return attendance.ErrReasonAlreadySet
			}
			day.EarlyReason = &text
		}
		return nil
	})
	if err != nil {
		return attendance.AttendanceDay{}, a.mutationError(err)
	}

	a.recordAudit(ctx, req.EmployeeID, audit.ActionReasonAttached, day.ID, map[string]interface{}{
		"kind": string(req.Kind),
	})

	return day, nil
}

// Today implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) Today(ctx context.Context, employeeID string, at time.Time) (*attendance.AttendanceDay, error) {
	date := clock.StartOfDay(at.In(a.clock.Location()))
	day, err := a.AttendanceRepository.GetByEmployeeAndDate(ctx, employeeID, date)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", attendance.ErrStorageUnavailable, err)
	}
	return day, nil
}

// History implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) History(ctx context.Context, employeeID string, at time.Time, days int) ([]attendance.AttendanceDay, error) {
	if days <= 0 {
		days = defaultHistoryDays
	}
	to := clock.StartOfDay(at.In(a.clock.Location()))
	from := to.AddDate(0, 0, -(days - 1))

	records, err := a.AttendanceRepository.ListByEmployee(ctx, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", attendance.ErrStorageUnavailable, err)
	}
	return records, nil
}

// ListDay implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListDay(ctx context.Context, date time.Time) ([]attendance.AttendanceDay, error) {
	day := clock.StartOfDay(date.In(a.clock.Location()))
	records, err := a.AttendanceRepository.ListByRange(ctx, day, day)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", attendance.ErrStorageUnavailable, err)
	}
	return records, nil
}

// Wait implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) Wait() {
	a.alerts.Wait()
}

func (a *AttendanceServiceImpl) activeEmployee(ctx context.Context, id string) (employee.Employee, error) {
	emp, err := a.EmployeeRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return employee.Employee{}, err
		}
		return employee.Employee{}, fmt.Errorf("%w: %w", attendance.ErrStorageUnavailable, err)
	}
	if !emp.IsActive {
		return employee.Employee{}, employee.ErrEmployeeInactive
	}
	return emp, nil
}

// mutationError passes policy outcomes through untouched and classifies
// everything else as a storage failure.
func (a *AttendanceServiceImpl) mutationError(err error) error {
	if attendance.IsPolicyViolation(err) {
		return err
	}
	return fmt.Errorf("%w: %w", attendance.ErrStorageUnavailable, err)
}

func (a *AttendanceServiceImpl) recordAudit(ctx context.Context, actor string, action audit.Action, entityID string, details map[string]interface{}) {
	entry := audit.Entry{
		Actor:     actor,
		Action:    action,
		EntityID:  entityID,
		Details:   details,
		CreatedAt: a.clock.Now(),
	}
	if err := a.auditRepo.Append(ctx, entry); err != nil {
		slog.Warn("Failed to append audit entry", "action", action, "entity_id", entityID, "error", err)
	}
}

// alertAdmins hands the alert to the dispatcher in the background; the
// caller's outcome never depends on delivery.
func (a *AttendanceServiceImpl) alertAdmins(ctx context.Context, typ notification.NotificationType, message string) {
	ctx = context.WithoutCancel(ctx)
	a.alerts.Add(1)
	go func() {
		defer a.alerts.Done()
		res := a.dispatcher.NotifyAdmins(ctx, message, notification.SendOptions{
			Type:      typ,
			ParseMode: notification.ParseMarkdown,
		})
		if res.Failed > 0 {
			slog.Warn("Admin alert partially failed", "type", typ, "failed", res.Failed, "total", res.Total)
		}
	}()
}

// minutesBetween rounds partial minutes up so that any lateness reads as at least one minute.
func minutesBetween(from, to time.Time) int {
	return int(math.Ceil(to.Sub(from).Minutes()))
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	auditRepo audit.Repository,
	dispatcher notification.Dispatcher,
	clk clock.Clock,
	policy Policy,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		AttendanceRepository: attendanceRepo,
		EmployeeRepository:   employeeRepo,
		auditRepo:            auditRepo,
		dispatcher:           dispatcher,
		clock:                clk,
		policy:               policy,
	}
}
