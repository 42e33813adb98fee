package attendance

import (
	"time"

	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/employee"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/geo"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

type CheckInRequest struct {
	EmployeeID string
	At         time.Time
	Location   geo.Point
}

func (r *CheckInRequest) Validate() error {
	return validateEvent(r.EmployeeID, r.At, r.Location)
}

type CheckOutRequest struct {
	EmployeeID string
	At         time.Time
	Location   geo.Point
}

func (r *CheckOutRequest) Validate() error {
	return validateEvent(r.EmployeeID, r.At, r.Location)
}

func validateEvent(employeeID string, at time.Time, loc geo.Point) error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(employeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if at.IsZero() {
		errs = append(errs, validator.ValidationError{
			Field:   "at",
			Message: "event time is required",
		})
	}

	if err := geo.ValidatePoint(loc); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			errs = append(errs, verrs...)
		} else {
			return err
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// CheckInResult carries the new record plus the signals the caller acts on.
type CheckInResult struct {
	Day      AttendanceDay
	Employee employee.Employee
	// ReasonNeeded asks the caller to collect a late-arrival reason.
	ReasonNeeded bool
}

type CheckOutResult struct {
	Day      AttendanceDay
	Employee employee.Employee
	// ReasonNeeded asks the caller to collect an early-departure reason.
	ReasonNeeded bool
}

type AttachReasonRequest struct {
	EmployeeID string
	Date       time.Time
	Kind       ReasonKind
	Text       string
}

func (r *AttachReasonRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}
	if r.Date.IsZero() {
		errs = append(errs, validator.ValidationError{Field: "date", Message: "date is required"})
	}
	if r.Kind != ReasonLate && r.Kind != ReasonEarly {
		errs = append(errs, validator.ValidationError{Field: "kind", Message: "kind must be late or early"})
	}
	if len(r.Text) > 500 {
		errs = append(errs, validator.ValidationError{Field: "text", Message: "reason must be at most 500 characters"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// AttendanceDayResponse is the admin API view of one record.
type AttendanceDayResponse struct {
	ID             string     `json:"id"`
	EmployeeID     string     `json:"employee_id"`
	Date           string     `json:"date"`
	Status         Status     `json:"status"`
	CheckInTime    *time.Time `json:"check_in_time,omitempty"`
	CheckOutTime   *time.Time `json:"check_out_time,omitempty"`
	WorkingMinutes *int       `json:"working_minutes,omitempty"`
	IsLate         bool       `json:"is_late"`
	LateMinutes    int        `json:"late_minutes"`
	LateReason     *string    `json:"late_reason,omitempty"`
	IsEarly        bool       `json:"is_early_departure"`
	EarlyMinutes   int        `json:"early_minutes"`
	EarlyReason    *string    `json:"early_reason,omitempty"`
}

func ToAttendanceDayResponse(d AttendanceDay) AttendanceDayResponse {
	resp := AttendanceDayResponse{
		ID:           d.ID,
		EmployeeID:   d.EmployeeID,
		Date:         d.Date.Format("2006-01-02"),
		Status:       d.Status,
		CheckInTime:  d.CheckInTime,
		CheckOutTime: d.CheckOutTime,
		IsLate:       d.IsLate,
		LateMinutes:  d.LateMinutes,
		LateReason:   d.LateReason,
		IsEarly:      d.IsEarlyDeparture,
		EarlyMinutes: d.EarlyMinutes,
		EarlyReason:  d.EarlyReason,
	}
	if worked, ok := d.WorkingDuration(); ok {
		minutes := int(worked.Minutes())
		resp.WorkingMinutes = &minutes
	}
	return resp
}
