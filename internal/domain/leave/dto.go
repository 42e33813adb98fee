package leave

import (
	"time"

	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/validator"
)

// MaxDaysPerRequest bounds a single leave request.
const MaxDaysPerRequest = 30

type SubmitLeaveRequest struct {
	EmployeeID string
	StartDate  time.Time
	EndDate    time.Time
	Reason     string
}

func (r *SubmitLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}
	if r.StartDate.IsZero() {
		errs = append(errs, validator.ValidationError{Field: "start_date", Message: "start_date is required"})
	}
	if r.EndDate.IsZero() {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "end_date is required"})
	}
	if len(r.Reason) > 500 {
		errs = append(errs, validator.ValidationError{Field: "reason", Message: "reason must be at most 500 characters"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type LeaveRequestResponse struct {
	ID           string             `json:"id"`
	EmployeeID   string             `json:"employee_id"`
	EmployeeName *string            `json:"employee_name,omitempty"`
	StartDate    string             `json:"start_date"`
	EndDate      string             `json:"end_date"`
	TotalDays    int                `json:"total_days"`
	Reason       string             `json:"reason"`
	Status       LeaveRequestStatus `json:"status"`
	SubmittedAt  time.Time          `json:"submitted_at"`
}

func ToLeaveRequestResponse(r LeaveRequest) LeaveRequestResponse {
	return LeaveRequestResponse{
		ID:           r.ID,
		EmployeeID:   r.EmployeeID,
		EmployeeName: r.EmployeeName,
		StartDate:    r.StartDate.Format("2006-01-02"),
		EndDate:      r.EndDate.Format("2006-01-02"),
		TotalDays:    r.TotalDays,
		Reason:       r.Reason,
		Status:       r.Status,
		SubmittedAt:  r.SubmittedAt,
	}
}
