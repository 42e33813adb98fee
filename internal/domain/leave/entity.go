package leave

import (
	"time"
)

type LeaveRequestStatus string

const (
	LeaveRequestStatusWaitingApproval LeaveRequestStatus = "waiting_approval"
	LeaveRequestStatusApproved        LeaveRequestStatus = "approved"
	LeaveRequestStatusRejected        LeaveRequestStatus = "rejected"
)

// LeaveRequest entity, collected through the chat dialogue and reviewed by an admin.
type LeaveRequest struct {
	ID         string
	EmployeeID string

	StartDate time.Time
	EndDate   time.Time
	TotalDays int

	Reason string
	Status LeaveRequestStatus

	SubmittedAt time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Relationships (for responses)
	EmployeeName *string
}

// CountDays returns the inclusive number of calendar days between start and end.
func CountDays(start, end time.Time) int {
	sy, sm, sd := start.Date()
	ey, em, ed := end.Date()
	s := time.Date(sy, sm, sd, 12, 0, 0, 0, time.UTC)
	e := time.Date(ey, em, ed, 12, 0, 0, 0, time.UTC)
	return int(e.Sub(s).Hours()/24) + 1
}
