package attendance

import (
	"time"
)

// Status is the lifecycle state of one attendance day.
type Status string

const (
	StatusNotStarted Status = "NOT_STARTED"
	StatusCheckedIn  Status = "CHECKED_IN"
	StatusComplete   Status = "COMPLETE"
)

// ReasonKind names which flag a free-text reason explains.
type ReasonKind string

const (
	ReasonLate  ReasonKind = "late"
	ReasonEarly ReasonKind = "early"
)

// AttendanceDay is one employee's record for one calendar day. Date is
// normalized to local midnight in the configured timezone.
type AttendanceDay struct {
	ID         string
	EmployeeID string
	Date       time.Time
	Status     Status

	CheckInTime      *time.Time
	CheckInLatitude  *float64
	CheckInLongitude *float64
	CheckInDistance  *float64

	CheckOutTime      *time.Time
	CheckOutLatitude  *float64
	CheckOutLongitude *float64
	CheckOutDistance  *float64

	IsLate           bool
	IsEarlyDeparture bool
	LateMinutes      int
	EarlyMinutes     int
	LateReason       *string
	EarlyReason      *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// WorkingDuration is defined only once both check-in and check-out exist.
func (a AttendanceDay) WorkingDuration() (time.Duration, bool) {
	if a.CheckInTime == nil || a.CheckOutTime == nil {
		return 0, false
	}
	return a.CheckOutTime.Sub(*a.CheckInTime), true
}

func (a AttendanceDay) HasCheckedIn() bool {
	return a.CheckInTime != nil
}

func (a AttendanceDay) HasCheckedOut() bool {
	return a.CheckOutTime != nil
}
