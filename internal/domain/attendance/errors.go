package attendance

import (
	"errors"
	"fmt"
)

// Attendance domain errors
var (
	// Policy violations: expected outcomes, reported to the employee as-is.
	ErrAlreadyCheckedIn      = errors.New("you have already checked in today")
	ErrAlreadyComplete       = errors.New("your attendance for today is already complete")
	ErrNotCheckedIn          = errors.New("you have not checked in yet")
	ErrCheckOutBeforeCheckIn = errors.New("check-out time must be after check-in time")
	ErrReasonNotApplicable   = errors.New("no late arrival or early departure to explain")
	ErrReasonAlreadySet      = errors.New("a reason has already been recorded")
	ErrEmptyReason           = errors.New("reason must not be empty")

	// General errors
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrStorageUnavailable = errors.New("attendance storage unavailable")
)

// OutOfRangeError reports a location outside the office geofence.
type OutOfRangeError struct {
	DistanceMeters float64
	RadiusMeters   float64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("you are %.0f m away from the office, the allowed radius is %.0f m", e.DistanceMeters, e.RadiusMeters)
}

// IsPolicyViolation reports whether err is an expected, user-facing outcome
// rather than an infrastructure failure.
func IsPolicyViolation(err error) bool {
	var oor *OutOfRangeError
	if errors.As(err, &oor) {
		return true
	}
	for _, target := range []error{
		ErrAlreadyCheckedIn,
		ErrAlreadyComplete,
		ErrNotCheckedIn,
		ErrCheckOutBeforeCheckIn,
		ErrReasonNotApplicable,
		ErrReasonAlreadySet,
		ErrEmptyReason,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
