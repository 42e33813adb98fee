package attendance

import (
	"context"
	"time"
)

// AttendanceService is the check-in/check-out state machine:
// NOT_STARTED -> CHECKED_IN -> COMPLETE.
type AttendanceService interface {
	// CheckIn validates the geofence and opens today's record.
	CheckIn(ctx context.Context, req CheckInRequest) (CheckInResult, error)

	// CheckOut validates the geofence and completes today's record.
	CheckOut(ctx context.Context, req CheckOutRequest) (CheckOutResult, error)

	// AttachReason records the explanation for a late arrival or early departure.
	AttachReason(ctx context.Context, req AttachReasonRequest) (AttendanceDay, error)

	// Today returns the employee's record for the day containing at, if any.
	Today(ctx context.Context, employeeID string, at time.Time) (*AttendanceDay, error)

	// History returns the employee's records for the last days days up to at.
	History(ctx context.Context, employeeID string, at time.Time, days int) ([]AttendanceDay, error)

	// ListDay returns every record for the calendar day containing date.
	ListDay(ctx context.Context, date time.Time) ([]AttendanceDay, error)

	// Wait blocks until background admin alerts have been handed to the dispatcher.
	Wait()
}
