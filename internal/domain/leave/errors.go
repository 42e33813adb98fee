package leave

import "errors"

var (
	ErrInvalidDateRange = errors.New("end date must not be before start date")
	ErrStartDateInPast  = errors.New("start date must not be in the past")
	ErrEmptyReason      = errors.New("reason must not be empty")
	ErrRangeTooLong     = errors.New("leave request exceeds the maximum of 30 days")
)
