package report

import "errors"

var (
	ErrInvalidMonth     = errors.New("month must be between 1 and 12")
	ErrInvalidDate      = errors.New("date must be in YYYY-MM-DD format")
	ErrInvalidDateRange = errors.New("end date must be after start date")
)
