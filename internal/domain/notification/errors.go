package notification

import "errors"

// Notification domain errors
var (
	ErrEmptyRecipient   = errors.New("recipient is required")
	ErrEmptyMessage     = errors.New("message is required")
	ErrTransportPanic   = errors.New("transport panicked")
	ErrNoAdminRecipient = errors.New("no admin recipients configured")
)
