package notification

import (
	"time"
)

// ParseMode selects how the transport renders message text.
type ParseMode string

const (
	ParsePlain    ParseMode = ""
	ParseMarkdown ParseMode = "Markdown"
)

// Keyboard asks the transport to attach a reply keyboard.
type Keyboard int

const (
	KeyboardNone Keyboard = iota
	KeyboardLocation
	KeyboardContact
	KeyboardRemove
)

type SendOptions struct {
	Type      NotificationType
	ParseMode ParseMode
	Keyboard  Keyboard
}

// SendResult is the outcome of a single delivery attempt. Err is nil on success.
type SendResult struct {
	Recipient string
	Success   bool
	Err       error
}

type BroadcastResult struct {
	Total      int
	Successful int
	Failed     int
	Results    []SendResult
}

// ============= SSE Event =============

// FeedEvent is what the dashboard live feed receives for every delivery attempt.
type FeedEvent struct {
	ID        string           `json:"id"`
	Recipient string           `json:"recipient"`
	Type      NotificationType `json:"type"`
	Message   string           `json:"message"`
	Success   bool             `json:"success"`
	SentAt    time.Time        `json:"sent_at"`
}

// LogEntryResponse represents a notification log entry in API responses
type LogEntryResponse struct {
	ID        string           `json:"id"`
	Recipient string           `json:"recipient"`
	Type      NotificationType `json:"type"`
	Message   string           `json:"message"`
	Success   bool             `json:"success"`
	Error     *string          `json:"error,omitempty"`
	SentAt    time.Time        `json:"sent_at"`
}

func ToLogEntryResponse(e LogEntry) LogEntryResponse {
	return LogEntryResponse{
		ID:        e.ID,
		Recipient: e.Recipient,
		Type:      e.Type,
		Message:   e.Message,
		Success:   e.Success,
		Error:     e.Error,
		SentAt:    e.SentAt,
	}
}

// SSETokenResponse represents the SSE token response
type SSETokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}
