package notification

import (
	"time"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	TypeMessage          NotificationType = "message"
	TypeLateAlert        NotificationType = "late_alert"
	TypeEarlyAlert       NotificationType = "early_alert"
	TypeDailySummary     NotificationType = "daily_summary"
	TypeWeeklySummary    NotificationType = "weekly_summary"
	TypeMonthlySummary   NotificationType = "monthly_summary"
	TypeAbsenceReport    NotificationType = "absence_report"
	TypeCheckInReminder  NotificationType = "checkin_reminder"
	TypeCheckOutReminder NotificationType = "checkout_reminder"
	TypeHealthAlert      NotificationType = "health_alert"
	TypeLeaveRequest     NotificationType = "leave_request"
)

// MaxLoggedMessageRunes bounds the message body stored in a LogEntry.
const MaxLoggedMessageRunes = 500

// LogEntry is the append-only record of one delivery attempt.
type LogEntry struct {
	ID        string
	Recipient string
	Type      NotificationType
	Message   string
	Success   bool
	Error     *string
	SentAt    time.Time
}

// TruncateMessage cuts msg to at most MaxLoggedMessageRunes runes.
func TruncateMessage(msg string) string {
	runes := []rune(msg)
	if len(runes) <= MaxLoggedMessageRunes {
		return msg
	}
	return string(runes[:MaxLoggedMessageRunes])
}
