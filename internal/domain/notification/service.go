package notification

import (
	"context"
)

// Transport delivers a message to one chat recipient.
type Transport interface {
	SendMessage(ctx context.Context, recipientID string, text string, opts SendOptions) error
}

// Dispatcher sends notifications and never fails its caller: every outcome
// is converted into a logged result.
type Dispatcher interface {
	Send(ctx context.Context, recipient string, message string, opts SendOptions) SendResult

	// Broadcast isolates failures per recipient and aggregates the counts.
	Broadcast(ctx context.Context, recipients []string, message string, opts SendOptions) BroadcastResult

	// NotifyAdmins broadcasts to the configured admin recipients.
	NotifyAdmins(ctx context.Context, message string, opts SendOptions) BroadcastResult

	// RecentLogs returns the latest delivery log entries, newest first.
	RecentLogs(ctx context.Context, limit int) ([]LogEntry, error)

	// Subscribe streams feed events until ctx is done or cleanup is called.
	Subscribe(ctx context.Context) (<-chan FeedEvent, func())
}
