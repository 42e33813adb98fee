package notification

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/notification"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/clock"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/sse"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// FeedTopic is the hub topic carrying every delivery attempt.
const FeedTopic = "notifications"

// Config holds dispatcher configuration
type Config struct {
	AdminChatIDs []string
	Concurrency  int // default: 8
}

type service struct {
	repo      notification.Repository
	transport notification.Transport
	hub       *sse.Hub
	clock     clock.Clock
	config    Config
}

// NewDispatcher creates the notification dispatcher
func NewDispatcher(repo notification.Repository, transport notification.Transport, hub *sse.Hub, clk clock.Clock, cfg Config) notification.Dispatcher {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 8
	}

	return &service{
		repo:      repo,
		transport: transport,
		hub:       hub,
		clock:     clk,
		config:    cfg,
	}
}

// Send implements notification.Dispatcher.
func (s *service) Send(ctx context.Context, recipient string, message string, opts notification.SendOptions) notification.SendResult {
	if opts.Type == "" {
		opts.Type = notification.TypeMessage
	}

	err := s.deliver(ctx, recipient, message, opts)
	result := notification.SendResult{Recipient: recipient, Success: err == nil, Err: err}

	entry := notification.LogEntry{
		ID:        uuid.New().String(),
		Recipient: recipient,
		Type:      opts.Type,
		Message:   notification.TruncateMessage(message),
		Success:   result.Success,
		SentAt:    s.clock.Now(),
	}
	if err != nil {
		msg := err.Error()
		entry.Error = &msg
		slog.Warn("Notification delivery failed", "recipient", recipient, "type", opts.Type, "error", err)
	}

	if logErr := s.repo.AppendLog(context.WithoutCancel(ctx), entry); logErr != nil {
		slog.Error("Failed to append notification log", "recipient", recipient, "type", opts.Type, "error", logErr)
	}

	s.hub.Publish(FeedTopic, sse.Event{
		Event: "notification",
		Data: notification.FeedEvent{
			ID:        entry.ID,
			Recipient: entry.Recipient,
			Type:      entry.Type,
			Message:   entry.Message,
			Success:   entry.Success,
			SentAt:    entry.SentAt,
		},
	})

	return result
}

// deliver calls the transport and converts a panic into an error.
func (s *service) deliver(ctx context.Context, recipient, message string, opts notification.SendOptions) (err error) {
	if strings.TrimSpace(recipient) == "" {
		return notification.ErrEmptyRecipient
	}
	if strings.TrimSpace(message) == "" {
		return notification.ErrEmptyMessage
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", notification.ErrTransportPanic, r)
		}
	}()

	return s.transport.SendMessage(ctx, recipient, message, opts)
}

// Broadcast implements notification.Dispatcher.
func (s *service) Broadcast(ctx context.Context, recipients []string, message string, opts notification.SendOptions) notification.BroadcastResult {
	results := make([]notification.SendResult, len(recipients))

	var g errgroup.Group
	g.SetLimit(s.config.Concurrency)
	for i, recipient := range recipients {
		g.Go(func() error {
			results[i] = s.Send(ctx, recipient, message, opts)
			return nil
		})
	}
	_ = g.Wait()

	summary := notification.BroadcastResult{Total: len(recipients), Results: results}
	for _, r := range results {
		if r.Success {
			summary.Successful++
		} else {
			summary.Failed++
		}
	}

	slog.Info("Notification broadcast finished",
		"type", opts.Type,
		"total", summary.Total,
		"successful", summary.Successful,
		"failed", summary.Failed,
	)

	return summary
}

// NotifyAdmins implements notification.Dispatcher.
func (s *service) NotifyAdmins(ctx context.Context, message string, opts notification.SendOptions) notification.BroadcastResult {
	if len(s.config.AdminChatIDs) == 0 {
		slog.Warn("Admin notification dropped", "type", opts.Type, "error", notification.ErrNoAdminRecipient)
		return notification.BroadcastResult{}
	}
	return s.Broadcast(ctx, s.config.AdminChatIDs, message, opts)
}

// RecentLogs implements notification.Dispatcher.
func (s *service) RecentLogs(ctx context.Context, limit int) ([]notification.LogEntry, error) {
	if limit < 1 || limit > 500 {
		limit = 50
	}
	return s.repo.ListRecent(ctx, limit)
}

// Subscribe implements notification.Dispatcher.
func (s *service) Subscribe(ctx context.Context) (<-chan notification.FeedEvent, func()) {
	ch, cleanup := s.hub.Subscribe(FeedTopic)

	out := make(chan notification.FeedEvent, 16)

	go func() {
		defer close(out)
		for {
			select {
			case event, ok := <-ch:
				if !ok {
					return
				}
				if fe, ok := event.Data.(notification.FeedEvent); ok {
					select {
					case out <- fe:
					case <-ctx.Done():
						return
					}
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, cleanup
}
