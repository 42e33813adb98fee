package notification

import (
	"context"
	"log/slog"

	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/notification"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/sse"
)

// ConsoleTopicPrefix prefixes the hub topic a console transport writes to.
const ConsoleTopicPrefix = "chat:"

// ConsoleMessage is published for each message sent through the console transport.
type ConsoleMessage struct {
	Recipient string                        `json:"recipient"`
	Text      string                        `json:"text"`
	Type      notification.NotificationType `json:"type"`
}

type consoleTransport struct {
	hub *sse.Hub
}

// NewConsoleTransport returns a transport for running without a chat
// platform: messages are logged and published on the hub under chat:<recipient>.
func NewConsoleTransport(hub *sse.Hub) notification.Transport {
	return &consoleTransport{hub: hub}
}

func (t *consoleTransport) SendMessage(ctx context.Context, recipientID string, text string, opts notification.SendOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	slog.Info("Console message", "recipient", recipientID, "type", opts.Type, "text", text)
	t.hub.Publish(ConsoleTopicPrefix+recipientID, sse.Event{
		Event: "message",
		Data:  ConsoleMessage{Recipient: recipientID, Text: text, Type: opts.Type},
	})
	return nil
}
