package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/chat"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/notification"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	ButtonShareLocation = "📍 Share location"
	ButtonShareContact  = "📱 Share contact"

	pollTimeoutSeconds = 60
)

var ErrInvalidChatID = errors.New("invalid telegram chat id")

// Bot is the Telegram implementation of notification.Transport and the
// source of inbound chat events.
type Bot struct {
	api *tgbotapi.BotAPI
}

func NewBot(token string, debug bool) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to connect telegram bot: %w", err)
	}
	api.Debug = debug
	slog.Info("Telegram bot authorized", "username", api.Self.UserName)
	return &Bot{api: api}, nil
}

// SendMessage implements notification.Transport.
func (b *Bot) SendMessage(ctx context.Context, recipientID string, text string, opts notification.SendOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := BuildMessage(recipientID, text, opts)
	if err != nil {
		return err
	}

	_, err = b.api.Send(msg)
	if err != nil && msg.ParseMode != "" && isParseError(err) {
		// User-supplied text can break Markdown; deliver it unformatted.
		msg.ParseMode = ""
		_, err = b.api.Send(msg)
	}
	if err != nil {
		return fmt.Errorf("telegram send to %s: %w", recipientID, err)
	}
	return nil
}

// BuildMessage maps a transport-neutral message onto a Telegram message config.
func BuildMessage(recipientID string, text string, opts notification.SendOptions) (tgbotapi.MessageConfig, error) {
	chatID, err := strconv.ParseInt(recipientID, 10, 64)
	if err != nil {
		return tgbotapi.MessageConfig{}, fmt.Errorf("%w: %q", ErrInvalidChatID, recipientID)
	}

	msg := tgbotapi.NewMessage(chatID, text)
	if opts.ParseMode == notification.ParseMarkdown {
		msg.ParseMode = tgbotapi.ModeMarkdown
	}

	switch opts.Keyboard {
	case notification.KeyboardLocation:
		kb := tgbotapi.NewReplyKeyboard(tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButtonLocation(ButtonShareLocation),
		))
		kb.ResizeKeyboard = true
		kb.OneTimeKeyboard = true
		msg.ReplyMarkup = kb
	case notification.KeyboardContact:
		kb := tgbotapi.NewReplyKeyboard(tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButtonContact(ButtonShareContact),
		))
		kb.ResizeKeyboard = true
		kb.OneTimeKeyboard = true
		msg.ReplyMarkup = kb
	case notification.KeyboardRemove:
		msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(false)
	}

	return msg, nil
}

func isParseError(err error) bool {
	var tgErr *tgbotapi.Error
	if errors.As(err, &tgErr) {
		return tgErr.Code == 400 && strings.Contains(tgErr.Message, "can't parse entities")
	}
	return strings.Contains(err.Error(), "can't parse entities")
}

// Listen long-polls Telegram and converts updates into chat events until ctx is done.
func (b *Bot) Listen(ctx context.Context) <-chan chat.Event {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeoutSeconds
	updates := b.api.GetUpdatesChan(u)

	out := make(chan chat.Event, 64)
	go func() {
		defer close(out)
		defer b.api.StopReceivingUpdates()
		for {
			select {
			case <-ctx.Done():
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				event, ok := ToEvent(update)
				if !ok {
					continue
				}
				select {
				case out <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

func isForwarded(m *tgbotapi.Message) bool {
	return m.ForwardDate != 0 || m.ForwardFrom != nil || m.ForwardFromChat != nil || m.ForwardSenderName != ""
}

// ToEvent converts a Telegram update; false means the update carries nothing we handle.
func ToEvent(update tgbotapi.Update) (chat.Event, bool) {
	m := update.Message
	if m == nil || m.Chat == nil {
		return nil, false
	}

	chatID := strconv.FormatInt(m.Chat.ID, 10)
	at := time.Unix(int64(m.Date), 0)

	switch {
	case m.Location != nil:
		return chat.LocationEvent{
			ChatID:    chatID,
			Latitude:  m.Location.Latitude,
			Longitude: m.Location.Longitude,
			At:        at,
			Forwarded: isForwarded(m) || m.Venue != nil,
		}, true
	case m.Contact != nil:
		isOwn := m.From != nil && m.Contact.UserID == m.From.ID
		return chat.ContactEvent{
			ChatID:      chatID,
			PhoneNumber: m.Contact.PhoneNumber,
			FirstName:   m.Contact.FirstName,
			LastName:    m.Contact.LastName,
			IsOwn:       isOwn,
			At:          at,
		}, true
	case m.IsCommand():
		return chat.CommandEvent{
			ChatID: chatID,
			Name:   strings.ToLower(m.Command()),
			Args:   strings.TrimSpace(m.CommandArguments()),
			At:     at,
		}, true
	case m.Text != "":
		return chat.TextEvent{
			ChatID: chatID,
			Text:   m.Text,
			At:     at,
		}, true
	default:
		return nil, false
	}
}
