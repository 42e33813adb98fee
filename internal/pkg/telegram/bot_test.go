package telegram

import (
	"errors"
	"testing"

	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/chat"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/notification"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func message(m tgbotapi.Message) tgbotapi.Update {
	m.Chat = &tgbotapi.Chat{ID: 4242}
	m.From = &tgbotapi.User{ID: 4242, FirstName: "Mona"}
	m.Date = 1715760000
	return tgbotapi.Update{UpdateID: 1, Message: &m}
}

func TestToEvent_Location(t *testing.T) {
	ev, ok := ToEvent(message(tgbotapi.Message{
		Location: &tgbotapi.Location{Latitude: 31.04, Longitude: 31.38},
	}))
	require.True(t, ok)

	loc, isLoc := ev.(chat.LocationEvent)
	require.True(t, isLoc)
	assert.Equal(t, "4242", loc.Sender())
	assert.Equal(t, 31.04, loc.Latitude)
	assert.Equal(t, 31.38, loc.Longitude)
	assert.Equal(t, int64(1715760000), loc.At.Unix())
}

func TestToEvent_ForwardedLocationRejected(t *testing.T) {
	cases := map[string]tgbotapi.Message{
		"forward date": {
			Location:    &tgbotapi.Location{Latitude: 31.04, Longitude: 31.38},
			ForwardDate: 1715760000 - 7*24*3600,
		},
		"forwarded from user": {
			Location:    &tgbotapi.Location{Latitude: 31.04, Longitude: 31.38},
			ForwardFrom: &tgbotapi.User{ID: 4242},
		},
		"hidden sender": {
			Location:          &tgbotapi.Location{Latitude: 31.04, Longitude: 31.38},
			ForwardSenderName: "Mona",
		},
		"venue": {
			Location: &tgbotapi.Location{Latitude: 31.04, Longitude: 31.38},
			Venue:    &tgbotapi.Venue{Title: "Office", Location: tgbotapi.Location{Latitude: 31.04, Longitude: 31.38}},
		},
	}
	for name, m := range cases {
		t.Run(name, func(t *testing.T) {
			ev, ok := ToEvent(message(m))
			require.True(t, ok)
			loc, isLoc := ev.(chat.LocationEvent)
			require.True(t, isLoc)
			assert.True(t, loc.Forwarded)
		})
	}

	ev, ok := ToEvent(message(tgbotapi.Message{Location: &tgbotapi.Location{Latitude: 31.04, Longitude: 31.38}}))
	require.True(t, ok)
	assert.False(t, ev.(chat.LocationEvent).Forwarded)
}

func TestToEvent_Contact(t *testing.T) {
	ev, ok := ToEvent(message(tgbotapi.Message{
		Contact: &tgbotapi.Contact{PhoneNumber: "+201001234567", FirstName: "Mona", LastName: "Adel", UserID: 4242},
	}))
	require.True(t, ok)
	c := ev.(chat.ContactEvent)
	assert.True(t, c.IsOwn)
	assert.Equal(t, "+201001234567", c.PhoneNumber)

	ev, ok = ToEvent(message(tgbotapi.Message{
		Contact: &tgbotapi.Contact{PhoneNumber: "+201009999999", FirstName: "Other", UserID: 7},
	}))
	require.True(t, ok)
	assert.False(t, ev.(chat.ContactEvent).IsOwn)
}

func TestToEvent_CommandAndText(t *testing.T) {
	ev, ok := ToEvent(message(tgbotapi.Message{
		Text:     "/History 14",
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 8}},
	}))
	require.True(t, ok)
	cmd := ev.(chat.CommandEvent)
	assert.Equal(t, "history", cmd.Name)
	assert.Equal(t, "14", cmd.Args)

	ev, ok = ToEvent(message(tgbotapi.Message{Text: "traffic"}))
	require.True(t, ok)
	assert.Equal(t, "traffic", ev.(chat.TextEvent).Text)
}

func TestToEvent_IgnoresUnsupportedUpdates(t *testing.T) {
	_, ok := ToEvent(tgbotapi.Update{UpdateID: 2})
	assert.False(t, ok)

	_, ok = ToEvent(message(tgbotapi.Message{}))
	assert.False(t, ok)
}

func TestBuildMessage(t *testing.T) {
	msg, err := BuildMessage("4242", "*hi*", notification.SendOptions{
		ParseMode: notification.ParseMarkdown,
		Keyboard:  notification.KeyboardLocation,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4242), msg.ChatID)
	assert.Equal(t, tgbotapi.ModeMarkdown, msg.ParseMode)

	kb, ok := msg.ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, kb.Keyboard, 1)
	assert.True(t, kb.Keyboard[0][0].RequestLocation)

	_, err = BuildMessage("not-a-chat", "hi", notification.SendOptions{})
	assert.True(t, errors.Is(err, ErrInvalidChatID))
}
