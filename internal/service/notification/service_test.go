package notification

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/notification"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/clock"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/sse"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedTransport fails or panics for chosen recipients.
type scriptedTransport struct {
	mu       sync.Mutex
	failFor  map[string]bool
	panicFor map[string]bool
	sent     []string
}

func (t *scriptedTransport) SendMessage(ctx context.Context, recipientID string, text string, opts notification.SendOptions) error {
	if t.panicFor[recipientID] {
		panic("bot client not initialised")
	}
	if t.failFor[recipientID] {
		return errors.New("Forbidden: bot was blocked by the user")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sent = append(t.sent, recipientID)
	return nil
}

func newDispatcher(t *testing.T, transport notification.Transport, admins ...string) (notification.Dispatcher, notification.Repository, *sse.Hub) {
	t.Helper()
	repo := memory.NewNotificationRepository()
	hub := sse.NewHub()
	clk := clock.NewFixed(time.Date(2024, 5, 15, 18, 0, 0, 0, time.UTC))
	return NewDispatcher(repo, transport, hub, clk, Config{AdminChatIDs: admins, Concurrency: 2}), repo, hub
}

func TestSend_LogsSuccess(t *testing.T) {
	transport := &scriptedTransport{}
	d, repo, _ := newDispatcher(t, transport)

	res := d.Send(context.Background(), "1001", "Good morning", notification.SendOptions{})
	assert.True(t, res.Success)
	assert.NoError(t, res.Err)

	logs, err := repo.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "1001", logs[0].Recipient)
	assert.Equal(t, notification.TypeMessage, logs[0].Type)
	assert.True(t, logs[0].Success)
	assert.Nil(t, logs[0].Error)
}

func TestSend_FailureIsLoggedNotReturned(t *testing.T) {
	transport := &scriptedTransport{failFor: map[string]bool{"1001": true}}
	d, repo, _ := newDispatcher(t, transport)

	res := d.Send(context.Background(), "1001", "Reminder", notification.SendOptions{Type: notification.TypeCheckInReminder})
	assert.False(t, res.Success)
	assert.Error(t, res.Err)

	logs, err := repo.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.False(t, logs[0].Success)
	require.NotNil(t, logs[0].Error)
	assert.Contains(t, *logs[0].Error, "blocked")
}

func TestSend_PanicIsRecovered(t *testing.T) {
	transport := &scriptedTransport{panicFor: map[string]bool{"1001": true}}
	d, _, _ := newDispatcher(t, transport)

	res := d.Send(context.Background(), "1001", "hello", notification.SendOptions{})
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, notification.ErrTransportPanic)
}

func TestSend_RejectsEmptyInput(t *testing.T) {
	d, repo, _ := newDispatcher(t, &scriptedTransport{})

	assert.ErrorIs(t, d.Send(context.Background(), " ", "hello", notification.SendOptions{}).Err, notification.ErrEmptyRecipient)
	assert.ErrorIs(t, d.Send(context.Background(), "1001", "", notification.SendOptions{}).Err, notification.ErrEmptyMessage)

	logs, err := repo.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, logs, 2)
}

func TestSend_TruncatesLoggedMessage(t *testing.T) {
	d, repo, _ := newDispatcher(t, &scriptedTransport{})

	long := strings.Repeat("ب", notification.MaxLoggedMessageRunes+50)
	require.True(t, d.Send(context.Background(), "1001", long, notification.SendOptions{}).Success)

	logs, err := repo.ListRecent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Len(t, []rune(logs[0].Message), notification.MaxLoggedMessageRunes)
}

func TestBroadcast_IsolatesFailures(t *testing.T) {
	transport := &scriptedTransport{
		failFor:  map[string]bool{"2": true},
		panicFor: map[string]bool{"4": true},
	}
	d, repo, _ := newDispatcher(t, transport)

	res := d.Broadcast(context.Background(), []string{"1", "2", "3", "4", "5"}, "Daily summary", notification.SendOptions{Type: notification.TypeDailySummary})
	assert.Equal(t, 5, res.Total)
	assert.Equal(t, 3, res.Successful)
	assert.Equal(t, 2, res.Failed)
	require.Len(t, res.Results, 5)
	assert.False(t, res.Results[1].Success)
	assert.False(t, res.Results[3].Success)
	assert.ElementsMatch(t, []string{"1", "3", "5"}, transport.sent)

	logs, err := repo.ListRecent(context.Background(), 50)
	require.NoError(t, err)
	assert.Len(t, logs, 5)
}

func TestNotifyAdmins(t *testing.T) {
	transport := &scriptedTransport{}
	d, _, _ := newDispatcher(t, transport, "900", "901")

	res := d.NotifyAdmins(context.Background(), "Health alert", notification.SendOptions{Type: notification.TypeHealthAlert})
	assert.Equal(t, 2, res.Successful)
	assert.ElementsMatch(t, []string{"900", "901"}, transport.sent)
}

func TestNotifyAdmins_NoAdminsConfigured(t *testing.T) {
	d, repo, _ := newDispatcher(t, &scriptedTransport{})

	res := d.NotifyAdmins(context.Background(), "Health alert", notification.SendOptions{})
	assert.Equal(t, 0, res.Total)

	logs, err := repo.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestSubscribe_ReceivesFeedEvents(t *testing.T) {
	d, _, _ := newDispatcher(t, &scriptedTransport{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, cleanup := d.Subscribe(ctx)
	defer cleanup()

	d.Send(context.Background(), "1001", "hello", notification.SendOptions{Type: notification.TypeLateAlert})

	select {
	case ev := <-events:
		assert.Equal(t, "1001", ev.Recipient)
		assert.Equal(t, notification.TypeLateAlert, ev.Type)
		assert.True(t, ev.Success)
	case <-time.After(time.Second):
		t.Fatal("no feed event received")
	}
}

func TestConsoleTransport_PublishesToRecipientTopic(t *testing.T) {
	hub := sse.NewHub()
	ch, cleanup := hub.Subscribe(ConsoleTopicPrefix + "1001")
	defer cleanup()

	err := NewConsoleTransport(hub).SendMessage(context.Background(), "1001", "hi", notification.SendOptions{Type: notification.TypeMessage})
	require.NoError(t, err)

	select {
	case ev := <-ch:
		msg, ok := ev.Data.(ConsoleMessage)
		require.True(t, ok)
		assert.Equal(t, "hi", msg.Text)
	case <-time.After(time.Second):
		t.Fatal("no console message published")
	}
}
