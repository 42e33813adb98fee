package bot

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/attendance"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/chat"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/conversation"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/employee"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/notification"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/clock"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/geo"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/validator"
	conversationservice "github.com/Mgabr90/mansoura-attendance-system-sub000/internal/service/conversation"
)

const (
	defaultHistoryDays = 7
	maxHistoryDays     = 31
	defaultWorkers     = 8
)

// Handler routes inbound chat events to the attendance, registration and
// dialogue services. Replies go through the dispatcher so they are logged
// and show up on the live feed like any other notification.
type Handler struct {
	employees     employee.EmployeeService
	attendance    attendance.AttendanceService
	conversations conversation.Service
	dispatcher    notification.Dispatcher
	clock         clock.Clock
	workers       int
}

func NewHandler(
	employees employee.EmployeeService,
	attendanceSvc attendance.AttendanceService,
	conversations conversation.Service,
	dispatcher notification.Dispatcher,
	clk clock.Clock,
	workers int,
) *Handler {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Handler{
		employees:     employees,
		attendance:    attendanceSvc,
		conversations: conversations,
		dispatcher:    dispatcher,
		clock:         clk,
		workers:       workers,
	}
}

// Run consumes events until the channel closes or ctx is done. Events from the
// same chat always land on the same worker, so each user's messages are
// handled in order. The price of that ordering is head-of-line blocking: once a
// worker's buffer is full, dispatch waits for it and chats hashed to other
// workers wait too.
func (h *Handler) Run(ctx context.Context, events <-chan chat.Event) {
	shards := make([]chan chat.Event, h.workers)
	var wg sync.WaitGroup
	for i := range shards {
		shards[i] = make(chan chat.Event, 16)
		wg.Add(1)
		go func(in <-chan chat.Event) {
			defer wg.Done()
			for ev := range in {
				h.Handle(ctx, ev)
			}
		}(shards[i])
	}

dispatch:
	for {
		var ev chat.Event
		var ok bool
		select {
		case ev, ok = <-events:
			if !ok {
				break dispatch
			}
		case <-ctx.Done():
			break dispatch
		}
		hash := fnv.New32a()
		_, _ = hash.Write([]byte(ev.Sender()))
		select {
		case shards[hash.Sum32()%uint32(len(shards))] <- ev:
		case <-ctx.Done():
			break dispatch
		}
	}

	for _, s := range shards {
		close(s)
	}
	wg.Wait()
	slog.Info("Bot handler stopped")
}

// Handle processes one event synchronously. It never panics past its boundary.
func (h *Handler) Handle(ctx context.Context, ev chat.Event) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Bot handler panic", "chat_id", ev.Sender(), "panic", r)
			h.reply(ctx, ev.Sender(), msgTryAgain, notification.SendOptions{})
		}
	}()

	switch e := ev.(type) {
	case chat.ContactEvent:
		h.handleContact(ctx, e)
	case chat.CommandEvent:
		h.handleCommand(ctx, e)
	case chat.LocationEvent:
		h.handleLocation(ctx, e)
	case chat.TextEvent:
		h.handleText(ctx, e)
	default:
		slog.Warn("Bot: unsupported event", "type", fmt.Sprintf("%T", ev))
	}
}

func (h *Handler) handleContact(ctx context.Context, e chat.ContactEvent) {
	name := strings.TrimSpace(e.FirstName + " " + e.LastName)
	emp, err := h.employees.Register(ctx, employee.RegisterRequest{
		ChatID:      e.ChatID,
		FullName:    name,
		PhoneNumber: e.PhoneNumber,
		IsOwn:       e.IsOwn,
	})
	if err != nil {
		h.replyError(ctx, e.ChatID, err)
		return
	}
	if !emp.IsActive {
		h.reply(ctx, e.ChatID, msgInactive, notification.SendOptions{Keyboard: notification.KeyboardRemove})
		return
	}
	h.reply(ctx, e.ChatID, fmt.Sprintf(msgWelcome, emp.FullName), notification.SendOptions{Keyboard: notification.KeyboardLocation})
}

func (h *Handler) handleCommand(ctx context.Context, e chat.CommandEvent) {
	switch e.Name {
	case "help":
		h.reply(ctx, e.ChatID, msgHelp, notification.SendOptions{ParseMode: notification.ParseMarkdown})
		return
	case "start":
		emp, err := h.employees.GetByChatID(ctx, e.ChatID)
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			h.reply(ctx, e.ChatID, msgAskContact, notification.SendOptions{Keyboard: notification.KeyboardContact})
			return
		}
		if err != nil {
			h.replyError(ctx, e.ChatID, err)
			return
		}
		if !emp.IsActive {
			h.reply(ctx, e.ChatID, msgInactive, notification.SendOptions{})
			return
		}
		h.reply(ctx, e.ChatID, fmt.Sprintf(msgWelcomeBack, emp.FullName), notification.SendOptions{Keyboard: notification.KeyboardLocation})
		return
	}

	emp, ok := h.resolve(ctx, e.ChatID)
	if !ok {
		return
	}

	switch e.Name {
	case "checkin", "checkout":
		h.reply(ctx, e.ChatID, msgAskLocation, notification.SendOptions{Keyboard: notification.KeyboardLocation})

	case "status":
		day, err := h.attendance.Today(ctx, emp.ID, h.eventTime(e.At))
		if err != nil {
			h.replyError(ctx, e.ChatID, err)
			return
		}
		h.reply(ctx, e.ChatID, formatStatus(day), notification.SendOptions{ParseMode: notification.ParseMarkdown})

	case "history":
		window := defaultHistoryDays
		if n, err := strconv.Atoi(e.Args); err == nil && n > 0 {
			window = min(n, maxHistoryDays)
		}
		days, err := h.attendance.History(ctx, emp.ID, h.eventTime(e.At), window)
		if err != nil {
			h.replyError(ctx, e.ChatID, err)
			return
		}
		h.reply(ctx, e.ChatID, formatHistory(days, window), notification.SendOptions{ParseMode: notification.ParseMarkdown})

	case "leave":
		if _, err := h.conversations.Begin(ctx, emp.ID, conversation.LeaveRequest{}); err != nil {
			h.replyError(ctx, e.ChatID, err)
			return
		}
		h.reply(ctx, e.ChatID, conversationservice.MsgLeaveStartDate, notification.SendOptions{Keyboard: notification.KeyboardRemove})

	case "cancel":
		cancelled, err := h.conversations.Cancel(ctx, emp.ID)
		if err != nil {
			h.replyError(ctx, e.ChatID, err)
			return
		}
		if cancelled {
			h.reply(ctx, e.ChatID, conversationservice.MsgCancelled, notification.SendOptions{Keyboard: notification.KeyboardLocation})
		} else {
			h.reply(ctx, e.ChatID, conversationservice.MsgNothingToCancel, notification.SendOptions{})
		}

	default:
		h.reply(ctx, e.ChatID, msgUnknownCmd, notification.SendOptions{})
	}
}

// handleLocation checks in or out depending on today's record.
func (h *Handler) handleLocation(ctx context.Context, e chat.LocationEvent) {
	emp, ok := h.resolve(ctx, e.ChatID)
	if !ok {
		return
	}
	if e.Forwarded {
		slog.Warn("Bot: forwarded location ignored", "chat_id", e.ChatID, "employee_id", emp.ID)
		h.reply(ctx, e.ChatID, msgLiveOnly, notification.SendOptions{Keyboard: notification.KeyboardLocation})
		return
	}

	at := h.eventTime(e.At)
	point := geo.Point{Latitude: e.Latitude, Longitude: e.Longitude}

	day, err := h.attendance.Today(ctx, emp.ID, at)
	if err != nil {
		h.replyError(ctx, e.ChatID, err)
		return
	}

	status := attendance.StatusNotStarted
	if day != nil {
		status = day.Status
	}

	switch status {
	case attendance.StatusNotStarted:
		h.checkIn(ctx, e.ChatID, emp, at, point)
	case attendance.StatusCheckedIn:
		h.checkOut(ctx, e.ChatID, emp, at, point)
	default:
		h.reply(ctx, e.ChatID, attendance.ErrAlreadyComplete.Error(), notification.SendOptions{Keyboard: notification.KeyboardRemove})
	}
}

func (h *Handler) checkIn(ctx context.Context, chatID string, emp employee.Employee, at time.Time, point geo.Point) {
	res, err := h.attendance.CheckIn(ctx, attendance.CheckInRequest{EmployeeID: emp.ID, At: at, Location: point})
	if err != nil {
		h.replyError(ctx, chatID, err)
		return
	}

	var distance float64
	if res.Day.CheckInDistance != nil {
		distance = *res.Day.CheckInDistance
	}
	text := fmt.Sprintf(msgCheckedIn, formatClock(res.Day.CheckInTime), distance)

	if res.ReasonNeeded {
		if _, err := h.conversations.Begin(ctx, emp.ID, conversation.LateReason{Date: res.Day.Date}); err != nil {
			slog.Error("Bot: failed to open late-reason dialogue", "employee_id", emp.ID, "error", err)
		} else {
			text += "\n\n" + fmt.Sprintf(msgLateReason, res.Day.LateMinutes)
		}
	}
	h.reply(ctx, chatID, text, notification.SendOptions{Keyboard: notification.KeyboardRemove})
}

func (h *Handler) checkOut(ctx context.Context, chatID string, emp employee.Employee, at time.Time, point geo.Point) {
	res, err := h.attendance.CheckOut(ctx, attendance.CheckOutRequest{EmployeeID: emp.ID, At: at, Location: point})
	if err != nil {
		h.replyError(ctx, chatID, err)
		return
	}

	worked, _ := res.Day.WorkingDuration()
	text := fmt.Sprintf(msgCheckedOut, formatClock(res.Day.CheckOutTime), formatDuration(worked))

	if res.ReasonNeeded {
		if _, err := h.conversations.Begin(ctx, emp.ID, conversation.EarlyReason{Date: res.Day.Date}); err != nil {
			slog.Error("Bot: failed to open early-reason dialogue", "employee_id", emp.ID, "error", err)
		} else {
			text += "\n\n" + fmt.Sprintf(msgEarlyReason, res.Day.EarlyMinutes)
		}
	}
	h.reply(ctx, chatID, text, notification.SendOptions{Keyboard: notification.KeyboardRemove})
}

func (h *Handler) handleText(ctx context.Context, e chat.TextEvent) {
	emp, ok := h.resolve(ctx, e.ChatID)
	if !ok {
		return
	}

	reply, err := h.conversations.Consume(ctx, emp.ID, e.Text)
	if err != nil {
		h.replyError(ctx, e.ChatID, err)
		return
	}
	if !reply.Handled {
		h.reply(ctx, e.ChatID, msgUnknown, notification.SendOptions{})
		return
	}
	h.reply(ctx, e.ChatID, reply.Message, notification.SendOptions{})
}

// resolve maps the chat to an active employee, replying when it cannot.
func (h *Handler) resolve(ctx context.Context, chatID string) (employee.Employee, bool) {
	emp, err := h.employees.GetByChatID(ctx, chatID)
	if errors.Is(err, employee.ErrEmployeeNotFound) {
		h.reply(ctx, chatID, msgAskContact, notification.SendOptions{Keyboard: notification.KeyboardContact})
		return employee.Employee{}, false
	}
	if err != nil {
		h.replyError(ctx, chatID, err)
		return employee.Employee{}, false
	}
	if !emp.IsActive {
		h.reply(ctx, chatID, msgInactive, notification.SendOptions{})
		return employee.Employee{}, false
	}
	return emp, true
}

func (h *Handler) eventTime(at time.Time) time.Time {
	if at.IsZero() {
		return h.clock.Now()
	}
	return at.In(h.clock.Location())
}

// replyError shows validation and policy errors verbatim and hides everything else.
func (h *Handler) replyError(ctx context.Context, chatID string, err error) {
	h.reply(ctx, chatID, UserMessage(err), notification.SendOptions{})
	if !isUserFacing(err) {
		slog.Error("Bot: request failed", "chat_id", chatID, "error", err)
	}
}

func isUserFacing(err error) bool {
	var verrs validator.ValidationErrors
	return errors.As(err, &verrs) ||
		attendance.IsPolicyViolation(err) ||
		errors.Is(err, employee.ErrEmployeeInactive) ||
		errors.Is(err, employee.ErrContactNotOwn) ||
		errors.Is(err, employee.ErrInvalidPhoneNumber)
}

// UserMessage is the text an employee sees for err.
func UserMessage(err error) string {
	var oor *attendance.OutOfRangeError
	switch {
	case errors.As(err, &oor):
		return "📍 " + oor.Error() + "."
	case errors.Is(err, employee.ErrEmployeeInactive):
		return msgInactive
	case isUserFacing(err):
		return "⚠️ " + err.Error()
	default:
		return msgTryAgain
	}
}

func (h *Handler) reply(ctx context.Context, chatID, text string, opts notification.SendOptions) {
	if opts.Type == "" {
		opts.Type = notification.TypeMessage
	}
	if res := h.dispatcher.Send(ctx, chatID, text, opts); !res.Success {
		slog.Warn("Bot: reply failed", "chat_id", chatID, "error", res.Err)
	}
}
