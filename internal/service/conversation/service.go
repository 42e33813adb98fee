package conversation

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/attendance"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/conversation"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/leave"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/clock"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/validator"
)

const (
	DefaultTTL  = 30 * time.Minute
	lockStripes = 64
)

const (
	leaveStepStartDate = iota
	leaveStepEndDate
	leaveStepReason
)

const (
	MsgReasonRecorded  = "✅ Thank you, your reason has been recorded."
	MsgReasonEmpty     = "Please type a short reason (up to 500 characters)."
	MsgLeaveStartDate  = "📅 Please send the first day of your leave (YYYY-MM-DD)."
	MsgLeaveEndDate    = "📅 Now send the last day of your leave (YYYY-MM-DD)."
	MsgLeaveReason     = "✏️ Finally, send the reason for your leave."
	MsgLeaveSubmitted  = "✅ Your leave request has been submitted for approval."
	MsgInvalidDate     = "That doesn't look like a date. Please use YYYY-MM-DD, e.g. 2024-05-20."
	MsgNothingToCancel = "There is nothing to cancel."
	MsgCancelled       = "❌ Cancelled."
)

type service struct {
	repo       conversation.Repository
	attendance attendance.AttendanceService
	leave      leave.LeaveService
	clock      clock.Clock
	ttl        time.Duration

	locks [lockStripes]sync.Mutex
}

// NewService creates the dialogue engine. A non-positive ttl falls back to DefaultTTL.
func NewService(repo conversation.Repository, attendanceSvc attendance.AttendanceService, leaveSvc leave.LeaveService, clk clock.Clock, ttl time.Duration) conversation.Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &service{
		repo:       repo,
		attendance: attendanceSvc,
		leave:      leaveSvc,
		clock:      clk,
		ttl:        ttl,
	}
}

// lock serializes all dialogue operations of one user.
func (s *service) lock(userID string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	mu := &s.locks[h.Sum32()%lockStripes]
	mu.Lock()
	return mu.Unlock
}

// Begin implements conversation.Service.
func (s *service) Begin(ctx context.Context, userID string, payload conversation.Payload) (conversation.State, error) {
	if payload == nil {
		return conversation.State{}, conversation.ErrUnknownPayload
	}
	defer s.lock(userID)()

	now := s.clock.Now()
	state := conversation.State{
		UserID:    userID,
		Payload:   payload,
		Step:      0,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Save(ctx, state); err != nil {
		return conversation.State{}, fmt.Errorf("failed to save conversation state: %w", err)
	}
	return state, nil
}

// Active implements conversation.Service.
func (s *service) Active(ctx context.Context, userID string) (*conversation.State, error) {
	defer s.lock(userID)()
	return s.active(ctx, userID)
}

// active drops an expired state before anyone can act on it.
func (s *service) active(ctx context.Context, userID string) (*conversation.State, error) {
	state, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation state: %w", err)
	}
	if state == nil {
		return nil, nil
	}
	if state.Expired(s.clock.Now()) {
		if err := s.repo.Delete(ctx, userID); err != nil {
			return nil, fmt.Errorf("failed to delete expired conversation state: %w", err)
		}
		return nil, nil
	}
	return state, nil
}

// Consume implements conversation.Service.
func (s *service) Consume(ctx context.Context, userID string, text string) (conversation.Reply, error) {
	defer s.lock(userID)()

	state, err := s.active(ctx, userID)
	if err != nil {
		return conversation.Reply{}, err
	}
	if state == nil {
		return conversation.Reply{Handled: false}, nil
	}

	text = strings.TrimSpace(text)

	switch p := state.Payload.(type) {
	case conversation.LateReason:
		return s.consumeReason(ctx, *state, attendance.ReasonLate, p.Date, text)
	case conversation.EarlyReason:
		return s.consumeReason(ctx, *state, attendance.ReasonEarly, p.Date, text)
	case conversation.LeaveRequest:
		return s.consumeLeave(ctx, *state, p, text)
	default:
		// Unknown variants cannot make progress.
		if err := s.repo.Delete(ctx, userID); err != nil {
			return conversation.Reply{}, fmt.Errorf("failed to delete conversation state: %w", err)
		}
		return conversation.Reply{}, fmt.Errorf("%w: %T", conversation.ErrUnknownPayload, p)
	}
}

func (s *service) consumeReason(ctx context.Context, state conversation.State, kind attendance.ReasonKind, date time.Time, text string) (conversation.Reply, error) {
	if text == "" {
		return conversation.Reply{Handled: true, Message: MsgReasonEmpty}, nil
	}

	_, err := s.attendance.AttachReason(ctx, attendance.AttachReasonRequest{
		EmployeeID: state.UserID,
		Date:       date,
		Kind:       kind,
		Text:       text,
	})

	var verrs validator.ValidationErrors
	switch {
	case err == nil:
		return s.finish(ctx, state.UserID, MsgReasonRecorded)
	case errors.Is(err, attendance.ErrEmptyReason), errors.As(err, &verrs):
		return conversation.Reply{Handled: true, Message: MsgReasonEmpty}, nil
	case attendance.IsPolicyViolation(err):
		return s.finish(ctx, state.UserID, err.Error())
	default:
		// Keep the state so the user can retry once storage recovers.
		return conversation.Reply{}, err
	}
}

func (s *service) consumeLeave(ctx context.Context, state conversation.State, p conversation.LeaveRequest, text string) (conversation.Reply, error) {
	switch state.Step {
	case leaveStepStartDate:
		start, ok := s.parseDate(text)
		if !ok {
			return conversation.Reply{Handled: true, Message: MsgInvalidDate}, nil
		}
		if start.Before(clock.StartOfDay(s.clock.Now())) {
			return conversation.Reply{Handled: true, Message: leave.ErrStartDateInPast.Error() + ". " + MsgLeaveStartDate}, nil
		}
		p.StartDate = &start
		return s.advance(ctx, state, p, MsgLeaveEndDate)

	case leaveStepEndDate:
		end, ok := s.parseDate(text)
		if !ok {
			return conversation.Reply{Handled: true, Message: MsgInvalidDate}, nil
		}
		if p.StartDate == nil {
			return s.advanceTo(ctx, state, conversation.LeaveRequest{}, leaveStepStartDate, MsgLeaveStartDate)
		}
		if end.Before(*p.StartDate) {
			return conversation.Reply{Handled: true, Message: leave.ErrInvalidDateRange.Error() + ". " + MsgLeaveEndDate}, nil
		}
		if leave.CountDays(*p.StartDate, end) > leave.MaxDaysPerRequest {
			return conversation.Reply{Handled: true, Message: leave.ErrRangeTooLong.Error() + ". " + MsgLeaveEndDate}, nil
		}
		p.EndDate = &end
		return s.advance(ctx, state, p, MsgLeaveReason)

	case leaveStepReason:
		if text == "" {
			return conversation.Reply{Handled: true, Message: MsgLeaveReason}, nil
		}
		if p.StartDate == nil || p.EndDate == nil {
			return s.advanceTo(ctx, state, conversation.LeaveRequest{}, leaveStepStartDate, MsgLeaveStartDate)
		}
		_, err := s.leave.Submit(ctx, leave.SubmitLeaveRequest{
			EmployeeID: state.UserID,
			StartDate:  *p.StartDate,
			EndDate:    *p.EndDate,
			Reason:     text,
		})
		var verrs validator.ValidationErrors
		switch {
		case err == nil:
			return s.finish(ctx, state.UserID, MsgLeaveSubmitted)
		case errors.As(err, &verrs):
			return conversation.Reply{Handled: true, Message: verrs.Error()}, nil
		case errors.Is(err, leave.ErrEmptyReason):
			return conversation.Reply{Handled: true, Message: MsgLeaveReason}, nil
		case errors.Is(err, leave.ErrStartDateInPast), errors.Is(err, leave.ErrInvalidDateRange), errors.Is(err, leave.ErrRangeTooLong):
			return s.advanceTo(ctx, state, conversation.LeaveRequest{}, leaveStepStartDate, err.Error()+". "+MsgLeaveStartDate)
		default:
			return conversation.Reply{}, err
		}

	default:
		return s.finish(ctx, state.UserID, MsgCancelled)
	}
}

func (s *service) parseDate(text string) (time.Time, bool) {
	d, ok := validator.IsValidDate(text)
	if !ok {
		return time.Time{}, false
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, s.clock.Location()), true
}

func (s *service) advance(ctx context.Context, state conversation.State, p conversation.Payload, message string) (conversation.Reply, error) {
	return s.advanceTo(ctx, state, p, state.Step+1, message)
}

// advanceTo saves the new step. Expiry is not extended: the TTL bounds the whole dialogue.
func (s *service) advanceTo(ctx context.Context, state conversation.State, p conversation.Payload, step int, message string) (conversation.Reply, error) {
	state.Payload = p
	state.Step = step
	state.UpdatedAt = s.clock.Now()
	if err := s.repo.Save(ctx, state); err != nil {
		return conversation.Reply{}, fmt.Errorf("failed to save conversation state: %w", err)
	}
	return conversation.Reply{Handled: true, Message: message}, nil
}

func (s *service) finish(ctx context.Context, userID, message string) (conversation.Reply, error) {
	if err := s.repo.Delete(ctx, userID); err != nil {
		return conversation.Reply{}, fmt.Errorf("failed to delete conversation state: %w", err)
	}
	return conversation.Reply{Handled: true, Done: true, Message: message}, nil
}

// Cancel implements conversation.Service.
func (s *service) Cancel(ctx context.Context, userID string) (bool, error) {
	defer s.lock(userID)()

	state, err := s.active(ctx, userID)
	if err != nil {
		return false, err
	}
	if state == nil {
		return false, nil
	}
	if err := s.repo.Delete(ctx, userID); err != nil {
		return false, fmt.Errorf("failed to delete conversation state: %w", err)
	}
	return true, nil
}

// ExpireSweep implements conversation.Service.
func (s *service) ExpireSweep(ctx context.Context, now time.Time) (int, error) {
	n, err := s.repo.DeleteExpired(ctx, now, 0)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep expired conversation states: %w", err)
	}
	return n, nil
}
