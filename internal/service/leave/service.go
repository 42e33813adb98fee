package leave

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/audit"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/employee"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/leave"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/notification"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/clock"
)

type LeaveServiceImpl struct {
	leave.LeaveRequestRepository
	employee.EmployeeRepository
	auditRepo  audit.Repository
	dispatcher notification.Dispatcher
	clock      clock.Clock
}

// Submit implements leave.LeaveService.
func (s *LeaveServiceImpl) Submit(ctx context.Context, req leave.SubmitLeaveRequest) (leave.LeaveRequest, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequest{}, err
	}

	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return leave.LeaveRequest{}, leave.ErrEmptyReason
	}

	loc := s.clock.Location()
	start := clock.StartOfDay(req.StartDate.In(loc))
	end := clock.StartOfDay(req.EndDate.In(loc))
	if end.Before(start) {
		return leave.LeaveRequest{}, leave.ErrInvalidDateRange
	}
	if start.Before(clock.StartOfDay(s.clock.Now())) {
		return leave.LeaveRequest{}, leave.ErrStartDateInPast
	}
	totalDays := leave.CountDays(start, end)
	if totalDays > leave.MaxDaysPerRequest {
		return leave.LeaveRequest{}, leave.ErrRangeTooLong
	}

	emp, err := s.EmployeeRepository.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to get employee: %w", err)
	}

	created, err := s.LeaveRequestRepository.Create(ctx, leave.LeaveRequest{
		EmployeeID:  emp.ID,
		StartDate:   start,
		EndDate:     end,
		TotalDays:   totalDays,
		Reason:      reason,
		Status:      leave.LeaveRequestStatusWaitingApproval,
		SubmittedAt: s.clock.Now(),
	})
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to create leave request: %w", err)
	}
	created.EmployeeName = &emp.FullName

	if err := s.auditRepo.Append(ctx, audit.Entry{
		Actor:    emp.ID,
		Action:   audit.ActionLeaveRequested,
		EntityID: created.ID,
		Details: map[string]interface{}{
			"start_date": clock.DateKey(start),
			"end_date":   clock.DateKey(end),
			"total_days": totalDays,
		},
		CreatedAt: s.clock.Now(),
	}); err != nil {
		slog.Warn("Failed to append audit entry", "action", audit.ActionLeaveRequested, "entity_id", created.ID, "error", err)
	}

	s.dispatcher.NotifyAdmins(ctx, fmt.Sprintf(
		"📝 Leave request from *%s*: %s to %s (%d days)\nReason: %s",
		emp.FullName, clock.DateKey(start), clock.DateKey(end), totalDays, reason,
	), notification.SendOptions{Type: notification.TypeLeaveRequest, ParseMode: notification.ParseMarkdown})

	return created, nil
}

// ListPending implements leave.LeaveService.
func (s *LeaveServiceImpl) ListPending(ctx context.Context, limit int) ([]leave.LeaveRequest, error) {
	if limit < 1 || limit > 200 {
		limit = 50
	}
	requests, err := s.LeaveRequestRepository.ListByStatus(ctx, leave.LeaveRequestStatusWaitingApproval, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave requests: %w", err)
	}
	return requests, nil
}

func NewLeaveService(
	leaveRequestRepo leave.LeaveRequestRepository,
	employeeRepo employee.EmployeeRepository,
	auditRepo audit.Repository,
	dispatcher notification.Dispatcher,
	clk clock.Clock,
) leave.LeaveService {
	return &LeaveServiceImpl{
		LeaveRequestRepository: leaveRequestRepo,
		EmployeeRepository:     employeeRepo,
		auditRepo:              auditRepo,
		dispatcher:             dispatcher,
		clock:                  clk,
	}
}
