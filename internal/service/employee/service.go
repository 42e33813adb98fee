package employee

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/audit"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/employee"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/clock"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/validator"
)

type EmployeeServiceImpl struct {
	employeeRepo employee.EmployeeRepository
	auditRepo    audit.Repository
	clock        clock.Clock
	adminChatIDs map[string]bool
}

func NewEmployeeService(
	employeeRepo employee.EmployeeRepository,
	auditRepo audit.Repository,
	clk clock.Clock,
	adminChatIDs []string,
) employee.EmployeeService {
	admins := make(map[string]bool, len(adminChatIDs))
	for _, id := range adminChatIDs {
		admins[id] = true
	}
	return &EmployeeServiceImpl{
		employeeRepo: employeeRepo,
		auditRepo:    auditRepo,
		clock:        clk,
		adminChatIDs: admins,
	}
}

// Register implements employee.EmployeeService.
func (s *EmployeeServiceImpl) Register(ctx context.Context, req employee.RegisterRequest) (employee.Employee, error) {
	req.FullName = strings.TrimSpace(req.FullName)
	if err := validator.Struct(req); err != nil {
		return employee.Employee{}, err
	}
	if !req.IsOwn {
		return employee.Employee{}, employee.ErrContactNotOwn
	}
	if !validator.IsValidPhoneNumber(req.PhoneNumber) {
		return employee.Employee{}, employee.ErrInvalidPhoneNumber
	}

	now := s.clock.Now()
	emp, err := s.employeeRepo.Upsert(ctx, employee.Employee{
		ChatID:       req.ChatID,
		FullName:     req.FullName,
		PhoneNumber:  normalizePhone(req.PhoneNumber),
		IsActive:     true,
		IsAdmin:      s.adminChatIDs[req.ChatID],
		RegisteredAt: now,
		UpdatedAt:    now,
	})
	if err != nil {
		return employee.Employee{}, fmt.Errorf("failed to register employee: %w", err)
	}

	s.recordAudit(ctx, emp.ID, audit.ActionRegistered, map[string]interface{}{"chat_id": emp.ChatID})

	return emp, nil
}

// GetByChatID implements employee.EmployeeService.
func (s *EmployeeServiceImpl) GetByChatID(ctx context.Context, chatID string) (employee.Employee, error) {
	return s.employeeRepo.GetByChatID(ctx, chatID)
}

// ListActive implements employee.EmployeeService.
func (s *EmployeeServiceImpl) ListActive(ctx context.Context) ([]employee.Employee, error) {
	employees, err := s.employeeRepo.List(ctx, employee.EmployeeFilter{ActiveOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list active employees: %w", err)
	}
	return employees, nil
}

// Deactivate implements employee.EmployeeService.
func (s *EmployeeServiceImpl) Deactivate(ctx context.Context, id string) error {
	if err := s.employeeRepo.Deactivate(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, id, audit.ActionDeactivated, nil)
	return nil
}

func (s *EmployeeServiceImpl) recordAudit(ctx context.Context, entityID string, action audit.Action, details map[string]interface{}) {
	if err := s.auditRepo.Append(ctx, audit.Entry{
		Actor:     entityID,
		Action:    action,
		EntityID:  entityID,
		Details:   details,
		CreatedAt: s.clock.Now(),
	}); err != nil {
		slog.Warn("Failed to append audit entry", "action", action, "entity_id", entityID, "error", err)
	}
}

// normalizePhone strips separators and keeps a leading +.
func normalizePhone(phone string) string {
	var b strings.Builder
	for i, r := range strings.TrimSpace(phone) {
		if r == '+' && i == 0 {
			b.WriteRune(r)
			continue
		}
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
