package employee

import (
	"context"
)

// EmployeeService covers self-registration from the chat front end and the
// lookups other services need.
type EmployeeService interface {
	// Register creates or refreshes an employee from a shared contact.
	Register(ctx context.Context, req RegisterRequest) (Employee, error)

	// GetByChatID resolves the sender of an inbound chat event.
	GetByChatID(ctx context.Context, chatID string) (Employee, error)

	// ListActive returns every active employee.
	ListActive(ctx context.Context) ([]Employee, error)

	// Deactivate soft-deletes an employee; records are never removed.
	Deactivate(ctx context.Context, id string) error
}

type RegisterRequest struct {
	ChatID      string `json:"chat_id" validate:"required"`
	FullName    string `json:"full_name" validate:"required,max=120"`
	PhoneNumber string `json:"phone_number" validate:"required"`
	IsOwn       bool   `json:"-"`
}
