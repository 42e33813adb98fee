package employee

import "context"

type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	GetByChatID(ctx context.Context, chatID string) (Employee, error)
	// Upsert creates the employee or refreshes the profile of the one sharing ChatID.
	Upsert(ctx context.Context, e Employee) (Employee, error)
	List(ctx context.Context, filter EmployeeFilter) ([]Employee, error)
	Count(ctx context.Context, filter EmployeeFilter) (int, error)
	Deactivate(ctx context.Context, id string) error
}
