package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/employee"
	"github.com/google/uuid"
)

type employeeRepository struct {
	mu        sync.RWMutex
	employees map[string]employee.Employee
}

func NewEmployeeRepository() employee.EmployeeRepository {
	return &employeeRepository{employees: make(map[string]employee.Employee)}
}

// GetByID implements employee.EmployeeRepository.
func (r *employeeRepository) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

// GetByChatID implements employee.EmployeeRepository.
func (r *employeeRepository) GetByChatID(ctx context.Context, chatID string) (employee.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.employees {
		if e.ChatID == chatID {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

// Upsert implements employee.EmployeeRepository.
func (r *employeeRepository) Upsert(ctx context.Context, e employee.Employee) (employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for id, existing := range r.employees {
		if existing.ChatID != e.ChatID {
			continue
		}
		existing.FullName = e.FullName
		existing.PhoneNumber = e.PhoneNumber
		if e.Department != nil {
			existing.Department = e.Department
		}
		if e.Position != nil {
			existing.Position = e.Position
		}
		existing.UpdatedAt = now
		r.employees[id] = existing
		return existing, nil
	}

	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.RegisteredAt.IsZero() {
		e.RegisteredAt = now
	}
	e.UpdatedAt = now
	r.employees[e.ID] = e
	return e, nil
}

// List implements employee.EmployeeRepository.
func (r *employeeRepository) List(ctx context.Context, filter employee.EmployeeFilter) ([]employee.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []employee.Employee
	for _, e := range r.employees {
		if filter.Matches(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

// Count implements employee.EmployeeRepository.
func (r *employeeRepository) Count(ctx context.Context, filter employee.EmployeeFilter) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, e := range r.employees {
		if filter.Matches(e) {
			count++
		}
	}
	return count, nil
}

// Deactivate implements employee.EmployeeRepository.
func (r *employeeRepository) Deactivate(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.employees[id]
	if !ok {
		return employee.ErrEmployeeNotFound
	}
	if !e.IsActive {
		return employee.ErrEmployeeAlreadyInactive
	}
	now := time.Now()
	e.IsActive = false
	e.DeactivatedAt = &now
	e.UpdatedAt = now
	r.employees[id] = e
	return nil
}
