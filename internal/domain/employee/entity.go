package employee

import (
	"time"
)

// Employee is a registered staff member. ChatID is the transport handle used
// both to recognise inbound events and to deliver notifications.
type Employee struct {
	ID            string
	ChatID        string
	FullName      string
	PhoneNumber   string
	Department    *string
	Position      *string
	IsActive      bool
	IsAdmin       bool
	RegisteredAt  time.Time
	UpdatedAt     time.Time
	DeactivatedAt *time.Time
}

// EmployeeFilter narrows List and Count.
type EmployeeFilter struct {
	ActiveOnly bool
	Department *string
}

func (f EmployeeFilter) Matches(e Employee) bool {
	if f.ActiveOnly && !e.IsActive {
		return false
	}
	if f.Department != nil && (e.Department == nil || *e.Department != *f.Department) {
		return false
	}
	return true
}
