package fixtures

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/employee"
	"github.com/brianvoe/gofakeit"
)

// DefaultDepartments are assigned round-robin to seeded employees.
var DefaultDepartments = []string{"Engineering", "Finance", "Operations", "Sales"}

func strPtr(s string) *string { return &s }

// NewEmployee builds a random active employee. chatID keeps seeded records
// addressable from tests.
func NewEmployee(chatID string) employee.Employee {
	return employee.Employee{
		ChatID:      chatID,
		FullName:    gofakeit.Name(),
		PhoneNumber: "+20" + gofakeit.Phone(),
		Department:  strPtr(DefaultDepartments[gofakeit.Number(0, len(DefaultDepartments)-1)]),
		Position:    strPtr(gofakeit.JobTitle()),
		IsActive:    true,
	}
}

// SeedEmployees upserts n random employees with chat IDs starting at firstChatID.
func SeedEmployees(ctx context.Context, repo employee.EmployeeRepository, n int, firstChatID int64) ([]employee.Employee, error) {
	seeded := make([]employee.Employee, 0, n)
	for i := 0; i < n; i++ {
		e := NewEmployee(strconv.FormatInt(firstChatID+int64(i), 10))
		e.Department = strPtr(DefaultDepartments[i%len(DefaultDepartments)])

		saved, err := repo.Upsert(ctx, e)
		if err != nil {
			return seeded, fmt.Errorf("failed to seed employee %d: %w", i, err)
		}
		seeded = append(seeded, saved)
	}
	return seeded, nil
}
