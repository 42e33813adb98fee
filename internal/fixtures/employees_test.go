package fixtures

import (
	"context"
	"testing"

	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/employee"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/validator"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/repository/memory"
	"github.com/brianvoe/gofakeit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedEmployees(t *testing.T) {
	gofakeit.Seed(42)
	repo := memory.NewEmployeeRepository()

	seeded, err := SeedEmployees(context.Background(), repo, 10, 5000)
	require.NoError(t, err)
	require.Len(t, seeded, 10)

	for _, e := range seeded {
		assert.True(t, validator.IsValidPhoneNumber(e.PhoneNumber), e.PhoneNumber)
		assert.NotEmpty(t, e.FullName)
	}

	count, err := repo.Count(context.Background(), employee.EmployeeFilter{ActiveOnly: true})
	require.NoError(t, err)
	assert.Equal(t, 10, count)

	got, err := repo.GetByChatID(context.Background(), "5009")
	require.NoError(t, err)
	assert.Equal(t, seeded[9].ID, got.ID)
}
