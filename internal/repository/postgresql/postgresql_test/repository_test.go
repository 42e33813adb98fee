package postgresql_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/attendance"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/conversation"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/employee"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/notification"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/repository/postgresql"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedEmployee(t *testing.T, repo employee.EmployeeRepository, chatID string) employee.Employee {
	t.Helper()
	e, err := repo.Upsert(context.Background(), employee.Employee{
		ChatID:      chatID,
		FullName:    "Employee " + chatID,
		PhoneNumber: "+201001234567",
		IsActive:    true,
	})
	require.NoError(t, err)
	return e
}

func TestEmployeeRepository_UpsertAndDeactivate(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewEmployeeRepository(db)

	created := seedEmployee(t, repo, "1001")

	again, err := repo.Upsert(ctx, employee.Employee{ChatID: "1001", FullName: "Renamed", PhoneNumber: "+201001234568", IsActive: true})
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)
	assert.Equal(t, "Renamed", again.FullName)

	byChat, err := repo.GetByChatID(ctx, "1001")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byChat.ID)

	_, err = repo.GetByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	require.NoError(t, repo.Deactivate(ctx, created.ID))
	assert.ErrorIs(t, repo.Deactivate(ctx, created.ID), employee.ErrEmployeeAlreadyInactive)

	count, err := repo.Count(ctx, employee.EmployeeFilter{ActiveOnly: true})
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestAttendanceRepository_MutateIsAtomic(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()
	loc := time.UTC
	emp := seedEmployee(t, postgresql.NewEmployeeRepository(db), "2001")
	repo := postgresql.NewAttendanceRepository(db, loc)
	day := time.Date(2024, 5, 15, 0, 0, 0, 0, loc)

	// A failing mutation leaves no row behind.
	boom := errors.New("boom")
	_, err := repo.Mutate(ctx, emp.ID, day, func(d *attendance.AttendanceDay) error { return boom })
	assert.ErrorIs(t, err, boom)
	got, err := repo.GetByEmployeeAndDate(ctx, emp.ID, day)
	require.NoError(t, err)
	assert.Nil(t, got)

	// Concurrent check-ins race for the same key; exactly one wins.
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Mutate(ctx, emp.ID, day, func(d *attendance.AttendanceDay) error {
				if d.Status != attendance.StatusNotStarted {
					return attendance.ErrAlreadyCheckedIn
				}
				now := day.Add(9 * time.Hour)
				d.Status = attendance.StatusCheckedIn
				d.CheckInTime = &now
				return nil
			})
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)

	got, err = repo.GetByEmployeeAndDate(ctx, emp.ID, day)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, attendance.StatusCheckedIn, got.Status)
	assert.Equal(t, day, got.Date)

	days, err := repo.ListByRange(ctx, day, day)
	require.NoError(t, err)
	assert.Len(t, days, 1)

	open, err := repo.CountOpenSince(ctx, day.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, open)
}

func TestConversationRepository_RoundTripAndExpiry(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewConversationRepository(db)
	now := time.Date(2024, 5, 15, 9, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Save(ctx, conversation.State{
		UserID:    "u1",
		Payload:   conversation.LateReason{Date: now.Truncate(24 * time.Hour)},
		ExpiresAt: now.Add(30 * time.Minute),
	}))
	require.NoError(t, repo.Save(ctx, conversation.State{
		UserID:    "u2",
		Payload:   conversation.LeaveRequest{},
		ExpiresAt: now.Add(-time.Minute),
	}))

	state, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.IsType(t, conversation.LateReason{}, state.Payload)

	n, err := repo.DeleteExpired(ctx, now, 100)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	state, err = repo.Get(ctx, "u2")
	require.NoError(t, err)
	assert.Nil(t, state)
}

func TestNotificationRepository_BatchedDelete(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewNotificationRepository(db)
	old := time.Now().Add(-60 * 24 * time.Hour)

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.AppendLog(ctx, notification.LogEntry{
			ID:        uuid.New().String(),
			Recipient: "42",
			Type:      notification.TypeMessage,
			Message:   "hello",
			Success:   true,
			SentAt:    old,
		}))
	}

	n, err := repo.DeleteLogsOlderThan(ctx, time.Now().Add(-30*24*time.Hour), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	recent, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, recent, 3)
}
