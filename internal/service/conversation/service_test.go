package conversation

import (
	"context"
	"testing"
	"time"

	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/attendance"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/conversation"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/employee"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/leave"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/clock"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/geo"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/sse"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/repository/memory"
	attendanceService "github.com/Mgabr90/mansoura-attendance-system-sub000/internal/service/attendance"
	leaveService "github.com/Mgabr90/mansoura-attendance-system-sub000/internal/service/leave"
	notificationService "github.com/Mgabr90/mansoura-attendance-system-sub000/internal/service/notification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var office = geo.Point{Latitude: 31.0409, Longitude: 31.3785}

type fixture struct {
	svc        conversation.Service
	repo       conversation.Repository
	attendance attendance.AttendanceService
	leaves     leave.LeaveRequestRepository
	clock      *clock.Fixed
	employee   employee.Employee
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clk := clock.NewFixed(time.Date(2024, 5, 15, 9, 20, 0, 0, time.UTC))
	employees := memory.NewEmployeeRepository()
	auditRepo := memory.NewAuditRepository()
	hub := sse.NewHub()
	dispatcher := notificationService.NewDispatcher(
		memory.NewNotificationRepository(), notificationService.NewConsoleTransport(hub), hub, clk,
		notificationService.Config{AdminChatIDs: []string{"900"}},
	)

	emp, err := employees.Upsert(context.Background(), employee.Employee{ChatID: "1001", FullName: "Omar Fathy", IsActive: true})
	require.NoError(t, err)

	att := attendanceService.NewAttendanceService(memory.NewAttendanceRepository(), employees, auditRepo, dispatcher, clk, attendanceService.Policy{
		Fence:     geo.Fence{Office: office, RadiusMeters: 100},
		WorkStart: clock.MustParseTimeOfDay("09:00"),
		WorkEnd:   clock.MustParseTimeOfDay("17:00"),
	})
	t.Cleanup(att.Wait)

	leaves := memory.NewLeaveRequestRepository()
	leaveSvc := leaveService.NewLeaveService(leaves, employees, auditRepo, dispatcher, clk)

	repo := memory.NewConversationRepository()
	return &fixture{
		svc:        NewService(repo, att, leaveSvc, clk, 30*time.Minute),
		repo:       repo,
		attendance: att,
		leaves:     leaves,
		clock:      clk,
		employee:   emp,
	}
}

func TestLateReasonDialogue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.attendance.CheckIn(ctx, attendance.CheckInRequest{EmployeeID: f.employee.ID, At: f.clock.Now(), Location: office})
	require.NoError(t, err)
	require.True(t, res.ReasonNeeded)

	_, err = f.svc.Begin(ctx, f.employee.ID, conversation.LateReason{Date: res.Day.Date})
	require.NoError(t, err)

	reply, err := f.svc.Consume(ctx, f.employee.ID, "   ")
	require.NoError(t, err)
	assert.True(t, reply.Handled)
	assert.False(t, reply.Done)
	assert.Equal(t, MsgReasonEmpty, reply.Message)

	reply, err = f.svc.Consume(ctx, f.employee.ID, "traffic")
	require.NoError(t, err)
	assert.True(t, reply.Done)
	assert.Equal(t, MsgReasonRecorded, reply.Message)

	day, err := f.attendance.Today(ctx, f.employee.ID, f.clock.Now())
	require.NoError(t, err)
	require.NotNil(t, day.LateReason)
	assert.Equal(t, "traffic", *day.LateReason)

	state, err := f.svc.Active(ctx, f.employee.ID)
	require.NoError(t, err)
	assert.Nil(t, state)
}

func TestConsume_NoActiveState(t *testing.T) {
	f := newFixture(t)

	reply, err := f.svc.Consume(context.Background(), f.employee.ID, "hello")
	require.NoError(t, err)
	assert.False(t, reply.Handled)
}

func TestConsume_ExpiredStateIsIgnored(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Begin(ctx, f.employee.ID, conversation.LateReason{Date: clock.StartOfDay(f.clock.Now())})
	require.NoError(t, err)

	f.clock.Advance(30 * time.Minute)

	reply, err := f.svc.Consume(ctx, f.employee.ID, "traffic")
	require.NoError(t, err)
	assert.False(t, reply.Handled)

	stored, err := f.repo.Get(ctx, f.employee.ID)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestBegin_ReplacesExistingState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Begin(ctx, f.employee.ID, conversation.LateReason{Date: clock.StartOfDay(f.clock.Now())})
	require.NoError(t, err)
	_, err = f.svc.Begin(ctx, f.employee.ID, conversation.LeaveRequest{})
	require.NoError(t, err)

	state, err := f.svc.Active(ctx, f.employee.ID)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, conversation.TypeLeaveRequest, state.Payload.Type())
	assert.Equal(t, 0, state.Step)
}

func TestReasonNotApplicableEndsDialogue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Begin(ctx, f.employee.ID, conversation.EarlyReason{Date: clock.StartOfDay(f.clock.Now())})
	require.NoError(t, err)

	reply, err := f.svc.Consume(ctx, f.employee.ID, "doctor")
	require.NoError(t, err)
	assert.True(t, reply.Done)
	assert.Equal(t, attendance.ErrReasonNotApplicable.Error(), reply.Message)
}

func TestLeaveDialogue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Begin(ctx, f.employee.ID, conversation.LeaveRequest{})
	require.NoError(t, err)

	steps := []struct {
		input string
		want  string
	}{
		{"next week", MsgInvalidDate},
		{"2024-05-01", leave.ErrStartDateInPast.Error() + ". " + MsgLeaveStartDate},
		{"2024-05-20", MsgLeaveEndDate},
		{"2024-05-19", leave.ErrInvalidDateRange.Error() + ". " + MsgLeaveEndDate},
		{"2024-07-30", leave.ErrRangeTooLong.Error() + ". " + MsgLeaveEndDate},
		{"2024-05-22", MsgLeaveReason},
		{"family wedding", MsgLeaveSubmitted},
	}
	for _, step := range steps {
		reply, err := f.svc.Consume(ctx, f.employee.ID, step.input)
		require.NoError(t, err, step.input)
		assert.True(t, reply.Handled, step.input)
		assert.Equal(t, step.want, reply.Message, step.input)
	}

	pending, err := f.leaves.ListByStatus(ctx, leave.LeaveRequestStatusWaitingApproval, 0)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 3, pending[0].TotalDays)
	assert.Equal(t, "family wedding", pending[0].Reason)

	state, err := f.svc.Active(ctx, f.employee.ID)
	require.NoError(t, err)
	assert.Nil(t, state)
}

func TestCancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cancelled, err := f.svc.Cancel(ctx, f.employee.ID)
	require.NoError(t, err)
	assert.False(t, cancelled)

	_, err = f.svc.Begin(ctx, f.employee.ID, conversation.LeaveRequest{})
	require.NoError(t, err)

	cancelled, err = f.svc.Cancel(ctx, f.employee.ID)
	require.NoError(t, err)
	assert.True(t, cancelled)

	reply, err := f.svc.Consume(ctx, f.employee.ID, "2024-05-20")
	require.NoError(t, err)
	assert.False(t, reply.Handled)
}

func TestExpireSweep(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Begin(ctx, "a", conversation.LeaveRequest{})
	require.NoError(t, err)
	f.clock.Advance(20 * time.Minute)
	_, err = f.svc.Begin(ctx, "b", conversation.LeaveRequest{})
	require.NoError(t, err)

	n, err := f.svc.ExpireSweep(ctx, f.clock.Now().Add(15*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	a, err := f.repo.Get(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, a)
	b, err := f.repo.Get(ctx, "b")
	require.NoError(t, err)
	assert.NotNil(t, b)
}

func TestPayloadRoundTrip(t *testing.T) {
	start := time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)
	typ, data, err := conversation.EncodePayload(conversation.LeaveRequest{StartDate: &start})
	require.NoError(t, err)
	assert.Equal(t, conversation.TypeLeaveRequest, typ)

	p, err := conversation.DecodePayload(typ, data)
	require.NoError(t, err)
	lr, ok := p.(conversation.LeaveRequest)
	require.True(t, ok)
	assert.True(t, start.Equal(*lr.StartDate))
	assert.Nil(t, lr.EndDate)

	_, err = conversation.DecodePayload("bogus", data)
	assert.ErrorIs(t, err, conversation.ErrUnknownPayload)
}
