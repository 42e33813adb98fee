package attendance

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/attendance"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/audit"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/employee"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/notification"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/clock"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/geo"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/sse"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/validator"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/repository/memory"
	notificationService "github.com/Mgabr90/mansoura-attendance-system-sub000/internal/service/notification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var office = geo.Point{Latitude: 31.0409, Longitude: 31.3785}

func northOf(p geo.Point, meters float64) geo.Point {
	return geo.Point{
		Latitude:  p.Latitude + (meters/6371000)*(180.0/math.Pi),
		Longitude: p.Longitude,
	}
}

func at(hour, minute int) time.Time {
	return time.Date(2024, 5, 15, hour, minute, 0, 0, time.UTC)
}

type sentMessage struct {
	recipient string
	text      string
}

type recordingTransport struct {
	mu   sync.Mutex
	sent []sentMessage
	fail bool
}

func (t *recordingTransport) SendMessage(ctx context.Context, recipientID string, text string, opts notification.SendOptions) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.fail {
		return errors.New("chat platform unreachable")
	}
	t.sent = append(t.sent, sentMessage{recipient: recipientID, text: text})
	return nil
}

func (t *recordingTransport) messages() []sentMessage {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]sentMessage(nil), t.sent...)
}

type brokenAttendanceRepository struct {
	attendance.AttendanceRepository
}

func (brokenAttendanceRepository) Mutate(ctx context.Context, employeeID string, date time.Time, fn attendance.MutateFunc) (attendance.AttendanceDay, error) {
	return attendance.AttendanceDay{}, errors.New("connection refused")
}

type fixture struct {
	service   attendance.AttendanceService
	days      attendance.AttendanceRepository
	audit     *memory.AuditRepository
	transport *recordingTransport
	employee  employee.Employee
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithRepo(t, memory.NewAttendanceRepository())
}

func newFixtureWithRepo(t *testing.T, days attendance.AttendanceRepository) *fixture {
	t.Helper()

	clk := clock.NewFixed(at(8, 0))
	employees := memory.NewEmployeeRepository()
	auditRepo := memory.NewAuditRepository()
	transport := &recordingTransport{}
	dispatcher := notificationService.NewDispatcher(
		memory.NewNotificationRepository(), transport, sse.NewHub(), clk,
		notificationService.Config{AdminChatIDs: []string{"900"}},
	)

	emp, err := employees.Upsert(context.Background(), employee.Employee{
		ChatID:   "1001",
		FullName: "Mona Adel",
		IsActive: true,
	})
	require.NoError(t, err)

	svc := NewAttendanceService(days, employees, auditRepo, dispatcher, clk, Policy{
		Fence:     geo.Fence{Office: office, RadiusMeters: 100},
		WorkStart: clock.MustParseTimeOfDay("09:00"),
		WorkEnd:   clock.MustParseTimeOfDay("17:00"),
	})

	return &fixture{service: svc, days: days, audit: auditRepo, transport: transport, employee: emp}
}

func (f *fixture) checkIn(t *testing.T, when time.Time) (attendance.CheckInResult, error) {
	t.Helper()
	return f.service.CheckIn(context.Background(), attendance.CheckInRequest{
		EmployeeID: f.employee.ID,
		At:         when,
		Location:   office,
	})
}

func (f *fixture) checkOut(t *testing.T, when time.Time) (attendance.CheckOutResult, error) {
	t.Helper()
	return f.service.CheckOut(context.Background(), attendance.CheckOutRequest{
		EmployeeID: f.employee.ID,
		At:         when,
		Location:   office,
	})
}

func TestCheckIn_OnTime(t *testing.T) {
	f := newFixture(t)

	res, err := f.checkIn(t, at(8, 55))
	require.NoError(t, err)
	f.service.Wait()

	assert.Equal(t, attendance.StatusCheckedIn, res.Day.Status)
	assert.False(t, res.Day.IsLate)
	assert.False(t, res.ReasonNeeded)
	assert.Equal(t, 0.0, *res.Day.CheckInDistance)
	assert.Empty(t, f.transport.messages())

	entries := f.audit.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, audit.ActionCheckIn, entries[0].Action)
}

func TestCheckIn_Twice(t *testing.T) {
	f := newFixture(t)

	first, err := f.checkIn(t, at(8, 55))
	require.NoError(t, err)

	_, err = f.checkIn(t, at(9, 5))
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)

	day, err := f.service.Today(context.Background(), f.employee.ID, at(12, 0))
	require.NoError(t, err)
	require.NotNil(t, day)
	assert.Equal(t, *first.Day.CheckInTime, *day.CheckInTime)
	assert.False(t, day.IsLate)
}

func TestCheckIn_OutOfRange(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.CheckIn(context.Background(), attendance.CheckInRequest{
		EmployeeID: f.employee.ID,
		At:         at(8, 50),
		Location:   northOf(office, 150),
	})

	var oor *attendance.OutOfRangeError
	require.ErrorAs(t, err, &oor)
	assert.InDelta(t, 150, oor.DistanceMeters, 0.5)
	assert.Equal(t, 100.0, oor.RadiusMeters)
	assert.Contains(t, oor.Error(), "150 m")

	day, err := f.service.Today(context.Background(), f.employee.ID, at(8, 50))
	require.NoError(t, err)
	assert.Nil(t, day)
}

func TestCheckIn_Late(t *testing.T) {
	f := newFixture(t)

	res, err := f.checkIn(t, at(9, 20))
	require.NoError(t, err)
	f.service.Wait()

	assert.True(t, res.Day.IsLate)
	assert.True(t, res.ReasonNeeded)
	assert.Equal(t, 20, res.Day.LateMinutes)

	sent := f.transport.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "900", sent[0].recipient)
	assert.Contains(t, sent[0].text, "20 minutes late")
	assert.Contains(t, sent[0].text, "Mona Adel")
}

func TestCheckIn_PartialMinuteCountsAsLate(t *testing.T) {
	f := newFixture(t)

	res, err := f.checkIn(t, at(9, 0).Add(10*time.Second))
	require.NoError(t, err)
	f.service.Wait()

	assert.True(t, res.Day.IsLate)
	assert.Equal(t, 1, res.Day.LateMinutes)
}

func TestCheckIn_ExactlyAtThresholdIsOnTime(t *testing.T) {
	f := newFixture(t)

	res, err := f.checkIn(t, at(9, 0))
	require.NoError(t, err)
	assert.False(t, res.Day.IsLate)
}

func TestCheckIn_AlertFailureDoesNotAbort(t *testing.T) {
	f := newFixture(t)
	f.transport.fail = true

	res, err := f.checkIn(t, at(9, 45))
	require.NoError(t, err)
	f.service.Wait()

	assert.True(t, res.Day.IsLate)
	day, err := f.service.Today(context.Background(), f.employee.ID, at(10, 0))
	require.NoError(t, err)
	require.NotNil(t, day)
	assert.Equal(t, attendance.StatusCheckedIn, day.Status)
}

func TestCheckIn_InactiveEmployee(t *testing.T) {
	f := newFixture(t)
	employees := memory.NewEmployeeRepository()
	emp, err := employees.Upsert(context.Background(), employee.Employee{ChatID: "2002", FullName: "Left Company"})
	require.NoError(t, err)

	svc := NewAttendanceService(f.days, employees, f.audit, nil, clock.NewFixed(at(8, 0)), Policy{
		Fence:     geo.Fence{Office: office, RadiusMeters: 100},
		WorkStart: clock.MustParseTimeOfDay("09:00"),
		WorkEnd:   clock.MustParseTimeOfDay("17:00"),
	})
	_, err = svc.CheckIn(context.Background(), attendance.CheckInRequest{EmployeeID: emp.ID, At: at(8, 30), Location: office})
	assert.ErrorIs(t, err, employee.ErrEmployeeInactive)
}

func TestCheckIn_ValidationError(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.CheckIn(context.Background(), attendance.CheckInRequest{
		EmployeeID: f.employee.ID,
		Location:   geo.Point{Latitude: math.NaN(), Longitude: 31},
	})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	fields := verrs.ToMap()
	assert.Contains(t, fields, "at")
	assert.Contains(t, fields, "latitude")
}

func TestCheckIn_ConcurrentAttemptsProduceOneRecord(t *testing.T) {
	f := newFixture(t)

	const attempts = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.checkIn(t, at(8, 30).Add(time.Duration(i)*time.Second))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, attendance.ErrAlreadyCheckedIn):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, rejected)

	records, err := f.days.ListByRange(context.Background(), at(0, 0), at(0, 0))
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestCheckIn_StorageFailureFailsClosed(t *testing.T) {
	days := memory.NewAttendanceRepository()
	f := newFixtureWithRepo(t, brokenAttendanceRepository{AttendanceRepository: days})

	_, err := f.checkIn(t, at(9, 30))
	assert.ErrorIs(t, err, attendance.ErrStorageUnavailable)
	assert.False(t, attendance.IsPolicyViolation(err))
	f.service.Wait()

	assert.Empty(t, f.transport.messages())
	assert.Empty(t, f.audit.Entries())

	day, err := days.GetByEmployeeAndDate(context.Background(), f.employee.ID, at(0, 0))
	require.NoError(t, err)
	assert.Nil(t, day)
}

func TestCheckOut_EarlyDeparture(t *testing.T) {
	f := newFixture(t)

	_, err := f.checkIn(t, at(9, 0))
	require.NoError(t, err)

	res, err := f.checkOut(t, at(16, 30))
	require.NoError(t, err)
	f.service.Wait()

	assert.Equal(t, attendance.StatusComplete, res.Day.Status)
	assert.True(t, res.Day.IsEarlyDeparture)
	assert.True(t, res.ReasonNeeded)
	assert.Equal(t, 30, res.Day.EarlyMinutes)

	worked, ok := res.Day.WorkingDuration()
	require.True(t, ok)
	assert.Equal(t, 7*time.Hour+30*time.Minute, worked)

	sent := f.transport.messages()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].text, "30 minutes early")
}

func TestCheckOut_AfterWorkEnd(t *testing.T) {
	f := newFixture(t)

	_, err := f.checkIn(t, at(8, 45))
	require.NoError(t, err)

	res, err := f.checkOut(t, at(17, 10))
	require.NoError(t, err)
	f.service.Wait()

	assert.False(t, res.Day.IsEarlyDeparture)
	assert.False(t, res.ReasonNeeded)
	assert.Empty(t, f.transport.messages())
}

func TestCheckOut_WithoutCheckIn(t *testing.T) {
	f := newFixture(t)

	_, err := f.checkOut(t, at(17, 0))
	assert.ErrorIs(t, err, attendance.ErrNotCheckedIn)

	day, err := f.service.Today(context.Background(), f.employee.ID, at(17, 0))
	require.NoError(t, err)
	assert.Nil(t, day)
}

func TestCheckOut_Twice(t *testing.T) {
	f := newFixture(t)

	_, err := f.checkIn(t, at(8, 45))
	require.NoError(t, err)
	first, err := f.checkOut(t, at(17, 5))
	require.NoError(t, err)

	_, err = f.checkOut(t, at(18, 0))
	assert.ErrorIs(t, err, attendance.ErrAlreadyComplete)

	_, err = f.checkIn(t, at(18, 5))
	assert.ErrorIs(t, err, attendance.ErrAlreadyComplete)

	day, err := f.service.Today(context.Background(), f.employee.ID, at(19, 0))
	require.NoError(t, err)
	assert.Equal(t, *first.Day.CheckOutTime, *day.CheckOutTime)
}

func TestCheckOut_BeforeCheckInTime(t *testing.T) {
	f := newFixture(t)

	_, err := f.checkIn(t, at(9, 0))
	require.NoError(t, err)

	_, err = f.checkOut(t, at(8, 0))
	assert.ErrorIs(t, err, attendance.ErrCheckOutBeforeCheckIn)
}

func TestAttachReason(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.checkIn(t, at(9, 20))
	require.NoError(t, err)
	f.service.Wait()

	_, err = f.service.AttachReason(ctx, attendance.AttachReasonRequest{
		EmployeeID: f.employee.ID, Date: at(9, 20), Kind: attendance.ReasonEarly, Text: "doctor",
	})
	assert.ErrorIs(t, err, attendance.ErrReasonNotApplicable)

	_, err = f.service.AttachReason(ctx, attendance.AttachReasonRequest{
		EmployeeID: f.employee.ID, Date: at(9, 20), Kind: attendance.ReasonLate, Text: "   ",
	})
	assert.ErrorIs(t, err, attendance.ErrEmptyReason)

	day, err := f.service.AttachReason(ctx, attendance.AttachReasonRequest{
		EmployeeID: f.employee.ID, Date: at(9, 20), Kind: attendance.ReasonLate, Text: " traffic ",
	})
	require.NoError(t, err)
	require.NotNil(t, day.LateReason)
	assert.Equal(t, "traffic", *day.LateReason)
	assert.True(t, day.IsLate)
	assert.Equal(t, 20, day.LateMinutes)

	_, err = f.service.AttachReason(ctx, attendance.AttachReasonRequest{
		EmployeeID: f.employee.ID, Date: at(9, 20), Kind: attendance.ReasonLate, Text: "again",
	})
	assert.ErrorIs(t, err, attendance.ErrReasonAlreadySet)
}

func TestAttachReason_NoRecordLeavesNothingBehind(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.AttachReason(context.Background(), attendance.AttachReasonRequest{
		EmployeeID: f.employee.ID, Date: at(10, 0), Kind: attendance.ReasonLate, Text: "traffic",
	})
	assert.ErrorIs(t, err, attendance.ErrReasonNotApplicable)

	day, err := f.service.Today(context.Background(), f.employee.ID, at(10, 0))
	require.NoError(t, err)
	assert.Nil(t, day)
}

func TestHistory(t *testing.T) {
	f := newFixture(t)

	for d := 0; d < 3; d++ {
		day := at(8, 50).AddDate(0, 0, -d)
		_, err := f.checkIn(t, day)
		require.NoError(t, err)
	}

	records, err := f.service.History(context.Background(), f.employee.ID, at(12, 0), 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.True(t, records[0].Date.After(records[1].Date))
}
