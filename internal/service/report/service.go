package report

import (
	"context"
	"fmt"
	"time"

	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/attendance"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/employee"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/report"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/clock"
	"github.com/shopspring/decimal"
)

const rateDecimals = 4

// DefaultWorkDays is Monday to Friday.
var DefaultWorkDays = []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}

type ReportServiceImpl struct {
	attendanceRepo attendance.AttendanceRepository
	employeeRepo   employee.EmployeeRepository
	clock          clock.Clock
	workDays       map[time.Weekday]bool
}

func NewReportService(attendanceRepo attendance.AttendanceRepository, employeeRepo employee.EmployeeRepository, clk clock.Clock, workDays []time.Weekday) report.ReportService {
	if len(workDays) == 0 {
		workDays = DefaultWorkDays
	}
	days := make(map[time.Weekday]bool, len(workDays))
	for _, d := range workDays {
		days[d] = true
	}
	return &ReportServiceImpl{
		attendanceRepo: attendanceRepo,
		employeeRepo:   employeeRepo,
		clock:          clk,
		workDays:       days,
	}
}

// DailySummary implements report.ReportService.
func (s *ReportServiceImpl) DailySummary(ctx context.Context, date time.Time) (report.DailySummary, error) {
	day := clock.StartOfDay(date.In(s.clock.Location()))

	active, err := s.activeEmployees(ctx)
	if err != nil {
		return report.DailySummary{}, err
	}

	records, err := s.attendanceRepo.ListByRange(ctx, day, day)
	if err != nil {
		return report.DailySummary{}, fmt.Errorf("failed to list attendance: %w", err)
	}

	return summarize(day, len(active), active, records), nil
}

// Absentees implements report.ReportService.
func (s *ReportServiceImpl) Absentees(ctx context.Context, date time.Time, cutoff clock.TimeOfDay) (report.AbsenteeReport, error) {
	day := clock.StartOfDay(date.In(s.clock.Location()))
	result := report.AbsenteeReport{
		Date:      day,
		Cutoff:    cutoff.String(),
		Employees: []report.Absentee{},
	}

	if s.clock.Now().Before(cutoff.On(day)) {
		return result, nil
	}
	result.Evaluated = true

	employees, err := s.employeeRepo.List(ctx, employee.EmployeeFilter{ActiveOnly: true})
	if err != nil {
		return report.AbsenteeReport{}, fmt.Errorf("failed to list employees: %w", err)
	}

	records, err := s.attendanceRepo.ListByRange(ctx, day, day)
	if err != nil {
		return report.AbsenteeReport{}, fmt.Errorf("failed to list attendance: %w", err)
	}

	present := make(map[string]bool, len(records))
	for _, r := range records {
		if r.HasCheckedIn() {
			present[r.EmployeeID] = true
		}
	}

	for _, e := range employees {
		if present[e.ID] {
			continue
		}
		result.Employees = append(result.Employees, report.Absentee{
			EmployeeID: e.ID,
			ChatID:     e.ChatID,
			FullName:   e.FullName,
			Department: e.Department,
		})
	}

	return result, nil
}

// WeeklySummary implements report.ReportService.
func (s *ReportServiceImpl) WeeklySummary(ctx context.Context, day time.Time) (report.PeriodSummary, error) {
	start := clock.StartOfISOWeek(day.In(s.clock.Location()))
	return s.periodSummary(ctx, start, start.AddDate(0, 0, 6))
}

// MonthlySummary implements report.ReportService.
func (s *ReportServiceImpl) MonthlySummary(ctx context.Context, year int, month time.Month) (report.PeriodSummary, error) {
	if month < time.January || month > time.December {
		return report.PeriodSummary{}, report.ErrInvalidMonth
	}
	loc := s.clock.Location()
	return s.periodSummary(ctx, clock.StartOfMonth(year, month, loc), clock.EndOfMonth(year, month, loc))
}

// periodSummary aggregates every configured work day in [start, end] up to today.
func (s *ReportServiceImpl) periodSummary(ctx context.Context, start, end time.Time) (report.PeriodSummary, error) {
	active, err := s.activeEmployees(ctx)
	if err != nil {
		return report.PeriodSummary{}, err
	}

	records, err := s.attendanceRepo.ListByRange(ctx, start, end)
	if err != nil {
		return report.PeriodSummary{}, fmt.Errorf("failed to list attendance: %w", err)
	}

	byDay := make(map[string][]attendance.AttendanceDay)
	for _, r := range records {
		k := clock.DateKey(r.Date)
		byDay[k] = append(byDay[k], r)
	}

	summary := report.PeriodSummary{
		Start:            start,
		End:              end,
		TotalEmployees:   len(active),
		AverageDailyRate: decimal.Zero,
		Days:             []report.DailySummary{},
	}

	today := clock.StartOfDay(s.clock.Now())
	rateSum := decimal.Zero
	for d := start; !d.After(end) && !d.After(today); d = d.AddDate(0, 0, 1) {
		if !s.workDays[d.Weekday()] {
			continue
		}
		daily := summarize(d, len(active), active, byDay[clock.DateKey(d)])
		summary.Days = append(summary.Days, daily)
		summary.WorkingDays++
		summary.Attendances += daily.CheckedIn
		summary.LateCount += daily.LateCount
		summary.EarlyCount += daily.EarlyCount
		rateSum = rateSum.Add(daily.AttendanceRate)
	}

	if summary.WorkingDays > 0 {
		summary.AverageDailyRate = rateSum.Div(decimal.NewFromInt(int64(summary.WorkingDays))).Round(rateDecimals)
	}

	return summary, nil
}

func (s *ReportServiceImpl) activeEmployees(ctx context.Context) (map[string]bool, error) {
	employees, err := s.employeeRepo.List(ctx, employee.EmployeeFilter{ActiveOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	active := make(map[string]bool, len(employees))
	for _, e := range employees {
		active[e.ID] = true
	}
	return active, nil
}

// summarize counts only records of currently active employees so the rate stays within [0, 1].
func summarize(day time.Time, total int, active map[string]bool, records []attendance.AttendanceDay) report.DailySummary {
	summary := report.DailySummary{
		Date:           day,
		TotalEmployees: total,
		AttendanceRate: decimal.Zero,
	}

	for _, r := range records {
		if !active[r.EmployeeID] {
			continue
		}
		if r.HasCheckedIn() {
			summary.CheckedIn++
		}
		if r.HasCheckedOut() {
			summary.CheckedOut++
		}
		if r.IsLate {
			summary.LateCount++
		}
		if r.IsEarlyDeparture {
			summary.EarlyCount++
		}
	}

	if total > 0 {
		summary.AttendanceRate = decimal.NewFromInt(int64(summary.CheckedIn)).
			Div(decimal.NewFromInt(int64(total))).
			Round(rateDecimals)
	}

	return summary
}
