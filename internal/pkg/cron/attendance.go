package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/attendance"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/employee"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/notification"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/report"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/clock"
	reportservice "github.com/Mgabr90/mansoura-attendance-system-sub000/internal/service/report"
)

// Job names
const (
	JobDailySummary     = "daily_summary"
	JobWeeklySummary    = "weekly_summary"
	JobMonthlySummary   = "monthly_summary"
	JobAbsenceReport    = "absence_report"
	JobCheckInReminder  = "checkin_reminder"
	JobCheckOutReminder = "checkout_reminder"
	JobCleanup          = "cleanup"
	JobHealthCheck      = "health_check"
)

// DefaultSpecs are the standard five-field expressions for every job.
var DefaultSpecs = map[string]string{
	JobDailySummary:     "0 18 * * 1-5",
	JobWeeklySummary:    "0 18 * * 5",
	JobMonthlySummary:   "0 18 28-31 * *",
	JobAbsenceReport:    "30 10 * * 1-5",
	JobCheckInReminder:  "45 8 * * 1-5",
	JobCheckOutReminder: "0 17 * * 1-5",
	JobCleanup:          "0 2 * * *",
	JobHealthCheck:      "*/15 * * * *",
}

// ErrDeliveryFailed marks a run in which no recipient could be reached.
var ErrDeliveryFailed = errors.New("notification delivery failed for every recipient")

const (
	checkInReminderText  = "⏰ Good morning! Don't forget to check in. Tap the button below to share your location."
	checkOutReminderText = "🏁 The work day is over. Don't forget to check out by sharing your location."
)

type AttendanceJobs struct {
	reports        report.ReportService
	attendanceRepo attendance.AttendanceRepository
	employeeRepo   employee.EmployeeRepository
	dispatcher     notification.Dispatcher
	clock          clock.Clock
	absenceCutoff  clock.TimeOfDay
	workDays       map[time.Weekday]bool
}

func NewAttendanceJobs(
	reports report.ReportService,
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	dispatcher notification.Dispatcher,
	clk clock.Clock,
	absenceCutoff clock.TimeOfDay,
	workDays []time.Weekday,
) *AttendanceJobs {
	if len(workDays) == 0 {
		workDays = reportservice.DefaultWorkDays
	}
	days := make(map[time.Weekday]bool, len(workDays))
	for _, d := range workDays {
		days[d] = true
	}
	return &AttendanceJobs{
		reports:        reports,
		attendanceRepo: attendanceRepo,
		employeeRepo:   employeeRepo,
		dispatcher:     dispatcher,
		clock:          clk,
		absenceCutoff:  absenceCutoff,
		workDays:       days,
	}
}

// RegisterJobs registers the report and reminder jobs. specs overrides DefaultSpecs per name.
func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler, specs map[string]string) error {
	jobs := []struct {
		name string
		fn   TaskFunc
	}{
		{JobDailySummary, j.DailySummary},
		{JobWeeklySummary, j.WeeklySummary},
		{JobMonthlySummary, j.MonthlySummary},
		{JobAbsenceReport, j.AbsenceReport},
		{JobCheckInReminder, j.CheckInReminder},
		{JobCheckOutReminder, j.CheckOutReminder},
	}
	for _, job := range jobs {
		if err := scheduler.Register(job.name, specFor(specs, job.name), job.fn); err != nil {
			return err
		}
	}
	return nil
}

func specFor(specs map[string]string, name string) string {
	if spec, ok := specs[name]; ok && spec != "" {
		return spec
	}
	return DefaultSpecs[name]
}

func (j *AttendanceJobs) isWorkDay(t time.Time) bool {
	return j.workDays[t.Weekday()]
}

func (j *AttendanceJobs) DailySummary(ctx context.Context) error {
	now := j.clock.Now()
	if !j.isWorkDay(now) {
		slog.Info("Cron: Daily summary skipped, not a work day", "date", clock.DateKey(now))
		return nil
	}

	summary, err := j.reports.DailySummary(ctx, now)
	if err != nil {
		return fmt.Errorf("daily summary: %w", err)
	}
	return j.notifyAdmins(ctx, notification.TypeDailySummary, reportservice.FormatDaily(summary))
}

func (j *AttendanceJobs) WeeklySummary(ctx context.Context) error {
	summary, err := j.reports.WeeklySummary(ctx, j.clock.Now())
	if err != nil {
		return fmt.Errorf("weekly summary: %w", err)
	}
	return j.notifyAdmins(ctx, notification.TypeWeeklySummary, reportservice.FormatPeriod("Weekly summary", summary))
}

// MonthlySummary fires on days 28-31 and only does work on the actual last
// day of the month, December included.
func (j *AttendanceJobs) MonthlySummary(ctx context.Context) error {
	now := j.clock.Now()
	if !clock.IsLastDayOfMonth(now) {
		slog.Info("Cron: Monthly summary skipped, not the last day of the month", "date", clock.DateKey(now))
		return nil
	}

	summary, err := j.reports.MonthlySummary(ctx, now.Year(), now.Month())
	if err != nil {
		return fmt.Errorf("monthly summary: %w", err)
	}
	title := "Monthly summary " + now.Format("January 2006")
	return j.notifyAdmins(ctx, notification.TypeMonthlySummary, reportservice.FormatPeriod(title, summary))
}

func (j *AttendanceJobs) AbsenceReport(ctx context.Context) error {
	now := j.clock.Now()
	if !j.isWorkDay(now) {
		slog.Info("Cron: Absence report skipped, not a work day", "date", clock.DateKey(now))
		return nil
	}

	absentees, err := j.reports.Absentees(ctx, now, j.absenceCutoff)
	if err != nil {
		return fmt.Errorf("absence report: %w", err)
	}
	if !absentees.Evaluated {
		slog.Info("Cron: Absence report skipped, before cutoff", "cutoff", absentees.Cutoff)
		return nil
	}

	slog.Info("Cron: Absentees found", "count", len(absentees.Employees))
	if len(absentees.Employees) == 0 {
		return nil
	}
	return j.notifyAdmins(ctx, notification.TypeAbsenceReport, reportservice.FormatAbsentees(absentees))
}

// CheckInReminder nudges active employees who have no check-in today.
func (j *AttendanceJobs) CheckInReminder(ctx context.Context) error {
	now := j.clock.Now()
	if !j.isWorkDay(now) {
		return nil
	}
	today := clock.StartOfDay(now)

	employees, err := j.employeeRepo.List(ctx, employee.EmployeeFilter{ActiveOnly: true})
	if err != nil {
		return fmt.Errorf("failed to list employees: %w", err)
	}
	records, err := j.attendanceRepo.ListByRange(ctx, today, today)
	if err != nil {
		return fmt.Errorf("failed to list attendance: %w", err)
	}

	checkedIn := make(map[string]bool, len(records))
	for _, r := range records {
		if r.HasCheckedIn() {
			checkedIn[r.EmployeeID] = true
		}
	}

	var recipients []string
	for _, e := range employees {
		if !checkedIn[e.ID] {
			recipients = append(recipients, e.ChatID)
		}
	}

	return j.remind(ctx, notification.TypeCheckInReminder, recipients, checkInReminderText)
}

// CheckOutReminder nudges employees still checked in at the end of the day.
func (j *AttendanceJobs) CheckOutReminder(ctx context.Context) error {
	now := j.clock.Now()
	if !j.isWorkDay(now) {
		return nil
	}
	today := clock.StartOfDay(now)

	records, err := j.attendanceRepo.ListByRange(ctx, today, today)
	if err != nil {
		return fmt.Errorf("failed to list attendance: %w", err)
	}

	var recipients []string
	for _, r := range records {
		if r.Status != attendance.StatusCheckedIn {
			continue
		}
		emp, err := j.employeeRepo.GetByID(ctx, r.EmployeeID)
		if err != nil {
			slog.Error("Cron: Failed to get employee", "employee_id", r.EmployeeID, "error", err)
			continue
		}
		if emp.IsActive {
			recipients = append(recipients, emp.ChatID)
		}
	}

	return j.remind(ctx, notification.TypeCheckOutReminder, recipients, checkOutReminderText)
}

func (j *AttendanceJobs) remind(ctx context.Context, typ notification.NotificationType, recipients []string, text string) error {
	if len(recipients) == 0 {
		slog.Info("Cron: No reminders to send", "type", typ)
		return nil
	}
	res := j.dispatcher.Broadcast(ctx, recipients, text, notification.SendOptions{
		Type:     typ,
		Keyboard: notification.KeyboardLocation,
	})
	slog.Info("Cron: Reminders sent", "type", typ, "successful", res.Successful, "total", res.Total)
	if res.Successful == 0 {
		return ErrDeliveryFailed
	}
	return nil
}

func (j *AttendanceJobs) notifyAdmins(ctx context.Context, typ notification.NotificationType, text string) error {
	res := j.dispatcher.NotifyAdmins(ctx, text, notification.SendOptions{
		Type:      typ,
		ParseMode: notification.ParseMarkdown,
	})
	if res.Total > 0 && res.Successful == 0 {
		return ErrDeliveryFailed
	}
	return nil
}
