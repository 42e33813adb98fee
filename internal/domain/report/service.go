package report

import (
	"context"
	"time"

	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/clock"
)

// ReportService aggregates attendance records into summaries.
type ReportService interface {
	DailySummary(ctx context.Context, date time.Time) (DailySummary, error)

	// Absentees is empty and unevaluated while now is before the cutoff on date.
	Absentees(ctx context.Context, date time.Time, cutoff clock.TimeOfDay) (AbsenteeReport, error)

	// WeeklySummary covers the ISO week (Monday start) containing day.
	WeeklySummary(ctx context.Context, day time.Time) (PeriodSummary, error)

	MonthlySummary(ctx context.Context, year int, month time.Month) (PeriodSummary, error)
}
