package report

import (
	"fmt"
	"time"

	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========================================
// DAILY SUMMARY
// ========================================

type DailySummary struct {
	Date           time.Time       `json:"date"`
	TotalEmployees int             `json:"total_employees"`
	CheckedIn      int             `json:"checked_in"`
	CheckedOut     int             `json:"checked_out"`
	LateCount      int             `json:"late_count"`
	EarlyCount     int             `json:"early_count"`
	AttendanceRate decimal.Decimal `json:"attendance_rate"`
}

// ========================================
// WEEKLY / MONTHLY SUMMARY
// ========================================

type PeriodSummary struct {
	Start            time.Time       `json:"start"`
	End              time.Time       `json:"end"`
	WorkingDays      int             `json:"working_days"`
	TotalEmployees   int             `json:"total_employees"`
	Attendances      int             `json:"attendances"`
	LateCount        int             `json:"late_count"`
	EarlyCount       int             `json:"early_count"`
	AverageDailyRate decimal.Decimal `json:"average_daily_rate"`
	Days             []DailySummary  `json:"days"`
}

type MonthlyReportRequest struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

func (r *MonthlyReportRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Month < 1 || r.Month > 12 {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month must be between 1 and 12",
		})
	}

	currentYear := time.Now().Year()
	if r.Year < 2020 || r.Year > currentYear+1 {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: fmt.Sprintf("year must be between 2020 and %d", currentYear+1),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========================================
// ABSENTEES
// ========================================

type Absentee struct {
	EmployeeID string  `json:"employee_id"`
	ChatID     string  `json:"-"`
	FullName   string  `json:"full_name"`
	Department *string `json:"department,omitempty"`
}

type AbsenteeReport struct {
	Date time.Time `json:"date"`
	// Evaluated is false when the report was requested before the cutoff.
	Evaluated bool       `json:"evaluated"`
	Cutoff    string     `json:"cutoff"`
	Employees []Absentee `json:"employees"`
}
