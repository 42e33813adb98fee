package report

import (
	"fmt"
	"strings"

	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/report"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Percent renders a 0..1 rate as e.g. "70.0%".
func Percent(rate decimal.Decimal) string {
	return rate.Mul(hundred).StringFixed(1) + "%"
}

func FormatDaily(s report.DailySummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 *Daily summary* %s\n\n", s.Date.Format("Mon 02 Jan 2006"))
	fmt.Fprintf(&b, "👥 Employees: %d\n", s.TotalEmployees)
	fmt.Fprintf(&b, "✅ Checked in: %d\n", s.CheckedIn)
	fmt.Fprintf(&b, "🏁 Checked out: %d\n", s.CheckedOut)
	fmt.Fprintf(&b, "⏰ Late: %d\n", s.LateCount)
	fmt.Fprintf(&b, "🚪 Early departures: %d\n", s.EarlyCount)
	fmt.Fprintf(&b, "📈 Attendance rate: %s", Percent(s.AttendanceRate))
	return b.String()
}

func FormatPeriod(title string, s report.PeriodSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 *%s* %s to %s\n\n", title, s.Start.Format("02 Jan"), s.End.Format("02 Jan 2006"))
	fmt.Fprintf(&b, "📅 Working days: %d\n", s.WorkingDays)
	fmt.Fprintf(&b, "👥 Employees: %d\n", s.TotalEmployees)
	fmt.Fprintf(&b, "✅ Attendances: %d\n", s.Attendances)
	fmt.Fprintf(&b, "⏰ Late arrivals: %d\n", s.LateCount)
	fmt.Fprintf(&b, "🚪 Early departures: %d\n", s.EarlyCount)
	fmt.Fprintf(&b, "📈 Average daily rate: %s", Percent(s.AverageDailyRate))
	return b.String()
}

func FormatAbsentees(r report.AbsenteeReport) string {
	if !r.Evaluated {
		return fmt.Sprintf("Absences are evaluated after %s.", r.Cutoff)
	}
	if len(r.Employees) == 0 {
		return fmt.Sprintf("🎉 Everyone has checked in today (%s).", r.Date.Format("02 Jan 2006"))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🚫 *Absent after %s* on %s (%d)\n", r.Cutoff, r.Date.Format("02 Jan 2006"), len(r.Employees))
	for _, e := range r.Employees {
		if e.Department != nil && *e.Department != "" {
			fmt.Fprintf(&b, "\n• %s (%s)", e.FullName, *e.Department)
		} else {
			fmt.Fprintf(&b, "\n• %s", e.FullName)
		}
	}
	return b.String()
}
