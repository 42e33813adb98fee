package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/attendance"
)

const (
	msgAskContact  = "👋 Welcome! To register, please share your contact using the button below."
	msgWelcome     = "✅ You're registered, %s. Send your location when you arrive and when you leave."
	msgWelcomeBack = "👋 Welcome back, %s. Send your location to check in or out."
	msgInactive    = "🚫 Your account has been deactivated. Please contact your administrator."
	msgAskLocation = "📍 Please share your current location using the button below."
	msgLiveOnly    = "📍 Forwarded or saved places can't be used. Please share your current location using the button below."
	msgUnknown     = "🤔 I didn't understand that. Send /help to see what I can do."
	msgUnknownCmd  = "Unknown command. Send /help to see the available commands."
	msgTryAgain    = "😔 Something went wrong on our side. Please try again in a few minutes."
	msgNoRecord    = "📭 No attendance recorded today."
	msgNoHistory   = "📭 No attendance records in the last %d days."
	msgLateReason  = "⏰ You are %d minutes late. Please reply with the reason."
	msgEarlyReason = "🚪 You are leaving %d minutes early. Please reply with the reason."
	msgCheckedIn   = "✅ Checked in at %s (%.0f m from the office)."
	msgCheckedOut  = "🏁 Checked out at %s. You worked %s today."
	msgHelp        = `*Attendance bot*

/checkin - check in (share your location)
/checkout - check out (share your location)
/status - today's attendance
/history [days] - recent attendance
/leave - request leave
/cancel - cancel the current dialogue
/help - this message

You can also just share your location: the first time each day checks you in, the second checks you out.`
)

func formatClock(t *time.Time) string {
	if t == nil {
		return "--:--"
	}
	return t.Format("15:04")
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Minute)
	return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
}

func formatStatus(day *attendance.AttendanceDay) string {
	if day == nil || day.Status == attendance.StatusNotStarted {
		return msgNoRecord
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📋 *Today* (%s)\n\n", day.Date.Format("Mon 02 Jan"))
	fmt.Fprintf(&b, "Check-in: %s", formatClock(day.CheckInTime))
	if day.IsLate {
		fmt.Fprintf(&b, " (late %d min)", day.LateMinutes)
	}
	fmt.Fprintf(&b, "\nCheck-out: %s", formatClock(day.CheckOutTime))
	if day.IsEarlyDeparture {
		fmt.Fprintf(&b, " (early %d min)", day.EarlyMinutes)
	}
	if worked, ok := day.WorkingDuration(); ok {
		fmt.Fprintf(&b, "\nWorked: %s", formatDuration(worked))
	}
	return b.String()
}

func formatHistory(days []attendance.AttendanceDay, window int) string {
	if len(days) == 0 {
		return fmt.Sprintf(msgNoHistory, window)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🗓 *Last %d days*\n", window)
	for _, d := range days {
		fmt.Fprintf(&b, "\n%s  %s - %s", d.Date.Format("Mon 02 Jan"), formatClock(d.CheckInTime), formatClock(d.CheckOutTime))
		if d.IsLate {
			b.WriteString(" ⏰")
		}
		if d.IsEarlyDeparture {
			b.WriteString(" 🚪")
		}
	}
	return b.String()
}
