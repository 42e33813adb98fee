package audit

import "time"

// Action tags an audit entry.
type Action string

const (
	ActionCheckIn        Action = "attendance.check_in"
	ActionCheckOut       Action = "attendance.check_out"
	ActionReasonAttached Action = "attendance.reason_attached"
	ActionRegistered     Action = "employee.registered"
	ActionDeactivated    Action = "employee.deactivated"
	ActionLeaveRequested Action = "leave.requested"
	ActionJobTriggered   Action = "job.triggered"
)

// Entry is an append-only record of a mutation.
type Entry struct {
	ID        string
	Actor     string
	Action    Action
	EntityID  string
	Details   map[string]interface{}
	CreatedAt time.Time
}
