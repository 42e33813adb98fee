package conversation

import (
	"encoding/json"
	"fmt"
	"time"
)

// Type tags the payload variant of a conversation.
type Type string

const (
	TypeLateReason   Type = "late_reason"
	TypeEarlyReason  Type = "early_reason"
	TypeLeaveRequest Type = "leave_request"
)

// Payload is the closed set of dialogue variants. Each variant carries its
// own step data; handlers switch on the concrete type.
type Payload interface {
	Type() Type
	isPayload()
}

// LateReason collects the explanation for a late check-in on Date.
type LateReason struct {
	Date time.Time `json:"date"`
}

// EarlyReason collects the explanation for an early check-out on Date.
type EarlyReason struct {
	Date time.Time `json:"date"`
}

// LeaveRequest walks through start date, end date and reason.
type LeaveRequest struct {
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

func (LateReason) Type() Type   { return TypeLateReason }
func (EarlyReason) Type() Type  { return TypeEarlyReason }
func (LeaveRequest) Type() Type { return TypeLeaveRequest }

func (LateReason) isPayload()   {}
func (EarlyReason) isPayload()  {}
func (LeaveRequest) isPayload() {}

// State is the single active dialogue of one user.
type State struct {
	UserID    string
	Payload   Payload
	Step      int
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Expired reports whether the state is no longer trustworthy at now.
func (s State) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// EncodePayload serializes p for storage next to its type tag.
func EncodePayload(p Payload) (Type, []byte, error) {
	if p == nil {
		return "", nil, ErrUnknownPayload
	}
	data, err := json.Marshal(p)
	if err != nil {
		return "", nil, fmt.Errorf("failed to encode %s payload: %w", p.Type(), err)
	}
	return p.Type(), data, nil
}

// DecodePayload restores the variant named by t.
func DecodePayload(t Type, data []byte) (Payload, error) {
	switch t {
	case TypeLateReason:
		var p LateReason
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("failed to decode %s payload: %w", t, err)
		}
		return p, nil
	case TypeEarlyReason:
		var p EarlyReason
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("failed to decode %s payload: %w", t, err)
		}
		return p, nil
	case TypeLeaveRequest:
		var p LeaveRequest
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("failed to decode %s payload: %w", t, err)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPayload, t)
	}
}
