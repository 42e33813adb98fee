package leave

import (
	"context"
)

// LeaveRequestRepository - interface for leave_requests table
type LeaveRequestRepository interface {
	Create(ctx context.Context, request LeaveRequest) (LeaveRequest, error)
	// ListByStatus returns requests newest first; an empty status matches all.
	ListByStatus(ctx context.Context, status LeaveRequestStatus, limit int) ([]LeaveRequest, error)
}
