package leave

import (
	"context"
)

type LeaveService interface {
	// Submit records a request in waiting_approval and alerts the admins.
	Submit(ctx context.Context, req SubmitLeaveRequest) (LeaveRequest, error)
	ListPending(ctx context.Context, limit int) ([]LeaveRequest, error)
}
