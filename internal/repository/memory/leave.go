package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/leave"
	"github.com/google/uuid"
)

type leaveRequestRepository struct {
	mu       sync.Mutex
	requests []leave.LeaveRequest
}

func NewLeaveRequestRepository() leave.LeaveRequestRepository {
	return &leaveRequestRepository{}
}

// Create implements leave.LeaveRequestRepository.
func (r *leaveRequestRepository) Create(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	request.ID = uuid.New().String()
	request.CreatedAt = now
	request.UpdatedAt = now
	r.requests = append(r.requests, request)
	return request, nil
}

// ListByStatus implements leave.LeaveRequestRepository.
func (r *leaveRequestRepository) ListByStatus(ctx context.Context, status leave.LeaveRequestStatus, limit int) ([]leave.LeaveRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []leave.LeaveRequest
	for _, req := range r.requests {
		if status == "" || req.Status == status {
			out = append(out, req)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
