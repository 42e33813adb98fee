package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/leave"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/clock"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/database"
	"github.com/google/uuid"
)

type leaveRequestRepository struct {
	db  *database.DB
	loc *time.Location
}

func NewLeaveRequestRepository(db *database.DB, loc *time.Location) leave.LeaveRequestRepository {
	if loc == nil {
		loc = time.UTC
	}
	return &leaveRequestRepository{db: db, loc: loc}
}

func (r *leaveRequestRepository) localDate(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, r.loc)
}

// Create implements leave.LeaveRequestRepository.
func (r *leaveRequestRepository) Create(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	request.ID = uuid.New().String()
	err := q.QueryRow(ctx, `
		INSERT INTO leave_requests (id, employee_id, start_date, end_date, total_days, reason, status, submitted_at)
		VALUES ($1, $2, $3::date, $4::date, $5, $6, $7, $8)
		RETURNING created_at, updated_at`,
		request.ID, request.EmployeeID, clock.DateKey(request.StartDate), clock.DateKey(request.EndDate),
		request.TotalDays, request.Reason, string(request.Status), request.SubmittedAt,
	).Scan(&request.CreatedAt, &request.UpdatedAt)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to create leave request: %w", err)
	}
	return request, nil
}

// ListByStatus implements leave.LeaveRequestRepository.
func (r *leaveRequestRepository) ListByStatus(ctx context.Context, status leave.LeaveRequestStatus, limit int) ([]leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT lr.id, lr.employee_id, lr.start_date, lr.end_date, lr.total_days, lr.reason, lr.status,
			lr.submitted_at, lr.created_at, lr.updated_at, e.full_name
		FROM leave_requests lr
		JOIN employees e ON e.id = lr.employee_id
		WHERE ($1 = '' OR lr.status = $1)
		ORDER BY lr.submitted_at DESC`
	args := []interface{}{string(status)}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave requests: %w", err)
	}
	defer rows.Close()

	var requests []leave.LeaveRequest
	for rows.Next() {
		var (
			req        leave.LeaveRequest
			st         string
			name       string
			start, end time.Time
		)
		if err := rows.Scan(
			&req.ID, &req.EmployeeID, &start, &end, &req.TotalDays, &req.Reason, &st,
			&req.SubmittedAt, &req.CreatedAt, &req.UpdatedAt, &name,
		); err != nil {
			return nil, fmt.Errorf("failed to scan leave request: %w", err)
		}
		req.StartDate = r.localDate(start)
		req.EndDate = r.localDate(end)
		req.Status = leave.LeaveRequestStatus(st)
		req.EmployeeName = &name
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating leave requests: %w", err)
	}
	return requests, nil
}
