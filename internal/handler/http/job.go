package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/audit"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/handler/http/response"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/clock"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/cron"
	"github.com/go-chi/chi/v5"
)

// JobScheduler is the part of the scheduler the admin API drives.
type JobScheduler interface {
	Jobs() []cron.JobInfo
	Job(name string) (cron.JobInfo, error)
	TriggerManually(ctx context.Context, name string) (bool, error)
}

type JobHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Trigger(w http.ResponseWriter, r *http.Request)
}

type TriggerJobResponse struct {
	Name     string        `json:"name"`
	Success  bool          `json:"success"`
	Duration time.Duration `json:"duration"`
	Job      cron.JobInfo  `json:"job"`
}

type jobHandlerImpl struct {
	scheduler JobScheduler
	auditRepo audit.Repository
	clock     clock.Clock
}

func NewJobHandler(scheduler JobScheduler, auditRepo audit.Repository, clk clock.Clock) JobHandler {
	return &jobHandlerImpl{scheduler: scheduler, auditRepo: auditRepo, clock: clk}
}

// List handles GET /jobs
func (h *jobHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.scheduler.Jobs())
}

// Trigger handles POST /jobs/{name}/trigger. The job runs synchronously.
func (h *jobHandlerImpl) Trigger(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	ok, err := h.scheduler.TriggerManually(r.Context(), name)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	info, err := h.scheduler.Job(name)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	entry := audit.Entry{
		Actor:     getSubjectFromContext(r),
		Action:    audit.ActionJobTriggered,
		EntityID:  name,
		Details:   map[string]interface{}{"success": ok},
		CreatedAt: h.clock.Now(),
	}
	if err := h.auditRepo.Append(r.Context(), entry); err != nil {
		slog.Error("Failed to record job trigger", "job", name, "error", err)
	}

	message := "Job completed"
	if !ok {
		message = "Job failed"
	}
	response.SuccessWithMessage(w, message, TriggerJobResponse{
		Name:     name,
		Success:  ok,
		Duration: info.LastDuration,
		Job:      info,
	})
}
