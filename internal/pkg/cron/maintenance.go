package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/attendance"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/audit"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/conversation"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/notification"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/clock"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/sse"
)

// MaintenanceConfig holds retention windows and health thresholds.
type MaintenanceConfig struct {
	NotificationLogRetention time.Duration // default: 30 days
	AuditLogRetention        time.Duration // default: 90 days
	BatchSize                int           // default: 1000
	MaxHeapBytes             uint64        // default: 512 MiB
	StuckAfter               time.Duration // default: 14h
	MaxStuck                 int           // alert when more records are stuck
}

// HeapFunc reports the live heap in bytes.
type HeapFunc func() uint64

func runtimeHeap() uint64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.HeapAlloc
}

type MaintenanceJobs struct {
	conversationRepo conversation.Repository
	notificationRepo notification.Repository
	auditRepo        audit.Repository
	attendanceRepo   attendance.AttendanceRepository
	dispatcher       notification.Dispatcher
	hub              *sse.Hub
	clock            clock.Clock
	config           MaintenanceConfig
	heap             HeapFunc
}

func NewMaintenanceJobs(
	conversationRepo conversation.Repository,
	notificationRepo notification.Repository,
	auditRepo audit.Repository,
	attendanceRepo attendance.AttendanceRepository,
	dispatcher notification.Dispatcher,
	hub *sse.Hub,
	clk clock.Clock,
	cfg MaintenanceConfig,
) *MaintenanceJobs {
	if cfg.NotificationLogRetention <= 0 {
		cfg.NotificationLogRetention = 30 * 24 * time.Hour
	}
	if cfg.AuditLogRetention <= 0 {
		cfg.AuditLogRetention = 90 * 24 * time.Hour
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 1000
	}
	if cfg.MaxHeapBytes == 0 {
		cfg.MaxHeapBytes = 512 << 20
	}
	if cfg.StuckAfter <= 0 {
		cfg.StuckAfter = 14 * time.Hour
	}

	return &MaintenanceJobs{
		conversationRepo: conversationRepo,
		notificationRepo: notificationRepo,
		auditRepo:        auditRepo,
		attendanceRepo:   attendanceRepo,
		dispatcher:       dispatcher,
		hub:              hub,
		clock:            clk,
		config:           cfg,
		heap:             runtimeHeap,
	}
}

// WithHeapFunc replaces the heap probe used by HealthCheck.
func (j *MaintenanceJobs) WithHeapFunc(fn HeapFunc) *MaintenanceJobs {
	j.heap = fn
	return j
}

func (j *MaintenanceJobs) RegisterJobs(scheduler *Scheduler, specs map[string]string) error {
	if err := scheduler.Register(JobCleanup, specFor(specs, JobCleanup), j.Cleanup); err != nil {
		return err
	}
	return scheduler.Register(JobHealthCheck, specFor(specs, JobHealthCheck), j.HealthCheck)
}

// Cleanup deletes expired conversation states and aged notification and
// audit logs. Each kind is drained in bounded batches; one kind failing
// does not stop the others.
func (j *MaintenanceJobs) Cleanup(ctx context.Context) error {
	now := j.clock.Now()
	var errs []error

	conversations, err := j.drain(ctx, func(ctx context.Context, limit int) (int, error) {
		return j.conversationRepo.DeleteExpired(ctx, now, limit)
	})
	if err != nil {
		errs = append(errs, fmt.Errorf("conversation states: %w", err))
	}

	notifCutoff := now.Add(-j.config.NotificationLogRetention)
	notifLogs, err := j.drain(ctx, func(ctx context.Context, limit int) (int, error) {
		return j.notificationRepo.DeleteLogsOlderThan(ctx, notifCutoff, limit)
	})
	if err != nil {
		errs = append(errs, fmt.Errorf("notification logs: %w", err))
	}

	auditCutoff := now.Add(-j.config.AuditLogRetention)
	auditLogs, err := j.drain(ctx, func(ctx context.Context, limit int) (int, error) {
		return j.auditRepo.DeleteOlderThan(ctx, auditCutoff, limit)
	})
	if err != nil {
		errs = append(errs, fmt.Errorf("audit logs: %w", err))
	}

	slog.Info("Cron: Cleanup finished",
		"conversation_states", conversations,
		"notification_logs", notifLogs,
		"audit_logs", auditLogs,
	)

	return errors.Join(errs...)
}

// drain calls del with the batch size until a short batch signals the end.
func (j *MaintenanceJobs) drain(ctx context.Context, del func(ctx context.Context, limit int) (int, error)) (int, error) {
	total := 0
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		n, err := del(ctx, j.config.BatchSize)
		total += n
		if err != nil {
			return total, err
		}
		if n < j.config.BatchSize {
			return total, nil
		}
	}
}

// HealthCheck reports on memory and stale CHECKED_IN records. It only reads
// attendance data.
func (j *MaintenanceJobs) HealthCheck(ctx context.Context) error {
	now := j.clock.Now()
	heap := j.heap()

	stuck, err := j.attendanceRepo.CountOpenSince(ctx, now.Add(-j.config.StuckAfter))
	if err != nil {
		return fmt.Errorf("failed to count open attendance: %w", err)
	}

	subscribers := 0
	if j.hub != nil {
		subscribers = j.hub.TotalSubscribers()
	}

	slog.Info("Cron: Health check",
		"heap_mb", heap>>20,
		"stuck_checked_in", stuck,
		"feed_subscribers", subscribers,
	)

	var problems []string
	if heap > j.config.MaxHeapBytes {
		problems = append(problems, fmt.Sprintf("• Memory: heap is %d MB (limit %d MB)", heap>>20, j.config.MaxHeapBytes>>20))
	}
	if stuck > j.config.MaxStuck {
		problems = append(problems, fmt.Sprintf("• Attendance: %d records still checked in after %s", stuck, j.config.StuckAfter))
	}
	if len(problems) == 0 {
		return nil
	}

	message := "🩺 *Health alert*\n\n" + strings.Join(problems, "\n")
	j.dispatcher.NotifyAdmins(ctx, message, notification.SendOptions{
		Type:      notification.TypeHealthAlert,
		ParseMode: notification.ParseMarkdown,
	})
	return nil
}
