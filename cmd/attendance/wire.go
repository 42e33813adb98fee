package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/config"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/attendance"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/audit"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/conversation"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/employee"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/leave"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/notification"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/report"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/handler/bot"
	appHTTP "github.com/Mgabr90/mansoura-attendance-system-sub000/internal/handler/http"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/clock"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/cron"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/database"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/jwt"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/sse"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/telegram"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/repository/memory"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/repository/postgresql"
	attendanceService "github.com/Mgabr90/mansoura-attendance-system-sub000/internal/service/attendance"
	authService "github.com/Mgabr90/mansoura-attendance-system-sub000/internal/service/auth"
	conversationService "github.com/Mgabr90/mansoura-attendance-system-sub000/internal/service/conversation"
	employeeService "github.com/Mgabr90/mansoura-attendance-system-sub000/internal/service/employee"
	leaveService "github.com/Mgabr90/mansoura-attendance-system-sub000/internal/service/leave"
	notificationService "github.com/Mgabr90/mansoura-attendance-system-sub000/internal/service/notification"
	reportService "github.com/Mgabr90/mansoura-attendance-system-sub000/internal/service/report"
	"github.com/go-chi/chi/v5"
)

type stores struct {
	employees     employee.EmployeeRepository
	attendance    attendance.AttendanceRepository
	conversations conversation.Repository
	notifications notification.Repository
	audit         audit.Repository
	leaves        leave.LeaveRequestRepository
}

// app holds every wired component. Nothing is started by newApp.
type app struct {
	db        *database.DB
	clock     clock.Clock
	hub       *sse.Hub
	bot       *telegram.Bot
	jwt       *jwt.JWTService
	scheduler *cron.Scheduler

	attendance attendance.AttendanceService
	reports    report.ReportService
	dispatcher notification.Dispatcher
	botHandler *bot.Handler
	router     *chi.Mux
}

func newStores(ctx context.Context, cfg *config.Config) (stores, *database.DB, error) {
	switch cfg.Database.Driver {
	case config.StoreDriverMemory:
		slog.Warn("Using in-memory store; data is lost on restart")
		return stores{
			employees:     memory.NewEmployeeRepository(),
			attendance:    memory.NewAttendanceRepository(),
			conversations: memory.NewConversationRepository(),
			notifications: memory.NewNotificationRepository(),
			audit:         memory.NewAuditRepository(),
			leaves:        memory.NewLeaveRequestRepository(),
		}, nil, nil
	default:
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{MaxConns: cfg.Database.MaxConns})
		if err != nil {
			return stores{}, nil, fmt.Errorf("connect database: %w", err)
		}
		loc := cfg.Work.Location
		return stores{
			employees:     postgresql.NewEmployeeRepository(db),
			attendance:    postgresql.NewAttendanceRepository(db, loc),
			conversations: postgresql.NewConversationRepository(db),
			notifications: postgresql.NewNotificationRepository(db),
			audit:         postgresql.NewAuditRepository(db),
			leaves:        postgresql.NewLeaveRequestRepository(db, loc),
		}, db, nil
	}
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	s, db, err := newStores(ctx, cfg)
	if err != nil {
		return nil, err
	}

	a := &app{
		db:    db,
		clock: clock.New(cfg.Work.Location),
		hub:   sse.NewHub(),
		jwt:   jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration),
	}

	var transport notification.Transport
	switch cfg.Telegram.Transport {
	case config.TransportConsole:
		transport = notificationService.NewConsoleTransport(a.hub)
	default:
		a.bot, err = telegram.NewBot(cfg.Telegram.BotToken, cfg.Telegram.Debug)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("connect telegram: %w", err)
		}
		transport = a.bot
	}

	a.dispatcher = notificationService.NewDispatcher(s.notifications, transport, a.hub, a.clock, notificationService.Config{
		AdminChatIDs: cfg.Notification.AdminChatIDs,
		Concurrency:  cfg.Notification.Concurrency,
	})

	a.attendance = attendanceService.NewAttendanceService(s.attendance, s.employees, s.audit, a.dispatcher, a.clock, attendanceService.Policy{
		Fence:     cfg.Fence(),
		WorkStart: cfg.Work.Start,
		WorkEnd:   cfg.Work.End,
	})
	employees := employeeService.NewEmployeeService(s.employees, s.audit, a.clock, cfg.Notification.AdminChatIDs)
	leaves := leaveService.NewLeaveService(s.leaves, s.employees, s.audit, a.dispatcher, a.clock)
	conversations := conversationService.NewService(s.conversations, a.attendance, leaves, a.clock, cfg.Work.ConversationTTL)
	a.reports = reportService.NewReportService(s.attendance, s.employees, a.clock, cfg.Work.Days)

	a.botHandler = bot.NewHandler(employees, a.attendance, conversations, a.dispatcher, a.clock, cfg.Telegram.BotWorkers)

	a.scheduler = cron.NewScheduler(cfg.Work.Location, cron.Options{Timeout: cfg.Jobs.Timeout})
	attendanceJobs := cron.NewAttendanceJobs(a.reports, s.attendance, s.employees, a.dispatcher, a.clock, cfg.Work.AbsenceCutoff, cfg.Work.Days)
	maintenanceJobs := cron.NewMaintenanceJobs(s.conversations, s.notifications, s.audit, s.attendance, a.dispatcher, a.hub, a.clock, cron.MaintenanceConfig{
		NotificationLogRetention: cfg.Maintenance.NotificationLogRetention,
		AuditLogRetention:        cfg.Maintenance.AuditLogRetention,
		BatchSize:                cfg.Maintenance.BatchSize,
		MaxHeapBytes:             uint64(cfg.Maintenance.MaxHeapMB) << 20,
		StuckAfter:               cfg.Maintenance.StuckAfter,
		MaxStuck:                 cfg.Maintenance.MaxStuck,
	})
	if err := attendanceJobs.RegisterJobs(a.scheduler, cfg.Jobs.Specs); err != nil {
		a.close()
		return nil, err
	}
	if err := maintenanceJobs.RegisterJobs(a.scheduler, cfg.Jobs.Specs); err != nil {
		a.close()
		return nil, err
	}
	for _, name := range cfg.Jobs.Disabled {
		if err := a.scheduler.Disable(name); err != nil {
			a.close()
			return nil, err
		}
	}

	a.router = appHTTP.NewRouter(a.jwt, appHTTP.Handlers{
		Report:       appHTTP.NewReportHandler(a.reports, a.clock, cfg.Work.AbsenceCutoff),
		Job:          appHTTP.NewJobHandler(a.scheduler, s.audit, a.clock),
		Notification: appHTTP.NewNotificationHandler(a.dispatcher, a.jwt),
		Employee:     appHTTP.NewEmployeeHandler(employees),
		Leave:        appHTTP.NewLeaveHandler(leaves),
		Auth: appHTTP.NewAuthHandler(authService.NewAuthService(a.jwt, authService.Credentials{
			Username:     cfg.Admin.Username,
			PasswordHash: cfg.Admin.PasswordHash,
		})),
		Attendance: appHTTP.NewAttendanceHandler(a.attendance, a.clock),
	}, appHTTP.RouterOptions{
		AllowedOrigins: cfg.App.AllowedOrigins,
		Logger:         slog.Default(),
	})

	return a, nil
}

// shutdown stops the scheduler, waits for pending admin alerts and closes the pool.
func (a *app) shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := a.scheduler.Stop(ctx); err != nil {
		slog.Error("Scheduler did not stop cleanly", "error", err)
	}
	a.attendance.Wait()
	a.close()
}

func (a *app) close() {
	if a.db != nil {
		a.db.Close()
	}
}
