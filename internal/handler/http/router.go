package http

import (
	"log/slog"
	"os"

	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/handler/http/middleware"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Report       ReportHandler
	Job          JobHandler
	Notification NotificationHandler
	Employee     EmployeeHandler
	Leave        LeaveHandler
	Auth         AuthHandler
	Attendance   AttendanceHandler
}

type RouterOptions struct {
	AllowedOrigins []string
	Logger         *slog.Logger
}

func NewRouter(JWTService jwt.Service, h Handlers, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"http://localhost:3000"}
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		// Authenticated by a short-lived token in the query string
		r.Get("/notifications/stream", h.Notification.Stream)
		r.Post("/auth/login", h.Auth.Login)

		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))
			r.Use(middleware.AdminOnly)

			r.Route("/reports", func(r chi.Router) {
				r.Get("/daily", h.Report.GetDailySummary)
				r.Get("/weekly", h.Report.GetWeeklySummary)
				r.Get("/monthly", h.Report.GetMonthlySummary)
				r.Get("/absentees", h.Report.GetAbsentees)
			})

			r.Route("/jobs", func(r chi.Router) {
				r.Get("/", h.Job.List)
				r.Post("/{name}/trigger", h.Job.Trigger)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/logs", h.Notification.RecentLogs)
				r.Post("/sse-token", h.Notification.GetSSEToken)
			})

			r.Route("/employees", func(r chi.Router) {
				r.Get("/", h.Employee.List)
				r.Post("/{id}/deactivate", h.Employee.Deactivate)
				r.Get("/{id}/attendance", h.Attendance.GetEmployeeHistory)
			})

			r.Get("/attendance", h.Attendance.List)

			r.Get("/leave-requests/pending", h.Leave.ListPending)
		})
	})
	return r
}

// NewLogger builds the JSON logger in the ECS shape httplog expects.
func NewLogger(level slog.Level, attrs ...slog.Attr) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(false)
	args := make([]any, 0, len(attrs))
	for _, a := range attrs {
		args = append(args, a)
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(args...)
}
