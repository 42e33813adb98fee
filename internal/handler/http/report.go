package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/report"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/handler/http/response"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/clock"
)

type ReportHandler interface {
	GetDailySummary(w http.ResponseWriter, r *http.Request)
	GetWeeklySummary(w http.ResponseWriter, r *http.Request)
	GetMonthlySummary(w http.ResponseWriter, r *http.Request)
	GetAbsentees(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
	clock         clock.Clock
	absenceCutoff clock.TimeOfDay
}

func NewReportHandler(reportService report.ReportService, clk clock.Clock, absenceCutoff clock.TimeOfDay) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
		clock:         clk,
		absenceCutoff: absenceCutoff,
	}
}

// GetDailySummary handles GET /reports/daily
func (h *reportHandlerImpl) GetDailySummary(w http.ResponseWriter, r *http.Request) {
	date, err := getDateQueryParam(r, "date", h.clock)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.reportService.DailySummary(r.Context(), date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetWeeklySummary handles GET /reports/weekly
func (h *reportHandlerImpl) GetWeeklySummary(w http.ResponseWriter, r *http.Request) {
	date, err := getDateQueryParam(r, "date", h.clock)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.reportService.WeeklySummary(r.Context(), date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetMonthlySummary handles GET /reports/monthly
func (h *reportHandlerImpl) GetMonthlySummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := h.clock.Now()

	req := report.MonthlyReportRequest{
		Month: int(now.Month()),
		Year:  now.Year(),
	}

	// Parse query parameters
	if monthStr := r.URL.Query().Get("month"); monthStr != "" {
		month, err := strconv.Atoi(monthStr)
		if err != nil {
			response.BadRequest(w, "invalid month parameter", nil)
			return
		}
		req.Month = month
	}
	if yearStr := r.URL.Query().Get("year"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			response.BadRequest(w, "invalid year parameter", nil)
			return
		}
		req.Year = year
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.reportService.MonthlySummary(ctx, req.Year, time.Month(req.Month))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetAbsentees handles GET /reports/absentees
func (h *reportHandlerImpl) GetAbsentees(w http.ResponseWriter, r *http.Request) {
	date, err := getDateQueryParam(r, "date", h.clock)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.reportService.Absentees(r.Context(), date, h.absenceCutoff)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
