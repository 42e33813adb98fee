package http

import (
	"net/http"

	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/attendance"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/handler/http/response"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/clock"
	"github.com/go-chi/chi/v5"
)

type AttendanceHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	GetEmployeeHistory(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
	clock             clock.Clock
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService, clk clock.Clock) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
		clock:             clk,
	}
}

// List handles GET /attendance?date=YYYY-MM-DD
func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	date, err := getDateQueryParam(r, "date", h.clock)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	records, err := h.attendanceService.ListDay(r.Context(), date)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, toAttendanceResponses(records))
}

// GetEmployeeHistory handles GET /employees/{id}/attendance?days=N
func (h *attendanceHandlerImpl) GetEmployeeHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Employee ID is required", nil)
		return
	}

	days := getIntQueryParam(r, "days", 7)
	if days < 1 || days > 366 {
		response.BadRequest(w, "days must be between 1 and 366", nil)
		return
	}

	records, err := h.attendanceService.History(r.Context(), id, h.clock.Now(), days)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, toAttendanceResponses(records))
}

func toAttendanceResponses(records []attendance.AttendanceDay) []attendance.AttendanceDayResponse {
	result := make([]attendance.AttendanceDayResponse, 0, len(records))
	for _, d := range records {
		result = append(result, attendance.ToAttendanceDayResponse(d))
	}
	return result
}
