package http

import (
	"net/http"
	"time"

	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/employee"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type EmployeeHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Deactivate(w http.ResponseWriter, r *http.Request)
}

type EmployeeResponse struct {
	ID           string    `json:"id"`
	FullName     string    `json:"full_name"`
	PhoneNumber  string    `json:"phone_number"`
	Department   *string   `json:"department,omitempty"`
	Position     *string   `json:"position,omitempty"`
	RegisteredAt time.Time `json:"registered_at"`
}

type employeeHandlerImpl struct {
	employeeService employee.EmployeeService
}

func NewEmployeeHandler(employeeService employee.EmployeeService) EmployeeHandler {
	return &employeeHandlerImpl{employeeService: employeeService}
}

// List handles GET /employees and returns active employees only.
func (h *employeeHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	employees, err := h.employeeService.ListActive(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result := make([]EmployeeResponse, 0, len(employees))
	for _, e := range employees {
		result = append(result, EmployeeResponse{
			ID:           e.ID,
			FullName:     e.FullName,
			PhoneNumber:  e.PhoneNumber,
			Department:   e.Department,
			Position:     e.Position,
			RegisteredAt: e.RegisteredAt,
		})
	}
	response.Success(w, result)
}

// Deactivate handles POST /employees/{id}/deactivate
func (h *employeeHandlerImpl) Deactivate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Employee ID is required", nil)
		return
	}

	if err := h.employeeService.Deactivate(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Employee deactivated", nil)
}
