package response

import (
	"errors"
	"net/http"

	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/attendance"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/auth"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/employee"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/leave"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/report"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/cron"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, "Invalid username or password")
	case errors.Is(err, auth.ErrLoginDisabled):
		Forbidden(w, "Admin login is not configured")

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrEmployeeAlreadyInactive):
		Conflict(w, "Employee is already inactive")

	// Report domain errors
	case errors.Is(err, report.ErrInvalidMonth),
		errors.Is(err, report.ErrInvalidDate),
		errors.Is(err, report.ErrInvalidDateRange):
		BadRequest(w, err.Error(), nil)

	// Leave domain errors
	case errors.Is(err, leave.ErrInvalidDateRange),
		errors.Is(err, leave.ErrStartDateInPast),
		errors.Is(err, leave.ErrEmptyReason),
		errors.Is(err, leave.ErrRangeTooLong):
		BadRequest(w, err.Error(), nil)

	// Scheduler errors
	case errors.Is(err, cron.ErrJobNotFound):
		NotFound(w, "Job not found")
	case errors.Is(err, cron.ErrJobRunning):
		Conflict(w, "Job is already running")

	case errors.Is(err, attendance.ErrStorageUnavailable):
		ServiceUnavailable(w, "Attendance storage unavailable")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
