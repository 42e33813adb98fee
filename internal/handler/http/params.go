package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/report"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/clock"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/validator"
)

// getIntQueryParam gets an int query parameter with a default value
func getIntQueryParam(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return intVal
}

// getDateQueryParam reads a YYYY-MM-DD parameter as local midnight in clk's
// zone. A missing parameter means today.
func getDateQueryParam(r *http.Request, key string, clk clock.Clock) (time.Time, error) {
	val := r.URL.Query().Get(key)
	if val == "" {
		return clock.StartOfDay(clk.Now()), nil
	}
	date, ok := validator.IsValidDate(val)
	if !ok {
		return time.Time{}, report.ErrInvalidDate
	}
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, clk.Location()), nil
}
