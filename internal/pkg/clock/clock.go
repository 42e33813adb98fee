package clock

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Clock supplies "now" in the configured reference timezone so that lateness
// thresholds and calendar checks never depend on the host machine's zone.
type Clock interface {
	Now() time.Time
	Location() *time.Location
}

type zoneClock struct {
	loc *time.Location
}

// New returns a wall clock pinned to loc.
func New(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return &zoneClock{loc: loc}
}

func (c *zoneClock) Now() time.Time {
	return time.Now().In(c.loc)
}

func (c *zoneClock) Location() *time.Location {
	return c.loc
}

// Fixed is a manually driven clock used by tests and by dry runs of jobs.
type Fixed struct {
	mu  sync.RWMutex
	now time.Time
}

func NewFixed(now time.Time) *Fixed {
	return &Fixed{now: now}
}

func (f *Fixed) Now() time.Time {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.now
}

func (f *Fixed) Location() *time.Location {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.now.Location()
}

func (f *Fixed) Set(now time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = now
}

func (f *Fixed) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

// TimeOfDay is a wall-clock hour and minute, e.g. the work start threshold.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q: expected HH:MM", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return TimeOfDay{}, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("invalid minute in %q", s)
	}
	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

// MustParseTimeOfDay is ParseTimeOfDay for constants.
func MustParseTimeOfDay(s string) TimeOfDay {
	tod, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return tod
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// On returns the instant t occurs on the calendar day of day, in day's location.
func (t TimeOfDay) On(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, t.Hour, t.Minute, 0, 0, day.Location())
}

// StartOfDay normalizes t to local midnight in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// IsLastDayOfMonth reports whether tomorrow falls in a different month,
// which also covers the December to January rollover.
func IsLastDayOfMonth(t time.Time) bool {
	y, m, d := t.Date()
	noon := time.Date(y, m, d, 12, 0, 0, 0, t.Location())
	return noon.AddDate(0, 0, 1).Month() != m
}

// StartOfISOWeek returns midnight of the Monday of t's ISO week.
func StartOfISOWeek(t time.Time) time.Time {
	day := StartOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func StartOfMonth(year int, month time.Month, loc *time.Location) time.Time {
	return time.Date(year, month, 1, 0, 0, 0, 0, loc)
}

func EndOfMonth(year int, month time.Month, loc *time.Location) time.Time {
	return StartOfMonth(year, month, loc).AddDate(0, 1, -1)
}

// DateKey formats the calendar day used as the attendance-day key.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
