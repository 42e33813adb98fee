package clock

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	tod, err := ParseTimeOfDay("09:05")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay{Hour: 9, Minute: 5}, tod)
	assert.Equal(t, "09:05", tod.String())

	for _, bad := range []string{"", "9", "24:00", "12:60", "ab:cd", "12:00:00"} {
		_, err := ParseTimeOfDay(bad)
		assert.Error(t, err, bad)
	}
}

func TestIsLastDayOfMonth(t *testing.T) {
	loc := time.UTC
	cases := []struct {
		day  time.Time
		want bool
	}{
		{time.Date(2024, 2, 28, 18, 0, 0, 0, loc), false},
		{time.Date(2024, 2, 29, 18, 0, 0, 0, loc), true},
		{time.Date(2023, 2, 28, 18, 0, 0, 0, loc), true},
		{time.Date(2024, 4, 30, 18, 0, 0, 0, loc), true},
		{time.Date(2024, 5, 30, 18, 0, 0, 0, loc), false},
		{time.Date(2024, 12, 31, 23, 59, 0, 0, loc), true},
		{time.Date(2025, 1, 1, 0, 0, 0, 0, loc), false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, IsLastDayOfMonth(c.day), c.day.String())
	}
}

func TestStartOfISOWeek(t *testing.T) {
	// 2024-05-15 is a Wednesday.
	got := StartOfISOWeek(time.Date(2024, 5, 15, 13, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC), got)

	// Sunday belongs to the week that started the previous Monday.
	got = StartOfISOWeek(time.Date(2024, 5, 19, 8, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC), got)
}

func TestTimeOfDayOnUsesDayLocation(t *testing.T) {
	cairo, err := time.LoadLocation("Africa/Cairo")
	require.NoError(t, err)

	day := time.Date(2024, 5, 15, 23, 30, 0, 0, cairo)
	start := MustParseTimeOfDay("09:00").On(day)
	assert.Equal(t, 9, start.Hour())
	assert.Equal(t, cairo, start.Location())
	assert.Equal(t, StartOfDay(day), StartOfDay(start))
}

func TestFixedClock(t *testing.T) {
	base := time.Date(2024, 5, 15, 8, 0, 0, 0, time.UTC)
	c := NewFixed(base)
	c.Advance(90 * time.Minute)
	assert.Equal(t, base.Add(90*time.Minute), c.Now())
	assert.Equal(t, time.UTC, c.Location())
}
