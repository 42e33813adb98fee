package geo

import (
	"errors"
	"math"
	"testing"

	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var office = Point{Latitude: 31.0409, Longitude: 31.3785}

// northOf returns the point meters due north of p.
func northOf(p Point, meters float64) Point {
	return Point{
		Latitude:  p.Latitude + (meters/earthRadiusMeters)*(180.0/math.Pi),
		Longitude: p.Longitude,
	}
}

func TestDistance_SamePointIsZero(t *testing.T) {
	assert.Equal(t, 0.0, Distance(office, office))
}

func TestDistance_Symmetric(t *testing.T) {
	other := Point{Latitude: 30.0444, Longitude: 31.2357}
	assert.InDelta(t, Distance(office, other), Distance(other, office), 1e-6)
	assert.InDelta(t, 120_000, Distance(office, other), 15_000)
}

func TestValidate_Boundary(t *testing.T) {
	cases := []struct {
		name   string
		meters float64
		within bool
	}{
		{"at office", 0, true},
		{"99m", 99, true},
		{"exactly on the radius", 100, true},
		{"101m", 101, false},
		{"150m", 150, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			v, err := Validate(office, 100, northOf(office, c.meters))
			require.NoError(t, err)
			assert.Equal(t, c.within, v.WithinRadius)
			assert.InDelta(t, c.meters, v.DistanceMeters, 0.01)
		})
	}
}

func TestValidate_RejectsBadCoordinates(t *testing.T) {
	bad := []Point{
		{Latitude: 91, Longitude: 0},
		{Latitude: 0, Longitude: 181},
		{Latitude: math.NaN(), Longitude: 0},
		{Latitude: 0, Longitude: math.Inf(1)},
	}
	for _, p := range bad {
		_, err := Validate(office, 100, p)
		var verrs validator.ValidationErrors
		assert.True(t, errors.As(err, &verrs), "expected validation error for %+v, got %v", p, err)
	}
}

func TestValidate_RejectsBadRadius(t *testing.T) {
	for _, r := range []float64{0, -5, math.NaN(), math.Inf(1)} {
		_, err := Validate(office, r, office)
		assert.Error(t, err)
	}
}

func TestFenceCheck(t *testing.T) {
	f := Fence{Office: office, RadiusMeters: 100}
	v, err := f.Check(northOf(office, 50))
	require.NoError(t, err)
	assert.True(t, v.WithinRadius)
}
