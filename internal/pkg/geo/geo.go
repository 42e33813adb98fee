package geo

import (
	"math"

	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/validator"
)

const earthRadiusMeters = 6371000

// Point is a WGS84 coordinate in degrees.
type Point struct {
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
}

// Verdict is the outcome of a geofence check.
type Verdict struct {
	WithinRadius   bool
	DistanceMeters float64
}

// Distance computes the great-circle (haversine) distance between a and b in meters.
func Distance(a, b Point) float64 {
	dLat := (b.Latitude - a.Latitude) * (math.Pi / 180.0)
	dLon := (b.Longitude - a.Longitude) * (math.Pi / 180.0)

	lat1Rad := a.Latitude * (math.Pi / 180.0)
	lat2Rad := b.Latitude * (math.Pi / 180.0)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c
}

// ValidatePoint rejects non-finite or out-of-range coordinates.
func ValidatePoint(p Point) error {
	var errs validator.ValidationErrors
	if math.IsNaN(p.Latitude) || math.IsInf(p.Latitude, 0) {
		errs = append(errs, validator.ValidationError{Field: "latitude", Message: "latitude must be a finite number"})
	}
	if math.IsNaN(p.Longitude) || math.IsInf(p.Longitude, 0) {
		errs = append(errs, validator.ValidationError{Field: "longitude", Message: "longitude must be a finite number"})
	}
	if len(errs) > 0 {
		return errs
	}
	return validator.Struct(p)
}

// Validate checks p against the geofence centered on office. The boundary is
// inclusive: a point exactly radiusMeters away is within.
func Validate(office Point, radiusMeters float64, p Point) (Verdict, error) {
	if err := ValidatePoint(office); err != nil {
		return Verdict{}, err
	}
	if err := ValidatePoint(p); err != nil {
		return Verdict{}, err
	}
	if math.IsNaN(radiusMeters) || math.IsInf(radiusMeters, 0) || radiusMeters <= 0 {
		return Verdict{}, validator.ValidationErrors{{Field: "radius", Message: "radius must be a positive number of meters"}}
	}

	distance := Distance(office, p)
	return Verdict{
		WithinRadius:   distance <= radiusMeters,
		DistanceMeters: distance,
	}, nil
}

// Fence is a configured office geofence.
type Fence struct {
	Office       Point
	RadiusMeters float64
}

func (f Fence) Check(p Point) (Verdict, error) {
	return Validate(f.Office, f.RadiusMeters, p)
}
