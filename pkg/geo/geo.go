package geo

import (
	"fmt"
	"math"
)

// DefaultTolerance is the coordinate tolerance, in degrees, used to decide
// that two points refer to the same marker. Roughly one metre at the equator.
const DefaultTolerance = 0.00001

// Point represents a geographic coordinate (WGS 84).
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate checks that the point lies within valid WGS 84 ranges.
func (p Point) Validate() error {
	if p.Latitude < -90 || p.Latitude > 90 {
		return fmt.Errorf("latitude %v out of range [-90, 90]", p.Latitude)
	}
	if p.Longitude < -180 || p.Longitude > 180 {
		return fmt.Errorf("longitude %v out of range [-180, 180]", p.Longitude)
	}
	return nil
}

// slack absorbs float64 noise from degree subtraction, so a point exactly at
// the tolerance boundary still matches.
const slack = 1e-9

// CloseTo reports whether both coordinates of p are within tol degrees of q.
func (p Point) CloseTo(q Point, tol float64) bool {
	return math.Abs(p.Latitude-q.Latitude) <= tol+slack &&
		math.Abs(p.Longitude-q.Longitude) <= tol+slack
}

// SQLTolerance converts a degree tolerance into the value bound to SQL
// ABS(column - $n) <= $m comparisons, carrying the same boundary slack as
// CloseTo.
func SQLTolerance(tol float64) float64 { return tol + slack }

// MapURL returns a Google Maps link for the point, suitable for embedding in
// an SMS body.
func (p Point) MapURL() string {
	return fmt.Sprintf("https://maps.google.com/?q=%f,%f", p.Latitude, p.Longitude)
}
