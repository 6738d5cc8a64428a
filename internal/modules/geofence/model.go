// README: Geofence value types (points, circular fences, verdicts) and input validation.
package geofence

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrInvalidLatitude  = errors.New("latitude must be within [-90, 90]")
	ErrInvalidLongitude = errors.New("longitude must be within [-180, 180]")
	ErrInvalidRadius    = errors.New("radius must be a positive number of meters")
)

// GeoPoint is a coordinate pair in decimal degrees.
type GeoPoint struct {
	Lat float64 `json:"latitude"`
	Lng float64 `json:"longitude"`
}

func (p GeoPoint) Validate() error {
	if math.IsNaN(p.Lat) || p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("%w: got %v", ErrInvalidLatitude, p.Lat)
	}
	if math.IsNaN(p.Lng) || p.Lng < -180 || p.Lng > 180 {
		return fmt.Errorf("%w: got %v", ErrInvalidLongitude, p.Lng)
	}
	return nil
}

func (p GeoPoint) String() string {
	return fmt.Sprintf("%.6f,%.6f", p.Lat, p.Lng)
}

// Geofence is a circular boundary around Center.
type Geofence struct {
	Center       GeoPoint `json:"center"`
	RadiusMeters float64  `json:"radiusMeters"`
}

func (f Geofence) Validate() error {
	if err := f.Center.Validate(); err != nil {
		return fmt.Errorf("center: %w", err)
	}
	if math.IsNaN(f.RadiusMeters) || math.IsInf(f.RadiusMeters, 0) || f.RadiusMeters <= 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidRadius, f.RadiusMeters)
	}
	return nil
}

// ValidationResult is recomputed on every call; positions move.
type ValidationResult struct {
	WithinFence    bool    `json:"withinFence"`
	DistanceMeters float64 `json:"distanceMeters"`
}

// Fingerprint identifies the fence's center and radius. Two fences with the
// same fingerprint gate the same area.
func (f Geofence) Fingerprint() string {
	return fmt.Sprintf("%.7f,%.7f,%.2f", f.Center.Lat, f.Center.Lng, f.RadiusMeters)
}
