// README: Pure geographic computation helpers (haversine distance, containment, ordering).
package geofence

import "math"

// EarthRadiusMeters is the mean Earth radius used by the spherical model.
const EarthRadiusMeters = 6371000.0

// Distance returns the great-circle distance in meters between two points
// specified in decimal degrees.
func Distance(a, b GeoPoint) float64 {
	dLat := degreesToRadians(b.Lat - a.Lat)
	dLng := degreesToRadians(b.Lng - a.Lng)

	rLat1 := degreesToRadians(a.Lat)
	rLat2 := degreesToRadians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	// Rounding can push h a hair outside [0, 1] near antipodes.
	h = math.Min(1, math.Max(0, h))
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusMeters * c
}

// IsWithinGeofence reports whether user lies inside the circle of radiusMeters
// around center. A point exactly on the boundary is inside.
func IsWithinGeofence(user, center GeoPoint, radiusMeters float64) bool {
	return Distance(user, center) <= radiusMeters
}

// DistanceToGeofence returns how far user is from the fence center, so callers
// can say how far to move even when containment fails.
func DistanceToGeofence(user, center GeoPoint) float64 {
	return Distance(user, center)
}

// Evaluate checks user against fence after validating both inputs.
func Evaluate(user GeoPoint, fence Geofence) (ValidationResult, error) {
	if err := user.Validate(); err != nil {
		return ValidationResult{}, err
	}
	if err := fence.Validate(); err != nil {
		return ValidationResult{}, err
	}
	d := DistanceToGeofence(user, fence.Center)
	return ValidationResult{
		WithinFence:    d <= fence.RadiusMeters,
		DistanceMeters: d,
	}, nil
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// SortByDistance performs an insertion sort (fine for small N) on any slice
// where each element exposes a distance via the accessor function.
func SortByDistance[T any](items []T, dist func(T) float64) {
	for i := 1; i < len(items); i++ {
		key := items[i]
		j := i - 1
		for j >= 0 && dist(items[j]) > dist(key) {
			items[j+1] = items[j]
			j--
		}
		items[j+1] = key
	}
}
