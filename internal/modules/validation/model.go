// README: Validation attempt log entries and the request/verdict of an authoritative check.
package validation

import (
	"errors"
	"time"

	"opsgate/internal/modules/geofence"
	"opsgate/internal/types"
)

var ErrBadRequest = errors.New("bad request")

// Attempt is one server-side geofence check, kept for review.
type Attempt struct {
	ID             int64             `json:"id"`
	ChecklistID    types.ID          `json:"checklistId"`
	UserID         types.ID          `json:"userId"`
	Point          geofence.GeoPoint `json:"point"`
	AccuracyMeters *float64          `json:"accuracyMeters,omitempty"`
	Valid          bool              `json:"valid"`
	DistanceMeters float64           `json:"distanceMeters"`
	CheckedAt      time.Time         `json:"checkedAt"`
}

type Request struct {
	ChecklistID    types.ID
	UserID         types.ID
	Point          geofence.GeoPoint
	AccuracyMeters *float64
}

type Verdict struct {
	Valid            bool
	DistanceMeters   float64
	RequiresLocation bool
}
