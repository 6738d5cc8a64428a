// README: Completion records for checklist activities.
package activity

import (
	"errors"
	"time"

	"opsgate/internal/modules/geofence"
	"opsgate/internal/types"
)

var (
	ErrNotFound      = errors.New("activity not found")
	ErrBadRequest    = errors.New("bad request")
	ErrPhotoRequired = errors.New("activity requires a photo")
	ErrGateClosed    = errors.New("location not validated for this checklist")
)

type Completion struct {
	ID          int64              `json:"id"`
	ChecklistID types.ID           `json:"checklistId"`
	ActivityID  types.ID           `json:"activityId"`
	UserID      types.ID           `json:"userId"`
	Point       *geofence.GeoPoint `json:"point,omitempty"`
	Photo       string             `json:"photo,omitempty"`
	CompletedAt time.Time          `json:"completedAt"`
}

type CompleteCommand struct {
	ChecklistID types.ID
	ActivityID  types.ID
	UserID      types.ID
	Point       *geofence.GeoPoint
	Photo       string
}
