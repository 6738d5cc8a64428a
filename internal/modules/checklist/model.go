// README: Checklist aggregate with its optional location requirement and activities.
package checklist

import (
	"errors"
	"time"

	"opsgate/internal/modules/geofence"
	"opsgate/internal/types"
)

var (
	ErrNotFound   = errors.New("checklist not found")
	ErrBadRequest = errors.New("bad request")
	// ErrNoGeofence marks a checklist that requires location but has no
	// location record. It cannot be validated; an administrator must fix it.
	ErrNoGeofence = errors.New("checklist requires location but has no geofence configured")
)

// Location is the place a location-gated checklist must be completed at.
// Radius is in meters.
type Location struct {
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
	Radius    float64 `json:"radius" validate:"gt=0"`
}

func (l Location) Center() geofence.GeoPoint {
	return geofence.GeoPoint{Lat: l.Latitude, Lng: l.Longitude}
}

type Activity struct {
	ID            types.ID `json:"id"`
	Name          string   `json:"name" validate:"required"`
	RequiresPhoto bool     `json:"requiresPhoto"`
}

type Checklist struct {
	ID               types.ID   `json:"id"`
	PlantID          types.ID   `json:"plantId"`
	Name             string     `json:"name"`
	Lane             string     `json:"lane"`
	Area             string     `json:"area"`
	Role             string     `json:"role"`
	RequiresLocation bool       `json:"requiresLocation"`
	Location         *Location  `json:"location,omitempty"`
	Activities       []Activity `json:"activities"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// Geofence returns the fence the checklist is gated on. It is nil for an
// unconstrained checklist and ErrNoGeofence when the location is missing.
func (c *Checklist) Geofence() (*geofence.Geofence, error) {
	if !c.RequiresLocation {
		return nil, nil
	}
	if c.Location == nil {
		return nil, ErrNoGeofence
	}
	return &geofence.Geofence{Center: c.Location.Center(), RadiusMeters: c.Location.Radius}, nil
}

// AssignedTo reports whether workers with role see the checklist. A checklist
// without a role is shared by everyone.
func (c *Checklist) AssignedTo(role string) bool {
	return c.Role == "" || c.Role == role
}

func (c *Checklist) Activity(id types.ID) (Activity, bool) {
	for _, a := range c.Activities {
		if a.ID == id {
			return a, true
		}
	}
	return Activity{}, false
}
