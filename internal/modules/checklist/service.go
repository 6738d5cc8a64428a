// README: Checklist service validates admin edits, geocodes addresses, and serves worker listings.
package checklist

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"

	"opsgate/internal/modules/geofence"
	"opsgate/internal/types"
)

// Geocoder resolves a street address to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (geofence.GeoPoint, error)
}

type Service struct {
	repo     Repository
	geocoder Geocoder
	validate *validator.Validate
	now      func() time.Time
}

// NewService builds a Service. geocoder may be nil, in which case locations
// must carry coordinates.
func NewService(repo Repository, geocoder Geocoder) *Service {
	return &Service{
		repo:     repo,
		geocoder: geocoder,
		validate: validator.New(),
		now:      time.Now,
	}
}

// Command carries the editable fields of a checklist for create and update.
type Command struct {
	PlantID          types.ID `validate:"required"`
	Name             string   `validate:"required,max=200"`
	Lane             string   `validate:"max=100"`
	Area             string   `validate:"max=100"`
	Role             string   `validate:"max=100"`
	RequiresLocation bool
	Location         *Location  `validate:"omitempty"`
	Activities       []Activity `validate:"dive"`
}

// Nearby pairs a checklist with the worker's distance to its fence. Distance
// is nil for checklists without a location.
type Nearby struct {
	Checklist      Checklist `json:"checklist"`
	DistanceMeters *float64  `json:"distanceMeters,omitempty"`
}

func (s *Service) Create(ctx context.Context, cmd Command) (*Checklist, error) {
	if err := s.prepare(ctx, &cmd); err != nil {
		return nil, err
	}
	now := s.now()
	c := &Checklist{
		ID:        types.NewID(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	apply(c, cmd)
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Checklist, error) {
	if id == "" {
		return nil, ErrBadRequest
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, plantID types.ID) ([]Checklist, error) {
	return s.repo.List(ctx, plantID)
}

// Update replaces the editable fields of an existing checklist.
func (s *Service) Update(ctx context.Context, id types.ID, cmd Command) (*Checklist, error) {
	if err := s.prepare(ctx, &cmd); err != nil {
		return nil, err
	}
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	apply(c, cmd)
	c.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, id types.ID) error {
	if id == "" {
		return ErrBadRequest
	}
	return s.repo.Delete(ctx, id)
}

// ClearLocation removes the geofence and the requires-location flag.
func (s *Service) ClearLocation(ctx context.Context, id types.ID) (*Checklist, error) {
	if id == "" {
		return nil, ErrBadRequest
	}
	if err := s.repo.ClearLocation(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// NearestFirst lists a plant's checklists ordered by distance from the worker.
// Checklists without a location sort last, keeping their relative order.
func (s *Service) NearestFirst(ctx context.Context, plantID types.ID, from geofence.GeoPoint) ([]Nearby, error) {
	if err := from.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	list, err := s.repo.List(ctx, plantID)
	if err != nil {
		return nil, err
	}
	out := make([]Nearby, len(list))
	for i, c := range list {
		out[i] = Nearby{Checklist: c}
		if c.Location != nil {
			d := geofence.DistanceToGeofence(from, c.Location.Center())
			out[i].DistanceMeters = &d
		}
	}
	geofence.SortByDistance(out, func(n Nearby) float64 {
		if n.DistanceMeters == nil {
			return math.Inf(1)
		}
		return *n.DistanceMeters
	})
	return out, nil
}

func (s *Service) prepare(ctx context.Context, cmd *Command) error {
	if err := s.validate.Struct(cmd); err != nil {
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	if cmd.RequiresLocation && cmd.Location == nil {
		return fmt.Errorf("%w: location is required when requiresLocation is set", ErrBadRequest)
	}
	if loc := cmd.Location; loc != nil {
		if loc.Latitude == 0 && loc.Longitude == 0 && loc.Address != "" && s.geocoder != nil {
			p, err := s.geocoder.Geocode(ctx, loc.Address)
			if err != nil {
				return fmt.Errorf("%w: geocoding %q: %v", ErrBadRequest, loc.Address, err)
			}
			loc.Latitude, loc.Longitude = p.Lat, p.Lng
		}
		fence := geofence.Geofence{Center: loc.Center(), RadiusMeters: loc.Radius}
		if err := fence.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrBadRequest, err)
		}
	}
	for i := range cmd.Activities {
		if cmd.Activities[i].ID == "" {
			cmd.Activities[i].ID = types.NewID()
		}
	}
	return nil
}

func apply(c *Checklist, cmd Command) {
	c.PlantID = cmd.PlantID
	c.Name = cmd.Name
	c.Lane = cmd.Lane
	c.Area = cmd.Area
	c.Role = cmd.Role
	c.RequiresLocation = cmd.RequiresLocation
	c.Location = cmd.Location
	c.Activities = cmd.Activities
	if c.Activities == nil {
		c.Activities = []Activity{}
	}
}
