package checklist

import (
	"context"
	"errors"
	"sync"
	"testing"

	"opsgate/internal/modules/geofence"
	"opsgate/internal/types"
)

type memRepo struct {
	mu    sync.Mutex
	items map[types.ID]Checklist
	order []types.ID
}

func newMemRepo() *memRepo {
	return &memRepo{items: make(map[types.ID]Checklist)}
}

func (m *memRepo) Create(_ context.Context, c *Checklist) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[c.ID] = *c
	m.order = append(m.order, c.ID)
	return nil
}

func (m *memRepo) Get(_ context.Context, id types.ID) (*Checklist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (m *memRepo) Update(_ context.Context, c *Checklist) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[c.ID]; !ok {
		return ErrNotFound
	}
	m.items[c.ID] = *c
	return nil
}

func (m *memRepo) Delete(_ context.Context, id types.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memRepo) List(_ context.Context, plantID types.ID) ([]Checklist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Checklist
	for _, id := range m.order {
		c, ok := m.items[id]
		if ok && (plantID == "" || c.PlantID == plantID) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memRepo) ClearLocation(_ context.Context, id types.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.items[id]
	if !ok {
		return ErrNotFound
	}
	c.Location = nil
	c.RequiresLocation = false
	m.items[id] = c
	return nil
}

type geocoderFunc func(ctx context.Context, address string) (geofence.GeoPoint, error)

func (f geocoderFunc) Geocode(ctx context.Context, address string) (geofence.GeoPoint, error) {
	return f(ctx, address)
}

func gatedCommand(lat, lng, radius float64) Command {
	return Command{
		PlantID:          "plant-1",
		Name:             "Opening checks",
		RequiresLocation: true,
		Location:         &Location{Address: "1 Main St", Latitude: lat, Longitude: lng, Radius: radius},
		Activities:       []Activity{{Name: "Check fryer"}, {Name: "Photo of walk-in", RequiresPhoto: true}},
	}
}

func TestCreateAssignsIDs(t *testing.T) {
	svc := NewService(newMemRepo(), nil)

	c, err := svc.Create(context.Background(), gatedCommand(40.7128, -74.0060, 100))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.ID == "" {
		t.Fatalf("expected checklist id")
	}
	for i, a := range c.Activities {
		if a.ID == "" {
			t.Errorf("activity %d has no id", i)
		}
	}
	if c.CreatedAt.IsZero() || !c.CreatedAt.Equal(c.UpdatedAt) {
		t.Errorf("timestamps not set: created=%v updated=%v", c.CreatedAt, c.UpdatedAt)
	}

	got, err := svc.Get(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	fence, err := got.Geofence()
	if err != nil || fence == nil {
		t.Fatalf("expected geofence, got %v, %v", fence, err)
	}
	if fence.RadiusMeters != 100 {
		t.Errorf("radius = %v, want 100", fence.RadiusMeters)
	}
}

func TestCreateRejectsInvalidCommands(t *testing.T) {
	svc := NewService(newMemRepo(), nil)

	noLocation := gatedCommand(0, 0, 0)
	noLocation.Location = nil

	zeroRadius := gatedCommand(40.7, -74.0, 0)
	badLat := gatedCommand(91, -74.0, 50)
	badLng := gatedCommand(40.7, -181, 50)

	noName := gatedCommand(40.7, -74.0, 50)
	noName.Name = ""

	unnamedActivity := gatedCommand(40.7, -74.0, 50)
	unnamedActivity.Activities = []Activity{{Name: ""}}

	tests := []struct {
		name string
		cmd  Command
	}{
		{name: "requires location without location", cmd: noLocation},
		{name: "zero radius", cmd: zeroRadius},
		{name: "latitude out of range", cmd: badLat},
		{name: "longitude out of range", cmd: badLng},
		{name: "missing name", cmd: noName},
		{name: "unnamed activity", cmd: unnamedActivity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.cmd)
			if !errors.Is(err, ErrBadRequest) {
				t.Fatalf("expected ErrBadRequest, got %v", err)
			}
		})
	}
}

func TestCreateGeocodesAddress(t *testing.T) {
	var calls int
	geo := geocoderFunc(func(_ context.Context, address string) (geofence.GeoPoint, error) {
		calls++
		if address != "1 Main St" {
			t.Errorf("unexpected address %q", address)
		}
		return geofence.GeoPoint{Lat: 51.5074, Lng: -0.1278}, nil
	})
	svc := NewService(newMemRepo(), geo)

	c, err := svc.Create(context.Background(), gatedCommand(0, 0, 75))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if calls != 1 {
		t.Fatalf("geocoder calls = %d, want 1", calls)
	}
	if c.Location.Latitude != 51.5074 || c.Location.Longitude != -0.1278 {
		t.Errorf("location not geocoded: %+v", c.Location)
	}

	// Explicit coordinates are kept as given.
	if _, err := svc.Create(context.Background(), gatedCommand(40.7, -74.0, 75)); err != nil {
		t.Fatalf("create with coordinates: %v", err)
	}
	if calls != 1 {
		t.Errorf("geocoder called for explicit coordinates")
	}
}

func TestCreateGeocodeFailure(t *testing.T) {
	geo := geocoderFunc(func(context.Context, string) (geofence.GeoPoint, error) {
		return geofence.GeoPoint{}, errors.New("ZERO_RESULTS")
	})
	svc := NewService(newMemRepo(), geo)

	_, err := svc.Create(context.Background(), gatedCommand(0, 0, 75))
	if !errors.Is(err, ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest, got %v", err)
	}
}

func TestUpdateAndDelete(t *testing.T) {
	svc := NewService(newMemRepo(), nil)
	ctx := context.Background()

	c, err := svc.Create(ctx, gatedCommand(40.7, -74.0, 50))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	cmd := gatedCommand(40.8, -74.1, 200)
	cmd.Name = "Closing checks"
	updated, err := svc.Update(ctx, c.ID, cmd)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Closing checks" || updated.Location.Radius != 200 {
		t.Errorf("update not applied: %+v", updated)
	}
	if updated.CreatedAt != c.CreatedAt {
		t.Errorf("created_at changed on update")
	}

	if _, err := svc.Update(ctx, "missing", cmd); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := svc.Delete(ctx, c.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, c.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := svc.Delete(ctx, ""); !errors.Is(err, ErrBadRequest) {
		t.Errorf("expected ErrBadRequest for empty id, got %v", err)
	}
}

func TestClearLocation(t *testing.T) {
	svc := NewService(newMemRepo(), nil)
	ctx := context.Background()

	c, err := svc.Create(ctx, gatedCommand(40.7, -74.0, 50))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	cleared, err := svc.ClearLocation(ctx, c.ID)
	if err != nil {
		t.Fatalf("clear location: %v", err)
	}
	if cleared.RequiresLocation || cleared.Location != nil {
		t.Fatalf("location not cleared: %+v", cleared)
	}
	fence, err := cleared.Geofence()
	if err != nil || fence != nil {
		t.Errorf("expected unconstrained checklist, got %v, %v", fence, err)
	}
}

func TestGeofenceMissingLocation(t *testing.T) {
	c := &Checklist{RequiresLocation: true}
	if _, err := c.Geofence(); !errors.Is(err, ErrNoGeofence) {
		t.Fatalf("expected ErrNoGeofence, got %v", err)
	}
}

func TestNearestFirst(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	far, _ := svc.Create(ctx, gatedCommand(40.80, -74.0, 50))
	free := Command{PlantID: "plant-1", Name: "Anywhere"}
	unconstrained, _ := svc.Create(ctx, free)
	near, _ := svc.Create(ctx, gatedCommand(40.71, -74.0, 50))
	other := gatedCommand(40.70, -74.0, 50)
	other.PlantID = "plant-2"
	if _, err := svc.Create(ctx, other); err != nil {
		t.Fatalf("create other plant: %v", err)
	}

	got, err := svc.NearestFirst(ctx, "plant-1", geofence.GeoPoint{Lat: 40.70, Lng: -74.0})
	if err != nil {
		t.Fatalf("nearest first: %v", err)
	}
	want := []types.ID{near.ID, far.ID, unconstrained.ID}
	if len(got) != len(want) {
		t.Fatalf("got %d checklists, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].Checklist.ID != id {
			t.Errorf("position %d: got %s, want %s", i, got[i].Checklist.ID, id)
		}
	}
	if got[2].DistanceMeters != nil {
		t.Errorf("unconstrained checklist should have no distance")
	}
	if d := *got[0].DistanceMeters; d < 1100 || d > 1125 {
		t.Errorf("near distance = %.1f, want about 1112m", d)
	}

	if _, err := svc.NearestFirst(ctx, "plant-1", geofence.GeoPoint{Lat: 100}); !errors.Is(err, ErrBadRequest) {
		t.Errorf("expected ErrBadRequest for bad origin, got %v", err)
	}
}

func TestAssignedTo(t *testing.T) {
	tests := []struct {
		checklistRole, callerRole string
		want                      bool
	}{
		{"", "worker", true},
		{"", "", true},
		{"cook", "cook", true},
		{"cook", "worker", false},
		{"cook", "", false},
	}
	for _, tt := range tests {
		c := Checklist{Role: tt.checklistRole}
		if got := c.AssignedTo(tt.callerRole); got != tt.want {
			t.Errorf("Checklist{Role: %q}.AssignedTo(%q) = %v, want %v", tt.checklistRole, tt.callerRole, got, tt.want)
		}
	}
}
