package validation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opsgate/internal/events"
	"opsgate/internal/modules/checklist"
	"opsgate/internal/modules/geofence"
	"opsgate/internal/types"
)

type fakeChecklists struct {
	GetFn func(ctx context.Context, id types.ID) (*checklist.Checklist, error)
}

func (f *fakeChecklists) Get(ctx context.Context, id types.ID) (*checklist.Checklist, error) {
	return f.GetFn(ctx, id)
}

type fakeAttempts struct {
	appended []Attempt
	err      error
}

func (f *fakeAttempts) Append(_ context.Context, a *Attempt) error {
	if f.err != nil {
		return f.err
	}
	a.ID = int64(len(f.appended) + 1)
	f.appended = append(f.appended, *a)
	return nil
}

func (f *fakeAttempts) ListByChecklist(_ context.Context, checklistID types.ID, limit int) ([]Attempt, error) {
	var out []Attempt
	for i := len(f.appended) - 1; i >= 0 && len(out) < limit; i-- {
		if f.appended[i].ChecklistID == checklistID {
			out = append(out, f.appended[i])
		}
	}
	return out, nil
}

type fakePasses struct {
	granted map[string]time.Duration
	fences  map[string]geofence.Geofence
	err     error
}

func (f *fakePasses) Grant(_ context.Context, userID, checklistID types.ID, fence geofence.Geofence, ttl time.Duration) error {
	if f.err != nil {
		return f.err
	}
	if f.granted == nil {
		f.granted = make(map[string]time.Duration)
		f.fences = make(map[string]geofence.Geofence)
	}
	key := string(userID) + "/" + string(checklistID)
	f.granted[key] = ttl
	f.fences[key] = fence
	return nil
}

type fakePublisher struct {
	published []events.GateEvent
	err       error
}

func (f *fakePublisher) Publish(_ context.Context, ev events.GateEvent) error {
	f.published = append(f.published, ev)
	return f.err
}

var site = geofence.GeoPoint{Lat: 40.7128, Lng: -74.0060}

func fixtures() map[types.ID]*checklist.Checklist {
	return map[types.ID]*checklist.Checklist{
		"gated": {
			ID:               "gated",
			RequiresLocation: true,
			Location:         &checklist.Location{Latitude: site.Lat, Longitude: site.Lng, Radius: 50},
		},
		"free":   {ID: "free"},
		"broken": {ID: "broken", RequiresLocation: true},
	}
}

type harness struct {
	svc       *Service
	attempts  *fakeAttempts
	passes    *fakePasses
	publisher *fakePublisher
}

func newHarness() *harness {
	list := fixtures()
	h := &harness{
		attempts:  &fakeAttempts{},
		passes:    &fakePasses{},
		publisher: &fakePublisher{},
	}
	repo := &fakeChecklists{GetFn: func(_ context.Context, id types.ID) (*checklist.Checklist, error) {
		c, ok := list[id]
		if !ok {
			return nil, checklist.ErrNotFound
		}
		return c, nil
	}}
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	h.svc = NewService(repo, h.attempts, h.passes, h.publisher, 12*time.Hour, log)
	h.svc.now = func() time.Time { return time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC) }
	return h
}

func TestValidateInsideGrantsPass(t *testing.T) {
	h := newHarness()
	acc := 8.0

	v, err := h.svc.Validate(context.Background(), Request{
		ChecklistID: "gated", UserID: "u-1", Point: site, AccuracyMeters: &acc,
	})
	require.NoError(t, err)
	assert.True(t, v.Valid)
	assert.True(t, v.RequiresLocation)
	assert.InDelta(t, 0, v.DistanceMeters, 1e-9)

	assert.Equal(t, 12*time.Hour, h.passes.granted["u-1/gated"])
	assert.Equal(t, geofence.Geofence{Center: site, RadiusMeters: 50}, h.passes.fences["u-1/gated"])
	require.Len(t, h.attempts.appended, 1)
	assert.True(t, h.attempts.appended[0].Valid)
	assert.Equal(t, &acc, h.attempts.appended[0].AccuracyMeters)
	require.Len(t, h.publisher.published, 1)
	assert.Equal(t, events.KindPassed, h.publisher.published[0].Kind)
	assert.Equal(t, 50.0, h.publisher.published[0].RadiusMeters)
}

func TestValidateOutsideRecordsRejection(t *testing.T) {
	h := newHarness()
	outside := geofence.GeoPoint{Lat: site.Lat + 0.001, Lng: site.Lng}

	v, err := h.svc.Validate(context.Background(), Request{ChecklistID: "gated", UserID: "u-1", Point: outside})
	require.NoError(t, err)
	assert.False(t, v.Valid)
	assert.InDelta(t, 111.2, v.DistanceMeters, 0.5)
	assert.Empty(t, h.passes.granted)
	require.Len(t, h.attempts.appended, 1)
	assert.False(t, h.attempts.appended[0].Valid)
	require.Len(t, h.publisher.published, 1)
	assert.Equal(t, events.KindRejected, h.publisher.published[0].Kind)
}

func TestValidateUnconstrainedChecklist(t *testing.T) {
	h := newHarness()

	v, err := h.svc.Validate(context.Background(), Request{ChecklistID: "free", UserID: "u-1", Point: site})
	require.NoError(t, err)
	assert.Equal(t, Verdict{Valid: true}, v)
	assert.Empty(t, h.attempts.appended)
	assert.Empty(t, h.publisher.published)
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want error
	}{
		{name: "missing checklist id", req: Request{Point: site}, want: ErrBadRequest},
		{name: "latitude out of range", req: Request{ChecklistID: "gated", Point: geofence.GeoPoint{Lat: -91}}, want: geofence.ErrInvalidLatitude},
		{name: "longitude out of range", req: Request{ChecklistID: "gated", Point: geofence.GeoPoint{Lng: 181}}, want: ErrBadRequest},
		{name: "unknown checklist", req: Request{ChecklistID: "nope", Point: site}, want: checklist.ErrNotFound},
		{name: "gated without geofence", req: Request{ChecklistID: "broken", Point: site}, want: checklist.ErrNoGeofence},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			_, err := h.svc.Validate(context.Background(), tt.req)
			require.ErrorIs(t, err, tt.want)
			assert.Empty(t, h.attempts.appended)
			assert.Empty(t, h.passes.granted)
		})
	}
}

func TestValidateSideEffectFailures(t *testing.T) {
	h := newHarness()
	h.attempts.err = errors.New("db down")
	h.publisher.err = errors.New("broker down")

	v, err := h.svc.Validate(context.Background(), Request{ChecklistID: "gated", UserID: "u-1", Point: site})
	require.NoError(t, err, "attempt log and events are best effort")
	assert.True(t, v.Valid)

	h = newHarness()
	h.passes.err = errors.New("redis down")
	_, err = h.svc.Validate(context.Background(), Request{ChecklistID: "gated", UserID: "u-1", Point: site})
	assert.Error(t, err)
}

func TestValidateWithoutPublisher(t *testing.T) {
	h := newHarness()
	h.svc.publisher = nil

	v, err := h.svc.Validate(context.Background(), Request{ChecklistID: "gated", UserID: "u-1", Point: site})
	require.NoError(t, err)
	assert.True(t, v.Valid)
}

func TestHistory(t *testing.T) {
	h := newHarness()
	for i := 0; i < 3; i++ {
		_, err := h.svc.Validate(context.Background(), Request{ChecklistID: "gated", UserID: "u-1", Point: site})
		require.NoError(t, err)
	}

	got, err := h.svc.History(context.Background(), "gated", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.EqualValues(t, 3, got[0].ID)

	_, err = h.svc.History(context.Background(), "", 10)
	assert.ErrorIs(t, err, ErrBadRequest)
}
