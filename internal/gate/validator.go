// README: Validator strategies: local engine, remote endpoint, and remote-with-local fallback.
package gate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"opsgate/internal/modules/checklist"
	"opsgate/internal/modules/geofence"
	"opsgate/internal/types"
)

var ErrRemoteUnavailable = errors.New("remote validator unavailable")

// Target is what a reading is validated against. Fence is nil when the
// checklist has no location record.
type Target struct {
	ChecklistID types.ID
	Fence       *geofence.Geofence
}

// TargetFor builds the validation target of a location-gated checklist.
func TargetFor(c *checklist.Checklist) Target {
	t := Target{ChecklistID: c.ID}
	if c.Location != nil {
		t.Fence = &geofence.Geofence{Center: c.Location.Center(), RadiusMeters: c.Location.Radius}
	}
	return t
}

type Validator interface {
	Validate(ctx context.Context, target Target, at geofence.GeoPoint) (geofence.ValidationResult, error)
}

// LocalValidator runs the engine against the fence carried by the target.
type LocalValidator struct{}

func (LocalValidator) Validate(ctx context.Context, target Target, at geofence.GeoPoint) (geofence.ValidationResult, error) {
	if err := ctx.Err(); err != nil {
		return geofence.ValidationResult{}, err
	}
	if target.Fence == nil {
		return geofence.ValidationResult{}, checklist.ErrNoGeofence
	}
	return geofence.Evaluate(at, *target.Fence)
}

// RemoteValidator asks the API for an authoritative verdict.
type RemoteValidator struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewRemoteValidator(baseURL, token string, client *http.Client) *RemoteValidator {
	if client == nil {
		client = http.DefaultClient
	}
	return &RemoteValidator{baseURL: strings.TrimRight(baseURL, "/"), token: token, client: client}
}

type remoteRequest struct {
	ChecklistID string  `json:"checklistId"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

type remoteResponse struct {
	Valid          bool     `json:"valid"`
	DistanceMeters *float64 `json:"distanceMeters"`
}

func (r *RemoteValidator) Validate(ctx context.Context, target Target, at geofence.GeoPoint) (geofence.ValidationResult, error) {
	body, err := json.Marshal(remoteRequest{
		ChecklistID: string(target.ChecklistID),
		Latitude:    at.Lat,
		Longitude:   at.Lng,
	})
	if err != nil {
		return geofence.ValidationResult{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/api/geofence/validate", bytes.NewReader(body))
	if err != nil {
		return geofence.ValidationResult{}, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return geofence.ValidationResult{}, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return geofence.ValidationResult{}, fmt.Errorf("%w: status %d", ErrRemoteUnavailable, resp.StatusCode)
	}
	var out remoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return geofence.ValidationResult{}, fmt.Errorf("%w: decoding response: %v", ErrRemoteUnavailable, err)
	}
	result := geofence.ValidationResult{WithinFence: out.Valid}
	switch {
	case out.DistanceMeters != nil:
		result.DistanceMeters = *out.DistanceMeters
	case target.Fence != nil:
		result.DistanceMeters = geofence.DistanceToGeofence(at, target.Fence.Center)
	case !out.Valid:
		// A rejection needs a distance for the worker's message.
		return geofence.ValidationResult{}, fmt.Errorf("%w: rejection without distance", ErrRemoteUnavailable)
	}
	return result, nil
}

// FallbackValidator prefers Primary and uses Fallback when Primary errors.
// A verdict from Primary, valid or not, is final. Falling back to a local
// check only opens the client session; the server re-checks the reported
// position when the activity is completed.
type FallbackValidator struct {
	Primary  Validator
	Fallback Validator
	Log      logrus.FieldLogger
}

func (f FallbackValidator) Validate(ctx context.Context, target Target, at geofence.GeoPoint) (geofence.ValidationResult, error) {
	result, err := f.Primary.Validate(ctx, target, at)
	if err == nil {
		return result, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return geofence.ValidationResult{}, ctxErr
	}
	if f.Log != nil {
		f.Log.WithError(err).WithField("checklist_id", target.ChecklistID).Warn("primary validator failed, using fallback")
	}
	return f.Fallback.Validate(ctx, target, at)
}
