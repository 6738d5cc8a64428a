// README: Position source contract and classification of device location failures.
package gate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"opsgate/internal/modules/geofence"
)

// PositionReading is a single fix from the device. It is never cached.
type PositionReading struct {
	Point          geofence.GeoPoint
	ObtainedAt     time.Time
	AccuracyMeters *float64
}

// PositionOptions mirrors the options a device location API accepts.
type PositionOptions struct {
	HighAccuracy bool
	Timeout      time.Duration
	MaximumAge   time.Duration
}

// DefaultPositionOptions asks for a fresh high accuracy fix within 10 seconds.
var DefaultPositionOptions = PositionOptions{
	HighAccuracy: true,
	Timeout:      10 * time.Second,
	MaximumAge:   0,
}

type PositionSource interface {
	CurrentPosition(ctx context.Context, opts PositionOptions) (PositionReading, error)
}

// PositionSourceFunc adapts a function to PositionSource.
type PositionSourceFunc func(ctx context.Context, opts PositionOptions) (PositionReading, error)

func (f PositionSourceFunc) CurrentPosition(ctx context.Context, opts PositionOptions) (PositionReading, error) {
	return f(ctx, opts)
}

// StaticSource always reports the same point, stamped with the current time.
type StaticSource struct {
	Point          geofence.GeoPoint
	AccuracyMeters *float64
}

func (s StaticSource) CurrentPosition(ctx context.Context, _ PositionOptions) (PositionReading, error) {
	if err := ctx.Err(); err != nil {
		return PositionReading{}, err
	}
	return PositionReading{Point: s.Point, ObtainedAt: time.Now(), AccuracyMeters: s.AccuracyMeters}, nil
}

type PositionErrorCode int

// Codes follow the W3C Geolocation API.
const (
	PositionUnknown     PositionErrorCode = 0
	PermissionDenied    PositionErrorCode = 1
	PositionUnavailable PositionErrorCode = 2
	PositionTimeout     PositionErrorCode = 3
)

const (
	msgPermissionDenied = "Location access denied. Please enable location services to continue."
	msgUnavailable      = "Location unavailable. Please check your GPS settings."
	msgGeneric          = "Unable to get your location. Please try again."
)

type PositionError struct {
	Code PositionErrorCode
	Err  error
}

func (e *PositionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("position error %d: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("position error %d", e.Code)
}

func (e *PositionError) Unwrap() error { return e.Err }

// Message is the text shown to the worker.
func (e *PositionError) Message() string {
	switch e.Code {
	case PermissionDenied:
		return msgPermissionDenied
	case PositionUnavailable:
		return msgUnavailable
	default:
		return msgGeneric
	}
}

// Retryable is false only when the user denied permission; asking again
// without a settings change will fail the same way.
func (e *PositionError) Retryable() bool {
	return e.Code != PermissionDenied
}

// ClassifyPositionError maps any acquisition failure onto a PositionError.
func ClassifyPositionError(err error) *PositionError {
	if err == nil {
		return nil
	}
	var pe *PositionError
	if errors.As(err, &pe) {
		return pe
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &PositionError{Code: PositionTimeout, Err: err}
	}
	return &PositionError{Code: PositionUnknown, Err: err}
}
