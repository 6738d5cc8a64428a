// README: Orchestrator drives one location check: acquire a reading, validate it, open the session.
package gate

import (
	"context"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"opsgate/internal/modules/checklist"
)

type Source string

const (
	SourceSkipped Source = "skipped"
	SourceChecked Source = "checked"
)

type Outcome struct {
	Validated      bool
	DistanceMeters float64
	Message        string
	Source         Source
}

type Orchestrator struct {
	positions PositionSource
	validator Validator
	options   PositionOptions
	log       logrus.FieldLogger
}

func NewOrchestrator(positions PositionSource, validator Validator, options PositionOptions, log logrus.FieldLogger) *Orchestrator {
	if options.Timeout <= 0 {
		options.Timeout = DefaultPositionOptions.Timeout
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Orchestrator{positions: positions, validator: validator, options: options, log: log}
}

// Validate checks the worker's position for checklist c and opens session on
// success. Position failures are returned as *PositionError. A failed check
// leaves the session closed and may be retried.
func (o *Orchestrator) Validate(ctx context.Context, session *Session, c *checklist.Checklist) (Outcome, error) {
	if !c.RequiresLocation {
		session.markOpen()
		return Outcome{Validated: true, Source: SourceSkipped}, nil
	}

	posCtx, cancel := context.WithTimeout(ctx, o.options.Timeout)
	reading, err := o.positions.CurrentPosition(posCtx, o.options)
	cancel()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Outcome{}, ctxErr
		}
		pe := ClassifyPositionError(err)
		o.log.WithError(err).WithField("checklist_id", c.ID).Warn("position unavailable")
		return Outcome{Message: pe.Message()}, pe
	}

	result, err := o.validator.Validate(ctx, TargetFor(c), reading.Point)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Outcome{}, ctxErr
		}
		return Outcome{}, fmt.Errorf("validating checklist %s: %w", c.ID, err)
	}

	log := o.log.WithFields(logrus.Fields{
		"checklist_id": c.ID,
		"distance_m":   result.DistanceMeters,
	})
	if !result.WithinFence {
		log.Info("worker outside geofence")
		return Outcome{
			DistanceMeters: result.DistanceMeters,
			Message:        DistanceMessage(result.DistanceMeters),
			Source:         SourceChecked,
		}, nil
	}
	session.Open(result)
	log.Info("location validated")
	return Outcome{Validated: true, DistanceMeters: result.DistanceMeters, Source: SourceChecked}, nil
}

// DistanceMessage tells the worker how far they are from the fence center.
func DistanceMessage(meters float64) string {
	return fmt.Sprintf("You are %dm away from the required location.", int64(math.Round(meters)))
}
