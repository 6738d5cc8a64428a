// README: Authoritative geofence check: evaluate, log the attempt, grant a pass, publish an event.
package validation

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"opsgate/internal/events"
	"opsgate/internal/modules/checklist"
	"opsgate/internal/modules/geofence"
	"opsgate/internal/types"
)

type Checklists interface {
	Get(ctx context.Context, id types.ID) (*checklist.Checklist, error)
}

type Attempts interface {
	Append(ctx context.Context, a *Attempt) error
	ListByChecklist(ctx context.Context, checklistID types.ID, limit int) ([]Attempt, error)
}

type Passes interface {
	Grant(ctx context.Context, userID, checklistID types.ID, fence geofence.Geofence, ttl time.Duration) error
}

type Publisher interface {
	Publish(ctx context.Context, ev events.GateEvent) error
}

type Service struct {
	checklists Checklists
	attempts   Attempts
	passes     Passes
	publisher  Publisher
	passTTL    time.Duration
	log        logrus.FieldLogger
	now        func() time.Time
}

// NewService wires the validation service. publisher may be nil.
func NewService(checklists Checklists, attempts Attempts, passes Passes, publisher Publisher, passTTL time.Duration, log logrus.FieldLogger) *Service {
	return &Service{
		checklists: checklists,
		attempts:   attempts,
		passes:     passes,
		publisher:  publisher,
		passTTL:    passTTL,
		log:        log,
		now:        time.Now,
	}
}

func (s *Service) Validate(ctx context.Context, req Request) (Verdict, error) {
	if req.ChecklistID == "" {
		return Verdict{}, fmt.Errorf("%w: checklistId is required", ErrBadRequest)
	}
	if err := req.Point.Validate(); err != nil {
		return Verdict{}, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}

	c, err := s.checklists.Get(ctx, req.ChecklistID)
	if err != nil {
		return Verdict{}, err
	}
	fence, err := c.Geofence()
	if err != nil {
		s.log.WithField("checklist_id", c.ID).Error("location-gated checklist has no geofence")
		return Verdict{RequiresLocation: true}, err
	}
	if fence == nil {
		return Verdict{Valid: true}, nil
	}

	result, err := geofence.Evaluate(req.Point, *fence)
	if err != nil {
		// Stored fence is broken; the point was already checked.
		return Verdict{RequiresLocation: true}, fmt.Errorf("evaluating checklist %s: %w", c.ID, err)
	}
	checkedAt := s.now().UTC()
	log := s.log.WithFields(logrus.Fields{
		"checklist_id": c.ID,
		"user_id":      req.UserID,
		"distance_m":   result.DistanceMeters,
		"valid":        result.WithinFence,
	})

	attempt := &Attempt{
		ChecklistID:    c.ID,
		UserID:         req.UserID,
		Point:          req.Point,
		AccuracyMeters: req.AccuracyMeters,
		Valid:          result.WithinFence,
		DistanceMeters: result.DistanceMeters,
		CheckedAt:      checkedAt,
	}
	if err := s.attempts.Append(ctx, attempt); err != nil {
		log.WithError(err).Warn("recording validation attempt failed")
	}

	if result.WithinFence {
		if err := s.passes.Grant(ctx, req.UserID, c.ID, *fence, s.passTTL); err != nil {
			return Verdict{}, fmt.Errorf("granting gate pass: %w", err)
		}
	}
	s.publish(ctx, log, events.GateEvent{
		Kind:           kindFor(result.WithinFence),
		ChecklistID:    c.ID,
		UserID:         req.UserID,
		Latitude:       req.Point.Lat,
		Longitude:      req.Point.Lng,
		DistanceMeters: result.DistanceMeters,
		RadiusMeters:   fence.RadiusMeters,
		OccurredAt:     checkedAt,
	})
	log.Info("geofence checked")

	return Verdict{
		Valid:            result.WithinFence,
		DistanceMeters:   result.DistanceMeters,
		RequiresLocation: true,
	}, nil
}

// History returns the latest attempts for a checklist, newest first.
func (s *Service) History(ctx context.Context, checklistID types.ID, limit int) ([]Attempt, error) {
	if checklistID == "" {
		return nil, ErrBadRequest
	}
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	return s.attempts.ListByChecklist(ctx, checklistID, limit)
}

func (s *Service) publish(ctx context.Context, log logrus.FieldLogger, ev events.GateEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		log.WithError(err).Warn("publishing gate event failed")
	}
}

func kindFor(valid bool) events.Kind {
	if valid {
		return events.KindPassed
	}
	return events.KindRejected
}
