// README: Activity completion enforces the photo and location-gate rules before persisting.
package activity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"opsgate/internal/modules/checklist"
	"opsgate/internal/modules/geofence"
	"opsgate/internal/types"
)

type Checklists interface {
	Get(ctx context.Context, id types.ID) (*checklist.Checklist, error)
}

// Passes reports whether a user passed a checklist's current fence during
// the current visit.
type Passes interface {
	Has(ctx context.Context, userID, checklistID types.ID, fence geofence.Geofence) (bool, error)
}

type Completions interface {
	Create(ctx context.Context, c *Completion) error
	CompletedSince(ctx context.Context, checklistID, userID types.ID, since time.Time) ([]types.ID, error)
}

type Service struct {
	checklists  Checklists
	passes      Passes
	completions Completions
	log         logrus.FieldLogger
	now         func() time.Time
}

func NewService(checklists Checklists, passes Passes, completions Completions, log logrus.FieldLogger) *Service {
	return &Service{
		checklists:  checklists,
		passes:      passes,
		completions: completions,
		log:         log,
		now:         time.Now,
	}
}

// Complete records an activity. On a location-gated checklist the caller
// needs a gate pass for the current fence, or a reported position inside it.
// The second path serves workers whose client validated locally while the
// validation endpoint was unreachable.
func (s *Service) Complete(ctx context.Context, cmd CompleteCommand) (*Completion, error) {
	if cmd.ChecklistID == "" || cmd.ActivityID == "" || cmd.UserID == "" {
		return nil, ErrBadRequest
	}
	if cmd.Point != nil {
		if err := cmd.Point.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadRequest, err)
		}
	}

	c, err := s.checklists.Get(ctx, cmd.ChecklistID)
	if errors.Is(err, checklist.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	act, ok := c.Activity(cmd.ActivityID)
	if !ok {
		return nil, ErrNotFound
	}
	if act.RequiresPhoto && cmd.Photo == "" {
		return nil, ErrPhotoRequired
	}

	log := s.log.WithFields(logrus.Fields{
		"checklist_id": c.ID,
		"activity_id":  act.ID,
		"user_id":      cmd.UserID,
	})
	fence, err := c.Geofence()
	if err != nil {
		return nil, err
	}
	if fence != nil {
		passed, err := s.passes.Has(ctx, cmd.UserID, c.ID, *fence)
		if err != nil {
			return nil, fmt.Errorf("checking gate pass: %w", err)
		}
		if !passed {
			if !insideFence(cmd.Point, *fence) {
				log.Warn("activity completion refused: location not validated")
				return nil, ErrGateClosed
			}
			log.WithField("point", cmd.Point.String()).Warn("fallback completion: no gate pass, reported position inside fence")
		}
	}

	completion := &Completion{
		ChecklistID: c.ID,
		ActivityID:  act.ID,
		UserID:      cmd.UserID,
		Point:       cmd.Point,
		Photo:       cmd.Photo,
		CompletedAt: s.now().UTC(),
	}
	if err := s.completions.Create(ctx, completion); err != nil {
		return nil, err
	}
	log.Info("activity completed")
	return completion, nil
}

// CompletedToday returns the activities the user completed on the checklist
// since local midnight.
func (s *Service) CompletedToday(ctx context.Context, checklistID, userID types.ID) ([]types.ID, error) {
	if checklistID == "" || userID == "" {
		return nil, ErrBadRequest
	}
	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return s.completions.CompletedSince(ctx, checklistID, userID, midnight)
}

func insideFence(p *geofence.GeoPoint, fence geofence.Geofence) bool {
	if p == nil {
		return false
	}
	result, err := geofence.Evaluate(*p, fence)
	return err == nil && result.WithinFence
}
