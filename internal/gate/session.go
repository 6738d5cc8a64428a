// README: Session-scoped gate for one checklist visit.
package gate

import (
	"errors"
	"sync"
	"time"

	"opsgate/internal/modules/checklist"
	"opsgate/internal/modules/geofence"
)

var ErrGateClosed = errors.New("location not validated for this checklist")

// Session records whether the worker has passed the location check during
// the current visit. Once open it stays open; activities are not re-checked.
type Session struct {
	mu       sync.RWMutex
	open     bool
	openedAt time.Time
}

func NewSession() *Session {
	return &Session{}
}

// Open opens the gate when the result is within the fence and reports
// whether the gate is open afterwards.
func (s *Session) Open(result geofence.ValidationResult) bool {
	if !result.WithinFence {
		return s.IsOpen()
	}
	s.markOpen()
	return true
}

func (s *Session) markOpen() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		s.open = true
		s.openedAt = time.Now()
	}
}

func (s *Session) IsOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.open
}

// OpenedAt is zero until the gate opens.
func (s *Session) OpenedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.openedAt
}

// Allow returns nil when an activity of c may be completed.
func (s *Session) Allow(c *checklist.Checklist) error {
	if !c.RequiresLocation || s.IsOpen() {
		return nil
	}
	return ErrGateClosed
}
