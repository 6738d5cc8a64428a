// README: In-memory stores for wiring the real services and router in tests without Postgres or Redis.
package memstore

import (
	"context"
	"sync"
	"time"

	"opsgate/internal/modules/activity"
	"opsgate/internal/modules/checklist"
	"opsgate/internal/modules/geofence"
	"opsgate/internal/modules/validation"
	"opsgate/internal/types"
)

// Checklists implements checklist.Repository.
type Checklists struct {
	mu    sync.Mutex
	items map[types.ID]checklist.Checklist
}

func NewChecklists() *Checklists {
	return &Checklists{items: make(map[types.ID]checklist.Checklist)}
}

func (m *Checklists) Create(_ context.Context, c *checklist.Checklist) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[c.ID] = *c
	return nil
}

func (m *Checklists) Get(_ context.Context, id types.ID) (*checklist.Checklist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.items[id]
	if !ok {
		return nil, checklist.ErrNotFound
	}
	return &c, nil
}

func (m *Checklists) Update(_ context.Context, c *checklist.Checklist) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[c.ID]; !ok {
		return checklist.ErrNotFound
	}
	m.items[c.ID] = *c
	return nil
}

func (m *Checklists) Delete(_ context.Context, id types.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return checklist.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *Checklists) List(_ context.Context, plantID types.ID) ([]checklist.Checklist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []checklist.Checklist
	for _, c := range m.items {
		if plantID == "" || c.PlantID == plantID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *Checklists) ClearLocation(_ context.Context, id types.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.items[id]
	if !ok {
		return checklist.ErrNotFound
	}
	c.RequiresLocation, c.Location = false, nil
	m.items[id] = c
	return nil
}

// Attempts implements validation.Attempts.
type Attempts struct {
	mu   sync.Mutex
	list []validation.Attempt
}

func NewAttempts() *Attempts {
	return &Attempts{}
}

func (m *Attempts) Append(_ context.Context, a *validation.Attempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = int64(len(m.list) + 1)
	m.list = append(m.list, *a)
	return nil
}

func (m *Attempts) ListByChecklist(_ context.Context, id types.ID, limit int) ([]validation.Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []validation.Attempt
	for i := len(m.list) - 1; i >= 0 && len(out) < limit; i-- {
		if m.list[i].ChecklistID == id {
			out = append(out, m.list[i])
		}
	}
	return out, nil
}

// Passes keeps the fingerprint of the passed fence per user and checklist,
// like validation.PassStore. Passes never expire.
type Passes struct {
	mu     sync.Mutex
	passes map[string]string
}

func NewPasses() *Passes {
	return &Passes{passes: make(map[string]string)}
}

func (m *Passes) Grant(_ context.Context, userID, checklistID types.ID, fence geofence.Geofence, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.passes[passKey(userID, checklistID)] = fence.Fingerprint()
	return nil
}

func (m *Passes) Has(_ context.Context, userID, checklistID types.ID, fence geofence.Geofence) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	got, ok := m.passes[passKey(userID, checklistID)]
	if ok && got != fence.Fingerprint() {
		delete(m.passes, passKey(userID, checklistID))
		return false, nil
	}
	return ok, nil
}

func passKey(userID, checklistID types.ID) string {
	return string(userID) + "/" + string(checklistID)
}

// Completions implements activity.Completions.
type Completions struct {
	mu   sync.Mutex
	list []activity.Completion
}

func NewCompletions() *Completions {
	return &Completions{}
}

func (m *Completions) Create(_ context.Context, c *activity.Completion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = int64(len(m.list) + 1)
	m.list = append(m.list, *c)
	return nil
}

func (m *Completions) CompletedSince(_ context.Context, checklistID, userID types.ID, since time.Time) ([]types.ID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []types.ID
	for _, c := range m.list {
		if c.ChecklistID == checklistID && c.UserID == userID && !c.CompletedAt.Before(since) {
			out = append(out, c.ActivityID)
		}
	}
	return out, nil
}

// All returns every recorded completion in insertion order.
func (m *Completions) All() []activity.Completion {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]activity.Completion(nil), m.list...)
}
