// README: Gate events emitted for every authoritative location check.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"opsgate/internal/types"
)

type Kind string

const (
	KindPassed   Kind = "gate.passed"
	KindRejected Kind = "gate.rejected"
)

type GateEvent struct {
	Kind           Kind      `json:"event"`
	ChecklistID    types.ID  `json:"checklist_id"`
	UserID         types.ID  `json:"user_id"`
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	DistanceMeters float64   `json:"distance_m"`
	RadiusMeters   float64   `json:"radius_m"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// Decode parses a message body produced by Publisher.
func Decode(body []byte) (GateEvent, error) {
	var ev GateEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return GateEvent{}, fmt.Errorf("decode gate event: %w", err)
	}
	if ev.Kind != KindPassed && ev.Kind != KindRejected {
		return GateEvent{}, fmt.Errorf("decode gate event: unknown kind %q", ev.Kind)
	}
	return ev, nil
}
