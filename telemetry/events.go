// Package telemetry provides population statistics, performance timing,
// bookmarks, lifecycle event logs and snapshots.
package telemetry

import (
	"fmt"

	"github.com/pthm-cable/pasture/components"
	"github.com/pthm-cable/pasture/systems"
)

// EventType identifies telemetry events.
type EventType uint8

const (
	EventBirth EventType = iota
	EventDeath
	EventKill
	EventDepletion
	EventRegrowth
	numEventTypes
)

var eventNames = [numEventTypes]string{"birth", "death", "kill", "depletion", "regrowth"}

func (t EventType) String() string {
	if t < numEventTypes {
		return eventNames[t]
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (t EventType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *EventType) UnmarshalText(b []byte) error {
	for i, n := range eventNames {
		if n == string(b) {
			*t = EventType(i)
			return nil
		}
	}
	return fmt.Errorf("unknown event type %q", b)
}

// Event represents a single lifecycle or terrain event.
type Event struct {
	Type    EventType          `json:"type"`
	Tick    int64              `json:"tick"`
	AgentID components.AgentID `json:"agent,omitempty"`
	Species string             `json:"species,omitempty"`

	// Optional fields depending on event type
	Cause    string             `json:"cause,omitempty"`  // death
	TargetID components.AgentID `json:"target,omitempty"` // prey for kills
	TX       int                `json:"tx,omitempty"`     // tile for terrain events
	TY       int                `json:"ty,omitempty"`
}

// NewBirthEvent creates a birth event.
func NewBirthEvent(tick int64, id components.AgentID, s components.Species) Event {
	return Event{Type: EventBirth, Tick: tick, AgentID: id, Species: s.String()}
}

// NewDeathEvent creates a death event.
func NewDeathEvent(d systems.Death) Event {
	return Event{
		Type:    EventDeath,
		Tick:    d.Tick,
		AgentID: d.ID,
		Species: d.Species.String(),
		Cause:   d.Cause.String(),
	}
}

// NewKillEvent creates a kill event.
func NewKillEvent(tick int64, predatorID, preyID components.AgentID) Event {
	return Event{
		Type:     EventKill,
		Tick:     tick,
		AgentID:  predatorID,
		Species:  components.SpeciesPredator.String(),
		TargetID: preyID,
	}
}

// NewTileEvent creates a depletion or regrowth event.
func NewTileEvent(t EventType, ev systems.TileEvent, tick int64) Event {
	return Event{Type: t, Tick: tick, TX: ev.TX, TY: ev.TY}
}
