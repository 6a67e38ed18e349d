// Package oracle defines the decision boundary between the simulation and
// whatever chooses agent intents.
package oracle

import (
	"errors"
	"math"

	"github.com/pthm-cable/pasture/components"
)

// ErrUnavailable reports that an oracle could not produce a decision.
var ErrUnavailable = errors.New("oracle unavailable")

// IntentKind and ResourceKind are the closed enums shared with the simulation.
type (
	IntentKind   = components.IntentKind
	ResourceKind = components.ResourceKind
)

const (
	Wander       = components.IntentWander
	SeekResource = components.IntentSeekResource
	Rest         = components.IntentRest

	Water  = components.ResourceWater
	Forage = components.ResourceForage
	Prey   = components.ResourcePrey
)

// Intent is a proposed goal with an urgency in [0,100].
// Resource is meaningful only for SeekResource.
type Intent struct {
	Kind     IntentKind   `json:"kind"`
	Resource ResourceKind `json:"resource"`
	Urgency  float32      `json:"urgency"`
}

// Seek returns a SeekResource intent.
func Seek(kind ResourceKind, urgency float32) Intent {
	return Intent{Kind: SeekResource, Resource: kind, Urgency: urgency}
}

// RestIntent returns a Rest intent.
func RestIntent(urgency float32) Intent {
	return Intent{Kind: Rest, Urgency: urgency}
}

// WanderIntent returns a Wander intent.
func WanderIntent(urgency float32) Intent {
	return Intent{Kind: Wander, Urgency: urgency}
}

// Normalize clamps urgency into [0,100] and replaces unknown kinds with Wander.
func (in Intent) Normalize() Intent {
	u := float64(in.Urgency)
	switch {
	case math.IsNaN(u) || u < 0:
		in.Urgency = 0
	case u > 100:
		in.Urgency = 100
	}
	switch in.Kind {
	case Wander, Rest:
		in.Resource = 0
	case SeekResource:
		if in.Resource >= components.NumResourceKinds {
			return Intent{Kind: Wander, Urgency: in.Urgency}
		}
	default:
		return Intent{Kind: Wander, Urgency: in.Urgency}
	}
	return in
}

// NeedsSnapshot is the agent's needs at decision time. Diet is the resource
// kind that satisfies the agent's hunger.
type NeedsSnapshot struct {
	Hunger  float32      `json:"hunger"`
	Thirst  float32      `json:"thirst"`
	Fatigue float32      `json:"fatigue"`
	Diet    ResourceKind `json:"diet"`
}

// EnergySnapshot is the agent's energy at decision time.
type EnergySnapshot struct {
	Current float32 `json:"current"`
	Max     float32 `json:"max"`
}

// ResourceLocation is a resource position and its distance from the deciding agent.
type ResourceLocation struct {
	X        float32 `json:"x"`
	Y        float32 `json:"y"`
	Distance float32 `json:"distance"`
}

// WorldQuery is the read-only view an oracle gets of the world around one agent.
// Results are ordered nearest first.
type WorldQuery interface {
	NearbyAgents(maxCount int, maxRadius float32, species *components.Species) []components.AgentID
	NearbyResources(kind ResourceKind, maxRadius float32) []ResourceLocation
	CanInteract(a, b components.AgentID, rng float32) bool
}

// Oracle maps an agent's state to an intent. Implementations must not mutate
// simulation state and must not retain the WorldQuery after returning.
type Oracle interface {
	Decide(id components.AgentID, needs NeedsSnapshot, energy EnergySnapshot, q WorldQuery) (Intent, error)
}

// Func adapts an ordinary function to the Oracle interface.
type Func func(id components.AgentID, needs NeedsSnapshot, energy EnergySnapshot, q WorldQuery) (Intent, error)

// Decide calls f.
func (f Func) Decide(id components.AgentID, needs NeedsSnapshot, energy EnergySnapshot, q WorldQuery) (Intent, error) {
	return f(id, needs, energy, q)
}

// Fixed returns an oracle that always proposes the same intent.
func Fixed(in Intent) Oracle {
	return Func(func(components.AgentID, NeedsSnapshot, EnergySnapshot, WorldQuery) (Intent, error) {
		return in, nil
	})
}
