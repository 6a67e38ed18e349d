// Package remote carries oracle decisions over HTTP. Client runs inside the
// simulation and ships a read-only snapshot of the agent's surroundings; the
// Handler answers with any oracle.Oracle evaluated against that snapshot.
package remote

import (
	"github.com/pthm-cable/pasture/components"
	"github.com/pthm-cable/pasture/oracle"
)

// DecidePath is the route the handler serves decisions on.
const DecidePath = "/v1/decide"

// Neighbor is another agent near the deciding one, nearest first.
type Neighbor struct {
	ID      components.AgentID `json:"id"`
	Species components.Species `json:"species"`
	InReach bool               `json:"in_reach"`
}

// Surroundings is the world context gathered on the simulation side. Resource
// lists are nearest first and limited to the client's search radius.
type Surroundings struct {
	Radius    float32                   `json:"radius"`
	Water     []oracle.ResourceLocation `json:"water,omitempty"`
	Forage    []oracle.ResourceLocation `json:"forage,omitempty"`
	Prey      []oracle.ResourceLocation `json:"prey,omitempty"`
	Neighbors []Neighbor                `json:"neighbors,omitempty"`
}

// DecideRequest is the body of POST /v1/decide.
type DecideRequest struct {
	AgentID components.AgentID    `json:"agent_id"`
	Needs   oracle.NeedsSnapshot  `json:"needs"`
	Energy  oracle.EnergySnapshot `json:"energy"`
	Context Surroundings          `json:"context"`
}

// DecideResponse is the reply to a DecideRequest.
type DecideResponse struct {
	Intent oracle.Intent `json:"intent"`
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (s *Surroundings) resources(kind oracle.ResourceKind) []oracle.ResourceLocation {
	switch kind {
	case oracle.Water:
		return s.Water
	case oracle.Forage:
		return s.Forage
	case oracle.Prey:
		return s.Prey
	}
	return nil
}
