package sim

import (
	"github.com/pthm-cable/pasture/components"
	"github.com/pthm-cable/pasture/systems"
	"github.com/pthm-cable/pasture/telemetry"
)

// agentState flattens one agent's components.
func agentState(a systems.AgentRef) telemetry.AgentState {
	return telemetry.AgentState{
		ID:               a.Org.ID,
		Species:          a.Org.Species,
		X:                a.Pos.X,
		Y:                a.Pos.Y,
		VelX:             a.Vel.X,
		VelY:             a.Vel.Y,
		Hunger:           a.Needs.Hunger,
		Thirst:           a.Needs.Thirst,
		Fatigue:          a.Needs.Fatigue,
		Energy:           a.Energy.Current,
		MaxEnergy:        a.Energy.Max,
		BirthTick:        a.Age.BirthTick,
		ExpectedLifespan: a.Age.ExpectedLifespan,
		HealthHistory:    a.Age.HealthHistory,
		State:            a.Beh.State,
		Intent:           a.Beh.Intent,
		Resource:         a.Beh.Resource,
		Urgency:          a.Beh.Urgency,
		HasTarget:        a.Beh.Target.Active,
		TargetX:          a.Beh.Target.X,
		TargetY:          a.Beh.Target.Y,
		Prey:             a.Beh.Prey,
	}
}

// Agent returns one agent's state.
func (s *Simulation) Agent(id components.AgentID) (telemetry.AgentState, bool) {
	a, ok := s.store.Get(id)
	if !ok {
		return telemetry.AgentState{}, false
	}
	return agentState(a), true
}

// Agents returns every live agent's state ordered by ID.
func (s *Simulation) Agents() []telemetry.AgentState {
	ids := s.store.IDs()
	out := make([]telemetry.AgentState, 0, len(ids))
	for _, id := range ids {
		if a, ok := s.store.Get(id); ok {
			out = append(out, agentState(a))
		}
	}
	return out
}

// Counts returns the live population per species.
func (s *Simulation) Counts() [components.NumSpecies]int {
	var counts [components.NumSpecies]int
	s.store.Each(func(a systems.AgentRef) {
		if a.Org.Species < components.NumSpecies {
			counts[a.Org.Species]++
		}
	})
	return counts
}

// ResourceCounts returns the indexed forage and water tile counts.
func (s *Simulation) ResourceCounts() (forage, water int) {
	return s.env.Resources.Count(components.ResourceForage), s.env.Resources.Count(components.ResourceWater)
}

// Snapshot captures the terrain and every agent at the current tick.
func (s *Simulation) Snapshot() *telemetry.Snapshot {
	cols, rows := s.grid.Size()
	return &telemetry.Snapshot{
		Version:  telemetry.SnapshotVersion,
		Seed:     s.opts.Seed,
		Tick:     s.tick,
		Cols:     cols,
		Rows:     rows,
		TileSize: s.grid.TileSize(),
		Tiles:    s.grid.Tiles(),
		Agents:   s.Agents(),
	}
}
