package systems

import (
	"github.com/pthm-cable/pasture/components"
)

// NeedsEngine advances hunger, thirst, fatigue and energy once per tick.
type NeedsEngine struct {
	baseDrain        float32
	restorationFloor float32
}

// NewNeedsEngine creates a needs engine.
func NewNeedsEngine(env *Env) *NeedsEngine {
	return &NeedsEngine{
		baseDrain:        float32(env.Cfg.Energy.BaseDrain),
		restorationFloor: float32(env.Cfg.Energy.RestorationFloor),
	}
}

// Update applies one tick of need accrual and energy change to an agent.
func (s *NeedsEngine) Update(env *Env, a AgentRef) {
	if a.Vit.Doomed() {
		return
	}
	// An agent that starts the tick with no energy dies this tick, asleep or not.
	if a.Energy.Current <= 0 {
		a.Vit.Cause = components.CauseEnergyDepleted
		return
	}
	if !a.Pos.Finite() {
		a.Pos.X, a.Pos.Y = env.center()
		env.Log.Warn("agent_position_reset", "agent", a.Org.ID, "engine", "needs")
	}

	d := &env.Cfg.Derived
	sp := env.species(a.Org.Species)
	tile := env.Terrain.At(a.Pos.X, a.Pos.Y)
	terrainMult := sp.EnergyCost[tile]
	state := a.Beh.State
	if state >= components.NumStates {
		state = components.StateIdle
		a.Beh.State = state
	}

	for n := components.Need(0); n < components.NumNeeds; n++ {
		rate := d.BaseRates[n] * sp.NeedMult[n] * d.Activity[state][n] * terrainMult
		a.Needs.Set(n, a.Needs.Get(n)+rate)
	}

	mult := d.EnergyState[state]
	switch state {
	case components.StateSleeping:
		mult *= s.restorationFactor(a.Needs)
	case components.StateMoving:
		mult *= terrainMult
	}
	a.Energy.Current -= s.baseDrain * mult
	a.Energy.Clamp()

	// Exhaustion collapse. On drowning terrain the agent keeps going and
	// mortality decides.
	if a.Needs.Fatigue >= components.NeedMax && state != components.StateSleeping && !d.Drowning[tile] {
		a.Beh.State = components.StateSleeping
		a.Beh.Intent = components.IntentRest
		a.Beh.Urgency = a.Needs.Fatigue
		a.Beh.Target.Clear()
		a.Beh.Prey = components.NoAgent
		a.Beh.Meal = 0
		*a.Vel = components.Velocity{}
		env.Counters.Collapses++
	}
}

// restorationFactor scales sleep restoration by how fed and watered the agent
// is, never below the configured floor.
func (s *NeedsEngine) restorationFactor(n *components.Needs) float32 {
	fed := 1 - n.Hunger/components.NeedMax
	watered := 1 - n.Thirst/components.NeedMax
	return max(s.restorationFloor, (fed+watered)/2)
}
