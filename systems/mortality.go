package systems

import (
	"github.com/pthm-cable/pasture/components"
)

// Death describes one removed agent.
type Death struct {
	ID      components.AgentID
	Species components.Species
	Cause   components.DeathCause
	Tick    int64
	AgeTick int64
	X, Y    float32
}

// EntityRemover deletes an agent from entity storage. It reports whether the
// agent existed.
type EntityRemover interface {
	RemoveEntity(id components.AgentID) bool
}

// MortalityEngine evaluates death conditions during iteration and removes the
// dead afterwards, so removal never disturbs an in-flight query.
type MortalityEngine struct {
	starvation  int32
	dehydration int32
	exhaustion  int32

	pending []Death
}

// NewMortalityEngine creates a mortality engine.
func NewMortalityEngine(env *Env) *MortalityEngine {
	c := env.Cfg.Mortality
	return &MortalityEngine{
		starvation:  c.StarvationGrace,
		dehydration: c.DehydrationGrace,
		exhaustion:  c.ExhaustionGrace,
	}
}

// Update checks one agent and queues it for removal if it died this tick.
func (s *MortalityEngine) Update(env *Env, a AgentRef) {
	v := a.Vit
	if v.Cause == components.CauseNone {
		v.Cause = s.evaluate(env, a)
	}
	if v.Cause != components.CauseNone {
		s.queue(env, a, v.Cause)
	}
}

func (s *MortalityEngine) evaluate(env *Env, a AgentRef) components.DeathCause {
	v := a.Vit
	if _, eaten := env.Kills[a.Org.ID]; eaten {
		return components.CausePredation
	}

	v.StarvingTicks = graceTick(v.StarvingTicks, a.Needs.Hunger)
	v.DehydratedTicks = graceTick(v.DehydratedTicks, a.Needs.Thirst)
	v.ExhaustedTicks = graceTick(v.ExhaustedTicks, a.Needs.Fatigue)

	tile := env.Terrain.At(a.Pos.X, a.Pos.Y)
	switch {
	case a.Needs.Fatigue >= components.NeedMax && env.Cfg.Derived.Drowning[tile]:
		return components.CauseDrowning
	case a.Energy.Current <= 0:
		return components.CauseEnergyDepleted
	case v.DehydratedTicks > s.dehydration:
		return components.CauseDehydration
	case v.StarvingTicks > s.starvation:
		return components.CauseStarvation
	case v.ExhaustedTicks > s.exhaustion:
		return components.CauseExhaustion
	}
	return components.CauseNone
}

// graceTick counts consecutive ticks a need has been at its maximum.
func graceTick(n int32, need float32) int32 {
	if need >= components.NeedMax {
		return n + 1
	}
	return 0
}

func (s *MortalityEngine) queue(env *Env, a AgentRef, cause components.DeathCause) {
	s.pending = append(s.pending, Death{
		ID:      a.Org.ID,
		Species: a.Org.Species,
		Cause:   cause,
		Tick:    env.Tick,
		AgeTick: env.Tick - a.Age.BirthTick,
		X:       a.Pos.X,
		Y:       a.Pos.Y,
	})
}

// Pending returns the number of queued removals.
func (s *MortalityEngine) Pending() int { return len(s.pending) }

// Reap removes every queued agent from storage, the spatial index and the
// decision cache. Agents hold no resource tiles, so the resource index is
// untouched. It returns the deaths actually applied.
func (s *MortalityEngine) Reap(env *Env, store EntityRemover, cache *DecisionCache) []Death {
	var out []Death
	for _, d := range s.pending {
		if Remove(env, store, cache, d.ID) {
			out = append(out, d)
		}
	}
	s.pending = s.pending[:0]
	return out
}

// Remove tears one agent down from every structure. It is idempotent.
func Remove(env *Env, store EntityRemover, cache *DecisionCache, id components.AgentID) bool {
	env.Spatial.Remove(id)
	if cache != nil {
		cache.Forget(id)
	}
	return store.RemoveEntity(id)
}
