package systems

import (
	"github.com/pthm-cable/pasture/components"
)

// ConsumptionEngine drives the Idle/Eating/Drinking/Sleeping transitions and
// reduces needs while an agent consumes.
type ConsumptionEngine struct {
	satisfaction  float32
	eatRate       float32
	predationRate float32
	drinkRate     float32
	sleepRate     float32
	depletion     float64
	interact      float32
	meal          float32
}

// NewConsumptionEngine creates a consumption engine.
func NewConsumptionEngine(env *Env) *ConsumptionEngine {
	c := env.Cfg.Consumption
	return &ConsumptionEngine{
		satisfaction:  float32(c.SatisfactionThreshold),
		eatRate:       float32(c.EatRate),
		predationRate: float32(c.PredationRate),
		drinkRate:     float32(c.DrinkRate),
		sleepRate:     float32(c.SleepRate),
		depletion:     c.DepletionChance,
		interact:      float32(c.InteractRange),
		meal:          float32(c.MealSize),
	}
}

// Update advances one agent's consumption state machine.
func (s *ConsumptionEngine) Update(env *Env, a AgentRef) {
	if a.Vit.Doomed() {
		return
	}
	switch a.Beh.State {
	case components.StateIdle:
		s.start(env, a)
	case components.StateEating, components.StateDrinking:
		s.consume(env, a)
	case components.StateSleeping:
		s.sleep(a)
	}
}

// start begins consuming when an idle agent committed to a resource is on or
// next to it and still needs it.
func (s *ConsumptionEngine) start(env *Env, a AgentRef) {
	b := a.Beh
	if b.Intent != components.IntentSeekResource {
		return
	}
	if a.Needs.Get(b.Resource.Need()) <= s.satisfaction {
		return
	}

	if b.Resource == components.ResourcePrey {
		if !s.claim(env, a) {
			return
		}
		b.Meal = s.meal
	} else if _, _, ok := adjacentResource(env.Terrain, a.Pos.X, a.Pos.Y, b.Resource); !ok {
		return
	}
	b.State = b.Resource.ConsumeState()
	b.Target.Clear()
	*a.Vel = components.Velocity{}
}

// claim posts a kill claim on the agent's prey. The first claim per prey per
// tick wins.
func (s *ConsumptionEngine) claim(env *Env, a AgentRef) bool {
	prey := a.Beh.Prey
	if prey == components.NoAgent || env.Agents == nil || env.Agents.Doomed(prey) {
		return false
	}
	if _, taken := env.Kills[prey]; taken {
		return false
	}
	px, py, _, ok := env.Agents.Locate(prey)
	if !ok || distanceSq(a.Pos.X, a.Pos.Y, px, py) > s.interact*s.interact {
		return false
	}
	env.Kills[prey] = a.Org.ID
	env.Counters.Kills++
	return true
}

func (s *ConsumptionEngine) consume(env *Env, a AgentRef) {
	b := a.Beh
	need := components.NeedHunger
	if b.State == components.StateDrinking {
		need = components.NeedThirst
	}
	v := a.Needs.Get(need)
	if v < s.satisfaction {
		s.finish(a)
		return
	}

	switch {
	case b.State == components.StateDrinking:
		a.Needs.Set(need, v-s.drinkRate)
	case b.Resource == components.ResourcePrey:
		if b.Meal <= 0 {
			s.finish(a)
			return
		}
		bite := min(s.predationRate, b.Meal)
		a.Needs.Set(need, v-bite)
		b.Meal -= bite
	default:
		tx, ty, ok := adjacentResource(env.Terrain, a.Pos.X, a.Pos.Y, components.ResourceForage)
		if !ok {
			s.finish(a)
			return
		}
		a.Needs.Set(need, v-s.eatRate)
		if s.depletion > 0 && env.Rand.Float64() < s.depletion {
			s.deplete(env, tx, ty)
		}
	}
}

func (s *ConsumptionEngine) deplete(env *Env, tx, ty int) {
	env.Terrain.SetTile(tx, ty, env.Cfg.Derived.Depleted)
	indexed := env.Resources.RemoveTile(tx, ty, components.ResourceForage)
	env.Depleted = append(env.Depleted, TileEvent{TX: tx, TY: ty, Tick: env.Tick, Indexed: indexed})
	env.Counters.Depletions++
}

func (s *ConsumptionEngine) sleep(a AgentRef) {
	if a.Needs.Fatigue < s.satisfaction {
		s.finish(a)
		return
	}
	a.Needs.Set(components.NeedFatigue, a.Needs.Fatigue-s.sleepRate)
}

func (s *ConsumptionEngine) finish(a AgentRef) {
	b := a.Beh
	b.State = components.StateIdle
	b.Urgency = 0
	b.Meal = 0
	b.Prey = components.NoAgent
	*a.Vel = components.Velocity{}
}

// adjacentResource finds a tile of kind under (x,y) or in the surrounding 3x3.
func adjacentResource(tm TerrainMap, x, y float32, kind components.ResourceKind) (int, int, bool) {
	tx, ty := tm.TileCoord(x, y)
	if k, ok := KindOf(tm.TileAt(tx, ty)); ok && k == kind {
		return tx, ty, true
	}
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if k, ok := KindOf(tm.TileAt(tx+dx, ty+dy)); ok && k == kind {
				return tx + dx, ty + dy, true
			}
		}
	}
	return 0, 0, false
}
