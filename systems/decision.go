package systems

import (
	"fmt"

	"github.com/pthm-cable/pasture/components"
	"github.com/pthm-cable/pasture/config"
	"github.com/pthm-cable/pasture/oracle"
)

// DecisionEngine consults the oracle when an agent's cached decision is stale,
// resolves intents into targets, and applies the interrupt policy.
type DecisionEngine struct {
	oracle oracle.Oracle
	cache  *DecisionCache
	coster PathCoster
	wander *Wanderer

	cacheMaxAge     int64
	changeDelta     float32
	lowEnergy       float32
	interrupt       float32
	interruptActive float32
	urgencyFloor    float32
	costScale       float32
	candidates      int
	searchRadius    float32
	huntRadius      float32
	arrival         float32

	query agentQuery
	hits  []ResourceHit
}

// plan is a resolved intent ready to commit.
type plan struct {
	intent oracle.Intent
	target components.Target
	prey   components.AgentID
}

// NewDecisionEngine creates a decision engine around an oracle.
func NewDecisionEngine(env *Env, o oracle.Oracle, cache *DecisionCache) *DecisionEngine {
	c := env.Cfg.Decision
	return &DecisionEngine{
		oracle:          o,
		cache:           cache,
		coster:          NewPathCoster(c.Path),
		wander:          NewWanderer(c),
		cacheMaxAge:     c.CacheMaxAge,
		changeDelta:     float32(c.ChangeDelta),
		lowEnergy:       float32(c.LowEnergyFraction),
		interrupt:       float32(c.InterruptThreshold),
		interruptActive: float32(c.InterruptThresholdActive),
		urgencyFloor:    float32(c.UrgencyFloor),
		costScale:       float32(c.CostScale),
		candidates:      c.ResourceCandidates,
		searchRadius:    float32(c.ResourceSearchRadius),
		huntRadius:      float32(c.HuntRadius),
		arrival:         float32(env.Cfg.Movement.ArrivalThreshold),
	}
}

// SetOracle swaps the oracle. Cached decisions stay valid.
func (s *DecisionEngine) SetOracle(o oracle.Oracle) { s.oracle = o }

// Cache returns the decision cache.
func (s *DecisionEngine) Cache() *DecisionCache { return s.cache }

// Update re-decides for one agent if its cache entry is absent or stale.
func (s *DecisionEngine) Update(env *Env, a AgentRef) {
	if a.Vit.Doomed() {
		return
	}
	sp := env.species(a.Org.Species)
	emergency := s.emergency(a, sp)

	if entry, ok := s.cache.Get(a.Org.ID); ok && !s.stale(env, a, &entry, emergency) {
		env.Counters.CacheHits++
		s.track(env, a)
		return
	}

	env.Counters.Decisions++
	in := s.consult(env, a, sp)
	if a.Needs.Fatigue >= components.NeedMax {
		in = oracle.RestIntent(max(in.Urgency, a.Needs.Fatigue))
	}
	p := s.resolve(env, a, sp, in)
	s.cache.Put(a.Org.ID, CacheEntry{
		Intent: p.intent,
		Prey:   p.prey,
		Needs:  *a.Needs,
		Energy: a.Energy.Current,
		Tick:   env.Tick,
	})
	s.apply(env, a, p, emergency)
}

func (s *DecisionEngine) energyCritical(a AgentRef, sp *config.SpeciesDerived) bool {
	return a.Energy.Current < s.lowEnergy*sp.MaxEnergy
}

func (s *DecisionEngine) emergency(a AgentRef, sp *config.SpeciesDerived) bool {
	return a.Needs.Fatigue >= components.NeedMax || s.energyCritical(a, sp)
}

// stale reports whether the cached decision must be replaced.
func (s *DecisionEngine) stale(env *Env, a AgentRef, e *CacheEntry, emergency bool) bool {
	switch {
	case a.Beh.State == components.StateIdle:
		return true
	case needsMoved(a.Needs, &e.Needs, s.changeDelta):
		return true
	case env.Tick-e.Tick > s.cacheMaxAge:
		return true
	// A cached Rest is exempt so a collapsed sleeper is not re-decided every tick.
	case emergency && e.Intent.Kind != oracle.Rest:
		return true
	case e.Intent.Kind == oracle.SeekResource && e.Intent.Resource == oracle.Prey:
		return !s.alive(env, e.Prey)
	}
	return false
}

func (s *DecisionEngine) alive(env *Env, id components.AgentID) bool {
	if id == components.NoAgent || env.Agents == nil {
		return false
	}
	_, _, _, ok := env.Agents.Locate(id)
	return ok && !env.Agents.Doomed(id)
}

// consult calls the oracle, isolating errors and panics to this agent.
func (s *DecisionEngine) consult(env *Env, a AgentRef, sp *config.SpeciesDerived) oracle.Intent {
	needs := oracle.NeedsSnapshot{
		Hunger:  a.Needs.Hunger,
		Thirst:  a.Needs.Thirst,
		Fatigue: a.Needs.Fatigue,
		Diet:    sp.Diet,
	}
	energy := oracle.EnergySnapshot{Current: a.Energy.Current, Max: a.Energy.Max}

	s.query.bind(env, a)
	in, err := s.call(a.Org.ID, needs, energy)
	s.query.unbind()

	if err != nil {
		env.Counters.OracleFailures++
		env.Log.Warn("oracle_failed", "agent", a.Org.ID, "tick", env.Tick, "err", err)
		return oracle.WanderIntent(0)
	}
	return in.Normalize()
}

func (s *DecisionEngine) call(id components.AgentID, needs oracle.NeedsSnapshot, energy oracle.EnergySnapshot) (in oracle.Intent, err error) {
	if s.oracle == nil {
		return in, oracle.ErrUnavailable
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", oracle.ErrUnavailable, r)
		}
	}()
	return s.oracle.Decide(id, needs, energy, &s.query)
}

// resolve turns an intent into a plan with a concrete target and a
// terrain-adjusted urgency.
func (s *DecisionEngine) resolve(env *Env, a AgentRef, sp *config.SpeciesDerived, in oracle.Intent) plan {
	switch in.Kind {
	case oracle.Rest:
		return plan{intent: in}
	case oracle.SeekResource:
		var (
			tx, ty float32
			prey   components.AgentID
			found  bool
		)
		if in.Resource == oracle.Prey {
			prey, tx, ty, found = s.nearestPrey(env, a, sp)
		} else {
			tx, ty, found = s.nearestResource(env, a, sp, in.Resource)
		}
		if !found {
			env.Counters.WanderFallbacks++
			return s.wanderPlan(env, a, sp, 0)
		}
		cost := s.coster.Cost(env.Terrain, sp, a.Pos.X, a.Pos.Y, tx, ty)
		adjusted := in.Urgency * expf(-cost/s.costScale)
		if adjusted < s.urgencyFloor && !s.energyCritical(a, sp) {
			env.Counters.WanderFallbacks++
			return s.wanderPlan(env, a, sp, adjusted)
		}
		in.Urgency = adjusted
		return plan{intent: in, target: components.Target{X: tx, Y: ty, Active: true}, prey: prey}
	default:
		return s.wanderPlan(env, a, sp, in.Urgency)
	}
}

func (s *DecisionEngine) wanderPlan(env *Env, a AgentRef, sp *config.SpeciesDerived, urgency float32) plan {
	p := plan{intent: oracle.WanderIntent(urgency)}
	driving := max(a.Needs.Hunger, a.Needs.Thirst)
	if x, y, ok := s.wander.Pick(env, sp, a.Pos.X, a.Pos.Y, driving); ok {
		p.target = components.Target{X: x, Y: y, Active: true}
	}
	return p
}

// nearestResource picks the cheapest of the nearest indexed tiles.
func (s *DecisionEngine) nearestResource(env *Env, a AgentRef, sp *config.SpeciesDerived, kind components.ResourceKind) (float32, float32, bool) {
	s.hits = env.Resources.FindNearestInto(s.hits, a.Pos.X, a.Pos.Y, kind, s.candidates, s.searchRadius)
	if len(s.hits) == 0 {
		return 0, 0, false
	}
	best := 0
	bestCost := s.coster.Cost(env.Terrain, sp, a.Pos.X, a.Pos.Y, s.hits[0].X, s.hits[0].Y)
	for i := 1; i < len(s.hits); i++ {
		c := s.coster.Cost(env.Terrain, sp, a.Pos.X, a.Pos.Y, s.hits[i].X, s.hits[i].Y)
		if c < bestCost {
			best, bestCost = i, c
		}
	}
	return s.hits[best].X, s.hits[best].Y, true
}

// nearestPrey finds the closest live agent of the species' prey.
func (s *DecisionEngine) nearestPrey(env *Env, a AgentRef, sp *config.SpeciesDerived) (components.AgentID, float32, float32, bool) {
	if !sp.HasPrey {
		return components.NoAgent, 0, 0, false
	}
	s.query.bind(env, a)
	defer s.query.unbind()
	prey := sp.Prey
	near := s.query.nearest(s.huntRadius, &prey)
	if len(near) == 0 {
		return components.NoAgent, 0, 0, false
	}
	return near[0].ID, a.Pos.X + near[0].DX, a.Pos.Y + near[0].DY, true
}

// apply commits a plan when the interrupt policy allows it. A rejected plan
// still refreshes the current target.
func (s *DecisionEngine) apply(env *Env, a AgentRef, p plan, emergency bool) {
	b := a.Beh
	threshold := s.interrupt
	if b.State.Consuming() {
		threshold = s.interruptActive
	}
	if b.State != components.StateIdle && !emergency && p.intent.Urgency-b.Urgency < threshold {
		env.Counters.InterruptRejected++
		s.refresh(env, a, p)
		return
	}
	if b.State != components.StateIdle {
		env.Counters.InterruptAccepted++
	}
	s.commit(a, p)
}

func (s *DecisionEngine) commit(a AgentRef, p plan) {
	b := a.Beh
	b.Intent = p.intent.Kind
	b.Resource = p.intent.Resource
	b.Urgency = p.intent.Urgency
	b.Prey = p.prey
	b.Meal = 0

	if p.intent.Kind == oracle.Rest {
		b.State = components.StateSleeping
		b.Target.Clear()
		*a.Vel = components.Velocity{}
		return
	}
	if p.target.Active && distance(a.Pos.X, a.Pos.Y, p.target.X, p.target.Y) > s.arrival {
		b.Target = p.target
		b.State = components.StateMoving
		return
	}
	b.Target.Clear()
	b.State = components.StateIdle
	*a.Vel = components.Velocity{}
}

// refresh updates the target of the committed intent without changing it.
func (s *DecisionEngine) refresh(env *Env, a AgentRef, p plan) {
	b := a.Beh
	if b.State != components.StateMoving {
		return
	}
	if b.Intent == oracle.SeekResource && b.Resource == oracle.Prey {
		s.track(env, a)
		return
	}
	if p.target.Active && p.intent.Kind == b.Intent && p.intent.Resource == b.Resource {
		b.Target = p.target
	}
}

// track moves a hunter's target to its prey's current position. A hunter whose
// prey is gone stops so it is re-decided next tick.
func (s *DecisionEngine) track(env *Env, a AgentRef) {
	b := a.Beh
	if b.State != components.StateMoving || b.Intent != oracle.SeekResource || b.Resource != oracle.Prey {
		return
	}
	if !s.alive(env, b.Prey) {
		b.Halt(a.Vel)
		b.Prey = components.NoAgent
		return
	}
	x, y, _, _ := env.Agents.Locate(b.Prey)
	b.Target = components.Target{X: x, Y: y, Active: true}
}
