// Package sim owns the agent store and runs the per-tick engine pipeline.
package sim

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"slices"
	"time"

	"github.com/pthm-cable/pasture/components"
	"github.com/pthm-cable/pasture/config"
	"github.com/pthm-cable/pasture/oracle"
	"github.com/pthm-cable/pasture/systems"
	"github.com/pthm-cable/pasture/telemetry"
	"github.com/pthm-cable/pasture/terrain"
)

var (
	// ErrUnknownSpecies is returned by CreateAgent for a species outside the enum.
	ErrUnknownSpecies = errors.New("unknown species")
	// ErrInvalidPosition is returned by CreateAgent for a non-finite or off-world position.
	ErrInvalidPosition = errors.New("invalid position")
)

// Options configures a Simulation.
type Options struct {
	Seed   int64
	Oracle oracle.Oracle // nil uses the utility oracle from config
	Logger *slog.Logger  // nil uses slog.Default()

	// OnEvent receives births, deaths, kills, depletions and regrowths.
	OnEvent func(telemetry.Event)
	// OnDeath receives every removed agent after it left all structures.
	OnDeath func(systems.Death)
	// OnWindow receives each flushed stats window with the perf window.
	OnWindow func(telemetry.WindowStats, telemetry.PerfStats)
}

// Simulation holds the complete simulation state.
type Simulation struct {
	cfg   *config.Config
	grid  *terrain.Grid
	env   *systems.Env
	store *Store
	log   *slog.Logger
	opts  Options

	// Engines in tick order
	needs       *systems.NeedsEngine
	age         *systems.AgeEngine
	decision    *systems.DecisionEngine
	movement    *systems.MovementEngine
	consumption *systems.ConsumptionEngine
	mortality   *systems.MortalityEngine
	cache       *systems.DecisionCache
	regrowth    *systems.Regrowth

	collector *telemetry.Collector
	perf      *telemetry.PerfCollector

	// State
	tick     int64
	nextID   components.AgentID
	ticking  bool
	removals []components.AgentID
	deaths   []systems.Death
	entries  []systems.SpatialEntry
}

// New creates a simulation over grid. The grid is mutated by forage depletion
// and regrowth.
func New(cfg *config.Config, grid *terrain.Grid, opts Options) *Simulation {
	if cfg == nil {
		cfg = config.Default()
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	o := opts.Oracle
	if o == nil {
		o = oracle.NewUtility(cfg.Oracle)
	}

	env := systems.NewEnv(cfg, grid, rand.New(rand.NewSource(opts.Seed)), log)
	store := NewStore()
	env.Agents = store
	env.Resources.Build(grid, cfg.Spatial.ResourceStride)

	cache := systems.NewDecisionCache()
	budget := time.Duration(cfg.Physics.TickBudgetMS * float64(time.Millisecond))

	s := &Simulation{
		cfg:         cfg,
		grid:        grid,
		env:         env,
		store:       store,
		log:         log,
		opts:        opts,
		needs:       systems.NewNeedsEngine(env),
		age:         systems.NewAgeEngine(env),
		decision:    systems.NewDecisionEngine(env, o, cache),
		movement:    systems.NewMovementEngine(env),
		consumption: systems.NewConsumptionEngine(env),
		mortality:   systems.NewMortalityEngine(env),
		cache:       cache,
		regrowth:    systems.NewRegrowth(cfg.Resources.RegrowthTicks),
		collector:   telemetry.NewCollector(cfg.Telemetry.StatsWindow, cfg.Derived.DT32),
		perf:        telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow, budget),
		nextID:      1,
	}

	log.Info("simulation_created",
		"seed", opts.Seed,
		"cols", cfg.World.Cols,
		"rows", cfg.World.Rows,
		"water_tiles", env.Resources.Count(components.ResourceWater),
		"forage_tiles", env.Resources.Count(components.ResourceForage),
		"regrowth", s.regrowth.Enabled(),
	)
	return s
}

// Config returns the simulation configuration.
func (s *Simulation) Config() *config.Config { return s.cfg }

// Terrain returns the tile grid.
func (s *Simulation) Terrain() *terrain.Grid { return s.grid }

// CurrentTick returns the number of completed ticks.
func (s *Simulation) CurrentTick() int64 { return s.tick }

// Seed returns the RNG seed.
func (s *Simulation) Seed() int64 { return s.opts.Seed }

// Len returns the live agent count.
func (s *Simulation) Len() int { return s.store.Len() }

// SetOracle replaces the decision oracle. Cached decisions stay valid.
func (s *Simulation) SetOracle(o oracle.Oracle) { s.decision.SetOracle(o) }

// Deaths returns the agents removed since the last tick began.
func (s *Simulation) Deaths() []systems.Death { return s.deaths }

// Perf returns the performance collector.
func (s *Simulation) Perf() *telemetry.PerfCollector { return s.perf }

// CreateAgent adds an agent with zero needs, full energy and no target.
func (s *Simulation) CreateAgent(species components.Species, x, y float32, birthTick int64) (components.AgentID, error) {
	if species >= components.NumSpecies {
		return components.NoAgent, fmt.Errorf("create agent: %w: %d", ErrUnknownSpecies, species)
	}
	w, h := s.grid.Bounds()
	pos := components.Position{X: x, Y: y}
	if !pos.Finite() || x < 0 || y < 0 || x >= w || y >= h {
		return components.NoAgent, fmt.Errorf("create agent: %w: (%v, %v)", ErrInvalidPosition, x, y)
	}

	sp := &s.cfg.Derived.Species[species]
	id := s.nextID
	s.nextID++

	s.store.add(&agentData{
		org:    components.Organism{ID: id, Species: species},
		pos:    pos,
		energy: components.Energy{Current: sp.MaxEnergy, Max: sp.MaxEnergy},
		age: components.Age{
			BirthTick:        birthTick,
			BaseLifespan:     sp.Lifespan,
			ExpectedLifespan: sp.Lifespan,
			HealthHistory:    sp.MaxEnergy,
		},
	})

	s.collector.RecordBirth(species)
	s.emit(telemetry.NewBirthEvent(s.tick, id, species))
	s.log.Debug("agent_created", "agent", id, "species", species.String(), "x", x, "y", y)
	return id, nil
}

// RemoveAgent removes an agent from every structure. During a tick the removal
// is queued and applied once iteration completes. It reports whether the agent
// existed and was not already queued.
func (s *Simulation) RemoveAgent(id components.AgentID) bool {
	if _, _, _, ok := s.store.Locate(id); !ok {
		return false
	}
	if s.ticking {
		if slices.Contains(s.removals, id) {
			return false
		}
		s.removals = append(s.removals, id)
		return true
	}
	return s.removeNow(id)
}

func (s *Simulation) removeNow(id components.AgentID) bool {
	a, ok := s.store.Get(id)
	if !ok {
		return false
	}
	d := systems.Death{
		ID:      id,
		Species: a.Org.Species,
		Cause:   components.CauseRemoved,
		Tick:    s.tick,
		AgeTick: s.tick - a.Age.BirthTick,
		X:       a.Pos.X,
		Y:       a.Pos.Y,
	}
	if !systems.Remove(s.env, s.store, s.cache, id) {
		return false
	}
	s.recordDeath(d)
	return true
}

// Tick advances the simulation by one step of dt seconds. A non-positive or
// non-finite dt falls back to the configured step.
func (s *Simulation) Tick(dt float32) {
	if !(dt > 0) || math.IsInf(float64(dt), 0) {
		dt = s.cfg.Derived.DT32
	}
	s.tick++
	env := s.env
	env.BeginTick(s.tick, dt)
	s.deaths = s.deaths[:0]
	s.ticking = true

	s.perf.StartTick()

	s.perf.StartPhase(telemetry.PhaseSpatialIndex)
	s.rebuildSpatial()

	s.perf.StartPhase(telemetry.PhaseNeeds)
	s.store.Each(func(a systems.AgentRef) { s.needs.Update(env, a) })

	s.perf.StartPhase(telemetry.PhaseAge)
	s.store.Each(func(a systems.AgentRef) { s.age.Update(env, a) })

	s.perf.StartPhase(telemetry.PhaseDecision)
	s.store.Each(func(a systems.AgentRef) { s.decision.Update(env, a) })

	s.perf.StartPhase(telemetry.PhaseMovement)
	s.store.Each(func(a systems.AgentRef) { s.movement.Update(env, a) })

	s.perf.StartPhase(telemetry.PhaseConsumption)
	s.store.Each(func(a systems.AgentRef) { s.consumption.Update(env, a) })

	s.perf.StartPhase(telemetry.PhaseMortality)
	s.store.Each(func(a systems.AgentRef) { s.mortality.Update(env, a) })

	s.perf.StartPhase(telemetry.PhaseCleanup)
	s.emitKills()
	for _, d := range s.mortality.Reap(env, s.store, s.cache) {
		s.recordDeath(d)
	}
	s.ticking = false
	s.drainRemovals()

	s.perf.StartPhase(telemetry.PhaseRegrowth)
	s.regrowth.Schedule(env.Depleted)
	grown := s.regrowth.Update(env)
	for _, ev := range env.Depleted {
		s.emit(telemetry.NewTileEvent(telemetry.EventDepletion, ev, s.tick))
	}
	for _, ev := range env.Regrown {
		s.emit(telemetry.NewTileEvent(telemetry.EventRegrowth, ev, s.tick))
	}

	s.perf.StartPhase(telemetry.PhaseTelemetry)
	s.collector.RecordTick(env.Counters)
	s.collector.RecordRegrowth(grown)
	s.flushTelemetry()

	if s.perf.EndTick() {
		s.log.Warn("tick_over_budget",
			"tick", s.tick,
			"duration_us", s.perf.Last().TickDuration.Microseconds(),
			"agents", s.store.Len(),
		)
	}
}

// rebuildSpatial reinserts every agent into the spatial index.
func (s *Simulation) rebuildSpatial() {
	s.entries = s.entries[:0]
	s.store.Each(func(a systems.AgentRef) {
		s.entries = append(s.entries, systems.SpatialEntry{
			ID:      a.Org.ID,
			X:       a.Pos.X,
			Y:       a.Pos.Y,
			Species: a.Org.Species,
		})
	})
	s.env.Spatial.Rebuild(s.entries)
}

// drainRemovals applies host removals queued during the tick.
func (s *Simulation) drainRemovals() {
	for len(s.removals) > 0 {
		queued := s.removals
		s.removals = nil
		for _, id := range queued {
			s.removeNow(id)
		}
	}
}

func (s *Simulation) recordDeath(d systems.Death) {
	s.deaths = append(s.deaths, d)
	s.collector.RecordDeath(d.Species, d.Cause)
	s.emit(telemetry.NewDeathEvent(d))
	s.log.Debug("agent_died",
		"agent", d.ID,
		"species", d.Species.String(),
		"cause", d.Cause.String(),
		"tick", d.Tick,
	)
	if s.opts.OnDeath != nil {
		s.opts.OnDeath(d)
	}
}

// emitKills reports this tick's kill claims in prey order.
func (s *Simulation) emitKills() {
	if s.opts.OnEvent == nil || len(s.env.Kills) == 0 {
		return
	}
	prey := make([]components.AgentID, 0, len(s.env.Kills))
	for id := range s.env.Kills {
		prey = append(prey, id)
	}
	slices.Sort(prey)
	for _, id := range prey {
		s.emit(telemetry.NewKillEvent(s.tick, s.env.Kills[id], id))
	}
}

func (s *Simulation) emit(ev telemetry.Event) {
	if s.opts.OnEvent != nil {
		s.opts.OnEvent(ev)
	}
}

// flushTelemetry closes the stats window when it is due.
func (s *Simulation) flushTelemetry() {
	if !s.collector.ShouldFlush(s.tick) {
		return
	}
	stats := s.collector.Flush(s.tick, s.Agents(),
		s.env.Resources.Count(components.ResourceForage),
		s.env.Resources.Count(components.ResourceWater))
	if s.opts.OnWindow != nil {
		s.opts.OnWindow(stats, s.perf.Stats())
	}
}
