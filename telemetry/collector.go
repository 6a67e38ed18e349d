package telemetry

import (
	"github.com/pthm-cable/pasture/components"
	"github.com/pthm-cable/pasture/systems"
)

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationTicks int64
	dt                  float32

	// Current window tracking
	windowStartTick int64

	// Event counters for current window
	births    [components.NumSpecies]int
	deaths    [components.NumSpecies]int
	causes    [components.NumDeathCauses]int
	counters  systems.Counters
	regrowths int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec float64, dt float32) *Collector {
	ticksPerWindow := int64(windowDurationSec/float64(dt) + 0.5)
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}
	return &Collector{
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// RecordBirth records an agent entering the simulation.
func (c *Collector) RecordBirth(s components.Species) {
	if s < components.NumSpecies {
		c.births[s]++
	}
}

// RecordDeath records a removal and its cause.
func (c *Collector) RecordDeath(s components.Species, cause components.DeathCause) {
	if s < components.NumSpecies {
		c.deaths[s]++
	}
	if cause < components.NumDeathCauses {
		c.causes[cause]++
	}
}

// RecordTick adds one tick's engine counters to the window.
func (c *Collector) RecordTick(n systems.Counters) {
	c.counters.Decisions += n.Decisions
	c.counters.CacheHits += n.CacheHits
	c.counters.OracleFailures += n.OracleFailures
	c.counters.InterruptAccepted += n.InterruptAccepted
	c.counters.InterruptRejected += n.InterruptRejected
	c.counters.WanderFallbacks += n.WanderFallbacks
	c.counters.Collapses += n.Collapses
	c.counters.Blocked += n.Blocked
	c.counters.Arrivals += n.Arrivals
	c.counters.Depletions += n.Depletions
	c.counters.Kills += n.Kills
}

// RecordRegrowth records tiles that turned back into forage.
func (c *Collector) RecordRegrowth(n int) {
	c.regrowths += n
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int64) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int64 {
	return c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
// agents is the population at window end; forage and water are the indexed
// resource tile counts.
func (c *Collector) Flush(currentTick int64, agents []AgentState, forage, water int) WindowStats {
	var (
		energy                  [components.NumSpecies][]float64
		hunger, thirst, fatigue []float64
		states                  [components.NumStates]int
		counts                  [components.NumSpecies]int
	)
	for i := range agents {
		a := &agents[i]
		if a.Species < components.NumSpecies {
			counts[a.Species]++
			energy[a.Species] = append(energy[a.Species], float64(a.Energy))
		}
		if a.State < components.NumStates {
			states[a.State]++
		}
		hunger = append(hunger, float64(a.Hunger))
		thirst = append(thirst, float64(a.Thirst))
		fatigue = append(fatigue, float64(a.Fatigue))
	}

	var hitRate float64
	if looked := c.counters.Decisions + c.counters.CacheHits; looked > 0 {
		hitRate = float64(c.counters.CacheHits) / float64(looked)
	}

	gMean, gP10, gP50, gP90 := ComputeEnergyStats(energy[components.SpeciesGrazer])
	pMean, pP10, pP50, pP90 := ComputeEnergyStats(energy[components.SpeciesPredator])
	hungerMean, _ := ComputeNeedStats(hunger)
	thirstMean, thirstStd := ComputeNeedStats(thirst)
	fatigueMean, _ := ComputeNeedStats(fatigue)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * float64(c.dt),

		GrazerCount:   counts[components.SpeciesGrazer],
		PredatorCount: counts[components.SpeciesPredator],

		GrazerBirths:   c.births[components.SpeciesGrazer],
		PredatorBirths: c.births[components.SpeciesPredator],
		GrazerDeaths:   c.deaths[components.SpeciesGrazer],
		PredatorDeaths: c.deaths[components.SpeciesPredator],

		DeathsStarvation:  c.causes[components.CauseStarvation],
		DeathsDehydration: c.causes[components.CauseDehydration],
		DeathsExhaustion:  c.causes[components.CauseExhaustion],
		DeathsDrowning:    c.causes[components.CauseDrowning],
		DeathsEnergy:      c.causes[components.CauseEnergyDepleted],
		DeathsOldAge:      c.causes[components.CauseOldAge],
		DeathsPoorHealth:  c.causes[components.CausePoorHealth],
		DeathsPredation:   c.causes[components.CausePredation],
		DeathsRemoved:     c.causes[components.CauseRemoved],

		Decisions:          c.counters.Decisions,
		CacheHits:          c.counters.CacheHits,
		CacheHitRate:       hitRate,
		OracleFailures:     c.counters.OracleFailures,
		InterruptsAccepted: c.counters.InterruptAccepted,
		InterruptsRejected: c.counters.InterruptRejected,
		WanderFallbacks:    c.counters.WanderFallbacks,

		Arrivals:   c.counters.Arrivals,
		Blocked:    c.counters.Blocked,
		Collapses:  c.counters.Collapses,
		Kills:      c.counters.Kills,
		Depletions: c.counters.Depletions,
		Regrowths:  c.regrowths,

		GrazerEnergyMean:   gMean,
		GrazerEnergyP10:    gP10,
		GrazerEnergyP50:    gP50,
		GrazerEnergyP90:    gP90,
		PredatorEnergyMean: pMean,
		PredatorEnergyP10:  pP10,
		PredatorEnergyP50:  pP50,
		PredatorEnergyP90:  pP90,

		HungerMean:  hungerMean,
		ThirstMean:  thirstMean,
		FatigueMean: fatigueMean,
		ThirstStd:   thirstStd,

		Idle:     states[components.StateIdle],
		Moving:   states[components.StateMoving],
		Eating:   states[components.StateEating],
		Drinking: states[components.StateDrinking],
		Sleeping: states[components.StateSleeping],

		ForageTiles: forage,
		WaterTiles:  water,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.births = [components.NumSpecies]int{}
	c.deaths = [components.NumSpecies]int{}
	c.causes = [components.NumDeathCauses]int{}
	c.counters = systems.Counters{}
	c.regrowths = 0

	return stats
}
