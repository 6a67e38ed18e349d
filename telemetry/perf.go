package telemetry

import (
	"log/slog"
	"time"
)

// Phase names for the simulation tick.
const (
	PhaseSpatialIndex = "spatial_index"
	PhaseNeeds        = "needs"
	PhaseAge          = "age"
	PhaseDecision     = "decision"
	PhaseMovement     = "movement"
	PhaseConsumption  = "consumption"
	PhaseMortality    = "mortality"
	PhaseCleanup      = "cleanup"
	PhaseRegrowth     = "regrowth"
	PhaseTelemetry    = "telemetry"
)

// Phases lists the tick phases in execution order.
var Phases = []string{
	PhaseSpatialIndex, PhaseNeeds, PhaseAge, PhaseDecision, PhaseMovement,
	PhaseConsumption, PhaseMortality, PhaseCleanup, PhaseRegrowth, PhaseTelemetry,
}

// PerfSample holds timing data for a single tick.
type PerfSample struct {
	TickDuration time.Duration
	Phases       map[string]time.Duration
}

// PerfCollector tracks performance metrics over a rolling window.
type PerfCollector struct {
	windowSize    int
	budget        time.Duration
	samples       []PerfSample
	writeIndex    int
	sampleCount   int
	overBudget    int
	currentPhases map[string]time.Duration
	tickStart     time.Time
	phaseStart    time.Time
	lastPhase     string
	now           func() time.Time
}

// NewPerfCollector creates a new performance collector.
// windowSize: number of ticks to average over.
// budget: tick duration above which a tick counts as over budget; 0 disables the check.
func NewPerfCollector(windowSize int, budget time.Duration) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		windowSize:    windowSize,
		budget:        budget,
		samples:       make([]PerfSample, windowSize),
		currentPhases: make(map[string]time.Duration),
		now:           time.Now,
	}
}

// StartTick begins timing a new simulation tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = p.now()
	p.currentPhases = make(map[string]time.Duration, len(Phases))
	p.lastPhase = ""
}

// StartPhase begins timing a specific phase, ending the previous one.
func (p *PerfCollector) StartPhase(phase string) {
	now := p.now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// EndTick finishes timing the current tick and records the sample. It
// reports whether the tick exceeded the budget.
func (p *PerfCollector) EndTick() bool {
	now := p.now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
		p.lastPhase = ""
	}

	sample := PerfSample{
		TickDuration: now.Sub(p.tickStart),
		Phases:       p.currentPhases,
	}

	p.samples[p.writeIndex] = sample
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}

	over := p.budget > 0 && sample.TickDuration > p.budget
	if over {
		p.overBudget++
	}
	return over
}

// Last returns the most recent sample.
func (p *PerfCollector) Last() PerfSample {
	if p.sampleCount == 0 {
		return PerfSample{}
	}
	return p.samples[(p.writeIndex-1+p.windowSize)%p.windowSize]
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	// Tick timing
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration

	// Phase breakdown (average durations)
	PhaseAvg map[string]time.Duration

	// Phase percentages of total tick time
	PhasePct map[string]float64

	// Throughput
	TicksPerSecond float64

	// Ticks over budget since the collector was created
	OverBudget int
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	if p.sampleCount == 0 {
		return PerfStats{
			PhaseAvg:   make(map[string]time.Duration),
			PhasePct:   make(map[string]float64),
			OverBudget: p.overBudget,
		}
	}

	var totalTick time.Duration
	var minTick, maxTick time.Duration
	phaseSum := make(map[string]time.Duration)

	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		totalTick += s.TickDuration

		if i == 0 || s.TickDuration < minTick {
			minTick = s.TickDuration
		}
		if s.TickDuration > maxTick {
			maxTick = s.TickDuration
		}

		for phase, dur := range s.Phases {
			phaseSum[phase] += dur
		}
	}

	avgTick := totalTick / time.Duration(p.sampleCount)

	phaseAvg := make(map[string]time.Duration)
	phasePct := make(map[string]float64)
	for phase, sum := range phaseSum {
		phaseAvg[phase] = sum / time.Duration(p.sampleCount)
		if avgTick > 0 {
			phasePct[phase] = float64(phaseAvg[phase]) / float64(avgTick) * 100
		}
	}

	var ticksPerSec float64
	if avgTick > 0 {
		ticksPerSec = float64(time.Second) / float64(avgTick)
	}

	return PerfStats{
		AvgTickDuration: avgTick,
		MinTickDuration: minTick,
		MaxTickDuration: maxTick,
		PhaseAvg:        phaseAvg,
		PhasePct:        phasePct,
		TicksPerSecond:  ticksPerSec,
		OverBudget:      p.overBudget,
	}
}

// LogStats logs performance statistics.
func (s PerfStats) LogStats(log *slog.Logger) {
	if log == nil {
		log = slog.Default()
	}
	attrs := []any{
		"avg_tick_us", s.AvgTickDuration.Microseconds(),
		"min_tick_us", s.MinTickDuration.Microseconds(),
		"max_tick_us", s.MaxTickDuration.Microseconds(),
		"ticks_per_sec", int(s.TicksPerSecond),
		"over_budget", s.OverBudget,
	}

	for _, phase := range Phases {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, phase+"_pct", float64(int(pct*10))/10.0)
		}
	}

	log.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("min_tick_us", s.MinTickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
		slog.Int("over_budget", s.OverBudget),
	}

	for _, phase := range Phases {
		if pct, ok := s.PhasePct[phase]; ok {
			attrs = append(attrs, slog.Float64(phase+"_pct", pct))
		}
	}

	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	WindowEnd      int64   `csv:"window_end"`
	AvgTickUS      int64   `csv:"avg_tick_us"`
	MinTickUS      int64   `csv:"min_tick_us"`
	MaxTickUS      int64   `csv:"max_tick_us"`
	TicksPerSec    float64 `csv:"ticks_per_sec"`
	OverBudget     int     `csv:"over_budget"`
	SpatialPct     float64 `csv:"spatial_index_pct"`
	NeedsPct       float64 `csv:"needs_pct"`
	AgePct         float64 `csv:"age_pct"`
	DecisionPct    float64 `csv:"decision_pct"`
	MovementPct    float64 `csv:"movement_pct"`
	ConsumptionPct float64 `csv:"consumption_pct"`
	MortalityPct   float64 `csv:"mortality_pct"`
	CleanupPct     float64 `csv:"cleanup_pct"`
	RegrowthPct    float64 `csv:"regrowth_pct"`
	TelemetryPct   float64 `csv:"telemetry_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(windowEnd int64) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:      windowEnd,
		AvgTickUS:      s.AvgTickDuration.Microseconds(),
		MinTickUS:      s.MinTickDuration.Microseconds(),
		MaxTickUS:      s.MaxTickDuration.Microseconds(),
		TicksPerSec:    s.TicksPerSecond,
		OverBudget:     s.OverBudget,
		SpatialPct:     s.PhasePct[PhaseSpatialIndex],
		NeedsPct:       s.PhasePct[PhaseNeeds],
		AgePct:         s.PhasePct[PhaseAge],
		DecisionPct:    s.PhasePct[PhaseDecision],
		MovementPct:    s.PhasePct[PhaseMovement],
		ConsumptionPct: s.PhasePct[PhaseConsumption],
		MortalityPct:   s.PhasePct[PhaseMortality],
		CleanupPct:     s.PhasePct[PhaseCleanup],
		RegrowthPct:    s.PhasePct[PhaseRegrowth],
		TelemetryPct:   s.PhasePct[PhaseTelemetry],
	}
}
