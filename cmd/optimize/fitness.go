package main

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/pasture/components"
	"github.com/pthm-cable/pasture/config"
	"github.com/pthm-cable/pasture/sim"
	"github.com/pthm-cable/pasture/telemetry"
	"github.com/pthm-cable/pasture/terrain"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	maxTicks   int64
	seeds      []int64
	baseConfig *config.Config
	baseYAML   []byte
	log        *slog.Logger

	mu          sync.Mutex
	lastQuality float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int64, seeds []int64, baseCfg *config.Config) (*FitnessEvaluator, error) {
	data, err := baseCfg.YAML()
	if err != nil {
		return nil, fmt.Errorf("encode base config: %w", err)
	}
	return &FitnessEvaluator{
		params:     params,
		maxTicks:   maxTicks,
		seeds:      seeds,
		baseConfig: baseCfg,
		baseYAML:   data,
		log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, nil
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// Minimum viable population: a run ends once grazers fall below this for
// extinctionGraceSec, or predators die out entirely.
const (
	minViablePop       = 3
	extinctionGraceSec = 30.0
	warmupSec          = 5.0
)

// runResult holds the results from a single simulation run.
type runResult struct {
	survivalTicks int64
	initial       int
	final         int
	windowStats   []telemetry.WindowStats
}

type seedResult struct {
	fitness float64
	quality float64
}

// Evaluate computes fitness for a parameter vector (lower = better).
// All seeds run in parallel; each owns its config copy and simulation.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			cfg := fe.copyConfig()
			fe.params.ApplyToConfig(cfg, x)
			r := fe.runSimulation(cfg, s)
			results[idx] = seedResult{
				fitness: fe.computeFitness(cfg, r),
				quality: fe.computeQuality(cfg, r),
			}
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalQuality float64
	for _, r := range results {
		totalFitness += r.fitness
		totalQuality += r.quality
	}
	n := float64(len(fe.seeds))

	fe.mu.Lock()
	fe.lastQuality = totalQuality / n
	fe.mu.Unlock()

	return totalFitness / n
}

// runSimulation executes a single headless run until functional extinction
// or maxTicks, whichever comes first.
func (fe *FitnessEvaluator) runSimulation(cfg *config.Config, seed int64) *runResult {
	result := &runResult{}

	grid := terrain.Generate(cfg.GenConfig(), seed)
	s := sim.New(cfg, grid, sim.Options{
		Seed:   seed,
		Logger: fe.log,
		OnWindow: func(stats telemetry.WindowStats, _ telemetry.PerfStats) {
			result.windowStats = append(result.windowStats, stats)
		},
	})
	p := cfg.Population
	result.initial, _ = s.Populate(p.Initial, p.PredatorRatio, p.MaxAgeFraction)
	hadPredators := s.Counts()[components.SpeciesPredator] > 0

	ticksPerSec := cfg.Derived.TicksPerSec
	graceTicks := int64(extinctionGraceSec * ticksPerSec)
	warmupTicks := int64(warmupSec * ticksPerSec)
	var grazersBelow int64

	for s.CurrentTick() < fe.maxTicks {
		s.Tick(0)

		tick := s.CurrentTick()
		if tick < warmupTicks {
			continue
		}

		counts := s.Counts()
		grazers, predators := counts[components.SpeciesGrazer], counts[components.SpeciesPredator]
		if grazers == 0 || (hadPredators && predators == 0) {
			result.survivalTicks = tick
			result.final = s.Len()
			return result
		}

		if grazers < minViablePop {
			grazersBelow++
		} else {
			grazersBelow = 0
		}
		if grazersBelow >= graceTicks {
			result.survivalTicks = tick
			result.final = s.Len()
			return result
		}
	}

	result.survivalTicks = fe.maxTicks
	result.final = s.Len()
	return result
}

// copyConfig creates a deep copy of the base config through YAML.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := config.Default()
	if err := cfg.Merge(fe.baseYAML); err != nil {
		// baseYAML came from a valid config
		panic(err)
	}
	cfg.Finalize()
	return cfg
}

// computeFitness calculates the scalar fitness (lower = better).
// Formula: -(survivalTicks × (1.0 + 0.2 × quality))
func (fe *FitnessEvaluator) computeFitness(cfg *config.Config, r *runResult) float64 {
	survival := float64(r.survivalTicks)
	return -(survival * (1.0 + 0.2*fe.computeQuality(cfg, r)))
}

// Quality component weights.
const (
	qualityWeightRetention = 0.40
	qualityWeightEnergy    = 0.30
	qualityWeightNeeds     = 0.30
)

// computeQuality scores a run in [0, 1] from population retention, median
// grazer energy and how well needs were kept down.
func (fe *FitnessEvaluator) computeQuality(cfg *config.Config, r *runResult) float64 {
	if r.initial == 0 {
		return 0
	}
	retention := float64(r.final) / float64(r.initial)

	if len(r.windowStats) == 0 {
		return clamp01(qualityWeightRetention * retention)
	}

	maxEnergy := float64(cfg.Derived.Species[components.SpeciesGrazer].MaxEnergy)
	energy := make([]float64, 0, len(r.windowStats))
	needs := make([]float64, 0, len(r.windowStats))
	for _, w := range r.windowStats {
		if w.GrazerCount > 0 && maxEnergy > 0 {
			ratio := w.GrazerEnergyP50 / maxEnergy
			energy = append(energy, math.Exp(-math.Pow((ratio-0.6)/0.25, 2)))
		}
		worst := max(w.HungerMean, w.ThirstMean, w.FatigueMean)
		needs = append(needs, 1-worst/100)
	}

	var energyScore float64
	if len(energy) > 0 {
		energyScore = stat.Mean(energy, nil)
	}
	needsScore := stat.Mean(needs, nil)

	return clamp01(qualityWeightRetention*retention +
		qualityWeightEnergy*energyScore +
		qualityWeightNeeds*needsScore)
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	return min(max(x, 0), 1)
}
