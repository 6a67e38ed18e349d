package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int64   `csv:"-"`
	WindowEndTick   int64   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Population counts at window end
	GrazerCount   int `csv:"grazers"`
	PredatorCount int `csv:"predators"`

	// Lifecycle events during window
	GrazerBirths   int `csv:"grazer_births"`
	PredatorBirths int `csv:"predator_births"`
	GrazerDeaths   int `csv:"grazer_deaths"`
	PredatorDeaths int `csv:"predator_deaths"`

	// Deaths by cause
	DeathsStarvation  int `csv:"deaths_starvation"`
	DeathsDehydration int `csv:"deaths_dehydration"`
	DeathsExhaustion  int `csv:"deaths_exhaustion"`
	DeathsDrowning    int `csv:"deaths_drowning"`
	DeathsEnergy      int `csv:"deaths_energy"`
	DeathsOldAge      int `csv:"deaths_old_age"`
	DeathsPoorHealth  int `csv:"deaths_poor_health"`
	DeathsPredation   int `csv:"deaths_predation"`
	DeathsRemoved     int `csv:"deaths_removed"`

	// Decision activity
	Decisions          int     `csv:"decisions"`
	CacheHits          int     `csv:"cache_hits"`
	CacheHitRate       float64 `csv:"cache_hit_rate"`
	OracleFailures     int     `csv:"oracle_failures"`
	InterruptsAccepted int     `csv:"interrupts_accepted"`
	InterruptsRejected int     `csv:"interrupts_rejected"`
	WanderFallbacks    int     `csv:"wander_fallbacks"`

	// Movement and consumption
	Arrivals   int `csv:"arrivals"`
	Blocked    int `csv:"blocked"`
	Collapses  int `csv:"collapses"`
	Kills      int `csv:"kills"`
	Depletions int `csv:"depletions"`
	Regrowths  int `csv:"regrowths"`

	// Energy distribution (sampled at window end)
	GrazerEnergyMean   float64 `csv:"grazer_energy_mean"`
	GrazerEnergyP10    float64 `csv:"grazer_energy_p10"`
	GrazerEnergyP50    float64 `csv:"grazer_energy_p50"`
	GrazerEnergyP90    float64 `csv:"grazer_energy_p90"`
	PredatorEnergyMean float64 `csv:"predator_energy_mean"`
	PredatorEnergyP10  float64 `csv:"predator_energy_p10"`
	PredatorEnergyP50  float64 `csv:"predator_energy_p50"`
	PredatorEnergyP90  float64 `csv:"predator_energy_p90"`

	// Need levels across all agents (sampled at window end)
	HungerMean  float64 `csv:"hunger_mean"`
	ThirstMean  float64 `csv:"thirst_mean"`
	FatigueMean float64 `csv:"fatigue_mean"`
	ThirstStd   float64 `csv:"thirst_std"`

	// Behavioral state mix at window end
	Idle     int `csv:"idle"`
	Moving   int `csv:"moving"`
	Eating   int `csv:"eating"`
	Drinking int `csv:"drinking"`
	Sleeping int `csv:"sleeping"`

	// Indexed resource tiles at window end
	ForageTiles int `csv:"forage_tiles"`
	WaterTiles  int `csv:"water_tiles"`
}

// ComputeEnergyStats calculates mean and empirical percentiles from energy values.
func ComputeEnergyStats(values []float64) (mean, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mean = stat.Mean(sorted, nil)
	p10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
	p50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	p90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)
	return mean, p10, p50, p90
}

// ComputeNeedStats returns the mean and population standard deviation.
func ComputeNeedStats(values []float64) (mean, std float64) {
	if len(values) == 0 {
		return 0, 0
	}
	return stat.PopMeanStdDev(values, nil)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartTick),
		slog.Int64("window_end", s.WindowEndTick),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("grazers", s.GrazerCount),
		slog.Int("predators", s.PredatorCount),
		slog.Int("grazer_deaths", s.GrazerDeaths),
		slog.Int("predator_deaths", s.PredatorDeaths),
		slog.Int("decisions", s.Decisions),
		slog.Float64("cache_hit_rate", s.CacheHitRate),
		slog.Int("oracle_failures", s.OracleFailures),
		slog.Int("kills", s.Kills),
		slog.Int("depletions", s.Depletions),
		slog.Int("regrowths", s.Regrowths),
		slog.Float64("grazer_energy_mean", s.GrazerEnergyMean),
		slog.Float64("predator_energy_mean", s.PredatorEnergyMean),
		slog.Float64("thirst_mean", s.ThirstMean),
		slog.Float64("hunger_mean", s.HungerMean),
		slog.Float64("fatigue_mean", s.FatigueMean),
	)
}

// LogStats logs the window stats using the given logger.
func (s WindowStats) LogStats(log *slog.Logger) {
	log.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"grazers", s.GrazerCount,
		"predators", s.PredatorCount,
		"grazer_births", s.GrazerBirths,
		"predator_births", s.PredatorBirths,
		"grazer_deaths", s.GrazerDeaths,
		"predator_deaths", s.PredatorDeaths,
		"deaths_dehydration", s.DeathsDehydration,
		"deaths_starvation", s.DeathsStarvation,
		"deaths_predation", s.DeathsPredation,
		"deaths_old_age", s.DeathsOldAge,
		"decisions", s.Decisions,
		"cache_hit_rate", s.CacheHitRate,
		"oracle_failures", s.OracleFailures,
		"interrupts_rejected", s.InterruptsRejected,
		"kills", s.Kills,
		"depletions", s.Depletions,
		"regrowths", s.Regrowths,
		"grazer_energy_p50", s.GrazerEnergyP50,
		"predator_energy_p50", s.PredatorEnergyP50,
		"thirst_mean", s.ThirstMean,
		"hunger_mean", s.HungerMean,
		"forage_tiles", s.ForageTiles,
	)
}
