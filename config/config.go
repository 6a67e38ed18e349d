// Package config provides configuration loading for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/pasture/components"
	"github.com/pthm-cable/pasture/terrain"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	World       WorldConfig       `yaml:"world"`
	Terrain     TerrainConfig     `yaml:"terrain"`
	Physics     PhysicsConfig     `yaml:"physics"`
	Spatial     SpatialConfig     `yaml:"spatial"`
	Needs       NeedsConfig       `yaml:"needs"`
	Energy      EnergyConfig      `yaml:"energy"`
	Age         AgeConfig         `yaml:"age"`
	Decision    DecisionConfig    `yaml:"decision"`
	Movement    MovementConfig    `yaml:"movement"`
	Consumption ConsumptionConfig `yaml:"consumption"`
	Mortality   MortalityConfig   `yaml:"mortality"`
	Resources   ResourcesConfig   `yaml:"resources"`
	Oracle      OracleConfig      `yaml:"oracle"`
	Species     []SpeciesConfig   `yaml:"species"`
	Population  PopulationConfig  `yaml:"population"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds the tile grid dimensions.
type WorldConfig struct {
	Cols     int     `yaml:"cols"`
	Rows     int     `yaml:"rows"`
	TileSize float64 `yaml:"tile_size"` // world units per tile
	Seed     int64   `yaml:"seed"`
}

// TerrainConfig holds noise thresholds for terrain generation.
type TerrainConfig struct {
	Frequency      float64 `yaml:"frequency"`
	Octaves        int     `yaml:"octaves"`
	DeepLevel      float64 `yaml:"deep_level"`
	ShallowLevel   float64 `yaml:"shallow_level"`
	SandLevel      float64 `yaml:"sand_level"`
	HillsLevel     float64 `yaml:"hills_level"`
	MountainLevel  float64 `yaml:"mountain_level"`
	ForestMoisture float64 `yaml:"forest_moisture"`
	DryMoisture    float64 `yaml:"dry_moisture"`
}

// PhysicsConfig holds tick timing.
type PhysicsConfig struct {
	DT           float64 `yaml:"dt"`             // seconds per tick
	TickBudgetMS float64 `yaml:"tick_budget_ms"` // warn when a tick exceeds this
}

// SpatialConfig holds grid sizes for the agent and resource indexes.
type SpatialConfig struct {
	AgentCellSize    float64 `yaml:"agent_cell_size"`
	ResourceCellSize float64 `yaml:"resource_cell_size"`
	ResourceStride   int     `yaml:"resource_stride"` // sample every Nth tile
}

// NeedRates holds one value per need.
type NeedRates struct {
	Hunger  float64 `yaml:"hunger"`
	Thirst  float64 `yaml:"thirst"`
	Fatigue float64 `yaml:"fatigue"`
}

func (r NeedRates) array() [components.NumNeeds]float32 {
	return [components.NumNeeds]float32{float32(r.Hunger), float32(r.Thirst), float32(r.Fatigue)}
}

// NeedsConfig holds per-tick need accrual.
type NeedsConfig struct {
	BaseRates NeedRates            `yaml:"base_rates"` // per tick
	Activity  map[string]NeedRates `yaml:"activity"`   // state name -> multipliers
}

// EnergyConfig holds per-tick energy drain and sleep restoration.
type EnergyConfig struct {
	BaseDrain        float64            `yaml:"base_drain"`        // per tick
	StateMultipliers map[string]float64 `yaml:"state_multipliers"` // negative restores
	RestorationFloor float64            `yaml:"restoration_floor"` // min sleep restoration factor
}

// AgeConfig holds the energy curve and lifespan adjustment.
type AgeConfig struct {
	ChildhoodFraction  float64 `yaml:"childhood_fraction"`
	PeakFraction       float64 `yaml:"peak_fraction"`
	ChildEnergyFloor   float64 `yaml:"child_energy_floor"` // max energy fraction at birth
	HealthWindowTicks  int     `yaml:"health_window_ticks"`
	HealthyThreshold   float64 `yaml:"healthy_threshold"`
	UnhealthyThreshold float64 `yaml:"unhealthy_threshold"`
	MaxLifespanBonus   float64 `yaml:"max_lifespan_bonus"`
	MinLifespanFactor  float64 `yaml:"min_lifespan_factor"`
	PoorHealthFloor    float64 `yaml:"poor_health_floor"` // absolute energy EMA
	PoorHealthMinAge   float64 `yaml:"poor_health_min_age"`
}

// WanderConfig holds wander target sampling.
type WanderConfig struct {
	Samples         int     `yaml:"samples"`
	Radius          float64 `yaml:"radius"`
	DesperateNeed   float64 `yaml:"desperate_need"`
	DesperateFactor float64 `yaml:"desperate_factor"`
	CostScale       float64 `yaml:"cost_scale"`
}

// PathConfig holds straight-line path cost sampling.
type PathConfig struct {
	SampleSpacing     float64 `yaml:"sample_spacing"`
	MaxSamples        int     `yaml:"max_samples"`
	ImpassablePenalty float64 `yaml:"impassable_penalty"`
}

// DecisionConfig holds cache, hysteresis and target resolution parameters.
type DecisionConfig struct {
	CacheMaxAge              int64        `yaml:"cache_max_age"`
	ChangeDelta              float64      `yaml:"change_delta"`
	LowEnergyFraction        float64      `yaml:"low_energy_fraction"`
	InterruptThreshold       float64      `yaml:"interrupt_threshold"`
	InterruptThresholdActive float64      `yaml:"interrupt_threshold_consuming"`
	UrgencyFloor             float64      `yaml:"urgency_floor"`
	UrgentThreshold          float64      `yaml:"urgent_threshold"` // run at or above this urgency
	CostScale                float64      `yaml:"cost_scale"`
	ResourceCandidates       int          `yaml:"resource_candidates"`
	ResourceSearchRadius     float64      `yaml:"resource_search_radius"`
	HuntRadius               float64      `yaml:"hunt_radius"`
	Wander                   WanderConfig `yaml:"wander"`
	Path                     PathConfig   `yaml:"path"`
}

// MovementConfig holds arrival, energy penalty and obstacle avoidance.
type MovementConfig struct {
	ArrivalThreshold  float64 `yaml:"arrival_threshold"`
	LowEnergy         float64 `yaml:"low_energy"`
	MidEnergy         float64 `yaml:"mid_energy"`
	LowEnergyPenalty  float64 `yaml:"low_energy_penalty"`
	RepulsionProbe    float64 `yaml:"repulsion_probe"`
	RepulsionStrength float64 `yaml:"repulsion_strength"`
	RepulsionSamples  int     `yaml:"repulsion_samples"`
}

// ConsumptionConfig holds consumption rates and thresholds.
type ConsumptionConfig struct {
	SatisfactionThreshold float64 `yaml:"satisfaction_threshold"`
	EatRate               float64 `yaml:"eat_rate"`
	PredationRate         float64 `yaml:"predation_rate"`
	DrinkRate             float64 `yaml:"drink_rate"`
	SleepRate             float64 `yaml:"sleep_rate"`
	DepletionChance       float64 `yaml:"depletion_chance"`
	InteractRange         float64 `yaml:"interact_range"`
	MealSize              float64 `yaml:"meal_size"`
	DepletedTerrain       string  `yaml:"depleted_terrain"`
}

// MortalityConfig holds grace periods in ticks.
type MortalityConfig struct {
	StarvationGrace  int32    `yaml:"starvation_grace"`
	DehydrationGrace int32    `yaml:"dehydration_grace"`
	ExhaustionGrace  int32    `yaml:"exhaustion_grace"`
	DrowningTerrain  []string `yaml:"drowning_terrain"`
}

// ResourcesConfig holds forage regrowth.
type ResourcesConfig struct {
	RegrowthTicks int64 `yaml:"regrowth_ticks"` // 0 disables regrowth
}

// OracleConfig holds utility oracle tuning.
type OracleConfig struct {
	HighThirst       float64 `yaml:"high_thirst"`
	CriticalThirst   float64 `yaml:"critical_thirst"`
	HighHunger       float64 `yaml:"high_hunger"`
	CriticalHunger   float64 `yaml:"critical_hunger"`
	HighFatigue      float64 `yaml:"high_fatigue"`
	CriticalFatigue  float64 `yaml:"critical_fatigue"`
	SurvivalWeight   float64 `yaml:"survival_weight"`
	ComfortWeight    float64 `yaml:"comfort_weight"`
	EfficiencyWeight float64 `yaml:"efficiency_weight"`
	SearchRadius     float64 `yaml:"search_radius"`
	WanderUrgency    float64 `yaml:"wander_urgency"`
	RemoteTimeoutMS  int     `yaml:"remote_timeout_ms"`
}

// TerrainCost holds a species' speed and energy multipliers on one terrain.
// Speed 0 marks the terrain impassable.
type TerrainCost struct {
	Speed  float64 `yaml:"speed"`
	Energy float64 `yaml:"energy"`
}

// SpeciesConfig defines one species.
type SpeciesConfig struct {
	Name          string                 `yaml:"name"`
	Diet          string                 `yaml:"diet"` // forage or prey
	PreySpecies   string                 `yaml:"prey_species"`
	WalkSpeed     float64                `yaml:"walk_speed"` // world units per second
	RunSpeed      float64                `yaml:"run_speed"`
	MaxEnergy     float64                `yaml:"max_energy"`
	LifespanTicks int64                  `yaml:"lifespan_ticks"`
	NeedRates     NeedRates              `yaml:"need_multipliers"`
	Terrain       map[string]TerrainCost `yaml:"terrain"`
}

// PopulationConfig holds host seeding parameters.
type PopulationConfig struct {
	Initial        int     `yaml:"initial"`
	PredatorRatio  float64 `yaml:"predator_ratio"`
	MaxAgeFraction float64 `yaml:"max_age_fraction"` // seeded agents start up to this far into life
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"` // seconds
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// SpeciesDerived holds lookup tables for one species.
type SpeciesDerived struct {
	Name       string
	Diet       components.ResourceKind
	Prey       components.Species
	HasPrey    bool
	WalkSpeed  float32
	RunSpeed   float32
	MaxEnergy  float32
	Lifespan   int64
	NeedMult   [components.NumNeeds]float32
	Speed      [terrain.NumTypes]float32
	EnergyCost [terrain.NumTypes]float32
	Passable   [terrain.NumTypes]bool
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32        float32
	TicksPerSec float64
	TileSize32  float32
	WorldW32    float32
	WorldH32    float32

	BaseRates        [components.NumNeeds]float32
	Activity         [components.NumStates][components.NumNeeds]float32
	EnergyState      [components.NumStates]float32
	Drowning         [terrain.NumTypes]bool
	Depleted         terrain.Type
	Species          [components.NumSpecies]SpeciesDerived
	StatsWindowTicks int64
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := cfg.Merge(data); err != nil {
			return nil, err
		}
	}

	cfg.Finalize()
	return cfg, nil
}

// Default returns the embedded defaults. It panics only if the embedded file is broken.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return cfg
}

// Merge overlays YAML data on the current values. Only fields present in data change.
// Call Finalize afterwards.
func (c *Config) Merge(data []byte) error {
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

// Finalize clamps out-of-range values and recomputes derived tables.
// Call it after mutating fields programmatically.
func (c *Config) Finalize() {
	c.sanitize()
	c.computeDerived()
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// YAML returns the configuration serialized as YAML.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// GenConfig returns the terrain generation parameters.
func (c *Config) GenConfig() terrain.GenConfig {
	return terrain.GenConfig{
		Cols:          c.World.Cols,
		Rows:          c.World.Rows,
		TileSize:      float32(c.World.TileSize),
		Frequency:     c.Terrain.Frequency,
		Octaves:       c.Terrain.Octaves,
		DeepLevel:     c.Terrain.DeepLevel,
		ShallowLevel:  c.Terrain.ShallowLevel,
		SandLevel:     c.Terrain.SandLevel,
		HillsLevel:    c.Terrain.HillsLevel,
		MountainLevel: c.Terrain.MountainLevel,
		ForestMoist:   c.Terrain.ForestMoisture,
		DryMoist:      c.Terrain.DryMoisture,
	}
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	d := &c.Derived
	d.DT32 = float32(c.Physics.DT)
	d.TicksPerSec = 1 / c.Physics.DT
	d.TileSize32 = float32(c.World.TileSize)
	d.WorldW32 = float32(c.World.Cols) * d.TileSize32
	d.WorldH32 = float32(c.World.Rows) * d.TileSize32
	d.StatsWindowTicks = int64(c.Telemetry.StatsWindow*d.TicksPerSec + 0.5)

	d.BaseRates = c.Needs.BaseRates.array()
	for s := components.State(0); s < components.NumStates; s++ {
		d.Activity[s] = [components.NumNeeds]float32{1, 1, 1}
		if r, ok := c.Needs.Activity[s.String()]; ok {
			d.Activity[s] = r.array()
		}
		d.EnergyState[s] = 1
		if m, ok := c.Energy.StateMultipliers[s.String()]; ok {
			d.EnergyState[s] = float32(m)
		}
	}

	d.Drowning = [terrain.NumTypes]bool{}
	for _, name := range c.Mortality.DrowningTerrain {
		if t, ok := terrain.Parse(name); ok {
			d.Drowning[t] = true
		}
	}
	d.Depleted = terrain.Dirt
	if t, ok := terrain.Parse(c.Consumption.DepletedTerrain); ok {
		d.Depleted = t
	}

	for s := components.Species(0); s < components.NumSpecies; s++ {
		d.Species[s] = c.deriveSpecies(s)
	}
}

func (c *Config) deriveSpecies(s components.Species) SpeciesDerived {
	sd := SpeciesDerived{
		Name:      s.String(),
		Diet:      components.ResourceForage,
		WalkSpeed: 40,
		RunSpeed:  80,
		MaxEnergy: 100,
		Lifespan:  100000,
		NeedMult:  [components.NumNeeds]float32{1, 1, 1},
	}
	for t := terrain.Type(0); t < terrain.NumTypes; t++ {
		sd.Speed[t] = 1
		sd.EnergyCost[t] = 1
	}

	sc, ok := c.speciesByName(s.String())
	if !ok {
		sd.Passable = allPassable()
		return sd
	}
	if k, ok := components.ParseResourceKind(sc.Diet); ok {
		sd.Diet = k
	}
	if p, ok := components.ParseSpecies(sc.PreySpecies); ok {
		sd.Prey = p
		sd.HasPrey = true
	}
	sd.WalkSpeed = float32(sc.WalkSpeed)
	sd.RunSpeed = float32(sc.RunSpeed)
	sd.MaxEnergy = float32(sc.MaxEnergy)
	sd.Lifespan = sc.LifespanTicks
	sd.NeedMult = sc.NeedRates.array()
	for name, tc := range sc.Terrain {
		t, ok := terrain.Parse(name)
		if !ok {
			continue
		}
		sd.Speed[t] = float32(tc.Speed)
		sd.EnergyCost[t] = float32(tc.Energy)
	}
	for t := terrain.Type(0); t < terrain.NumTypes; t++ {
		sd.Passable[t] = sd.Speed[t] > 0
	}
	return sd
}

func (c *Config) speciesByName(name string) (SpeciesConfig, bool) {
	for _, sc := range c.Species {
		if sc.Name == name {
			return sc, true
		}
	}
	return SpeciesConfig{}, false
}

func allPassable() [terrain.NumTypes]bool {
	var p [terrain.NumTypes]bool
	for i := range p {
		p[i] = true
	}
	return p
}
