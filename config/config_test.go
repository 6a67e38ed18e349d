package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/pasture/components"
	"github.com/pthm-cable/pasture/terrain"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Decision.InterruptThreshold != 15 || cfg.Decision.InterruptThresholdActive != 30 {
		t.Errorf("interrupt thresholds = %v/%v, want 15/30",
			cfg.Decision.InterruptThreshold, cfg.Decision.InterruptThresholdActive)
	}
	if cfg.Consumption.SatisfactionThreshold != 7 {
		t.Errorf("satisfaction threshold = %v, want 7", cfg.Consumption.SatisfactionThreshold)
	}
	if cfg.Resources.RegrowthTicks != 0 {
		t.Errorf("regrowth should be off by default, got %d", cfg.Resources.RegrowthTicks)
	}

	d := cfg.Derived
	if math.Abs(float64(d.DT32)-1.0/60) > 1e-4 {
		t.Errorf("DT32 = %v, want ~1/60", d.DT32)
	}
	if d.WorldW32 != 128*16 {
		t.Errorf("WorldW32 = %v, want %v", d.WorldW32, 128*16)
	}
	if d.EnergyState[components.StateSleeping] >= 0 {
		t.Errorf("sleeping energy multiplier should restore, got %v", d.EnergyState[components.StateSleeping])
	}
	if d.Activity[components.StateDrinking][components.NeedThirst] != 0 {
		t.Error("drinking should hold thirst")
	}
	if !d.Drowning[terrain.DeepWater] || d.Drowning[terrain.Grass] {
		t.Error("only deep water should drown by default")
	}

	grazer := d.Species[components.SpeciesGrazer]
	if grazer.Diet != components.ResourceForage || grazer.HasPrey {
		t.Errorf("grazer diet = %v hasPrey=%v", grazer.Diet, grazer.HasPrey)
	}
	if grazer.Passable[terrain.DeepWater] || !grazer.Passable[terrain.Grass] {
		t.Error("grazer passability wrong")
	}
	pred := d.Species[components.SpeciesPredator]
	if pred.Diet != components.ResourcePrey || !pred.HasPrey || pred.Prey != components.SpeciesGrazer {
		t.Errorf("predator diet = %v prey=%v hasPrey=%v", pred.Diet, pred.Prey, pred.HasPrey)
	}
	if !pred.Passable[terrain.DeepWater] {
		t.Error("predators should swim deep water")
	}
}

func TestLoadMergesUserFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	data := []byte("decision:\n  interrupt_threshold: 20\nresources:\n  regrowth_ticks: 5000\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Decision.InterruptThreshold != 20 {
		t.Errorf("interrupt threshold = %v, want 20", cfg.Decision.InterruptThreshold)
	}
	if cfg.Decision.InterruptThresholdActive != 30 {
		t.Errorf("unset keys should keep defaults, got %v", cfg.Decision.InterruptThresholdActive)
	}
	if cfg.Resources.RegrowthTicks != 5000 {
		t.Errorf("regrowth = %d, want 5000", cfg.Resources.RegrowthTicks)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSanitizeClampsSilently(t *testing.T) {
	cfg := Default()
	cfg.Decision.InterruptThreshold = -5
	cfg.Decision.InterruptThresholdActive = 3
	cfg.Consumption.DepletionChance = 4
	cfg.Age.PeakFraction = 0.01
	cfg.Physics.DT = math.NaN()
	cfg.Energy.StateMultipliers["sleeping"] = 2
	cfg.Finalize()

	if cfg.Decision.InterruptThreshold != 0 {
		t.Errorf("negative threshold not clamped: %v", cfg.Decision.InterruptThreshold)
	}
	if cfg.Decision.InterruptThresholdActive < cfg.Decision.InterruptThreshold {
		t.Error("consuming threshold must not fall below the normal threshold")
	}
	if cfg.Consumption.DepletionChance != 1 {
		t.Errorf("depletion chance = %v, want 1", cfg.Consumption.DepletionChance)
	}
	if cfg.Age.PeakFraction < cfg.Age.ChildhoodFraction {
		t.Error("peak fraction must not precede childhood fraction")
	}
	if !(cfg.Physics.DT > 0) {
		t.Errorf("dt = %v, want positive", cfg.Physics.DT)
	}
	if cfg.Derived.EnergyState[components.StateSleeping] >= 0 {
		t.Error("sleeping multiplier should be forced negative")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Decision.CacheMaxAge = 123
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}

	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if back.Decision.CacheMaxAge != 123 {
		t.Errorf("cache max age = %d, want 123", back.Decision.CacheMaxAge)
	}
	if len(back.Species) != len(cfg.Species) {
		t.Errorf("species count = %d, want %d", len(back.Species), len(cfg.Species))
	}
}

func TestGenConfig(t *testing.T) {
	cfg := Default()
	g := cfg.GenConfig()
	if g.Cols != cfg.World.Cols || g.TileSize != float32(cfg.World.TileSize) {
		t.Errorf("GenConfig mismatch: %+v", g)
	}
}
