package telemetry

import (
	"bytes"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/pthm-cable/pasture/components"
	"github.com/pthm-cable/pasture/systems"
)

func TestComputeEnergyStats(t *testing.T) {
	values := []float64{10, 9, 8, 7, 6, 5, 4, 3, 2, 1}
	mean, p10, p50, p90 := ComputeEnergyStats(values)
	if mean != 5.5 {
		t.Errorf("mean = %v, want 5.5", mean)
	}
	if p10 != 1 || p50 != 5 || p90 != 9 {
		t.Errorf("percentiles = %v/%v/%v, want 1/5/9", p10, p50, p90)
	}
	if values[0] != 10 {
		t.Error("input slice was reordered")
	}

	mean, p10, p50, p90 = ComputeEnergyStats(nil)
	if mean != 0 || p10 != 0 || p50 != 0 || p90 != 0 {
		t.Error("expected zeros for empty input")
	}
}

func TestComputeNeedStats(t *testing.T) {
	mean, std := ComputeNeedStats([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if mean != 5 || math.Abs(std-2) > 1e-12 {
		t.Errorf("mean/std = %v/%v, want 5/2", mean, std)
	}
	if m, s := ComputeNeedStats(nil); m != 0 || s != 0 {
		t.Error("expected zeros for empty input")
	}
}

func TestCollector_WindowLifecycle(t *testing.T) {
	c := NewCollector(5, 0.5)
	if c.WindowDurationTicks() != 10 {
		t.Fatalf("window = %d ticks, want 10", c.WindowDurationTicks())
	}

	c.RecordBirth(components.SpeciesGrazer)
	c.RecordBirth(components.SpeciesGrazer)
	c.RecordBirth(components.SpeciesPredator)
	c.RecordDeath(components.SpeciesGrazer, components.CausePredation)
	c.RecordDeath(components.SpeciesPredator, components.CauseDehydration)
	c.RecordTick(systems.Counters{Decisions: 3, CacheHits: 1, Kills: 1})
	c.RecordTick(systems.Counters{Decisions: 1, CacheHits: 3, Depletions: 2})
	c.RecordRegrowth(4)

	if c.ShouldFlush(9) {
		t.Error("flushed before the window elapsed")
	}
	if !c.ShouldFlush(10) {
		t.Error("expected flush at window end")
	}

	agents := []AgentState{
		{Species: components.SpeciesGrazer, Energy: 40, Thirst: 10, State: components.StateMoving},
		{Species: components.SpeciesGrazer, Energy: 60, Thirst: 30, State: components.StateDrinking},
		{Species: components.SpeciesPredator, Energy: 90, Thirst: 20, State: components.StateSleeping},
	}
	s := c.Flush(10, agents, 120, 30)

	checks := []struct {
		name      string
		got, want float64
	}{
		{"grazers", float64(s.GrazerCount), 2},
		{"predators", float64(s.PredatorCount), 1},
		{"grazer births", float64(s.GrazerBirths), 2},
		{"predator births", float64(s.PredatorBirths), 1},
		{"grazer deaths", float64(s.GrazerDeaths), 1},
		{"predation", float64(s.DeathsPredation), 1},
		{"dehydration", float64(s.DeathsDehydration), 1},
		{"decisions", float64(s.Decisions), 4},
		{"cache hit rate", s.CacheHitRate, 0.5},
		{"kills", float64(s.Kills), 1},
		{"depletions", float64(s.Depletions), 2},
		{"regrowths", float64(s.Regrowths), 4},
		{"grazer energy mean", s.GrazerEnergyMean, 50},
		{"predator energy p50", s.PredatorEnergyP50, 90},
		{"thirst mean", s.ThirstMean, 20},
		{"moving", float64(s.Moving), 1},
		{"drinking", float64(s.Drinking), 1},
		{"sleeping", float64(s.Sleeping), 1},
		{"forage tiles", float64(s.ForageTiles), 120},
		{"sim time", s.SimTimeSec, 5},
	}
	for _, tt := range checks {
		if math.Abs(tt.got-tt.want) > 1e-9 {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}

	next := c.Flush(20, nil, 0, 0)
	if next.WindowStartTick != 10 || next.Decisions != 0 || next.GrazerBirths != 0 || next.Regrowths != 0 {
		t.Errorf("counters not reset: %+v", next)
	}
	if next.CacheHitRate != 0 {
		t.Errorf("hit rate with no lookups = %v, want 0", next.CacheHitRate)
	}
}

func TestWindowStats_LogStats(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	WindowStats{WindowEndTick: 600, GrazerCount: 12}.LogStats(log)
	if !strings.Contains(buf.String(), "grazers=12") {
		t.Errorf("missing grazer count: %s", buf.String())
	}

	buf.Reset()
	log.Info("window", "stats", WindowStats{PredatorCount: 3})
	if !strings.Contains(buf.String(), "stats.predators=3") {
		t.Errorf("LogValue not used: %s", buf.String())
	}
}
