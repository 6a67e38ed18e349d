package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/pasture/config"
)

func TestParamVectorRoundTrip(t *testing.T) {
	pv := NewParamVector()
	cfg := config.Default()

	raw := pv.ExtractFromConfig(cfg)
	if len(raw) != pv.Dim() {
		t.Fatalf("extracted %d values, want %d", len(raw), pv.Dim())
	}
	back := pv.Denormalize(pv.Normalize(raw))
	for i := range raw {
		if math.Abs(back[i]-raw[i]) > 1e-9 {
			t.Errorf("%s: round trip %v -> %v", pv.Specs[i].Name, raw[i], back[i])
		}
	}
}

func TestApplyToConfigClamps(t *testing.T) {
	pv := NewParamVector()
	cfg := config.Default()

	values := make([]float64, pv.Dim())
	for i := range values {
		values[i] = 1e6
	}
	pv.ApplyToConfig(cfg, values)

	got := pv.ExtractFromConfig(cfg)
	for i, spec := range pv.Specs {
		if got[i] != spec.Max {
			t.Errorf("%s = %v, want clamped to %v", spec.Path, got[i], spec.Max)
		}
	}
}

func TestComputeQuality(t *testing.T) {
	fe, err := NewFitnessEvaluator(NewParamVector(), 10, []int64{1}, config.Default())
	if err != nil {
		t.Fatal(err)
	}
	cfg := fe.copyConfig()

	if q := fe.computeQuality(cfg, &runResult{}); q != 0 {
		t.Errorf("empty run quality = %v, want 0", q)
	}

	full := fe.computeQuality(cfg, &runResult{initial: 10, final: 10})
	half := fe.computeQuality(cfg, &runResult{initial: 10, final: 5})
	if !(full > half) {
		t.Errorf("retention not rewarded: full=%v half=%v", full, half)
	}

	if f := fe.computeFitness(cfg, &runResult{survivalTicks: 100, initial: 10, final: 10}); f >= -100 {
		t.Errorf("fitness = %v, want below -100", f)
	}
}
