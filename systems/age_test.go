package systems

import (
	"testing"

	"github.com/pthm-cable/pasture/components"
)

func TestEnergyCurve(t *testing.T) {
	w := newTestWorld(t, 4, 4)
	eng := NewAgeEngine(w.env)

	tests := []struct {
		pct  float32
		want float32
	}{
		{-1, 0.5},
		{0, 0.5},
		{0.05, 0.75},
		{0.1, 1},
		{0.5, 1},
		{0.7, 1},
		{0.85, 0.5},
		{1, 0},
		{1.5, 0},
	}
	for _, tt := range tests {
		if got := eng.EnergyCurve(tt.pct); !approx(got, tt.want, 1e-4) {
			t.Errorf("EnergyCurve(%v) = %v, want %v", tt.pct, got, tt.want)
		}
	}
}

func TestLifespanFactor(t *testing.T) {
	w := newTestWorld(t, 4, 4)
	eng := NewAgeEngine(w.env)

	tests := []struct {
		ratio float32
		want  float32
	}{
		{1, 1.2},
		{0.5, 1},
		{0.15, 0.5},
		{0, 0.25},
	}
	for _, tt := range tests {
		if got := eng.LifespanFactor(tt.ratio); !approx(got, tt.want, 1e-4) {
			t.Errorf("LifespanFactor(%v) = %v, want %v", tt.ratio, got, tt.want)
		}
	}
}

func TestOldAgeAtFullLifespan(t *testing.T) {
	w := newTestWorld(t, 4, 4)
	eng := NewAgeEngine(w.env)
	a := w.add(1, components.SpeciesGrazer, 20, 20)
	a.age = components.Age{BaseLifespan: 1000, ExpectedLifespan: 1000, HealthHistory: 100}

	w.env.Tick = 999
	eng.Update(w.env, a.ref())
	if a.vit.Cause != components.CauseNone {
		t.Fatalf("cause at 99.9%% = %s, want none", a.vit.Cause)
	}

	a.age.ExpectedLifespan = 1000
	w.env.Tick = 1000
	eng.Update(w.env, a.ref())
	if a.vit.Cause != components.CauseOldAge {
		t.Errorf("cause at 100%% = %s, want old_age", a.vit.Cause)
	}
	if a.energy.Max != 0 {
		t.Errorf("energy max at end of life = %v, want 0", a.energy.Max)
	}
}

func TestAgeTracksHealthHistory(t *testing.T) {
	w := newTestWorld(t, 4, 4)
	eng := NewAgeEngine(w.env)
	a := w.add(1, components.SpeciesGrazer, 20, 20)
	a.age.BirthTick = 0
	a.age.HealthHistory = 100
	w.env.Tick = a.age.BaseLifespan / 2
	a.energy.Current = 20

	eng.Update(w.env, a.ref())

	if !(a.age.HealthHistory < 100 && a.age.HealthHistory > 20) {
		t.Errorf("health history = %v, want between 20 and 100", a.age.HealthHistory)
	}
	if a.energy.Max != w.env.Cfg.Derived.Species[components.SpeciesGrazer].MaxEnergy {
		t.Errorf("energy max at mid life = %v, want full", a.energy.Max)
	}
}

func TestPoorHealthDeath(t *testing.T) {
	tests := []struct {
		name string
		tick int64
		want components.DeathCause
	}{
		{"newborn spared", 10, components.CauseNone},
		{"adult dies", 100, components.CausePoorHealth},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWorld(t, 4, 4)
			eng := NewAgeEngine(w.env)
			a := w.add(1, components.SpeciesGrazer, 20, 20)
			a.age = components.Age{BaseLifespan: 1000, ExpectedLifespan: 1000}
			a.energy.Current = 0
			w.env.Tick = tt.tick

			eng.Update(w.env, a.ref())

			if a.vit.Cause != tt.want {
				t.Errorf("cause at tick %d = %s, want %s", tt.tick, a.vit.Cause, tt.want)
			}
		})
	}
}
