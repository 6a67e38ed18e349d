package systems

import (
	"testing"

	"github.com/pthm-cable/pasture/components"
	"github.com/pthm-cable/pasture/terrain"
)

func TestNeedsStayInBounds(t *testing.T) {
	w := newTestWorld(t, 16, 16)
	eng := NewNeedsEngine(w.env)
	a := w.add(1, components.SpeciesGrazer, 40, 40)
	a.needs = components.Needs{Hunger: 99.99, Thirst: 99.99, Fatigue: 0}
	a.beh.State = components.StateMoving

	for i := 0; i < 5000; i++ {
		eng.Update(w.env, a.ref())
		for n := components.Need(0); n < components.NumNeeds; n++ {
			if v := a.needs.Get(n); v < 0 || v > components.NeedMax {
				t.Fatalf("tick %d: %s = %v out of [0,100]", i, n, v)
			}
		}
		if a.energy.Current < 0 || a.energy.Current > a.energy.Max {
			t.Fatalf("tick %d: energy %v out of [0,%v]", i, a.energy.Current, a.energy.Max)
		}
	}
	if a.needs.Hunger != components.NeedMax || a.needs.Thirst != components.NeedMax {
		t.Errorf("needs = %+v, want hunger and thirst saturated", a.needs)
	}
}

func TestNeedsCollapseForcesSleep(t *testing.T) {
	w := newTestWorld(t, 16, 16)
	eng := NewNeedsEngine(w.env)
	a := w.add(1, components.SpeciesGrazer, 40, 40)
	a.needs.Fatigue = components.NeedMax
	a.beh.State = components.StateMoving
	a.beh.Target = components.Target{X: 200, Y: 40, Active: true}
	a.vel = components.Velocity{X: 30}

	eng.Update(w.env, a.ref())

	if a.beh.State != components.StateSleeping {
		t.Errorf("state = %s, want sleeping", a.beh.State)
	}
	if a.beh.Target.Active {
		t.Error("target still active after collapse")
	}
	if a.vel != (components.Velocity{}) {
		t.Errorf("velocity = %+v, want zero", a.vel)
	}
	if w.env.Counters.Collapses != 1 {
		t.Errorf("Collapses = %d, want 1", w.env.Counters.Collapses)
	}
}

func TestNeedsNoCollapseOnDrowningTerrain(t *testing.T) {
	w := newTestWorld(t, 16, 16)
	w.grid.SetTile(2, 2, terrain.DeepWater)
	eng := NewNeedsEngine(w.env)
	a := w.add(1, components.SpeciesGrazer, 40, 40)
	a.needs.Fatigue = components.NeedMax
	a.beh.State = components.StateMoving

	eng.Update(w.env, a.ref())

	if a.beh.State != components.StateMoving {
		t.Errorf("state = %s, want moving", a.beh.State)
	}
}

func TestSleepRestoresEnergy(t *testing.T) {
	w := newTestWorld(t, 16, 16)
	eng := NewNeedsEngine(w.env)
	a := w.add(1, components.SpeciesGrazer, 40, 40)
	a.energy.Current = 50
	a.beh.State = components.StateSleeping

	eng.Update(w.env, a.ref())

	if a.energy.Current <= 50 {
		t.Errorf("energy = %v after sleeping, want > 50", a.energy.Current)
	}
}

func TestNeedsResetsNonFinitePosition(t *testing.T) {
	w := newTestWorld(t, 16, 16)
	eng := NewNeedsEngine(w.env)
	a := w.add(1, components.SpeciesGrazer, nan32(), 40)

	eng.Update(w.env, a.ref())

	if !a.pos.Finite() {
		t.Fatalf("position = %+v, want finite", a.pos)
	}
	if a.pos.X != 128 || a.pos.Y != 128 {
		t.Errorf("position = %+v, want world center (128,128)", a.pos)
	}
}

func TestSleeperWithoutEnergyIsFlagged(t *testing.T) {
	w := newTestWorld(t, 16, 16)
	eng := NewNeedsEngine(w.env)
	mort := NewMortalityEngine(w.env)
	a := w.add(1, components.SpeciesGrazer, 40, 40)
	a.energy.Current = 0
	a.beh.State = components.StateSleeping
	a.beh.Intent = components.IntentRest
	w.index()

	eng.Update(w.env, a.ref())
	if a.energy.Current != 0 {
		t.Errorf("energy = %v, want no restoration at 0", a.energy.Current)
	}
	if a.vit.Cause != components.CauseEnergyDepleted {
		t.Fatalf("cause = %s, want energy_depleted", a.vit.Cause)
	}

	mort.Update(w.env, a.ref())
	deaths := mort.Reap(w.env, w.agents, NewDecisionCache())
	if len(deaths) != 1 || deaths[0].Cause != components.CauseEnergyDepleted {
		t.Errorf("deaths = %+v, want one energy_depleted", deaths)
	}
}
