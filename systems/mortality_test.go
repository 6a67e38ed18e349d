package systems

import (
	"testing"

	"github.com/pthm-cable/pasture/components"
	"github.com/pthm-cable/pasture/oracle"
	"github.com/pthm-cable/pasture/terrain"
)

func TestEnergyDepletedRemovesAgent(t *testing.T) {
	w := newTestWorld(t, 8, 8)
	eng := NewMortalityEngine(w.env)
	cache := NewDecisionCache()
	a := w.add(1, components.SpeciesGrazer, 40, 40)
	a.energy.Current = 0
	w.index()
	cache.Put(1, CacheEntry{Intent: oracle.WanderIntent(0)})

	eng.Update(w.env, a.ref())
	if eng.Pending() != 1 {
		t.Fatalf("Pending = %d, want 1", eng.Pending())
	}
	deaths := eng.Reap(w.env, w.agents, cache)

	if len(deaths) != 1 || deaths[0].Cause != components.CauseEnergyDepleted {
		t.Fatalf("deaths = %+v, want one energy_depleted", deaths)
	}
	if _, ok := w.agents.agents[1]; ok {
		t.Error("agent still in storage")
	}
	if w.env.Spatial.Contains(1) || cache.Len() != 0 {
		t.Error("agent still in spatial index or decision cache")
	}
	if again := eng.Reap(w.env, w.agents, cache); len(again) != 0 {
		t.Errorf("second Reap = %+v, want none", again)
	}
}

func TestGracePeriods(t *testing.T) {
	w := newTestWorld(t, 8, 8)
	eng := NewMortalityEngine(w.env)
	a := w.add(1, components.SpeciesGrazer, 40, 40)
	a.needs.Thirst = components.NeedMax

	grace := int(w.env.Cfg.Mortality.DehydrationGrace)
	for i := 0; i < grace; i++ {
		eng.Update(w.env, a.ref())
	}
	if a.vit.Cause != components.CauseNone {
		t.Fatalf("died within grace: %s", a.vit.Cause)
	}
	eng.Update(w.env, a.ref())
	if a.vit.Cause != components.CauseDehydration {
		t.Errorf("cause = %s, want dehydration", a.vit.Cause)
	}
}

func TestGraceCounterResets(t *testing.T) {
	w := newTestWorld(t, 8, 8)
	eng := NewMortalityEngine(w.env)
	a := w.add(1, components.SpeciesGrazer, 40, 40)
	a.needs.Hunger = components.NeedMax
	eng.Update(w.env, a.ref())
	eng.Update(w.env, a.ref())
	a.needs.Hunger = 90
	eng.Update(w.env, a.ref())
	if a.vit.StarvingTicks != 0 {
		t.Errorf("StarvingTicks = %d, want reset to 0", a.vit.StarvingTicks)
	}
}

func TestDrowning(t *testing.T) {
	w := newTestWorld(t, 8, 8)
	w.grid.SetTile(2, 2, terrain.DeepWater)
	eng := NewMortalityEngine(w.env)
	a := w.add(1, components.SpeciesGrazer, 40, 40)
	a.needs.Fatigue = components.NeedMax

	eng.Update(w.env, a.ref())

	if a.vit.Cause != components.CauseDrowning {
		t.Errorf("cause = %s, want drowning", a.vit.Cause)
	}
}

func TestPredationRemovesPrey(t *testing.T) {
	w := newTestWorld(t, 8, 8)
	eng := NewMortalityEngine(w.env)
	prey := w.add(2, components.SpeciesGrazer, 40, 40)
	w.env.Kills[2] = 1

	eng.Update(w.env, prey.ref())
	deaths := eng.Reap(w.env, w.agents, nil)

	if len(deaths) != 1 || deaths[0].Cause != components.CausePredation || deaths[0].ID != 2 {
		t.Errorf("deaths = %+v, want prey 2 by predation", deaths)
	}
}

func TestFlaggedCauseIsQueued(t *testing.T) {
	w := newTestWorld(t, 8, 8)
	eng := NewMortalityEngine(w.env)
	a := w.add(1, components.SpeciesGrazer, 40, 40)
	a.vit.Cause = components.CauseOldAge

	eng.Update(w.env, a.ref())
	deaths := eng.Reap(w.env, w.agents, nil)

	if len(deaths) != 1 || deaths[0].Cause != components.CauseOldAge {
		t.Errorf("deaths = %+v, want one old_age", deaths)
	}
}
