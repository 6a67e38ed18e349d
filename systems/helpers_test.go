package systems

import (
	"io"
	"log/slog"
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/pasture/components"
	"github.com/pthm-cable/pasture/config"
	"github.com/pthm-cable/pasture/terrain"
)

// fakeAgents is an in-memory AgentLookup and EntityRemover.
type fakeAgents struct {
	agents map[components.AgentID]*testAgent
}

func newFakeAgents() *fakeAgents {
	return &fakeAgents{agents: make(map[components.AgentID]*testAgent)}
}

func (f *fakeAgents) Locate(id components.AgentID) (float32, float32, components.Species, bool) {
	a, ok := f.agents[id]
	if !ok {
		return 0, 0, 0, false
	}
	return a.pos.X, a.pos.Y, a.org.Species, true
}

func (f *fakeAgents) Doomed(id components.AgentID) bool {
	a, ok := f.agents[id]
	return ok && a.vit.Doomed()
}

func (f *fakeAgents) RemoveEntity(id components.AgentID) bool {
	if _, ok := f.agents[id]; !ok {
		return false
	}
	delete(f.agents, id)
	return true
}

type testAgent struct {
	org    components.Organism
	pos    components.Position
	vel    components.Velocity
	needs  components.Needs
	energy components.Energy
	age    components.Age
	beh    components.Behavior
	vit    components.Vitals
}

func (a *testAgent) ref() AgentRef {
	return AgentRef{
		Org: &a.org, Pos: &a.pos, Vel: &a.vel, Needs: &a.needs,
		Energy: &a.energy, Age: &a.age, Beh: &a.beh, Vit: &a.vit,
	}
}

// testWorld is a grass-filled world with an empty agent registry.
type testWorld struct {
	env    *Env
	grid   *terrain.Grid
	agents *fakeAgents
}

func newTestWorld(t *testing.T, cols, rows int) *testWorld {
	t.Helper()
	cfg := config.Default()
	grid := terrain.NewGrid(cols, rows, float32(cfg.World.TileSize), terrain.Grass)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	env := NewEnv(cfg, grid, rand.New(rand.NewSource(1)), log)
	agents := newFakeAgents()
	env.Agents = agents
	env.BeginTick(1, cfg.Derived.DT32)
	return &testWorld{env: env, grid: grid, agents: agents}
}

// add registers an idle, healthy agent at (x,y).
func (w *testWorld) add(id components.AgentID, sp components.Species, x, y float32) *testAgent {
	d := &w.env.Cfg.Derived.Species[sp]
	a := &testAgent{
		org:    components.Organism{ID: id, Species: sp},
		pos:    components.Position{X: x, Y: y},
		needs:  components.Needs{Hunger: 10, Thirst: 10, Fatigue: 10},
		energy: components.Energy{Current: d.MaxEnergy, Max: d.MaxEnergy},
		age:    components.Age{BaseLifespan: d.Lifespan, ExpectedLifespan: d.Lifespan, HealthHistory: d.MaxEnergy},
	}
	w.agents.agents[id] = a
	return a
}

// index rebuilds the spatial index from the registered agents.
func (w *testWorld) index() {
	entries := make([]SpatialEntry, 0, len(w.agents.agents))
	for _, a := range w.agents.agents {
		entries = append(entries, SpatialEntry{ID: a.org.ID, X: a.pos.X, Y: a.pos.Y, Species: a.org.Species})
	}
	w.env.Spatial.Rebuild(entries)
}

func approx(a, b, eps float32) bool {
	d := a - b
	return d < eps && d > -eps
}

func nan32() float32 { return float32(math.NaN()) }
