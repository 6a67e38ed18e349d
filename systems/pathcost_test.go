package systems

import (
	"testing"

	"github.com/pthm-cable/pasture/components"
	"github.com/pthm-cable/pasture/terrain"
)

func TestTerrainCost(t *testing.T) {
	w := newTestWorld(t, 4, 4)
	sp := &w.env.Cfg.Derived.Species[components.SpeciesGrazer]
	tests := []struct {
		tile terrain.Type
		want float32
	}{
		{terrain.Grass, 1},
		{terrain.ShallowWater, 3.2},
		{terrain.Mountain, 12}, // impassable: penalty 6 x energy 2
	}
	for _, tt := range tests {
		if got := TerrainCost(sp, tt.tile, 6); !approx(got, tt.want, 1e-4) {
			t.Errorf("TerrainCost(%s) = %v, want %v", tt.tile, got, tt.want)
		}
	}
}

func TestPathCostScalesWithTerrain(t *testing.T) {
	w := newTestWorld(t, 32, 32)
	sp := &w.env.Cfg.Derived.Species[components.SpeciesGrazer]
	coster := NewPathCoster(w.env.Cfg.Decision.Path)

	flat := coster.Cost(w.grid, sp, 8, 8, 108, 8)
	if !approx(flat, 100, 1e-3) {
		t.Errorf("grass cost = %v, want 100", flat)
	}
	if got := coster.Cost(w.grid, sp, 8, 8, 8, 8); got != 0 {
		t.Errorf("zero-length cost = %v", got)
	}

	for tx := 2; tx < 6; tx++ {
		w.grid.SetTile(tx, 0, terrain.Hills)
	}
	if hilly := coster.Cost(w.grid, sp, 8, 8, 108, 8); hilly <= flat {
		t.Errorf("hill cost %v not above grass cost %v", hilly, flat)
	}
}

func TestWanderPick(t *testing.T) {
	w := newTestWorld(t, 64, 64)
	sp := &w.env.Cfg.Derived.Species[components.SpeciesGrazer]
	wd := NewWanderer(w.env.Cfg.Decision)

	x, y, ok := wd.Pick(w.env, sp, 512, 512, 10)
	if !ok {
		t.Fatal("Pick failed on open grass")
	}
	if d := distance(512, 512, x, y); !approx(d, 120, 0.01) {
		t.Errorf("wander distance = %v, want 120", d)
	}
	if r := wd.Radius(90); !approx(r, 300, 1e-3) {
		t.Errorf("desperate radius = %v, want 300", r)
	}
}

func TestWanderPickAllBlocked(t *testing.T) {
	w := newTestWorld(t, 64, 64)
	cols, rows := w.grid.Size()
	for ty := 0; ty < rows; ty++ {
		for tx := 0; tx < cols; tx++ {
			w.grid.SetTile(tx, ty, terrain.Mountain)
		}
	}
	w.grid.SetTile(32, 32, terrain.Grass)
	sp := &w.env.Cfg.Derived.Species[components.SpeciesGrazer]
	wd := NewWanderer(w.env.Cfg.Decision)

	if _, _, ok := wd.Pick(w.env, sp, 520, 520, 10); ok {
		t.Error("Pick succeeded with every sample on mountains")
	}
}
