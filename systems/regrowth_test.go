package systems

import (
	"testing"

	"github.com/pthm-cable/pasture/components"
	"github.com/pthm-cable/pasture/terrain"
)

func TestRegrowthRestoresGrass(t *testing.T) {
	w := newTestWorld(t, 8, 8)
	w.env.Resources.Build(w.grid, 1)
	w.grid.SetTile(3, 3, terrain.Dirt)
	w.env.Resources.RemoveTile(3, 3, components.ResourceForage)

	r := NewRegrowth(10)
	r.Schedule([]TileEvent{{TX: 3, TY: 3, Tick: 1, Indexed: true}})

	w.env.Tick = 5
	if n := r.Update(w.env); n != 0 || r.Pending() != 1 {
		t.Fatalf("early Update grew %d, pending %d", n, r.Pending())
	}
	w.env.Tick = 11
	if n := r.Update(w.env); n != 1 {
		t.Fatalf("Update grew %d, want 1", n)
	}
	if w.grid.TileAt(3, 3) != terrain.Grass || !w.env.Resources.Contains(3, 3, components.ResourceForage) {
		t.Error("tile not restored to indexed grass")
	}
	if len(w.env.Regrown) != 1 || w.env.Regrown[0].Tick != 11 {
		t.Errorf("Regrown = %+v, want one event at tick 11", w.env.Regrown)
	}
	if r.Pending() != 0 {
		t.Errorf("Pending = %d, want 0", r.Pending())
	}
}

func TestRegrowthDisabled(t *testing.T) {
	r := NewRegrowth(0)
	r.Schedule([]TileEvent{{TX: 1, TY: 1}})
	if r.Enabled() || r.Pending() != 0 {
		t.Errorf("disabled regrowth kept %d events", r.Pending())
	}
}
