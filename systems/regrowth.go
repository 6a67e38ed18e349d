package systems

import (
	"github.com/pthm-cable/pasture/components"
	"github.com/pthm-cable/pasture/terrain"
)

// Regrowth returns depleted forage tiles to grass after a fixed delay.
// A zero delay disables it and depleted tiles stay barren.
type Regrowth struct {
	delay   int64
	pending []TileEvent // ordered by depletion tick
}

// NewRegrowth creates a regrowth scheduler.
func NewRegrowth(delayTicks int64) *Regrowth {
	return &Regrowth{delay: delayTicks}
}

// Enabled reports whether depleted tiles ever regrow.
func (r *Regrowth) Enabled() bool { return r.delay > 0 }

// Pending returns the number of tiles waiting to regrow.
func (r *Regrowth) Pending() int { return len(r.pending) }

// Schedule records newly depleted tiles.
func (r *Regrowth) Schedule(events []TileEvent) {
	if !r.Enabled() {
		return
	}
	r.pending = append(r.pending, events...)
}

// Update regrows every tile whose delay has elapsed and returns how many
// tiles turned back into grass. A tile changed to something else in the
// meantime is left alone.
func (r *Regrowth) Update(env *Env) int {
	if !r.Enabled() {
		return 0
	}
	depleted := env.Cfg.Derived.Depleted
	n, grown := 0, 0
	for n < len(r.pending) && env.Tick-r.pending[n].Tick >= r.delay {
		ev := r.pending[n]
		n++
		if env.Terrain.TileAt(ev.TX, ev.TY) != depleted {
			continue
		}
		env.Terrain.SetTile(ev.TX, ev.TY, terrain.Grass)
		if ev.Indexed {
			env.Resources.AddTile(ev.TX, ev.TY, components.ResourceForage)
		}
		env.Regrown = append(env.Regrown, TileEvent{TX: ev.TX, TY: ev.TY, Tick: env.Tick, Indexed: ev.Indexed})
		grown++
	}
	r.pending = append(r.pending[:0], r.pending[n:]...)
	return grown
}
