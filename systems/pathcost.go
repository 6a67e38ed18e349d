package systems

import (
	"github.com/pthm-cable/pasture/config"
	"github.com/pthm-cable/pasture/terrain"
)

// TerrainCost is the per-unit traversal cost of a terrain for a species:
// energy multiplier over speed multiplier. Impassable terrain costs
// penalty times its energy multiplier.
func TerrainCost(sp *config.SpeciesDerived, t terrain.Type, penalty float32) float32 {
	if t >= terrain.NumTypes {
		return penalty
	}
	energy := max(sp.EnergyCost[t], 0.1)
	if !sp.Passable[t] {
		return penalty * max(energy, 1)
	}
	return energy / sp.Speed[t]
}

// PathCoster estimates straight-line traversal cost by sampling terrain.
// It is not a graph search; obstacles only raise the cost.
type PathCoster struct {
	spacing    float32
	maxSamples int
	penalty    float32
}

// NewPathCoster builds a coster from decision config.
func NewPathCoster(cfg config.PathConfig) PathCoster {
	return PathCoster{
		spacing:    float32(cfg.SampleSpacing),
		maxSamples: cfg.MaxSamples,
		penalty:    float32(cfg.ImpassablePenalty),
	}
}

// Cost returns distance times the mean terrain cost sampled along the segment.
func (p PathCoster) Cost(tm TerrainMap, sp *config.SpeciesDerived, x0, y0, x1, y1 float32) float32 {
	d := distance(x0, y0, x1, y1)
	if !isFinite(d) {
		return float32(1e9)
	}
	if d == 0 {
		return 0
	}
	n := int(d/p.spacing) + 1
	if n > p.maxSamples {
		n = p.maxSamples
	}
	var sum float32
	for i := 0; i < n; i++ {
		t := (float32(i) + 0.5) / float32(n)
		sum += TerrainCost(sp, tm.At(lerp(x0, x1, t), lerp(y0, y1, t)), p.penalty)
	}
	return d * sum / float32(n)
}

// Passable reports whether the tile under (x,y) can be entered by the species.
func Passable(tm TerrainMap, sp *config.SpeciesDerived, x, y float32) bool {
	t := tm.At(x, y)
	return t < terrain.NumTypes && sp.Passable[t]
}
