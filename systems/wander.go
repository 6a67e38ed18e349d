package systems

import (
	"math"

	"github.com/pthm-cable/pasture/config"
)

// Wanderer picks terrain-aware wander targets.
type Wanderer struct {
	samples         int
	radius          float32
	desperateNeed   float32
	desperateFactor float32
	costScale       float32
	coster          PathCoster

	weights []float32
	xs, ys  []float32
}

// NewWanderer builds a wanderer from decision config.
func NewWanderer(cfg config.DecisionConfig) *Wanderer {
	n := cfg.Wander.Samples
	return &Wanderer{
		samples:         n,
		radius:          float32(cfg.Wander.Radius),
		desperateNeed:   float32(cfg.Wander.DesperateNeed),
		desperateFactor: float32(cfg.Wander.DesperateFactor),
		costScale:       float32(cfg.Wander.CostScale),
		coster:          NewPathCoster(cfg.Path),
		weights:         make([]float32, n),
		xs:              make([]float32, n),
		ys:              make([]float32, n),
	}
}

// Radius returns the search radius for a driving need level.
func (w *Wanderer) Radius(drivingNeed float32) float32 {
	if drivingNeed >= w.desperateNeed {
		return w.radius * w.desperateFactor
	}
	return w.radius
}

// Pick samples directions around (x,y), weights each by exp(-cost/scale) and
// draws one with the simulation RNG. It reports false when every sample lands
// on impassable terrain or off the map.
func (w *Wanderer) Pick(env *Env, sp *config.SpeciesDerived, x, y, drivingNeed float32) (tx, ty float32, ok bool) {
	radius := w.Radius(drivingNeed)
	width, height := env.Terrain.Bounds()
	offset := env.Rand.Float64() * 2 * math.Pi
	step := 2 * math.Pi / float64(w.samples)

	var total float32
	for i := 0; i < w.samples; i++ {
		angle := offset + float64(i)*step
		cx := x + radius*float32(math.Cos(angle))
		cy := y + radius*float32(math.Sin(angle))
		w.xs[i], w.ys[i], w.weights[i] = cx, cy, 0
		if cx < 0 || cy < 0 || cx >= width || cy >= height || !Passable(env.Terrain, sp, cx, cy) {
			continue
		}
		cost := w.coster.Cost(env.Terrain, sp, x, y, cx, cy)
		w.weights[i] = expf(-cost / w.costScale)
		total += w.weights[i]
	}
	if !(total > 0) {
		return 0, 0, false
	}

	r := float32(env.Rand.Float64()) * total
	for i := 0; i < w.samples; i++ {
		if w.weights[i] == 0 {
			continue
		}
		r -= w.weights[i]
		if r <= 0 {
			return w.xs[i], w.ys[i], true
		}
	}
	// Rounding left r slightly positive: take the last weighted sample.
	for i := w.samples - 1; i >= 0; i-- {
		if w.weights[i] > 0 {
			return w.xs[i], w.ys[i], true
		}
	}
	return 0, 0, false
}
