package systems

import (
	"math"

	"github.com/pthm-cable/pasture/components"
	"github.com/pthm-cable/pasture/config"
)

// stuckSpeed is the terrain speed multiplier used when an agent stands on a
// tile it could not normally enter, so it can walk off.
const stuckSpeed = 0.25

// MovementEngine advances Moving agents toward their targets.
type MovementEngine struct {
	arrival    float32
	lowEnergy  float32
	midEnergy  float32
	lowPenalty float32
	probe      float32
	strength   float32
	urgent     float32
	probes     [][2]float32 // unit vectors for repulsion sampling
}

// NewMovementEngine creates a movement engine.
func NewMovementEngine(env *Env) *MovementEngine {
	c := env.Cfg.Movement
	s := &MovementEngine{
		arrival:    float32(c.ArrivalThreshold),
		lowEnergy:  float32(c.LowEnergy),
		midEnergy:  float32(c.MidEnergy),
		lowPenalty: float32(c.LowEnergyPenalty),
		probe:      float32(c.RepulsionProbe),
		strength:   float32(c.RepulsionStrength),
		urgent:     float32(env.Cfg.Decision.UrgentThreshold),
	}
	for i := 0; i < c.RepulsionSamples; i++ {
		angle := 2 * math.Pi * float64(i) / float64(c.RepulsionSamples)
		s.probes = append(s.probes, [2]float32{float32(math.Cos(angle)), float32(math.Sin(angle))})
	}
	return s
}

// EnergyPenalty returns the speed multiplier for an energy ratio.
func (s *MovementEngine) EnergyPenalty(ratio float32) float32 {
	switch {
	case ratio >= s.midEnergy:
		return 1
	case ratio <= s.lowEnergy:
		return s.lowPenalty
	default:
		return lerp(s.lowPenalty, 1, (ratio-s.lowEnergy)/(s.midEnergy-s.lowEnergy))
	}
}

// Speed returns the distance an agent covers this tick.
func (s *MovementEngine) Speed(env *Env, a AgentRef, sp *config.SpeciesDerived) float32 {
	base := sp.WalkSpeed
	if a.Beh.Urgency >= s.urgent {
		base = sp.RunSpeed
	}
	tile := env.Terrain.At(a.Pos.X, a.Pos.Y)
	terrainMult := sp.Speed[tile]
	if !sp.Passable[tile] {
		terrainMult = stuckSpeed
	}
	return base * terrainMult * s.EnergyPenalty(a.Energy.Ratio()) * env.DT
}

// Update moves one agent a single step.
func (s *MovementEngine) Update(env *Env, a AgentRef) {
	if a.Vit.Doomed() {
		return
	}
	b := a.Beh
	if b.State != components.StateMoving {
		if b.State != components.StateIdle || a.Vel.X != 0 || a.Vel.Y != 0 {
			*a.Vel = components.Velocity{}
		}
		return
	}
	if !a.Pos.Finite() {
		a.Pos.X, a.Pos.Y = env.center()
		env.Log.Warn("agent_position_reset", "agent", a.Org.ID, "engine", "movement")
	}
	if !b.Target.Active || !b.Target.Finite() {
		if b.Target.Active {
			env.Log.Warn("agent_target_invalid", "agent", a.Org.ID, "tick", env.Tick)
		}
		b.Halt(a.Vel)
		return
	}

	dx, dy := b.Target.X-a.Pos.X, b.Target.Y-a.Pos.Y
	dist := sqrtf(dx*dx + dy*dy)
	if dist <= s.arrival {
		b.Target.Clear()
		b.State = components.StateIdle
		*a.Vel = components.Velocity{}
		env.Counters.Arrivals++
		return
	}

	sp := env.species(a.Org.Species)
	step := min(s.Speed(env, a, sp), dist)
	if !(step > 0) {
		*a.Vel = components.Velocity{}
		return
	}

	mx, my := dx/dist, dy/dist
	rx, ry := s.repulsion(env, sp, a.Pos.X, a.Pos.Y)
	if rx != 0 || ry != 0 {
		if l := velocityMagnitude(mx+rx, my+ry); l > 1e-6 {
			mx, my = (mx+rx)/l, (my+ry)/l
		}
	}

	nx, ny, ok := s.tryStep(env, sp, a.Pos.X, a.Pos.Y, mx, my, step)
	if !ok {
		b.Halt(a.Vel)
		env.Counters.Blocked++
		return
	}

	a.Vel.X = (nx - a.Pos.X) / env.DT
	a.Vel.Y = (ny - a.Pos.Y) / env.DT
	a.Pos.X, a.Pos.Y = nx, ny
}

// repulsion sums unit vectors pointing away from impassable probe points.
func (s *MovementEngine) repulsion(env *Env, sp *config.SpeciesDerived, x, y float32) (float32, float32) {
	if s.strength == 0 || s.probe == 0 {
		return 0, 0
	}
	var rx, ry float32
	for _, d := range s.probes {
		if !Passable(env.Terrain, sp, x+d[0]*s.probe, y+d[1]*s.probe) {
			rx -= d[0]
			ry -= d[1]
		}
	}
	l := velocityMagnitude(rx, ry)
	if l < 1e-6 {
		return 0, 0
	}
	return rx / l * s.strength, ry / l * s.strength
}

// tryStep returns the first passable position among the direct step, the two
// axis slides and the two diagonal slides.
func (s *MovementEngine) tryStep(env *Env, sp *config.SpeciesDerived, x, y, mx, my, step float32) (float32, float32, bool) {
	const diag = math.Sqrt2 / 2
	candidates := [5][2]float32{
		{x + mx*step, y + my*step},
		{x + sign(mx)*step, y},
		{x, y + sign(my)*step},
		{x + (mx-my)*diag*step, y + (mx+my)*diag*step}, // +45 degrees
		{x + (mx+my)*diag*step, y + (my-mx)*diag*step}, // -45 degrees
	}
	w, h := env.Terrain.Bounds()
	for i, c := range candidates {
		if (i == 1 && mx == 0) || (i == 2 && my == 0) {
			continue
		}
		cx := clampFloat(c[0], 0, w-1e-3)
		cy := clampFloat(c[1], 0, h-1e-3)
		if cx == x && cy == y {
			continue
		}
		if Passable(env.Terrain, sp, cx, cy) {
			return cx, cy, true
		}
	}
	return x, y, false
}

func sign(v float32) float32 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
