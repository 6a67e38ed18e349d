package components

import "math"

// Position represents an agent's world position.
type Position struct {
	X, Y float32
}

// Velocity represents an agent's velocity in world units per second.
type Velocity struct {
	X, Y float32
}

// Finite reports whether both coordinates are usable numbers.
func (p Position) Finite() bool {
	return finite(p.X) && finite(p.Y)
}

// Target is a movement goal in world coordinates.
type Target struct {
	X, Y   float32
	Active bool
}

// Clear deactivates the target.
func (t *Target) Clear() {
	*t = Target{}
}

// Finite reports whether the target coordinates are usable numbers.
func (t Target) Finite() bool {
	return finite(t.X) && finite(t.Y)
}

func finite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
