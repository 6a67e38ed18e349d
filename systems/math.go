package systems

import "math"

// clampFloat clamps a float32 value between min and max. NaN maps to min.
func clampFloat(v, minVal, maxVal float32) float32 {
	if !(v >= minVal) {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// clamp01 clamps a float32 value to the [0, 1] range.
func clamp01(v float32) float32 {
	return clampFloat(v, 0, 1)
}

// lerp interpolates linearly from a to b.
func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// expf is math.Exp for float32.
func expf(x float32) float32 {
	return float32(math.Exp(float64(x)))
}

// isFinite reports whether v is neither NaN nor infinite.
func isFinite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// distanceSq returns the squared distance between two points.
func distanceSq(x1, y1, x2, y2 float32) float32 {
	dx := x1 - x2
	dy := y1 - y2
	return dx*dx + dy*dy
}

// distance returns the Euclidean distance between two points.
func distance(x1, y1, x2, y2 float32) float32 {
	return float32(math.Sqrt(float64(distanceSq(x1, y1, x2, y2))))
}

// velocityMagnitude returns the magnitude of a velocity vector.
func velocityMagnitude(vx, vy float32) float32 {
	return float32(math.Sqrt(float64(vx*vx + vy*vy)))
}

// sqrtf is math.Sqrt for float32.
func sqrtf(v float32) float32 {
	return float32(math.Sqrt(float64(v)))
}
