package terrain

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// GenConfig holds terrain generation parameters. Levels are normalized noise
// thresholds in [0,1].
type GenConfig struct {
	Cols, Rows    int
	TileSize      float32
	Frequency     float64 // base noise frequency per tile
	Octaves       int
	DeepLevel     float64 // elevation below this is deep water
	ShallowLevel  float64
	SandLevel     float64
	HillsLevel    float64
	MountainLevel float64
	ForestMoist   float64 // moisture above this on lowland is forest
	DryMoist      float64 // moisture below this on lowland is dirt
}

// DefaultGenConfig returns a temperate map with scattered lakes.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Cols:          128,
		Rows:          128,
		TileSize:      16,
		Frequency:     0.035,
		Octaves:       4,
		DeepLevel:     0.22,
		ShallowLevel:  0.30,
		SandLevel:     0.34,
		HillsLevel:    0.72,
		MountainLevel: 0.82,
		ForestMoist:   0.66,
		DryMoist:      0.30,
	}
}

// Generate builds a grid from layered elevation and moisture noise.
// The same seed and config always yield the same grid.
func Generate(cfg GenConfig, seed int64) *Grid {
	elevNoise := opensimplex.NewNormalized(seed)
	moistNoise := opensimplex.NewNormalized(seed + 1)

	octaves := cfg.Octaves
	if octaves < 1 {
		octaves = 1
	}

	g := NewGrid(cfg.Cols, cfg.Rows, cfg.TileSize, Grass)
	for ty := 0; ty < g.rows; ty++ {
		for tx := 0; tx < g.cols; tx++ {
			x, y := float64(tx), float64(ty)
			elev := octaveNoise(elevNoise, x, y, octaves, cfg.Frequency, 0.5)
			moist := octaveNoise(moistNoise, x, y, octaves-1, cfg.Frequency*1.3, 0.5)
			g.tiles[ty*g.cols+tx] = classify(elev, moist, cfg)
		}
	}
	return g
}

func classify(elev, moist float64, cfg GenConfig) Type {
	switch {
	case elev < cfg.DeepLevel:
		return DeepWater
	case elev < cfg.ShallowLevel:
		return ShallowWater
	case elev < cfg.SandLevel:
		return Sand
	case elev >= cfg.MountainLevel:
		return Mountain
	case elev >= cfg.HillsLevel:
		return Hills
	case moist >= cfg.ForestMoist:
		return Forest
	case moist < cfg.DryMoist:
		return Dirt
	default:
		return Grass
	}
}

// octaveNoise layers frequencies into fractal noise, normalized to [0,1].
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	if octaves < 1 {
		octaves = 1
	}
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0
	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}
	return math.Max(0, math.Min(1, total/maxVal))
}
