package sim

import (
	"fmt"

	"github.com/pthm-cable/pasture/components"
)

// maxPlacementTries bounds the random search for a passable tile per agent.
const maxPlacementTries = 64

// Populate seeds n agents on tiles passable for their species. A predatorRatio
// fraction are predators. Seeded agents start up to maxAgeFraction of the way
// through their lifespan. It returns how many agents were placed.
func (s *Simulation) Populate(n int, predatorRatio, maxAgeFraction float64) (int, error) {
	rng := s.env.Rand
	cols, rows := s.grid.Size()
	ts := s.grid.TileSize()
	predators := int(float64(n)*predatorRatio + 0.5)

	placed := 0
	for i := 0; i < n; i++ {
		species := components.SpeciesGrazer
		if i < predators {
			species = components.SpeciesPredator
		}
		sp := &s.cfg.Derived.Species[species]

		var x, y float32
		found := false
		for try := 0; try < maxPlacementTries; try++ {
			tx, ty := rng.Intn(cols), rng.Intn(rows)
			if !sp.Passable[s.grid.TileAt(tx, ty)] {
				continue
			}
			x = (float32(tx) + 0.05 + 0.9*rng.Float32()) * ts
			y = (float32(ty) + 0.05 + 0.9*rng.Float32()) * ts
			found = true
			break
		}
		if !found {
			s.log.Warn("populate_no_tile", "species", species.String(), "placed", placed)
			continue
		}

		birth := s.tick
		if maxAgeFraction > 0 {
			birth -= int64(rng.Float64() * maxAgeFraction * float64(sp.Lifespan))
		}
		if _, err := s.CreateAgent(species, x, y, birth); err != nil {
			return placed, fmt.Errorf("populate: %w", err)
		}
		placed++
	}
	s.log.Info("population_seeded", "requested", n, "placed", placed, "predators", min(predators, placed))
	return placed, nil
}
