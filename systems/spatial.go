package systems

import (
	"math"

	"github.com/pthm-cable/pasture/components"
)

// CellKey identifies a grid cell: floor(position / cellSize) on each axis.
type CellKey struct {
	X, Y int32
}

// cellKey returns the key for a world position. Non-finite positions land in cell 0,0.
func cellKey(x, y, cellSize float32) CellKey {
	if !isFinite(x) || !isFinite(y) {
		return CellKey{}
	}
	return CellKey{
		X: int32(math.Floor(float64(x / cellSize))),
		Y: int32(math.Floor(float64(y / cellSize))),
	}
}

// ringsFor returns the number of rings needed to cover radius r, saturated at
// extent. A radius of +Inf covers the whole extent.
func ringsFor(r, cellSize float32, extent int32) int32 {
	if !(r > 0) || extent <= 0 {
		return 0
	}
	n := math.Ceil(float64(r) / float64(cellSize))
	if n >= float64(extent) {
		return extent
	}
	return int32(n)
}

// extentFrom returns the Chebyshev ring distance from center to the farthest
// corner of the [lo, hi] cell box.
func extentFrom(center, lo, hi CellKey) int32 {
	return max(center.X-lo.X, hi.X-center.X, center.Y-lo.Y, hi.Y-center.Y, 0)
}

// forEachRingCell visits the cells at Chebyshev distance ring from center,
// row by row. Returning false stops the walk.
func forEachRingCell(center CellKey, ring int32, fn func(CellKey) bool) bool {
	if ring == 0 {
		return fn(center)
	}
	for dy := -ring; dy <= ring; dy++ {
		edgeRow := dy == -ring || dy == ring
		for dx := -ring; dx <= ring; dx++ {
			if !edgeRow && dx != -ring && dx != ring {
				continue
			}
			if !fn(CellKey{X: center.X + dx, Y: center.Y + dy}) {
				return false
			}
		}
	}
	return true
}

// SpatialEntry is one agent as seen by the spatial index.
type SpatialEntry struct {
	ID      components.AgentID
	X, Y    float32
	Species components.Species
}

// Neighbor holds a nearby agent with precomputed spatial data.
type Neighbor struct {
	ID      components.AgentID
	Species components.Species
	DX, DY  float32 // delta from query origin
	DistSq  float32
}

// MaxQueryResults caps the number of neighbors returned by QueryRadiusInto.
// This prevents density spikes from causing unbounded work.
const MaxQueryResults = 128

// SpatialIndex is a uniform-grid hash of agent positions. It holds no state
// across ticks: Rebuild runs before any query in a tick.
type SpatialIndex struct {
	cellSize float32
	cells    map[CellKey][]SpatialEntry
	cellOf   map[components.AgentID]CellKey
	min, max CellKey // occupied cell bounds, never shrunk by Remove
	empty    bool
}

// NewSpatialIndex creates an empty index.
func NewSpatialIndex(cellSize float32) *SpatialIndex {
	if !(cellSize > 0) {
		cellSize = 1
	}
	return &SpatialIndex{
		cellSize: cellSize,
		cells:    make(map[CellKey][]SpatialEntry),
		cellOf:   make(map[components.AgentID]CellKey),
		empty:    true,
	}
}

// CellSize returns the grid cell size.
func (s *SpatialIndex) CellSize() float32 { return s.cellSize }

// Len returns the number of indexed agents.
func (s *SpatialIndex) Len() int { return len(s.cellOf) }

// Clear removes all agents, keeping cell storage for reuse.
func (s *SpatialIndex) Clear() {
	for k, v := range s.cells {
		s.cells[k] = v[:0]
	}
	clear(s.cellOf)
	s.empty = true
}

// Rebuild clears the index and inserts every entry.
func (s *SpatialIndex) Rebuild(entries []SpatialEntry) {
	s.Clear()
	for _, e := range entries {
		s.Insert(e)
	}
}

// Insert adds an agent. Inserting an ID already present moves it.
func (s *SpatialIndex) Insert(e SpatialEntry) {
	if _, ok := s.cellOf[e.ID]; ok {
		s.Remove(e.ID)
	}
	key := cellKey(e.X, e.Y, s.cellSize)
	s.cells[key] = append(s.cells[key], e)
	s.cellOf[e.ID] = key
	s.growBounds(key)
}

func (s *SpatialIndex) growBounds(k CellKey) {
	if s.empty {
		s.min, s.max, s.empty = k, k, false
		return
	}
	s.min.X, s.min.Y = min(s.min.X, k.X), min(s.min.Y, k.Y)
	s.max.X, s.max.Y = max(s.max.X, k.X), max(s.max.Y, k.Y)
}

// Remove drops an agent. It reports whether the agent was present.
func (s *SpatialIndex) Remove(id components.AgentID) bool {
	key, ok := s.cellOf[id]
	if !ok {
		return false
	}
	delete(s.cellOf, id)
	cell := s.cells[key]
	for i := range cell {
		if cell[i].ID == id {
			s.cells[key] = append(cell[:i], cell[i+1:]...)
			break
		}
	}
	return true
}

// Contains reports whether the agent is indexed.
func (s *SpatialIndex) Contains(id components.AgentID) bool {
	_, ok := s.cellOf[id]
	return ok
}

// rings returns the last ring worth visiting from center, or -1 when the index
// is empty.
func (s *SpatialIndex) rings(center CellKey, r float32) int32 {
	if s.empty {
		return -1
	}
	return ringsFor(r, s.cellSize, extentFrom(center, s.min, s.max))
}

// QueryRadius returns every agent whose cell lies within ceil(r/cellSize)
// rings of the query cell. Results are not filtered by exact distance.
func (s *SpatialIndex) QueryRadius(x, y, r float32) []components.AgentID {
	var out []components.AgentID
	center := cellKey(x, y, s.cellSize)
	limit := s.rings(center, r)
	for ring := int32(0); ring <= limit; ring++ {
		forEachRingCell(center, ring, func(k CellKey) bool {
			for _, e := range s.cells[k] {
				out = append(out, e.ID)
			}
			return true
		})
	}
	return out
}

// QueryRadiusInto appends agents within exact distance r to dst, nearest rings
// first, up to MaxQueryResults. Reuse dst across calls to avoid allocations.
func (s *SpatialIndex) QueryRadiusInto(dst []Neighbor, x, y, r float32, exclude components.AgentID) []Neighbor {
	radiusSq := r * r
	center := cellKey(x, y, s.cellSize)
	limit := s.rings(center, r)
	for ring := int32(0); ring <= limit; ring++ {
		full := !forEachRingCell(center, ring, func(k CellKey) bool {
			for _, e := range s.cells[k] {
				if e.ID == exclude {
					continue
				}
				dx, dy := e.X-x, e.Y-y
				distSq := dx*dx + dy*dy
				if distSq > radiusSq {
					continue
				}
				dst = append(dst, Neighbor{ID: e.ID, Species: e.Species, DX: dx, DY: dy, DistSq: distSq})
				if len(dst) >= MaxQueryResults {
					return false
				}
			}
			return true
		})
		if full {
			break
		}
	}
	return dst
}
