package systems

import (
	"math"
	"sort"

	"github.com/pthm-cable/pasture/components"
	"github.com/pthm-cable/pasture/terrain"
)

// TileCoord is a tile position on the terrain grid.
type TileCoord struct {
	TX, TY int
}

// ResourceHit is one resource tile found by FindNearest.
type ResourceHit struct {
	Tile     TileCoord
	X, Y     float32 // tile center
	Distance float32
}

type resourceCell struct {
	tiles [components.NumResourceKinds][]TileCoord
}

// ResourceIndex is a uniform-grid hash over sampled resource tiles.
// Only Water and Forage are indexed; prey are found through the SpatialIndex.
type ResourceIndex struct {
	cellSize float32
	tileSize float32
	cells    map[CellKey]*resourceCell
	counts   [components.NumResourceKinds]int
	min, max CellKey
	empty    bool
}

// NewResourceIndex creates an empty index.
func NewResourceIndex(cellSize, tileSize float32) *ResourceIndex {
	if !(cellSize > 0) {
		cellSize = 1
	}
	if !(tileSize > 0) {
		tileSize = 1
	}
	return &ResourceIndex{
		cellSize: cellSize,
		tileSize: tileSize,
		cells:    make(map[CellKey]*resourceCell),
		empty:    true,
	}
}

// KindOf returns the resource kind a terrain type provides.
func KindOf(t terrain.Type) (components.ResourceKind, bool) {
	switch {
	case t.IsWater():
		return components.ResourceWater, true
	case t.IsForage():
		return components.ResourceForage, true
	}
	return 0, false
}

// Build indexes every stride-th tile on both axes of the terrain.
func (r *ResourceIndex) Build(tm TerrainMap, stride int) {
	if stride < 1 {
		stride = 1
	}
	r.tileSize = tm.TileSize()
	clear(r.cells)
	r.counts = [components.NumResourceKinds]int{}
	r.empty = true

	cols, rows := tm.Size()
	for ty := 0; ty < rows; ty += stride {
		for tx := 0; tx < cols; tx += stride {
			if kind, ok := KindOf(tm.TileAt(tx, ty)); ok {
				r.AddTile(tx, ty, kind)
			}
		}
	}
}

// Count returns how many tiles of kind are indexed.
func (r *ResourceIndex) Count(kind components.ResourceKind) int {
	if kind >= components.NumResourceKinds {
		return 0
	}
	return r.counts[kind]
}

func (r *ResourceIndex) tileCenter(t TileCoord) (float32, float32) {
	return (float32(t.TX) + 0.5) * r.tileSize, (float32(t.TY) + 0.5) * r.tileSize
}

func (r *ResourceIndex) keyOf(t TileCoord) CellKey {
	x, y := r.tileCenter(t)
	return cellKey(x, y, r.cellSize)
}

// AddTile indexes a tile. It reports false if the tile was already present.
func (r *ResourceIndex) AddTile(tx, ty int, kind components.ResourceKind) bool {
	if kind != components.ResourceWater && kind != components.ResourceForage {
		return false
	}
	t := TileCoord{tx, ty}
	key := r.keyOf(t)
	cell := r.cells[key]
	if cell == nil {
		cell = &resourceCell{}
		r.cells[key] = cell
	}
	for _, existing := range cell.tiles[kind] {
		if existing == t {
			return false
		}
	}
	cell.tiles[kind] = append(cell.tiles[kind], t)
	r.counts[kind]++
	r.growBounds(key)
	return true
}

// RemoveTile drops a tile. It reports whether the tile was indexed.
func (r *ResourceIndex) RemoveTile(tx, ty int, kind components.ResourceKind) bool {
	if kind >= components.NumResourceKinds {
		return false
	}
	t := TileCoord{tx, ty}
	cell := r.cells[r.keyOf(t)]
	if cell == nil {
		return false
	}
	list := cell.tiles[kind]
	for i, existing := range list {
		if existing == t {
			cell.tiles[kind] = append(list[:i], list[i+1:]...)
			r.counts[kind]--
			return true
		}
	}
	return false
}

// Contains reports whether a tile is indexed under kind.
func (r *ResourceIndex) Contains(tx, ty int, kind components.ResourceKind) bool {
	if kind >= components.NumResourceKinds {
		return false
	}
	t := TileCoord{tx, ty}
	cell := r.cells[r.keyOf(t)]
	if cell == nil {
		return false
	}
	for _, existing := range cell.tiles[kind] {
		if existing == t {
			return true
		}
	}
	return false
}

func (r *ResourceIndex) growBounds(k CellKey) {
	if r.empty {
		r.min, r.max, r.empty = k, k, false
		return
	}
	r.min.X, r.min.Y = min(r.min.X, k.X), min(r.min.Y, k.Y)
	r.max.X, r.max.Y = max(r.max.X, k.X), max(r.max.Y, k.Y)
}

// ringLimit returns the last ring worth visiting from center: the radius bound,
// capped by the extent of occupied cells.
func (r *ResourceIndex) ringLimit(center CellKey, maxRadius float32) int32 {
	return ringsFor(maxRadius, r.cellSize, extentFrom(center, r.min, r.max))
}

// FindNearest returns up to maxResults tiles of kind within maxRadius of (x,y),
// nearest first. The search expands ring by ring and stops at the first ring
// that yields a match in range.
func (r *ResourceIndex) FindNearest(x, y float32, kind components.ResourceKind, maxResults int, maxRadius float32) []ResourceHit {
	return r.FindNearestInto(nil, x, y, kind, maxResults, maxRadius)
}

// FindNearestInto is FindNearest appending into dst[:0].
func (r *ResourceIndex) FindNearestInto(dst []ResourceHit, x, y float32, kind components.ResourceKind, maxResults int, maxRadius float32) []ResourceHit {
	dst = dst[:0]
	if maxResults <= 0 || !(maxRadius >= 0) || r.empty || r.Count(kind) == 0 {
		return dst
	}
	if !isFinite(x) || !isFinite(y) {
		return dst
	}

	radiusSq := maxRadius * maxRadius
	center := cellKey(x, y, r.cellSize)
	limit := r.ringLimit(center, maxRadius)
	for ring := int32(0); ring <= limit && len(dst) == 0; ring++ {
		forEachRingCell(center, ring, func(k CellKey) bool {
			cell := r.cells[k]
			if cell == nil {
				return true
			}
			for _, t := range cell.tiles[kind] {
				tx, ty := r.tileCenter(t)
				dSq := distanceSq(x, y, tx, ty)
				if dSq <= radiusSq {
					dst = append(dst, ResourceHit{Tile: t, X: tx, Y: ty, Distance: float32(math.Sqrt(float64(dSq)))})
				}
			}
			return true
		})
	}

	sort.Slice(dst, func(i, j int) bool {
		if dst[i].Distance != dst[j].Distance {
			return dst[i].Distance < dst[j].Distance
		}
		if dst[i].Tile.TY != dst[j].Tile.TY {
			return dst[i].Tile.TY < dst[j].Tile.TY
		}
		return dst[i].Tile.TX < dst[j].Tile.TX
	})
	if len(dst) > maxResults {
		dst = dst[:maxResults]
	}
	return dst
}
