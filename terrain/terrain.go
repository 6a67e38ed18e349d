// Package terrain provides the tile grid the simulation runs on.
package terrain

// Type is a terrain tile kind.
type Type uint8

const (
	DeepWater Type = iota
	ShallowWater
	Sand
	Grass
	Dirt
	Forest
	Hills
	Mountain
	NumTypes
)

var typeNames = [NumTypes]string{
	"deep_water", "shallow_water", "sand", "grass", "dirt", "forest", "hills", "mountain",
}

func (t Type) String() string {
	if t < NumTypes {
		return typeNames[t]
	}
	return "unknown"
}

// Parse maps a config key to a terrain type.
func Parse(name string) (Type, bool) {
	for i, n := range typeNames {
		if n == name {
			return Type(i), true
		}
	}
	return 0, false
}

// IsWater reports whether the tile holds drinkable water.
func (t Type) IsWater() bool {
	return t == DeepWater || t == ShallowWater
}

// IsForage reports whether the tile can be grazed.
func (t Type) IsForage() bool {
	return t == Grass
}

// Grid is a rectangular tile map. Tile (0,0) covers world [0,TileSize) on both axes.
type Grid struct {
	cols, rows int
	tileSize   float32
	tiles      []Type
}

// NewGrid creates a grid filled with fill.
func NewGrid(cols, rows int, tileSize float32, fill Type) *Grid {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	if tileSize <= 0 {
		tileSize = 1
	}
	tiles := make([]Type, cols*rows)
	for i := range tiles {
		tiles[i] = fill
	}
	return &Grid{cols: cols, rows: rows, tileSize: tileSize, tiles: tiles}
}

// Size returns the grid dimensions in tiles.
func (g *Grid) Size() (cols, rows int) { return g.cols, g.rows }

// TileSize returns the world size of one tile.
func (g *Grid) TileSize() float32 { return g.tileSize }

// Bounds returns the world width and height.
func (g *Grid) Bounds() (w, h float32) {
	return float32(g.cols) * g.tileSize, float32(g.rows) * g.tileSize
}

// InBounds reports whether a tile coordinate lies on the grid.
func (g *Grid) InBounds(tx, ty int) bool {
	return tx >= 0 && ty >= 0 && tx < g.cols && ty < g.rows
}

// TileAt returns the tile type. Off-grid coordinates read as Mountain.
func (g *Grid) TileAt(tx, ty int) Type {
	if !g.InBounds(tx, ty) {
		return Mountain
	}
	return g.tiles[ty*g.cols+tx]
}

// SetTile overwrites a tile. Off-grid writes are ignored.
func (g *Grid) SetTile(tx, ty int, t Type) {
	if g.InBounds(tx, ty) {
		g.tiles[ty*g.cols+tx] = t
	}
}

// TileCoord converts a world position to tile coordinates.
func (g *Grid) TileCoord(x, y float32) (tx, ty int) {
	return floorDiv(x, g.tileSize), floorDiv(y, g.tileSize)
}

// TileCenter returns the world position of a tile's center.
func (g *Grid) TileCenter(tx, ty int) (x, y float32) {
	return (float32(tx) + 0.5) * g.tileSize, (float32(ty) + 0.5) * g.tileSize
}

// At returns the terrain under a world position.
func (g *Grid) At(x, y float32) Type {
	tx, ty := g.TileCoord(x, y)
	return g.TileAt(tx, ty)
}

// Tiles returns a row-major copy of the grid.
func (g *Grid) Tiles() []Type {
	out := make([]Type, len(g.tiles))
	copy(out, g.tiles)
	return out
}

// Counts returns how many tiles of each type the grid holds.
func (g *Grid) Counts() [NumTypes]int {
	var counts [NumTypes]int
	for _, t := range g.tiles {
		counts[t]++
	}
	return counts
}

func floorDiv(v, size float32) int {
	q := v / size
	i := int(q)
	if q < 0 && float32(i) != q {
		i--
	}
	return i
}
