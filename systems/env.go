// Package systems provides the per-tick engines of the simulation.
package systems

import (
	"log/slog"
	"math/rand"

	"github.com/pthm-cable/pasture/components"
	"github.com/pthm-cable/pasture/config"
	"github.com/pthm-cable/pasture/terrain"
)

// TerrainMap is the tile world the engines read and the consumption engine
// mutates on depletion.
type TerrainMap interface {
	At(x, y float32) terrain.Type
	TileAt(tx, ty int) terrain.Type
	SetTile(tx, ty int, t terrain.Type)
	TileCoord(x, y float32) (tx, ty int)
	TileCenter(tx, ty int) (x, y float32)
	TileSize() float32
	Size() (cols, rows int)
	Bounds() (w, h float32)
}

// AgentLookup resolves live agents by ID. Doomed agents still resolve until
// the mortality pass removes them.
type AgentLookup interface {
	Locate(id components.AgentID) (x, y float32, species components.Species, ok bool)
	Doomed(id components.AgentID) bool
}

// AgentRef bundles one agent's components for an engine update.
type AgentRef struct {
	Org    *components.Organism
	Pos    *components.Position
	Vel    *components.Velocity
	Needs  *components.Needs
	Energy *components.Energy
	Age    *components.Age
	Beh    *components.Behavior
	Vit    *components.Vitals
}

// TileEvent records a terrain change at a tile.
type TileEvent struct {
	TX, TY  int
	Tick    int64
	Indexed bool // tile was present in the resource index
}

// Counters accumulates per-tick engine activity for telemetry.
type Counters struct {
	Decisions         int
	CacheHits         int
	OracleFailures    int
	InterruptAccepted int
	InterruptRejected int
	WanderFallbacks   int
	Collapses         int
	Blocked           int
	Arrivals          int
	Depletions        int
	Kills             int
}

// Env is the explicit simulation context handed to every engine call.
type Env struct {
	Cfg       *config.Config
	Terrain   TerrainMap
	Spatial   *SpatialIndex
	Resources *ResourceIndex
	Agents    AgentLookup
	Rand      *rand.Rand
	Log       *slog.Logger

	Tick int64
	DT   float32

	// Kills maps claimed prey to the predator that claimed it this tick.
	Kills map[components.AgentID]components.AgentID
	// Depleted lists forage tiles exhausted this tick.
	Depleted []TileEvent
	// Regrown lists depleted tiles that turned back into forage this tick.
	Regrown  []TileEvent
	Counters Counters
}

// BeginTick resets per-tick scratch state.
func (e *Env) BeginTick(tick int64, dt float32) {
	e.Tick = tick
	e.DT = dt
	e.Counters = Counters{}
	e.Depleted = e.Depleted[:0]
	e.Regrown = e.Regrown[:0]
	if e.Kills == nil {
		e.Kills = make(map[components.AgentID]components.AgentID)
	}
	clear(e.Kills)
}

// species returns the derived tables for an agent's species.
func (e *Env) species(s components.Species) *config.SpeciesDerived {
	if s >= components.NumSpecies {
		s = 0
	}
	return &e.Cfg.Derived.Species[s]
}

// center returns the world center, the fallback for non-finite positions.
func (e *Env) center() (float32, float32) {
	w, h := e.Terrain.Bounds()
	return w / 2, h / 2
}

// NewEnv builds a context with empty agent and resource indexes.
func NewEnv(cfg *config.Config, tm TerrainMap, rng *rand.Rand, log *slog.Logger) *Env {
	if log == nil {
		log = slog.Default()
	}
	return &Env{
		Cfg:       cfg,
		Terrain:   tm,
		Spatial:   NewSpatialIndex(float32(cfg.Spatial.AgentCellSize)),
		Resources: NewResourceIndex(float32(cfg.Spatial.ResourceCellSize), tm.TileSize()),
		Rand:      rng,
		Log:       log,
		DT:        cfg.Derived.DT32,
		Kills:     make(map[components.AgentID]components.AgentID),
	}
}
