package telemetry

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/pthm-cable/pasture/components"
	"github.com/pthm-cable/pasture/terrain"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the complete simulation state at a tick.
type Snapshot struct {
	Version int    `json:"version"`
	RunID   string `json:"run_id,omitempty"`
	Seed    int64  `json:"seed"`
	Tick    int64  `json:"tick"`

	Cols     int            `json:"cols"`
	Rows     int            `json:"rows"`
	TileSize float32        `json:"tile_size"`
	Tiles    []terrain.Type `json:"tiles"` // row-major, reflects depletion

	Agents []AgentState `json:"agents"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// AgentState holds one agent's complete state.
type AgentState struct {
	ID      components.AgentID `json:"id"`
	Species components.Species `json:"species"`

	// Position and movement
	X    float32 `json:"x"`
	Y    float32 `json:"y"`
	VelX float32 `json:"vel_x"`
	VelY float32 `json:"vel_y"`

	// Needs and energy
	Hunger    float32 `json:"hunger"`
	Thirst    float32 `json:"thirst"`
	Fatigue   float32 `json:"fatigue"`
	Energy    float32 `json:"energy"`
	MaxEnergy float32 `json:"max_energy"`

	// Age
	BirthTick        int64   `json:"birth_tick"`
	ExpectedLifespan int64   `json:"expected_lifespan"`
	HealthHistory    float32 `json:"health_history"`

	// Behavior
	State     components.State        `json:"state"`
	Intent    components.IntentKind   `json:"intent"`
	Resource  components.ResourceKind `json:"resource"`
	Urgency   float32                 `json:"urgency"`
	HasTarget bool                    `json:"has_target"`
	TargetX   float32                 `json:"target_x"`
	TargetY   float32                 `json:"target_y"`
	Prey      components.AgentID      `json:"prey,omitempty"`
}

// SaveSnapshot writes a zstd-compressed JSON snapshot to dir.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_%d", snapshot.Tick)
	if snapshot.Bookmark != nil {
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Tick, snapshot.Bookmark.Type)
	}
	path := filepath.Join(dir, name+".json.zst")

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create snapshot: %w", err)
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return "", fmt.Errorf("zstd writer: %w", err)
	}
	bw := bufio.NewWriter(enc)
	if err := json.NewEncoder(bw).Encode(snapshot); err != nil {
		enc.Close()
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}

// LoadSnapshot reads a snapshot written by SaveSnapshot.
func LoadSnapshot(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	defer dec.Close()

	var snapshot Snapshot
	if err := json.NewDecoder(bufio.NewReader(dec)).Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snapshot.Version, SnapshotVersion)
	}
	return &snapshot, nil
}
