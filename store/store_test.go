package store

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/pthm-cable/pasture/telemetry"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	db.now = func() time.Time { return time.Unix(1_700_000_000, 0) }
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRunLifecycle(t *testing.T) {
	db := openTestDB(t)

	if err := db.BeginRun("run-a", 42, "seed: 42\n"); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	if err := db.BeginRun("run-a", 42, ""); err == nil {
		t.Error("duplicate BeginRun should fail")
	}
	if err := db.FinishRun("run-a", 3600, 17); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	r, err := db.GetRun("run-a")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if r.Seed != 42 || r.Config != "seed: 42\n" {
		t.Errorf("run = %+v", r)
	}
	if r.FinalTick != 3600 || r.Survivors != 17 || r.FinishedAt != 1_700_000_000 {
		t.Errorf("finish not recorded: %+v", r)
	}

	if err := db.FinishRun("missing", 1, 0); !errors.Is(err, ErrUnknownRun) {
		t.Errorf("FinishRun(missing) err = %v, want ErrUnknownRun", err)
	}
}

func TestSaveWindow(t *testing.T) {
	db := openTestDB(t)
	if err := db.BeginRun("run-w", 1, ""); err != nil {
		t.Fatal(err)
	}

	for _, end := range []int64{1200, 600} {
		s := telemetry.WindowStats{
			WindowEndTick:  end,
			SimTimeSec:     float64(end) / 60,
			GrazerCount:    40,
			PredatorCount:  4,
			GrazerBirths:   2,
			PredatorDeaths: 1,
			Kills:          3,
			OracleFailures: 1,
			ThirstMean:     35.5,
		}
		if err := db.SaveWindow("run-w", s); err != nil {
			t.Fatalf("SaveWindow(%d): %v", end, err)
		}
	}

	ws, err := db.Windows("run-w")
	if err != nil {
		t.Fatalf("Windows: %v", err)
	}
	if len(ws) != 2 {
		t.Fatalf("got %d windows, want 2", len(ws))
	}
	if ws[0].EndTick != 600 || ws[1].EndTick != 1200 {
		t.Errorf("windows not in tick order: %d, %d", ws[0].EndTick, ws[1].EndTick)
	}
	w := ws[0]
	if w.Births != 2 || w.Deaths != 1 || w.Kills != 3 || w.Failures != 1 || w.Grazers != 40 {
		t.Errorf("window = %+v", w)
	}

	var full telemetry.WindowStats
	if err := json.Unmarshal([]byte(w.Stats), &full); err != nil {
		t.Fatalf("stats_json: %v", err)
	}
	if full.ThirstMean != 35.5 {
		t.Errorf("stats_json thirst mean = %v, want 35.5", full.ThirstMean)
	}
}

func TestDeaths(t *testing.T) {
	db := openTestDB(t)
	if err := db.BeginRun("run-d", 1, ""); err != nil {
		t.Fatal(err)
	}

	if err := db.SaveDeaths("run-d", nil); err != nil {
		t.Fatalf("SaveDeaths(nil): %v", err)
	}

	records := []telemetry.DeathRecord{
		{Tick: 10, AgentID: 1, Species: "grazer", Cause: "predation", AgeTick: 500, X: 1, Y: 2},
		{Tick: 20, AgentID: 2, Species: "grazer", Cause: "dehydration", AgeTick: 900, X: 3, Y: 4},
		{Tick: 30, AgentID: 3, Species: "predator", Cause: "starvation", AgeTick: 1200, X: 5, Y: 6},
		{Tick: 30, AgentID: 4, Species: "grazer", Cause: "predation", AgeTick: 100, X: 7, Y: 8},
	}
	if err := db.SaveDeaths("run-d", records); err != nil {
		t.Fatalf("SaveDeaths: %v", err)
	}

	recent, err := db.RecentDeaths("run-d", 2)
	if err != nil {
		t.Fatalf("RecentDeaths: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("got %d deaths, want 2", len(recent))
	}
	if recent[0].AgentID != 4 || recent[1].AgentID != 3 {
		t.Errorf("recent order = %d, %d; want 4, 3", recent[0].AgentID, recent[1].AgentID)
	}
	if recent[0] != records[3] {
		t.Errorf("round trip = %+v, want %+v", recent[0], records[3])
	}

	byCause, err := db.DeathsByCause("run-d")
	if err != nil {
		t.Fatalf("DeathsByCause: %v", err)
	}
	if byCause["predation"] != 2 || byCause["dehydration"] != 1 || byCause["starvation"] != 1 {
		t.Errorf("by cause = %v", byCause)
	}

	other, err := db.RecentDeaths("run-other", 10)
	if err != nil {
		t.Fatalf("RecentDeaths(other): %v", err)
	}
	if len(other) != 0 {
		t.Errorf("deaths leaked across runs: %v", other)
	}
}
