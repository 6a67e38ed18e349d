package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/pasture/store"
	"github.com/pthm-cable/pasture/telemetry"
)

func testOptions(t *testing.T) runOptions {
	t.Helper()
	dir := t.TempDir()
	return runOptions{
		Seed:          7,
		MaxTicks:      650,
		Agents:        30,
		PredatorRatio: 0.1,
		OutputDir:     filepath.Join(dir, "out"),
		DBPath:        filepath.Join(dir, "runs.db"),
		SnapshotEvery: 300,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestRunWritesOutputs(t *testing.T) {
	o := testOptions(t)
	r, err := newRunner(o)
	if err != nil {
		t.Fatalf("newRunner: %v", err)
	}
	if err := r.run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if err := r.close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if got := r.sim.CurrentTick(); got != o.MaxTicks {
		t.Errorf("stopped at tick %d, want %d", got, o.MaxTicks)
	}
	if r.windows != 1 {
		t.Errorf("windows = %d, want 1", r.windows)
	}
	if r.births != 30 {
		t.Errorf("births = %d, want 30", r.births)
	}

	for _, name := range []string{"config.yaml", "telemetry.csv", "perf.csv", "deaths.csv"} {
		if _, err := os.Stat(filepath.Join(o.OutputDir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	events, err := telemetry.ReadEventLog(r.eventsPath)
	if err != nil {
		t.Fatalf("ReadEventLog: %v", err)
	}
	if len(events) != r.events.Count() {
		t.Errorf("event log has %d events, writer counted %d", len(events), r.events.Count())
	}

	snaps, _ := filepath.Glob(filepath.Join(o.OutputDir, "snapshots", "*.json.zst"))
	if len(snaps) < 2 {
		t.Errorf("snapshots = %v, want at least ticks 300 and 600", snaps)
	}
	snap, err := telemetry.LoadSnapshot(filepath.Join(o.OutputDir, "snapshots", "snapshot_300.json.zst"))
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if snap.RunID != r.runID || snap.Seed != o.Seed {
		t.Errorf("snapshot run/seed = %q/%d, want %q/%d", snap.RunID, snap.Seed, r.runID, o.Seed)
	}

	db, err := store.Open(o.DBPath)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	defer db.Close()
	run, err := db.GetRun(r.runID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run.FinalTick != o.MaxTicks || run.Survivors != r.sim.Len() {
		t.Errorf("run row = %+v", run)
	}
	windows, err := db.Windows(r.runID)
	if err != nil {
		t.Fatalf("Windows: %v", err)
	}
	if len(windows) != 1 || windows[0].EndTick != 600 {
		t.Errorf("stored windows = %+v", windows)
	}

	summary := r.summary()
	for _, want := range []string{r.runID, "650 (", "births:     30"} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary missing %q:\n%s", want, summary)
		}
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	o := testOptions(t)
	o.MaxTicks = 0
	r, err := newRunner(o)
	if err != nil {
		t.Fatalf("newRunner: %v", err)
	}
	defer r.close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := r.run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := r.sim.CurrentTick(); got != 0 {
		t.Errorf("ticked %d times after cancel", got)
	}
}

func TestNewRunnerRejectsBadRatio(t *testing.T) {
	o := testOptions(t)
	o.PredatorRatio = 1.5
	if _, err := newRunner(o); err == nil {
		t.Error("expected error for predator ratio 1.5")
	}
}
