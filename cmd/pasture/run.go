package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/pthm-cable/pasture/components"
	"github.com/pthm-cable/pasture/config"
	"github.com/pthm-cable/pasture/oracle"
	"github.com/pthm-cable/pasture/oracle/remote"
	"github.com/pthm-cable/pasture/sim"
	"github.com/pthm-cable/pasture/store"
	"github.com/pthm-cable/pasture/systems"
	"github.com/pthm-cable/pasture/telemetry"
	"github.com/pthm-cable/pasture/terrain"
)

// bookmarkHistory is the number of windows the bookmark detector looks back over.
const bookmarkHistory = 12

// runOptions holds command-line settings for one run.
type runOptions struct {
	ConfigPath    string
	Seed          int64
	MaxTicks      int64
	Agents        int     // negative uses config
	PredatorRatio float64 // negative uses config
	OutputDir     string
	DBPath        string
	OracleURL     string
	SnapshotEvery int64
	LogStats      bool
	Logger        *slog.Logger
}

// runner owns a simulation and everything its hooks write to.
type runner struct {
	opts  runOptions
	runID string
	cfg   *config.Config
	sim   *sim.Simulation
	log   *slog.Logger

	output      *telemetry.OutputManager
	events      *telemetry.EventLog
	eventsPath  string
	snapshotDir string
	db          *store.DB
	bookmarks   *telemetry.BookmarkDetector

	pendingDeaths []telemetry.DeathRecord

	started   time.Time
	elapsed   time.Duration
	births    int
	kills     int
	causes    [components.NumDeathCauses]int
	windows   int
	marks     int
	snapshots int
}

func newRunner(o runOptions) (*runner, error) {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if o.Agents >= 0 {
		cfg.Population.Initial = o.Agents
	}
	if o.PredatorRatio >= 0 {
		if o.PredatorRatio > 1 {
			return nil, fmt.Errorf("predator ratio %v outside [0,1]", o.PredatorRatio)
		}
		cfg.Population.PredatorRatio = o.PredatorRatio
	}

	r := &runner{
		opts:      o,
		runID:     uuid.NewString(),
		cfg:       cfg,
		log:       o.Logger,
		bookmarks: telemetry.NewBookmarkDetector(bookmarkHistory),
	}

	var orc oracle.Oracle
	if o.OracleURL != "" {
		c, err := remote.NewClient(o.OracleURL, cfg)
		if err != nil {
			return nil, err
		}
		orc = c
	}

	if err := r.openOutputs(); err != nil {
		r.close()
		return nil, err
	}

	grid := terrain.Generate(cfg.GenConfig(), o.Seed)
	r.sim = sim.New(cfg, grid, sim.Options{
		Seed:     o.Seed,
		Oracle:   orc,
		Logger:   r.log,
		OnEvent:  r.onEvent,
		OnDeath:  r.onDeath,
		OnWindow: r.onWindow,
	})

	p := cfg.Population
	if _, err := r.sim.Populate(p.Initial, p.PredatorRatio, p.MaxAgeFraction); err != nil {
		r.close()
		return nil, fmt.Errorf("populate: %w", err)
	}
	return r, nil
}

func (r *runner) openOutputs() error {
	if dir := r.opts.OutputDir; dir != "" {
		om, err := telemetry.NewOutputManager(dir)
		if err != nil {
			return err
		}
		r.output = om
		if err := om.WriteConfig(r.cfg); err != nil {
			return fmt.Errorf("write config: %w", err)
		}

		r.eventsPath = filepath.Join(dir, "events.jsonl.zst")
		if r.events, err = telemetry.NewEventLog(r.eventsPath); err != nil {
			return err
		}
		r.snapshotDir = filepath.Join(dir, "snapshots")
	}

	if r.opts.DBPath != "" {
		db, err := store.Open(r.opts.DBPath)
		if err != nil {
			return err
		}
		r.db = db
		cfgYAML, err := r.cfg.YAML()
		if err != nil {
			return fmt.Errorf("encode config: %w", err)
		}
		if err := db.BeginRun(r.runID, r.opts.Seed, string(cfgYAML)); err != nil {
			return err
		}
	}
	return nil
}

// run ticks until MaxTicks, extinction or cancellation.
func (r *runner) run(ctx context.Context) error {
	r.started = time.Now()
	defer func() { r.elapsed = time.Since(r.started) }()

	r.log.Info("simulation_started",
		"run_id", r.runID,
		"seed", r.opts.Seed,
		"agents", r.sim.Len(),
		"max_ticks", r.opts.MaxTicks,
		"oracle_url", r.opts.OracleURL,
	)

	for r.opts.MaxTicks == 0 || r.sim.CurrentTick() < r.opts.MaxTicks {
		select {
		case <-ctx.Done():
			r.log.Info("simulation_interrupted", "tick", r.sim.CurrentTick())
			return r.finish()
		default:
		}

		r.sim.Tick(0)

		tick := r.sim.CurrentTick()
		if r.opts.SnapshotEvery > 0 && tick%r.opts.SnapshotEvery == 0 {
			r.saveSnapshot(nil)
		}
		if r.sim.Len() == 0 {
			r.log.Info("population_extinct", "tick", tick)
			return r.finish()
		}
	}
	r.log.Info("max_ticks_reached", "tick", r.sim.CurrentTick())
	return r.finish()
}

// finish writes any deaths since the last window and closes the run row.
func (r *runner) finish() error {
	r.flushDeaths()
	if r.db == nil {
		return nil
	}
	return r.db.FinishRun(r.runID, r.sim.CurrentTick(), r.sim.Len())
}

func (r *runner) onEvent(ev telemetry.Event) {
	switch ev.Type {
	case telemetry.EventBirth:
		r.births++
	case telemetry.EventKill:
		r.kills++
	}
	if err := r.events.Write(ev); err != nil {
		r.log.Error("failed to write event", "error", err)
	}
}

func (r *runner) onDeath(d systems.Death) {
	r.causes[d.Cause]++
	r.pendingDeaths = append(r.pendingDeaths, telemetry.NewDeathRecord(d))
}

func (r *runner) onWindow(stats telemetry.WindowStats, perf telemetry.PerfStats) {
	r.windows++

	if r.opts.LogStats {
		stats.LogStats(r.log)
		perf.LogStats(r.log)
	}

	if err := r.output.WriteTelemetry(stats); err != nil {
		r.log.Error("failed to write telemetry", "error", err)
	}
	if err := r.output.WritePerf(perf, stats.WindowEndTick); err != nil {
		r.log.Error("failed to write perf", "error", err)
	}
	if r.db != nil {
		if err := r.db.SaveWindow(r.runID, stats); err != nil {
			r.log.Error("failed to store window", "error", err)
		}
	}
	r.flushDeaths()

	for _, bm := range r.bookmarks.Check(stats) {
		r.marks++
		if r.opts.LogStats {
			bm.LogBookmark(r.log)
		}
		if err := r.output.WriteBookmark(bm); err != nil {
			r.log.Error("failed to write bookmark", "error", err)
		}
		r.saveSnapshot(&bm)
	}
}

func (r *runner) flushDeaths() {
	if len(r.pendingDeaths) == 0 {
		return
	}
	if err := r.output.WriteDeaths(r.pendingDeaths); err != nil {
		r.log.Error("failed to write deaths", "error", err)
	}
	if r.db != nil {
		if err := r.db.SaveDeaths(r.runID, r.pendingDeaths); err != nil {
			r.log.Error("failed to store deaths", "error", err)
		}
	}
	r.pendingDeaths = r.pendingDeaths[:0]
}

func (r *runner) saveSnapshot(bm *telemetry.Bookmark) {
	if r.snapshotDir == "" {
		return
	}
	snap := r.sim.Snapshot()
	snap.RunID = r.runID
	snap.Bookmark = bm

	path, err := telemetry.SaveSnapshot(snap, r.snapshotDir)
	if err != nil {
		r.log.Error("failed to save snapshot", "error", err)
		return
	}
	r.snapshots++
	r.log.Info("snapshot_saved", "path", path, "tick", snap.Tick)
}

func (r *runner) close() error {
	var errs []error
	if r.events != nil {
		errs = append(errs, r.events.Close())
	}
	errs = append(errs, r.output.Close())
	if r.db != nil {
		errs = append(errs, r.db.Close())
	}
	return errors.Join(errs...)
}

// summary renders a human-readable end-of-run report.
func (r *runner) summary() string {
	var b strings.Builder
	tick := r.sim.CurrentTick()
	simTime := time.Duration(float64(tick) * r.cfg.Physics.DT * float64(time.Second)).Round(time.Second)
	counts := r.sim.Counts()

	fmt.Fprintf(&b, "run %s (seed %d)\n", r.runID, r.opts.Seed)
	fmt.Fprintf(&b, "  ticks:      %s (%s simulated) in %s\n", humanize.Comma(tick), simTime, r.elapsed.Round(time.Millisecond))
	fmt.Fprintf(&b, "  population: %s alive (%s grazers, %s predators)\n",
		humanize.Comma(int64(r.sim.Len())),
		humanize.Comma(int64(counts[components.SpeciesGrazer])),
		humanize.Comma(int64(counts[components.SpeciesPredator])))
	fmt.Fprintf(&b, "  births:     %s, kills %s\n", humanize.Comma(int64(r.births)), humanize.Comma(int64(r.kills)))

	var causes []string
	for c := components.DeathCause(1); c < components.NumDeathCauses; c++ {
		if n := r.causes[c]; n > 0 {
			causes = append(causes, fmt.Sprintf("%s %s", c, humanize.Comma(int64(n))))
		}
	}
	if len(causes) == 0 {
		causes = append(causes, "none")
	}
	fmt.Fprintf(&b, "  deaths:     %s\n", strings.Join(causes, ", "))
	fmt.Fprintf(&b, "  windows:    %d, bookmarks %d, snapshots %d\n", r.windows, r.marks, r.snapshots)

	if r.events != nil {
		size := "?"
		if fi, err := os.Stat(r.eventsPath); err == nil {
			size = humanize.Bytes(uint64(fi.Size()))
		}
		fmt.Fprintf(&b, "  events:     %s written (%s)\n", humanize.Comma(int64(r.events.Count())), size)
	}
	if r.output != nil {
		fmt.Fprintf(&b, "  output:     %s\n", r.output.Dir())
	}
	return b.String()
}
