// Command pasture runs a headless simulation and writes its telemetry.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	var o runOptions
	flag.StringVar(&o.ConfigPath, "config", "", "Path to config.yaml (empty = use defaults)")
	flag.Int64Var(&o.Seed, "seed", 0, "RNG seed (0 = time-based)")
	flag.Int64Var(&o.MaxTicks, "max-ticks", 0, "Stop after N ticks (0 = until interrupted)")
	flag.IntVar(&o.Agents, "agents", -1, "Initial population (-1 = use config)")
	flag.Float64Var(&o.PredatorRatio, "predator-ratio", -1, "Fraction of predators (-1 = use config)")
	flag.StringVar(&o.OutputDir, "output-dir", "", "Output directory for CSV logs, events and snapshots")
	flag.StringVar(&o.DBPath, "db", "", "SQLite run store path (empty = disabled)")
	flag.StringVar(&o.OracleURL, "oracle-url", "", "Remote decision service base URL (empty = built-in utility oracle)")
	flag.Int64Var(&o.SnapshotEvery, "snapshot-every", 0, "Save a snapshot every N ticks (0 = bookmarks only)")
	flag.BoolVar(&o.LogStats, "log-stats", false, "Output window stats via slog")
	flag.Parse()

	if o.Seed == 0 {
		o.Seed = time.Now().UnixNano()
	}

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)
	o.Logger = logger

	r, err := newRunner(o)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := r.run(ctx)
	if err := r.close(); err != nil {
		slog.Error("failed to close outputs", "error", err)
	}
	fmt.Print(r.summary())
	if runErr != nil {
		slog.Error("run failed", "error", runErr)
		os.Exit(1)
	}
}
