// Package store persists simulation runs to SQLite: one row per run, one per
// telemetry window and one per death.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/pthm-cable/pasture/telemetry"
)

// ErrUnknownRun is returned when a run ID has no row.
var ErrUnknownRun = errors.New("unknown run")

// Run is one simulation run.
type Run struct {
	ID         string `db:"id"`
	Seed       int64  `db:"seed"`
	Config     string `db:"config_yaml"`
	StartedAt  int64  `db:"started_at"`
	FinishedAt int64  `db:"finished_at"`
	FinalTick  int64  `db:"final_tick"`
	Survivors  int    `db:"survivors"`
}

// Window is the stored summary of one telemetry window. Stats holds the full
// WindowStats as JSON.
type Window struct {
	RunID     string  `db:"run_id"`
	EndTick   int64   `db:"window_end"`
	SimTime   float64 `db:"sim_time"`
	Grazers   int     `db:"grazers"`
	Predators int     `db:"predators"`
	Births    int     `db:"births"`
	Deaths    int     `db:"deaths"`
	Kills     int     `db:"kills"`
	Failures  int     `db:"oracle_failures"`
	Stats     string  `db:"stats_json"`
}

// DB wraps a SQLite connection.
type DB struct {
	conn *sqlx.DB
	now  func() time.Time
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn, now: time.Now}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		config_yaml TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		finished_at INTEGER NOT NULL DEFAULT 0,
		final_tick INTEGER NOT NULL DEFAULT 0,
		survivors INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS windows (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id),
		window_end INTEGER NOT NULL,
		sim_time REAL NOT NULL,
		grazers INTEGER NOT NULL,
		predators INTEGER NOT NULL,
		births INTEGER NOT NULL,
		deaths INTEGER NOT NULL,
		kills INTEGER NOT NULL,
		oracle_failures INTEGER NOT NULL,
		stats_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS deaths (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id),
		tick INTEGER NOT NULL,
		agent_id INTEGER NOT NULL,
		species TEXT NOT NULL,
		cause TEXT NOT NULL,
		age_ticks INTEGER NOT NULL,
		x REAL NOT NULL,
		y REAL NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_windows_run ON windows(run_id, window_end);
	CREATE INDEX IF NOT EXISTS idx_deaths_run ON deaths(run_id, tick);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// BeginRun records the start of a run.
func (db *DB) BeginRun(id string, seed int64, cfgYAML string) error {
	_, err := db.conn.Exec(
		"INSERT INTO runs (id, seed, config_yaml, started_at) VALUES (?, ?, ?, ?)",
		id, seed, cfgYAML, db.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("begin run %s: %w", id, err)
	}
	return nil
}

// FinishRun stamps a run with its final tick and surviving population.
func (db *DB) FinishRun(id string, finalTick int64, survivors int) error {
	res, err := db.conn.Exec(
		"UPDATE runs SET finished_at = ?, final_tick = ?, survivors = ? WHERE id = ?",
		db.now().Unix(), finalTick, survivors, id,
	)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finish run %s: %w", id, ErrUnknownRun)
	}
	return nil
}

// GetRun loads one run.
func (db *DB) GetRun(id string) (Run, error) {
	var r Run
	err := db.conn.Get(&r, "SELECT * FROM runs WHERE id = ?", id)
	if err != nil {
		return r, fmt.Errorf("get run %s: %w", id, err)
	}
	return r, nil
}

// SaveWindow appends one telemetry window.
func (db *DB) SaveWindow(runID string, s telemetry.WindowStats) error {
	statsJSON, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode window: %w", err)
	}
	_, err = db.conn.NamedExec(`INSERT INTO windows
		(run_id, window_end, sim_time, grazers, predators, births, deaths, kills, oracle_failures, stats_json)
		VALUES (:run_id, :window_end, :sim_time, :grazers, :predators, :births, :deaths, :kills, :oracle_failures, :stats_json)`,
		Window{
			RunID:     runID,
			EndTick:   s.WindowEndTick,
			SimTime:   s.SimTimeSec,
			Grazers:   s.GrazerCount,
			Predators: s.PredatorCount,
			Births:    s.GrazerBirths + s.PredatorBirths,
			Deaths:    s.GrazerDeaths + s.PredatorDeaths,
			Kills:     s.Kills,
			Failures:  s.OracleFailures,
			Stats:     string(statsJSON),
		})
	return err
}

// Windows returns every window of a run in tick order.
func (db *DB) Windows(runID string) ([]Window, error) {
	var out []Window
	err := db.conn.Select(&out,
		`SELECT run_id, window_end, sim_time, grazers, predators, births, deaths, kills, oracle_failures, stats_json
		FROM windows WHERE run_id = ? ORDER BY window_end`,
		runID,
	)
	return out, err
}

// SaveDeaths appends death records in one transaction.
func (db *DB) SaveDeaths(runID string, records []telemetry.DeathRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(`INSERT INTO deaths
		(run_id, tick, agent_id, species, cause, age_ticks, x, y)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.Exec(runID, r.Tick, r.AgentID, r.Species, r.Cause, r.AgeTick, r.X, r.Y); err != nil {
			return fmt.Errorf("insert death %d: %w", r.AgentID, err)
		}
	}
	return tx.Commit()
}

// RecentDeaths returns the most recent deaths of a run, newest first.
func (db *DB) RecentDeaths(runID string, limit int) ([]telemetry.DeathRecord, error) {
	var out []telemetry.DeathRecord
	err := db.conn.Select(&out,
		`SELECT tick, agent_id, species, cause, age_ticks, x, y
		FROM deaths WHERE run_id = ? ORDER BY tick DESC, id DESC LIMIT ?`,
		runID, limit,
	)
	return out, err
}

// DeathsByCause counts a run's deaths per cause.
func (db *DB) DeathsByCause(runID string) (map[string]int, error) {
	var rows []struct {
		Cause string `db:"cause"`
		N     int    `db:"n"`
	}
	err := db.conn.Select(&rows,
		"SELECT cause, COUNT(*) AS n FROM deaths WHERE run_id = ? GROUP BY cause",
		runID,
	)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(rows))
	for _, r := range rows {
		out[r.Cause] = r.N
	}
	return out, nil
}
