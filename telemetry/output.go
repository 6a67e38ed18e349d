package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/pasture/config"
	"github.com/pthm-cable/pasture/systems"
)

// DeathRecord is one removed agent, flattened for CSV and SQL.
type DeathRecord struct {
	Tick    int64   `csv:"tick" db:"tick"`
	AgentID uint32  `csv:"agent" db:"agent_id"`
	Species string  `csv:"species" db:"species"`
	Cause   string  `csv:"cause" db:"cause"`
	AgeTick int64   `csv:"age_ticks" db:"age_ticks"`
	X       float64 `csv:"x" db:"x"`
	Y       float64 `csv:"y" db:"y"`
}

// NewDeathRecord flattens a death.
func NewDeathRecord(d systems.Death) DeathRecord {
	return DeathRecord{
		Tick:    d.Tick,
		AgentID: uint32(d.ID),
		Species: d.Species.String(),
		Cause:   d.Cause.String(),
		AgeTick: d.AgeTick,
		X:       float64(d.X),
		Y:       float64(d.Y),
	}
}

// csvFile appends gocsv records, writing the header once.
type csvFile struct {
	f             *os.File
	headerWritten bool
}

func (c *csvFile) write(records any) error {
	if !c.headerWritten {
		if err := gocsv.Marshal(records, c.f); err != nil {
			return err
		}
		c.headerWritten = true
		return nil
	}
	return gocsv.MarshalWithoutHeaders(records, c.f)
}

// OutputManager handles structured run output with CSV logging.
type OutputManager struct {
	dir       string
	telemetry csvFile
	perf      csvFile
	bookmarks csvFile
	deaths    csvFile
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	files := []struct {
		name string
		dst  *csvFile
	}{
		{"telemetry.csv", &om.telemetry},
		{"perf.csv", &om.perf},
		{"bookmarks.csv", &om.bookmarks},
		{"deaths.csv", &om.deaths},
	}
	for _, spec := range files {
		f, err := os.Create(filepath.Join(dir, spec.name))
		if err != nil {
			om.Close()
			return nil, fmt.Errorf("creating %s: %w", spec.name, err)
		}
		spec.dst.f = f
	}

	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteTelemetry writes a window stats record to telemetry.csv.
func (om *OutputManager) WriteTelemetry(stats WindowStats) error {
	if om == nil {
		return nil
	}
	if err := om.telemetry.write([]WindowStats{stats}); err != nil {
		return fmt.Errorf("writing telemetry: %w", err)
	}
	return nil
}

// WritePerf writes a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd int64) error {
	if om == nil {
		return nil
	}
	if err := om.perf.write([]PerfStatsCSV{stats.ToCSV(windowEnd)}); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// WriteBookmark writes a bookmark record to bookmarks.csv.
func (om *OutputManager) WriteBookmark(b Bookmark) error {
	if om == nil {
		return nil
	}
	if err := om.bookmarks.write([]Bookmark{b}); err != nil {
		return fmt.Errorf("writing bookmark: %w", err)
	}
	return nil
}

// WriteDeaths appends death records to deaths.csv.
func (om *OutputManager) WriteDeaths(records []DeathRecord) error {
	if om == nil || len(records) == 0 {
		return nil
	}
	if err := om.deaths.write(records); err != nil {
		return fmt.Errorf("writing deaths: %w", err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	for _, c := range []*csvFile{&om.telemetry, &om.perf, &om.bookmarks, &om.deaths} {
		if c.f == nil {
			continue
		}
		if err := c.f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		c.f = nil
	}
	return firstErr
}
