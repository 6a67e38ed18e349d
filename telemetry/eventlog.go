package telemetry

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// EventLog appends events as zstd-compressed JSON lines.
type EventLog struct {
	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
	n   int
}

// NewEventLog creates the log file at path, truncating any existing one.
func NewEventLog(path string) (*EventLog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating event log dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating event log: %w", err)
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("zstd writer: %w", err)
	}
	return &EventLog{f: f, enc: enc, w: bufio.NewWriter(enc)}, nil
}

// Write appends one event.
func (l *EventLog) Write(ev Event) error {
	if l == nil {
		return nil
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := l.w.Write(b); err != nil {
		return err
	}
	l.n++
	return l.w.WriteByte('\n')
}

// Count returns the number of events written.
func (l *EventLog) Count() int {
	if l == nil {
		return 0
	}
	return l.n
}

// Close flushes the buffer and the zstd frame, then closes the file.
func (l *EventLog) Close() error {
	if l == nil {
		return nil
	}
	err := l.w.Flush()
	if cerr := l.enc.Close(); err == nil {
		err = cerr
	}
	if cerr := l.f.Close(); err == nil {
		err = cerr
	}
	return err
}

// ReadEventLog decodes every event in a log written by EventLog.
func ReadEventLog(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open event log: %w", err)
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	defer dec.Close()

	var events []Event
	jd := json.NewDecoder(bufio.NewReader(dec))
	for {
		var ev Event
		if err := jd.Decode(&ev); err != nil {
			if errors.Is(err, io.EOF) {
				return events, nil
			}
			return events, fmt.Errorf("decode event %d: %w", len(events), err)
		}
		events = append(events, ev)
	}
}
