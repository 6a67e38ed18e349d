package telemetry

import (
	"path/filepath"
	"testing"

	"github.com/pthm-cable/pasture/components"
	"github.com/pthm-cable/pasture/systems"
)

func TestEventLog_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "events.jsonl.zst")
	log, err := NewEventLog(path)
	if err != nil {
		t.Fatalf("NewEventLog: %v", err)
	}

	want := []Event{
		NewBirthEvent(1, 10, components.SpeciesGrazer),
		NewKillEvent(40, 11, 10),
		NewDeathEvent(systems.Death{ID: 10, Species: components.SpeciesGrazer, Cause: components.CausePredation, Tick: 40}),
		NewTileEvent(EventDepletion, systems.TileEvent{TX: 3, TY: 4, Tick: 41}, 41),
		NewTileEvent(EventRegrowth, systems.TileEvent{TX: 3, TY: 4, Tick: 41}, 90),
	}
	for _, ev := range want {
		if err := log.Write(ev); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if log.Count() != len(want) {
		t.Errorf("Count = %d, want %d", log.Count(), len(want))
	}
	if err := log.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	got, err := ReadEventLog(path)
	if err != nil {
		t.Fatalf("ReadEventLog: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("read %d events, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %+v, want %+v", i, got[i], want[i])
		}
	}
	if got[2].Cause != "predation" || got[1].TargetID != 10 {
		t.Errorf("unexpected payloads %+v", got[1:3])
	}
}

func TestEventLog_NilSafe(t *testing.T) {
	var log *EventLog
	if err := log.Write(Event{}); err != nil {
		t.Error(err)
	}
	if err := log.Close(); err != nil {
		t.Error(err)
	}
	if log.Count() != 0 {
		t.Error("expected zero count")
	}
}

func TestEventType_Text(t *testing.T) {
	for ty := EventBirth; ty < numEventTypes; ty++ {
		b, _ := ty.MarshalText()
		var back EventType
		if err := back.UnmarshalText(b); err != nil || back != ty {
			t.Errorf("round trip %v: got %v, %v", ty, back, err)
		}
	}
	var bad EventType
	if err := bad.UnmarshalText([]byte("eclipse")); err == nil {
		t.Error("expected error for unknown type")
	}
}
