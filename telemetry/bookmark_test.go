package telemetry

import (
	"testing"
)

func findBookmark(bs []Bookmark, typ BookmarkType) *Bookmark {
	for i := range bs {
		if bs[i].Type == typ {
			return &bs[i]
		}
	}
	return nil
}

func TestBookmarkDetector_GrazerCrash(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i, n := range []int{80, 100, 95} {
		if b := findBookmark(bd.Check(WindowStats{WindowEndTick: int64(i * 100), GrazerCount: n}), BookmarkGrazerCrash); b != nil {
			t.Fatalf("unexpected crash at window %d", i)
		}
	}

	bs := bd.Check(WindowStats{WindowEndTick: 300, GrazerCount: 50})
	b := findBookmark(bs, BookmarkGrazerCrash)
	if b == nil {
		t.Fatal("expected grazer crash bookmark")
	}
	if b.Tick != 300 {
		t.Errorf("tick = %d, want 300", b.Tick)
	}

	// The peak resets after a crash.
	if findBookmark(bd.Check(WindowStats{WindowEndTick: 400, GrazerCount: 45}), BookmarkGrazerCrash) != nil {
		t.Error("crash fired again without a new peak")
	}
}

func TestBookmarkDetector_PredatorRecovery(t *testing.T) {
	bd := NewBookmarkDetector(10)

	bd.Check(WindowStats{WindowEndTick: 0, PredatorCount: 10})
	bd.Check(WindowStats{WindowEndTick: 100, PredatorCount: 2})
	bs := bd.Check(WindowStats{WindowEndTick: 200, PredatorCount: 7})
	if findBookmark(bs, BookmarkPredatorRecovery) == nil {
		t.Fatal("expected predator recovery bookmark")
	}
	if findBookmark(bd.Check(WindowStats{WindowEndTick: 300, PredatorCount: 8}), BookmarkPredatorRecovery) != nil {
		t.Error("recovery fired twice")
	}
}

func TestBookmarkDetector_PredatorExtinction(t *testing.T) {
	bd := NewBookmarkDetector(10)

	if bs := bd.Check(WindowStats{GrazerCount: 5}); findBookmark(bs, BookmarkPredatorExtinction) != nil {
		t.Error("extinction fired for a run that never had predators")
	}
	bd.Check(WindowStats{WindowEndTick: 100, PredatorCount: 1})
	bs := bd.Check(WindowStats{WindowEndTick: 200, GrazerCount: 30})
	if findBookmark(bs, BookmarkPredatorExtinction) == nil {
		t.Fatal("expected extinction bookmark")
	}
	if findBookmark(bd.Check(WindowStats{WindowEndTick: 300}), BookmarkPredatorExtinction) != nil {
		t.Error("extinction fired twice")
	}
}

func TestBookmarkDetector_DehydrationWave(t *testing.T) {
	bd := NewBookmarkDetector(10)
	for i := 0; i < 4; i++ {
		bd.Check(WindowStats{WindowEndTick: int64(i * 100), DeathsDehydration: 1})
	}
	if findBookmark(bd.Check(WindowStats{WindowEndTick: 400, DeathsDehydration: 3}), BookmarkDehydrationWave) != nil {
		t.Error("3 deaths against an average of 1 should not fire")
	}
	bs := bd.Check(WindowStats{WindowEndTick: 500, DeathsDehydration: 9})
	if findBookmark(bs, BookmarkDehydrationWave) == nil {
		t.Fatal("expected dehydration wave bookmark")
	}
}

func TestBookmarkDetector_StablePopulation(t *testing.T) {
	bd := NewBookmarkDetector(10)

	fired := 0
	for i := 0; i < 12; i++ {
		bs := bd.Check(WindowStats{WindowEndTick: int64(i * 100), GrazerCount: 50, PredatorCount: 5})
		if findBookmark(bs, BookmarkStablePopulation) != nil {
			fired++
		}
	}
	if fired != 1 {
		t.Errorf("stable population fired %d times, want 1", fired)
	}
}

func TestBookmarkDetector_HistoryOrder(t *testing.T) {
	bd := NewBookmarkDetector(5)
	for i := 0; i < 7; i++ {
		bd.Check(WindowStats{WindowEndTick: int64(i)})
	}
	h := bd.getHistory()
	if len(h) != 5 {
		t.Fatalf("history len = %d, want 5", len(h))
	}
	for i, w := range h {
		if w.WindowEndTick != int64(i+2) {
			t.Errorf("history[%d] = %d, want %d", i, w.WindowEndTick, i+2)
		}
	}
}
