package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkGrazerCrash        BookmarkType = "grazer_crash"
	BookmarkPredatorRecovery   BookmarkType = "predator_recovery"
	BookmarkPredatorExtinction BookmarkType = "predator_extinction"
	BookmarkDehydrationWave    BookmarkType = "dehydration_wave"
	BookmarkStablePopulation   BookmarkType = "stable_population"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type" json:"type"`
	Tick        int64        `csv:"tick" json:"tick"`
	Description string       `csv:"description" json:"description"`
}

// LogBookmark logs the bookmark.
func (b Bookmark) LogBookmark(log *slog.Logger) {
	if log == nil {
		log = slog.Default()
	}
	log.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in the simulation.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	recentPredMin      int // minimum predator count since the last recovery
	recentGrazerPeak   int // peak grazer count since the last crash
	predatorsSeen      bool
	stableWindowsCount int
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for stable population detection
	}
	return &BookmarkDetector{
		history:       make([]WindowStats, historySize),
		historySize:   historySize,
		recentPredMin: -1,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if bd.historyFull || bd.historyIdx > 0 {
		for _, check := range []func(WindowStats) *Bookmark{
			bd.checkDehydrationWave,
			bd.checkPredatorRecovery,
			bd.checkGrazerCrash,
			bd.checkStablePopulation,
		} {
			if b := check(stats); b != nil {
				bookmarks = append(bookmarks, *b)
			}
		}
	}
	if b := bd.checkPredatorExtinction(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(stats)

	if bd.recentPredMin < 0 || stats.PredatorCount < bd.recentPredMin {
		bd.recentPredMin = stats.PredatorCount
	}
	if stats.GrazerCount > bd.recentGrazerPeak {
		bd.recentGrazerPeak = stats.GrazerCount
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// getHistory returns the stored windows oldest first.
func (bd *BookmarkDetector) getHistory() []WindowStats {
	if !bd.historyFull {
		return bd.history[:bd.historyIdx]
	}
	out := make([]WindowStats, 0, bd.historySize)
	out = append(out, bd.history[bd.historyIdx:]...)
	return append(out, bd.history[:bd.historyIdx]...)
}

// checkDehydrationWave fires when dehydration deaths are more than triple the
// rolling average.
func (bd *BookmarkDetector) checkDehydrationWave(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 || stats.DeathsDehydration < 3 {
		return nil
	}

	var total int
	for _, h := range history {
		total += h.DeathsDehydration
	}
	avg := float64(total) / float64(len(history))

	if float64(stats.DeathsDehydration) > avg*3 {
		return &Bookmark{
			Type:        BookmarkDehydrationWave,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("%d dehydration deaths against an average of %.1f", stats.DeathsDehydration, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkPredatorRecovery(stats WindowStats) *Bookmark {
	if bd.recentPredMin <= 0 || bd.recentPredMin > 3 {
		return nil
	}

	threshold := bd.recentPredMin * 3
	if stats.PredatorCount >= threshold && stats.PredatorCount >= 6 {
		oldMin := bd.recentPredMin
		bd.recentPredMin = stats.PredatorCount

		return &Bookmark{
			Type:        BookmarkPredatorRecovery,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Predator population recovered from %d to %d", oldMin, stats.PredatorCount),
		}
	}

	return nil
}

// checkPredatorExtinction fires once when the last predator is gone.
func (bd *BookmarkDetector) checkPredatorExtinction(stats WindowStats) *Bookmark {
	if stats.PredatorCount > 0 {
		bd.predatorsSeen = true
		return nil
	}
	if !bd.predatorsSeen {
		return nil
	}
	bd.predatorsSeen = false
	return &Bookmark{
		Type:        BookmarkPredatorExtinction,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Predators extinct with %d grazers remaining", stats.GrazerCount),
	}
}

func (bd *BookmarkDetector) checkGrazerCrash(stats WindowStats) *Bookmark {
	if bd.recentGrazerPeak == 0 {
		return nil
	}

	dropPercent := 1.0 - float64(stats.GrazerCount)/float64(bd.recentGrazerPeak)
	if dropPercent > 0.30 && stats.GrazerCount < bd.recentGrazerPeak-10 {
		oldPeak := bd.recentGrazerPeak
		bd.recentGrazerPeak = stats.GrazerCount

		return &Bookmark{
			Type:        BookmarkGrazerCrash,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Grazers crashed %.0f%% from peak %d to %d", dropPercent*100, oldPeak, stats.GrazerCount),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkStablePopulation(stats WindowStats) *Bookmark {
	if stats.GrazerCount < 10 || stats.PredatorCount < 3 {
		bd.stableWindowsCount = 0
		return nil
	}

	history := bd.getHistory()
	if len(history) < 4 {
		return nil
	}

	recent := history[len(history)-4:]
	grazerCV2 := cv2(recent, func(w WindowStats) int { return w.GrazerCount })
	predCV2 := cv2(recent, func(w WindowStats) int { return w.PredatorCount })

	if grazerCV2 < 0.04 && predCV2 < 0.04 { // CV^2 < 0.04 means CV < 0.2
		bd.stableWindowsCount++
	} else {
		bd.stableWindowsCount = 0
	}

	if bd.stableWindowsCount == 5 { // trigger exactly once at 5 windows
		return &Bookmark{
			Type:        BookmarkStablePopulation,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Stable population with %d grazers, %d predators over 5+ windows", stats.GrazerCount, stats.PredatorCount),
		}
	}

	return nil
}

// cv2 returns the squared coefficient of variation of a window field.
func cv2(windows []WindowStats, field func(WindowStats) int) float64 {
	values := make([]float64, len(windows))
	for i, w := range windows {
		values[i] = float64(field(w))
	}
	mean, std := ComputeNeedStats(values)
	if mean == 0 {
		return 0
	}
	return (std * std) / (mean * mean)
}
