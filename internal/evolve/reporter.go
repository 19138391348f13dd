package evolve

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/flappy-evo/internal/storage"
)

// Reporter observes every evaluated generation. champion is the best genome
// seen so far and is never nil once a generation has been evaluated.
type Reporter interface {
	Report(stats Stats, champion *Genome) error
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(stats Stats, champion *Genome) error

func (f ReporterFunc) Report(stats Stats, champion *Genome) error {
	return f(stats, champion)
}

// LogReporter writes one structured log line per generation.
type LogReporter struct {
	Logger *log.Logger
}

func (r LogReporter) Report(s Stats, champion *Genome) error {
	logger := r.Logger
	if logger == nil {
		logger = log.Default()
	}

	logger.Info("generation complete",
		"gen", s.Generation,
		"best", fmt.Sprintf("%.2f", s.Best),
		"mean", fmt.Sprintf("%.2f", s.Mean),
		"stddev", fmt.Sprintf("%.2f", s.StdDev),
		"score", s.Score,
		"ticks", s.Ticks,
		"took", s.Duration.Round(time.Millisecond),
	)
	if s.Improved {
		logger.Debug("new champion", "gen", s.Generation, "genome", champion.ID, "fitness", champion.Fitness())
	}
	if s.Failures > 0 {
		logger.Warn("controllers failed this generation", "gen", s.Generation, "count", s.Failures)
	}
	return nil
}

// History keeps every generation's statistics in memory.
type History struct {
	stats []Stats
}

func (h *History) Report(s Stats, _ *Genome) error {
	h.stats = append(h.stats, s)
	return nil
}

// Stats returns the recorded generations in order.
func (h *History) Stats() []Stats {
	return h.stats
}

// BestSeries returns the best fitness of every generation.
func (h *History) BestSeries() []float64 {
	out := make([]float64, len(h.stats))
	for i, s := range h.stats {
		out[i] = s.Best
	}
	return out
}

// MeanSeries returns the mean fitness of every generation.
func (h *History) MeanSeries() []float64 {
	out := make([]float64, len(h.stats))
	for i, s := range h.stats {
		out[i] = s.Mean
	}
	return out
}

// RunStore is the persistence needed by StoreReporter.
type RunStore interface {
	SaveGeneration(rec storage.GenerationRecord) (int64, error)
	SaveChampion(c storage.Champion) error
}

// StoreReporter persists every generation of a run and each new champion.
type StoreReporter struct {
	Store RunStore
	RunID string
}

func (r StoreReporter) Report(s Stats, champion *Genome) error {
	_, err := r.Store.SaveGeneration(Record(r.RunID, s))
	if err != nil {
		return err
	}
	if s.Improved && champion != nil {
		if err := r.Store.SaveChampion(champion.Record(r.RunID, s.Generation)); err != nil {
			return err
		}
	}
	return nil
}

// Record converts generation statistics into their persisted form.
func Record(runID string, s Stats) storage.GenerationRecord {
	return storage.GenerationRecord{
		RunID:      runID,
		Generation: s.Generation,
		Best:       s.Best,
		Mean:       s.Mean,
		StdDev:     s.StdDev,
		Median:     s.Median,
		Worst:      s.Worst,
		Score:      s.Score,
		Ticks:      int64(s.Ticks),
		Failures:   s.Failures,
		DurationMS: s.Duration.Milliseconds(),
	}
}
