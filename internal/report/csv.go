// Package report exports generation statistics as CSV.
package report

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/vovakirdan/flappy-evo/internal/evolve"
	"github.com/vovakirdan/flappy-evo/internal/storage"
)

// Row is one generation in CSV form.
type Row struct {
	RunID      string  `csv:"run_id"`
	Generation int     `csv:"generation"`
	Best       float64 `csv:"best"`
	Mean       float64 `csv:"mean"`
	StdDev     float64 `csv:"stddev"`
	Median     float64 `csv:"median"`
	Worst      float64 `csv:"worst"`
	Score      int     `csv:"score"`
	Ticks      int64   `csv:"ticks"`
	Failures   int     `csv:"failures"`
	DurationMS int64   `csv:"duration_ms"`
	Champion   bool    `csv:"new_champion"`
}

// FromRecords converts stored generations into rows.
func FromRecords(records []storage.GenerationRecord) []Row {
	rows := make([]Row, len(records))
	for i, r := range records {
		rows[i] = Row{
			RunID:      r.RunID,
			Generation: r.Generation,
			Best:       r.Best,
			Mean:       r.Mean,
			StdDev:     r.StdDev,
			Median:     r.Median,
			Worst:      r.Worst,
			Score:      r.Score,
			Ticks:      r.Ticks,
			Failures:   r.Failures,
			DurationMS: r.DurationMS,
		}
	}
	markChampions(rows)
	return rows
}

// markChampions flags every row whose best beats all earlier rows.
func markChampions(rows []Row) {
	best := math.Inf(-1)
	for i := range rows {
		rows[i].Champion = rows[i].Best > best
		if rows[i].Champion {
			best = rows[i].Best
		}
	}
}

// FromStats converts a single in-memory generation into a row.
func FromStats(runID string, s evolve.Stats) Row {
	return Row{
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
		Champion:   s.Improved,
	}
}

// WriteGenerationsCSV writes rows to path with a header line, replacing any
// existing file.
func WriteGenerationsCSV(path string, rows []Row) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("report: creating directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: creating %s: %w", path, err)
	}
	defer f.Close()

	if err := gocsv.MarshalFile(&rows, f); err != nil {
		return fmt.Errorf("report: writing %s: %w", path, err)
	}
	return f.Close()
}

// Writer streams one row per generation while a run is in progress.
// It implements evolve.Reporter.
type Writer struct {
	runID         string
	file          *os.File
	headerWritten bool
}

// NewWriter creates (or truncates) the CSV file at path.
func NewWriter(path, runID string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("report: creating directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("report: creating %s: %w", path, err)
	}
	return &Writer{runID: runID, file: f}, nil
}

// Report appends the generation to the file.
func (w *Writer) Report(s evolve.Stats, _ *evolve.Genome) error {
	records := []Row{FromStats(w.runID, s)}

	if !w.headerWritten {
		// First write includes headers
		if err := gocsv.Marshal(records, w.file); err != nil {
			return fmt.Errorf("report: writing generation %d: %w", s.Generation, err)
		}
		w.headerWritten = true
		return nil
	}

	// Subsequent writes skip headers
	if err := gocsv.MarshalWithoutHeaders(records, w.file); err != nil {
		return fmt.Errorf("report: writing generation %d: %w", s.Generation, err)
	}
	return nil
}

// Close flushes and closes the file.
func (w *Writer) Close() error {
	if w == nil || w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}
