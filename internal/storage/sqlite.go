// Package storage provides SQLite-based persistence for training runs,
// per-generation statistics and champion networks.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Run statuses.
const (
	StatusRunning  = "running"
	StatusDone     = "done"
	StatusCanceled = "canceled"
	StatusFailed   = "failed"
)

// ErrNotFound is returned when a run reference matches nothing.
var ErrNotFound = errors.New("storage: not found")

// Store manages the SQLite database connection.
type Store struct {
	db *sql.DB
}

// Run is one training session.
type Run struct {
	ID          string
	Seed        int64
	Population  int
	Generations int    // Planned generations (0 = until threshold)
	Config      string // YAML snapshot of the configuration used
	Status      string
	CreatedAt   time.Time
	FinishedAt  time.Time
}

// RunSummary is a run with aggregates over its recorded generations.
type RunSummary struct {
	Run
	Completed   int     // Generations recorded
	BestFitness float64 // Best fitness over all generations
	BestScore   int
}

// GenerationRecord holds the statistics of one evaluated generation.
type GenerationRecord struct {
	ID         int64
	RunID      string
	Generation int
	Best       float64
	Mean       float64
	StdDev     float64
	Median     float64
	Worst      float64
	Score      int
	Ticks      int64
	Failures   int
	DurationMS int64
	CreatedAt  time.Time
}

// Champion is the best network found by a run so far.
type Champion struct {
	RunID      string
	Generation int
	GenomeID   string
	Fitness    float64
	Hidden     int
	Weights    []float64
	UpdatedAt  time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			seed INTEGER NOT NULL,
			population INTEGER NOT NULL,
			generations INTEGER NOT NULL DEFAULT 0,
			config TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			finished_at DATETIME
		);
		CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC);

		CREATE TABLE IF NOT EXISTS generations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id),
			generation INTEGER NOT NULL,
			best REAL NOT NULL,
			mean REAL NOT NULL,
			stddev REAL NOT NULL,
			median REAL NOT NULL,
			worst REAL NOT NULL,
			score INTEGER NOT NULL DEFAULT 0,
			ticks INTEGER NOT NULL DEFAULT 0,
			failures INTEGER NOT NULL DEFAULT 0,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(run_id, generation)
		);
		CREATE INDEX IF NOT EXISTS idx_generations_run ON generations(run_id, generation);

		CREATE TABLE IF NOT EXISTS champions (
			run_id TEXT PRIMARY KEY REFERENCES runs(id),
			generation INTEGER NOT NULL,
			genome_id TEXT NOT NULL,
			fitness REAL NOT NULL,
			hidden INTEGER NOT NULL,
			weights TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// CreateRun inserts a new run with status running. An empty ID is replaced
// by a fresh UUID. Returns the stored run.
func (s *Store) CreateRun(r Run) (Run, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.Status = StatusRunning

	_, err := s.db.Exec(
		`INSERT INTO runs (id, seed, population, generations, config, status)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.Seed, r.Population, r.Generations, r.Config, r.Status,
	)
	if err != nil {
		return Run{}, fmt.Errorf("storage: cannot create run: %w", err)
	}
	return r, nil
}

// FinishRun sets the final status of a run.
func (s *Store) FinishRun(runID, status string) error {
	res, err := s.db.Exec(
		"UPDATE runs SET status = ?, finished_at = CURRENT_TIMESTAMP WHERE id = ?",
		status, runID,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("storage: finish run %s: %w", runID, ErrNotFound)
	}
	return nil
}

// SaveGeneration records the statistics of one generation.
// Returns the ID of the inserted record.
func (s *Store) SaveGeneration(rec GenerationRecord) (int64, error) {
	result, err := s.db.Exec(
		`INSERT INTO generations
		 (run_id, generation, best, mean, stddev, median, worst, score, ticks, failures, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.Generation, rec.Best, rec.Mean, rec.StdDev, rec.Median, rec.Worst,
		rec.Score, rec.Ticks, rec.Failures, rec.DurationMS,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save generation: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// Generations retrieves every generation of a run in order.
func (s *Store) Generations(runID string) ([]GenerationRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, run_id, generation, best, mean, stddev, median, worst,
		        score, ticks, failures, duration_ms, created_at
		 FROM generations
		 WHERE run_id = ?
		 ORDER BY generation ASC`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query generations: %w", err)
	}
	defer rows.Close()

	var records []GenerationRecord
	for rows.Next() {
		var r GenerationRecord
		var createdAt any
		if err := rows.Scan(
			&r.ID, &r.RunID, &r.Generation, &r.Best, &r.Mean, &r.StdDev, &r.Median, &r.Worst,
			&r.Score, &r.Ticks, &r.Failures, &r.DurationMS, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		r.CreatedAt = parseTime(createdAt)
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return records, nil
}

// SaveChampion stores the champion of a run, replacing any previous one.
func (s *Store) SaveChampion(c Champion) error {
	weights, err := json.Marshal(c.Weights)
	if err != nil {
		return fmt.Errorf("storage: cannot encode weights: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO champions (run_id, generation, genome_id, fitness, hidden, weights)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(run_id) DO UPDATE SET
		   generation = excluded.generation,
		   genome_id = excluded.genome_id,
		   fitness = excluded.fitness,
		   hidden = excluded.hidden,
		   weights = excluded.weights,
		   updated_at = CURRENT_TIMESTAMP`,
		c.RunID, c.Generation, c.GenomeID, c.Fitness, c.Hidden, string(weights),
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save champion: %w", err)
	}
	return nil
}

// Champion retrieves the champion of a run.
// Returns nil if the run has none yet.
func (s *Store) Champion(runID string) (*Champion, error) {
	var c Champion
	var weights string
	var updatedAt any

	err := s.db.QueryRow(
		`SELECT run_id, generation, genome_id, fitness, hidden, weights, updated_at
		 FROM champions
		 WHERE run_id = ?`,
		runID,
	).Scan(&c.RunID, &c.Generation, &c.GenomeID, &c.Fitness, &c.Hidden, &weights, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query champion: %w", err)
	}

	if err := json.Unmarshal([]byte(weights), &c.Weights); err != nil {
		return nil, fmt.Errorf("storage: cannot decode weights: %w", err)
	}
	c.UpdatedAt = parseTime(updatedAt)

	return &c, nil
}

// Runs retrieves the most recent runs with their aggregates, newest first.
// A limit <= 0 returns every run.
func (s *Store) Runs(limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := s.db.Query(
		`SELECT r.id, r.seed, r.population, r.generations, r.config, r.status,
		        r.created_at, r.finished_at,
		        COUNT(g.id), COALESCE(MAX(g.best), 0), COALESCE(MAX(g.score), 0)
		 FROM runs r
		 LEFT JOIN generations g ON g.run_id = r.id
		 GROUP BY r.id
		 ORDER BY r.created_at DESC, r.rowid DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		var createdAt, finishedAt any
		if err := rows.Scan(
			&r.ID, &r.Seed, &r.Population, &r.Generations, &r.Config, &r.Status,
			&createdAt, &finishedAt,
			&r.Completed, &r.BestFitness, &r.BestScore,
		); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		r.CreatedAt = parseTime(createdAt)
		r.FinishedAt = parseTime(finishedAt)
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return runs, nil
}

// ResolveRun finds a run by full ID, unique ID prefix or the word "latest".
func (s *Store) ResolveRun(ref string) (*RunSummary, error) {
	runs, err := s.Runs(0)
	if err != nil {
		return nil, err
	}
	if ref == "latest" || ref == "" {
		if len(runs) == 0 {
			return nil, fmt.Errorf("storage: no runs recorded: %w", ErrNotFound)
		}
		return &runs[0], nil
	}

	var match *RunSummary
	for i := range runs {
		if runs[i].ID == ref {
			return &runs[i], nil
		}
		if strings.HasPrefix(runs[i].ID, ref) {
			if match != nil {
				return nil, fmt.Errorf("storage: run prefix %q is ambiguous", ref)
			}
			match = &runs[i]
		}
	}
	if match == nil {
		return nil, fmt.Errorf("storage: run %q: %w", ref, ErrNotFound)
	}
	return match, nil
}

// parseTime converts a DATETIME column, which the driver may return as
// time.Time or string, into a time.Time.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
