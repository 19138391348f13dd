// Package population connects a batch of fitness-carrying controllers to one
// simulation episode.
package population

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/flappy-evo/internal/config"
	"github.com/vovakirdan/flappy-evo/internal/games/flappy"
)

// Individual is one member of a population: a controller plus the fitness
// scalar the optimizer reads after evaluation.
type Individual interface {
	flappy.Controller
	Fitness() float64
	SetFitness(f float64)
}

// Member wraps a plain controller as an Individual.
type Member struct {
	flappy.Controller
	fitness float64
}

// Wrap returns a Member for c with zero fitness.
func Wrap(c flappy.Controller) *Member {
	return &Member{Controller: c}
}

// Fitness returns the last value the episode wrote.
func (m *Member) Fitness() float64 {
	return m.fitness
}

// SetFitness stores f.
func (m *Member) SetFitness(f float64) {
	m.fitness = f
}

// Options configures one evaluation.
type Options struct {
	Seed       int64
	Generation int
	Sprites    *flappy.Sprites // Nil = built-in silhouettes

	// TickDelay paces the episode for viewing; 0 runs headless.
	TickDelay time.Duration
	Sink      flappy.SnapshotSink

	Logger *log.Logger // Nil = log.Default()
}

// EpisodeResult is the episode outcome plus evaluation metadata.
type EpisodeResult struct {
	flappy.Result
	Best     int // Index of the fittest individual, -1 when empty
	Duration time.Duration
}

// Evaluate seeds one episode 1:1 with individuals, runs it to termination
// and leaves each individual's fitness at its final episode value. Birds
// eliminated early keep the value they had at elimination. Controller
// failures are logged and reported in the result, never returned as an
// error. On cancellation the partial result is returned with ctx.Err().
func Evaluate(ctx context.Context, individuals []Individual, cfg config.Config, opts Options) (EpisodeResult, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	agents := make([]flappy.Agent, len(individuals))
	for i, ind := range individuals {
		agents[i] = flappy.Agent{Controller: ind, Sink: ind}
	}

	ep, err := flappy.NewEpisode(cfg, agents, flappy.Options{
		Seed:       opts.Seed,
		Generation: opts.Generation,
		Sprites:    opts.Sprites,
	})
	if err != nil {
		return EpisodeResult{Best: -1}, fmt.Errorf("population: evaluate: %w", err)
	}

	start := time.Now()
	res, runErr := ep.Run(ctx, flappy.RunOptions{
		TickDelay: opts.TickDelay,
		Sink:      opts.Sink,
	})

	for _, f := range res.Failures {
		logger.Warn("controller failed, bird eliminated",
			"generation", opts.Generation,
			"bird", f.ID,
			"tick", f.Tick,
			"error", f.Err,
		)
	}

	out := EpisodeResult{
		Result:   res,
		Best:     best(res.Fitness),
		Duration: time.Since(start),
	}
	if runErr != nil {
		return out, runErr
	}
	return out, nil
}

func best(fitness []float64) int {
	idx := -1
	for i, f := range fitness {
		if idx < 0 || f > fitness[idx] {
			idx = i
		}
	}
	return idx
}
