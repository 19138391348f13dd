package evolve

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/flappy-evo/internal/config"
	"github.com/vovakirdan/flappy-evo/internal/games/flappy"
	"github.com/vovakirdan/flappy-evo/internal/neural"
	"github.com/vovakirdan/flappy-evo/internal/population"
)

// StopReason explains why Run returned.
type StopReason int

const (
	StopGenerations StopReason = iota // Generation limit reached
	StopThreshold                     // Best fitness reached the threshold
	StopCanceled                      // Context canceled
	StopFailed                        // Evaluation or a reporter failed
)

func (r StopReason) String() string {
	switch r {
	case StopGenerations:
		return "generation limit"
	case StopThreshold:
		return "fitness threshold"
	case StopCanceled:
		return "canceled"
	case StopFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Summary is the outcome of a training run.
type Summary struct {
	Generations int // Generations fully evaluated
	Reason      StopReason
	Champion    *Genome // Best genome ever evaluated, nil if none
	ChampionGen int     // Generation the champion was evaluated in
}

// Trainer runs the generational loop: evaluate every genome in one shared
// episode, then breed the next generation from elites, tournament-selected
// parents, uniform crossover and gaussian mutation.
type Trainer struct {
	cfg    config.Config
	seed   int64
	rng    *rand.Rand
	ids    *rand.Rand
	logger *log.Logger

	sprites   *flappy.Sprites
	sink      flappy.SnapshotSink
	tickDelay time.Duration

	population  []*Genome
	generation  int
	champion    *Genome
	championGen int
}

// New creates a trainer with a freshly initialized population. The same
// seed reproduces the same run.
func New(cfg config.Config, seed int64, logger *log.Logger) (*Trainer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("evolve: %w", err)
	}
	if cfg.Evolve.Population < 1 {
		return nil, fmt.Errorf("evolve: population must be at least 1, got %d", cfg.Evolve.Population)
	}
	if logger == nil {
		logger = log.Default()
	}

	t := &Trainer{
		cfg:    cfg,
		seed:   seed,
		rng:    rand.New(rand.NewSource(seed)),
		ids:    rand.New(rand.NewSource(^seed)),
		logger: logger,
	}

	t.population = make([]*Genome, cfg.Evolve.Population)
	for i := range t.population {
		t.population[i] = &Genome{
			ID:  t.newID(),
			Net: neural.New(t.rng, cfg.Evolve.Hidden),
		}
	}
	return t, nil
}

// SetViewer paces every following episode by delay and publishes its
// snapshots to sink.
func (t *Trainer) SetViewer(sink flappy.SnapshotSink, delay time.Duration) {
	t.sink = sink
	t.tickDelay = delay
}

// SetSprites overrides the collision masks used by every episode.
func (t *Trainer) SetSprites(s *flappy.Sprites) {
	t.sprites = s
}

// Generation returns the index of the next generation to evaluate.
func (t *Trainer) Generation() int {
	return t.generation
}

// Population returns the current genomes.
func (t *Trainer) Population() []*Genome {
	return t.population
}

// Champion returns the best genome evaluated so far, or nil.
func (t *Trainer) Champion() *Genome {
	return t.champion
}

// Step evaluates the current generation and breeds the next one. On error
// the population is left untouched.
func (t *Trainer) Step(ctx context.Context) (Stats, error) {
	gen := t.generation

	epCfg := t.cfg
	if t.cfg.Evolve.TickBudget > 0 {
		epCfg.Episode.MaxTicks = t.cfg.Evolve.TickBudget
	}

	individuals := make([]population.Individual, len(t.population))
	for i, g := range t.population {
		individuals[i] = g
	}

	res, err := population.Evaluate(ctx, individuals, epCfg, population.Options{
		Seed:       t.seed + int64(gen),
		Generation: gen,
		Sprites:    t.sprites,
		TickDelay:  t.tickDelay,
		Sink:       t.sink,
		Logger:     t.logger,
	})
	if err != nil {
		return Stats{}, fmt.Errorf("evolve: generation %d: %w", gen, err)
	}

	stats := fitnessStats(gen, res.Fitness)
	stats.Score = res.Score
	stats.Ticks = res.Ticks
	stats.Failures = len(res.Failures)
	stats.Reason = res.Reason
	stats.Duration = res.Duration

	best := t.population[res.Best]
	stats.BestID = best.ID
	if t.champion == nil || best.Fitness() > t.champion.Fitness() {
		t.champion = best.clone()
		t.championGen = gen
		stats.Improved = true
	}

	t.population = t.breed(gen + 1)
	t.generation++
	return stats, nil
}

// breed builds the next population from the evaluated one.
func (t *Trainer) breed(born int) []*Genome {
	ec := t.cfg.Evolve
	ranked := rank(t.population)

	next := make([]*Genome, 0, len(ranked))
	for i := 0; i < ec.Elite && i < len(ranked); i++ {
		next = append(next, ranked[i].clone())
	}

	for len(next) < len(ranked) {
		parent := tournament(t.rng, ranked, ec.TournamentSize)
		child := parent.Net.Clone()

		if t.rng.Float64() < ec.CrossoverRate {
			other := tournament(t.rng, ranked, ec.TournamentSize)
			if mixed, err := neural.Crossover(t.rng, parent.Net, other.Net); err == nil {
				child = mixed
			}
		}
		child.Mutate(t.rng, ec.MutationRate, ec.MutationPower, ec.ReplaceRate)

		next = append(next, &Genome{ID: t.newID(), Net: child, Born: born})
	}
	return next
}

func (t *Trainer) newID() uuid.UUID {
	return uuid.Must(uuid.NewRandomFromReader(t.ids))
}

// Run evaluates generations until the generation limit (0 = none), the
// fitness threshold (0 = none) or cancellation. Reporters see every
// generation in order; a reporter error aborts the run. On cancellation the
// summary so far is returned with ctx.Err().
func (t *Trainer) Run(ctx context.Context, reporters ...Reporter) (Summary, error) {
	ec := t.cfg.Evolve
	start := t.generation

	summary := func(reason StopReason) Summary {
		return Summary{
			Generations: t.generation - start,
			Reason:      reason,
			Champion:    t.champion,
			ChampionGen: t.championGen,
		}
	}

	for {
		if ec.Generations > 0 && t.generation-start >= ec.Generations {
			return summary(StopGenerations), nil
		}

		stats, err := t.Step(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return summary(StopCanceled), ctx.Err()
			}
			return summary(StopFailed), err
		}

		for _, r := range reporters {
			if err := r.Report(stats, t.champion); err != nil {
				return summary(StopFailed), fmt.Errorf("evolve: report generation %d: %w", stats.Generation, err)
			}
		}

		if ec.FitnessThreshold > 0 && stats.Best >= ec.FitnessThreshold {
			return summary(StopThreshold), nil
		}
	}
}
