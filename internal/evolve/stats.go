package evolve

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/vovakirdan/flappy-evo/internal/games/flappy"
)

// Stats summarizes one evaluated generation.
type Stats struct {
	Generation int
	Best       float64
	Mean       float64
	StdDev     float64
	Median     float64
	Worst      float64
	Score      int    // Pipes passed before the episode ended
	Ticks      uint64 // Ticks the episode lasted
	Failures   int    // Controllers that returned an error
	Reason     flappy.Reason
	Duration   time.Duration

	BestID   uuid.UUID
	Improved bool // The generation produced a new champion
}

// fitnessStats fills the distribution fields of Stats from raw fitness.
func fitnessStats(generation int, fitness []float64) Stats {
	s := Stats{Generation: generation}
	if len(fitness) == 0 {
		return s
	}

	sorted := append([]float64(nil), fitness...)
	sort.Float64s(sorted)

	s.Best = floats.Max(sorted)
	s.Worst = floats.Min(sorted)
	s.Median = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	if len(sorted) < 2 {
		s.Mean = sorted[0]
		return s
	}
	s.Mean, s.StdDev = stat.MeanStdDev(sorted, nil)
	return s
}
