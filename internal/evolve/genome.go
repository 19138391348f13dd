// Package evolve implements the generational optimizer that breeds neural
// controllers against the flappy simulation.
package evolve

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/vovakirdan/flappy-evo/internal/games/flappy"
	"github.com/vovakirdan/flappy-evo/internal/neural"
	"github.com/vovakirdan/flappy-evo/internal/storage"
)

// Genome is one member of the population: a network plus the fitness the
// last episode wrote into it.
type Genome struct {
	ID   uuid.UUID
	Net  *neural.Network
	Born int // Generation the genome was created in

	fitness float64
}

// Act feeds the observation through the network.
func (g *Genome) Act(obs flappy.Observation) (float64, error) {
	return g.Net.Forward(obs.Inputs())
}

// Fitness returns the last value written by an episode.
func (g *Genome) Fitness() float64 {
	return g.fitness
}

// SetFitness stores f.
func (g *Genome) SetFitness(f float64) {
	g.fitness = f
}

// clone copies the genome, keeping its identity.
func (g *Genome) clone() *Genome {
	return &Genome{
		ID:      g.ID,
		Net:     g.Net.Clone(),
		Born:    g.Born,
		fitness: g.fitness,
	}
}

// Record converts the genome into its persisted champion form.
func (g *Genome) Record(runID string, generation int) storage.Champion {
	return storage.Champion{
		RunID:      runID,
		Generation: generation,
		GenomeID:   g.ID.String(),
		Fitness:    g.fitness,
		Hidden:     g.Net.Hidden(),
		Weights:    g.Net.Weights(),
	}
}

// Restore rebuilds a genome from a stored champion.
func Restore(c storage.Champion) (*Genome, error) {
	net, err := neural.FromWeights(c.Hidden, c.Weights)
	if err != nil {
		return nil, fmt.Errorf("evolve: restore champion of run %s: %w", c.RunID, err)
	}

	id, err := uuid.Parse(c.GenomeID)
	if err != nil {
		return nil, fmt.Errorf("evolve: restore champion of run %s: bad genome id: %w", c.RunID, err)
	}

	return &Genome{ID: id, Net: net, Born: c.Generation, fitness: c.Fitness}, nil
}
