package evolve

import (
	"math/rand"
	"sort"
)

// rank returns the genomes sorted by descending fitness. Ties keep
// population order.
func rank(pop []*Genome) []*Genome {
	ranked := append([]*Genome(nil), pop...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Fitness() > ranked[j].Fitness()
	})
	return ranked
}

// tournament samples size genomes uniformly with replacement and returns the
// fittest. A size below 1 degenerates to uniform sampling.
func tournament(rng *rand.Rand, ranked []*Genome, size int) *Genome {
	if size < 1 {
		size = 1
	}
	best := ranked[rng.Intn(len(ranked))]
	for i := 1; i < size; i++ {
		candidate := ranked[rng.Intn(len(ranked))]
		if candidate.Fitness() > best.Fitness() {
			best = candidate
		}
	}
	return best
}
