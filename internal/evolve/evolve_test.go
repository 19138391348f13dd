package evolve

import (
	"bytes"
	"context"
	"errors"
	"math"
	"math/rand"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/flappy-evo/internal/config"
	"github.com/vovakirdan/flappy-evo/internal/population"
	"github.com/vovakirdan/flappy-evo/internal/storage"
)

var _ population.Individual = (*Genome)(nil)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Evolve.Population = 10
	cfg.Evolve.Generations = 3
	cfg.Evolve.Elite = 2
	cfg.Evolve.TickBudget = 300
	cfg.Evolve.FitnessThreshold = 0
	return cfg
}

func testLogger(buf *bytes.Buffer) *log.Logger {
	return log.NewWithOptions(buf, log.Options{Level: log.DebugLevel})
}

func newTrainer(t *testing.T, cfg config.Config, seed int64) *Trainer {
	t.Helper()
	tr, err := New(cfg, seed, testLogger(&bytes.Buffer{}))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return tr
}

func TestFitnessStats(t *testing.T) {
	tests := []struct {
		name    string
		fitness []float64
		want    Stats
	}{
		{"empty", nil, Stats{}},
		{"single", []float64{2.3}, Stats{Best: 2.3, Worst: 2.3, Mean: 2.3, Median: 2.3}},
		{"spread", []float64{4, 10, 1, 3, 2}, Stats{Best: 10, Worst: 1, Mean: 4, Median: 3, StdDev: math.Sqrt(12.5)}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := fitnessStats(7, tc.fitness)
			if got.Generation != 7 {
				t.Errorf("Generation = %d, expected 7", got.Generation)
			}
			check := func(name string, got, want float64) {
				if math.Abs(got-want) > 1e-9 {
					t.Errorf("%s = %v, expected %v", name, got, want)
				}
			}
			check("Best", got.Best, tc.want.Best)
			check("Worst", got.Worst, tc.want.Worst)
			check("Mean", got.Mean, tc.want.Mean)
			check("Median", got.Median, tc.want.Median)
			check("StdDev", got.StdDev, tc.want.StdDev)
		})
	}
}

func TestFitnessStatsLeavesInputUnsorted(t *testing.T) {
	in := []float64{3, 1, 2}
	fitnessStats(0, in)
	if in[0] != 3 || in[1] != 1 || in[2] != 2 {
		t.Errorf("input reordered: %v", in)
	}
}

func genomes(fitness ...float64) []*Genome {
	out := make([]*Genome, len(fitness))
	for i, f := range fitness {
		out[i] = &Genome{Born: i, fitness: f}
	}
	return out
}

func TestRankIsStable(t *testing.T) {
	pop := genomes(1, 5, 3, 5, 0)
	ranked := rank(pop)

	wantBorn := []int{1, 3, 2, 0, 4}
	for i, g := range ranked {
		if g.Born != wantBorn[i] {
			t.Errorf("ranked[%d] = genome %d, expected %d", i, g.Born, wantBorn[i])
		}
	}
	if pop[0].Born != 0 {
		t.Error("rank() reordered its input")
	}
}

func TestTournament(t *testing.T) {
	ranked := rank(genomes(1, 9, 4))
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 20; i++ {
		if g := tournament(rng, ranked, 200); g.Fitness() != 9 {
			t.Fatalf("large tournament picked fitness %v, expected the best", g.Fitness())
		}
	}

	seen := map[float64]bool{}
	for i := 0; i < 200; i++ {
		seen[tournament(rng, ranked, 0).Fitness()] = true
	}
	if len(seen) != 3 {
		t.Errorf("uniform sampling reached %d of 3 genomes", len(seen))
	}
}

func TestNewValidates(t *testing.T) {
	cfg := testConfig()
	cfg.Evolve.Population = 0
	if _, err := New(cfg, 1, nil); err == nil {
		t.Error("New() should reject an empty population")
	}

	cfg = testConfig()
	cfg.Evolve.MutationRate = 2
	if _, err := New(cfg, 1, nil); !errors.Is(err, config.ErrInvalid) {
		t.Errorf("New() error = %v, expected config.ErrInvalid", err)
	}
}

func TestStepKeepsElitesAndSize(t *testing.T) {
	cfg := testConfig()
	tr := newTrainer(t, cfg, 11)

	stats, err := tr.Step(context.Background())
	if err != nil {
		t.Fatalf("Step() failed: %v", err)
	}
	if stats.Generation != 0 || tr.Generation() != 1 {
		t.Errorf("generation = %d, next = %d", stats.Generation, tr.Generation())
	}
	if !stats.Improved {
		t.Error("first generation should always produce a champion")
	}

	pop := tr.Population()
	if len(pop) != cfg.Evolve.Population {
		t.Fatalf("population size = %d, expected %d", len(pop), cfg.Evolve.Population)
	}
	if pop[0].ID != stats.BestID {
		t.Errorf("first elite %s, expected the generation best %s", pop[0].ID, stats.BestID)
	}
	if tr.Champion().ID != stats.BestID || tr.Champion().Fitness() != stats.Best {
		t.Errorf("champion = %s (%v), expected %s (%v)", tr.Champion().ID, tr.Champion().Fitness(), stats.BestID, stats.Best)
	}

	ids := map[string]bool{}
	for i, g := range pop {
		if ids[g.ID.String()] {
			t.Errorf("duplicate genome id %s", g.ID)
		}
		ids[g.ID.String()] = true
		if i >= cfg.Evolve.Elite && g.Born != 1 {
			t.Errorf("child %d Born = %d, expected 1", i, g.Born)
		}
	}
}

func TestTrainerDeterminism(t *testing.T) {
	run := func() (*History, Summary) {
		tr := newTrainer(t, testConfig(), 5)
		h := &History{}
		sum, err := tr.Run(context.Background(), h)
		if err != nil {
			t.Fatalf("Run() failed: %v", err)
		}
		return h, sum
	}

	h1, s1 := run()
	h2, s2 := run()

	b1, b2 := h1.BestSeries(), h2.BestSeries()
	if len(b1) != 3 || len(b2) != 3 {
		t.Fatalf("series lengths %d and %d, expected 3", len(b1), len(b2))
	}
	for i := range b1 {
		if b1[i] != b2[i] {
			t.Errorf("generation %d best %v vs %v", i, b1[i], b2[i])
		}
	}
	m1, m2 := h1.MeanSeries(), h2.MeanSeries()
	for i := range m1 {
		if m1[i] != m2[i] {
			t.Errorf("generation %d mean %v vs %v", i, m1[i], m2[i])
		}
	}
	if s1.Champion.ID != s2.Champion.ID {
		t.Errorf("champion ids differ: %s vs %s", s1.Champion.ID, s2.Champion.ID)
	}
}

func TestRunStopsAtGenerationLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Evolve.Generations = 2
	tr := newTrainer(t, cfg, 3)

	var champions []float64
	check := ReporterFunc(func(s Stats, champion *Genome) error {
		if champion == nil {
			t.Fatal("reporter got a nil champion")
		}
		if champion.Fitness() < s.Best {
			t.Errorf("gen %d champion %v below generation best %v", s.Generation, champion.Fitness(), s.Best)
		}
		champions = append(champions, champion.Fitness())
		return nil
	})

	sum, err := tr.Run(context.Background(), check)
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if sum.Reason != StopGenerations || sum.Generations != 2 {
		t.Errorf("summary = %+v", sum)
	}
	if len(champions) != 2 || champions[1] < champions[0] {
		t.Errorf("champion fitness went backwards: %v", champions)
	}
}

func TestRunStopsAtThreshold(t *testing.T) {
	cfg := testConfig()
	cfg.Evolve.Generations = 0
	// Every bird survives at least until it reaches a boundary.
	cfg.Evolve.FitnessThreshold = 1

	tr := newTrainer(t, cfg, 9)
	sum, err := tr.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if sum.Reason != StopThreshold || sum.Generations != 1 {
		t.Errorf("summary = %+v (%v)", sum, sum.Reason)
	}
	if sum.Champion == nil || sum.Champion.Fitness() < 1 {
		t.Errorf("champion = %+v", sum.Champion)
	}
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tr := newTrainer(t, testConfig(), 1)
	before := tr.Population()[0].ID

	sum, err := tr.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, expected context.Canceled", err)
	}
	if sum.Reason != StopCanceled || sum.Generations != 0 {
		t.Errorf("summary = %+v", sum)
	}
	if tr.Population()[0].ID != before {
		t.Error("canceled generation should not breed")
	}
}

func TestRunReporterErrorAborts(t *testing.T) {
	tr := newTrainer(t, testConfig(), 1)
	boom := errors.New("disk full")

	_, err := tr.Run(context.Background(), ReporterFunc(func(Stats, *Genome) error { return boom }))
	if !errors.Is(err, boom) {
		t.Fatalf("Run() error = %v, expected the reporter error", err)
	}
	if tr.Generation() != 1 {
		t.Errorf("generation = %d, expected the run to stop after 1", tr.Generation())
	}
}

func TestLogReporter(t *testing.T) {
	cfg := testConfig()
	cfg.Evolve.Generations = 1

	var buf bytes.Buffer
	tr, err := New(cfg, 2, testLogger(&buf))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := tr.Run(context.Background(), LogReporter{Logger: testLogger(&buf)}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"generation complete", "gen=0", "new champion"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestStoreReporterPersistsRun(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	run, err := store.CreateRun(storage.Run{Seed: 4, Population: 10, Generations: 3})
	if err != nil {
		t.Fatal(err)
	}

	tr := newTrainer(t, testConfig(), 4)
	sum, err := tr.Run(context.Background(), StoreReporter{Store: store, RunID: run.ID})
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	records, err := store.Generations(run.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Fatalf("stored %d generations, expected 3", len(records))
	}

	stored, err := store.Champion(run.ID)
	if err != nil || stored == nil {
		t.Fatalf("Champion() = %v, %v", stored, err)
	}
	if stored.GenomeID != sum.Champion.ID.String() || stored.Generation != sum.ChampionGen {
		t.Errorf("stored champion %s gen %d, expected %s gen %d", stored.GenomeID, stored.Generation, sum.Champion.ID, sum.ChampionGen)
	}

	g, err := Restore(*stored)
	if err != nil {
		t.Fatalf("Restore() failed: %v", err)
	}
	if g.Fitness() != sum.Champion.Fitness() {
		t.Errorf("restored fitness %v, expected %v", g.Fitness(), sum.Champion.Fitness())
	}
	want, got := sum.Champion.Net.Weights(), g.Net.Weights()
	for i := range want {
		if want[i] != got[i] {
			t.Fatalf("weight %d = %v, expected %v", i, got[i], want[i])
		}
	}
}

func TestRestoreRejectsBadWeights(t *testing.T) {
	_, err := Restore(storage.Champion{RunID: "r", GenomeID: "00000000-0000-0000-0000-000000000000", Hidden: 2, Weights: []float64{1, 2}})
	if err == nil {
		t.Error("Restore() should reject a weight vector of the wrong size")
	}
}
