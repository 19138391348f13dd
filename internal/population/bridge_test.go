package population

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/flappy-evo/internal/config"
	"github.com/vovakirdan/flappy-evo/internal/games/flappy"
)

func never() flappy.Controller {
	return flappy.ControllerFunc(func(flappy.Observation) (float64, error) { return 0, nil })
}

func hover(y float64) flappy.Controller {
	return flappy.ControllerFunc(func(obs flappy.Observation) (float64, error) {
		if obs.Y > y {
			return 1, nil
		}
		return 0, nil
	})
}

func quietLogger(buf *bytes.Buffer) *log.Logger {
	return log.NewWithOptions(buf, log.Options{Level: log.DebugLevel})
}

func TestEvaluateWritesFitnessBack(t *testing.T) {
	stale := Wrap(never())
	stale.SetFitness(123)
	individuals := []Individual{stale, Wrap(never())}

	var buf bytes.Buffer
	res, err := Evaluate(context.Background(), individuals, config.Default(), Options{Seed: 1, Logger: quietLogger(&buf)})
	if err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}

	if len(res.Fitness) != 2 {
		t.Fatalf("len(Fitness) = %d, expected 2", len(res.Fitness))
	}
	for i, ind := range individuals {
		if ind.Fitness() != res.Fitness[i] {
			t.Errorf("individual %d fitness %v, result %v", i, ind.Fitness(), res.Fitness[i])
		}
		if math.Abs(ind.Fitness()-2.3) > 1e-9 {
			t.Errorf("individual %d fitness %v, expected 2.3", i, ind.Fitness())
		}
	}
	if res.Best != 0 {
		t.Errorf("Best = %d, expected 0 on a tie", res.Best)
	}
}

func TestEvaluateFreezesEliminatedFitness(t *testing.T) {
	cfg := config.Default()
	cfg.Episode.MaxTicks = 100

	faller := Wrap(never())
	hoverer := Wrap(hover(420))
	res, err := Evaluate(context.Background(), []Individual{faller, hoverer}, cfg, Options{Seed: 3, Logger: quietLogger(&bytes.Buffer{})})
	if err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}

	if math.Abs(faller.Fitness()-2.3) > 1e-9 {
		t.Errorf("faller fitness = %v, expected 2.3 frozen at tick 23", faller.Fitness())
	}
	if hoverer.Fitness() <= faller.Fitness() {
		t.Errorf("hoverer fitness %v should exceed faller %v", hoverer.Fitness(), faller.Fitness())
	}
	if res.Best != 1 {
		t.Errorf("Best = %d, expected 1", res.Best)
	}
}

func TestEvaluateLogsControllerFailure(t *testing.T) {
	broken := Wrap(flappy.ControllerFunc(func(flappy.Observation) (float64, error) {
		return 0, errors.New("weights corrupted")
	}))

	var buf bytes.Buffer
	res, err := Evaluate(context.Background(), []Individual{Wrap(never()), broken}, config.Default(), Options{Seed: 1, Logger: quietLogger(&buf)})
	if err != nil {
		t.Fatalf("Evaluate() should not fail on a controller error: %v", err)
	}
	if len(res.Failures) != 1 || res.Failures[0].ID != 1 {
		t.Fatalf("failures = %+v", res.Failures)
	}
	if math.Abs(broken.Fitness()-0.1) > 1e-9 {
		t.Errorf("broken fitness = %v, expected 0.1", broken.Fitness())
	}
	if !strings.Contains(buf.String(), "weights corrupted") {
		t.Errorf("failure not logged: %q", buf.String())
	}
}

func TestEvaluateEmptyBatch(t *testing.T) {
	res, err := Evaluate(context.Background(), nil, config.Default(), Options{})
	if err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}
	if len(res.Fitness) != 0 || res.Best != -1 || res.Reason != flappy.ReasonExtinct {
		t.Errorf("empty batch result = %+v", res)
	}
}

func TestEvaluateInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Pipes.Speed = 0

	_, err := Evaluate(context.Background(), []Individual{Wrap(never())}, cfg, Options{})
	if !errors.Is(err, config.ErrInvalid) {
		t.Fatalf("Evaluate() error = %v, expected config.ErrInvalid", err)
	}
}

func TestEvaluateCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ind := Wrap(hover(420))
	res, err := Evaluate(ctx, []Individual{ind}, config.Default(), Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Evaluate() error = %v, expected context.Canceled", err)
	}
	if res.Reason != flappy.ReasonCanceled || res.Ticks != 0 {
		t.Errorf("result = %+v", res.Result)
	}
	if ind.Fitness() != 0 {
		t.Errorf("fitness = %v, expected 0", ind.Fitness())
	}
}
