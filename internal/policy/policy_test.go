package policy

import (
	"context"
	"testing"

	"github.com/vovakirdan/flappy-evo/internal/config"
	"github.com/vovakirdan/flappy-evo/internal/games/flappy"
	"github.com/vovakirdan/flappy-evo/internal/neural"
	"github.com/vovakirdan/flappy-evo/internal/registry"
)

func TestPoliciesRegistered(t *testing.T) {
	for _, id := range []string{"idle", "flapper", "seeker", "random-net"} {
		if !registry.Exists(id) {
			t.Errorf("policy %q not registered", id)
		}
		p, err := registry.Create(id)
		if err != nil {
			t.Fatalf("Create(%q) failed: %v", id, err)
		}
		if p.ID() != id {
			t.Errorf("Create(%q).ID() = %q", id, p.ID())
		}
		if p.Controller(1) == nil {
			t.Errorf("%q returned a nil controller", id)
		}
	}
}

func TestFlapperPeriod(t *testing.T) {
	c := Flapper{Period: 14}.Controller(99)

	jumps := 0
	for i := 0; i < 28; i++ {
		out, err := c.Act(flappy.Observation{})
		if err != nil {
			t.Fatal(err)
		}
		if out > 0.5 {
			jumps++
		}
	}
	if jumps != 2 {
		t.Errorf("flapper jumped %d times in 28 ticks, expected 2", jumps)
	}
}

func TestSeekerDecision(t *testing.T) {
	c := Seeker{Offset: 10}.Controller(0)

	tests := []struct {
		name string
		obs  flappy.Observation
		jump bool
	}{
		// Gap 300..500, centre 400.
		{"well above centre", flappy.Observation{Y: 320, DistTop: 20, DistBottom: 180}, false},
		{"just below centre", flappy.Observation{Y: 405, DistTop: 105, DistBottom: 95}, false},
		{"past the offset", flappy.Observation{Y: 430, DistTop: 130, DistBottom: 70}, true},
		{"below the gap", flappy.Observation{Y: 560, DistTop: 260, DistBottom: 60}, true},
		{"above the gap", flappy.Observation{Y: 100, DistTop: 200, DistBottom: 400}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, err := c.Act(tc.obs)
			if err != nil {
				t.Fatal(err)
			}
			if (out > 0.5) != tc.jump {
				t.Errorf("Act() = %v, expected jump=%v", out, tc.jump)
			}
		})
	}
}

func TestNetworkController(t *testing.T) {
	net, err := neural.FromWeights(0, []float64{1, 0, 0, -400})
	if err != nil {
		t.Fatal(err)
	}
	c := Network{Net: net}

	out, err := c.Act(flappy.Observation{Y: 500})
	if err != nil {
		t.Fatalf("Act() failed: %v", err)
	}
	if out <= 0.5 {
		t.Errorf("Act() = %v, expected a jump", out)
	}
}

func runPolicy(t *testing.T, p registry.Policy, ticks int) flappy.Result {
	t.Helper()
	cfg := config.Default()
	cfg.Episode.MaxTicks = ticks

	agents := []flappy.Agent{{Controller: p.Controller(1)}}
	e, err := flappy.NewEpisode(cfg, agents, flappy.Options{Seed: 2024})
	if err != nil {
		t.Fatal(err)
	}
	res, err := e.Run(context.Background(), flappy.RunOptions{})
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func TestSeekerClearsPipes(t *testing.T) {
	res := runPolicy(t, Seeker{Offset: 10}, 1500)
	if res.Score < 3 {
		t.Errorf("seeker scored %d in %d ticks (%v), expected at least 3", res.Score, res.Ticks, res.Reason)
	}
}

func TestIdleFallsToGround(t *testing.T) {
	res := runPolicy(t, Idle{}, 1500)
	if res.Score != 0 || res.Reason != flappy.ReasonExtinct {
		t.Errorf("idle: score %d reason %v", res.Score, res.Reason)
	}
	if len(res.Eliminations) != 1 || res.Eliminations[0].Cause != flappy.CauseGround {
		t.Errorf("idle eliminations = %+v", res.Eliminations)
	}
}
