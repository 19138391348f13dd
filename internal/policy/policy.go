// Package policy provides scripted and learned bird controllers and
// registers them with the policy registry.
package policy

import (
	"math/rand"

	"github.com/vovakirdan/flappy-evo/internal/games/flappy"
	"github.com/vovakirdan/flappy-evo/internal/neural"
	"github.com/vovakirdan/flappy-evo/internal/registry"
)

// Idle never jumps.
type Idle struct{}

func (Idle) ID() string    { return "idle" }
func (Idle) Title() string { return "Never flaps; falls to the ground" }

func (Idle) Controller(int64) flappy.Controller {
	return flappy.ControllerFunc(func(flappy.Observation) (float64, error) {
		return 0, nil
	})
}

// Flapper jumps at a fixed period, with a per-bird phase derived from the seed.
type Flapper struct {
	Period int
}

func (Flapper) ID() string    { return "flapper" }
func (Flapper) Title() string { return "Flaps on a fixed beat, ignoring the pipes" }

func (f Flapper) Controller(seed int64) flappy.Controller {
	period := f.Period
	if period <= 0 {
		period = 1
	}
	tick := rand.New(rand.NewSource(seed)).Intn(period)
	return flappy.ControllerFunc(func(flappy.Observation) (float64, error) {
		tick++
		if tick%period == 0 {
			return 1, nil
		}
		return 0, nil
	})
}

// Seeker steers toward the middle of the relevant gap.
type Seeker struct {
	// Offset is how far below the gap centre the bird's top edge may sink
	// before it flaps.
	Offset float64
}

func (Seeker) ID() string    { return "seeker" }
func (Seeker) Title() string { return "Flaps when it sinks below the gap centre" }

func (s Seeker) Controller(int64) flappy.Controller {
	return flappy.ControllerFunc(func(obs flappy.Observation) (float64, error) {
		// Inside the gap (DistTop - DistBottom)/2 is y minus the gap centre;
		// outside it saturates at half the gap, keeping the sign.
		if (obs.DistTop-obs.DistBottom)/2 > s.Offset {
			return 1, nil
		}
		return 0, nil
	})
}

// Network adapts a neural network to the controller contract.
type Network struct {
	Net *neural.Network
}

// Act feeds the observation through the network.
func (n Network) Act(obs flappy.Observation) (float64, error) {
	return n.Net.Forward(obs.Inputs())
}

// RandomNetwork builds an untrained network per bird.
type RandomNetwork struct {
	Hidden int
}

func (RandomNetwork) ID() string    { return "random-net" }
func (RandomNetwork) Title() string { return "Untrained neural network with random weights" }

func (r RandomNetwork) Controller(seed int64) flappy.Controller {
	return Network{Net: neural.New(rand.New(rand.NewSource(seed)), r.Hidden)}
}

func init() {
	registry.Register("idle", func() registry.Policy { return Idle{} })
	registry.Register("flapper", func() registry.Policy { return Flapper{Period: 14} })
	registry.Register("seeker", func() registry.Policy { return Seeker{Offset: 10} })
	registry.Register("random-net", func() registry.Policy { return RandomNetwork{} })
}
