package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/vovakirdan/flappy-evo/internal/config"
	"github.com/vovakirdan/flappy-evo/internal/games/flappy"
)

// Source produces snapshots into sink until it finishes or ctx is canceled.
type Source func(ctx context.Context, sink flappy.SnapshotSink) error

// ControllerFactory returns the controller of one bird.
type ControllerFactory func(seed int64) flappy.Controller

// LoopOptions configures EpisodeLoop.
type LoopOptions struct {
	Birds    int   // Birds per episode (minimum 1)
	Seed     int64 // Episode n uses Seed+n
	Episodes int   // 0 = loop until canceled
	Sprites  *flappy.Sprites

	// Pause holds the final frame of an episode before the next one starts.
	Pause time.Duration

	// Unpaced ignores the configured tick rate.
	Unpaced bool
}

// TickDelay converts the configured tick rate into a per-tick delay.
func TickDelay(cfg config.Config) time.Duration {
	if cfg.Episode.TickRate <= 0 {
		return 0
	}
	return time.Second / time.Duration(cfg.Episode.TickRate)
}

// EpisodeLoop returns a Source that plays paced episodes back to back, each
// with a fresh set of controllers from factory. The generation counter of
// the snapshots counts the episodes.
func EpisodeLoop(cfg config.Config, factory ControllerFactory, opts LoopOptions) Source {
	birds := max(opts.Birds, 1)
	delay := TickDelay(cfg)
	if opts.Unpaced {
		delay = 0
	}

	return func(ctx context.Context, sink flappy.SnapshotSink) error {
		for n := 0; opts.Episodes <= 0 || n < opts.Episodes; n++ {
			seed := opts.Seed + int64(n)

			agents := make([]flappy.Agent, birds)
			for i := range agents {
				agents[i] = flappy.Agent{Controller: factory(seed*1000 + int64(i))}
			}

			ep, err := flappy.NewEpisode(cfg, agents, flappy.Options{
				Seed:       seed,
				Generation: n,
				Sprites:    opts.Sprites,
			})
			if err != nil {
				return fmt.Errorf("tui: episode %d: %w", n, err)
			}

			if _, err := ep.Run(ctx, flappy.RunOptions{TickDelay: delay, Sink: sink}); err != nil {
				return err
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(opts.Pause):
			}
		}
		return nil
	}
}
