package flappy

import "github.com/vovakirdan/flappy-evo/internal/config"

// BirdView is the presentation state of one live bird.
type BirdView struct {
	ID    int
	X, Y  float64
	Tilt  float64
	Frame int
}

// PipeView is the presentation state of one pipe.
type PipeView struct {
	X      float64
	Height int
	Top    int
	Bottom int
	Passed bool
}

// Snapshot is a self-contained copy of everything a renderer needs for one
// tick. It shares no memory with the episode.
type Snapshot struct {
	Generation  int
	Tick        uint64
	Score       int
	Alive       int
	Population  int
	State       State
	Reason      Reason
	BestFitness float64

	Birds []BirdView
	Pipes []PipeView
	Base  Base

	Playfield  config.Playfield
	BirdWidth  int
	BirdHeight int
	PipeWidth  int
	PipeHeight int
}

// Snapshot captures the current tick.
func (e *Episode) Snapshot() Snapshot {
	snap := Snapshot{
		Generation: e.generation,
		Tick:       e.tick,
		Score:      e.score,
		Alive:      len(e.slots),
		Population: len(e.fitness),
		State:      e.state,
		Reason:     e.reason,
		Birds:      make([]BirdView, 0, len(e.slots)),
		Pipes:      make([]PipeView, 0, len(e.pipes)),
		Base:       e.base,
		Playfield:  e.cfg.Playfield,
		BirdWidth:  e.sprites.Birds[0].Width(),
		BirdHeight: e.sprites.BirdHeight(),
		PipeWidth:  e.sprites.PipeWidth(),
		PipeHeight: e.sprites.PipeBottom.Height(),
	}

	for i, f := range e.fitness {
		if i == 0 || f > snap.BestFitness {
			snap.BestFitness = f
		}
	}
	for _, s := range e.slots {
		snap.Birds = append(snap.Birds, BirdView{
			ID:    s.id,
			X:     s.bird.X,
			Y:     s.bird.Y,
			Tilt:  s.bird.Tilt,
			Frame: s.bird.Frame(),
		})
	}
	for _, p := range e.pipes {
		snap.Pipes = append(snap.Pipes, PipeView{
			X:      p.X,
			Height: p.Height,
			Top:    p.Top,
			Bottom: p.Bottom,
			Passed: p.Passed,
		})
	}
	return snap
}

// SnapshotSink consumes per-tick snapshots. Publish must not block.
type SnapshotSink interface {
	Publish(snap Snapshot)
}

// ChannelSink delivers snapshots to a channel. When the reader falls behind
// the oldest buffered snapshot is dropped, so the newest one always lands.
type ChannelSink chan Snapshot

// Publish sends snap, evicting buffered snapshots until it fits. An
// unbuffered sink only delivers to a reader that is already waiting.
func (c ChannelSink) Publish(snap Snapshot) {
	if cap(c) == 0 {
		select {
		case c <- snap:
		default:
		}
		return
	}
	for {
		select {
		case c <- snap:
			return
		default:
		}
		select {
		case <-c:
		default:
		}
	}
}
