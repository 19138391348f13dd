// Package flappy implements the Flappy Bird population simulation: a fixed
// tick kernel that flies a batch of controller-driven birds through a
// procedurally spawned stream of pipes and accumulates a fitness value for
// each of them.
package flappy

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/vovakirdan/flappy-evo/internal/config"
)

// State is the episode lifecycle state.
type State int

const (
	StateRunning State = iota
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Reason tells why an episode terminated.
type Reason int

const (
	ReasonNone     Reason = iota // Still running
	ReasonExtinct                // No birds left
	ReasonBudget                 // Tick budget exhausted
	ReasonCanceled               // Context canceled
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonExtinct:
		return "extinct"
	case ReasonBudget:
		return "budget"
	case ReasonCanceled:
		return "canceled"
	default:
		return fmt.Sprintf("Reason(%d)", int(r))
	}
}

// Cause tells why a bird was eliminated.
type Cause int

const (
	CausePipe Cause = iota
	CauseGround
	CauseCeiling
	CauseController
)

func (c Cause) String() string {
	switch c {
	case CausePipe:
		return "pipe"
	case CauseGround:
		return "ground"
	case CauseCeiling:
		return "ceiling"
	case CauseController:
		return "controller"
	default:
		return fmt.Sprintf("Cause(%d)", int(c))
	}
}

// Elimination records one bird leaving the active set.
type Elimination struct {
	ID      int // Index in the seeding order
	Tick    uint64
	Cause   Cause
	Fitness float64 // Value frozen at elimination
}

// ControllerFailure records a controller returning an error.
type ControllerFailure struct {
	ID   int
	Tick uint64
	Err  error
}

func (f ControllerFailure) Error() string {
	return fmt.Sprintf("bird %d at tick %d: %v", f.ID, f.Tick, f.Err)
}

func (f ControllerFailure) Unwrap() error {
	return f.Err
}

// Result is the outcome of an episode. Fitness has one entry per seeded
// agent, in seeding order, whether or not the bird survived.
type Result struct {
	Fitness      []float64
	Score        int
	Ticks        uint64
	Reason       Reason
	Eliminations []Elimination
	Failures     []ControllerFailure
}

// Options configures episode construction.
type Options struct {
	Seed       int64
	Generation int      // Carried into snapshots for display
	Sprites    *Sprites // Nil = DefaultSprites()
}

// slot is one arena entry. Elimination only clears active; the slot is
// dropped from the live list by compaction at the end of the tick.
type slot struct {
	id         int
	bird       Bird
	controller Controller
	sink       FitnessSink
	fitness    float64
	active     bool
}

// Episode runs one population of birds until none remain.
// It is not safe for concurrent use; run separate episodes in parallel instead.
type Episode struct {
	cfg        config.Config
	sprites    *Sprites
	rng        *rand.Rand
	generation int

	slots   []*slot   // Live birds in seeding order, compacted every tick
	fitness []float64 // Indexed by slot id
	pipes   []Pipe
	base    Base

	score        int
	tick         uint64
	state        State
	reason       Reason
	eliminations []Elimination
	failures     []ControllerFailure
}

// NewEpisode validates cfg and seeds one slot per agent. An empty agent list
// yields an episode that is already terminated and never builds a pipe.
func NewEpisode(cfg config.Config, agents []Agent, opts Options) (*Episode, error) {
	if err := cfg.ValidateSim(); err != nil {
		return nil, fmt.Errorf("flappy: new episode: %w", err)
	}
	for i, a := range agents {
		if a.Controller == nil {
			return nil, fmt.Errorf("flappy: new episode: agent %d has no controller", i)
		}
	}

	sprites := opts.Sprites
	if sprites == nil {
		sprites = DefaultSprites()
	}

	e := &Episode{
		cfg:        cfg,
		sprites:    sprites,
		rng:        rand.New(rand.NewSource(opts.Seed)),
		generation: opts.Generation,
		slots:      make([]*slot, 0, len(agents)),
		fitness:    make([]float64, len(agents)),
		base:       NewBase(),
		state:      StateRunning,
	}

	if len(agents) == 0 {
		e.terminate(ReasonExtinct)
		return e, nil
	}

	for i, a := range agents {
		s := &slot{
			id:         i,
			bird:       NewBird(cfg.Bird),
			controller: a.Controller,
			sink:       a.Sink,
			active:     true,
		}
		if s.sink != nil {
			s.sink.SetFitness(0)
		}
		e.slots = append(e.slots, s)
	}
	e.pipes = append(e.pipes, NewPipe(cfg.Pipes.FirstX, e.rng, cfg.Pipes, sprites))

	return e, nil
}

// Step advances the episode by one tick. It is a no-op once terminated.
func (e *Episode) Step() {
	if e.state != StateRunning {
		return
	}
	e.tick++

	target := e.relevantPipe()

	// Fly, reward survival, ask the controller.
	for _, s := range e.slots {
		s.bird.Move()
		e.credit(s, e.cfg.Fitness.Survival)

		obs := Observation{
			Y:          s.bird.Y,
			DistTop:    math.Abs(s.bird.Y - target.GapTop()),
			DistBottom: math.Abs(s.bird.Y - target.GapBottom()),
		}
		out, err := act(s.controller, obs)
		if err != nil {
			e.failures = append(e.failures, ControllerFailure{ID: s.id, Tick: e.tick, Err: err})
			e.eliminate(s, CauseController)
			continue
		}
		if out > e.cfg.Fitness.JumpThreshold {
			s.bird.Jump()
		}
	}

	// Collisions and the passed flag. A bird eliminated by this pipe still
	// counts toward passing it, as the first qualifying bird wins.
	passed := false
	for i := range e.pipes {
		p := &e.pipes[i]
		for _, s := range e.slots {
			if !s.active {
				continue
			}
			if p.Collide(&s.bird, e.sprites) {
				e.credit(s, e.cfg.Fitness.CollisionPenalty)
				e.eliminate(s, CausePipe)
			}
			if !p.Passed && p.X < s.bird.X {
				p.Passed = true
				passed = true
			}
		}
	}

	for i := range e.pipes {
		e.pipes[i].Move(e.cfg.Pipes.Speed)
	}
	e.base.Move(e.cfg.Pipes.Speed)

	if passed {
		e.score++
		for _, s := range e.slots {
			if s.active {
				e.credit(s, e.cfg.Fitness.PassBonus)
			}
		}
		e.pipes = append(e.pipes, NewPipe(e.cfg.Pipes.SpawnX, e.rng, e.cfg.Pipes, e.sprites))
	}

	width := e.sprites.PipeWidth()
	kept := e.pipes[:0]
	for _, p := range e.pipes {
		if !p.Offscreen(width) {
			kept = append(kept, p)
		}
	}
	e.pipes = kept

	birdHeight := float64(e.sprites.BirdHeight())
	for _, s := range e.slots {
		if !s.active {
			continue
		}
		switch {
		case s.bird.Y+birdHeight >= e.cfg.Playfield.GroundY:
			e.eliminate(s, CauseGround)
		case s.bird.Y < e.cfg.Playfield.CeilingY:
			e.eliminate(s, CauseCeiling)
		}
	}

	e.compact()
	for _, s := range e.slots {
		s.bird.Animate()
	}

	if len(e.slots) == 0 {
		e.terminate(ReasonExtinct)
	}
}

// relevantPipe picks the pipe the controllers aim at: the first one, or the
// second once the lead bird is past the first one's right edge.
func (e *Episode) relevantPipe() Pipe {
	if len(e.pipes) == 0 {
		return Pipe{}
	}
	idx := 0
	if len(e.pipes) > 1 && len(e.slots) > 0 &&
		e.slots[0].bird.X > e.pipes[0].X+float64(e.sprites.PipeWidth()) {
		idx = 1
	}
	return e.pipes[idx]
}

// act queries c, turning a panic into an error so only that bird is lost.
func act(c Controller, obs Observation) (out float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("controller panicked: %v", r)
		}
	}()
	return c.Act(obs)
}

// credit adds delta to a bird's fitness and writes the new value through.
func (e *Episode) credit(s *slot, delta float64) {
	s.fitness += delta
	e.fitness[s.id] = s.fitness
	if s.sink != nil {
		s.sink.SetFitness(s.fitness)
	}
}

func (e *Episode) eliminate(s *slot, cause Cause) {
	s.active = false
	e.eliminations = append(e.eliminations, Elimination{
		ID:      s.id,
		Tick:    e.tick,
		Cause:   cause,
		Fitness: s.fitness,
	})
}

// compact drops inactive slots, preserving seeding order.
func (e *Episode) compact() {
	live := e.slots[:0]
	for _, s := range e.slots {
		if s.active {
			live = append(live, s)
		}
	}
	for i := len(live); i < len(e.slots); i++ {
		e.slots[i] = nil
	}
	e.slots = live
}

func (e *Episode) terminate(reason Reason) {
	e.state = StateTerminated
	e.reason = reason
}

// RunOptions controls Run pacing and observation.
type RunOptions struct {
	TickDelay time.Duration // Wait between ticks; 0 = as fast as possible
	Sink      SnapshotSink  // Optional
}

// Run steps the episode until it terminates, the configured tick budget is
// spent or ctx is canceled. On cancellation the partial result is returned
// with ctx.Err(); fitness values stay at what they were when it stopped.
func (e *Episode) Run(ctx context.Context, opts RunOptions) (Result, error) {
	var ticker *time.Ticker
	if opts.TickDelay > 0 {
		ticker = time.NewTicker(opts.TickDelay)
		defer ticker.Stop()
	}

	if opts.Sink != nil {
		opts.Sink.Publish(e.Snapshot())
	}

	budget := uint64(e.cfg.Episode.MaxTicks)
	for e.state == StateRunning {
		if err := ctx.Err(); err != nil {
			e.terminate(ReasonCanceled)
			return e.Result(), err
		}
		if budget > 0 && e.tick >= budget {
			e.terminate(ReasonBudget)
			if opts.Sink != nil {
				opts.Sink.Publish(e.Snapshot())
			}
			break
		}

		e.Step()
		if opts.Sink != nil {
			opts.Sink.Publish(e.Snapshot())
		}

		if ticker != nil && e.state == StateRunning {
			select {
			case <-ctx.Done():
				e.terminate(ReasonCanceled)
				return e.Result(), ctx.Err()
			case <-ticker.C:
			}
		}
	}

	return e.Result(), nil
}

// State returns the lifecycle state.
func (e *Episode) State() State {
	return e.state
}

// Reason returns why the episode terminated, or ReasonNone while running.
func (e *Episode) Reason() Reason {
	return e.reason
}

// Score returns the number of pipes passed.
func (e *Episode) Score() int {
	return e.score
}

// Tick returns the number of completed ticks.
func (e *Episode) Tick() uint64 {
	return e.tick
}

// Alive returns the number of active birds.
func (e *Episode) Alive() int {
	return len(e.slots)
}

// Population returns the number of seeded agents.
func (e *Episode) Population() int {
	return len(e.fitness)
}

// Result returns a copy of the current outcome. It may be called at any
// time; while running, Fitness holds the values accumulated so far.
func (e *Episode) Result() Result {
	fitness := make([]float64, len(e.fitness))
	copy(fitness, e.fitness)
	elims := make([]Elimination, len(e.eliminations))
	copy(elims, e.eliminations)
	failures := make([]ControllerFailure, len(e.failures))
	copy(failures, e.failures)

	return Result{
		Fitness:      fitness,
		Score:        e.score,
		Ticks:        e.tick,
		Reason:       e.reason,
		Eliminations: elims,
		Failures:     failures,
	}
}
