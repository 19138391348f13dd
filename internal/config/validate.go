package config

import (
	"errors"
	"fmt"
)

// ErrInvalid is matched by every ValidationError.
var ErrInvalid = errors.New("invalid configuration")

// ValidationError names the offending field of a rejected configuration.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// Is makes errors.Is(err, ErrInvalid) succeed for validation failures.
func (e ValidationError) Is(target error) bool {
	return target == ErrInvalid
}

func invalid(field, format string, args ...any) error {
	return ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Validate checks every section, the optimizer's included.
func (c Config) Validate() error {
	if err := c.ValidateSim(); err != nil {
		return err
	}
	return c.Evolve.validate()
}

// ValidateSim checks the sections an episode reads and ignores evolve.
// A failure is fatal to the episode being constructed, nothing else.
func (c Config) ValidateSim() error {
	p := c.Playfield
	if p.Width <= 0 || p.Height <= 0 {
		return invalid("playfield", "size must be positive, got %dx%d", p.Width, p.Height)
	}
	if p.GroundY <= p.CeilingY {
		return invalid("playfield.ground_y", "ground (%.1f) must be below ceiling (%.1f)", p.GroundY, p.CeilingY)
	}
	if p.GroundY > float64(p.Height) {
		return invalid("playfield.ground_y", "ground (%.1f) is outside the playfield height %d", p.GroundY, p.Height)
	}

	b := c.Bird
	if b.StartY < p.CeilingY || b.StartY >= p.GroundY {
		return invalid("bird.start_y", "start %.1f must lie between ceiling and ground", b.StartY)
	}
	if b.TerminalDisplacement <= 0 {
		return invalid("bird.terminal_displacement", "must be positive, got %.2f", b.TerminalDisplacement)
	}
	if b.JumpVelocity >= 0 {
		return invalid("bird.jump_velocity", "must be negative (upward), got %.2f", b.JumpVelocity)
	}
	if b.AnimationTime <= 0 {
		return invalid("bird.animation_time", "must be positive, got %d", b.AnimationTime)
	}

	pp := c.Pipes
	if pp.Gap <= 0 {
		return invalid("pipes.gap", "must be positive, got %.1f", pp.Gap)
	}
	if pp.Gap >= float64(p.Height) {
		return invalid("pipes.gap", "gap %.1f does not fit in playfield height %d", pp.Gap, p.Height)
	}
	if pp.Speed <= 0 {
		return invalid("pipes.speed", "must be positive, got %.2f", pp.Speed)
	}
	if pp.MinHeight < 0 || pp.MaxHeight <= pp.MinHeight {
		return invalid("pipes.max_height", "anchor range [%d, %d) is empty", pp.MinHeight, pp.MaxHeight)
	}
	if float64(pp.MaxHeight)+pp.Gap > float64(p.Height) {
		return invalid("pipes.max_height", "anchor %d plus gap %.1f exceeds playfield height %d", pp.MaxHeight, pp.Gap, p.Height)
	}

	if c.Episode.MaxTicks < 0 {
		return invalid("episode.max_ticks", "must not be negative, got %d", c.Episode.MaxTicks)
	}
	if c.Episode.TickRate <= 0 {
		return invalid("episode.tick_rate", "must be positive, got %d", c.Episode.TickRate)
	}
	return nil
}

func (e EvolveConfig) validate() error {
	if e.Population < 0 {
		return invalid("evolve.population", "must not be negative, got %d", e.Population)
	}
	if e.Elite < 0 || (e.Population > 0 && e.Elite > e.Population) {
		return invalid("evolve.elite", "must be within [0, population], got %d", e.Elite)
	}
	if e.Generations < 0 {
		return invalid("evolve.generations", "must not be negative, got %d", e.Generations)
	}
	if e.Hidden < 0 {
		return invalid("evolve.hidden", "must not be negative, got %d", e.Hidden)
	}
	if e.TournamentSize < 0 {
		return invalid("evolve.tournament_size", "must not be negative, got %d", e.TournamentSize)
	}
	if e.MutationPower < 0 {
		return invalid("evolve.mutation_power", "must not be negative, got %.2f", e.MutationPower)
	}
	if e.TickBudget < 0 {
		return invalid("evolve.tick_budget", "must not be negative, got %d", e.TickBudget)
	}
	probs := []struct {
		field string
		value float64
	}{
		{"evolve.mutation_rate", e.MutationRate},
		{"evolve.replace_rate", e.ReplaceRate},
		{"evolve.crossover_rate", e.CrossoverRate},
	}
	for _, p := range probs {
		if p.value < 0 || p.value > 1 {
			return invalid(p.field, "probability must be within [0, 1], got %.2f", p.value)
		}
	}
	return nil
}
