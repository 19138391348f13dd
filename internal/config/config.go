// Package config provides YAML-based configuration loading for the
// simulation and the evolutionary trainer.
package config

// Config is the full set of named parameters read at episode construction.
// Values never change while an episode is running.
type Config struct {
	Playfield Playfield    `yaml:"playfield"`
	Bird      BirdConfig   `yaml:"bird"`
	Pipes     PipeConfig   `yaml:"pipes"`
	Fitness   FitnessRules `yaml:"fitness"`
	Episode   EpisodeRules `yaml:"episode"`
	Sprites   SpriteConfig `yaml:"sprites"`
	Evolve    EvolveConfig `yaml:"evolve"`
}

// Playfield defines the world boundaries in pixels.
type Playfield struct {
	Width    int     `yaml:"width"`
	Height   int     `yaml:"height"`
	GroundY  float64 `yaml:"ground_y"`  // Birds whose lower edge reaches this line are eliminated
	CeilingY float64 `yaml:"ceiling_y"` // Birds above this line are eliminated
}

// BirdConfig defines the kinematic model constants.
type BirdConfig struct {
	StartX               float64 `yaml:"start_x"`
	StartY               float64 `yaml:"start_y"`
	JumpVelocity         float64 `yaml:"jump_velocity"`         // Velocity set by an impulse (negative = up)
	Accel                float64 `yaml:"accel"`                 // Coefficient of t² in the displacement formula
	TerminalDisplacement float64 `yaml:"terminal_displacement"` // Max downward displacement per tick
	RiseBonus            float64 `yaml:"rise_bonus"`            // Extra upward displacement while rising
	MaxRotation          float64 `yaml:"max_rotation"`          // Nose-up tilt in degrees
	RotationVelocity     float64 `yaml:"rotation_velocity"`     // Nose-down degrees per tick
	MinTilt              float64 `yaml:"min_tilt"`              // Nose-down limit in degrees
	TiltWindow           float64 `yaml:"tilt_window"`           // Distance below jump height that keeps the nose up
	AnimationTime        int     `yaml:"animation_time"`        // Ticks per wing frame
}

// PipeConfig defines obstacle generation and motion.
type PipeConfig struct {
	Gap       float64 `yaml:"gap"`
	Speed     float64 `yaml:"speed"`
	FirstX    float64 `yaml:"first_x"`    // X of the obstacle created at episode start
	SpawnX    float64 `yaml:"spawn_x"`    // X of every obstacle spawned after a pass
	MinHeight int     `yaml:"min_height"` // Inclusive lower bound of the gap anchor
	MaxHeight int     `yaml:"max_height"` // Exclusive upper bound of the gap anchor
}

// FitnessRules defines the reward signal applied during an episode.
type FitnessRules struct {
	Survival         float64 `yaml:"survival"`          // Added every tick a bird is alive
	CollisionPenalty float64 `yaml:"collision_penalty"` // Added when a bird hits a pipe
	PassBonus        float64 `yaml:"pass_bonus"`        // Added to every live bird when a pipe is passed
	JumpThreshold    float64 `yaml:"jump_threshold"`    // Controller outputs above this trigger an impulse
}

// EpisodeRules defines episode pacing and budget.
type EpisodeRules struct {
	MaxTicks int `yaml:"max_ticks"` // 0 = run until every bird is eliminated
	TickRate int `yaml:"tick_rate"` // Ticks per second when paced for viewing
}

// SpriteConfig points at optional sprite images used for collision masks.
type SpriteConfig struct {
	Dir string `yaml:"dir"` // Empty = built-in silhouettes
}

// EvolveConfig defines the generational trainer.
type EvolveConfig struct {
	Population       int     `yaml:"population"`
	Generations      int     `yaml:"generations"`
	Elite            int     `yaml:"elite"`
	TournamentSize   int     `yaml:"tournament_size"`
	Hidden           int     `yaml:"hidden"`
	MutationRate     float64 `yaml:"mutation_rate"`  // Per-weight mutation probability
	MutationPower    float64 `yaml:"mutation_power"` // Stddev of the gaussian perturbation
	ReplaceRate      float64 `yaml:"replace_rate"`   // Probability a mutated weight is redrawn instead of perturbed
	CrossoverRate    float64 `yaml:"crossover_rate"`
	FitnessThreshold float64 `yaml:"fitness_threshold"` // Stop when the best fitness reaches this (0 = never)
	TickBudget       int     `yaml:"tick_budget"`       // Max ticks of each training episode (0 = episode.max_ticks)
}
