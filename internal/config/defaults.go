package config

import (
	_ "embed"
)

//go:embed defaults/flappy.yaml
var defaultYAML []byte

// Default returns the built-in configuration. The values reproduce the
// classic 500x800 course at 30 ticks per second.
func Default() Config {
	return Config{
		Playfield: Playfield{
			Width:    500,
			Height:   800,
			GroundY:  730,
			CeilingY: 0,
		},
		Bird: BirdConfig{
			StartX:               230,
			StartY:               350,
			JumpVelocity:         -10.5,
			Accel:                1.5,
			TerminalDisplacement: 16,
			RiseBonus:            2,
			MaxRotation:          25,
			RotationVelocity:     20,
			MinTilt:              -90,
			TiltWindow:           50,
			AnimationTime:        5,
		},
		Pipes: PipeConfig{
			Gap:       200,
			Speed:     5,
			FirstX:    600,
			SpawnX:    600,
			MinHeight: 50,
			MaxHeight: 450,
		},
		Fitness: FitnessRules{
			Survival:         0.1,
			CollisionPenalty: -1,
			PassBonus:        5,
			JumpThreshold:    0.5,
		},
		Episode: EpisodeRules{
			MaxTicks: 0,
			TickRate: 30,
		},
		Evolve: EvolveConfig{
			Population:       50,
			Generations:      50,
			Elite:            2,
			TournamentSize:   3,
			Hidden:           0,
			MutationRate:     0.8,
			MutationPower:    0.5,
			ReplaceRate:      0.1,
			CrossoverRate:    0.5,
			FitnessThreshold: 100,
			TickBudget:       5000,
		},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultYAML
}
