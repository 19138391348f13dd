// flappyevo trains neural controllers to fly through pipes and lets you
// watch them in the terminal.
//
// Usage:
//
//	flappyevo train                  - Evolve a population and record the run
//	flappyevo watch                  - Watch a policy or a trained champion fly
//	flappyevo history [run]          - List runs, or show one run's generations
//	flappyevo export <run> <file>    - Export a run's generations as CSV
//	flappyevo policies               - List built-in policies
//	flappyevo serve                  - Start SSH server for spectators
//
// Global flags:
//
//	--config <path>     - Simulation and trainer YAML (default: search path)
//	--seed <value>      - RNG seed (0 = random based on time)
//	--db <path>         - Run database (default: ~/.flappyevo/runs.db)
//	--fps <rate>        - Viewer redraw rate (default: 30)
//	--log-level <lvl>   - debug, info, warn or error
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Import policies to register them
	_ "github.com/vovakirdan/flappy-evo/internal/policy"
)

var (
	// Global flags
	flagConfig   string
	flagSeed     int64
	flagDBPath   string
	flagFPS      int
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "flappyevo",
	Short: "Flappy Evo - evolve birds that fly through pipes",
	Long: `Flappy Evo runs a population of birds through a side-scrolling pipe course
and evolves the neural networks that decide when each bird flaps.

Available commands:
  train     - Evolve a population, logging and recording every generation
  watch     - Watch a built-in policy or a trained champion
  history   - Show recorded training runs
  export    - Export a run's generation statistics as CSV
  policies  - List built-in policies
  serve     - Start SSH server for spectators

Examples:
  flappyevo train --generations 30
  flappyevo train --view --population 20
  flappyevo watch --champion latest
  flappyevo history
  flappyevo export latest gens.csv
  flappyevo serve --ssh :2222 --policy seeker`,
	SilenceUsage: true,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom config YAML")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.flappyevo/runs.db", "Path to run database")
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 30, "Viewer redraw rate (frames per second)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")

	// Add subcommands
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(policiesCmd)
	rootCmd.AddCommand(serveCmd)
}
