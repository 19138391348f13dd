package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/flappy-evo/internal/evolve"
	"github.com/vovakirdan/flappy-evo/internal/games/flappy"
	"github.com/vovakirdan/flappy-evo/internal/platform/tui"
	"github.com/vovakirdan/flappy-evo/internal/report"
	"github.com/vovakirdan/flappy-evo/internal/storage"
)

var (
	flagGenerations int
	flagPopulation  int
	flagCSV         string
	flagView        bool
	flagNoDB        bool
	flagLogFile     string
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Evolve a population of neural controllers",
	Long: `Run the generational trainer. Each generation flies every genome through
one shared episode; fitness is the time survived plus a bonus for every pipe
passed. The best networks are bred into the next generation.

Every generation is logged, stored in the run database and optionally
appended to a CSV file. The best network found so far is saved as the run's
champion, which 'flappyevo watch --champion' can replay.

Training stops after --generations generations, when the best fitness
reaches evolve.fitness_threshold, or on Ctrl+C.

Examples:
  flappyevo train
  flappyevo train --generations 100 --population 80 --seed 42
  flappyevo train --view                  # watch each generation fly
  flappyevo train --csv ./gens.csv --no-db`,
	Args: cobra.NoArgs,
	Run:  runTrain,
}

func init() {
	trainCmd.Flags().IntVar(&flagGenerations, "generations", 0, "Generations to run (overrides evolve.generations; 0 = keep config)")
	trainCmd.Flags().IntVar(&flagPopulation, "population", 0, "Population size (overrides evolve.population; 0 = keep config)")
	trainCmd.Flags().StringVar(&flagCSV, "csv", "", "Append per-generation statistics to this CSV file")
	trainCmd.Flags().BoolVar(&flagView, "view", false, "Show every generation's episode in the terminal")
	trainCmd.Flags().BoolVar(&flagNoDB, "no-db", false, "Do not record the run in the database")
	trainCmd.Flags().StringVar(&flagLogFile, "log-file", "", "Write logs to this file (with --view logs are discarded otherwise)")
}

func runTrain(_ *cobra.Command, _ []string) {
	cfg := loadConfig()
	if flagGenerations > 0 {
		cfg.Evolve.Generations = flagGenerations
	}
	if flagPopulation > 0 {
		cfg.Evolve.Population = flagPopulation
		cfg.Evolve.Elite = min(cfg.Evolve.Elite, flagPopulation)
	}

	// Logs would garble the viewer's alternate screen.
	var logOut io.Writer = os.Stderr
	switch {
	case flagLogFile != "":
		f, err := os.OpenFile(flagLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	case flagView:
		logOut = io.Discard
	}
	logger := newLoggerTo(logOut, "train")

	seed := resolveSeed()
	trainer, err := evolve.New(cfg, seed, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	sprites, err := loadSprites(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading sprites: %v\n", err)
		os.Exit(1)
	}
	trainer.SetSprites(sprites)

	reporters := []evolve.Reporter{evolve.LogReporter{Logger: logger}}

	var store *storage.Store
	var run storage.Run
	if !flagNoDB {
		store = openStore()
		defer store.Close()

		snapshot, yamlErr := cfg.YAML()
		if yamlErr != nil {
			logger.Warn("cannot snapshot config", "error", yamlErr)
		}
		run, err = store.CreateRun(storage.Run{
			Seed:        seed,
			Population:  cfg.Evolve.Population,
			Generations: cfg.Evolve.Generations,
			Config:      string(snapshot),
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		reporters = append(reporters, evolve.StoreReporter{Store: store, RunID: run.ID})
	}

	if flagCSV != "" {
		w, csvErr := report.NewWriter(flagCSV, run.ID)
		if csvErr != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", csvErr)
			os.Exit(1)
		}
		defer w.Close()
		reporters = append(reporters, w)
	}

	logger.Info("training started",
		"run", shortID(run.ID),
		"seed", seed,
		"population", cfg.Evolve.Population,
		"generations", cfg.Evolve.Generations,
		"hidden", cfg.Evolve.Hidden,
	)

	ctx, stop := signalContext()
	defer stop()

	var summary evolve.Summary
	var runErr error
	if flagView {
		width, height := terminalSize()
		src := func(ctx context.Context, sink flappy.SnapshotSink) error {
			trainer.SetViewer(sink, tui.TickDelay(cfg))
			summary, runErr = trainer.Run(ctx, reporters...)
			return runErr
		}
		title := "training"
		if run.ID != "" {
			title = "training run " + shortID(run.ID)
		}
		if err := tui.Run(ctx, src, tui.Options{Title: title, FPS: flagFPS, Width: width, Height: height}); err != nil && !errors.Is(err, context.Canceled) {
			runErr = err
		}
	} else {
		summary, runErr = trainer.Run(ctx, reporters...)
	}

	status := storage.StatusDone
	switch {
	case errors.Is(runErr, context.Canceled) || summary.Reason == evolve.StopCanceled:
		status = storage.StatusCanceled
		runErr = nil
	case runErr != nil:
		status = storage.StatusFailed
	}
	if store != nil {
		if err := store.FinishRun(run.ID, status); err != nil {
			logger.Error("cannot finish run", "error", err)
		}
	}

	printSummary(run.ID, summary)
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		os.Exit(1)
	}
}

func printSummary(runID string, s evolve.Summary) {
	fmt.Println()
	if runID != "" {
		fmt.Printf("Run:          %s\n", runID)
	}
	fmt.Printf("Generations:  %d (stopped: %s)\n", s.Generations, s.Reason)
	if s.Champion == nil {
		fmt.Println("Champion:     none")
		return
	}
	fmt.Printf("Champion:     %s from generation %d\n", s.Champion.ID, s.ChampionGen)
	fmt.Printf("Fitness:      %.2f\n", s.Champion.Fitness())
	if runID != "" {
		fmt.Println()
		fmt.Printf("Watch it with 'flappyevo watch --champion %s'\n", shortID(runID))
	}
}
