package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/flappy-evo/internal/storage"
)

var flagHistoryLimit int

var historyCmd = &cobra.Command{
	Use:   "history [run]",
	Short: "Show recorded training runs",
	Long: `Without arguments, list the most recent training runs.
With a run (full id, unique prefix or "latest"), show its generations and
champion.

Examples:
  flappyevo history
  flappyevo history --limit 5
  flappyevo history latest
  flappyevo history 3f2a9c1b`,
	Args: cobra.MaximumNArgs(1),
	Run:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&flagHistoryLimit, "limit", 20, "Runs to list")
}

func runHistory(_ *cobra.Command, args []string) {
	store := openStore()
	defer store.Close()

	if len(args) == 0 {
		listRuns(store)
		return
	}
	showRun(store, args[0])
}

func listRuns(store *storage.Store) {
	runs, err := store.Runs(flagHistoryLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if len(runs) == 0 {
		fmt.Println("No training runs recorded yet.")
		fmt.Println()
		fmt.Println("Start one with 'flappyevo train'.")
		return
	}

	fmt.Printf("  %-8s  %-16s  %-8s  %5s  %5s  %10s  %6s\n", "Run", "Started", "Status", "Pop", "Gens", "Best", "Score")
	fmt.Printf("  %-8s  %-16s  %-8s  %5s  %5s  %10s  %6s\n", "---", "-------", "------", "---", "----", "----", "-----")
	for _, r := range runs {
		fmt.Printf("  %-8s  %-16s  %-8s  %5d  %5d  %10.2f  %6d\n",
			shortID(r.ID),
			r.CreatedAt.Format("2006-01-02 15:04"),
			r.Status,
			r.Population,
			r.Completed,
			r.BestFitness,
			r.BestScore,
		)
	}
}

func showRun(store *storage.Store, ref string) {
	run, err := store.ResolveRun(ref)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	gens, err := store.Generations(run.ID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Run %s\n", run.ID)
	fmt.Printf("  Started:     %s\n", run.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("  Status:      %s\n", run.Status)
	fmt.Printf("  Seed:        %d\n", run.Seed)
	fmt.Printf("  Population:  %d\n", run.Population)
	fmt.Println()

	if len(gens) == 0 {
		fmt.Println("No generations recorded.")
		return
	}

	fmt.Printf("  %4s  %9s  %9s  %9s  %9s  %6s  %7s  %8s\n", "Gen", "Best", "Mean", "StdDev", "Median", "Score", "Ticks", "Took")
	fmt.Printf("  %4s  %9s  %9s  %9s  %9s  %6s  %7s  %8s\n", "---", "----", "----", "------", "------", "-----", "-----", "----")
	for _, g := range gens {
		fmt.Printf("  %4d  %9.2f  %9.2f  %9.2f  %9.2f  %6d  %7d  %6dms\n",
			g.Generation, g.Best, g.Mean, g.StdDev, g.Median, g.Score, g.Ticks, g.DurationMS)
	}

	champ, err := store.Champion(run.ID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if champ != nil {
		fmt.Println()
		fmt.Printf("Champion %s from generation %d, fitness %.2f (%d weights, %d hidden)\n",
			champ.GenomeID, champ.Generation, champ.Fitness, len(champ.Weights), champ.Hidden)
	}
}
