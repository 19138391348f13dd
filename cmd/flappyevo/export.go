package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/flappy-evo/internal/report"
)

var exportCmd = &cobra.Command{
	Use:   "export <run> <file.csv>",
	Short: "Export a run's generation statistics as CSV",
	Long: `Write every recorded generation of a run to a CSV file with a header row.
The run can be a full id, a unique prefix or "latest".

Examples:
  flappyevo export latest gens.csv
  flappyevo export 3f2a9c1b ./out/run.csv`,
	Args: cobra.ExactArgs(2),
	Run:  runExport,
}

func runExport(_ *cobra.Command, args []string) {
	store := openStore()
	defer store.Close()

	run, err := store.ResolveRun(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	gens, err := store.Generations(run.ID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := report.WriteGenerationsCSV(args[1], report.FromRecords(gens)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %d generations of run %s to %s\n", len(gens), shortID(run.ID), args[1])
}
