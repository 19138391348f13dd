package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/flappy-evo/internal/registry"
)

var policiesCmd = &cobra.Command{
	Use:   "policies",
	Short: "List built-in policies",
	Long:  `Shows every scripted or untrained policy that 'watch' and 'serve' can fly.`,
	Args:  cobra.NoArgs,
	Run:   runPolicies,
}

func runPolicies(_ *cobra.Command, _ []string) {
	policies := registry.List()

	if len(policies) == 0 {
		fmt.Println("No policies available.")
		return
	}

	fmt.Println("Available policies:")
	fmt.Println()

	// Calculate column widths
	maxIDLen := 2 // "ID" header
	for _, p := range policies {
		maxIDLen = max(maxIDLen, len(p.ID))
	}

	fmt.Printf("  %-*s  %s\n", maxIDLen, "ID", "Behaviour")
	fmt.Printf("  %-*s  %s\n", maxIDLen, "--", "---------")
	for _, p := range policies {
		fmt.Printf("  %-*s  %s\n", maxIDLen, p.ID, p.Title)
	}

	fmt.Println()
	fmt.Println("Run 'flappyevo watch --policy <id>' to watch one.")
}
