// Package main provides the entry point for the Saju report generation CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "saju_agent",
	Short: "Saju report generation engine",
	Long:  "Saju report generator produces fixed-length PDF fortune reports for customer batches: deterministic pillar scoring, AI-written chapters, and idempotent per-order artifacts.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
