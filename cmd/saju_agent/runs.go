package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/minseo/saju-reporter/internal/db"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect recorded batch runs",
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print a batch run and its artifacts",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		runID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid run ID %q: %w", args[0], err)
		}
		return withDatabase(func(ctx context.Context, database *db.DB) error {
			run, err := database.GetBatchRun(ctx, runID)
			if err != nil {
				return err
			}
			if run == nil {
				return fmt.Errorf("batch run not found: %s", runID)
			}

			fmt.Printf("Run:       %s\n", run.ID)
			fmt.Printf("Service:   %s\n", run.ServiceID)
			fmt.Printf("Status:    %s\n", run.Status)
			fmt.Printf("Counts:    %d total, %d persisted, %d skipped, %d failed\n",
				run.Total, run.Persisted, run.Skipped, run.Failed)
			fmt.Printf("Created:   %s\n", run.CreatedAt.Format("2006-01-02 15:04:05"))
			if run.CompletedAt != nil {
				fmt.Printf("Completed: %s\n", run.CompletedAt.Format("2006-01-02 15:04:05"))
			}

			artifacts, err := database.ArtifactsByRun(ctx, run.ID)
			if err != nil {
				return err
			}
			if len(artifacts) == 0 {
				fmt.Println("No artifacts recorded")
				return nil
			}
			fmt.Printf("Artifacts (%d):\n", len(artifacts))
			for _, a := range artifacts {
				fmt.Printf("  %s  %s  %d/%d pages  %s\n",
					a.Digest[:min(12, len(a.Digest))], a.CustomerName, a.ActualPages, a.TargetPages, a.Path)
			}
			return nil
		})
	},
}

func init() {
	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}
