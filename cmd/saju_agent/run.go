package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/minseo/saju-reporter/internal/batch"
	"github.com/minseo/saju-reporter/internal/config"
	"github.com/minseo/saju-reporter/internal/observability"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Generate reports for a batch of customers",
	Long: `Reads a customer batch file, scores each birth date, generates chapter
prose, assembles fixed-length PDF reports, and records fingerprints so
already-generated orders are skipped on rerun.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	RunE: runBatchCmd,
}

var (
	runConfigPath  string
	runInput       string
	runServiceID   string
	runOutputDir   string
	runFontPath    string
	runWorkers     int
	runAPIKey      string
	runDatabaseURL string
	runVerbose     bool
)

func init() {
	// Config file flag (processed first)
	runCommand.Flags().StringVar(&runConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	runCommand.Flags().StringVarP(&runInput, "input", "i", "", "Path to customer batch file (.xlsx, .csv, .txt)")
	runCommand.Flags().StringVarP(&runServiceID, "service", "s", "", "Catalog service ID to generate reports for")
	runCommand.Flags().StringVarP(&runOutputDir, "output", "o", "", "Directory receiving generated PDFs")
	runCommand.Flags().StringVar(&runFontPath, "font", "", "Path to a TTF font with Hangul coverage")
	runCommand.Flags().IntVarP(&runWorkers, "workers", "w", 0, "Concurrent customers processed")
	runCommand.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print detailed progress information")

	// API key can be passed as a flag, or read from env var GEMINI_API_KEY
	runCommand.Flags().StringVar(&runAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")

	// Database URL for catalog, settings, fingerprints, and artifacts
	runCommand.Flags().StringVar(&runDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(runCommand)
}

// mergedRunConfig folds config file, flags, and environment into one Config.
func mergedRunConfig(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	if runConfigPath != "" {
		loadedCfg, err := config.LoadConfig(runConfigPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		if err := loadedCfg.Validate(); err != nil {
			return cfg, err
		}
		cfg = *loadedCfg
	}

	// CLI flags take priority; only apply those explicitly set.
	if cmd.Flags().Changed("input") {
		cfg.Input = runInput
	}
	if cmd.Flags().Changed("service") {
		cfg.ServiceID = runServiceID
	}
	if cmd.Flags().Changed("output") {
		cfg.OutputDir = runOutputDir
	}
	if cmd.Flags().Changed("font") {
		cfg.FontPath = runFontPath
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = runWorkers
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = runAPIKey
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = runDatabaseURL
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = runVerbose
	}

	cfg = cfg.MergeWithDefaults(config.Config{})

	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	if cfg.Input == "" {
		return cfg, fmt.Errorf("--input is required (via flag or config)")
	}
	if cfg.ServiceID == "" {
		return cfg, fmt.Errorf("--service is required (via flag or config)")
	}
	return cfg, nil
}

func runBatchCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := mergedRunConfig(cmd)
	if err != nil {
		return err
	}

	// A second interrupt kills the process; the first cancels cleanly.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	jobs, rowErrors, err := batch.ParseJobs(cfg.Input)
	if err != nil {
		return fmt.Errorf("failed to read batch input: %w", err)
	}
	if len(jobs) == 0 {
		return fmt.Errorf("batch input %s contains no usable rows", cfg.Input)
	}

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintRowErrors(rowErrors)

	orch, cleanup, err := buildOrchestrator(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if cfg.Verbose {
		orch.Observers = append(orch.Observers, batch.ObserverFunc(func(p batch.Progress) {
			if p.Stage.Terminal() {
				printer.PrintProgress(p)
			}
		}))
	}

	fmt.Printf("Generating reports: service=%s customers=%d workers=%d\n",
		cfg.ServiceID, len(jobs), cfg.Workers)

	summary, err := orch.Run(ctx, cfg.ServiceID, jobs)
	if err != nil {
		return fmt.Errorf("batch run failed: %w", err)
	}

	printer.PrintSummary(summary)

	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d customers failed", summary.Failed, summary.Total)
	}
	return nil
}
