package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/minseo/saju-reporter/internal/batch"
	"github.com/minseo/saju-reporter/internal/config"
	"github.com/minseo/saju-reporter/internal/server"
)

var (
	serveConfigPath string
	serveAddr       string
	serveServiceID  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that accepts customer batch uploads, streams per-customer progress as Server-Sent Events, and serves the generated reports.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to config.json file")
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Address to listen on (default :8080)")
	serveCmd.Flags().StringVarP(&serveServiceID, "service", "s", "", "Default catalog service ID for uploads")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	var cfg config.Config
	if serveConfigPath != "" {
		loadedCfg, err := config.LoadConfig(serveConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := loadedCfg.Validate(); err != nil {
			return err
		}
		cfg = *loadedCfg
	}
	if cmd.Flags().Changed("addr") {
		cfg.ListenAddr = serveAddr
	}
	if cmd.Flags().Changed("service") {
		cfg.ServiceID = serveServiceID
	}
	cfg = cfg.MergeWithDefaults(config.Config{})

	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	orch, cleanup, err := buildOrchestrator(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	runner := server.RunnerFunc(func(ctx context.Context, serviceID string, jobs []batch.CustomerJob, obs batch.Observer) (*batch.Summary, error) {
		return orch.Run(ctx, serviceID, jobs, obs)
	})

	srv, err := server.New(server.Config{
		Addr:      cfg.ListenAddr,
		ServiceID: cfg.ServiceID,
	}, runner)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
