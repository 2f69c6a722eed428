package main

import (
	"context"
	"fmt"

	"github.com/minseo/saju-reporter/internal/batch"
	"github.com/minseo/saju-reporter/internal/charts"
	"github.com/minseo/saju-reporter/internal/config"
	"github.com/minseo/saju-reporter/internal/content"
	"github.com/minseo/saju-reporter/internal/db"
	"github.com/minseo/saju-reporter/internal/document"
	"github.com/minseo/saju-reporter/internal/fonts"
	"github.com/minseo/saju-reporter/internal/llm"
	"github.com/minseo/saju-reporter/internal/mail"
)

// chapterWorkers bounds per-customer chapter generation concurrency.
const chapterWorkers = 4

// buildOrchestrator wires the full generation pipeline from a merged config.
// The returned cleanup closes the database pool and the model client.
func buildOrchestrator(ctx context.Context, cfg config.Config) (*batch.Orchestrator, func(), error) {
	if cfg.DatabaseURL == "" {
		return nil, nil, fmt.Errorf("database URL is required (--db-url flag, config, or DATABASE_URL env var)")
	}
	if cfg.APIKey == "" {
		return nil, nil, fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required")
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	client, err := llm.NewClient(ctx, llm.DefaultConfig(), cfg.APIKey)
	if err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("failed to create model client: %w", err)
	}
	cleanup := func() {
		_ = client.Close()
		database.Close()
	}

	// Settings hold admin-tunable values; config supplies the fallbacks.
	fontPath, err := database.GetSetting(ctx, db.SettingFontPath, cfg.FontPath)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to read font setting: %w", err)
	}
	steeringGuide, err := database.GetSetting(ctx, db.SettingSteeringGuide, "")
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to read steering guide setting: %w", err)
	}
	charsPerPage, err := database.GetIntSetting(ctx, db.SettingCharsPerPage, 600)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to read page length setting: %w", err)
	}

	font := fonts.Load(fontPath)
	generator := content.NewGenerator(client, chapterWorkers)
	generator.TargetChars = charsPerPage

	orch := &batch.Orchestrator{
		Catalog:       database,
		Fingerprints:  database,
		Generator:     generator,
		Renderer:      charts.NewRenderer(font),
		Assembler:     document.NewAssembler(font),
		Recorder:      database,
		OutputDir:     cfg.OutputDir,
		Workers:       cfg.Workers,
		SteeringGuide: steeringGuide,
	}

	if cfg.SendGridAPIKey != "" {
		mailer, err := mail.NewClient(mail.Config{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.MailFrom,
			FromName:  cfg.MailFromName,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("failed to create mail client: %w", err)
		}
		orch.Mailer = mailer
	}

	return orch, cleanup, nil
}
