package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// BatchRun is one orchestrator pass over an input file.
type BatchRun struct {
	ID          uuid.UUID  `json:"id"`
	ServiceID   string     `json:"service_id"`
	Total       int        `json:"total"`
	Persisted   int        `json:"persisted"`
	Skipped     int        `json:"skipped"`
	Failed      int        `json:"failed"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// ArtifactRecord is the metadata row for one generated PDF. The PDF bytes
// live on disk at Path; the record is written once and never mutated.
type ArtifactRecord struct {
	ID           uuid.UUID `json:"id"`
	RunID        uuid.UUID `json:"run_id"`
	CustomerName string    `json:"customer_name"`
	Digest       string    `json:"digest"`
	Path         string    `json:"path"`
	TargetPages  int       `json:"target_pages"`
	ActualPages  int       `json:"actual_pages"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// CreateBatchRun inserts a new running batch and returns its ID.
func (db *DB) CreateBatchRun(ctx context.Context, serviceID string, total int) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO batch_runs (service_id, total, status)
		 VALUES ($1, $2, 'running')
		 RETURNING id`,
		serviceID, total,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create batch run: %w", err)
	}
	return id, nil
}

// CompleteBatchRun records the final counts and status of a batch run.
func (db *DB) CompleteBatchRun(ctx context.Context, runID uuid.UUID, persisted, skipped, failed int, status string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE batch_runs
		 SET persisted = $1, skipped = $2, failed = $3, status = $4, completed_at = NOW()
		 WHERE id = $5`,
		persisted, skipped, failed, status, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete batch run: %w", err)
	}
	return nil
}

// SaveArtifact inserts the metadata record for a generated PDF.
func (db *DB) SaveArtifact(ctx context.Context, rec *ArtifactRecord) error {
	err := db.pool.QueryRow(ctx,
		`INSERT INTO artifacts (run_id, customer_name, digest, path, target_pages, actual_pages)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, generated_at`,
		rec.RunID, rec.CustomerName, rec.Digest, rec.Path, rec.TargetPages, rec.ActualPages,
	).Scan(&rec.ID, &rec.GeneratedAt)
	if err != nil {
		return fmt.Errorf("failed to save artifact: %w", err)
	}
	return nil
}

// ArtifactsByRun lists the artifacts generated by one batch run.
func (db *DB) ArtifactsByRun(ctx context.Context, runID uuid.UUID) ([]ArtifactRecord, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, run_id, customer_name, digest, path, target_pages, actual_pages, generated_at
		 FROM artifacts WHERE run_id = $1 ORDER BY generated_at ASC`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	defer rows.Close()

	var records []ArtifactRecord
	for rows.Next() {
		var rec ArtifactRecord
		if err := rows.Scan(&rec.ID, &rec.RunID, &rec.CustomerName, &rec.Digest,
			&rec.Path, &rec.TargetPages, &rec.ActualPages, &rec.GeneratedAt); err != nil {
			return nil, fmt.Errorf("failed to scan artifact: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// GetBatchRun retrieves a batch run by ID, or nil when absent.
func (db *DB) GetBatchRun(ctx context.Context, runID uuid.UUID) (*BatchRun, error) {
	var run BatchRun
	err := db.pool.QueryRow(ctx,
		`SELECT id, service_id, total, persisted, skipped, failed, status, created_at, completed_at
		 FROM batch_runs WHERE id = $1`,
		runID,
	).Scan(&run.ID, &run.ServiceID, &run.Total, &run.Persisted, &run.Skipped,
		&run.Failed, &run.Status, &run.CreatedAt, &run.CompletedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get batch run: %w", err)
	}
	return &run, nil
}
