package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// IsGenerated reports whether an artifact already exists for the digest.
func (db *DB) IsGenerated(ctx context.Context, digest string) (bool, error) {
	var one int
	err := db.pool.QueryRow(ctx,
		`SELECT 1 FROM order_fingerprints WHERE digest = $1`, digest,
	).Scan(&one)
	if err != nil {
		if err == pgx.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("failed to check fingerprint: %w", err)
	}
	return true, nil
}

// MarkGenerated records digest -> artifactRef. The primary key on digest
// makes the check-and-mark atomic: when two workers race, the insert
// succeeds for exactly one of them and the loser gets claimed == false.
func (db *DB) MarkGenerated(ctx context.Context, digest, artifactRef string) (bool, error) {
	tag, err := db.pool.Exec(ctx,
		`INSERT INTO order_fingerprints (digest, artifact_ref)
		 VALUES ($1, $2)
		 ON CONFLICT (digest) DO NOTHING`,
		digest, artifactRef,
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark fingerprint: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
