package db

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
)

// Setting keys read by the generation pipeline.
const (
	SettingCharsPerPage  = "chars_per_page"
	SettingFontPath      = "font_path"
	SettingSteeringGuide = "ai_steering_guide"
)

// GetSetting returns the value for key, or fallback when the key is absent.
func (db *DB) GetSetting(ctx context.Context, key, fallback string) (string, error) {
	var value string
	err := db.pool.QueryRow(ctx,
		`SELECT value FROM settings WHERE key = $1`, key,
	).Scan(&value)
	if err != nil {
		if err == pgx.ErrNoRows {
			return fallback, nil
		}
		return "", fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return value, nil
}

// GetIntSetting returns the integer value for key; absent or unparsable
// values yield fallback.
func (db *DB) GetIntSetting(ctx context.Context, key string, fallback int) (int, error) {
	raw, err := db.GetSetting(ctx, key, "")
	if err != nil {
		return 0, err
	}
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback, nil
	}
	return value, nil
}

// PutSetting upserts a setting value. The admin surface owns writes; the
// pipeline only reads.
func (db *DB) PutSetting(ctx context.Context, key, value string) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO settings (key, value) VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET value = $2, updated_at = NOW()`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to put setting %s: %w", key, err)
	}
	return nil
}
