package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/minseo/saju-reporter/internal/catalog"
)

// ChaptersByService returns the chapters of a service in catalog order,
// validated at the boundary before they enter the pipeline.
func (db *DB) ChaptersByService(ctx context.Context, serviceID string) ([]catalog.Chapter, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, service_id, order_index, title, COALESCE(guideline, '')
		 FROM chapters WHERE service_id = $1 ORDER BY order_index ASC`,
		serviceID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chapters: %w", err)
	}
	defer rows.Close()

	var chapters []catalog.Chapter
	for rows.Next() {
		var c catalog.Chapter
		if err := rows.Scan(&c.ID, &c.ServiceID, &c.OrderIndex, &c.Title, &c.Guideline); err != nil {
			return nil, fmt.Errorf("failed to scan chapter: %w", err)
		}
		chapters = append(chapters, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read chapters: %w", err)
	}

	if err := catalog.ValidateChapters(chapters); err != nil {
		return nil, err
	}
	return chapters, nil
}

// TemplateByService returns the document template for a service, or nil if
// the service has none configured.
func (db *DB) TemplateByService(ctx context.Context, serviceID string) (*catalog.Template, error) {
	var t catalog.Template
	err := db.pool.QueryRow(ctx,
		`SELECT service_id, COALESCE(cover_image_path, ''), COALESCE(trailing_text, ''),
		        COALESCE(target_pages, 0), content_version
		 FROM templates WHERE service_id = $1`,
		serviceID,
	).Scan(&t.ServiceID, &t.CoverImagePath, &t.TrailingText, &t.TargetPages, &t.ContentVersion)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}
