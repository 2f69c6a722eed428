// Package catalog defines the typed entities of the administrator-managed
// content catalog: chapters, guidelines, and templates. Records are
// validated here at the boundary before entering the generation pipeline,
// which treats them as read-only.
package catalog

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Chapter is one ordered section of a service's report. Guideline carries
// the admin-written steering text handed to the AI for this chapter.
type Chapter struct {
	ID         string `json:"id" validate:"required"`
	ServiceID  string `json:"service_id" validate:"required"`
	OrderIndex int    `json:"order_index" validate:"gte=0"`
	Title      string `json:"title" validate:"required"`
	Guideline  string `json:"guideline"`
}

// Template is the per-service document configuration.
type Template struct {
	ServiceID      string `json:"service_id" validate:"required"`
	CoverImagePath string `json:"cover_image_path"`
	TrailingText   string `json:"trailing_text"`
	TargetPages    int    `json:"target_pages" validate:"gte=0"`
	// ContentVersion changes whenever chapters, guidelines, or the template
	// are edited; it is part of the order fingerprint so edits invalidate
	// previously generated reports.
	ContentVersion string `json:"content_version" validate:"required"`
}

// Store provides read-only catalog access for the generation pipeline.
// Implementations return chapters in catalog order.
type Store interface {
	ChaptersByService(ctx context.Context, serviceID string) ([]Chapter, error)
	TemplateByService(ctx context.Context, serviceID string) (*Template, error)
}

// Validate checks a chapter record.
func (c *Chapter) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid chapter %q: %w", c.ID, err)
	}
	return nil
}

// Validate checks a template record.
func (t *Template) Validate() error {
	if err := validate.Struct(t); err != nil {
		return fmt.Errorf("invalid template for service %q: %w", t.ServiceID, err)
	}
	return nil
}

// ValidateChapters checks every chapter and that the slice is in strictly
// ascending catalog order. The pipeline relies on this ordering to place
// generated content.
func ValidateChapters(chapters []Chapter) error {
	for i := range chapters {
		if err := chapters[i].Validate(); err != nil {
			return err
		}
		if i > 0 && chapters[i].OrderIndex <= chapters[i-1].OrderIndex {
			return fmt.Errorf("chapters out of catalog order: %q follows %q",
				chapters[i].ID, chapters[i-1].ID)
		}
	}
	return nil
}
