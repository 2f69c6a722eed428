// Package content orchestrates AI text generation for report chapters. One
// request is issued per chapter, dispatched across a bounded worker pool,
// and results are reassembled in catalog order regardless of completion
// order. A failing chapter degrades to placeholder text with a recorded
// warning; it never fails the customer's report.
package content

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/minseo/saju-reporter/internal/catalog"
	"github.com/minseo/saju-reporter/internal/llm"
	"github.com/minseo/saju-reporter/internal/prompts"
	"github.com/minseo/saju-reporter/internal/saju"
	"github.com/minseo/saju-reporter/internal/schemas"
)

// Facts are the customer-specific values interpolated into every chapter
// prompt.
type Facts struct {
	Name     string
	Birth    saju.BirthRecord
	Encoding string
	Scores   saju.ElementScore
}

// Chapter is one generated chapter, in catalog order.
type Chapter struct {
	Title string
	Body  string
}

// Warning records a chapter that fell back to placeholder text.
type Warning struct {
	ChapterID string
	Title     string
	Reason    string
}

// chapterResponse is the JSON document the model is asked to return.
type chapterResponse struct {
	Title string `json:"title,omitempty"`
	Body  string `json:"body"`
}

// defaultTargetChars approximates one printed page of body text.
const defaultTargetChars = 600

// Generator fans chapter generation out over an AI client.
type Generator struct {
	client  llm.Client
	workers int

	// TargetChars is the requested body length per chapter; zero uses the
	// default of one page worth of text.
	TargetChars int

	promptTmpl  string
	placeholder string
}

// NewGenerator creates a Generator. workers bounds concurrent AI requests
// per customer; values below 1 mean sequential generation.
func NewGenerator(client llm.Client, workers int) *Generator {
	if workers < 1 {
		workers = 1
	}
	return &Generator{
		client:      client,
		workers:     workers,
		promptTmpl:  prompts.MustGet("generation.json", "chapter"),
		placeholder: prompts.MustGet("generation.json", "chapter_placeholder"),
	}
}

// GenerateChapters produces one body per catalog chapter. The returned slice
// is aligned with chapters; warnings list every chapter that degraded to a
// placeholder. The call itself never fails.
func (g *Generator) GenerateChapters(ctx context.Context, facts Facts, chapters []catalog.Chapter, guide string) ([]Chapter, []Warning) {
	results := make([]Chapter, len(chapters))
	warnings := make([]*Warning, len(chapters))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)

	for i := range chapters {
		eg.Go(func() error {
			body, warn := g.generateOne(ctx, facts, chapters[i], guide)
			results[i] = Chapter{Title: chapters[i].Title, Body: body}
			warnings[i] = warn
			return nil
		})
	}
	// Workers only record results; no worker returns an error.
	_ = eg.Wait()

	collected := make([]Warning, 0)
	for _, warn := range warnings {
		if warn != nil {
			collected = append(collected, *warn)
		}
	}
	return results, collected
}

// generateOne runs the AI call for a single chapter and applies the
// degrade-with-placeholder failure policy.
func (g *Generator) generateOne(ctx context.Context, facts Facts, chapter catalog.Chapter, guide string) (string, *Warning) {
	prompt := g.buildPrompt(facts, chapter, guide)

	raw, err := g.client.GenerateJSON(ctx, prompt, llm.TierProse)
	if err != nil {
		return g.placeholder, &Warning{
			ChapterID: chapter.ID,
			Title:     chapter.Title,
			Reason:    fmt.Sprintf("generation failed: %v", err),
		}
	}

	if body, ok := decodeBody(raw); ok {
		return body, nil
	}

	// The model answered but not with conformant JSON. The raw text is
	// still usable prose, so keep it rather than discarding the chapter.
	if text := strings.TrimSpace(raw); text != "" {
		return text, nil
	}
	return g.placeholder, &Warning{
		ChapterID: chapter.ID,
		Title:     chapter.Title,
		Reason:    "empty response",
	}
}

// decodeBody extracts the body field from a schema-conformant chapter
// response.
func decodeBody(raw string) (string, bool) {
	if err := schemas.ValidateChapterContent(raw); err != nil {
		return "", false
	}
	var resp chapterResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return "", false
	}
	if strings.TrimSpace(resp.Body) == "" {
		return "", false
	}
	return resp.Body, true
}

// buildPrompt interpolates chapter guideline, steering guide, and customer
// facts into the chapter prompt template.
func (g *Generator) buildPrompt(facts Facts, chapter catalog.Chapter, guide string) string {
	targetChars := g.TargetChars
	if targetChars <= 0 {
		targetChars = defaultTargetChars
	}
	return prompts.Format(g.promptTmpl, map[string]string{
		"Guide":     guide,
		"Title":     chapter.Title,
		"Guideline": chapter.Guideline,
		"Name":      facts.Name,
		"Birth":     facts.Birth.String(),
		"Encoding":  facts.Encoding,
		"Scores":    formatScores(facts.Scores),
		"Length":    strconv.Itoa(targetChars),
	})
}

// formatScores renders the element scores in stable element order.
func formatScores(scores saju.ElementScore) string {
	parts := make([]string, 0, len(saju.Elements))
	for _, el := range saju.Elements {
		parts = append(parts, fmt.Sprintf("%s=%d", el, scores[el]))
	}
	return strings.Join(parts, ", ")
}
