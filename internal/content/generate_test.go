package content

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minseo/saju-reporter/internal/catalog"
	"github.com/minseo/saju-reporter/internal/llm"
	"github.com/minseo/saju-reporter/internal/saju"
)

// stubClient implements llm.Client with scripted per-chapter behavior.
type stubClient struct {
	mu sync.Mutex
	// respond maps a chapter title substring to its response or error.
	failFor   map[string]error
	delays    map[string]time.Duration
	rawFor    map[string]string
	inFlight  atomic.Int32
	maxSeen   atomic.Int32
	callCount atomic.Int32
}

func (s *stubClient) GenerateText(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return s.GenerateJSON(ctx, prompt, tier)
}

func (s *stubClient) GenerateJSON(ctx context.Context, prompt string, _ llm.ModelTier) (string, error) {
	s.callCount.Add(1)
	cur := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		prev := s.maxSeen.Load()
		if cur <= prev || s.maxSeen.CompareAndSwap(prev, cur) {
			break
		}
	}

	s.mu.Lock()
	var delay time.Duration
	var failErr error
	raw := ""
	for needle, d := range s.delays {
		if strings.Contains(prompt, needle) {
			delay = d
		}
	}
	for needle, err := range s.failFor {
		if strings.Contains(prompt, needle) {
			failErr = err
		}
	}
	for needle, r := range s.rawFor {
		if strings.Contains(prompt, needle) {
			raw = r
		}
	}
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if failErr != nil {
		return "", failErr
	}
	if raw != "" {
		return raw, nil
	}
	// Echo the chapter title back so tests can assert ordering.
	for _, line := range strings.Split(prompt, "\n") {
		if title, ok := strings.CutPrefix(line, "Chapter title: "); ok {
			return fmt.Sprintf(`{"body": "body for %s"}`, title), nil
		}
	}
	return `{"body": "generic"}`, nil
}

func (s *stubClient) Close() error { return nil }

func testFacts() Facts {
	encoding, scores := saju.Score(saju.BirthRecord{Year: 1990, Month: 3, Day: 15})
	return Facts{
		Name:     "김민지",
		Birth:    saju.BirthRecord{Year: 1990, Month: 3, Day: 15},
		Encoding: encoding,
		Scores:   scores,
	}
}

func testChapters(titles ...string) []catalog.Chapter {
	chapters := make([]catalog.Chapter, 0, len(titles))
	for i, title := range titles {
		chapters = append(chapters, catalog.Chapter{
			ID:         fmt.Sprintf("ch-%d", i+1),
			ServiceID:  "svc-1",
			OrderIndex: i,
			Title:      title,
			Guideline:  "guideline for " + title,
		})
	}
	return chapters
}

func TestGenerateChapters_PreservesCatalogOrder(t *testing.T) {
	// First chapter finishes last; order must still match the catalog.
	stub := &stubClient{delays: map[string]time.Duration{
		"총운": 60 * time.Millisecond,
		"재물운": 20 * time.Millisecond,
	}}
	gen := NewGenerator(stub, 4)

	chapters, warnings := gen.GenerateChapters(context.Background(), testFacts(),
		testChapters("총운", "재물운", "건강운"), "be warm")

	require.Len(t, chapters, 3)
	assert.Empty(t, warnings)
	assert.Equal(t, "총운", chapters[0].Title)
	assert.Equal(t, "body for 총운", chapters[0].Body)
	assert.Equal(t, "재물운", chapters[1].Title)
	assert.Equal(t, "건강운", chapters[2].Title)
}

func TestGenerateChapters_BoundedConcurrency(t *testing.T) {
	stub := &stubClient{delays: map[string]time.Duration{
		"Chapter": 30 * time.Millisecond,
	}}
	gen := NewGenerator(stub, 2)

	titles := make([]string, 8)
	for i := range titles {
		titles[i] = fmt.Sprintf("Chapter %d", i)
	}
	gen.GenerateChapters(context.Background(), testFacts(), testChapters(titles...), "")

	assert.LessOrEqual(t, stub.maxSeen.Load(), int32(2))
	assert.Equal(t, int32(8), stub.callCount.Load())
}

func TestGenerateChapters_FailedChapterGetsPlaceholder(t *testing.T) {
	stub := &stubClient{failFor: map[string]error{
		"재물운": errors.New("upstream timeout"),
	}}
	gen := NewGenerator(stub, 3)

	chapters, warnings := gen.GenerateChapters(context.Background(), testFacts(),
		testChapters("총운", "재물운", "건강운"), "")

	require.Len(t, chapters, 3)
	require.Len(t, warnings, 1)
	assert.Equal(t, "ch-2", warnings[0].ChapterID)
	assert.Contains(t, warnings[0].Reason, "upstream timeout")

	// The failing chapter carries placeholder text; the others are intact.
	assert.Equal(t, gen.placeholder, chapters[1].Body)
	assert.Equal(t, "body for 총운", chapters[0].Body)
	assert.Equal(t, "body for 건강운", chapters[2].Body)
}

func TestGenerateChapters_NonConformantJSONFallsBackToRawText(t *testing.T) {
	stub := &stubClient{rawFor: map[string]string{
		"총운": "Plain prose without JSON framing.",
	}}
	gen := NewGenerator(stub, 1)

	chapters, warnings := gen.GenerateChapters(context.Background(), testFacts(),
		testChapters("총운"), "")

	require.Len(t, chapters, 1)
	assert.Empty(t, warnings)
	assert.Equal(t, "Plain prose without JSON framing.", chapters[0].Body)
}

func TestGenerateChapters_NoChapters(t *testing.T) {
	gen := NewGenerator(&stubClient{}, 2)
	chapters, warnings := gen.GenerateChapters(context.Background(), testFacts(), nil, "")
	assert.Empty(t, chapters)
	assert.Empty(t, warnings)
}

func TestFormatScores_StableOrder(t *testing.T) {
	_, scores := saju.Score(saju.BirthRecord{Year: 1990, Month: 3, Day: 15})
	out := formatScores(scores)
	assert.Equal(t, "wood=20, fire=20, earth=20, metal=20, water=0", out)
}
