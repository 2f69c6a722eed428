package observability

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/minseo/saju-reporter/internal/batch"
	"github.com/minseo/saju-reporter/internal/saju"
)

func TestPrinter_PrintScores(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	scores := saju.ZeroScore()
	scores[saju.Wood] = 40
	scores[saju.Fire] = 20
	p.PrintScores("김철수", "庚午 己卯 己卯 庚午", scores)

	out := buf.String()
	assert.Contains(t, out, "ELEMENT SCORES")
	assert.Contains(t, out, "김철수")
	assert.Contains(t, out, "wood")
	assert.Contains(t, out, "████")
}

func TestPrinter_PrintProgress(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintProgress(batch.Progress{
		Index:        0,
		Total:        3,
		CustomerName: "이영희",
		Stage:        batch.StageScoring,
		Completed:    1,
	})

	out := buf.String()
	assert.Contains(t, out, "[1/3]")
	assert.Contains(t, out, "이영희")
	assert.Contains(t, out, "scoring")
}

func TestPrinter_PrintSummary(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintSummary(&batch.Summary{
		Total:     5,
		Persisted: 3,
		Skipped:   1,
		Failed:    1,
		Failures:  []batch.Failure{{CustomerName: "박민수", Reason: "assembly failed"}},
		Warnings:  []batch.Warning{{CustomerName: "최지우", Detail: "mail dispatch failed"}},
	})

	out := buf.String()
	assert.Contains(t, out, "BATCH SUMMARY")
	assert.Contains(t, out, "Persisted: 3")
	assert.Contains(t, out, "박민수")
	assert.Contains(t, out, "최지우")
	assert.NotContains(t, out, "Canceled")
}

func TestPrinter_PrintSummary_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintSummary(nil)
	assert.Empty(t, buf.String())
}

func TestPrinter_PrintRowErrors(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRowErrors(nil)
	assert.Empty(t, buf.String())

	p.PrintRowErrors([]batch.RowError{
		{Line: 3, Reason: "birth field 1 is not a number"},
	})
	out := buf.String()
	assert.Contains(t, out, "INPUT WARNINGS")
	assert.Contains(t, out, "line 3")
}
