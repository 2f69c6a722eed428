// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/minseo/saju-reporter/internal/batch"
	"github.com/minseo/saju-reporter/internal/saju"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
	// scoreBarUnit is one bar segment per this many score points
	scoreBarUnit = 10
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintScores outputs a customer's pillar encoding and element scores.
func (p *Printer) PrintScores(name, encoding string, scores saju.ElementScore) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Customer: %s\n", name))
	sb.WriteString(fmt.Sprintf("Pillars:  %s\n", encoding))
	sb.WriteString("\n")

	for _, element := range saju.Elements {
		score := scores[element]
		bar := strings.Repeat("█", score/scoreBarUnit)
		sb.WriteString(fmt.Sprintf("%-6s %3d %s\n", element, score, bar))
	}

	p.printBox("ELEMENT SCORES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintProgress outputs a single stage transition line.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintProgress(progress batch.Progress) {
	fmt.Fprintf(p.out, "[%d/%d] %-20s %s\n",
		progress.Completed, progress.Total, progress.CustomerName, progress.Stage)
}

// PrintRowErrors outputs the malformed input rows that were skipped.
func (p *Printer) PrintRowErrors(errs []batch.RowError) {
	if len(errs) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Rows skipped: %d\n\n", len(errs)))
	count := min(len(errs), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  line %d: %s\n", errs[i].Line, errs[i].Reason))
	}
	if len(errs) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(errs)-maxItemsToShow))
	}

	p.printBox("INPUT WARNINGS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSummary outputs the final counts, failures, and warnings of a run.
func (p *Printer) PrintSummary(summary *batch.Summary) {
	if summary == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total:     %d\n", summary.Total))
	sb.WriteString(fmt.Sprintf("Persisted: %d\n", summary.Persisted))
	sb.WriteString(fmt.Sprintf("Skipped:   %d\n", summary.Skipped))
	sb.WriteString(fmt.Sprintf("Failed:    %d\n", summary.Failed))
	if summary.Canceled > 0 {
		sb.WriteString(fmt.Sprintf("Canceled:  %d\n", summary.Canceled))
	}

	if len(summary.Failures) > 0 {
		sb.WriteString("\nFailures:\n")
		count := min(len(summary.Failures), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s: %s\n", summary.Failures[i].CustomerName, summary.Failures[i].Reason))
		}
		if len(summary.Failures) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(summary.Failures)-maxItemsToShow))
		}
	}

	if len(summary.Warnings) > 0 {
		sb.WriteString("\nWarnings:\n")
		count := min(len(summary.Warnings), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s: %s\n", summary.Warnings[i].CustomerName, summary.Warnings[i].Detail))
		}
		if len(summary.Warnings) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(summary.Warnings)-maxItemsToShow))
		}
	}

	p.printBox("BATCH SUMMARY", strings.TrimSuffix(sb.String(), "\n"))
}
