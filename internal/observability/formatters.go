// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jonathan/careerbase/internal/bulkops"
	"github.com/jonathan/careerbase/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
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

// PrintDuplicateReport outputs a human-readable summary of a duplicate scan.
func (p *Printer) PrintDuplicateReport(report *types.DuplicateReport) {
	if report == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Records scanned:   %d\n", report.Summary.TotalRecords))
	sb.WriteString(fmt.Sprintf("Duplicate groups:  %d\n", report.Summary.GroupCount))
	sb.WriteString(fmt.Sprintf("Duplicate records: %d\n", report.Summary.DuplicateRecords))
	sb.WriteString(fmt.Sprintf("Auto-mergeable:    %d\n", report.Summary.AutoMergeable))
	sb.WriteString(fmt.Sprintf("Needs review:      %d\n", report.Summary.NeedsReview))

	count := min(len(report.Groups), maxItemsToShow)
	for i := 0; i < count; i++ {
		group := report.Groups[i]
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("#%d  %s (%s)\n", i+1, group.Primary.Title, group.Type))
		sb.WriteString(fmt.Sprintf("    Primary: %s at %s\n", group.Primary.ID, group.Primary.Org))
		for _, dup := range group.Duplicates {
			sb.WriteString(fmt.Sprintf("    • %s  overall %.2f (%s)\n",
				dup.Record.ID, dup.Similarity.Overall, dup.Confidence.Level))
		}
		if rec := group.Recommendation; rec != nil {
			sb.WriteString(fmt.Sprintf("    → %s: %s\n", rec.Strategy, rec.Reason))
		}
	}
	if len(report.Groups) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more groups\n", len(report.Groups)-maxItemsToShow))
	}

	p.printBox("DUPLICATE SCAN", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintPreview outputs the planned changes and conflicts of an operation.
func (p *Printer) PrintPreview(preview *bulkops.Preview) {
	if preview == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Operation: %s\n", preview.Type))
	sb.WriteString(fmt.Sprintf("Items: %d   Embedding refreshes: %d\n",
		preview.Estimate.Items, preview.Estimate.EmbeddingRefreshes))
	sb.WriteString(fmt.Sprintf("Estimated duration: %s\n", preview.Estimate.EstimatedDuration))

	if len(preview.Changes) > 0 {
		sb.WriteString("\nChanges:\n")
		count := min(len(preview.Changes), maxItemsToShow)
		for i := 0; i < count; i++ {
			ch := preview.Changes[i]
			sb.WriteString(fmt.Sprintf("  • %s %s: %v → %v\n", shortID(ch.RecordID.String()), ch.Field, ch.Before, ch.After))
		}
		if len(preview.Changes) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(preview.Changes)-maxItemsToShow))
		}
	}

	if len(preview.Conflicts) > 0 {
		sb.WriteString("\nConflicts:\n")
		for _, c := range preview.Conflicts {
			sb.WriteString(fmt.Sprintf("  [%s] %s: %s\n", c.Severity, shortID(c.RecordID.String()), c.Message))
		}
	}

	p.printBox("OPERATION PREVIEW", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintResult outputs the terminal outcome of an executed operation.
func (p *Printer) PrintResult(result *bulkops.Result) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Operation: %s\n", result.OperationID))
	sb.WriteString(fmt.Sprintf("Status:    %s\n", result.Status))
	sb.WriteString(fmt.Sprintf("Duration:  %s\n", result.Duration.Round(time.Millisecond)))
	sb.WriteString(fmt.Sprintf("Processed: %d   Successful: %d   Failed: %d\n",
		result.Results.Processed, result.Results.Successful, result.Results.Failed))

	if len(result.Results.Errors) > 0 {
		sb.WriteString("\nErrors:\n")
		count := min(len(result.Results.Errors), maxItemsToShow)
		for i := 0; i < count; i++ {
			e := result.Results.Errors[i]
			sb.WriteString(fmt.Sprintf("  • %s: %s\n", shortID(e.RecordID), e.Message))
		}
		if len(result.Results.Errors) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(result.Results.Errors)-maxItemsToShow))
		}
	}

	p.printBox("OPERATION RESULT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintOperationStatus outputs a status snapshot for polling output.
func (p *Printer) PrintOperationStatus(op *types.Operation) {
	if op == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Operation: %s (%s)\n", op.ID, op.Type))
	sb.WriteString(fmt.Sprintf("Status:    %s\n", op.Status))
	sb.WriteString(fmt.Sprintf("Progress:  %d%%\n", op.Progress))
	sb.WriteString(fmt.Sprintf("Processed: %d   Successful: %d   Failed: %d",
		op.Results.Processed, op.Results.Successful, op.Results.Failed))

	p.printBox("OPERATION STATUS", sb.String())
}

// shortID abbreviates a UUID for box output.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
