// Package cli renders run summaries for terminal output.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/hyperjump/tadoru/internal/models"
)

// OutputFormat is the format for summary output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// WriteRunSummary writes the end-of-run summary to w in the given format.
func WriteRunSummary(w io.Writer, summary *models.RunSummary, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	default:
		writeRunSummaryText(w, summary)
		return nil
	}
}

func writeRunSummaryText(w io.Writer, summary *models.RunSummary) {
	fmt.Fprintf(w, "\nrun %s: %d matches in %d file(s), %s\n",
		summary.RunID, summary.TotalMatches, summary.Files,
		summary.Duration().Round(time.Millisecond))
	if len(summary.Groups) > 0 {
		fmt.Fprintln(w)
		for _, g := range summary.Groups {
			fmt.Fprintf(w, "  %-30s %-8s %d\n", g.Label, g.Bucket, g.Rows)
		}
	}
	if summary.SkippedLines > 0 {
		fmt.Fprintf(w, "\nskipped lines: %d\n", summary.SkippedLines)
	}
	if len(summary.FailedFiles) > 0 {
		fmt.Fprintf(w, "\nfailed files (%d):\n", len(summary.FailedFiles))
		for _, f := range summary.FailedFiles {
			fmt.Fprintf(w, "  %s: %s\n", f.File, Truncate(f.Reason, 120))
		}
	}
}

// Truncate truncates s to maxLen and appends "..." if truncated.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
