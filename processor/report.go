package processor

import (
	"fmt"
	"io"
	"sort"
	"time"

	"wallsorter/matcher"
	"wallsorter/scanner"
	"wallsorter/types"
)

// Report is the outcome of one or more passes
type Report struct {
	Pass      string
	RunID     string
	Total     int
	Compared  int64
	DiffLimit int
	Moved     map[string][]types.ImageRef
	Pairs     []matcher.ComparisonPair
	Warnings  []scanner.Warning
	Elapsed   time.Duration
}

func newReport(pass, runID string) *Report {
	return &Report{
		Pass:  pass,
		RunID: runID,
		Moved: make(map[string][]types.ImageRef),
	}
}

// MovedCount returns the number of files moved across all labels
func (r *Report) MovedCount() int {
	n := 0
	for _, refs := range r.Moved {
		n += len(refs)
	}
	return n
}

// Merge folds other into r
func (r *Report) Merge(other *Report) {
	if other.Total > r.Total {
		r.Total = other.Total
	}
	r.Compared += other.Compared
	if other.DiffLimit > 0 {
		r.DiffLimit = other.DiffLimit
	}
	for label, refs := range other.Moved {
		r.Moved[label] = append(r.Moved[label], refs...)
	}
	r.Pairs = append(r.Pairs, other.Pairs...)
	r.Warnings = append(r.Warnings, other.Warnings...)
	r.Elapsed += other.Elapsed
}

// Print writes a human readable summary of r
func (r *Report) Print(w io.Writer, dryRun bool) {
	verb := "Moved"
	if dryRun {
		verb = "Would move"
	}

	fmt.Fprintf(w, "\nSummary (%s, run %s):\n", r.Pass, r.RunID)
	fmt.Fprintf(w, "- Images in batch: %d\n", r.Total)

	labels := make([]string, 0, len(r.Moved))
	for label := range r.Moved {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		fmt.Fprintf(w, "- %s %d images to %s\n", verb, len(r.Moved[label]), label)
	}
	if len(labels) == 0 {
		fmt.Fprintf(w, "- Nothing to move\n")
	}

	if len(r.Warnings) > 0 {
		fmt.Fprintf(w, "- Warnings: %d\n", len(r.Warnings))
		for _, warning := range r.Warnings {
			fmt.Fprintf(w, "  - %s\n", warning)
		}
	}
	fmt.Fprintf(w, "- Time: %v\n", r.Elapsed.Round(time.Millisecond))
}
