package models

import "time"

// FileFailure records one corpus file whose contribution was dropped.
type FileFailure struct {
	File   string `json:"file"`
	Reason string `json:"reason"`
}

// GroupCount is the number of rows in one (label, bucket) group.
type GroupCount struct {
	Label  string `json:"label"`
	Bucket string `json:"bucket"`
	Rows   int64  `json:"rows"`
}

// RunSummary is the user-visible outcome of one scan run.
type RunSummary struct {
	RunID        string        `json:"run_id"`
	StartedAt    time.Time     `json:"started_at"`
	FinishedAt   time.Time     `json:"finished_at"`
	Files        int           `json:"files"`
	FailedFiles  []FileFailure `json:"failed_files,omitempty"`
	SkippedLines int64         `json:"skipped_lines"`
	TotalMatches int64         `json:"total_matches"`
	Groups       []GroupCount  `json:"groups"`
}

// Duration returns the wall-clock duration of the run.
func (s *RunSummary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}
