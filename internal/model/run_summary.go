package model

import (
	"time"
)

// RunSummary aggregates stage results across one end-to-end invocation. It is
// consumed by the console reporter and the run journal.
type RunSummary struct {
	RunID     string
	Project   string
	StartedAt time.Time
	Results   []StageResult
}

// Append records a completed stage result.
func (s *RunSummary) Append(result StageResult) {
	s.Results = append(s.Results, result)
}

// Failed reports whether any stage ended in a fatal error.
func (s *RunSummary) Failed() bool {
	for _, result := range s.Results {
		if result.Failed() {
			return true
		}
	}
	return false
}

// Duration returns the total wall-clock time across all recorded stages.
func (s *RunSummary) Duration() time.Duration {
	var total time.Duration
	for _, result := range s.Results {
		total += result.Duration
	}
	return total
}

// ExitCode maps the run outcome to a process exit code.
func (s *RunSummary) ExitCode() int {
	if s.Failed() {
		return 1
	}
	return 0
}
