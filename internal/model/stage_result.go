package model

import (
	"time"
)

const (
	// StatusPending indicates a stage has not started yet.
	StatusPending = "pending"
	// StatusRunning indicates a stage is actively executing.
	StatusRunning = "running"
	// StatusSuccess marks a successful stage execution.
	StatusSuccess = "success"
	// StatusSkipped indicates the stage found nothing to do.
	StatusSkipped = "skipped"
	// StatusWarning marks a stage that completed with downgraded failures.
	StatusWarning = "warning"
	// StatusFailed marks a fatal failure during stage execution.
	StatusFailed = "failed"
	// StatusDryRun indicates the stage only announced its intentions.
	StatusDryRun = "dry_run"
)

// StageResult captures the outcome of executing a single pipeline stage.
type StageResult struct {
	Stage     string
	Status    string
	Message   string
	Error     error
	Duration  time.Duration
	Timestamp time.Time
}

// Failed reports whether the stage ended in a fatal error.
func (r StageResult) Failed() bool {
	return r.Status == StatusFailed
}
