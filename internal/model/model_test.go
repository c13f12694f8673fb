package model

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStageResultCreation(t *testing.T) {
	t.Parallel()

	t.Run("creates stage result with all fields", func(t *testing.T) {
		t.Parallel()
		now := time.Now()
		result := StageResult{
			Stage:     "sdk",
			Status:    StatusSuccess,
			Message:   "checkout up to date",
			Duration:  time.Second,
			Timestamp: now,
		}

		require.Equal(t, "sdk", result.Stage)
		require.Equal(t, StatusSuccess, result.Status)
		require.Equal(t, "checkout up to date", result.Message)
		require.Equal(t, time.Second, result.Duration)
		require.Equal(t, now, result.Timestamp)
		require.False(t, result.Failed())
	})

	t.Run("creates stage result with error", func(t *testing.T) {
		t.Parallel()
		err := errors.New("clone failed")
		result := StageResult{
			Stage:  "sdk",
			Status: StatusFailed,
			Error:  err,
		}

		require.Equal(t, StatusFailed, result.Status)
		require.Equal(t, err, result.Error)
		require.True(t, result.Failed())
	})
}

func TestStatusConstants(t *testing.T) {
	t.Parallel()

	require.Equal(t, "pending", StatusPending)
	require.Equal(t, "running", StatusRunning)
	require.Equal(t, "success", StatusSuccess)
	require.Equal(t, "skipped", StatusSkipped)
	require.Equal(t, "warning", StatusWarning)
	require.Equal(t, "failed", StatusFailed)
	require.Equal(t, "dry_run", StatusDryRun)
}

func TestRunSummaryFailed(t *testing.T) {
	t.Parallel()

	t.Run("returns false when all stages succeed", func(t *testing.T) {
		t.Parallel()
		summary := &RunSummary{RunID: "run-1", Project: "demo"}
		summary.Append(StageResult{Stage: "config", Status: StatusSuccess})
		summary.Append(StageResult{Stage: "prereq", Status: StatusWarning})
		summary.Append(StageResult{Stage: "project", Status: StatusSkipped})

		require.False(t, summary.Failed())
		require.Equal(t, 0, summary.ExitCode())
	})

	t.Run("returns true when any stage fails", func(t *testing.T) {
		t.Parallel()
		summary := &RunSummary{RunID: "run-2", Project: "demo"}
		summary.Append(StageResult{Stage: "config", Status: StatusSuccess})
		summary.Append(StageResult{Stage: "sdk", Status: StatusFailed, Error: errors.New("fetch failed")})

		require.True(t, summary.Failed())
		require.Equal(t, 1, summary.ExitCode())
	})

	t.Run("empty summary has not failed", func(t *testing.T) {
		t.Parallel()
		summary := &RunSummary{}
		require.False(t, summary.Failed())
		require.Equal(t, 0, summary.ExitCode())
	})
}

func TestRunSummaryDuration(t *testing.T) {
	t.Parallel()

	summary := &RunSummary{}
	summary.Append(StageResult{Stage: "config", Status: StatusSuccess, Duration: 100 * time.Millisecond})
	summary.Append(StageResult{Stage: "sdk", Status: StatusSuccess, Duration: 2 * time.Second})

	require.Equal(t, 2100*time.Millisecond, summary.Duration())
}
