package journal

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/flutterkit/flutterkit/internal/model"
	"github.com/flutterkit/flutterkit/internal/paths"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()

	j, err := Open(context.Background(), filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func sampleSummary(id string, startedAt time.Time) *model.RunSummary {
	summary := &model.RunSummary{
		RunID:     id,
		Project:   "demo",
		StartedAt: startedAt,
	}
	summary.Append(model.StageResult{
		Stage:    "prerequisites",
		Status:   model.StatusSuccess,
		Message:  "completed",
		Duration: 1500 * time.Millisecond,
	})
	summary.Append(model.StageResult{
		Stage:    "sdk",
		Status:   model.StatusFailed,
		Message:  "failed",
		Error:    errors.New("clone failed"),
		Duration: 500 * time.Millisecond,
	})
	return summary
}

func TestRecordAndRecentRoundTrip(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	first := time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)

	require.NoError(t, j.Record(ctx, sampleSummary("run-1", first)))
	require.NoError(t, j.Record(ctx, sampleSummary("run-2", second)))

	runs, err := j.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	require.Equal(t, "run-2", runs[0].ID)
	require.Equal(t, "run-1", runs[1].ID)
	require.Equal(t, "demo", runs[0].Project)
	require.True(t, runs[0].StartedAt.Equal(second))
	require.Equal(t, 2*time.Second, runs[0].Duration)
	require.Equal(t, 1, runs[0].ExitCode)
}

func TestStagesPreserveOrderAndErrors(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	startedAt := time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, j.Record(ctx, sampleSummary("run-1", startedAt)))

	stages, err := j.Stages(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, stages, 2)

	require.Equal(t, "prerequisites", stages[0].Stage)
	require.Equal(t, model.StatusSuccess, stages[0].Status)
	require.Empty(t, stages[0].Error)
	require.Equal(t, 1500*time.Millisecond, stages[0].Duration)

	require.Equal(t, "sdk", stages[1].Stage)
	require.Equal(t, model.StatusFailed, stages[1].Status)
	require.Equal(t, "clone failed", stages[1].Error)
}

func TestRecentHonoursLimit(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	base := time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		summary := sampleSummary("run-"+string(rune('a'+i)), base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, j.Record(ctx, summary))
	}

	runs, err := j.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	require.Equal(t, "run-c", runs[0].ID)
}

func TestJournalSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	ctx := context.Background()

	j, err := Open(ctx, path)
	require.NoError(t, err)
	startedAt := time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, j.Record(ctx, sampleSummary("run-1", startedAt)))
	require.NoError(t, j.Close())

	reopened, err := Open(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	runs, err := reopened.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, "run-1", runs[0].ID)
}

func TestOpenDefaultUsesDataDir(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("FLUTTERKIT_DATA_DIR", dataDir)

	j, err := OpenDefault(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	require.Equal(t, filepath.Join(dataDir, "journal.db"), paths.JournalPath())
	require.FileExists(t, paths.JournalPath())
}
