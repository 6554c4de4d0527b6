package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"engagement-dashboard/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := InitDB(filepath.Join(t.TempDir(), "dashboard.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndListLoadRuns(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	report := &model.LoadReport{Source: "usage.csv", RowsRead: 10, RowsKept: 8, DroppedDuplicates: 2}
	report.NoteFieldError(model.ColAge)
	require.NoError(t, s.SaveLoadRun(ctx, "run-1", report))

	runs, err := s.ListLoadRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	assert.Equal(t, "run-1", runs[0].ID)
	assert.Equal(t, "usage.csv", runs[0].Source)
	assert.Equal(t, 8, runs[0].RowsKept)
	assert.Equal(t, 2, runs[0].Report.DroppedDuplicates)
	assert.Equal(t, 1, runs[0].Report.FieldErrors[model.ColAge])
	assert.False(t, runs[0].CreatedAt.IsZero())
}

func TestSaveAggregateRows(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rows := []AggregateRow{
		{RunID: "run-1", View: "heatmap", Keys: []string{"Male", "India"}, Value: model.Some(120.5), Count: 3},
		{RunID: "run-1", View: "heatmap", Keys: []string{"Male", "USA"}},
		{RunID: "run-1", View: "kpi", Keys: []string{"avg_engagement"}, Value: model.Some(5), Count: 1},
	}
	n, err := s.SaveAggregateRows(ctx, rows)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	got, err := s.GetAggregateRows(ctx, "run-1", "heatmap")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, []string{"Male", "India"}, got[0].Keys)
	assert.Equal(t, model.Some(120.5), got[0].Value)
	assert.Equal(t, 3, got[0].Count)
	assert.False(t, got[1].Value.Valid, "missing values come back as missing")

	none, err := s.GetAggregateRows(ctx, "run-2", "heatmap")
	require.NoError(t, err)
	assert.Empty(t, none)
}
