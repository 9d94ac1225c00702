package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/attrib/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

// writeParquet writes rows to path for test fixtures.
func writeParquet[T any](t *testing.T, path string, rows []T) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	file, err := os.Create(path)
	require.NoError(t, err)
	writer := parquet.NewGenericWriter[T](file)
	_, err = writer.Write(rows)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	require.NoError(t, file.Close())
}

// TestLoadDecisions verifies single-file loading with order preserved.
func TestLoadDecisions(t *testing.T) {
	dir := t.TempDir()
	rows := []schema.Decision{
		{VisitorID: "v1", ExperimentID: "e1", VariationID: "vA", Timestamp: baseTime},
		{VisitorID: "v2", ExperimentID: "e1", VariationID: "vB", Timestamp: baseTime.Add(time.Minute), IsHoldback: true},
	}
	writeParquet(t, filepath.Join(dir, "decisions.parquet"), rows)

	got, err := NewParquetEventStore().LoadDecisions(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "v1", got[0].VisitorID)
	assert.Equal(t, "v2", got[1].VisitorID)
	assert.True(t, got[1].IsHoldback)
	assert.True(t, got[0].Timestamp.Equal(baseTime))
}

// TestLoadDecisionsPartDir verifies the <table>/ directory layout, with part
// files concatenated in name order.
func TestLoadDecisionsPartDir(t *testing.T) {
	dir := t.TempDir()
	writeParquet(t, filepath.Join(dir, "decisions", "part-01.parquet"), []schema.Decision{
		{VisitorID: "v1", ExperimentID: "e1", VariationID: "vA", Timestamp: baseTime},
	})
	writeParquet(t, filepath.Join(dir, "decisions", "part-02.parquet"), []schema.Decision{
		{VisitorID: "v2", ExperimentID: "e1", VariationID: "vB", Timestamp: baseTime},
	})

	got, err := NewParquetEventStore().LoadDecisions(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "v1", got[0].VisitorID)
	assert.Equal(t, "v2", got[1].VisitorID)
}

// TestLoadDecisionsSchemaError verifies the boundary validation surface.
func TestLoadDecisionsSchemaError(t *testing.T) {
	dir := t.TempDir()
	writeParquet(t, filepath.Join(dir, "decisions.parquet"), []schema.Decision{
		{VisitorID: "v1", ExperimentID: "", VariationID: "vA", Timestamp: baseTime},
	})

	_, err := NewParquetEventStore().LoadDecisions(context.Background(), dir)
	require.Error(t, err)

	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, schema.DecisionsTable, schemaErr.Table)
	assert.Equal(t, 0, schemaErr.Row)
	assert.Equal(t, "experiment_id", schemaErr.Field)
}

// TestLoadDecisionsMissingTable verifies the not-found error.
func TestLoadDecisionsMissingTable(t *testing.T) {
	_, err := NewParquetEventStore().LoadDecisions(context.Background(), t.TempDir())
	assert.ErrorContains(t, err, "not found")
}

// TestLoadDecisionsCancelled verifies the context check between part files.
func TestLoadDecisionsCancelled(t *testing.T) {
	dir := t.TempDir()
	writeParquet(t, filepath.Join(dir, "decisions.parquet"), []schema.Decision{
		{VisitorID: "v1", ExperimentID: "e1", VariationID: "vA", Timestamp: baseTime},
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewParquetEventStore().LoadDecisions(ctx, dir)
	assert.ErrorIs(t, err, context.Canceled)
}

// TestLoadEvents verifies event loading including the enrichment list.
func TestLoadEvents(t *testing.T) {
	dir := t.TempDir()
	rows := []schema.Event{
		{VisitorID: "v1", EventName: "purchase", Timestamp: baseTime, Experiments: []schema.ExperimentRef{
			{ExperimentID: "e1", VariationID: "vA"},
			{ExperimentID: "e2", VariationID: "vB"},
		}},
		{VisitorID: "v2", EventName: "signup", Timestamp: baseTime.Add(time.Hour)},
	}
	writeParquet(t, filepath.Join(dir, "events.parquet"), rows)

	got, err := NewParquetEventStore().LoadEvents(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Len(t, got[0].Experiments, 2)
	assert.Equal(t, "e2", got[0].Experiments[1].ExperimentID)
	assert.Empty(t, got[1].Experiments)
}

// TestLoadEventsSchemaError verifies enrichment entries are validated too.
func TestLoadEventsSchemaError(t *testing.T) {
	dir := t.TempDir()
	writeParquet(t, filepath.Join(dir, "events.parquet"), []schema.Event{
		{VisitorID: "v1", EventName: "purchase", Timestamp: baseTime, Experiments: []schema.ExperimentRef{
			{ExperimentID: "e1", VariationID: ""},
		}},
	})

	_, err := NewParquetEventStore().LoadEvents(context.Background(), dir)
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "experiments.variation_id", schemaErr.Field)
}

// TestResolveTableFiles verifies precedence of the single-file layout and
// the empty-directory error.
func TestResolveTableFiles(t *testing.T) {
	t.Run("single file wins", func(t *testing.T) {
		dir := t.TempDir()
		writeParquet(t, filepath.Join(dir, "decisions.parquet"), []schema.Decision{
			{VisitorID: "v1", ExperimentID: "e1", VariationID: "vA", Timestamp: baseTime},
		})
		files, err := resolveTableFiles(dir, schema.DecisionsTable)
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(dir, "decisions.parquet")}, files)
	})

	t.Run("empty table directory rejected", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "events"), 0o755))
		_, err := resolveTableFiles(dir, schema.EventsTable)
		assert.ErrorContains(t, err, "no parquet files")
	})
}
