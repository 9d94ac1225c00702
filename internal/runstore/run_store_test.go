package runstore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/attrib/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newSQLiteStore returns a run store backed by a throwaway database file.
func newSQLiteStore(t *testing.T) *RunStoreImpl {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	rs, err := NewRunStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rs.Close() })
	return rs.(*RunStoreImpl)
}

// TestRunLifecycle walks a run through begin, end, and status.
func TestRunLifecycle(t *testing.T) {
	rs := newSQLiteStore(t)

	start := time.Now().UTC().Truncate(time.Millisecond)
	params := map[string]any{"dataset": "ds", "policy": "web"}

	runID, err := rs.BeginRun(start, "subjects", params)
	require.NoError(t, err)
	assert.Positive(t, runID)

	end := start.Add(1500 * time.Millisecond)
	require.NoError(t, rs.EndRun(runID, end, 42))

	status, err := rs.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Equal(t, string(schema.SQLiteBackend), status.Backend)
	assert.Equal(t, 1, status.TotalRuns)
	assert.Equal(t, runID, status.LastRunID)
	assert.True(t, status.LastRunTime.Equal(start), "expected %v, got %v", start, status.LastRunTime)
}

// TestRunOrdering checks last/oldest run bookkeeping across multiple runs.
func TestRunOrdering(t *testing.T) {
	rs := newSQLiteStore(t)

	first := time.Now().UTC().Add(-time.Hour)
	second := first.Add(30 * time.Minute)

	id1, err := rs.BeginRun(first, "subjects", nil)
	require.NoError(t, err)
	id2, err := rs.BeginRun(second, "report", nil)
	require.NoError(t, err)
	assert.Greater(t, id2, id1)

	status, err := rs.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 2, status.TotalRuns)
	assert.Equal(t, id2, status.LastRunID)
	assert.True(t, status.OldestRunTime.Equal(first))
}

// TestRunClear verifies that Clear empties the table but keeps the store usable.
func TestRunClear(t *testing.T) {
	rs := newSQLiteStore(t)

	_, err := rs.BeginRun(time.Now().UTC(), "subjects", nil)
	require.NoError(t, err)
	require.NoError(t, rs.Clear())

	status, err := rs.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 0, status.TotalRuns)

	_, err = rs.BeginRun(time.Now().UTC(), "report", nil)
	assert.NoError(t, err)
}

// TestListRuns verifies the run history roundtrip, including open runs.
func TestListRuns(t *testing.T) {
	rs := newSQLiteStore(t)

	start := time.Now().UTC().Truncate(time.Millisecond)
	id1, err := rs.BeginRun(start, "subjects", map[string]any{"policy": "web"})
	require.NoError(t, err)
	require.NoError(t, rs.EndRun(id1, start.Add(2*time.Second), 7))

	// Second run left open, so nullable columns stay NULL
	id2, err := rs.BeginRun(start.Add(time.Minute), "report", nil)
	require.NoError(t, err)

	records, err := rs.ListRuns()
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, id1, first.RunID)
	assert.Equal(t, "subjects", first.Command)
	assert.True(t, first.StartTime.Equal(start))
	require.NotNil(t, first.EndTime)
	require.NotNil(t, first.RunDurationMs)
	assert.Equal(t, int32(2000), *first.RunDurationMs)
	require.NotNil(t, first.RowsProduced)
	assert.Equal(t, int32(7), *first.RowsProduced)
	require.NotNil(t, first.ConfigParams)
	assert.Contains(t, *first.ConfigParams, `"policy":"web"`)

	second := records[1]
	assert.Equal(t, id2, second.RunID)
	assert.Nil(t, second.EndTime)
	assert.Nil(t, second.RowsProduced)
}

// TestNoneBackend verifies the disabled store is a transparent no-op.
func TestNoneBackend(t *testing.T) {
	rs, err := NewRunStore(schema.NoneBackend, "")
	require.NoError(t, err)

	runID, err := rs.BeginRun(time.Now(), "subjects", nil)
	require.NoError(t, err)
	assert.Zero(t, runID)

	assert.NoError(t, rs.EndRun(runID, time.Now(), 0))
	assert.NoError(t, rs.Clear())

	records, err := rs.ListRuns()
	require.NoError(t, err)
	assert.Empty(t, records)

	status, err := rs.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Connected)
	assert.NoError(t, rs.Close())
}

// TestUnsupportedBackend verifies the constructor rejects unknown backends.
func TestUnsupportedBackend(t *testing.T) {
	_, err := NewRunStore(schema.DatabaseBackend("oracle"), "")
	assert.Error(t, err)
}

// TestQuoteTableName covers dialect quoting.
func TestQuoteTableName(t *testing.T) {
	assert.Equal(t, "`attrib_runs`", quoteTableName(runsTable, schema.MySQLBackend))
	assert.Equal(t, `"attrib_runs"`, quoteTableName(runsTable, schema.PostgreSQLBackend))
	assert.Equal(t, `"attrib_runs"`, quoteTableName(runsTable, schema.SQLiteBackend))
}
