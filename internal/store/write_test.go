package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/attrib/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSubjects() []schema.ExperimentSubject {
	at := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	return []schema.ExperimentSubject{
		{SubjectID: "v1", ExperimentID: "e1", VariationID: "vA", Timestamp: at},
		{SubjectID: "v2", ExperimentID: "e1", VariationID: "vB", Timestamp: at.Add(time.Minute)},
		{SubjectID: "v1", ExperimentID: "e2", VariationID: "vC", Timestamp: at.Add(2 * time.Minute)},
	}
}

// TestWriteSubjects verifies the hive-style partition layout and roundtrip.
func TestWriteSubjects(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out")
	es := NewParquetEventStore()

	require.NoError(t, es.WriteSubjects(sampleSubjects(), dest, false))

	for _, id := range []string{"e1", "e2"} {
		path := filepath.Join(dest, "experiment_id="+id, subjectsFileName)
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.False(t, info.IsDir())
	}

	rows, err := parquet.ReadFile[schema.ExperimentSubject](filepath.Join(dest, "experiment_id=e1", subjectsFileName))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "v1", rows[0].SubjectID)
	assert.Equal(t, "vB", rows[1].VariationID)
}

// TestWriteSubjectsConflict verifies the refuse-then-overwrite contract: an
// existing partition blocks the whole write unless overwrite is set.
func TestWriteSubjectsConflict(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out")
	es := NewParquetEventStore()
	subjects := sampleSubjects()

	require.NoError(t, es.WriteSubjects(subjects, dest, false))

	// Second write without overwrite must fail before touching anything.
	err := es.WriteSubjects(subjects, dest, false)
	require.ErrorIs(t, err, ErrPartitionExists)

	// Overwrite replaces the partitions wholesale.
	replaced := subjects[:1]
	require.NoError(t, es.WriteSubjects(replaced, dest, true))
	rows, err := parquet.ReadFile[schema.ExperimentSubject](filepath.Join(dest, "experiment_id=e1", subjectsFileName))
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

// TestWriteSubjectsOverwriteRemovesStale verifies the whole-table replace:
// partitions absent from the new table do not survive an overwrite.
func TestWriteSubjectsOverwriteRemovesStale(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out")
	es := NewParquetEventStore()
	subjects := sampleSubjects()

	// First run produces e1 and e2.
	require.NoError(t, es.WriteSubjects(subjects, dest, false))

	// Second run only produces e1; e2 is stale and must go.
	require.NoError(t, es.WriteSubjects(subjects[:1], dest, true))

	_, statErr := os.Stat(filepath.Join(dest, "experiment_id=e2"))
	assert.True(t, os.IsNotExist(statErr))

	rows, err := parquet.ReadFile[schema.ExperimentSubject](filepath.Join(dest, "experiment_id=e1", subjectsFileName))
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

// TestWriteSubjectsDisjointConflict verifies that a destination holding
// unrelated partitions refuses a non-overwrite write instead of mixing two
// tables.
func TestWriteSubjectsDisjointConflict(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out")
	es := NewParquetEventStore()
	subjects := sampleSubjects()

	// Seed only e2, then try to write only e1 rows without overwrite.
	require.NoError(t, es.WriteSubjects(subjects[2:], dest, false))
	err := es.WriteSubjects(subjects[:2], dest, false)
	require.ErrorIs(t, err, ErrPartitionExists)

	// The refused write must not have added e1 next to the old table.
	_, statErr := os.Stat(filepath.Join(dest, "experiment_id=e1"))
	assert.True(t, os.IsNotExist(statErr))
}

// TestWriteSubjectsPartialConflict checks that one existing partition blocks
// writes to every partition, keeping the destination consistent.
func TestWriteSubjectsPartialConflict(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out")
	es := NewParquetEventStore()
	subjects := sampleSubjects()

	// Seed only e1.
	require.NoError(t, es.WriteSubjects(subjects[:1], dest, false))

	err := es.WriteSubjects(subjects, dest, false)
	require.ErrorIs(t, err, ErrPartitionExists)

	// e2 must not have been created by the failed write.
	_, statErr := os.Stat(filepath.Join(dest, "experiment_id=e2"))
	assert.True(t, os.IsNotExist(statErr))
}

// TestPartitionDir rejects ids that cannot name a directory.
func TestPartitionDir(t *testing.T) {
	_, err := partitionDir("/tmp/out", "exp/1")
	assert.Error(t, err)

	dir, err := partitionDir("/tmp/out", "exp_1")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/out", "experiment_id=exp_1"), dir)
}

// TestWriteSubjectsEmpty verifies that no rows produce no partitions.
func TestWriteSubjectsEmpty(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out")
	require.NoError(t, NewParquetEventStore().WriteSubjects(nil, dest, false))

	entries, err := os.ReadDir(dest)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
