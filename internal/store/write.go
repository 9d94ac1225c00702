package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/huangsam/attrib/schema"
	"github.com/parquet-go/parquet-go"
)

// ErrPartitionExists signals that a destination partition is already present
// and the caller did not request overwrite. Nothing is written in that case.
var ErrPartitionExists = errors.New("destination partition already exists")

// subjectsFileName is the part file written inside each partition directory.
const subjectsFileName = "subjects.parquet"

// WriteSubjects persists the experiment-subjects table under destDir,
// partitioned hive-style by experiment_id. The destination directory holds
// exactly one table: any pre-existing partition refuses the write without
// overwrite, and with overwrite the whole prior table is removed before the
// new partitions are written, so stale partitions never linger. Downstream
// consumers rely on the experiment_id=<id> directory layout.
func (s *ParquetEventStore) WriteSubjects(subjects []schema.ExperimentSubject, destDir string, overwrite bool) error {
	partitions := partitionByExperiment(subjects)

	// Validate partition names before touching the destination.
	for id := range partitions {
		if _, err := partitionDir(destDir, id); err != nil {
			return err
		}
	}

	// Conflict check first so a refused write leaves the destination intact.
	existing, err := existingPartitions(destDir)
	if err != nil {
		return err
	}
	if len(existing) > 0 && !overwrite {
		return fmt.Errorf("%w: %s (use overwrite to replace)", ErrPartitionExists, filepath.Join(destDir, existing[0]))
	}

	// Replace the table wholesale, not partition by partition.
	for _, name := range existing {
		if err := os.RemoveAll(filepath.Join(destDir, name)); err != nil {
			return fmt.Errorf("failed to replace partition %s: %w", name, err)
		}
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("failed to create destination %s: %w", destDir, err)
	}

	for id, rows := range partitions {
		dir, err := partitionDir(destDir, id)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create partition %s: %w", dir, err)
		}
		if err := writeSubjectsFile(filepath.Join(dir, subjectsFileName), rows); err != nil {
			return err
		}
	}
	return nil
}

// existingPartitions lists the experiment partition directories already
// present under destDir, sorted by name. A missing destination means an
// empty table.
func existingPartitions(destDir string) ([]string, error) {
	entries, err := os.ReadDir(destDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read destination %s: %w", destDir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), "experiment_id=") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// partitionByExperiment groups rows by experiment_id, preserving row order
// within each partition.
func partitionByExperiment(subjects []schema.ExperimentSubject) map[string][]schema.ExperimentSubject {
	partitions := make(map[string][]schema.ExperimentSubject)
	for _, s := range subjects {
		partitions[s.ExperimentID] = append(partitions[s.ExperimentID], s)
	}
	return partitions
}

// partitionDir returns the hive-style directory for an experiment partition.
// Experiment ids with path separators cannot map to a single directory name.
func partitionDir(destDir, experimentID string) (string, error) {
	if strings.ContainsAny(experimentID, `/\`) {
		return "", fmt.Errorf("experiment_id %q cannot be used as a partition name", experimentID)
	}
	return filepath.Join(destDir, "experiment_id="+experimentID), nil
}

// writeSubjectsFile writes one partition's rows to a Parquet file.
func writeSubjectsFile(path string, rows []schema.ExperimentSubject) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// The schema is derived from the ExperimentSubject struct tags
	writer := parquet.NewGenericWriter[schema.ExperimentSubject](file)

	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}
