// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/attrib/schema"
)

// EventStore defines the tabular source and sink the engines run against.
// This allows the core logic to be tested without real Parquet files.
type EventStore interface {
	// LoadDecisions returns every decision row of the dataset, in source
	// order, validated at the boundary.
	LoadDecisions(ctx context.Context, datasetDir string) ([]schema.Decision, error)

	// LoadEvents returns every event row of the dataset, in source order,
	// validated at the boundary.
	LoadEvents(ctx context.Context, datasetDir string) ([]schema.Event, error)

	// WriteSubjects persists the experiment-subjects table under destDir,
	// partitioned by experiment_id. Any existing partition fails the whole
	// write unless overwrite is set; with overwrite the prior table is
	// replaced wholesale. Nothing is written partially.
	WriteSubjects(subjects []schema.ExperimentSubject, destDir string, overwrite bool) error
}

// RunStore defines the interface for tracking attribution runs.
// This allows mocking the store for testing.
type RunStore interface {
	// BeginRun creates a new run record and returns its unique ID.
	BeginRun(startTime time.Time, command string, configParams map[string]any) (int64, error)

	// EndRun updates the run record with completion data.
	EndRun(runID int64, endTime time.Time, rowsProduced int) error

	// GetStatus returns status information about the run store.
	GetStatus() (schema.RunStatus, error)

	// ListRuns returns every run record, oldest first.
	ListRuns() ([]schema.RunRecord, error)

	// Clear removes all run records.
	Clear() error

	// Close closes the underlying connection.
	Close() error
}
