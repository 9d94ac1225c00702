// Package store implements the tabular event store on Parquet files using
// github.com/parquet-go/parquet-go. Datasets are directories holding the
// decisions and events tables as either a single <table>.parquet file or a
// <table>/ directory of part files.
package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/huangsam/attrib/internal/contract"
	"github.com/huangsam/attrib/schema"
	"github.com/parquet-go/parquet-go"
)

// SchemaError reports a row that failed boundary validation. It is fatal for
// the run and never retried.
type SchemaError struct {
	Table string
	Row   int
	Field string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s row %d: missing or mistyped required field %q", e.Table, e.Row, e.Field)
}

// ParquetEventStore is the Parquet-backed implementation of the event store.
type ParquetEventStore struct{}

var _ contract.EventStore = &ParquetEventStore{} // Compile-time check

// NewParquetEventStore creates a new Parquet-backed event store.
func NewParquetEventStore() *ParquetEventStore {
	return &ParquetEventStore{}
}

// LoadDecisions reads and validates every decision row of the dataset.
// Source-file order is preserved so downstream tie-breaking is stable.
func (s *ParquetEventStore) LoadDecisions(ctx context.Context, datasetDir string) ([]schema.Decision, error) {
	files, err := resolveTableFiles(datasetDir, schema.DecisionsTable)
	if err != nil {
		return nil, err
	}

	var rows []schema.Decision
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		part, err := parquet.ReadFile[schema.Decision](f)
		if err != nil {
			return nil, fmt.Errorf("failed to read decisions from %s: %w", f, err)
		}
		rows = append(rows, part...)
	}

	for i, d := range rows {
		if err := validateDecision(d, i); err != nil {
			return nil, err
		}
	}
	return rows, nil
}

// LoadEvents reads and validates every event row of the dataset.
func (s *ParquetEventStore) LoadEvents(ctx context.Context, datasetDir string) ([]schema.Event, error) {
	files, err := resolveTableFiles(datasetDir, schema.EventsTable)
	if err != nil {
		return nil, err
	}

	var rows []schema.Event
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		part, err := parquet.ReadFile[schema.Event](f)
		if err != nil {
			return nil, fmt.Errorf("failed to read events from %s: %w", f, err)
		}
		rows = append(rows, part...)
	}

	for i, e := range rows {
		if err := validateEvent(e, i); err != nil {
			return nil, err
		}
	}
	return rows, nil
}

// resolveTableFiles locates the Parquet files backing a logical table:
// either <dir>/<table>.parquet or every *.parquet under <dir>/<table>/,
// sorted by name for a stable read order.
func resolveTableFiles(datasetDir, table string) ([]string, error) {
	single := filepath.Join(datasetDir, table+".parquet")
	if info, err := os.Stat(single); err == nil && !info.IsDir() {
		return []string{single}, nil
	}

	tableDir := filepath.Join(datasetDir, table)
	if info, err := os.Stat(tableDir); err == nil && info.IsDir() {
		parts, err := filepath.Glob(filepath.Join(tableDir, "*.parquet"))
		if err != nil {
			return nil, err
		}
		if len(parts) == 0 {
			return nil, fmt.Errorf("table directory %s contains no parquet files", tableDir)
		}
		sort.Strings(parts)
		return parts, nil
	}

	return nil, fmt.Errorf("table %q not found under %s (expected %s.parquet or %s/)", table, datasetDir, table, table)
}

// validateDecision enforces the required decision fields at the store
// boundary so the engines can assume well-typed input.
func validateDecision(d schema.Decision, row int) error {
	if d.VisitorID == "" {
		return &SchemaError{Table: schema.DecisionsTable, Row: row, Field: "visitor_id"}
	}
	if d.ExperimentID == "" {
		return &SchemaError{Table: schema.DecisionsTable, Row: row, Field: "experiment_id"}
	}
	if d.VariationID == "" {
		return &SchemaError{Table: schema.DecisionsTable, Row: row, Field: "variation_id"}
	}
	if d.Timestamp.IsZero() {
		return &SchemaError{Table: schema.DecisionsTable, Row: row, Field: "timestamp"}
	}
	return nil
}

// validateEvent enforces the required event fields at the store boundary.
func validateEvent(e schema.Event, row int) error {
	if e.VisitorID == "" {
		return &SchemaError{Table: schema.EventsTable, Row: row, Field: "visitor_id"}
	}
	if e.EventName == "" {
		return &SchemaError{Table: schema.EventsTable, Row: row, Field: "event_name"}
	}
	if e.Timestamp.IsZero() {
		return &SchemaError{Table: schema.EventsTable, Row: row, Field: "timestamp"}
	}
	for _, ref := range e.Experiments {
		if ref.ExperimentID == "" {
			return &SchemaError{Table: schema.EventsTable, Row: row, Field: "experiments.experiment_id"}
		}
		if ref.VariationID == "" {
			return &SchemaError{Table: schema.EventsTable, Row: row, Field: "experiments.variation_id"}
		}
	}
	return nil
}
