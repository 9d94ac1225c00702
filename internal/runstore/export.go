package runstore

import (
	"fmt"
	"os"

	"github.com/huangsam/attrib/schema"
	"github.com/parquet-go/parquet-go"
)

// ExportRuns writes the full run history to a Parquet file.
func ExportRuns(outputFile string) error {
	records, err := GetStore().ListRuns()
	if err != nil {
		return fmt.Errorf("failed to list run records: %w", err)
	}
	if len(records) == 0 {
		return fmt.Errorf("no run records to export")
	}

	f, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = f.Close() }()

	writer := parquet.NewGenericWriter[schema.RunRecord](f)
	if _, err := writer.Write(records); err != nil {
		return fmt.Errorf("failed to write run records: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}

	fmt.Printf("Exported %d run records to %s\n", len(records), outputFile)
	return nil
}
