package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/attrib/internal/contract"
	"github.com/huangsam/attrib/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteSubjectResults outputs the experiment-subjects table and its rollup,
// dispatching based on the output format configured. The display is capped
// at cfg.ResultLimit subject rows; the rollup always covers every row.
func WriteSubjectResults(subjects []schema.ExperimentSubject, rollup []schema.SubjectReportRow, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeSubjectJSONResults(subjects, rollup, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeSubjectCSVResults(subjects, cfg); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := writeSubjectParquetResults(subjects, cfg); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		// Default to human-readable tables
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSubjectTables(subjects, rollup, cfg, duration, w)
		}, "Wrote table")
	}
	return nil
}

// subjectsPayload is the JSON envelope for a subjects run.
type subjectsPayload struct {
	Subjects []schema.ExperimentSubject `json:"subjects"`
	Rollup   []schema.SubjectReportRow  `json:"rollup"`
}

// writeSubjectJSONResults handles opening the file and calling the JSON writer.
func writeSubjectJSONResults(subjects []schema.ExperimentSubject, rollup []schema.SubjectReportRow, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSON(w, subjectsPayload{Subjects: limitSubjects(subjects, cfg.ResultLimit), Rollup: rollup})
	}, "Wrote JSON")
}

// writeSubjectCSVResults handles opening the file and calling the CSV writer.
func writeSubjectCSVResults(subjects []schema.ExperimentSubject, cfg *contract.Config) error {
	header := []string{"subject_id", "experiment_id", "variation_id", "timestamp"}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
			for _, s := range limitSubjects(subjects, cfg.ResultLimit) {
				row := []string{s.SubjectID, s.ExperimentID, s.VariationID, s.Timestamp.Format(contract.DateTimeFormat)}
				if err := cw.Write(row); err != nil {
					return err
				}
			}
			return nil
		})
	}, "Wrote CSV")
}

// writeSubjectParquetResults exports the full subjects table as Parquet.
// The limit does not apply here since the file feeds downstream consumers.
func writeSubjectParquetResults(subjects []schema.ExperimentSubject, cfg *contract.Config) error {
	if cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}
	return writeParquetFile(cfg.OutputFile, subjects)
}

// writeSubjectTables generates and writes the human-readable tables.
func writeSubjectTables(subjects []schema.ExperimentSubject, rollup []schema.SubjectReportRow, cfg *contract.Config, duration time.Duration, writer io.Writer) error {
	idWidth := getMaxTableIDWidth(cfg)

	// 1. Subject rows, capped at the result limit
	table := tablewriter.NewWriter(writer)
	table.Header([]string{"Rank", "Subject", "Experiment", "Variation", "First Decision"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for i, s := range limitSubjects(subjects, cfg.ResultLimit) {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			contract.TruncateID(s.SubjectID, idWidth),
			contract.TruncateID(s.ExperimentID, idWidth),
			contract.TruncateID(s.VariationID, idWidth),
			s.Timestamp.Format(contract.DateTimeFormat),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	// 2. Per-variation rollup over the full table
	rollupTable := tablewriter.NewWriter(writer)
	rollupTable.Header([]string{"Experiment", "Variation", "Subjects"})
	rollupTable.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})
	var rollupData [][]string
	for _, r := range rollup {
		rollupData = append(rollupData, []string{
			contract.TruncateID(r.ExperimentID, idWidth),
			contract.TruncateID(r.VariationID, idWidth),
			strconv.Itoa(r.Subjects),
		})
	}
	if err := rollupTable.Bulk(rollupData); err != nil {
		return err
	}
	if err := rollupTable.Render(); err != nil {
		return err
	}

	shown := len(limitSubjects(subjects, cfg.ResultLimit))
	if _, err := fmt.Fprintf(writer, "Showing %d of %d experiment subjects across %d variations\n", shown, len(subjects), len(rollup)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Attribution completed in %v. Runs backend: %s\n", duration, cfg.RunsBackend); err != nil {
		return err
	}
	return nil
}

// limitSubjects caps the display slice without copying.
func limitSubjects(subjects []schema.ExperimentSubject, limit int) []schema.ExperimentSubject {
	if limit > 0 && len(subjects) > limit {
		return subjects[:limit]
	}
	return subjects
}
