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

// WriteReportResults outputs the attribution report, dispatching based on
// the output format configured.
func WriteReportResults(report schema.AttributionReport, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeReportJSONResults(report, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeReportCSVResults(report, cfg); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := writeReportParquetResults(report, cfg); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		// Default to human-readable tables
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeReportTables(report, cfg, duration, w)
		}, "Wrote table")
	}
	return nil
}

// writeReportJSONResults handles opening the file and calling the JSON writer.
func writeReportJSONResults(report schema.AttributionReport, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSON(w, report)
	}, "Wrote JSON")
}

// writeReportCSVResults flattens the report to one row per (experiment,
// variation, event) with the pair's unique-visitor count repeated. Pairs
// without conversions keep one row with an empty event so their visitor
// counts survive the export.
func writeReportCSVResults(report schema.AttributionReport, cfg *contract.Config) error {
	visitors := visitorsByPair(report.VisitorCounts)

	header := []string{"policy", "experiment_id", "variation_id", "event_name", "conversions", "unique_visitors"}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
			policy := string(report.Policy)
			covered := make(map[pairID]bool)
			for _, c := range report.ConversionCounts {
				pair := pairID{c.ExperimentID, c.VariationID}
				covered[pair] = true
				row := []string{policy, c.ExperimentID, c.VariationID, c.EventName,
					strconv.Itoa(c.Conversions), strconv.Itoa(visitors[pair])}
				if err := cw.Write(row); err != nil {
					return err
				}
			}
			for _, v := range report.VisitorCounts {
				pair := pairID{v.ExperimentID, v.VariationID}
				if covered[pair] {
					continue
				}
				row := []string{policy, v.ExperimentID, v.VariationID, "", "0", strconv.Itoa(v.UniqueVisitors)}
				if err := cw.Write(row); err != nil {
					return err
				}
			}
			return nil
		})
	}, "Wrote CSV")
}

// writeReportParquetResults exports the conversion counts as Parquet.
func writeReportParquetResults(report schema.AttributionReport, cfg *contract.Config) error {
	if cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}
	return writeParquetFile(cfg.OutputFile, report.ConversionCounts)
}

// writeReportTables generates and writes the human-readable tables.
func writeReportTables(report schema.AttributionReport, cfg *contract.Config, duration time.Duration, writer io.Writer) error {
	idWidth := getMaxTableIDWidth(cfg)
	fmtFloat := floatFormatter(cfg.Precision)
	visitors := visitorsByPair(report.VisitorCounts)

	policyLabel := contract.GetPlainPolicyLabel(report.Policy)
	if cfg.UseColors {
		policyLabel = contract.GetColorPolicyLabel(report.Policy)
	}
	if _, err := fmt.Fprintf(writer, "Attribution policy: %s\n", policyLabel); err != nil {
		return err
	}

	// 1. Unique visitors per (experiment, variation)
	visitorTable := tablewriter.NewWriter(writer)
	visitorTable.Header([]string{"Experiment", "Variation", "Unique Visitors"})
	visitorTable.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})
	var visitorData [][]string
	for _, v := range report.VisitorCounts {
		visitorData = append(visitorData, []string{
			contract.TruncateID(v.ExperimentID, idWidth),
			contract.TruncateID(v.VariationID, idWidth),
			strconv.Itoa(v.UniqueVisitors),
		})
	}
	if err := visitorTable.Bulk(visitorData); err != nil {
		return err
	}
	if err := visitorTable.Render(); err != nil {
		return err
	}

	// 2. Conversions per (experiment, variation, event), with the pair's
	// conversion rate when a visitor count exists.
	convTable := tablewriter.NewWriter(writer)
	convTable.Header([]string{"Experiment", "Variation", "Event", "Conversions", "Rate"})
	convTable.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})
	var convData [][]string
	for _, c := range report.ConversionCounts {
		rate := "-"
		if n := visitors[pairID{c.ExperimentID, c.VariationID}]; n > 0 {
			rate = fmtFloat(float64(c.Conversions) / float64(n))
		}
		convData = append(convData, []string{
			contract.TruncateID(c.ExperimentID, idWidth),
			contract.TruncateID(c.VariationID, idWidth),
			contract.TruncateID(c.EventName, idWidth),
			strconv.Itoa(c.Conversions),
			rate,
		})
	}
	if err := convTable.Bulk(convData); err != nil {
		return err
	}
	if err := convTable.Render(); err != nil {
		return err
	}

	totalConversions := 0
	for _, c := range report.ConversionCounts {
		totalConversions += c.Conversions
	}
	if _, err := fmt.Fprintf(writer, "Attributed %d conversions across %d variations\n", totalConversions, len(report.VisitorCounts)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Attribution completed in %v. Runs backend: %s\n", duration, cfg.RunsBackend); err != nil {
		return err
	}
	return nil
}

// pairID keys the visitor lookup for the joined views above.
type pairID struct {
	experimentID string
	variationID  string
}

// visitorsByPair indexes unique-visitor counts by (experiment, variation).
func visitorsByPair(counts []schema.VisitorCount) map[pairID]int {
	out := make(map[pairID]int, len(counts))
	for _, v := range counts {
		out[pairID{v.ExperimentID, v.VariationID}] = v.UniqueVisitors
	}
	return out
}
