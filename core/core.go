// Package core has core logic for windowing, attribution and reporting.
package core

import (
	"context"
	"time"

	"github.com/huangsam/attrib/internal/contract"
	"github.com/huangsam/attrib/internal/outwriter"
	"github.com/huangsam/attrib/schema"
)

// windowFromConfig builds the analysis window from validated configuration.
func windowFromConfig(cfg *contract.Config) Window {
	start, end := cfg.Window()
	return Window{Start: start, End: end}
}

// GetSubjectsResults loads the decisions table and computes the
// experiment-subjects rows for the configured window. It is shared by the
// CLI and MCP surfaces.
func GetSubjectsResults(ctx context.Context, cfg *contract.Config, es contract.EventStore) ([]schema.ExperimentSubject, error) {
	decisions, err := es.LoadDecisions(ctx, cfg.DatasetPath)
	if err != nil {
		return nil, err
	}
	filtered := FilterDecisions(decisions, windowFromConfig(cfg))
	return AttributeSubjects(filtered, cfg.SubjectIDField), nil
}

// GetReportResults loads both tables and computes the visitor and conversion
// rollups for the configured policy and window.
func GetReportResults(ctx context.Context, cfg *contract.Config, es contract.EventStore) (schema.AttributionReport, error) {
	decisions, err := es.LoadDecisions(ctx, cfg.DatasetPath)
	if err != nil {
		return schema.AttributionReport{}, err
	}
	events, err := es.LoadEvents(ctx, cfg.DatasetPath)
	if err != nil {
		return schema.AttributionReport{}, err
	}
	return BuildReport(decisions, events, windowFromConfig(cfg), cfg.Policy, cfg.SubjectIDField), nil
}

// abortRun closes a run record after a pipeline failure so no dangling open
// runs accumulate in the history.
func abortRun(rs contract.RunStore, runID int64) {
	if err := rs.EndRun(runID, time.Now(), 0); err != nil {
		contract.LogWarn("failed to close aborted run record", err)
	}
}

// ExecuteSubjects runs the subject attribution pipeline, optionally persists
// the partitioned table, prints the results, and records the run. It serves
// as the main entry point for the 'subjects' command.
func ExecuteSubjects(ctx context.Context, cfg *contract.Config, es contract.EventStore, rs contract.RunStore) error {
	start := time.Now()

	runID, err := rs.BeginRun(start, "subjects", cfg.ConfigParams())
	if err != nil {
		return err
	}

	subjects, err := GetSubjectsResults(ctx, cfg, es)
	if err != nil {
		abortRun(rs, runID)
		return err
	}

	if len(subjects) == 0 {
		contract.LogWarn("no decisions matched the analysis window", nil)
	}

	if cfg.WriteDir != "" {
		if err := es.WriteSubjects(subjects, cfg.WriteDir, cfg.Overwrite); err != nil {
			abortRun(rs, runID)
			return err
		}
	}

	rollup := SubjectReport(subjects)
	duration := time.Since(start)
	if err := outwriter.WriteSubjectResults(subjects, rollup, cfg, duration); err != nil {
		abortRun(rs, runID)
		return err
	}

	return rs.EndRun(runID, time.Now(), len(subjects))
}

// ExecuteReport runs the conversion attribution pipeline for the configured
// policy, prints the results, and records the run. It serves as the main
// entry point for the 'report' command.
func ExecuteReport(ctx context.Context, cfg *contract.Config, es contract.EventStore, rs contract.RunStore) error {
	start := time.Now()

	runID, err := rs.BeginRun(start, "report", cfg.ConfigParams())
	if err != nil {
		return err
	}

	if caveat := contract.SubjectFieldCaveat(cfg.SubjectIDField); caveat != "" {
		contract.LogWarn(caveat, nil)
	}

	report, err := GetReportResults(ctx, cfg, es)
	if err != nil {
		abortRun(rs, runID)
		return err
	}

	duration := time.Since(start)
	if err := outwriter.WriteReportResults(report, cfg, duration); err != nil {
		abortRun(rs, runID)
		return err
	}

	return rs.EndRun(runID, time.Now(), len(report.ConversionCounts))
}
