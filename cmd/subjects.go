package cmd

import (
	"github.com/huangsam/attrib/core"
	"github.com/huangsam/attrib/internal/contract"
	"github.com/huangsam/attrib/internal/runstore"
	"github.com/spf13/cobra"
)

// subjectsCmd computes experiment subjects from decision logs.
var subjectsCmd = &cobra.Command{
	Use:   "subjects [dataset-path]",
	Short: "Show each subject's first exposure per experiment.",
	Long: `Replay the decisions table and reduce it to experiment subjects: one row
per (experiment, subject) carrying the variation and timestamp of the
earliest in-window decision.

Use this to:
- Audit which variation a given visitor was bucketed into
- Build the exposure denominator for downstream analyses
- Export per-experiment subject tables for warehouse ingestion

Examples:
  # Subjects across all time
  attrib subjects ./dataset

  # Subjects first exposed in the last week
  attrib subjects ./dataset --start "7 days ago"

  # Group by session instead of visitor
  attrib subjects ./dataset --subject-id-field session_id

  # Persist one Parquet partition per experiment, replacing any prior table
  attrib subjects ./dataset --write-dir ./out --overwrite

  # Export the rollup to CSV
  attrib subjects ./dataset --output csv --output-file subjects.csv`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteSubjects(rootCtx, cfg, eventStore, runstore.GetStore()); err != nil {
			contract.LogFatal("Cannot compute experiment subjects", err)
		}
	},
}
