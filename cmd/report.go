package cmd

import (
	"github.com/huangsam/attrib/core"
	"github.com/huangsam/attrib/internal/contract"
	"github.com/huangsam/attrib/internal/runstore"
	"github.com/spf13/cobra"
)

// reportCmd computes the conversion attribution report.
var reportCmd = &cobra.Command{
	Use:   "report [dataset-path]",
	Short: "Show unique visitors and attributed conversions per variation.",
	Long: `Join the decisions and events tables and count, per (experiment, variation),
the unique visitors exposed and the conversions attributed to them.

Two policies are supported:
- web:       an in-window event counts for every experiment/variation pair
             in its enrichment list, whether or not the exposure happened
             inside the window
- fullstack: an event counts only when the subject has an in-window,
             non-holdback exposure for the pair, and the event is no
             earlier than that exposure

Events are keyed by visitor_id. Running a report with
--subject-id-field session_id keys decisions by session, which cannot join
against events: Full Stack conversions come up empty and a warning is
printed. Prefer the default visitor_id keying for conversion reports.

Examples:
  # Web policy (default) across all time
  attrib report ./dataset

  # Full Stack policy over a bounded window
  attrib report ./dataset --policy fullstack --start 2024-01-01T00:00:00Z --end 2024-02-01T00:00:00Z

  # Export conversion counts for dashboards
  attrib report ./dataset --output csv --output-file conversions.csv`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteReport(rootCtx, cfg, eventStore, runstore.GetStore()); err != nil {
			contract.LogFatal("Cannot compute conversion report", err)
		}
	},
}
