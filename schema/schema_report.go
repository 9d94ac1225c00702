package schema

// VisitorCount is the number of distinct subjects counted toward an
// (experiment, variation) pair under a policy.
type VisitorCount struct {
	ExperimentID   string `parquet:"experiment_id,snappy" json:"experiment_id"`
	VariationID    string `parquet:"variation_id,snappy" json:"variation_id"`
	UniqueVisitors int    `parquet:"unique_visitors,snappy" json:"unique_visitors"`
}

// ConversionCount is the number of attributed conversion events for an
// (experiment, variation, event) triple under a policy. Each event
// occurrence counts once; counts are not deduplicated by subject.
type ConversionCount struct {
	ExperimentID string `parquet:"experiment_id,snappy" json:"experiment_id"`
	VariationID  string `parquet:"variation_id,snappy" json:"variation_id"`
	EventName    string `parquet:"event_name,snappy" json:"event_name"`
	Conversions  int    `parquet:"conversions,snappy" json:"conversions"`
}

// SubjectReportRow is one row of the experiment-subjects rollup:
// GROUP BY (experiment_id, variation_id) -> COUNT.
type SubjectReportRow struct {
	ExperimentID string `parquet:"experiment_id,snappy" json:"experiment_id"`
	VariationID  string `parquet:"variation_id,snappy" json:"variation_id"`
	Subjects     int    `parquet:"subjects,snappy" json:"subjects"`
}

// AttributionReport bundles the two rollups a single report run produces.
type AttributionReport struct {
	Policy           AttributionPolicy `json:"policy"`
	VisitorCounts    []VisitorCount    `json:"visitor_counts"`
	ConversionCounts []ConversionCount `json:"conversion_counts"`
}
