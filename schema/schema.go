// Package schema has configs, models and global variables for all parts of attrib.
package schema

import "time"

// Decision represents a single exposure record: a subject was shown a
// specific variation of an experiment at a point in time. The struct tags
// drive Parquet schema inference for both reading and writing.
type Decision struct {
	VisitorID    string    `parquet:"visitor_id,snappy" json:"visitor_id"`
	SessionID    string    `parquet:"session_id,optional,snappy" json:"session_id,omitempty"`
	ExperimentID string    `parquet:"experiment_id,snappy" json:"experiment_id"`
	VariationID  string    `parquet:"variation_id,snappy" json:"variation_id"`
	Timestamp    time.Time `parquet:"timestamp,snappy" json:"timestamp"`
	IsHoldback   bool      `parquet:"is_holdback,snappy" json:"is_holdback"`

	// ProcessTimestamp is the server-received time. It is carried for
	// upstream storage partitioning and never consulted by attribution.
	ProcessTimestamp time.Time `parquet:"process_timestamp,optional,snappy" json:"process_timestamp,omitempty"`
}

// SubjectID returns the value of the column selected as the grouping key.
// Unknown field names fall back to visitor_id; configuration validation
// rejects them before any engine runs.
func (d Decision) SubjectID(field string) string {
	switch field {
	case SessionIDField:
		return d.SessionID
	default:
		return d.VisitorID
	}
}

// ExperimentRef is one (experiment, variation) pair pre-attributed to an
// event by the upstream enrichment process.
type ExperimentRef struct {
	ExperimentID string `parquet:"experiment_id,snappy" json:"experiment_id"`
	VariationID  string `parquet:"variation_id,snappy" json:"variation_id"`
}

// Event represents a single conversion record: a visitor triggered a named
// event. Experiments holds the ordered enrichment list and may be empty.
type Event struct {
	VisitorID   string          `parquet:"visitor_id,snappy" json:"visitor_id"`
	EventName   string          `parquet:"event_name,snappy" json:"event_name"`
	Timestamp   time.Time       `parquet:"timestamp,snappy" json:"timestamp"`
	Experiments []ExperimentRef `parquet:"experiments,list" json:"experiments"`
}

// ExperimentSubject is one row per unique (experiment_id, subject_id) pair:
// the variation and timestamp of that subject's earliest decision for the
// experiment inside the analysis window.
type ExperimentSubject struct {
	SubjectID    string    `parquet:"subject_id,snappy" json:"subject_id"`
	ExperimentID string    `parquet:"experiment_id,snappy" json:"experiment_id"`
	VariationID  string    `parquet:"variation_id,snappy" json:"variation_id"`
	Timestamp    time.Time `parquet:"timestamp,snappy" json:"timestamp"`
}
