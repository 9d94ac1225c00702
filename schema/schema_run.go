package schema

import "time"

// RunStatus represents the status of the run-history store.
type RunStatus struct {
	Backend       string    `json:"backend"`
	Connected     bool      `json:"connected"`
	TotalRuns     int       `json:"total_runs"`
	LastRunID     int64     `json:"last_run_id"`
	LastRunTime   time.Time `json:"last_run_time"`
	OldestRunTime time.Time `json:"oldest_run_time"`
}

// RunRecord represents a row from the attrib_runs table. The struct tags
// drive the Parquet export of run history.
type RunRecord struct {
	RunID         int64      `parquet:"run_id,snappy" json:"run_id"`
	StartTime     time.Time  `parquet:"start_time,snappy" json:"start_time"`
	EndTime       *time.Time `parquet:"end_time,optional,snappy" json:"end_time,omitempty"`
	RunDurationMs *int32     `parquet:"run_duration_ms,optional,snappy" json:"run_duration_ms,omitempty"`
	Command       string     `parquet:"command,snappy" json:"command"`
	RowsProduced  *int32     `parquet:"rows_produced,optional,snappy" json:"rows_produced,omitempty"`
	ConfigParams  *string    `parquet:"config_params,optional,snappy" json:"config_params,omitempty"`
}
