package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// AttributionPolicy represents the counting model used for conversions.
	AttributionPolicy string

	// DatabaseBackend represents the database backend for run tracking.
	DatabaseBackend string
)

// All output modes supported.
const (
	TextOut    OutputMode = "text" // default
	CSVOut     OutputMode = "csv"
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All attribution policies supported.
const (
	// WebPolicy counts exposure-ever conversions: an in-window event is
	// attributed to every pair in its enrichment list, whether or not a
	// decision exists in the window.
	WebPolicy AttributionPolicy = "web" // default

	// FullStackPolicy counts exposure-in-window conversions: an event is
	// attributed only to pairs the subject has an in-window, non-holdback
	// decision for, and only if the event is no earlier than that decision.
	FullStackPolicy AttributionPolicy = "fullstack"
)

// All database backends supported for run tracking.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// Decision columns that may serve as the subject grouping key.
const (
	VisitorIDField = "visitor_id" // default
	SessionIDField = "session_id"
)

// Logical table names the event store resolves within a dataset directory.
const (
	DecisionsTable = "decisions"
	EventsTable    = "events"
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut:    {},
	CSVOut:     {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidAttributionPolicies lists all valid attribution policies.
var ValidAttributionPolicies = map[AttributionPolicy]struct{}{
	WebPolicy:       {},
	FullStackPolicy: {},
}

// ValidDatabaseBackends lists all valid run-tracking backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidSubjectIDFields lists all Decision columns accepted as grouping key.
var ValidSubjectIDFields = map[string]struct{}{
	VisitorIDField: {},
	SessionIDField: {},
}
