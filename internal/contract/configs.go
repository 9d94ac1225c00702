package contract

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/huangsam/attrib/schema"
)

// Default values for configuration.
const (
	DefaultResultLimit = 50
	MaxResultLimit     = 10000
	DefaultPrecision   = 2
)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// Config holds the runtime configuration for an attribution run.
// This struct remains the "final, validated" config.
type Config struct {
	DatasetPath    string
	SubjectIDField string
	StartTime      time.Time // zero means unbounded start
	EndTime        time.Time // zero means unbounded end
	Policy         schema.AttributionPolicy
	ResultLimit    int
	Precision      int
	Output         schema.OutputMode
	OutputFile     string
	WriteDir       string
	Overwrite      bool
	Width          int // Terminal width override (0 = auto-detect)
	UseColors      bool

	RunsBackend   schema.DatabaseBackend
	RunsDBConnect string // Please use env var as this is plaintext
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	DatasetPathStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	SubjectIDField string `mapstructure:"subject-id-field"`
	Start          string `mapstructure:"start"`
	End            string `mapstructure:"end"`
	Limit          int    `mapstructure:"limit"`
	Precision      int    `mapstructure:"precision"`
	Output         string `mapstructure:"output"`
	OutputFile     string `mapstructure:"output-file"`
	Width          int    `mapstructure:"width"`
	Color          string `mapstructure:"color"`
	RunsBackend    string `mapstructure:"runs-backend"`
	RunsDBConnect  string `mapstructure:"runs-db-connect"`

	// --- Fields from reportCmd.Flags() ---
	Policy string `mapstructure:"policy"`

	// --- Fields from subjectsCmd.Flags() ---
	WriteDir  string `mapstructure:"write-dir"`
	Overwrite bool   `mapstructure:"overwrite"`
}

// Clone returns a copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// Window returns the configured analysis window bounds as a pair. Zero
// values mean the corresponding side is unbounded.
func (c *Config) Window() (time.Time, time.Time) {
	return c.StartTime, c.EndTime
}

// ConfigParams returns the run parameters worth persisting with a run record.
func (c *Config) ConfigParams() map[string]any {
	params := map[string]any{
		"dataset":          c.DatasetPath,
		"subject_id_field": c.SubjectIDField,
		"policy":           string(c.Policy),
	}
	if !c.StartTime.IsZero() {
		params["window_start"] = c.StartTime.Format(DateTimeFormat)
	}
	if !c.EndTime.IsZero() {
		params["window_end"] = c.EndTime.Format(DateTimeFormat)
	}
	return params
}

// ProcessAndValidate performs all complex parsing and validation on the raw
// inputs and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processTimeRange(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	if err := resolveDatasetPath(cfg, input); err != nil {
		return err
	}
	return nil
}

// validateSimpleInputs handles the scalar fields with closed value sets.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- Subject ID field ---
	cfg.SubjectIDField = strings.ToLower(strings.TrimSpace(input.SubjectIDField))
	if cfg.SubjectIDField == "" {
		cfg.SubjectIDField = schema.VisitorIDField
	}
	if _, ok := schema.ValidSubjectIDFields[cfg.SubjectIDField]; !ok {
		return fmt.Errorf("invalid subject-id-field '%s'. must be visitor_id or session_id", input.SubjectIDField)
	}

	// --- Attribution policy ---
	cfg.Policy = schema.AttributionPolicy(strings.ToLower(input.Policy))
	if cfg.Policy == "" {
		cfg.Policy = schema.WebPolicy
	}
	if _, ok := schema.ValidAttributionPolicies[cfg.Policy]; !ok {
		return fmt.Errorf("invalid policy '%s'. must be web or fullstack", input.Policy)
	}

	// --- Output mode ---
	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if cfg.Output == "" {
		cfg.Output = schema.TextOut
	}
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output '%s'. must be text, csv, json or parquet", input.Output)
	}
	cfg.OutputFile = input.OutputFile

	// --- Result limit ---
	cfg.ResultLimit = input.Limit
	if cfg.ResultLimit <= 0 {
		cfg.ResultLimit = DefaultResultLimit
	}
	if cfg.ResultLimit > MaxResultLimit {
		return fmt.Errorf("limit %d exceeds maximum of %d", cfg.ResultLimit, MaxResultLimit)
	}

	// --- Precision ---
	cfg.Precision = input.Precision
	if cfg.Precision < 0 {
		return fmt.Errorf("precision must be >= 0, got %d", input.Precision)
	}

	// --- Remaining scalars ---
	cfg.WriteDir = input.WriteDir
	cfg.Overwrite = input.Overwrite
	cfg.Width = input.Width
	cfg.UseColors = parseBoolish(input.Color, true)

	return nil
}

// processTimeRange handles the date parsing and window validation. The
// default window is wide open; only explicit inputs set a bound.
func processTimeRange(cfg *Config, input *ConfigRawInput) error {
	now := time.Now()

	parse := func(s string) (time.Time, error) {
		if t, err := time.Parse(DateTimeFormat, s); err == nil {
			return t, nil
		}
		t, relErr := ParseRelativeTime(s, now)
		if relErr != nil {
			return time.Time{}, fmt.Errorf("expected absolute ISO8601 or 'N [units] ago': %w", relErr)
		}
		return t, nil
	}

	if input.Start != "" {
		t, err := parse(input.Start)
		if err != nil {
			return fmt.Errorf("invalid start date format for '%s': %w", input.Start, err)
		}
		cfg.StartTime = t
	}
	if input.End != "" {
		t, err := parse(input.End)
		if err != nil {
			return fmt.Errorf("invalid end date format for '%s': %w", input.End, err)
		}
		cfg.EndTime = t
	}

	if !cfg.StartTime.IsZero() && !cfg.EndTime.IsZero() && cfg.StartTime.After(cfg.EndTime) {
		return fmt.Errorf("start time (%s) cannot be after end time (%s)",
			cfg.StartTime.Format(DateTimeFormat), cfg.EndTime.Format(DateTimeFormat))
	}

	return nil
}

// RevalidateWindow re-parses window bounds on an already-validated config.
// Used by the MCP handlers, where per-request overrides arrive as strings.
func RevalidateWindow(cfg *Config, startStr, endStr string) error {
	input := &ConfigRawInput{Start: startStr, End: endStr}
	return processTimeRange(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of database
// connection strings for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("runs-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("runs-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates the run-tracking backend configuration.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	cfg.RunsBackend = schema.DatabaseBackend(strings.ToLower(input.RunsBackend))
	if cfg.RunsBackend == "" {
		cfg.RunsBackend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.RunsBackend]; !ok {
		return fmt.Errorf("invalid runs backend '%s'. must be sqlite, mysql, postgresql, none", input.RunsBackend)
	}
	cfg.RunsDBConnect = input.RunsDBConnect
	return ValidateDatabaseConnectionString(cfg.RunsBackend, cfg.RunsDBConnect)
}

// resolveDatasetPath verifies that the dataset path exists and is a directory.
func resolveDatasetPath(cfg *Config, input *ConfigRawInput) error {
	path := input.DatasetPathStr
	if path == "" {
		path = "."
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("dataset path %q is not accessible: %w", path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("dataset path %q is not a directory", path)
	}
	cfg.DatasetPath = path
	return nil
}

// parseBoolish interprets yes/no style flag values, falling back to def for
// anything unrecognized.
func parseBoolish(s string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1", "on":
		return true
	case "no", "false", "0", "off":
		return false
	default:
		return def
	}
}
