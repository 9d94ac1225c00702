package cmd

import (
	"fmt"

	"github.com/huangsam/attrib/internal/contract"
	"github.com/huangsam/attrib/internal/runstore"
	"github.com/huangsam/attrib/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// runsSetup loads minimal configuration needed for run tracking operations.
// This is used by commands that need run store access without full shared setup.
func runsSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get runs-related config values
	backend := schema.DatabaseBackend(viper.GetString("runs-backend"))
	connStr := viper.GetString("runs-db-connect")

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// Initialize run tracking with the loaded config
	if err := runstore.InitStore(backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize run tracking: %w", err)
	}

	cfg.RunsBackend = backend
	cfg.RunsDBConnect = connStr

	return nil
}

// runsSetupWrapper wraps runsSetup to provide PreRunE for runs commands.
func runsSetupWrapper(_ *cobra.Command, _ []string) error {
	return runsSetup()
}

// runsMigrateSetup loads minimal configuration needed for migrate operations.
// This is a specialized setup that does NOT initialize the store or create
// tables, allowing migrations to run on a fresh database.
func runsMigrateSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend := schema.DatabaseBackend(viper.GetString("runs-backend"))
	connStr := viper.GetString("runs-db-connect")

	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = runstore.GetRunsDBFilePath()
	}

	cfg.RunsBackend = backend
	cfg.RunsDBConnect = connStr

	return nil
}

// runsMigrateSetupWrapper wraps runsMigrateSetup to provide PreRunE for migrate command.
func runsMigrateSetupWrapper(_ *cobra.Command, _ []string) error {
	return runsMigrateSetup()
}

// runsCmd focused on run tracking management.
//
// Note: Runs subcommands use minimal initialization (runsSetup) instead of
// the full sharedSetup used by attribution commands. This avoids dataset
// validation and window parsing for simple bookkeeping operations.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage attribution run history",
	Long: `Manage the run history that attrib records for every attribution command.

Each subjects or report invocation is tracked with its start/end time,
duration, row count, and the configuration it ran with. This enables
auditing what was computed, when, and with which parameters.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show run history statistics and connection info
  clear   - Remove all run history
  export  - Export run history to a Parquet file
  migrate - Run database schema migrations

Examples:
  # Check run history
  attrib runs status

  # Start the history fresh
  attrib runs clear`,
}

// runsClearCmd clears the run history.
var runsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded attribution runs",
	Long: `Delete all recorded run history from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Empties the runs table

Examples:
  # Clear SQLite history (default)
  attrib runs clear

  # Clear MySQL history (set connection string via env variable)
  ATTRIB_RUNS_BACKEND=mysql ATTRIB_RUNS_DB_CONNECT="..." attrib runs clear`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := runstore.ClearRuns(cfg.RunsBackend, runstore.GetRunsDBFilePath(), cfg.RunsDBConnect); err != nil {
			contract.LogFatal("Failed to clear run history", err)
		}
		fmt.Println("Run history cleared successfully.")
	},
}

// runsStatusCmd shows run tracking status.
var runsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display run history statistics and connection details",
	Long: `Show detailed information about recorded attribution runs.

Displays:
- Backend type and connection status
- Total number of recorded runs
- Last and oldest run timestamps

Examples:
  # Check run history status
  attrib runs status`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := runstore.GetStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get run history status", err)
		}
		runstore.PrintRunStatus(status)
	},
}

// runsExportCmd exports run history to a Parquet file.
var runsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export run history to a Parquet file",
	Long: `Export all recorded attribution runs to a Parquet file.

The export includes run timing, duration, row counts, and the JSON-encoded
configuration each run used. Useful for auditing run history with external
analytics tools.

Examples:
  # Export run history
  attrib runs export --output-file runs.parquet`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		outputFile := viper.GetString("output-file")
		if outputFile == "" {
			contract.LogFatal("Output file is required for export", fmt.Errorf("use --output-file to specify the destination"))
		}
		if err := runstore.ExportRuns(outputFile); err != nil {
			contract.LogFatal("Failed to export run history", err)
		}
	},
}

// runsMigrateCmd runs database migrations for the run store.
var runsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the run tracking store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  attrib runs migrate

  # Migrate to specific version
  attrib runs migrate --target-version 1

  # Rollback to initial state
  attrib runs migrate --target-version 0`,
	PreRunE: runsMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := runstore.MigrateRuns(cfg.RunsBackend, cfg.RunsDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
