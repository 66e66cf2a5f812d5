// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"database/sql"

	"github.com/schemalane/schemalane/cmd/flags"
	"github.com/schemalane/schemalane/internal/connstr"
	"github.com/schemalane/schemalane/internal/logging"
	"github.com/schemalane/schemalane/internal/pgdb"
	"github.com/schemalane/schemalane/pkg/config"
	"github.com/schemalane/schemalane/pkg/schemalane"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is the schemalane version, overridden at build time via ldflags.
var Version = "development"

func init() {
	viper.SetEnvPrefix("SCHEMALANE")
	viper.AutomaticEnv()
}

var rootCmd = &cobra.Command{
	Use:          "schemalane",
	Short:        "A forward-only PostgreSQL schema migration runner",
	SilenceUsage: true,
	Version:      Version,
}

// exitCode is set by each subcommand's RunE before returning, so that
// Execute can surface exit codes beyond cobra's own success/failure
// distinction (the spec's exit-code table runs 0 through 6).
var exitCode int

// newEngine opens a connection and constructs an Engine from the
// viper-bound flags, wiring the pterm-backed logger in place of the library
// default no-op logger.
func newEngine(confirm bool) (*schemalane.Engine, func() error, error) {
	schema := flags.Schema()

	// Unqualified identifiers in migration SQL (the common case) resolve
	// against the connection's search_path, not the schema the history
	// table is written to; scope the connection to the configured schema
	// so both agree.
	connStr, err := connstr.AppendSearchPathOption(flags.DatabaseURL(), schema)
	if err != nil {
		return nil, nil, err
	}

	sqlDB, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, nil, err
	}
	rdb := &pgdb.RDB{DB: sqlDB}

	cfg := config.Config{
		DatabaseURL:  flags.DatabaseURL(),
		Schema:       schema,
		Dir:          flags.Dir(),
		HistoryTable: flags.HistoryTable(),
		InstalledBy:  flags.InstalledBy(),
		Confirm:      confirm,
	}

	eng := schemalane.New(rdb, cfg, schemalane.WithLogger(logging.NewLogger()), schemalane.WithBinaryVersion(Version))
	return eng, sqlDB.Close, nil
}

// Execute runs the root command and returns the process exit code, which
// may be any of the values described in the exit-code table (0 through 6),
// not merely success or failure.
func Execute() int {
	exitCode = 0

	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(upCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(freshCmd())

	if err := rootCmd.Execute(); err != nil && exitCode == 0 {
		return 1
	}
	return exitCode
}
