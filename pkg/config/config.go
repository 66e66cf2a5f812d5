// SPDX-License-Identifier: Apache-2.0

// Package config defines the Config the core consumes for up, status, and
// fresh. It is a plain value type: the cmd package is responsible for
// populating one from cobra/viper flags and environment variables, so that
// pkg/schemalane has no dependency on any particular CLI framework.
package config

const (
	// DefaultSchema is the Postgres schema searched for the history table
	// and, for fresh, the schema whose user tables are dropped.
	DefaultSchema = "public"

	// DefaultDir is the directory Discover walks for migration files.
	DefaultDir = "./migrations"

	// DefaultHistoryTable is the name of the Flyway-compatible history
	// table created in Schema.
	DefaultHistoryTable = "flyway_schema_history"

	// DefaultFormat is status's default report rendering.
	DefaultFormat = "table"
)

// Format selects how status renders its report.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
)

// Config carries every setting shared by up, status, and fresh. InstalledBy
// defaults to the connection's current database user when left empty; the
// core, not this package, resolves that default since it requires a live
// connection.
type Config struct {
	DatabaseURL  string
	Schema       string
	Dir          string
	HistoryTable string
	InstalledBy  string

	// Format and FailOnPending apply only to status.
	Format        Format
	FailOnPending bool

	// Confirm gates fresh's destructive guard. up and status ignore it.
	Confirm bool
}

// WithDefaults returns a copy of c with every unset field set to its
// documented default. It never touches InstalledBy, which is resolved
// against the live connection by the engine.
func (c Config) WithDefaults() Config {
	if c.Schema == "" {
		c.Schema = DefaultSchema
	}
	if c.Dir == "" {
		c.Dir = DefaultDir
	}
	if c.HistoryTable == "" {
		c.HistoryTable = DefaultHistoryTable
	}
	if c.Format == "" {
		c.Format = FormatTable
	}
	return c
}
