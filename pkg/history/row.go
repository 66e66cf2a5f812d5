// SPDX-License-Identifier: Apache-2.0

// Package history owns the Flyway-compatible history table: its schema,
// bootstrap, and the load/append operations the engine drives it with.
package history

import "time"

// Row is one record of the history table, a Flyway-compatible layout.
// Rows are appended, never mutated, except by fresh which drops and
// reseeds the whole table.
type Row struct {
	InstalledRank int
	Version       *string
	Description   string
	Type          string
	Script        string
	Checksum      *int32
	InstalledBy   string
	InstalledOn   time.Time
	ExecutionTime int
	Success       bool
}

// NewRow is populated by the caller before Append assigns InstalledRank and
// InstalledOn.
type NewRow struct {
	Version       *string
	Description   string
	Type          string
	Script        string
	Checksum      *int32
	InstalledBy   string
	ExecutionTime int
	Success       bool
}
