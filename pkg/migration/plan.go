// SPDX-License-Identifier: Apache-2.0

// Package migration discovers, validates, and orders the migration files in
// a directory into a Plan, and computes the checksum used to detect drift
// between that Plan and recorded history.
package migration

// Kind classifies how a Migration's payload is executed. FileSQL migrations
// carry raw SQL text executed verbatim; ExecutorBacked migrations resolve a
// named executor from a registry at apply time. The ExecutorBacked name
// mirrors the "RUST" type literal the history table inherits from its
// Flyway lineage, but any extension the discovery extension map assigns to
// it is executor-backed, not specifically Rust.
type Kind string

const (
	KindFileSQL        Kind = "SQL"
	KindExecutorBacked Kind = "RUST"
)

// Migration is an immutable descriptor produced by discovery. Two Migrations
// with the same VersionDisplay never coexist in a validated Plan.
type Migration struct {
	Kind Kind

	// Version is the parsed, orderable vector form of the version.
	Version []int64

	// VersionDisplay is the exact version string as it appeared in the
	// filename, preserved verbatim for history writes.
	VersionDisplay string

	// Description is lowercase with underscores, as stored; call
	// Migration.DisplayDescription for the space-separated form.
	Description string

	// Script is the filename as it appeared on disk.
	Script string

	// Checksum is the signed 32-bit digest of the migration's payload.
	Checksum int32

	// SQL holds the raw SQL text for Kind == KindFileSQL migrations.
	SQL string

	// ExecutorName holds the script name used to resolve an Executor from
	// the registry for Kind == KindExecutorBacked migrations. It is equal
	// to Script, named separately for clarity at call sites.
	ExecutorName string
}

// DisplayDescription returns the Migration's description with underscores
// replaced by spaces, for presentation.
func (m Migration) DisplayDescription() string {
	return displayDescription(m.Description)
}

// Plan is the ordered, validated list of Migrations discovered in a
// migrations directory. Once returned by Discover, a Plan is never mutated.
type Plan struct {
	Migrations []Migration
}

// ByScript returns the Plan entry with the given script name, or false if
// none exists.
func (p Plan) ByScript(script string) (Migration, bool) {
	for _, m := range p.Migrations {
		if m.Script == script {
			return m, true
		}
	}
	return Migration{}, false
}

// ByVersion returns the Plan entry with the given version display string,
// or false if none exists.
func (p Plan) ByVersion(versionDisplay string) (Migration, bool) {
	for _, m := range p.Migrations {
		if m.VersionDisplay == versionDisplay {
			return m, true
		}
	}
	return Migration{}, false
}
