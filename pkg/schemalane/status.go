// SPDX-License-Identifier: Apache-2.0

package schemalane

import (
	"context"

	"github.com/google/uuid"
	"github.com/schemalane/schemalane/pkg/history"
	"github.com/schemalane/schemalane/pkg/migration"
)

// Status discovers the migration set and classifies it against the history
// table. It takes no advisory lock and may run concurrently with Up or
// Fresh; a reader observes whatever has been committed so far.
func (e *Engine) Status(ctx context.Context) (StatusReport, error) {
	report := StatusReport{RunID: uuid.New()}

	plan, err := e.discover()
	if err != nil {
		return report, err
	}

	gw := e.gateway()
	if err := gw.Bootstrap(ctx); err != nil {
		return report, Error{Kind: KindDatabase, Message: "bootstrapping history table", Cause: err}
	}
	e.checkVersionMarker(ctx, gw, false)

	rows, err := gw.Load(ctx)
	if err != nil {
		return report, Error{Kind: KindDatabase, Message: "loading history", Cause: err}
	}

	report.Entries = classify(plan, rows)

	return report, nil
}

// classify pairs every Plan entry and unmatched history row into a
// StatusEntry, following the precedence: matching checksum/success →
// Success, matching checksum/no-success → Failed, differing checksum →
// ChecksumMismatch, no row → Pending. A version with no matching Plan entry
// becomes a Missing entry when its most recent history row succeeded.
func classify(plan *migration.Plan, rows []history.Row) []StatusEntry {
	latest := latestByVersion(rows)
	seen := make(map[string]bool, len(plan.Migrations))

	entries := make([]StatusEntry, 0, len(plan.Migrations))
	for _, m := range plan.Migrations {
		seen[m.VersionDisplay] = true
		row, ok := latest[m.VersionDisplay]
		entries = append(entries, classifyOne(m, row, ok))
	}

	for version, row := range latest {
		if seen[version] {
			continue
		}
		if !row.Success {
			continue
		}
		entries = append(entries, missingEntry(row))
	}

	return entries
}

func classifyOne(m migration.Migration, row history.Row, hasMatch bool) StatusEntry {
	entry := StatusEntry{VersionDisplay: m.VersionDisplay, Description: m.Description}

	if !hasMatch {
		entry.Classification = StatusPending
		return entry
	}

	installedOn := row.InstalledOn
	execMS := row.ExecutionTime
	entry.InstalledOn = &installedOn
	entry.ExecutionTimeMS = &execMS

	checksumMatches := row.Checksum != nil && *row.Checksum == m.Checksum

	switch {
	case checksumMatches && row.Success:
		entry.Classification = StatusSuccess
	case checksumMatches && !row.Success:
		entry.Classification = StatusFailed
	default:
		entry.Classification = StatusChecksumMismatch
	}

	return entry
}

func missingEntry(row history.Row) StatusEntry {
	version := ""
	if row.Version != nil {
		version = *row.Version
	}
	installedOn := row.InstalledOn
	execMS := row.ExecutionTime

	return StatusEntry{
		VersionDisplay:  version,
		Description:     row.Description,
		Classification:  StatusMissing,
		InstalledOn:     &installedOn,
		ExecutionTimeMS: &execMS,
	}
}

// ExitCode returns the exit code Status's caller should use for report,
// following the precedence 4 (Failed) > 3 (Missing or ChecksumMismatch) >
// 5 (Pending, only when failOnPending) > 0.
func (r StatusReport) ExitCode(failOnPending bool) int {
	switch {
	case r.HasFailed():
		return 4
	case r.HasDrift():
		return 3
	case failOnPending && r.HasPending():
		return 5
	default:
		return 0
	}
}
