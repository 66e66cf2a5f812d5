// SPDX-License-Identifier: Apache-2.0

package schemalane

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/schemalane/schemalane/pkg/history"
	"github.com/schemalane/schemalane/pkg/migration"
)

// Up discovers the migration set, reconciles it against the history table,
// and applies every to-apply entry in version order. Discovery and the
// installed_by lookup run first; bootstrap, history load, and every apply
// then run under the engine's advisory lock, which is released on every
// exit path, including failure.
func (e *Engine) Up(ctx context.Context) (RunReport, error) {
	runID := uuid.New()
	report := RunReport{RunID: runID}

	plan, err := e.discover()
	if err != nil {
		return report, err
	}

	gw := e.gateway()

	installedBy, err := e.resolveInstalledBy(ctx)
	if err != nil {
		return report, err
	}

	err = e.withAdvisoryLock(ctx, func(ctx context.Context, conn *sql.Conn) error {
		if err := gw.Bootstrap(ctx); err != nil {
			return Error{Kind: KindDatabase, Message: "bootstrapping history table", Cause: err}
		}
		e.checkVersionMarker(ctx, gw, true)

		rows, err := gw.Load(ctx)
		if err != nil {
			return Error{Kind: KindDatabase, Message: "loading history", Cause: err}
		}
		appliedByVersion := latestByVersion(rows)

		toApply, err := e.reconcile(plan, appliedByVersion)
		if err != nil {
			return err
		}

		for _, m := range toApply {
			applied, applyErr := e.applyOne(ctx, conn, gw, m, installedBy)
			report.Applied = append(report.Applied, applied)
			if applyErr != nil {
				return applyErr
			}
		}

		return nil
	})

	return report, err
}

// latestByVersion returns, for each version_display, the history row with
// the greatest installed_rank.
func latestByVersion(rows []history.Row) map[string]history.Row {
	out := make(map[string]history.Row, len(rows))
	for _, r := range rows {
		if r.Version == nil {
			continue
		}
		existing, ok := out[*r.Version]
		if !ok || r.InstalledRank > existing.InstalledRank {
			out[*r.Version] = r
		}
	}
	return out
}

// reconcile classifies every Plan entry against the most-recent matching
// history row and returns the ordered subset that must be applied. It
// aborts before applying anything if any matching row disagrees in
// checksum (drift) or recorded a prior failure.
func (e *Engine) reconcile(plan *migration.Plan, appliedByVersion map[string]history.Row) ([]migration.Migration, error) {
	var toApply []migration.Migration

	for _, m := range plan.Migrations {
		row, ok := appliedByVersion[m.VersionDisplay]
		if !ok {
			toApply = append(toApply, m)
			continue
		}

		if !row.Success {
			return nil, Error{
				Kind:    KindFailedPresent,
				Message: fmt.Sprintf("migration %s previously failed and blocks up", m.VersionDisplay),
			}
		}

		if row.Checksum == nil || *row.Checksum != m.Checksum {
			return nil, Error{
				Kind:    KindDrift,
				Message: fmt.Sprintf("checksum mismatch for migration %s", m.VersionDisplay),
			}
		}

		// Matching successful row with matching checksum: no-op.
	}

	return toApply, nil
}

// applyOne executes one to-apply Plan entry and appends its HistoryRow,
// success or failure, before returning. An executor-backed entry with no
// registered executor is not attempted: applyOne returns a validation error
// and appends no row.
func (e *Engine) applyOne(ctx context.Context, conn *sql.Conn, gw *history.Gateway, m migration.Migration, installedBy string) (AppliedMigration, error) {
	if m.Kind != migration.KindFileSQL {
		if _, err := e.registry.Resolve(m.ExecutorName); err != nil {
			return AppliedMigration{}, Error{Kind: KindValidation, Message: "resolving executor", Cause: err}
		}
	}

	e.logger.MigrationStart(m.Script)
	start := time.Now()

	var runErr error
	switch {
	case m.Kind == migration.KindFileSQL:
		runErr = e.applySQL(ctx, conn, m)
	default:
		runErr = e.applyExecutor(ctx, conn, m)
	}

	elapsed := time.Since(start)
	success := runErr == nil

	checksum := m.Checksum
	version := m.VersionDisplay
	_, appendErr := gw.Append(ctx, history.NewRow{
		Version:       &version,
		Description:   m.Description,
		Type:          historyTypeFor(m.Kind),
		Script:        m.Script,
		Checksum:      &checksum,
		InstalledBy:   installedBy,
		ExecutionTime: int(elapsed.Milliseconds()),
		Success:       success,
	})

	applied := AppliedMigration{
		VersionDisplay: m.VersionDisplay,
		Description:    m.Description,
		Script:         m.Script,
		ExecutionTime:  elapsed,
		Success:        success,
	}

	if runErr != nil {
		e.logger.MigrationFailed(m.Script, runErr)
		if appendErr != nil {
			return applied, Error{Kind: KindDatabase, Message: "recording failed migration", Cause: appendErr}
		}
		var schemalaneErr Error
		if errors.As(runErr, &schemalaneErr) {
			return applied, schemalaneErr
		}
		return applied, Error{Kind: KindDatabase, Message: fmt.Sprintf("applying migration %s", m.Script), Cause: runErr}
	}
	if appendErr != nil {
		return applied, Error{Kind: KindDatabase, Message: "recording applied migration", Cause: appendErr}
	}

	e.logger.MigrationComplete(m.Script, int(elapsed.Milliseconds()))
	return applied, nil
}

func (e *Engine) applySQL(ctx context.Context, conn *sql.Conn, m migration.Migration) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return err
	}
	return tx.Commit()
}

func (e *Engine) applyExecutor(ctx context.Context, conn *sql.Conn, m migration.Migration) error {
	ex, err := e.registry.Resolve(m.ExecutorName)
	if err != nil {
		return err
	}

	if !ex.WantsTransaction() {
		return ex.Run(ctx, conn)
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	if err := ex.Run(ctx, tx); err != nil {
		return err
	}
	return tx.Commit()
}
