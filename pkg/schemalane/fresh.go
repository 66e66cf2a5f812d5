// SPDX-License-Identifier: Apache-2.0

package schemalane

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// systemSchemas are excluded from Fresh's table enumeration regardless of
// the configured schema (which is never one of these in practice, but the
// guard costs nothing).
var systemSchemas = map[string]bool{
	"pg_catalog":         true,
	"information_schema": true,
}

// Fresh drops every user table in the configured schema, including the
// history table, then re-bootstraps history and runs Up from empty state.
// It requires Config.Confirm; without it, Fresh acquires no resources and
// returns a KindDestructiveGuard error before touching the database.
func (e *Engine) Fresh(ctx context.Context) (RunReport, error) {
	report := RunReport{RunID: uuid.New()}

	if !e.cfg.Confirm {
		return report, Error{Kind: KindDestructiveGuard, Message: "fresh requires explicit confirmation"}
	}

	plan, err := e.discover()
	if err != nil {
		return report, err
	}

	installedBy, err := e.resolveInstalledBy(ctx)
	if err != nil {
		return report, err
	}

	var freshErr error
	err = e.withAdvisoryLock(ctx, func(ctx context.Context, conn *sql.Conn) error {
		if err := e.dropUserTables(ctx, conn); err != nil {
			return err
		}

		gw := e.gateway()
		if err := gw.Bootstrap(ctx); err != nil {
			return Error{Kind: KindDatabase, Message: "bootstrapping history table", Cause: err}
		}
		e.checkVersionMarker(ctx, gw, true)

		for _, m := range plan.Migrations {
			applied, applyErr := e.applyOne(ctx, conn, gw, m, installedBy)
			report.Applied = append(report.Applied, applied)
			if applyErr != nil {
				freshErr = applyErr
				return applyErr
			}
		}
		return nil
	})
	if freshErr != nil {
		return report, freshErr
	}

	return report, err
}

// dropUserTables enumerates every table in the configured schema via the
// information schema and drops each with CASCADE. fresh never issues DROP
// DATABASE and never touches a schema other than the configured one.
func (e *Engine) dropUserTables(ctx context.Context, conn *sql.Conn) error {
	if systemSchemas[e.cfg.Schema] {
		return Error{Kind: KindConfig, Message: "refusing to run fresh against a system schema"}
	}

	rows, err := conn.QueryContext(ctx,
		`SELECT table_name FROM information_schema.tables WHERE table_schema = $1 AND table_type = 'BASE TABLE'`,
		e.cfg.Schema,
	)
	if err != nil {
		return Error{Kind: KindDatabase, Message: "enumerating user tables", Cause: err}
	}

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return Error{Kind: KindDatabase, Message: "enumerating user tables", Cause: err}
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return Error{Kind: KindDatabase, Message: "enumerating user tables", Cause: err}
	}
	rows.Close()

	for _, table := range tables {
		stmt := "DROP TABLE IF EXISTS " + pq.QuoteIdentifier(e.cfg.Schema) + "." + pq.QuoteIdentifier(table) + " CASCADE"
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return Error{Kind: KindDatabase, Message: "dropping table " + table, Cause: err}
		}
	}

	return nil
}
