// SPDX-License-Identifier: Apache-2.0

package history

import (
	"context"
	"fmt"

	"github.com/lib/pq"
	"github.com/schemalane/schemalane/internal/pgdb"
)

const sqlBootstrap = `
CREATE TABLE IF NOT EXISTS %[1]s.%[2]s (
	installed_rank	INTEGER NOT NULL PRIMARY KEY,
	version			VARCHAR(50),
	description		VARCHAR(200) NOT NULL,
	type			VARCHAR(20) NOT NULL,
	script			VARCHAR(1000) NOT NULL,
	checksum		INTEGER,
	installed_by	VARCHAR(100) NOT NULL,
	installed_on	TIMESTAMPTZ NOT NULL DEFAULT now(),
	execution_time	INTEGER NOT NULL,
	success			BOOLEAN NOT NULL
);

CREATE INDEX IF NOT EXISTS %[3]s ON %[1]s.%[2]s (success);
CREATE INDEX IF NOT EXISTS %[4]s ON %[1]s.%[2]s (version);
`

// Gateway owns all reads and writes of the history table. It does no
// interpretation of row contents; callers classify rows against a Plan.
type Gateway struct {
	db     pgdb.DB
	schema string
	table  string
}

// New returns a Gateway for the history table named table in schema, both
// of which are quoted as identifiers before use. db is typically a
// *pgdb.RDB, giving Bootstrap and Load retry-on-lock-timeout semantics;
// a bare *sql.DB also satisfies pgdb.DB.
func New(db pgdb.DB, schema, table string) *Gateway {
	return &Gateway{db: db, schema: schema, table: table}
}

// Bootstrap creates the history table and its two secondary indexes if they
// are absent. It is idempotent and safe to call on every run. Up and Fresh
// call it while holding the advisory lock (see internal/pgdb), which
// excludes concurrent runners; Status calls it without the lock.
func (g *Gateway) Bootstrap(ctx context.Context) error {
	schemaIdent := pq.QuoteIdentifier(g.schema)
	tableIdent := pq.QuoteIdentifier(g.table)
	successIdx := pq.QuoteIdentifier(g.table + "_success_idx")
	versionIdx := pq.QuoteIdentifier(g.table + "_version_idx")

	stmt := fmt.Sprintf(sqlBootstrap, schemaIdent, tableIdent, successIdx, versionIdx)
	if _, err := g.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("bootstrap history table: %w", err)
	}
	return nil
}

// Load returns every row in the history table ordered by installed_rank
// ascending. The caller is responsible for classifying rows against a Plan;
// Load does no filtering.
func (g *Gateway) Load(ctx context.Context) ([]Row, error) {
	query := fmt.Sprintf(
		`SELECT installed_rank, version, description, type, script, checksum, installed_by, installed_on, execution_time, success
		 FROM %s.%s ORDER BY installed_rank ASC`,
		pq.QuoteIdentifier(g.schema), pq.QuoteIdentifier(g.table),
	)

	rows, err := g.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.InstalledRank, &r.Version, &r.Description, &r.Type, &r.Script,
			&r.Checksum, &r.InstalledBy, &r.InstalledOn, &r.ExecutionTime, &r.Success); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return out, nil
}

// Append atomically assigns the next installed_rank (one greater than the
// maximum present, or 1 if empty) and inserts a row. Append runs on its own
// connection outside of any migration transaction the caller holds, so a
// failure row survives the rollback of the migration's own DDL.
func (g *Gateway) Append(ctx context.Context, r NewRow) (Row, error) {
	conn, err := g.db.Conn(ctx)
	if err != nil {
		return Row{}, fmt.Errorf("append history row: %w", err)
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return Row{}, fmt.Errorf("append history row: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	schemaIdent := pq.QuoteIdentifier(g.schema)
	tableIdent := pq.QuoteIdentifier(g.table)

	var nextRank int
	nextRankQuery := fmt.Sprintf(`SELECT COALESCE(MAX(installed_rank), 0) + 1 FROM %s.%s`, schemaIdent, tableIdent)
	if err := tx.QueryRowContext(ctx, nextRankQuery).Scan(&nextRank); err != nil {
		return Row{}, fmt.Errorf("assign installed_rank: %w", err)
	}

	insert := fmt.Sprintf(
		`INSERT INTO %s.%s
		 (installed_rank, version, description, type, script, checksum, installed_by, execution_time, success)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING installed_on`,
		schemaIdent, tableIdent,
	)

	row := Row{
		InstalledRank: nextRank,
		Version:       r.Version,
		Description:   r.Description,
		Type:          r.Type,
		Script:        r.Script,
		Checksum:      r.Checksum,
		InstalledBy:   r.InstalledBy,
		ExecutionTime: r.ExecutionTime,
		Success:       r.Success,
	}

	if err := tx.QueryRowContext(ctx, insert, nextRank, r.Version, r.Description, r.Type, r.Script,
		r.Checksum, r.InstalledBy, r.ExecutionTime, r.Success).Scan(&row.InstalledOn); err != nil {
		return Row{}, fmt.Errorf("insert history row: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Row{}, fmt.Errorf("append history row: %w", err)
	}

	return row, nil
}

// Reset drops the history table entirely. The engine does not call it:
// fresh removes the history table by dropping every table in the schema.
func (g *Gateway) Reset(ctx context.Context) error {
	stmt := fmt.Sprintf(`DROP TABLE IF EXISTS %s.%s`, pq.QuoteIdentifier(g.schema), pq.QuoteIdentifier(g.table))
	if _, err := g.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("reset history table: %w", err)
	}
	return nil
}
