// SPDX-License-Identifier: Apache-2.0

package history

import (
	"context"
	"fmt"

	"github.com/lib/pq"
	"github.com/schemalane/schemalane/internal/pgdb"
)

const sqlVersionMarkerBootstrap = `
CREATE TABLE IF NOT EXISTS %[1]s.%[2]s (
	id               BOOLEAN PRIMARY KEY DEFAULT true,
	schemalane_version VARCHAR(50) NOT NULL,
	updated_on       TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT %[3]s CHECK (id)
);
`

// markerTable is the name of the single-row table recording the version of
// the schemalane binary that last wrote the marker for a given history
// table.
func (g *Gateway) markerTable() string {
	return g.table + "_version"
}

// BootstrapVersionMarker creates the version marker table if absent. It is
// always called alongside Bootstrap, never on its own.
func (g *Gateway) BootstrapVersionMarker(ctx context.Context) error {
	schemaIdent := pq.QuoteIdentifier(g.schema)
	tableIdent := pq.QuoteIdentifier(g.markerTable())
	singletonConstraint := pq.QuoteIdentifier(g.markerTable() + "_singleton")

	stmt := fmt.Sprintf(sqlVersionMarkerBootstrap, schemaIdent, tableIdent, singletonConstraint)
	if _, err := g.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("bootstrap version marker table: %w", err)
	}
	return nil
}

// ReadVersionMarker returns the schemalane version that last wrote the
// marker row, or ok=false if no row has been written yet.
func (g *Gateway) ReadVersionMarker(ctx context.Context) (version string, ok bool, err error) {
	query := fmt.Sprintf(`SELECT schemalane_version FROM %s.%s WHERE id = true`,
		pq.QuoteIdentifier(g.schema), pq.QuoteIdentifier(g.markerTable()))

	rows, err := g.db.QueryContext(ctx, query)
	if err != nil {
		return "", false, fmt.Errorf("read version marker: %w", err)
	}

	var found string
	if scanErr := pgdb.ScanFirstValue(rows, &found); scanErr != nil {
		return "", false, fmt.Errorf("read version marker: %w", scanErr)
	}
	if found == "" {
		return "", false, nil
	}
	return found, true, nil
}

// WriteVersionMarker upserts the single marker row to record that
// schemalaneVersion is the last binary version to write the marker for this
// history table.
func (g *Gateway) WriteVersionMarker(ctx context.Context, schemalaneVersion string) error {
	stmt := fmt.Sprintf(
		`INSERT INTO %s.%s (id, schemalane_version, updated_on) VALUES (true, $1, now())
		 ON CONFLICT (id) DO UPDATE SET schemalane_version = EXCLUDED.schemalane_version, updated_on = now()`,
		pq.QuoteIdentifier(g.schema), pq.QuoteIdentifier(g.markerTable()),
	)
	if _, err := g.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("write version marker: %w", err)
	}
	return nil
}
