// SPDX-License-Identifier: Apache-2.0

package pgdb

import (
	"context"
	"database/sql"
)

// FakeDB is a no-op implementation of DB, for unit tests that exercise
// control flow without a real database.
type FakeDB struct{}

func (db *FakeDB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return nil, nil
}

func (db *FakeDB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return nil, nil
}

func (db *FakeDB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	return nil, nil
}

func (db *FakeDB) Conn(ctx context.Context) (*sql.Conn, error) {
	return nil, nil
}

func (db *FakeDB) Close() error {
	return nil
}
