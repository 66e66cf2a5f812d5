// SPDX-License-Identifier: Apache-2.0

package pgdb_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/schemalane/schemalane/internal/pgdb"
	"github.com/schemalane/schemalane/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	testutils.SharedTestMain(m)
}

func TestExecContextRetriesPastLockTimeout(t *testing.T) {
	t.Parallel()

	testutils.WithConnectionToContainer(t, func(conn *sql.DB, connStr string) {
		ctx := context.Background()
		setupTableLock(t, connStr, 2*time.Second)
		ensureLockTimeout(t, conn, 100)

		rdb := &pgdb.RDB{DB: conn}
		_, err := rdb.ExecContext(ctx, "INSERT INTO test(id) VALUES (1)")
		require.NoError(t, err)
	})
}

func TestExecContextWhenContextCancelled(t *testing.T) {
	t.Parallel()

	testutils.WithConnectionToContainer(t, func(conn *sql.DB, connStr string) {
		ctx, cancel := context.WithCancel(context.Background())
		setupTableLock(t, connStr, 2*time.Second)
		ensureLockTimeout(t, conn, 100)

		rdb := &pgdb.RDB{DB: conn}
		go time.AfterFunc(500*time.Millisecond, cancel)

		_, err := rdb.ExecContext(ctx, "INSERT INTO test(id) VALUES (1)")
		require.Error(t, err)
	})
}

func TestQueryContextRetriesPastLockTimeout(t *testing.T) {
	t.Parallel()

	testutils.WithConnectionToContainer(t, func(conn *sql.DB, connStr string) {
		ctx := context.Background()
		setupTableLock(t, connStr, 2*time.Second)
		ensureLockTimeout(t, conn, 100)

		rdb := &pgdb.RDB{DB: conn}
		rows, err := rdb.QueryContext(ctx, "SELECT COUNT(*) FROM test")
		require.NoError(t, err)

		var count int
		require.NoError(t, pgdb.ScanFirstValue(rows, &count))
		assert.Equal(t, 0, count)
	})
}

// setupTableLock connects to the database, creates a table, and holds an
// ACCESS EXCLUSIVE lock on it for d before releasing it.
func setupTableLock(t *testing.T, connStr string, d time.Duration) {
	t.Helper()
	ctx := context.Background()

	conn2, err := sql.Open("postgres", connStr)
	require.NoError(t, err)

	_, err = conn2.ExecContext(ctx, "CREATE TABLE test (id INT PRIMARY KEY)")
	require.NoError(t, err)

	errCh := make(chan error)
	go func() {
		tx, err := conn2.Begin()
		if err != nil {
			errCh <- err
			return
		}
		if _, err := tx.ExecContext(ctx, "LOCK TABLE test IN ACCESS EXCLUSIVE MODE"); err != nil {
			errCh <- err
			return
		}
		errCh <- nil
		time.Sleep(d)
		tx.Commit() //nolint:errcheck
	}()

	require.NoError(t, <-errCh)
}

func ensureLockTimeout(t *testing.T, conn *sql.DB, ms int) {
	t.Helper()

	_, err := conn.ExecContext(context.Background(), fmt.Sprintf("SET lock_timeout = '%dms'", ms))
	require.NoError(t, err)

	var lockTimeout string
	require.NoError(t, conn.QueryRowContext(context.Background(), "SHOW lock_timeout").Scan(&lockTimeout))
	require.Equal(t, fmt.Sprintf("%dms", ms), lockTimeout)
}
