// SPDX-License-Identifier: Apache-2.0

package schemalane_test

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/schemalane/schemalane/internal/testutils"
	"github.com/schemalane/schemalane/pkg/config"
	"github.com/schemalane/schemalane/pkg/schemalane"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	testutils.SharedTestMain(m)
}

func writeMigration(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func cfgFor(dir, connStr string) config.Config {
	return config.Config{DatabaseURL: connStr, Dir: dir}.WithDefaults()
}

func TestUpCleanApply(t *testing.T) {
	t.Parallel()

	testutils.WithConnectionToContainer(t, func(db *sql.DB, connStr string) {
		dir := t.TempDir()
		writeMigration(t, dir, "V1__a.sql", "CREATE TABLE t(id int);")
		writeMigration(t, dir, "V2__b.sql", "INSERT INTO t VALUES (1);")

		eng := schemalane.New(db, cfgFor(dir, connStr))
		report, err := eng.Up(context.Background())
		require.NoError(t, err)
		require.Len(t, report.Applied, 2)
		assert.True(t, report.Applied[0].Success)
		assert.True(t, report.Applied[1].Success)

		var count int
		require.NoError(t, db.QueryRow("SELECT count(*) FROM t").Scan(&count))
		assert.Equal(t, 1, count)

		status, err := eng.Status(context.Background())
		require.NoError(t, err)
		require.Len(t, status.Entries, 2)
		for _, e := range status.Entries {
			assert.Equal(t, schemalane.StatusSuccess, e.Classification)
		}
	})
}

func TestUpIsNoOpOnSecondRun(t *testing.T) {
	t.Parallel()

	testutils.WithConnectionToContainer(t, func(db *sql.DB, connStr string) {
		dir := t.TempDir()
		writeMigration(t, dir, "V1__a.sql", "CREATE TABLE t(id int);")

		eng := schemalane.New(db, cfgFor(dir, connStr))
		ctx := context.Background()

		_, err := eng.Up(ctx)
		require.NoError(t, err)

		second, err := eng.Up(ctx)
		require.NoError(t, err)
		assert.Empty(t, second.Applied)
	})
}

func TestUpRecordsFailureAndBlocksRetry(t *testing.T) {
	t.Parallel()

	testutils.WithConnectionToContainer(t, func(db *sql.DB, connStr string) {
		dir := t.TempDir()
		writeMigration(t, dir, "V1__a.sql", "CREATE TABLE t(id int);")
		writeMigration(t, dir, "V2__b.sql", "SELECT 1/0;")

		eng := schemalane.New(db, cfgFor(dir, connStr))
		ctx := context.Background()

		_, err := eng.Up(ctx)
		require.Error(t, err)
		assert.Equal(t, 1, schemalane.ExitCode(err))

		_, err = eng.Up(ctx)
		require.Error(t, err)
		assert.Equal(t, 4, schemalane.ExitCode(err))
	})
}

func TestStatusDetectsChecksumDrift(t *testing.T) {
	t.Parallel()

	testutils.WithConnectionToContainer(t, func(db *sql.DB, connStr string) {
		dir := t.TempDir()
		writeMigration(t, dir, "V1__a.sql", "CREATE TABLE t(id int);")

		eng := schemalane.New(db, cfgFor(dir, connStr))
		ctx := context.Background()
		_, err := eng.Up(ctx)
		require.NoError(t, err)

		writeMigration(t, dir, "V1__a.sql", "CREATE TABLE t(id int); ")

		status, err := eng.Status(ctx)
		require.NoError(t, err)
		require.Len(t, status.Entries, 1)
		assert.Equal(t, schemalane.StatusChecksumMismatch, status.Entries[0].Classification)
		assert.Equal(t, 3, status.ExitCode(false))
	})
}

func TestStatusDetectsMissingMigration(t *testing.T) {
	t.Parallel()

	testutils.WithConnectionToContainer(t, func(db *sql.DB, connStr string) {
		dir := t.TempDir()
		writeMigration(t, dir, "V1__a.sql", "CREATE TABLE t(id int);")
		writeMigration(t, dir, "V2__b.sql", "INSERT INTO t VALUES (1);")

		eng := schemalane.New(db, cfgFor(dir, connStr))
		ctx := context.Background()
		_, err := eng.Up(ctx)
		require.NoError(t, err)

		require.NoError(t, os.Remove(filepath.Join(dir, "V2__b.sql")))

		status, err := eng.Status(ctx)
		require.NoError(t, err)
		require.Len(t, status.Entries, 2)

		var missing *schemalane.StatusEntry
		for i := range status.Entries {
			if status.Entries[i].Classification == schemalane.StatusMissing {
				missing = &status.Entries[i]
			}
		}
		require.NotNil(t, missing)
		assert.Equal(t, "2", missing.VersionDisplay)
		assert.Equal(t, 3, status.ExitCode(false))
	})
}
