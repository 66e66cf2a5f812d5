// SPDX-License-Identifier: Apache-2.0

package pgdb_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/schemalane/schemalane/internal/pgdb"
	"github.com/schemalane/schemalane/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockBlocksConcurrentAcquisition(t *testing.T) {
	t.Parallel()

	testutils.WithConnectionToContainer(t, func(db *sql.DB, _ string) {
		ctx := context.Background()

		first, err := db.Conn(ctx)
		require.NoError(t, err)
		defer first.Close()
		require.NoError(t, pgdb.Lock(ctx, first, false))

		second, err := db.Conn(ctx)
		require.NoError(t, err)
		defer second.Close()

		err = pgdb.Lock(ctx, second, true)
		assert.ErrorIs(t, err, pgdb.ErrLockUnavailable)

		require.NoError(t, pgdb.Unlock(ctx, first))

		require.NoError(t, pgdb.Lock(ctx, second, true))
		require.NoError(t, pgdb.Unlock(ctx, second))
	})
}

func TestAdvisoryLockKeyIsStable(t *testing.T) {
	assert.Equal(t, pgdb.AdvisoryLockKey(), pgdb.AdvisoryLockKey())
}
