// SPDX-License-Identifier: Apache-2.0

package pgdb

import (
	"context"
	"database/sql"
	"errors"
	"hash/fnv"
)

// lockKeyString is hashed to a 64-bit advisory lock key. It is fixed so that
// every schemalane binary, of any version, contends for the same lock.
const lockKeyString = "schemalane.migrate"

// ErrLockUnavailable is returned when AdvisoryLock is asked to fail fast
// rather than block and the lock could not be acquired immediately.
var ErrLockUnavailable = errors.New("advisory lock unavailable")

// AdvisoryLockKey returns the stable 64-bit key schemalane uses for its
// session-scoped advisory lock, derived from a fixed string rather than from
// any per-database identifier: the spec fixes a single constant key rather
// than one keyed per schema/table, unlike the equivalent golang-migrate
// Postgres driver lock.
func AdvisoryLockKey() int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(lockKeyString))
	return int64(h.Sum64()) //nolint:gosec // wraps into signed range intentionally
}

// Lock acquires the schemalane session-scoped advisory lock on conn, which
// must be a dedicated connection (not a pool) so that the lock and its
// eventual Unlock observe the same Postgres session.
//
// If tryOnly is true, Lock uses pg_try_advisory_lock and returns
// ErrLockUnavailable immediately when the lock is held elsewhere, instead of
// blocking.
func Lock(ctx context.Context, conn *sql.Conn, tryOnly bool) error {
	key := AdvisoryLockKey()

	if tryOnly {
		var acquired bool
		if err := conn.QueryRowContext(ctx, "SELECT pg_try_advisory_lock($1)", key).Scan(&acquired); err != nil {
			return err
		}
		if !acquired {
			return ErrLockUnavailable
		}
		return nil
	}

	_, err := conn.ExecContext(ctx, "SELECT pg_advisory_lock($1)", key)
	return err
}

// Unlock releases the lock acquired by Lock on the same connection.
func Unlock(ctx context.Context, conn *sql.Conn) error {
	_, err := conn.ExecContext(ctx, "SELECT pg_advisory_unlock($1)", AdvisoryLockKey())
	return err
}
