// SPDX-License-Identifier: Apache-2.0

// Package pgdb wraps a *sql.DB with retry-on-lock-timeout semantics and the
// session-scoped advisory lock used to serialize schemalane runs against a
// single database.
package pgdb

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/cloudflare/backoff"
	"github.com/lib/pq"
)

const (
	lockNotAvailableErrorCode pq.ErrorCode = "55P03"
	maxBackoffDuration                     = 1 * time.Minute
	backoffInterval                        = 1 * time.Second
)

// DB is the subset of *sql.DB operations the engine depends on, so that
// tests can substitute a fake.
type DB interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
	Conn(ctx context.Context) (*sql.Conn, error)
	Close() error
}

// RDB wraps a *sql.DB and retries ExecContext and QueryContext statements
// with an exponential backoff on lock_timeout errors. BeginTx and Conn are
// passed through without retry.
type RDB struct {
	DB *sql.DB
}

func (r *RDB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	b := backoff.New(maxBackoffDuration, backoffInterval)

	for {
		res, err := r.DB.ExecContext(ctx, query, args...)
		if err == nil {
			return res, nil
		}

		if !isLockTimeout(err) {
			return nil, err
		}
		if err := sleepCtx(ctx, b.Duration()); err != nil {
			return nil, err
		}
	}
}

func (r *RDB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	b := backoff.New(maxBackoffDuration, backoffInterval)

	for {
		rows, err := r.DB.QueryContext(ctx, query, args...)
		if err == nil {
			return rows, nil
		}

		if !isLockTimeout(err) {
			return nil, err
		}
		if err := sleepCtx(ctx, b.Duration()); err != nil {
			return nil, err
		}
	}
}

func (r *RDB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	return r.DB.BeginTx(ctx, opts)
}

// Conn returns a dedicated connection, unretried: statements issued on it
// (the advisory lock, history-row appends, migration transactions) are not
// retried on lock_timeout errors.
func (r *RDB) Conn(ctx context.Context) (*sql.Conn, error) {
	return r.DB.Conn(ctx)
}

func (r *RDB) Close() error {
	return r.DB.Close()
}

func isLockTimeout(err error) bool {
	pqErr := &pq.Error{}
	return errors.As(err, &pqErr) && pqErr.Code == lockNotAvailableErrorCode
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// ScanFirstValue scans the single value of the first row of rows, leaving
// dest untouched if rows is empty.
func ScanFirstValue[T any](rows *sql.Rows, dest *T) error {
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(dest); err != nil {
			return err
		}
	}
	return rows.Err()
}
