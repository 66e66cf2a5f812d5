// SPDX-License-Identifier: Apache-2.0

// Package schemalane is the migration execution engine: discovery and
// validation of a migration set, cross-runner mutual exclusion via an
// advisory lock, the apply algorithm and its transactional contract, the
// history-table write protocol, and status/drift diagnosis.
//
// CLI argument parsing, the init scaffold generator, and logging setup are
// external collaborators; this package consumes a Config and an
// *executor.Registry and knows nothing about cobra, viper, or pterm.
package schemalane

import (
	"context"
	"database/sql"

	"github.com/schemalane/schemalane/internal/logging"
	"github.com/schemalane/schemalane/internal/pgdb"
	"github.com/schemalane/schemalane/internal/version"
	"github.com/schemalane/schemalane/pkg/config"
	"github.com/schemalane/schemalane/pkg/executor"
	"github.com/schemalane/schemalane/pkg/history"
	"github.com/schemalane/schemalane/pkg/migration"
)

// Engine runs up, status, and fresh against one database connection.
type Engine struct {
	db            pgdb.DB
	cfg           config.Config
	registry      *executor.Registry
	logger        logging.Logger
	binaryVersion string
}

// Option customizes an Engine.
type Option func(*Engine)

// WithExecutorRegistry supplies the mapping from script name to executor
// consulted for executor-backed Plan entries. Status may run without one.
func WithExecutorRegistry(r *executor.Registry) Option {
	return func(e *Engine) { e.registry = r }
}

// WithLogger overrides the engine's logger. The zero value uses
// logging.NewNoopLogger, matching library-embedding defaults.
func WithLogger(l logging.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithBinaryVersion records the linked schemalane version against the
// history table's version marker at bootstrap, so a binary older than the
// one that last wrote the marker can warn instead of silently proceeding.
// The zero value "development" skips the check entirely.
func WithBinaryVersion(v string) Option {
	return func(e *Engine) { e.binaryVersion = v }
}

// New returns an Engine bound to db and cfg. cfg is normalized with
// WithDefaults internally. db is typically a *pgdb.RDB wrapping a *sql.DB,
// giving bootstrap and load statements retry-on-lock-timeout semantics; a
// bare *sql.DB also satisfies pgdb.DB.
func New(db pgdb.DB, cfg config.Config, opts ...Option) *Engine {
	e := &Engine{
		db:            db,
		cfg:           cfg.WithDefaults(),
		registry:      executor.NewRegistry(),
		logger:        logging.NewNoopLogger(),
		binaryVersion: "development",
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// checkVersionMarker bootstraps the version marker table, warns via the
// logger if the marker was last written by a newer schemalane binary, then,
// when write is true, records the current binary version. It never returns
// an error that blocks the caller: schema-repair and conflict resolution are explicit
// non-goals, so a stale or mismatched marker is surfaced, not enforced.
func (e *Engine) checkVersionMarker(ctx context.Context, gw *history.Gateway, write bool) {
	if err := gw.BootstrapVersionMarker(ctx); err != nil {
		e.logger.Info("version marker unavailable", "error", err.Error())
		return
	}

	previous, ok, err := gw.ReadVersionMarker(ctx)
	if err != nil {
		e.logger.Info("version marker unavailable", "error", err.Error())
		return
	}

	if ok {
		switch version.Compare(e.binaryVersion, previous) {
		case version.CompatOlder:
			e.logger.Info("schemalane binary is older than the version that last wrote this history table",
				"binary_version", e.binaryVersion, "history_version", previous)
		case version.CompatNewer, version.CompatEqual, version.CompatCheckSkipped:
		}
	}

	if write {
		if err := gw.WriteVersionMarker(ctx, e.binaryVersion); err != nil {
			e.logger.Info("failed to record version marker", "error", err.Error())
		}
	}
}

func (e *Engine) discover() (*migration.Plan, error) {
	plan, err := migration.Discover(e.cfg.Dir, e.cfg.DatabaseURL)
	if err != nil {
		return nil, Error{Kind: KindValidation, Message: "discovering migrations", Cause: err}
	}
	return plan, nil
}

func (e *Engine) gateway() *history.Gateway {
	return history.New(e.db, e.cfg.Schema, e.cfg.HistoryTable)
}

// resolveInstalledBy returns Config.InstalledBy if set, otherwise the
// connection's current database user.
func (e *Engine) resolveInstalledBy(ctx context.Context) (string, error) {
	if e.cfg.InstalledBy != "" {
		return e.cfg.InstalledBy, nil
	}

	rows, err := e.db.QueryContext(ctx, "SELECT current_user")
	if err != nil {
		return "", Error{Kind: KindDatabase, Message: "resolving current database user", Cause: err}
	}

	var currentUser string
	if err := pgdb.ScanFirstValue(rows, &currentUser); err != nil {
		return "", Error{Kind: KindDatabase, Message: "resolving current database user", Cause: err}
	}
	return currentUser, nil
}

// withAdvisoryLock acquires the session-scoped advisory lock on a dedicated
// connection, runs fn, and releases the lock on every exit path.
func (e *Engine) withAdvisoryLock(ctx context.Context, fn func(ctx context.Context, conn *sql.Conn) error) error {
	conn, err := e.db.Conn(ctx)
	if err != nil {
		return Error{Kind: KindDatabase, Message: "acquiring connection", Cause: err}
	}
	defer conn.Close()

	if err := pgdb.Lock(ctx, conn, false); err != nil {
		return Error{Kind: KindLock, Message: "acquiring advisory lock", Cause: err}
	}
	defer func() {
		// Best-effort: the session closes with conn regardless.
		_ = pgdb.Unlock(ctx, conn)
	}()

	e.logger.LockAcquired()
	defer e.logger.LockReleased()

	return fn(ctx, conn)
}

func historyTypeFor(k migration.Kind) string {
	switch k {
	case migration.KindFileSQL:
		return "SQL"
	default:
		return "RUST"
	}
}
