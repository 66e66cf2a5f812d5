// SPDX-License-Identifier: Apache-2.0

// Package executor resolves executor-backed migrations by script name to the
// code that performs their work. It is populated by the embedding
// application before calling Up or Fresh; schemalane's compile-time
// migration macro (out of scope for this package) is one way such a
// registry might be generated.
package executor

import (
	"context"
	"database/sql"
	"fmt"
)

// Executor performs the work of one executor-backed migration.
type Executor interface {
	// Run executes the migration against conn, which is either a
	// transaction (WantsTransaction true, the default) or a bare
	// connection (WantsTransaction false).
	Run(ctx context.Context, conn Execer) error

	// WantsTransaction reports whether the engine should invoke Run
	// inside a transaction it manages (true, the default) or hand Run a
	// bare connection to manage its own transactional behavior (false).
	WantsTransaction() bool
}

// Execer is the subset of *sql.Tx / *sql.DB an Executor needs.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// Registry maps a migration script name to the Executor that performs its
// work. The core treats a Registry as read-only.
type Registry struct {
	executors map[string]Executor
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{executors: make(map[string]Executor)}
}

// Register associates script with an Executor. Registering the same script
// twice overwrites the previous registration.
func (r *Registry) Register(script string, e Executor) *Registry {
	r.executors[script] = e
	return r
}

// Resolve returns the Executor registered for script, or
// MissingExecutorError if none was registered.
func (r *Registry) Resolve(script string) (Executor, error) {
	e, ok := r.executors[script]
	if !ok {
		return nil, MissingExecutorError{Script: script}
	}
	return e, nil
}

// MissingExecutorError is returned when an executor-backed Plan entry has no
// corresponding registration at apply time.
type MissingExecutorError struct {
	Script string
}

func (e MissingExecutorError) Error() string {
	return fmt.Sprintf("no executor registered for script %q", e.Script)
}

// Func adapts a plain function to the Executor interface for the common
// case of a transaction-managed executor.
type Func struct {
	Fn   func(ctx context.Context, conn Execer) error
	NoTx bool
}

func (f Func) Run(ctx context.Context, conn Execer) error { return f.Fn(ctx, conn) }
func (f Func) WantsTransaction() bool                     { return !f.NoTx }
