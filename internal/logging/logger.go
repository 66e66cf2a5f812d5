// SPDX-License-Identifier: Apache-2.0

// Package logging provides the engine's structured logger, backed by pterm
// when the caller wants console output and a no-op implementation for
// library embedding.
package logging

import "github.com/pterm/pterm"

// Logger is the logging surface the engine calls as it discovers, applies,
// and inspects migrations.
type Logger interface {
	MigrationStart(script string)
	MigrationComplete(script string, durationMS int)
	MigrationFailed(script string, cause error)
	LockAcquired()
	LockReleased()
	Info(msg string, args ...any)
}

type ptermLogger struct {
	logger pterm.Logger
}

// NewLogger returns a Logger backed by pterm.DefaultLogger, suitable for a
// CLI invocation.
func NewLogger() Logger {
	return &ptermLogger{logger: pterm.DefaultLogger}
}

func (l *ptermLogger) MigrationStart(script string) {
	l.logger.Info("applying migration", l.logger.Args([]any{"script", script}))
}

func (l *ptermLogger) MigrationComplete(script string, durationMS int) {
	l.logger.Info("applied migration", l.logger.Args([]any{"script", script, "duration_ms", durationMS}))
}

func (l *ptermLogger) MigrationFailed(script string, cause error) {
	l.logger.Error("migration failed", l.logger.Args([]any{"script", script, "error", cause.Error()}))
}

func (l *ptermLogger) LockAcquired() {
	l.logger.Debug("acquired advisory lock")
}

func (l *ptermLogger) LockReleased() {
	l.logger.Debug("released advisory lock")
}

func (l *ptermLogger) Info(msg string, args ...any) {
	l.logger.Info(msg, l.logger.Args(args))
}

type noopLogger struct{}

// NewNoopLogger returns a Logger that discards everything, for embedding
// schemalane in an application that owns its own logging.
func NewNoopLogger() Logger {
	return &noopLogger{}
}

func (l *noopLogger) MigrationStart(script string)                {}
func (l *noopLogger) MigrationComplete(script string, ms int)      {}
func (l *noopLogger) MigrationFailed(script string, cause error)   {}
func (l *noopLogger) LockAcquired()                                {}
func (l *noopLogger) LockReleased()                                {}
func (l *noopLogger) Info(msg string, args ...any)                 {}
