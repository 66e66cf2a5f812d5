// SPDX-License-Identifier: Apache-2.0

// Package scaffold implements init_migration_project, the external
// collaborator that creates a fresh migrations directory and a starter
// migration file. It knows nothing about discovery, history, or the
// engine; it only writes files.
package scaffold

import (
	"fmt"
	"os"
	"path/filepath"
)

const exampleMigration = `-- V1__create_example_table.sql
--
-- Generated by schemalane init. Rename or remove this file; filenames must
-- match V<version>__<description>.sql, with <version> a dot- or
-- underscore-separated sequence of integers and <description> lowercase
-- snake_case.

CREATE TABLE example (
	id SERIAL PRIMARY KEY,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

const exampleFilename = "V1__create_example_table.sql"

// InitReport describes what InitProject created.
type InitReport struct {
	Dir         string
	ExampleFile string
	DirCreated  bool
	FileWritten bool
}

// AlreadyInitializedError is returned when dir already contains any entry
// and force is false.
type AlreadyInitializedError struct {
	Dir string
}

func (e AlreadyInitializedError) Error() string {
	return fmt.Sprintf("%s is not empty; pass force to overwrite", e.Dir)
}

// InitProject creates dir if absent and writes a starter migration into it.
// If dir already contains entries and force is false, it returns
// AlreadyInitializedError without writing anything. force overwrites the
// starter file (but never deletes pre-existing migrations).
func InitProject(dir string, force bool) (InitReport, error) {
	report := InitReport{Dir: dir, ExampleFile: filepath.Join(dir, exampleFilename)}

	entries, err := os.ReadDir(dir)
	switch {
	case os.IsNotExist(err):
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return report, fmt.Errorf("creating migrations directory: %w", err)
		}
		report.DirCreated = true
	case err != nil:
		return report, fmt.Errorf("reading migrations directory: %w", err)
	case len(entries) > 0 && !force:
		return report, AlreadyInitializedError{Dir: dir}
	}

	if err := os.WriteFile(report.ExampleFile, []byte(exampleMigration), 0o644); err != nil {
		return report, fmt.Errorf("writing example migration: %w", err)
	}
	report.FileWritten = true

	return report, nil
}
