// SPDX-License-Identifier: Apache-2.0

package scaffold_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/schemalane/schemalane/pkg/scaffold"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitProjectCreatesDirAndExample(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "migrations")

	report, err := scaffold.InitProject(dir, false)
	require.NoError(t, err)
	assert.True(t, report.DirCreated)
	assert.True(t, report.FileWritten)

	_, err = os.Stat(report.ExampleFile)
	require.NoError(t, err)
}

func TestInitProjectRefusesNonEmptyDirWithoutForce(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "V1__existing.sql"), []byte("SELECT 1;"), 0o644))

	_, err := scaffold.InitProject(dir, false)

	var already scaffold.AlreadyInitializedError
	require.ErrorAs(t, err, &already)
}

func TestInitProjectForceOverwritesExampleOnly(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "V1__existing.sql"), []byte("SELECT 1;"), 0o644))

	report, err := scaffold.InitProject(dir, true)
	require.NoError(t, err)
	assert.True(t, report.FileWritten)

	_, err = os.Stat(filepath.Join(dir, "V1__existing.sql"))
	require.NoError(t, err)
}
