// SPDX-License-Identifier: Apache-2.0

package migration_test

import (
	"testing"

	"github.com/schemalane/schemalane/pkg/migration"
	"github.com/stretchr/testify/assert"
)

func TestChecksumIsDeterministic(t *testing.T) {
	payload := []byte("CREATE TABLE t(id int);\n")

	a := migration.Checksum(payload)
	b := migration.Checksum(payload)

	assert.Equal(t, a, b)
}

func TestChecksumDetectsByteChanges(t *testing.T) {
	original := migration.Checksum([]byte("CREATE TABLE t(id int);\n"))
	withTrailingSpace := migration.Checksum([]byte("CREATE TABLE t(id int); \n"))

	assert.NotEqual(t, original, withTrailingSpace)
}
