// SPDX-License-Identifier: Apache-2.0

package history_test

import (
	"context"
	"testing"

	"github.com/schemalane/schemalane/internal/pgdb"
	"github.com/schemalane/schemalane/pkg/history"
	"github.com/stretchr/testify/assert"
)

// These exercise Gateway's statement-formatting control flow against
// pgdb.FakeDB, with no real connection, for the methods that only ever call
// ExecContext. Append and ReadVersionMarker need a real driver (they inspect
// the returned rows) and stay in gateway_test.go against a container.
func TestGatewayWriteOnlyMethodsRunWithoutRealDatabase(t *testing.T) {
	t.Parallel()

	gw := history.New(&pgdb.FakeDB{}, "public", "flyway_schema_history")
	ctx := context.Background()

	assert.NoError(t, gw.Bootstrap(ctx))
	assert.NoError(t, gw.BootstrapVersionMarker(ctx))
	assert.NoError(t, gw.WriteVersionMarker(ctx, "1.2.3"))
	assert.NoError(t, gw.Reset(ctx))
}
