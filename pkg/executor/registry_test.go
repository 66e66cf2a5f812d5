// SPDX-License-Identifier: Apache-2.0

package executor_test

import (
	"context"
	"testing"

	"github.com/schemalane/schemalane/pkg/executor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryResolvesRegisteredScript(t *testing.T) {
	var ran bool
	reg := executor.NewRegistry().Register("V1__seed.rs", executor.Func{
		Fn: func(ctx context.Context, conn executor.Execer) error {
			ran = true
			return nil
		},
	})

	e, err := reg.Resolve("V1__seed.rs")
	require.NoError(t, err)
	require.NoError(t, e.Run(context.Background(), nil))
	assert.True(t, ran)
	assert.True(t, e.WantsTransaction())
}

func TestRegistryMissingExecutor(t *testing.T) {
	reg := executor.NewRegistry()

	_, err := reg.Resolve("V1__seed.rs")

	var missing executor.MissingExecutorError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "V1__seed.rs", missing.Script)
}

func TestFuncNoTxOptsOutOfManagedTransaction(t *testing.T) {
	e := executor.Func{
		Fn:   func(ctx context.Context, conn executor.Execer) error { return nil },
		NoTx: true,
	}

	assert.False(t, e.WantsTransaction())
}
