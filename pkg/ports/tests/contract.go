package tests

import (
	"context"
	"testing"

	"github.com/ts-factory/bublik-logtree/pkg/domain"
	"github.com/ts-factory/bublik-logtree/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TreeSourceContractTest is a reusable test suite that verifies if an adapter complies with ports.TreeSource.
func TreeSourceContractTest(t *testing.T, source ports.TreeSource, setupData map[int64][]byte) {
	t.Helper()
	ctx := context.Background()

	t.Run("Fetch_Success", func(t *testing.T) {
		for runID, expected := range setupData {
			payload, err := source.Fetch(ctx, runID)
			require.NoError(t, err, "fetching run %d", runID)
			assert.JSONEq(t, string(expected), string(payload), "payload mismatch for run %d", runID)
		}
	})

	t.Run("Fetch_NotFound", func(t *testing.T) {
		_, err := source.Fetch(ctx, -1)
		assert.ErrorIs(t, err, domain.ErrRunNotFound)
	})

	t.Run("Fetch_Canceled", func(t *testing.T) {
		canceled, cancel := context.WithCancel(ctx)
		cancel()
		for runID := range setupData {
			_, err := source.Fetch(canceled, runID)
			assert.ErrorIs(t, err, context.Canceled)
			break
		}
	})
}
