package testutils

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

// ChainPayload is ts(1) -> a(2) -> b(3) -> t(4, failed test).
// Compressed, it becomes ts(1) -> a/b(3) -> t(4).
const ChainPayload = `{
	"main_package": {
		"id": 1, "name": "ts", "type": "pkg",
		"children": [{
			"id": 2, "name": "a", "type": "pkg",
			"children": [{
				"id": 3, "name": "b", "type": "session",
				"children": [{"id": 4, "name": "t", "type": "test", "has_error": true}]
			}]
		}]
	}
}`

// EmptyPayload has no main package.
const EmptyPayload = `{"results": []}`

// SetupRunsDir creates a temporary directory holding <run-id>.json for every
// entry of runs, laid out the way the file source reads them.
// It fails the test immediately on error.
func SetupRunsDir(t *testing.T, runs map[int64]string) string {
	t.Helper()

	dir := t.TempDir()
	for id, payload := range runs {
		name := filepath.Join(dir, strconv.FormatInt(id, 10)+".json")
		require.NoError(t, os.WriteFile(name, []byte(payload), 0644), "Failed to write run %d", id)
	}
	return dir
}
