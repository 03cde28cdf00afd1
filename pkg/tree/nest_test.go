package tree_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ts-factory/bublik-logtree/pkg/tree"
)

func TestNest(t *testing.T) {
	nested := tree.Nest(mustBuild(t, chainPayload))
	require.NotNil(t, nested)

	data, err := json.Marshal(nested)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"id": 1, "name": "root", "type": "package", "parentId": null, "path": [1],
		"children": [{
			"id": 3, "name": "A/B", "type": "session", "parentId": 1, "path": [1, 3], "mergedIds": [2],
			"children": [{
				"id": 4, "name": "C", "type": "test", "parentId": 3, "path": [1, 3, 4], "children": []
			}]
		}]
	}`, string(data))
}
