package tree_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ts-factory/bublik-logtree/pkg/domain"
	"github.com/ts-factory/bublik-logtree/pkg/tree"
)

func TestBuild_Chain(t *testing.T) {
	tr := mustBuild(t, chainPayload)

	require.Equal(t, 3, tr.Len())
	merged := nodeByID(t, tr, 3)
	assert.Equal(t, "A/B", merged.Name)
	assert.Equal(t, []int64{1, 3, 4}, nodeByID(t, tr, 4).Path)
}

func TestBuild_Flat(t *testing.T) {
	tr := mustBuild(t, flatPayload)

	require.Equal(t, 3, tr.Len())
	assert.Equal(t, []int64{1, 2}, nodeByID(t, tr, 2).Path)
	assert.Equal(t, []int64{1, 3}, nodeByID(t, tr, 3).Path)
}

func TestBuild_MissingRootIsEmpty(t *testing.T) {
	tr, err := tree.Build(context.Background(), []byte(`{"results": []}`))
	require.NoError(t, err)
	assert.True(t, tr.IsEmpty())
	assert.Nil(t, tree.Nest(tr))
}

func TestBuild_InvalidJSON(t *testing.T) {
	_, err := tree.Build(context.Background(), []byte(`{"main_package": `))
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)
}

func TestBuild_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := tree.Build(ctx, []byte(flatPayload))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuild_WithoutCompression(t *testing.T) {
	tr := mustBuild(t, chainPayload, tree.WithCompression(false))

	require.Equal(t, 4, tr.Len())
	assert.False(t, tr.Compressed)
	assert.Equal(t, []int64{1, 2, 3, 4}, nodeByID(t, tr, 4).Path)
}

func TestBuild_Separator(t *testing.T) {
	tr := mustBuild(t, chainPayload, tree.WithSeparator(" > "))
	assert.Equal(t, "A > B", nodeByID(t, tr, 3).Name)
}

func TestBuild_ReportsIssues(t *testing.T) {
	tr := mustBuild(t, `{"main_package": {"id": 1, "type": "pkg", "children": [{"type": "test"}, {"id": 2, "type": "test"}]}}`)
	assert.Equal(t, 2, tr.Len())
	require.Len(t, tr.Issues, 1)
	assert.Equal(t, "mainPackage.children[0]", tr.Issues[0].Location)
}

func TestBuild_Hooks(t *testing.T) {
	var stages []domain.Stage
	var build *domain.BuildEvent
	hooks := domain.PipelineHooks{
		OnStage: func(_ context.Context, e *domain.StageEvent) {
			stages = append(stages, e.Stage)
		},
		OnBuild: func(_ context.Context, e *domain.BuildEvent) {
			build = e
		},
	}

	mustBuild(t, chainPayload, tree.WithHooks(hooks), tree.WithRunID(77))

	assert.Equal(t, []domain.Stage{
		domain.StageNormalize,
		domain.StageDecode,
		domain.StageParents,
		domain.StageCompress,
		domain.StagePaths,
	}, stages)
	require.NotNil(t, build)
	assert.Equal(t, int64(77), build.RunID)
	assert.Equal(t, 3, build.Nodes)
	assert.Equal(t, 1, build.Merged)
	assert.False(t, build.Empty)
}

func TestBuild_Deterministic(t *testing.T) {
	a, err := json.Marshal(mustBuild(t, chainPayload))
	require.NoError(t, err)
	b, err := json.Marshal(mustBuild(t, chainPayload))
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))
}
