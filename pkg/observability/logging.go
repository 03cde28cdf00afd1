package observability

import (
	"context"
	"log/slog"

	"github.com/ts-factory/bublik-logtree/pkg/domain"
)

// LogHooks logs stage timings at debug level and finished builds at info.
func LogHooks(logger *slog.Logger) domain.PipelineHooks {
	return domain.PipelineHooks{
		OnStage: func(ctx context.Context, e *domain.StageEvent) {
			logger.DebugContext(ctx, "stage",
				"stage", e.Stage,
				"nodes", e.Nodes,
				"duration", e.Duration,
			)
		},
		OnBuild: func(ctx context.Context, e *domain.BuildEvent) {
			logger.InfoContext(ctx, "tree_built",
				"run_id", e.RunID,
				"nodes", e.Nodes,
				"merged", e.Merged,
				"issues", e.Issues,
				"empty", e.Empty,
			)
		},
	}
}
