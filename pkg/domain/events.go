package domain

import (
	"context"
	"time"
)

// Stage names a pipeline step.
type Stage string

const (
	StageNormalize Stage = "normalize"
	StageDecode    Stage = "decode"
	StageParents   Stage = "parents"
	StageCompress  Stage = "compress"
	StagePaths     Stage = "paths"
)

// StageEvent reports the completion of a pipeline stage.
type StageEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	Stage     Stage         `json:"stage"`
	Nodes     int           `json:"nodes"`
	Duration  time.Duration `json:"duration"`
}

// BuildEvent reports a finished pipeline run.
type BuildEvent struct {
	Timestamp time.Time `json:"timestamp"`
	RunID     int64     `json:"run_id,omitempty"`
	Nodes     int       `json:"nodes"`
	Merged    int       `json:"merged"`
	Issues    int       `json:"issues"`
	Empty     bool      `json:"empty"`
}

// CacheEvent reports a cache lookup.
type CacheEvent struct {
	RunID int64 `json:"run_id"`
	Hit   bool  `json:"hit"`
}

// PipelineHooks defines callbacks for pipeline observability.
// Nil callbacks are skipped.
type PipelineHooks struct {
	OnStage func(context.Context, *StageEvent)
	OnBuild func(context.Context, *BuildEvent)
	OnCache func(context.Context, *CacheEvent)
}

// Stage invokes OnStage if set.
func (h PipelineHooks) Stage(ctx context.Context, e *StageEvent) {
	if h.OnStage != nil {
		h.OnStage(ctx, e)
	}
}

// Build invokes OnBuild if set.
func (h PipelineHooks) Build(ctx context.Context, e *BuildEvent) {
	if h.OnBuild != nil {
		h.OnBuild(ctx, e)
	}
}

// Cache invokes OnCache if set.
func (h PipelineHooks) Cache(ctx context.Context, e *CacheEvent) {
	if h.OnCache != nil {
		h.OnCache(ctx, e)
	}
}

// Merge returns hooks that call h first and then other.
func (h PipelineHooks) Merge(other PipelineHooks) PipelineHooks {
	return PipelineHooks{
		OnStage: func(ctx context.Context, e *StageEvent) {
			h.Stage(ctx, e)
			other.Stage(ctx, e)
		},
		OnBuild: func(ctx context.Context, e *BuildEvent) {
			h.Build(ctx, e)
			other.Build(ctx, e)
		},
		OnCache: func(ctx context.Context, e *CacheEvent) {
			h.Cache(ctx, e)
			other.Cache(ctx, e)
		},
	}
}
