package tree

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ts-factory/bublik-logtree/pkg/domain"
)

// BuildOption configures Build.
type BuildOption func(*buildConfig)

type buildConfig struct {
	separator string
	compress  bool
	hooks     domain.PipelineHooks
	runID     int64
}

// WithSeparator sets the string joining merged chain names (default "/").
func WithSeparator(sep string) BuildOption {
	return func(c *buildConfig) {
		c.separator = sep
	}
}

// WithCompression toggles chain compression (default on).
func WithCompression(enabled bool) BuildOption {
	return func(c *buildConfig) {
		c.compress = enabled
	}
}

// WithHooks registers stage observers.
func WithHooks(hooks domain.PipelineHooks) BuildOption {
	return func(c *buildConfig) {
		c.hooks = hooks
	}
}

// WithRunID labels build events with the run the payload belongs to.
func WithRunID(runID int64) BuildOption {
	return func(c *buildConfig) {
		c.runID = runID
	}
}

// Parse decodes a JSON payload keeping numbers as json.Number so large
// identifiers survive.
func Parse(payload []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after document", domain.ErrInvalidPayload)
	}
	return v, nil
}

// Build runs the full pipeline over a raw API payload.
//
// A payload without a main package yields the empty tree and a nil error.
// Malformed subtrees are skipped and listed in Tree.Issues.
func Build(ctx context.Context, payload []byte, opts ...BuildOption) (*domain.Tree, error) {
	doc, err := Parse(payload)
	if err != nil {
		return nil, err
	}
	return BuildValue(ctx, doc, opts...)
}

// BuildValue runs the pipeline over an already parsed JSON value.
func BuildValue(ctx context.Context, doc any, opts ...BuildOption) (*domain.Tree, error) {
	cfg := buildConfig{separator: DefaultSeparator, compress: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stage := func(s domain.Stage, start time.Time, nodes int) {
		cfg.hooks.Stage(ctx, &domain.StageEvent{
			Timestamp: time.Now(),
			Stage:     s,
			Nodes:     nodes,
			Duration:  time.Since(start),
		})
	}

	start := time.Now()
	normalized := NormalizeKeys(doc)
	stage(domain.StageNormalize, start, 0)

	start = time.Now()
	root, issues, err := Decode(normalized)
	if err != nil && !errors.Is(err, domain.ErrMissingRoot) {
		return nil, err
	}
	stage(domain.StageDecode, start, 0)

	start = time.Now()
	t := AnnotateParents(root)
	t.Issues = issues
	stage(domain.StageParents, start, t.Len())

	annotated := t.Len()
	if cfg.compress {
		start = time.Now()
		t = Compress(t, cfg.separator)
		t.Issues = issues
		stage(domain.StageCompress, start, t.Len())
	}

	start = time.Now()
	t = AnnotatePaths(t)
	t.Issues = issues
	stage(domain.StagePaths, start, t.Len())

	cfg.hooks.Build(ctx, &domain.BuildEvent{
		Timestamp: time.Now(),
		RunID:     cfg.runID,
		Nodes:     t.Len(),
		Merged:    annotated - t.Len(),
		Issues:    len(issues),
		Empty:     t.IsEmpty(),
	})
	return t, nil
}
