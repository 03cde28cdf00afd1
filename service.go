package logtree

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ts-factory/bublik-logtree/internal/logging"
	"github.com/ts-factory/bublik-logtree/pkg/domain"
	"github.com/ts-factory/bublik-logtree/pkg/ports"
	"github.com/ts-factory/bublik-logtree/pkg/runlock"
	"github.com/ts-factory/bublik-logtree/pkg/tree"
)

// Service builds, caches and queries log trees.
type Service struct {
	source ports.TreeSource
	cache  ports.TreeCache
	locks  *runlock.Manager

	locker    ports.DistributedLocker
	lockTTL   time.Duration
	hooks     domain.PipelineHooks
	logger    *slog.Logger
	separator string
	compress  bool
}

// Option defines a functional option for configuring the Service.
type Option func(*Service)

// WithCache stores built trees in cache. Without a cache every request
// rebuilds the tree.
func WithCache(cache ports.TreeCache) Option {
	return func(s *Service) {
		s.cache = cache
	}
}

// WithLocker coordinates builds across replicas.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(s *Service) {
		s.locker = locker
	}
}

// WithLockTTL sets the expiry of distributed build locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.lockTTL = ttl
	}
}

// WithLogger sets a custom structured logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks domain.PipelineHooks) Option {
	return func(s *Service) {
		s.hooks = hooks
	}
}

// WithSeparator sets the label separator of compressed chains.
func WithSeparator(sep string) Option {
	return func(s *Service) {
		s.separator = sep
	}
}

// WithCompression toggles chain compression.
func WithCompression(enabled bool) Option {
	return func(s *Service) {
		s.compress = enabled
	}
}

// New creates a Service reading raw trees from source.
func New(source ports.TreeSource, opts ...Option) (*Service, error) {
	if source == nil {
		return nil, errors.New("tree source is required")
	}
	s := &Service{
		source:    source,
		lockTTL:   runlock.DefaultTTL,
		logger:    logging.NewNop(),
		separator: tree.DefaultSeparator,
		compress:  true,
	}
	for _, opt := range opts {
		opt(s)
	}

	lockOpts := []runlock.Option{
		runlock.WithLogger(s.logger),
		runlock.WithTTL(s.lockTTL),
	}
	if s.locker != nil {
		lockOpts = append(lockOpts, runlock.WithLocker(s.locker))
	}
	s.locks = runlock.NewManager(lockOpts...)
	return s, nil
}

func (s *Service) buildOptions(runID int64) []tree.BuildOption {
	return []tree.BuildOption{
		tree.WithSeparator(s.separator),
		tree.WithCompression(s.compress),
		tree.WithHooks(s.hooks),
		tree.WithRunID(runID),
	}
}

// Tree returns the built tree of a run, from the cache when possible.
//
// On a miss the run is fetched and built under a per-run lock, so
// concurrent callers share one build. Cache failures are logged and
// otherwise ignored. A run without a main package yields the empty tree.
func (s *Service) Tree(ctx context.Context, runID int64) (*domain.Tree, error) {
	if s.cache == nil {
		return s.build(ctx, runID)
	}

	if t, ok := s.cached(ctx, runID); ok {
		s.hooks.Cache(ctx, &domain.CacheEvent{RunID: runID, Hit: true})
		return t, nil
	}
	s.hooks.Cache(ctx, &domain.CacheEvent{RunID: runID, Hit: false})

	var result *domain.Tree
	err := s.locks.WithLock(ctx, runlock.RunKey(runID), func(ctx context.Context) error {
		// Another holder may have built it while we waited.
		if t, ok := s.cached(ctx, runID); ok {
			result = t
			return nil
		}

		t, err := s.build(ctx, runID)
		if err != nil {
			return err
		}
		if err := s.cache.Set(ctx, runID, t); err != nil {
			s.logger.Warn("Failed to cache tree", "run_id", runID, "err", err)
		}
		result = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) cached(ctx context.Context, runID int64) (*domain.Tree, bool) {
	t, err := s.cache.Get(ctx, runID)
	if err == nil {
		return t, true
	}
	if !errors.Is(err, domain.ErrCacheMiss) {
		s.logger.Warn("Cache lookup failed", "run_id", runID, "err", err)
	}
	return nil, false
}

func (s *Service) build(ctx context.Context, runID int64) (*domain.Tree, error) {
	payload, err := s.source.Fetch(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("fetch run %d: %w", runID, err)
	}

	t, err := tree.Build(ctx, payload, s.buildOptions(runID)...)
	if err != nil {
		return nil, fmt.Errorf("build run %d: %w", runID, err)
	}

	if len(t.Issues) > 0 {
		s.logger.Warn("Skipped malformed nodes", "run_id", runID, "issues", len(t.Issues))
	}
	s.logger.Debug("Built tree", "run_id", runID, "nodes", t.Len(), "empty", t.IsEmpty())
	return t, nil
}

// Normalize builds a tree from an ad-hoc payload. Nothing is cached.
func (s *Service) Normalize(ctx context.Context, payload []byte) (*domain.Tree, error) {
	return tree.Build(ctx, payload, s.buildOptions(0)...)
}

// NodePath returns the root-to-node identifier path used for deep links.
// Identifiers absorbed by compression resolve to their merged node.
func (s *Service) NodePath(ctx context.Context, runID, nodeID int64) ([]int64, error) {
	t, err := s.Tree(ctx, runID)
	if err != nil {
		return nil, err
	}
	return tree.PathTo(t, nodeID)
}

// Invalidate drops the cached tree of a run.
func (s *Service) Invalidate(ctx context.Context, runID int64) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Delete(ctx, runID); err != nil {
		return fmt.Errorf("invalidate run %d: %w", runID, err)
	}
	s.logger.Debug("Invalidated tree", "run_id", runID)
	return nil
}

// Warm builds and caches the given runs with at most concurrency builds in
// flight. It stops at the first failure.
func (s *Service) Warm(ctx context.Context, concurrency int, runIDs ...int64) error {
	if concurrency <= 0 {
		concurrency = 1
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, id := range runIDs {
		g.Go(func() error {
			t, err := s.Tree(ctx, id)
			if err != nil {
				return err
			}
			s.logger.Info("Warmed tree", "run_id", id, "nodes", t.Len())
			return nil
		})
	}
	return g.Wait()
}

// Cached lists the runs currently in the cache, when the cache supports it.
func (s *Service) Cached(ctx context.Context) ([]int64, error) {
	lc, ok := s.cache.(ports.ListableCache)
	if !ok {
		return nil, errors.New("cache does not support listing")
	}
	return lc.List(ctx)
}
