package cli

import (
	"errors"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"github.com/ts-factory/bublik-logtree"
	"github.com/ts-factory/bublik-logtree/internal/config"
	"github.com/ts-factory/bublik-logtree/pkg/adapters/bublik"
	"github.com/ts-factory/bublik-logtree/pkg/adapters/file"
	"github.com/ts-factory/bublik-logtree/pkg/adapters/memory"
	redisadapter "github.com/ts-factory/bublik-logtree/pkg/adapters/redis"
	"github.com/ts-factory/bublik-logtree/pkg/observability"
	"github.com/ts-factory/bublik-logtree/pkg/ports"
)

// Runtime bundles a configured service with the resources it owns.
type Runtime struct {
	Config  *config.Config
	Logger  *slog.Logger
	Service *logtree.Service
	Metrics *observability.Metrics

	closers []func() error
}

// Close releases backend connections.
func (r *Runtime) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		errs = append(errs, r.closers[i]())
	}
	r.closers = nil
	return errors.Join(errs...)
}

// NewRuntime wires the source, cache, locker and hooks selected by cfg.
func NewRuntime(cfg *config.Config, logger *slog.Logger) (*Runtime, error) {
	if logger == nil {
		logger = NewLogger(cfg.Log)
	}
	rt := &Runtime{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewMetrics(),
	}

	source, err := createSource(cfg, logger)
	if err != nil {
		return nil, err
	}

	opts := []logtree.Option{
		logtree.WithLogger(logger),
		logtree.WithHooks(rt.Metrics.Hooks().Merge(observability.LogHooks(logger))),
		logtree.WithSeparator(cfg.Tree.Separator),
		logtree.WithCompression(cfg.Tree.Compress),
		logtree.WithLockTTL(cfg.Cache.LockTTL),
	}

	cache, locker, err := rt.createCache(cfg)
	if err != nil {
		return nil, err
	}
	if cache != nil {
		opts = append(opts, logtree.WithCache(cache))
	}
	if locker != nil {
		opts = append(opts, logtree.WithLocker(locker))
	}

	svc, err := logtree.New(source, opts...)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	rt.Service = svc

	logger.Debug("Runtime ready",
		"source", cfg.Source.Kind,
		"cache", cfg.Cache.Backend,
		"compress", cfg.Tree.Compress,
	)
	return rt, nil
}

func createSource(cfg *config.Config, logger *slog.Logger) (ports.TreeSource, error) {
	switch cfg.Source.Kind {
	case "file":
		return file.NewSource(cfg.Source.Dir), nil
	case "http", "":
		opts := []bublik.Option{
			bublik.WithTimeout(cfg.Upstream.Timeout),
			bublik.WithRetries(cfg.Upstream.Retries),
			bublik.WithBackoff(cfg.Upstream.RetryBackoff),
			bublik.WithLogger(logger),
		}
		if cfg.Upstream.Cookie != "" {
			opts = append(opts, bublik.WithHeader("Cookie", cfg.Upstream.Cookie))
		}
		client, err := bublik.New(cfg.Upstream.BaseURL, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create upstream client: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown source kind %q", cfg.Source.Kind)
	}
}

func (rt *Runtime) createCache(cfg *config.Config) (ports.TreeCache, ports.DistributedLocker, error) {
	c := cfg.Cache
	switch c.Backend {
	case "none", "":
		return nil, nil, nil
	case "memory":
		cache, err := memory.NewCache(c.Size, memory.WithTTL(c.TTL))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create memory cache: %w", err)
		}
		return cache, nil, nil
	case "file":
		return file.NewCache(c.Dir, c.TTL), nil, nil
	case "redis":
		client := goredis.NewClient(&goredis.Options{
			Addr:     c.Redis.Addr,
			Password: c.Redis.Password,
			DB:       c.Redis.DB,
		})
		prefix := c.Redis.Prefix
		if prefix == "" {
			prefix = redisadapter.DefaultPrefix
		}
		cache := redisadapter.NewFromClient(client,
			redisadapter.WithTTL(c.TTL),
			redisadapter.WithPrefix(prefix),
		)
		rt.closers = append(rt.closers, cache.Close)
		return cache, redisadapter.NewLocker(client, prefix), nil
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", c.Backend)
	}
}
