// Package config loads logtree settings from YAML, .env files and the
// environment, in that order of precedence (lowest first).
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "LOGTREE_"

// Config holds all logtree configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Source   SourceConfig   `yaml:"source"`
	Cache    CacheConfig    `yaml:"cache"`
	Tree     TreeConfig     `yaml:"tree"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig configures the HTTP API and the MCP SSE transport.
type ServerConfig struct {
	Addr    string `yaml:"addr"`
	MCPAddr string `yaml:"mcp_addr"`
	Metrics bool   `yaml:"metrics"`
	MaxBody int64  `yaml:"max_body"`
}

// UpstreamConfig configures the Bublik API client.
type UpstreamConfig struct {
	BaseURL      string        `yaml:"base_url"`
	Timeout      time.Duration `yaml:"timeout"`
	Retries      int           `yaml:"retries"`
	RetryBackoff time.Duration `yaml:"retry_backoff"`
	// Cookie is sent with every request, e.g. "sessionid=...".
	Cookie string `yaml:"cookie"`
}

// SourceConfig selects where raw trees come from.
type SourceConfig struct {
	Kind string `yaml:"kind"` // http, file
	Dir  string `yaml:"dir"`
}

// CacheConfig selects where built trees are kept.
type CacheConfig struct {
	Backend string        `yaml:"backend"` // none, memory, file, redis
	Size    int           `yaml:"size"`
	TTL     time.Duration `yaml:"ttl"`
	Dir     string        `yaml:"dir"`
	LockTTL time.Duration `yaml:"lock_ttl"`
	Redis   RedisConfig   `yaml:"redis"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// TreeConfig configures the pipeline.
type TreeConfig struct {
	Separator string `yaml:"separator"`
	Compress  bool   `yaml:"compress"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text, json
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:    ":8080",
			MCPAddr: ":8081",
			Metrics: true,
			MaxBody: 64 << 20,
		},
		Upstream: UpstreamConfig{
			BaseURL:      "http://localhost:8000",
			Timeout:      30 * time.Second,
			Retries:      2,
			RetryBackoff: 500 * time.Millisecond,
		},
		Source: SourceConfig{Kind: "http"},
		Cache: CacheConfig{
			Backend: "memory",
			Size:    256,
			TTL:     10 * time.Minute,
			LockTTL: 30 * time.Second,
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "logtree:tree:",
			},
		},
		Tree: TreeConfig{Separator: "/", Compress: true},
		Log:  LogConfig{Level: "info", Format: "text"},
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if
// any), then variables from a .env file in the working directory, then the
// process environment. Variables already set in the environment win over
// .env entries.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := decodeYAML(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv overrides fields from LOGTREE_* variables returned by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	var errs []error
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	num := func(name string, dst *int) {
		if v, ok := lookup(EnvPrefix + name); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = n
		}
	}
	dur := func(name string, dst *time.Duration) {
		if v, ok := lookup(EnvPrefix + name); ok {
			d, err := time.ParseDuration(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = d
		}
	}
	flag := func(name string, dst *bool) {
		if v, ok := lookup(EnvPrefix + name); ok {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = b
		}
	}

	str("SERVER_ADDR", &c.Server.Addr)
	str("MCP_ADDR", &c.Server.MCPAddr)
	flag("METRICS", &c.Server.Metrics)

	str("UPSTREAM_URL", &c.Upstream.BaseURL)
	dur("UPSTREAM_TIMEOUT", &c.Upstream.Timeout)
	num("UPSTREAM_RETRIES", &c.Upstream.Retries)
	dur("UPSTREAM_BACKOFF", &c.Upstream.RetryBackoff)
	str("UPSTREAM_COOKIE", &c.Upstream.Cookie)

	str("SOURCE", &c.Source.Kind)
	str("SOURCE_DIR", &c.Source.Dir)

	str("CACHE", &c.Cache.Backend)
	num("CACHE_SIZE", &c.Cache.Size)
	dur("CACHE_TTL", &c.Cache.TTL)
	str("CACHE_DIR", &c.Cache.Dir)
	dur("LOCK_TTL", &c.Cache.LockTTL)
	str("REDIS_ADDR", &c.Cache.Redis.Addr)
	str("REDIS_PASSWORD", &c.Cache.Redis.Password)
	num("REDIS_DB", &c.Cache.Redis.DB)
	str("REDIS_PREFIX", &c.Cache.Redis.Prefix)

	str("TREE_SEPARATOR", &c.Tree.Separator)
	flag("TREE_COMPRESS", &c.Tree.Compress)

	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)

	return errors.Join(errs...)
}

// Validate reports every inconsistent setting at once.
func (c *Config) Validate() error {
	var errs []error

	switch c.Source.Kind {
	case "http":
		if c.Upstream.BaseURL == "" {
			errs = append(errs, errors.New("upstream.base_url is required for the http source"))
		}
	case "file":
		if c.Source.Dir == "" {
			errs = append(errs, errors.New("source.dir is required for the file source"))
		}
	default:
		errs = append(errs, fmt.Errorf("source.kind must be http or file, got %q", c.Source.Kind))
	}

	switch c.Cache.Backend {
	case "none", "file":
	case "memory":
		if c.Cache.Size <= 0 {
			errs = append(errs, errors.New("cache.size must be positive"))
		}
	case "redis":
		if c.Cache.Redis.Addr == "" {
			errs = append(errs, errors.New("cache.redis.addr is required for the redis cache"))
		}
	default:
		errs = append(errs, fmt.Errorf("cache.backend must be none, memory, file or redis, got %q", c.Cache.Backend))
	}

	if c.Upstream.Retries < 0 {
		errs = append(errs, errors.New("upstream.retries must not be negative"))
	}
	if c.Cache.TTL < 0 {
		errs = append(errs, errors.New("cache.ttl must not be negative"))
	}
	if c.Tree.Separator == "" {
		errs = append(errs, errors.New("tree.separator must not be empty"))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}

	return errors.Join(errs...)
}
