package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ts-factory/bublik-logtree/pkg/domain"
)

// DefaultCacheDir is used when no directory is configured.
var DefaultCacheDir = filepath.Join(".logtree", "cache")

// Cache implements ports.TreeCache using the local filesystem.
// Trees are stored as JSON files; a file older than the TTL is a miss.
type Cache struct {
	BasePath string
	TTL      time.Duration

	now func() time.Time
}

// NewCache creates a Cache rooted at basePath. A zero ttl never expires.
func NewCache(basePath string, ttl time.Duration) *Cache {
	if basePath == "" {
		basePath = DefaultCacheDir
	}
	return &Cache{BasePath: basePath, TTL: ttl, now: time.Now}
}

func (c *Cache) path(runID int64) string {
	return filepath.Join(c.BasePath, strconv.FormatInt(runID, 10)+".json")
}

// Set persists the tree atomically: temp file, fsync, rename.
func (c *Cache) Set(ctx context.Context, runID int64, tree *domain.Tree) error {
	if err := os.MkdirAll(c.BasePath, 0o755); err != nil {
		return fmt.Errorf("failed to ensure cache directory: %w", err)
	}

	data, err := json.Marshal(tree)
	if err != nil {
		return fmt.Errorf("failed to marshal tree: %w", err)
	}

	// Same directory so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(c.BasePath, "tmp-"+strconv.FormatInt(runID, 10)+"-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	destPath := c.path(runID)
	// Windows refuses to rename over an existing file; elsewhere the rename
	// replaces it atomically.
	if runtime.GOOS == "windows" {
		if err := os.Remove(destPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to remove stale cache file: %w", err)
		}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Get loads the tree for runID. Expired files are removed.
func (c *Cache) Get(ctx context.Context, runID int64) (*domain.Tree, error) {
	path := c.path(runID)

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to stat cache file: %w", err)
	}
	if c.expired(info) {
		_ = os.Remove(path)
		return nil, domain.ErrCacheMiss
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}

	tree, err := domain.DecodeTree(data)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal tree: %w", err)
	}
	return tree, nil
}

// Delete removes the cached tree. Missing files are not an error.
func (c *Cache) Delete(ctx context.Context, runID int64) error {
	err := os.Remove(c.path(runID))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete cache file: %w", err)
	}
	return nil
}

// List returns the runs with a live cache file, in ascending order.
func (c *Cache) List(ctx context.Context) ([]int64, error) {
	entries, err := os.ReadDir(c.BasePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []int64{}, nil
		}
		return nil, fmt.Errorf("failed to list cache: %w", err)
	}

	runs := []int64{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSuffix(name, ".json"), 10, 64)
		if err != nil {
			continue // temp files
		}
		info, err := entry.Info()
		if err != nil || c.expired(info) {
			continue
		}
		runs = append(runs, id)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i] < runs[j] })
	return runs, nil
}

func (c *Cache) expired(info fs.FileInfo) bool {
	if c.TTL <= 0 {
		return false
	}
	return c.now().Sub(info.ModTime()) > c.TTL
}
