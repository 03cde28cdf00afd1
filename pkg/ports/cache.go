package ports

import (
	"context"

	"github.com/ts-factory/bublik-logtree/pkg/domain"
)

// TreeCache defines the interface for storing built trees.
// Trees are rebuilt from the source on a miss, so entries may be dropped at
// any time.
type TreeCache interface {
	// Get returns the cached tree of a run.
	// Returns domain.ErrCacheMiss if no entry exists.
	Get(ctx context.Context, runID int64) (*domain.Tree, error)

	// Set stores the tree of a run, replacing any previous entry.
	Set(ctx context.Context, runID int64, tree *domain.Tree) error

	// Delete drops the entry of a run. Deleting a missing entry is not an error.
	Delete(ctx context.Context, runID int64) error
}

// ListableCache is a TreeCache that can enumerate its entries.
type ListableCache interface {
	TreeCache

	// List returns the runs with a live entry.
	List(ctx context.Context) ([]int64, error)
}
