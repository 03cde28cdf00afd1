package ports_test

import (
	"context"
	"testing"

	"github.com/ts-factory/bublik-logtree/pkg/domain"
	"github.com/ts-factory/bublik-logtree/pkg/ports"
)

// MockCache is an in-memory implementation of TreeCache for testing purposes.
type MockCache struct {
	data map[int64]*domain.Tree
}

func NewMockCache() *MockCache {
	return &MockCache{
		data: make(map[int64]*domain.Tree),
	}
}

func (m *MockCache) Get(ctx context.Context, runID int64) (*domain.Tree, error) {
	tree, ok := m.data[runID]
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	return tree.Clone(), nil
}

func (m *MockCache) Set(ctx context.Context, runID int64, tree *domain.Tree) error {
	// Deep copy to simulate serialization
	m.data[runID] = tree.Clone()
	return nil
}

func (m *MockCache) Delete(ctx context.Context, runID int64) error {
	delete(m.data, runID)
	return nil
}

func (m *MockCache) List(ctx context.Context) ([]int64, error) {
	runs := make([]int64, 0, len(m.data))
	for id := range m.data {
		runs = append(runs, id)
	}
	return runs, nil
}

func TestTreeCache_Contract(t *testing.T) {
	// The mock doubles as the reference implementation of the contract.
	ports.RunTreeCacheContract(t, NewMockCache())
}
