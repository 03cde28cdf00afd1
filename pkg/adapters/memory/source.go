package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/ts-factory/bublik-logtree/pkg/domain"
)

// Source implements ports.TreeSource using an in-memory map.
// Safe for concurrent use.
type Source struct {
	mu       sync.RWMutex
	payloads map[int64][]byte
	fetches  map[int64]int
}

// NewSource creates a Source with the provided raw payloads (JSON strings).
func NewSource(data map[int64]string) *Source {
	payloads := make(map[int64][]byte, len(data))
	for k, v := range data {
		payloads[k] = []byte(v)
	}
	return &Source{payloads: payloads, fetches: make(map[int64]int)}
}

// NewFromValues creates a Source from values that are marshaled to JSON.
// This handles serialization automatically, improving DX for tests.
func NewFromValues(values map[int64]any) (*Source, error) {
	s := &Source{payloads: make(map[int64][]byte, len(values)), fetches: make(map[int64]int)}
	for runID, v := range values {
		bytes, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal run %d: %w", runID, err)
		}
		s.payloads[runID] = bytes
	}
	return s, nil
}

// Fetch returns the stored payload of a run.
func (s *Source) Fetch(ctx context.Context, runID int64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, ok := s.payloads[runID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", domain.ErrRunNotFound, runID)
	}
	s.fetches[runID]++
	return append([]byte(nil), payload...), nil
}

// Put stores or replaces the payload of a run.
func (s *Source) Put(runID int64, payload string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payloads[runID] = []byte(payload)
}

// Fetches reports how many times a run was fetched.
func (s *Source) Fetches(runID int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fetches[runID]
}

// Runs returns all stored run IDs in ascending order.
func (s *Source) Runs() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	runs := make([]int64, 0, len(s.payloads))
	for k := range s.payloads {
		runs = append(runs, k)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i] < runs[j] })
	return runs
}
