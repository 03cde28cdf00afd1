package runlock

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/ts-factory/bublik-logtree/internal/logging"
	"github.com/ts-factory/bublik-logtree/pkg/ports"
)

// DefaultTTL bounds how long a crashed holder can keep a distributed lock.
const DefaultTTL = 30 * time.Second

// lockEntry holds the per-key semaphore and its reference count.
type lockEntry struct {
	sem  chan struct{}
	refs int
}

// Manager hands out per-key locks.
type Manager struct {
	mu    sync.Mutex
	locks map[string]*lockEntry

	locker ports.DistributedLocker
	ttl    time.Duration
	logger *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithTTL sets the expiry of distributed locks.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a lock manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		locks:  make(map[string]*lockEntry),
		ttl:    DefaultTTL,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RunKey is the lock key used for a run.
func RunKey(runID int64) string {
	return "run:" + strconv.FormatInt(runID, 10)
}

// acquire gets or creates the entry for key and takes a reference.
// Every acquire must be paired with release.
func (m *Manager) acquire(key string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.locks[key]
	if !ok {
		entry = &lockEntry{sem: make(chan struct{}, 1)}
		m.locks[key] = entry
	}
	entry.refs++
	return entry
}

func (m *Manager) release(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.locks[key]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, key)
	}
}

// Active returns the number of keys currently held or awaited.
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}

// WithLock runs fn while holding the lock for key.
// Waiting stops with ctx.Err() when ctx is done.
func (m *Manager) WithLock(ctx context.Context, key string, fn func(context.Context) error) error {
	entry := m.acquire(key)
	defer m.release(key)

	select {
	case entry.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-entry.sem }()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, key, m.ttl)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			// Release with a fresh context: ctx may already be canceled.
			releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			if err := unlock(releaseCtx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"key", key,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
