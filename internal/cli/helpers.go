package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/ts-factory/bublik-logtree/internal/config"
	"github.com/ts-factory/bublik-logtree/internal/logging"
	"github.com/ts-factory/bublik-logtree/pkg/domain"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	start  sync.Once
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// It acts as a drop-in replacement for signal.NotifyContext but allows retrieving the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	sc.start.Do(func() {
		signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			select {
			case sig := <-sc.sigCh:
				sc.mu.Lock()
				sc.sigVal = sig
				sc.mu.Unlock()
				sc.Cancel()
			case <-sc.Context.Done():
			}
			sc.stop.Do(func() {
				signal.Stop(sc.sigCh)
			})
		}()
	})

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// NewLogger builds the application logger from the log section.
// An unknown level falls back to info and is reported through the logger itself.
func NewLogger(cfg config.LogConfig) *slog.Logger {
	level, err := logging.ParseLevel(cfg.Level)
	logger := logging.NewFormat(cfg.Format, level)
	if err != nil {
		logger.Warn("Invalid log level, using info", "level", cfg.Level, "err", err)
	}
	return logger
}

// Process exit codes.
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitUsage    = 2
	ExitNotFound = 3
	ExitUpstream = 4
)

// ExitCode maps an error onto a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, context.Canceled):
		return ExitOK
	case errors.Is(err, domain.ErrInvalidPayload):
		return ExitUsage
	case errors.Is(err, domain.ErrRunNotFound), errors.Is(err, domain.ErrNodeNotFound):
		return ExitNotFound
	case errors.Is(err, domain.ErrUpstream), errors.Is(err, domain.ErrLockAcquire):
		return ExitUpstream
	default:
		return ExitFailure
	}
}
