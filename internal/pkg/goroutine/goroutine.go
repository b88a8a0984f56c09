// Package goroutine bounds the number of background goroutines the app
// spawns and funnels their errors back to the lifecycle shutdown path.
package goroutine

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/shandysiswandi/gokode/internal/pkg/stacktrace"
)

// DefaultMaxGoroutine is used when NewManager receives a non-positive limit.
const DefaultMaxGoroutine int = 100

// Manager runs functions in goroutines under a fixed concurrency cap.
// Errors returned by tasks accumulate until Wait collects them.
type Manager struct {
	mu      sync.Mutex
	errs    []error
	wg      sync.WaitGroup
	slots   chan struct{}
	stateMu sync.RWMutex
	closed  bool
}

// NewManager creates a new Manager with the provided maximum concurrency.
func NewManager(maxGoroutine int) *Manager {
	if maxGoroutine < 1 {
		maxGoroutine = runtime.NumCPU() * DefaultMaxGoroutine
	}

	return &Manager{slots: make(chan struct{}, maxGoroutine)}
}

// Go schedules f on a goroutine when a slot is free. At the cap, or after
// Wait has been called, the task is dropped with a warning rather than
// queued.
func (g *Manager) Go(pCtx context.Context, f func(ctx context.Context) error) {
	if g == nil {
		return
	}

	g.stateMu.RLock()
	if g.closed {
		g.stateMu.RUnlock()
		slog.WarnContext(pCtx, "goroutine manager is closed, skipping new goroutine")
		return
	}

	select {
	case g.slots <- struct{}{}:
		// Register with the wait group before dropping the read lock so
		// a concurrent Wait cannot slip past an in-flight task.
		g.wg.Add(1)
		g.stateMu.RUnlock()
		go g.run(pCtx, f)
	default:
		g.stateMu.RUnlock()
		slog.WarnContext(pCtx, "Maximum goroutine limit reached, failed to start new goroutine")
	}
}

func (g *Manager) run(ctx context.Context, f func(ctx context.Context) error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			g.logPanic(ctx)
		}
		<-g.slots
		g.wg.Done()
	}()

	select {
	case <-ctx.Done():
		slog.WarnContext(ctx, "goroutine canceled", "because", ctx.Err())
	default:
		if err := f(ctx); err != nil {
			g.mu.Lock()
			g.errs = append(g.errs, err)
			g.mu.Unlock()
		}
	}
}

func (g *Manager) logPanic(ctx context.Context) {
	stack := debug.Stack()
	if paths := stacktrace.InternalPaths(stack); len(paths) > 0 {
		slog.ErrorContext(ctx, "panic occurred in goroutine", "stack", paths)
		return
	}
	slog.ErrorContext(ctx, "panic occurred in goroutine", "stack", string(stack))
}

// Wait closes the manager to new tasks, blocks until all scheduled
// goroutines finish, and returns their joined errors.
func (g *Manager) Wait() error {
	if g == nil {
		return nil
	}

	g.stateMu.Lock()
	g.closed = true
	g.stateMu.Unlock()

	g.wg.Wait()

	return errors.Join(g.errs...)
}
