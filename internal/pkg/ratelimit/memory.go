package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shandysiswandi/gokode/internal/pkg/clock"
	"go.uber.org/atomic"
)

// ErrClosed indicates Allow was called after Close.
var ErrClosed = errors.New("ratelimit: limiter is closed")

const sweepInterval = time.Minute

type memoryBucket struct {
	tokens     int64
	lastRefill time.Time
	expiresAt  time.Time
}

// Memory is an in-process Limiter. State is local to one process, so it
// is only correct for single-instance deployments; use it in development.
// Idle buckets are swept after two windows, keeping the map bounded.
type Memory struct {
	clock     clock.Clocker
	closed    atomic.Bool
	mu        sync.Mutex
	buckets   map[string]*memoryBucket
	nextSweep time.Time
}

// NewMemory creates an in-process limiter.
func NewMemory(clk clock.Clocker) *Memory {
	return &Memory{
		clock:     clk,
		buckets:   make(map[string]*memoryBucket),
		nextSweep: clk.Now().Add(sweepInterval),
	}
}

// Allow refills and consumes one token for key.
func (m *Memory) Allow(ctx context.Context, key string, capacity int64, window time.Duration) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if capacity < 1 || window <= 0 {
		return Result{Allowed: true}, nil
	}

	now := m.clock.Now()
	windowMs := window.Milliseconds()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed.Load() {
		return Result{}, ErrClosed
	}

	m.sweep(now)

	b, ok := m.buckets[key]
	if !ok {
		b = &memoryBucket{tokens: capacity, lastRefill: now}
		m.buckets[key] = b
	}

	elapsedMs := now.Sub(b.lastRefill).Milliseconds()
	if elapsedMs < 0 {
		elapsedMs = 0
	}

	refill := elapsedMs * capacity / windowMs
	if refill > 0 {
		if b.tokens+refill >= capacity {
			b.tokens = capacity
			b.lastRefill = now
		} else {
			b.tokens += refill
			b.lastRefill = b.lastRefill.Add(time.Duration(refill*windowMs/capacity) * time.Millisecond)
		}
	}
	b.expiresAt = now.Add(2 * window)

	if b.tokens >= 1 {
		b.tokens--
		return Result{Allowed: true}, nil
	}

	perTokenMs := (windowMs + capacity - 1) / capacity
	retryMs := perTokenMs - now.Sub(b.lastRefill).Milliseconds()
	if retryMs < 1 {
		retryMs = 1
	}

	return Result{RetryAfter: time.Duration(retryMs) * time.Millisecond}, nil
}

// Close drops all buckets and rejects further calls.
func (m *Memory) Close() error {
	if m.closed.Swap(true) {
		return nil
	}

	m.mu.Lock()
	m.buckets = make(map[string]*memoryBucket)
	m.mu.Unlock()

	return nil
}

// sweep removes idle buckets. Caller must hold the mutex.
func (m *Memory) sweep(now time.Time) {
	if now.Before(m.nextSweep) {
		return
	}
	for k, b := range m.buckets {
		if now.After(b.expiresAt) {
			delete(m.buckets, k)
		}
	}
	m.nextSweep = now.Add(sweepInterval)
}
