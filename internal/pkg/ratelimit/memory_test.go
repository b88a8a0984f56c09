package ratelimit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func TestMemoryAllowConsumesCapacity(t *testing.T) {
	clk := newFakeClock()
	lim := NewMemory(clk)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		res, err := lim.Allow(ctx, "1.2.3.4:otp_send", 5, time.Minute)
		if err != nil {
			t.Fatalf("allow %d: unexpected error: %v", i+1, err)
		}
		if !res.Allowed {
			t.Fatalf("allow %d: expected allowed", i+1)
		}
	}

	res, err := lim.Allow(ctx, "1.2.3.4:otp_send", 5, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Allowed {
		t.Fatal("6th call within window should be rejected")
	}
	if res.RetryAfter <= 0 {
		t.Fatalf("rejected call must report positive RetryAfter, got %v", res.RetryAfter)
	}
	if res.RetryAfter > 12*time.Second {
		t.Fatalf("RetryAfter should not exceed one token interval, got %v", res.RetryAfter)
	}
}

func TestMemoryAllowRefillsOverTime(t *testing.T) {
	clk := newFakeClock()
	lim := NewMemory(clk)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if res, _ := lim.Allow(ctx, "k", 5, time.Minute); !res.Allowed {
			t.Fatalf("warmup call %d rejected", i+1)
		}
	}
	if res, _ := lim.Allow(ctx, "k", 5, time.Minute); res.Allowed {
		t.Fatal("bucket should be empty")
	}

	// One token accrues every window/capacity = 12s.
	clk.Advance(12 * time.Second)
	res, err := lim.Allow(ctx, "k", 5, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Allowed {
		t.Fatal("one token should have refilled after 12s")
	}

	if res, _ := lim.Allow(ctx, "k", 5, time.Minute); res.Allowed {
		t.Fatal("only one token should have refilled")
	}
}

func TestMemoryAllowCapsAtCapacity(t *testing.T) {
	clk := newFakeClock()
	lim := NewMemory(clk)
	ctx := context.Background()

	if res, _ := lim.Allow(ctx, "k", 3, time.Second); !res.Allowed {
		t.Fatal("first call rejected")
	}

	// A long idle period must not accumulate more than capacity.
	clk.Advance(time.Hour)

	allowed := 0
	for i := 0; i < 10; i++ {
		res, _ := lim.Allow(ctx, "k", 3, time.Second)
		if res.Allowed {
			allowed++
		}
	}
	if allowed != 3 {
		t.Fatalf("expected exactly 3 allowed after refill, got %d", allowed)
	}
}

func TestMemoryAllowFractionalRefillCarries(t *testing.T) {
	clk := newFakeClock()
	lim := NewMemory(clk)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		lim.Allow(ctx, "k", 2, time.Minute)
	}

	// 45s at 2 tokens/60s is 1.5 tokens: one token now...
	clk.Advance(45 * time.Second)
	if res, _ := lim.Allow(ctx, "k", 2, time.Minute); !res.Allowed {
		t.Fatal("expected one refilled token after 45s")
	}

	// ...and the 0.5 remainder means the next token lands 15s later,
	// not a full 30s later.
	clk.Advance(15 * time.Second)
	if res, _ := lim.Allow(ctx, "k", 2, time.Minute); !res.Allowed {
		t.Fatal("fractional refill progress was lost")
	}
}

func TestMemoryAllowKeysAreIndependent(t *testing.T) {
	clk := newFakeClock()
	lim := NewMemory(clk)
	ctx := context.Background()

	if res, _ := lim.Allow(ctx, "a", 1, time.Minute); !res.Allowed {
		t.Fatal("first key first call rejected")
	}
	if res, _ := lim.Allow(ctx, "a", 1, time.Minute); res.Allowed {
		t.Fatal("first key should be exhausted")
	}
	if res, _ := lim.Allow(ctx, "b", 1, time.Minute); !res.Allowed {
		t.Fatal("second key must not share the first key's bucket")
	}
}

func TestMemoryAllowZeroConfigAllows(t *testing.T) {
	lim := NewMemory(newFakeClock())

	res, err := lim.Allow(context.Background(), "k", 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Allowed {
		t.Fatal("unconfigured limits should not block")
	}
}

func TestMemorySweepDropsIdleBuckets(t *testing.T) {
	clk := newFakeClock()
	lim := NewMemory(clk)
	ctx := context.Background()

	lim.Allow(ctx, "idle", 5, time.Second)

	// Two windows plus the sweep interval later the bucket is gone.
	clk.Advance(sweepInterval + 3*time.Second)
	lim.Allow(ctx, "active", 5, time.Second)

	lim.mu.Lock()
	_, ok := lim.buckets["idle"]
	lim.mu.Unlock()
	if ok {
		t.Fatal("idle bucket should have been swept")
	}
}

func TestMemoryClose(t *testing.T) {
	lim := NewMemory(newFakeClock())
	if err := lim.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	_, err := lim.Allow(context.Background(), "k", 1, time.Minute)
	if !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}

	if err := lim.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}
