package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/gokode/internal/pkg/goerror"
	"github.com/shandysiswandi/gokode/internal/verification/entity"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

func testRecord(digest string) entity.CodeRecord {
	return entity.CodeRecord{
		Digest:   digest,
		Purpose:  entity.PurposeAuth,
		Attempts: 0,
		IssuedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestMemory_PutGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemory(newFakeClock())

	want := testRecord("d1")
	if err := s.Put(ctx, entity.ChannelEmail, "a@b.test", want, 5*time.Minute); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := s.Get(ctx, entity.ChannelEmail, "a@b.test")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Digest != want.Digest || got.Purpose != want.Purpose || got.Attempts != want.Attempts {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}
	if !got.IssuedAt.Equal(want.IssuedAt) {
		t.Errorf("Get() IssuedAt = %v, want %v", got.IssuedAt, want.IssuedAt)
	}
}

func TestMemory_GetMissing(t *testing.T) {
	s := NewMemory(newFakeClock())

	if _, err := s.Get(context.Background(), entity.ChannelEmail, "nobody@b.test"); !errors.Is(err, goerror.ErrNotFound) {
		t.Errorf("Get() error = %v, want %v", err, goerror.ErrNotFound)
	}
}

func TestMemory_ExpiredRecordIsGone(t *testing.T) {
	ctx := context.Background()
	clk := newFakeClock()
	s := NewMemory(clk)

	if err := s.Put(ctx, entity.ChannelPhone, "+628111", testRecord("d1"), 5*time.Minute); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	clk.Advance(5 * time.Minute)

	if _, err := s.Get(ctx, entity.ChannelPhone, "+628111"); !errors.Is(err, goerror.ErrNotFound) {
		t.Errorf("Get() error = %v, want %v", err, goerror.ErrNotFound)
	}
}

func TestMemory_OverwriteResetsAttemptsAndTTL(t *testing.T) {
	ctx := context.Background()
	clk := newFakeClock()
	s := NewMemory(clk)

	if err := s.Put(ctx, entity.ChannelEmail, "a@b.test", testRecord("d1"), 5*time.Minute); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if _, err := s.Fail(ctx, entity.ChannelEmail, "a@b.test"); err != nil {
		t.Fatalf("Fail() error = %v", err)
	}
	if _, err := s.Fail(ctx, entity.ChannelEmail, "a@b.test"); err != nil {
		t.Fatalf("Fail() error = %v", err)
	}

	clk.Advance(4 * time.Minute)
	if err := s.Put(ctx, entity.ChannelEmail, "a@b.test", testRecord("d2"), 5*time.Minute); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	clk.Advance(4 * time.Minute)
	got, err := s.Get(ctx, entity.ChannelEmail, "a@b.test")
	if err != nil {
		t.Fatalf("Get() after overwrite error = %v", err)
	}
	if got.Digest != "d2" {
		t.Errorf("Get() Digest = %q, want %q", got.Digest, "d2")
	}
	if got.Attempts != 0 {
		t.Errorf("Get() Attempts = %d, want 0", got.Attempts)
	}
}

func TestMemory_FailCounts(t *testing.T) {
	ctx := context.Background()
	s := NewMemory(newFakeClock())

	if err := s.Put(ctx, entity.ChannelEmail, "a@b.test", testRecord("d1"), 5*time.Minute); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	for want := int32(1); want <= 3; want++ {
		got, err := s.Fail(ctx, entity.ChannelEmail, "a@b.test")
		if err != nil {
			t.Fatalf("Fail() error = %v", err)
		}
		if got != want {
			t.Errorf("Fail() = %d, want %d", got, want)
		}
	}

	if _, err := s.Fail(ctx, entity.ChannelEmail, "nobody@b.test"); !errors.Is(err, goerror.ErrNotFound) {
		t.Errorf("Fail() on missing record error = %v, want %v", err, goerror.ErrNotFound)
	}
}

func TestMemory_ConsumeIsOneTimeUse(t *testing.T) {
	ctx := context.Background()
	s := NewMemory(newFakeClock())

	if err := s.Put(ctx, entity.ChannelEmail, "a@b.test", testRecord("d1"), 5*time.Minute); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	ok, err := s.Consume(ctx, entity.ChannelEmail, "a@b.test", "d1")
	if err != nil {
		t.Fatalf("Consume() error = %v", err)
	}
	if !ok {
		t.Fatal("Consume() = false, want true")
	}

	ok, err = s.Consume(ctx, entity.ChannelEmail, "a@b.test", "d1")
	if err != nil {
		t.Fatalf("Consume() again error = %v", err)
	}
	if ok {
		t.Error("Consume() after consume = true, want false")
	}

	if _, err := s.Get(ctx, entity.ChannelEmail, "a@b.test"); !errors.Is(err, goerror.ErrNotFound) {
		t.Errorf("Get() after consume error = %v, want %v", err, goerror.ErrNotFound)
	}
}

func TestMemory_ConsumeWrongDigestKeepsRecord(t *testing.T) {
	ctx := context.Background()
	s := NewMemory(newFakeClock())

	if err := s.Put(ctx, entity.ChannelEmail, "a@b.test", testRecord("d1"), 5*time.Minute); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	ok, err := s.Consume(ctx, entity.ChannelEmail, "a@b.test", "other")
	if err != nil {
		t.Fatalf("Consume() error = %v", err)
	}
	if ok {
		t.Error("Consume() with wrong digest = true, want false")
	}

	if _, err := s.Get(ctx, entity.ChannelEmail, "a@b.test"); err != nil {
		t.Errorf("Get() after failed consume error = %v, want record kept", err)
	}
}

func TestMemory_Delete(t *testing.T) {
	ctx := context.Background()
	s := NewMemory(newFakeClock())

	if err := s.Put(ctx, entity.ChannelEmail, "a@b.test", testRecord("d1"), 5*time.Minute); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := s.Delete(ctx, entity.ChannelEmail, "a@b.test"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Get(ctx, entity.ChannelEmail, "a@b.test"); !errors.Is(err, goerror.ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want %v", err, goerror.ErrNotFound)
	}

	if err := s.Delete(ctx, entity.ChannelEmail, "nobody@b.test"); err != nil {
		t.Errorf("Delete() on missing record error = %v, want nil", err)
	}
}

func TestMemory_ChannelsAreDistinct(t *testing.T) {
	ctx := context.Background()
	s := NewMemory(newFakeClock())

	if err := s.Put(ctx, entity.ChannelEmail, "shared", testRecord("email-d"), 5*time.Minute); err != nil {
		t.Fatalf("Put(email) error = %v", err)
	}
	if err := s.Put(ctx, entity.ChannelPhone, "shared", testRecord("phone-d"), 5*time.Minute); err != nil {
		t.Fatalf("Put(phone) error = %v", err)
	}

	got, err := s.Get(ctx, entity.ChannelEmail, "shared")
	if err != nil {
		t.Fatalf("Get(email) error = %v", err)
	}
	if got.Digest != "email-d" {
		t.Errorf("Get(email) Digest = %q, want %q", got.Digest, "email-d")
	}
}

func TestMemory_SweepEvictsExpired(t *testing.T) {
	ctx := context.Background()
	clk := newFakeClock()
	s := NewMemory(clk)

	if err := s.Put(ctx, entity.ChannelEmail, "short@b.test", testRecord("d1"), time.Second); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	clk.Advance(2 * memorySweepInterval)
	if err := s.Put(ctx, entity.ChannelEmail, "fresh@b.test", testRecord("d2"), 5*time.Minute); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	s.mu.Lock()
	n := len(s.records)
	s.mu.Unlock()
	if n != 1 {
		t.Errorf("records after sweep = %d, want 1", n)
	}
}

func TestMemory_Close(t *testing.T) {
	ctx := context.Background()
	s := NewMemory(newFakeClock())

	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() twice error = %v", err)
	}

	if err := s.Put(ctx, entity.ChannelEmail, "a@b.test", testRecord("d1"), time.Minute); !errors.Is(err, ErrClosed) {
		t.Errorf("Put() after close error = %v, want %v", err, ErrClosed)
	}
	if _, err := s.Get(ctx, entity.ChannelEmail, "a@b.test"); !errors.Is(err, ErrClosed) {
		t.Errorf("Get() after close error = %v, want %v", err, ErrClosed)
	}
}
