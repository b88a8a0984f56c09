package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shandysiswandi/gokode/internal/pkg/clock"
	"github.com/shandysiswandi/gokode/internal/pkg/goerror"
	"github.com/shandysiswandi/gokode/internal/verification/entity"
	"go.uber.org/atomic"
)

// ErrClosed is returned by every operation after Close.
var ErrClosed = errors.New("store: memory store is closed")

// memorySweepInterval bounds how often expired records are evicted.
const memorySweepInterval = time.Minute

type memoryRecord struct {
	rec       entity.CodeRecord
	expiresAt time.Time
}

// Memory stores code records in an in-process map. It is meant for
// development and tests only: records do not survive a restart and are
// invisible to other instances.
type Memory struct {
	clock  clock.Clocker
	closed atomic.Bool

	mu        sync.Mutex
	records   map[string]*memoryRecord
	nextSweep time.Time
}

// NewMemory creates an in-process code store.
func NewMemory(clk clock.Clocker) *Memory {
	return &Memory{
		clock:     clk,
		records:   make(map[string]*memoryRecord),
		nextSweep: clk.Now().Add(memorySweepInterval),
	}
}

// Put replaces any live record for (channel, recipient) and arms the TTL.
func (s *Memory) Put(_ context.Context, channel entity.Channel, recipient string, rec entity.CodeRecord, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return ErrClosed
	}

	now := s.clock.Now()
	s.sweep(now)
	s.records[key(channel, recipient)] = &memoryRecord{rec: rec, expiresAt: now.Add(ttl)}
	return nil
}

// Get returns the live record or goerror.ErrNotFound.
func (s *Memory) Get(_ context.Context, channel entity.Channel, recipient string) (*entity.CodeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return nil, ErrClosed
	}

	mr, ok := s.live(key(channel, recipient))
	if !ok {
		return nil, goerror.ErrNotFound
	}

	rec := mr.rec
	return &rec, nil
}

// Fail increments the wrong-attempt counter and returns the new value.
func (s *Memory) Fail(_ context.Context, channel entity.Channel, recipient string) (int32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return 0, ErrClosed
	}

	mr, ok := s.live(key(channel, recipient))
	if !ok {
		return 0, goerror.ErrNotFound
	}

	mr.rec.Attempts++
	return mr.rec.Attempts, nil
}

// Consume deletes the record iff its digest equals digest.
func (s *Memory) Consume(_ context.Context, channel entity.Channel, recipient, digest string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return false, ErrClosed
	}

	k := key(channel, recipient)
	mr, ok := s.live(k)
	if !ok || mr.rec.Digest != digest {
		return false, nil
	}

	delete(s.records, k)
	return true, nil
}

// Delete removes the record unconditionally.
func (s *Memory) Delete(_ context.Context, channel entity.Channel, recipient string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return ErrClosed
	}

	delete(s.records, key(channel, recipient))
	return nil
}

// Close drops all records and rejects further use.
func (s *Memory) Close() error {
	if s.closed.Swap(true) {
		return nil
	}

	s.mu.Lock()
	s.records = make(map[string]*memoryRecord)
	s.mu.Unlock()
	return nil
}

// live returns the record under k, evicting it first when expired.
// Callers must hold mu.
func (s *Memory) live(k string) (*memoryRecord, bool) {
	now := s.clock.Now()
	s.sweep(now)

	mr, ok := s.records[k]
	if !ok {
		return nil, false
	}
	if !mr.expiresAt.After(now) {
		delete(s.records, k)
		return nil, false
	}
	return mr, true
}

// sweep evicts expired records at most once per memorySweepInterval.
// Callers must hold mu.
func (s *Memory) sweep(now time.Time) {
	if now.Before(s.nextSweep) {
		return
	}
	s.nextSweep = now.Add(memorySweepInterval)

	for k, mr := range s.records {
		if !mr.expiresAt.After(now) {
			delete(s.records, k)
		}
	}
}
