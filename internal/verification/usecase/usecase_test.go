package usecase

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/gokode/internal/pkg/config"
	"github.com/shandysiswandi/gokode/internal/pkg/hash"
	"github.com/shandysiswandi/gokode/internal/pkg/instrument"
	"github.com/shandysiswandi/gokode/internal/pkg/otpcode"
	"github.com/shandysiswandi/gokode/internal/pkg/ratelimit"
	"github.com/shandysiswandi/gokode/internal/pkg/storage"
	"github.com/shandysiswandi/gokode/internal/pkg/uid"
	"github.com/shandysiswandi/gokode/internal/pkg/validator"
	"github.com/shandysiswandi/gokode/internal/verification/entity"
	"github.com/shandysiswandi/gokode/internal/verification/outbound/store"
)

const testConfigYAML = `
modules:
  verification:
    code_digits: 6
    code_ttl_seconds: 300
    max_attempts: 5
    send_limit: 5
    send_ip_limit: 30
    send_window_minutes: 15
    verify_limit: 10
    verify_ip_limit: 60
    verify_window_minutes: 15
    export_bucket: audit-exports
    export_url_ttl_minutes: 15
`

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

type fakeRepoDB struct {
	mu        sync.Mutex
	entries   []entity.AuditEntry
	createErr error
}

func (f *fakeRepoDB) CreateAuditEntry(_ context.Context, e entity.AuditEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return f.createErr
	}
	f.entries = append(f.entries, e)
	return nil
}

func (f *fakeRepoDB) ListAuditEntries(_ context.Context, q entity.AuditQuery) ([]entity.AuditEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []entity.AuditEntry
	for _, e := range f.entries {
		if e.ID <= q.AfterID {
			continue
		}
		if e.CreatedAt.Before(q.From) || !e.CreatedAt.Before(q.To) {
			continue
		}
		out = append(out, e)
		if int32(len(out)) >= q.Limit {
			break
		}
	}
	return out, nil
}

func (f *fakeRepoDB) eventSequence() []entity.AuditEvent {
	f.mu.Lock()
	defer f.mu.Unlock()

	events := make([]entity.AuditEvent, 0, len(f.entries))
	for _, e := range f.entries {
		events = append(events, e.Event)
	}
	return events
}

type fakeMessaging struct {
	mu     sync.Mutex
	events []CodeIssuedEvent
	err    error
}

func (f *fakeMessaging) PublishCodeIssued(_ context.Context, msg CodeIssuedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, msg)
	return nil
}

func (f *fakeMessaging) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.events)
}

func (f *fakeMessaging) last() CodeIssuedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.events[len(f.events)-1]
}

type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (f *fakeStorage) PutObject(_ context.Context, bucket, key string, r io.Reader, _ storage.PutOptions) (storage.ObjectInfo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return storage.ObjectInfo{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.objects[bucket+"/"+key] = data
	return storage.ObjectInfo{Bucket: bucket, Key: key, Size: int64(len(data))}, nil
}

func (f *fakeStorage) GetObject(_ context.Context, bucket, key string, _ storage.GetOptions) (io.ReadCloser, storage.ObjectInfo, error) {
	return nil, storage.ObjectInfo{}, storage.ErrMissingSigner
}

func (f *fakeStorage) StatObject(_ context.Context, bucket, key string) (storage.ObjectInfo, error) {
	return storage.ObjectInfo{Bucket: bucket, Key: key}, nil
}

func (f *fakeStorage) DeleteObject(_ context.Context, bucket, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.objects, bucket+"/"+key)
	return nil
}

func (f *fakeStorage) ListObjects(_ context.Context, _, _ string, _ storage.ListOptions) ([]storage.ObjectInfo, error) {
	return nil, nil
}

func (f *fakeStorage) PresignGet(_ context.Context, bucket, key string, _ time.Duration) (string, error) {
	return "https://signed.example/" + bucket + "/" + key, nil
}

func (f *fakeStorage) PresignPut(_ context.Context, bucket, key string, _ storage.PutOptions, _ time.Duration) (string, error) {
	return "https://signed.example/" + bucket + "/" + key, nil
}

func (f *fakeStorage) Close() error { return nil }

func (f *fakeStorage) object(bucket, key string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, ok := f.objects[bucket+"/"+key]
	return data, ok
}

type harness struct {
	uc      *Usecase
	clk     *fakeClock
	store   *store.Memory
	limiter *ratelimit.Memory
	msgs    *fakeMessaging
	repo    *fakeRepoDB
	objs    *fakeStorage
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	return newHarnessWithConfig(t, testConfigYAML)
}

func newHarnessWithConfig(t *testing.T, yml string) *harness {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(yml))
	if err != nil {
		t.Fatalf("NewViperFromBytes() error = %v", err)
	}

	v10, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("NewV10Validator() error = %v", err)
	}

	sf, err := uid.NewSnowflake(1)
	if err != nil {
		t.Fatalf("NewSnowflake() error = %v", err)
	}

	clk := newFakeClock()
	h := &harness{
		clk:     clk,
		store:   store.NewMemory(clk),
		limiter: ratelimit.NewMemory(clk),
		msgs:    &fakeMessaging{},
		repo:    &fakeRepoDB{},
		objs:    newFakeStorage(),
	}

	h.uc = New(Dependency{
		CodeStore:     h.store,
		RepoDB:        h.repo,
		RepoMessaging: h.msgs,
		Limiter:       h.limiter,
		Generator:     otpcode.NewNumeric(),
		HMAC:          hash.NewHMACSHA256("test-secret"),
		Validator:     v10,
		Config:        cfg,
		Storage:       h.objs,
		UID:           sf,
		Clock:         clk,
		Instrument:    instrument.NewNoop(),
	})
	return h
}

// sendAndCapture issues a code and returns the plaintext the notifier
// would have delivered.
func (h *harness) sendAndCapture(t *testing.T, in SendInput) string {
	t.Helper()

	if err := h.uc.Send(context.Background(), in); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	return h.msgs.last().Code
}
