package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/gokode/internal/notifier/entity"
	"github.com/shandysiswandi/gokode/internal/pkg/config"
	"github.com/shandysiswandi/gokode/internal/pkg/goerror"
	"github.com/shandysiswandi/gokode/internal/pkg/idempotency"
	"github.com/shandysiswandi/gokode/internal/pkg/instrument"
	"github.com/shandysiswandi/gokode/internal/pkg/mail"
	"github.com/shandysiswandi/gokode/internal/pkg/sms"
	"github.com/shandysiswandi/gokode/internal/pkg/validator"
)

const testConfigYAML = `
app:
  name: Gokode
  web: https://gokode.dev
`

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

type templateKey struct {
	tk entity.TriggerKey
	ch entity.Channel
}

type fakeRepoDB struct {
	mu        sync.Mutex
	templates map[templateKey]*entity.Template
}

func (f *fakeRepoDB) GetTemplateByTriggerChannel(_ context.Context, tk entity.TriggerKey, ch entity.Channel) (*entity.Template, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if tpl, ok := f.templates[templateKey{tk, ch}]; ok {
		cp := *tpl
		return &cp, nil
	}
	return nil, goerror.ErrNotFound
}

type fakeMail struct {
	mu   sync.Mutex
	sent []mail.Message
	errs []error // popped per call, nil entries mean success
}

func (f *fakeMail) Send(_ context.Context, msg mail.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return err
		}
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeMail) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.sent)
}

type fakeSMS struct {
	mu   sync.Mutex
	sent []sms.Message
}

func (f *fakeSMS) Send(_ context.Context, msg sms.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sent = append(f.sent, msg)
	return nil
}

type harness struct {
	uc   *Usecase
	repo *fakeRepoDB
	mail *fakeMail
	sms  *fakeSMS
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(testConfigYAML))
	if err != nil {
		t.Fatalf("NewViperFromBytes() error = %v", err)
	}

	v10, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("NewV10Validator() error = %v", err)
	}

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run() error = %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	h := &harness{
		repo: &fakeRepoDB{templates: make(map[templateKey]*entity.Template)},
		mail: &fakeMail{},
		sms:  &fakeSMS{},
	}

	h.uc = New(Dependency{
		RepoDB:      h.repo,
		RepoMail:    h.mail,
		RepoSMS:     h.sms,
		Idempotency: idempotency.New(client),
		Config:      cfg,
		Clock:       newFakeClock(),
		Validator:   v10,
		Instrument:  instrument.NewNoop(),
	})
	return h
}

func (h *harness) seedTemplate(tk entity.TriggerKey, ch entity.Channel, subject, body string) {
	h.repo.mu.Lock()
	defer h.repo.mu.Unlock()

	h.repo.templates[templateKey{tk, ch}] = &entity.Template{
		ID:         int64(len(h.repo.templates) + 1),
		TriggerKey: tk,
		Channel:    ch,
		Subject:    subject,
		Body:       body,
	}
}
