package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/gokode/internal/pkg/clock"
	"github.com/shandysiswandi/gokode/internal/pkg/config"
	"github.com/shandysiswandi/gokode/internal/pkg/goerror"
	"github.com/shandysiswandi/gokode/internal/pkg/hash"
	"github.com/shandysiswandi/gokode/internal/pkg/instrument"
	"github.com/shandysiswandi/gokode/internal/pkg/otpcode"
	"github.com/shandysiswandi/gokode/internal/pkg/ratelimit"
	"github.com/shandysiswandi/gokode/internal/pkg/storage"
	"github.com/shandysiswandi/gokode/internal/pkg/uid"
	"github.com/shandysiswandi/gokode/internal/pkg/validator"
	"github.com/shandysiswandi/gokode/internal/pkg/valueobject"
	"github.com/shandysiswandi/gokode/internal/verification/entity"
	"go.opentelemetry.io/otel/trace"
)

// digestSeparator keeps recipient and code from colliding across
// boundaries when both feed the same MAC.
const digestSeparator = "\x1f"

type CodeIssuedEvent struct {
	Channel    string
	Recipient  string
	Code       string
	Purpose    string
	TTLSeconds int64
}

type repoMessaging interface {
	PublishCodeIssued(ctx context.Context, msg CodeIssuedEvent) error
}

type codeStore interface {
	Put(ctx context.Context, channel entity.Channel, recipient string, rec entity.CodeRecord, ttl time.Duration) error
	Get(ctx context.Context, channel entity.Channel, recipient string) (*entity.CodeRecord, error)
	Fail(ctx context.Context, channel entity.Channel, recipient string) (int32, error)
	Consume(ctx context.Context, channel entity.Channel, recipient, digest string) (bool, error)
	Delete(ctx context.Context, channel entity.Channel, recipient string) error
}

type repoDB interface {
	CreateAuditEntry(ctx context.Context, e entity.AuditEntry) error
	ListAuditEntries(ctx context.Context, q entity.AuditQuery) ([]entity.AuditEntry, error)
}

type Usecase struct {
	codeStore     codeStore
	repoDB        repoDB
	repoMessaging repoMessaging
	limiter       ratelimit.Limiter
	generator     otpcode.Generator
	hmac          hash.Hash
	validator     validator.Validator
	cfg           config.Config
	storage       storage.Storage
	uid           uid.NumberID
	clock         clock.Clocker
	ins           instrument.Instrumentation
}

type Dependency struct {
	CodeStore     codeStore
	RepoDB        repoDB
	RepoMessaging repoMessaging
	Limiter       ratelimit.Limiter
	Generator     otpcode.Generator
	HMAC          hash.Hash
	Validator     validator.Validator
	Config        config.Config
	Storage       storage.Storage
	UID           uid.NumberID
	Clock         clock.Clocker
	Instrument    instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		codeStore:     dep.CodeStore,
		repoDB:        dep.RepoDB,
		repoMessaging: dep.RepoMessaging,
		limiter:       dep.Limiter,
		generator:     dep.Generator,
		hmac:          dep.HMAC,
		validator:     dep.Validator,
		cfg:           dep.Config,
		storage:       dep.Storage,
		uid:           dep.UID,
		clock:         dep.Clock,
		ins:           dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("verification.usecase").Start(ctx, name)
}

type emailRecipient struct {
	Recipient string `validate:"required,email"`
}

type phoneRecipient struct {
	Recipient string `validate:"required,e164"`
}

func (s *Usecase) validateRecipient(ch entity.Channel, recipient string) error {
	switch ch {
	case entity.ChannelEmail:
		if err := s.validator.Validate(emailRecipient{Recipient: recipient}); err != nil {
			return goerror.NewInvalidInput(err)
		}
		return nil

	case entity.ChannelPhone:
		if err := s.validator.Validate(phoneRecipient{Recipient: recipient}); err != nil {
			return goerror.NewInvalidInput(err)
		}
		return nil

	default:
		return goerror.NewBusiness("channel is unrecognized", goerror.CodeValidation)
	}
}

// digestOf keys the MAC to the recipient so equal codes sent to two
// recipients never share a digest.
func (s *Usecase) digestOf(recipient, code string) (string, error) {
	sum, err := s.hmac.Hash(recipient + digestSeparator + code)
	if err != nil {
		return "", err
	}
	return string(sum), nil
}

// rateGate rejects with a retry hint when the bucket is empty. A limiter
// transport failure fails open: availability of send and verify wins
// over strictness, the attempt cap still bounds guessing.
func (s *Usecase) rateGate(ctx context.Context, key string, capacity int64, window time.Duration) error {
	res, err := s.limiter.Allow(ctx, key, capacity, window)
	if err != nil {
		slog.WarnContext(ctx, "rate limiter unavailable, allowing request", "key", key, "error", err)
		return nil
	}
	if !res.Allowed {
		return goerror.NewRateLimited(res.RetryAfter)
	}
	return nil
}

// audit records one trail entry. Failures are logged and swallowed so
// the trail never breaks the operation it describes.
func (s *Usecase) audit(ctx context.Context, ch entity.Channel, recipient string, p entity.Purpose, ev entity.AuditEvent, detail valueobject.JSONMap) {
	err := s.repoDB.CreateAuditEntry(ctx, entity.AuditEntry{
		ID:        s.uid.Generate(),
		Channel:   ch,
		Recipient: recipient,
		Purpose:   p,
		Event:     ev,
		Detail:    detail,
		CreatedAt: s.clock.Now(),
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to record verification audit entry", "event", ev.String(), "error", err)
	}
}

func (s *Usecase) codeDigits() int {
	digits := int(s.cfg.GetInt32("modules.verification.code_digits"))
	if digits == 0 {
		digits = otpcode.DefaultDigits
	}
	return digits
}

func (s *Usecase) codeTTL() time.Duration {
	ttl := s.cfg.GetSecond("modules.verification.code_ttl_seconds")
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return ttl
}

func (s *Usecase) maxAttempts() int32 {
	capa := s.cfg.GetInt32("modules.verification.max_attempts")
	if capa <= 0 {
		capa = 5
	}
	return capa
}

// The limiter knobs default like the code knobs above: an unset key
// must never mean "no gate", since both limiter backends treat a zero
// capacity or window as allow-everything.

func (s *Usecase) sendLimit() int64 {
	return limitOrDefault(s.cfg.GetInt64("modules.verification.send_limit"), 5)
}

func (s *Usecase) sendIPLimit() int64 {
	return limitOrDefault(s.cfg.GetInt64("modules.verification.send_ip_limit"), 30)
}

func (s *Usecase) sendWindow() time.Duration {
	return windowOrDefault(s.cfg.GetMinute("modules.verification.send_window_minutes"))
}

func (s *Usecase) verifyLimit() int64 {
	return limitOrDefault(s.cfg.GetInt64("modules.verification.verify_limit"), 10)
}

func (s *Usecase) verifyIPLimit() int64 {
	return limitOrDefault(s.cfg.GetInt64("modules.verification.verify_ip_limit"), 60)
}

func (s *Usecase) verifyWindow() time.Duration {
	return windowOrDefault(s.cfg.GetMinute("modules.verification.verify_window_minutes"))
}

func limitOrDefault(limit, def int64) int64 {
	if limit <= 0 {
		return def
	}
	return limit
}

func windowOrDefault(window time.Duration) time.Duration {
	if window <= 0 {
		return time.Minute
	}
	return window
}
