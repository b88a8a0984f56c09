package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/gokode/internal/pkg/goerror"
	"github.com/shandysiswandi/gokode/internal/pkg/valueobject"
	"github.com/shandysiswandi/gokode/internal/verification/entity"
)

type SendInput struct {
	Channel   entity.Channel
	Recipient string `validate:"required"`
	Purpose   entity.Purpose
	ClientIP  string
}

// Send issues a fresh code for (channel, recipient) and hands it to the
// notifier. A resend replaces the previous code outright, it never
// extends it.
func (s *Usecase) Send(ctx context.Context, in SendInput) error {
	ctx, span := s.startSpan(ctx, "Send")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}
	if err := s.validateRecipient(in.Channel, in.Recipient); err != nil {
		return err
	}
	if in.Purpose.IsUnknown() {
		return goerror.NewBusiness("purpose is unrecognized", goerror.CodeValidation)
	}

	window := s.sendWindow()

	// The wider per-IP net goes first so one address cannot burn through
	// many recipients' buckets.
	if in.ClientIP != "" {
		if err := s.rateGate(ctx, "otp_send_ip:"+in.ClientIP, s.sendIPLimit(), window); err != nil {
			return err
		}
	}

	key := "otp_send:" + in.Channel.String() + ":" + in.Recipient
	if err := s.rateGate(ctx, key, s.sendLimit(), window); err != nil {
		return err
	}

	return s.issue(ctx, in.Channel, in.Recipient, in.Purpose)
}

// Issue is the in-process surface other modules use to send codes for
// their own purposes. It applies the per-recipient gate but skips the
// per-IP one, callers own their outer throttling.
func (s *Usecase) Issue(ctx context.Context, channel, recipient, purpose string) error {
	ctx, span := s.startSpan(ctx, "Issue")
	defer span.End()

	ch := entity.ParseChannel(channel)
	if err := s.validateRecipient(ch, recipient); err != nil {
		return err
	}

	p := entity.ParsePurpose(purpose)
	if p.IsUnknown() {
		return goerror.NewBusiness("purpose is unrecognized", goerror.CodeValidation)
	}

	if err := s.rateGate(ctx, "otp_send:"+ch.String()+":"+recipient, s.sendLimit(), s.sendWindow()); err != nil {
		return err
	}

	return s.issue(ctx, ch, recipient, p)
}

func (s *Usecase) issue(ctx context.Context, ch entity.Channel, recipient string, p entity.Purpose) error {
	code, err := s.generator.Generate(s.codeDigits())
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate verification code", "error", err)
		return goerror.NewServer(err)
	}

	digest, err := s.digestOf(recipient, code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to digest verification code", "error", err)
		return goerror.NewServer(err)
	}

	ttl := s.codeTTL()
	rec := entity.CodeRecord{
		Digest:   digest,
		Purpose:  p,
		Attempts: 0,
		IssuedAt: s.clock.Now(),
	}
	if err := s.codeStore.Put(ctx, ch, recipient, rec, ttl); err != nil {
		slog.ErrorContext(ctx, "failed to store verification code", "channel", ch.String(), "error", err)
		return goerror.NewServer(err)
	}

	s.audit(ctx, ch, recipient, p, entity.AuditEventCodeIssued, valueobject.JSONMap{
		"ttl_seconds": int64(ttl.Seconds()),
	})

	// Delivery failure is surfaced: a stored code nobody receives only
	// burns the recipient's resend budget.
	if err := s.repoMessaging.PublishCodeIssued(ctx, CodeIssuedEvent{
		Channel:    ch.String(),
		Recipient:  recipient,
		Code:       code,
		Purpose:    p.String(),
		TTLSeconds: int64(ttl.Seconds()),
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish code issued event", "channel", ch.String(), "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
