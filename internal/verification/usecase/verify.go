package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/gokode/internal/pkg/goerror"
	"github.com/shandysiswandi/gokode/internal/pkg/valueobject"
	"github.com/shandysiswandi/gokode/internal/verification/entity"
)

type VerifyInput struct {
	Channel   entity.Channel
	Recipient string `validate:"required"`
	Code      string `validate:"required,otpcode"`
	Purpose   entity.Purpose
	ClientIP  string
}

// Verify checks a submitted code against the pending record. A match
// consumes the record, a mismatch burns one attempt. The response never
// distinguishes a wrong code under a live record from an exhausted or
// replaced one beyond the two public messages.
func (s *Usecase) Verify(ctx context.Context, in VerifyInput) error {
	ctx, span := s.startSpan(ctx, "Verify")
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

	window := s.verifyWindow()

	if in.ClientIP != "" {
		if err := s.rateGate(ctx, "otp_verify_ip:"+in.ClientIP, s.verifyIPLimit(), window); err != nil {
			return err
		}
	}

	key := "otp_verify:" + in.Channel.String() + ":" + in.Recipient
	if err := s.rateGate(ctx, key, s.verifyLimit(), window); err != nil {
		return err
	}

	return s.confirm(ctx, in.Channel, in.Recipient, in.Purpose, in.Code)
}

// Confirm is the in-process surface other modules use to check codes
// they issued through Issue.
func (s *Usecase) Confirm(ctx context.Context, channel, recipient, purpose, code string) error {
	ctx, span := s.startSpan(ctx, "Confirm")
	defer span.End()

	ch := entity.ParseChannel(channel)
	if err := s.validateRecipient(ch, recipient); err != nil {
		return err
	}

	p := entity.ParsePurpose(purpose)
	if p.IsUnknown() {
		return goerror.NewBusiness("purpose is unrecognized", goerror.CodeValidation)
	}

	if err := s.rateGate(ctx, "otp_verify:"+ch.String()+":"+recipient, s.verifyLimit(), s.verifyWindow()); err != nil {
		return err
	}

	return s.confirm(ctx, ch, recipient, p, code)
}

func (s *Usecase) confirm(ctx context.Context, ch entity.Channel, recipient string, p entity.Purpose, code string) error {
	rec, err := s.codeStore.Get(ctx, ch, recipient)
	if errors.Is(err, goerror.ErrNotFound) {
		s.audit(ctx, ch, recipient, p, entity.AuditEventMissed, nil)
		return goerror.NewNotFoundOrExpired()
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to load verification code", "channel", ch.String(), "error", err)
		return goerror.NewServer(err)
	}

	// A code issued for one flow must not satisfy another.
	if rec.Purpose != p {
		s.audit(ctx, ch, recipient, p, entity.AuditEventMissed, valueobject.JSONMap{
			"reason": "purpose_mismatch",
		})
		return goerror.NewNotFoundOrExpired()
	}

	if s.hmac.Verify(rec.Digest, recipient+digestSeparator+code) {
		consumed, err := s.codeStore.Consume(ctx, ch, recipient, rec.Digest)
		if err != nil {
			slog.ErrorContext(ctx, "failed to consume verification code", "channel", ch.String(), "error", err)
			return goerror.NewServer(err)
		}
		// Lost the race against a concurrent verify or the TTL.
		if !consumed {
			s.audit(ctx, ch, recipient, p, entity.AuditEventMissed, valueobject.JSONMap{
				"reason": "consume_race",
			})
			return goerror.NewNotFoundOrExpired()
		}

		s.audit(ctx, ch, recipient, p, entity.AuditEventVerified, nil)
		return nil
	}

	attempts, err := s.codeStore.Fail(ctx, ch, recipient)
	if errors.Is(err, goerror.ErrNotFound) {
		s.audit(ctx, ch, recipient, p, entity.AuditEventMissed, nil)
		return goerror.NewNotFoundOrExpired()
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to count verification attempt", "channel", ch.String(), "error", err)
		return goerror.NewServer(err)
	}

	if attempts >= s.maxAttempts() {
		if err := s.codeStore.Delete(ctx, ch, recipient); err != nil {
			slog.ErrorContext(ctx, "failed to delete exhausted verification code", "channel", ch.String(), "error", err)
			return goerror.NewServer(err)
		}
		s.audit(ctx, ch, recipient, p, entity.AuditEventExhausted, valueobject.JSONMap{
			"attempts": int64(attempts),
		})
		return goerror.NewInvalidCode()
	}

	s.audit(ctx, ch, recipient, p, entity.AuditEventRejected, valueobject.JSONMap{
		"attempts": int64(attempts),
	})
	return goerror.NewInvalidCode()
}
