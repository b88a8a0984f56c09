package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/gokode/internal/notifier/entity"
	"github.com/shandysiswandi/gokode/internal/pkg/mail"
	"github.com/shandysiswandi/gokode/internal/pkg/sms"
	"github.com/shandysiswandi/gokode/internal/shared/event"
)

type ConsumeCodeIssuedInput struct {
	MessageID  string
	Channel    string `validate:"required"`
	Recipient  string `validate:"required"`
	Code       string `validate:"required"`
	Purpose    string `validate:"required"`
	TTLSeconds int64  `validate:"required,gt=0"`
}

// ConsumeCodeIssued delivers a one-time code over the event's channel.
// Validation failures are logged and swallowed so a bad payload is
// never redelivered forever.
func (s *Usecase) ConsumeCodeIssued(ctx context.Context, in ConsumeCodeIssuedInput) error {
	ctx, span := s.startSpan(ctx, "ConsumeCodeIssued")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.ErrorContext(ctx, "invalid code issued payload", "recipient", in.Recipient, "error", err)
		return nil
	}

	ch := entity.ChannelFromString(in.Channel)
	if ch == entity.ChannelUnknown {
		slog.ErrorContext(ctx, "unknown delivery channel", "channel", in.Channel)
		return nil
	}

	return s.onceForMessage(ctx, event.VerificationCodeIssuedConsumerNotifier, in.MessageID, func(ctx context.Context) error {
		return s.deliverCode(ctx, ch, in)
	})
}

func (s *Usecase) deliverCode(ctx context.Context, ch entity.Channel, in ConsumeCodeIssuedInput) error {
	tpl := s.getTemplate(ctx, entity.TriggerKeyForPurpose(in.Purpose), ch)
	if tpl == nil {
		return nil
	}

	data := s.baseTemplateData()
	data["code"] = in.Code
	data["ttl_minutes"] = in.TTLSeconds / 60

	body, err := s.renderTemplate("body", tpl.Body, data)
	if err != nil {
		slog.ErrorContext(ctx, "failed to render code template", "trigger_key", tpl.TriggerKey, "channel", ch.String(), "error", err)
		return nil
	}

	switch ch {
	case entity.ChannelEmail:
		err = s.withDeliveryRetry(ctx, func(ctx context.Context) error {
			return s.repoMail.Send(ctx, mail.Message{
				To:       []string{in.Recipient},
				Subject:  tpl.Subject,
				HTMLBody: body,
			})
		})

	case entity.ChannelSMS:
		err = s.withDeliveryRetry(ctx, func(ctx context.Context) error {
			return s.repoSMS.Send(ctx, sms.Message{
				To:   in.Recipient,
				Body: body,
			})
		})
	}

	if err != nil {
		slog.ErrorContext(ctx, "failed to deliver verification code", "channel", ch.String(), "purpose", in.Purpose, "error", err)
		return err
	}

	return nil
}
