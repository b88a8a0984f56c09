package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/gokode/internal/notifier/entity"
	"github.com/shandysiswandi/gokode/internal/pkg/mail"
	"github.com/shandysiswandi/gokode/internal/shared/event"
)

type ConsumeUserRegisteredInput struct {
	MessageID string
	UserID    int64  `validate:"required,gt=0"`
	Email     string `validate:"required,email"`
	FullName  string `validate:"required"`
}

// ConsumeUserRegistered sends the welcome email for a fresh signup.
func (s *Usecase) ConsumeUserRegistered(ctx context.Context, in ConsumeUserRegisteredInput) error {
	ctx, span := s.startSpan(ctx, "ConsumeUserRegistered")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.ErrorContext(ctx, "invalid user registered payload", "user_id", in.UserID, "error", err)
		return nil
	}

	return s.onceForMessage(ctx, event.UserRegisteredConsumerNotifier, in.MessageID, func(ctx context.Context) error {
		return s.sendWelcomeEmail(ctx, in)
	})
}

func (s *Usecase) sendWelcomeEmail(ctx context.Context, in ConsumeUserRegisteredInput) error {
	tpl := s.getTemplate(ctx, entity.TriggerKeyUserWelcome, entity.ChannelEmail)
	if tpl == nil {
		return nil
	}

	data := s.baseTemplateData()
	data["full_name"] = in.FullName

	body, err := s.renderTemplate("body", tpl.Body, data)
	if err != nil {
		slog.ErrorContext(ctx, "failed to render welcome template", "user_id", in.UserID, "error", err)
		return nil
	}

	err = s.withDeliveryRetry(ctx, func(ctx context.Context) error {
		return s.repoMail.Send(ctx, mail.Message{
			To:       []string{in.Email},
			Subject:  tpl.Subject,
			HTMLBody: body,
		})
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to deliver welcome email", "user_id", in.UserID, "error", err)
		return err
	}

	return nil
}
