package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/gokode/internal/account/entity"
	"github.com/shandysiswandi/gokode/internal/pkg/goerror"
)

type RegisterResendInput struct {
	Email string `validate:"required,email"`
}

// RegisterResend reissues the registration code. The response is always
// an empty success: unknown and already-active emails look exactly like
// a resend, with the real reason logged server side.
func (s *Usecase) RegisterResend(ctx context.Context, in RegisterResendInput) error {
	ctx, span := s.startSpan(ctx, "RegisterResend")
	defer span.End()

	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	user, err := s.repoDB.GetUserByEmail(ctx, in.Email)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "email not registered for resend", "email", in.Email)
		return nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by email", "email", in.Email, "error", err)
		return goerror.NewServer(err)
	}

	if user.Status != entity.UserStatusPendingVerification {
		slog.WarnContext(ctx, "resend requested for ineligible user", "user_id", user.ID, "status", user.Status.String())
		return nil
	}

	if err := s.codes.Issue(ctx, channelEmail, user.Email, purposeRegister); err != nil {
		var gerr *goerror.Error
		if errors.As(err, &gerr) && gerr.Code() == goerror.CodeRateLimited {
			return err
		}
		slog.ErrorContext(ctx, "failed to reissue registration code", "user_id", user.ID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
