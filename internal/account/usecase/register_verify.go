package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/gokode/internal/account/entity"
	"github.com/shandysiswandi/gokode/internal/pkg/goerror"
)

type RegisterVerifyInput struct {
	Email string `validate:"required,email"`
	Code  string `validate:"required,otpcode"`
}

// RegisterVerify confirms the emailed code through the verification
// engine and activates the account. Engine errors (invalid code,
// expired, rate limited) pass through untouched.
func (s *Usecase) RegisterVerify(ctx context.Context, in RegisterVerifyInput) error {
	ctx, span := s.startSpan(ctx, "RegisterVerify")
	defer span.End()

	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	user, err := s.repoDB.GetUserByEmail(ctx, in.Email)
	if errors.Is(err, goerror.ErrNotFound) {
		// Indistinguishable from a wrong code, so probers cannot map
		// registered emails through this endpoint.
		return goerror.NewNotFoundOrExpired()
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by email", "email", in.Email, "error", err)
		return goerror.NewServer(err)
	}

	switch user.Status.Ensure() {
	case entity.UserStatusPendingVerification:
		// fall through to code confirmation

	case entity.UserStatusActive:
		return goerror.NewNotFoundOrExpired()

	default:
		slog.WarnContext(ctx, "verify requested for ineligible user", "user_id", user.ID, "status", user.Status.String())
		return goerror.NewNotFoundOrExpired()
	}

	if err := s.codes.Confirm(ctx, channelEmail, in.Email, purposeRegister, in.Code); err != nil {
		return err
	}

	if err := s.repoDB.ActivateUser(ctx, user.ID, entity.UserStatusPendingVerification, entity.UserStatusActive); err != nil {
		slog.ErrorContext(ctx, "failed to repo activate user", "user_id", user.ID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
