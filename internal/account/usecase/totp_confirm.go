package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/gokode/internal/account/entity"
	"github.com/shandysiswandi/gokode/internal/pkg/goerror"
	"github.com/shandysiswandi/gokode/internal/pkg/jwt"
	"github.com/shandysiswandi/gokode/internal/pkg/mfa"
)

type TOTPConfirmInput struct {
	Code string `validate:"required,len=6,numeric"`
}

type TOTPConfirmOutput struct {
	RecoveryCodes []string
}

// TOTPConfirm validates a code against the pending secret and activates
// MFA. The recovery codes come back exactly once; only their bcrypt
// hashes survive.
func (s *Usecase) TOTPConfirm(ctx context.Context, in TOTPConfirmInput) (*TOTPConfirmOutput, error) {
	ctx, span := s.startSpan(ctx, "TOTPConfirm")
	defer span.End()

	in.Code = strings.TrimSpace(in.Code)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusiness("authentication required", goerror.CodeUnauthorized)
	}

	user, err := s.repoDB.GetUserMFAInfo(ctx, clm.UserID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "user account not found", "user_id", clm.UserID)
		return nil, goerror.NewBusiness("authentication required", goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user mfa info", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.ensureUserStatusAllowed(ctx, user.ID, user.Status); err != nil {
		return nil, err
	}

	if user.MFAStatus != entity.MFAStatusPending || len(user.MFASecret) == 0 {
		slog.WarnContext(ctx, "totp confirm without pending secret", "user_id", user.ID, "mfa_status", user.MFAStatus.String())
		return nil, goerror.NewBusiness("no pending TOTP setup", goerror.CodeConflict)
	}

	secretBytes, err := s.mfaEncryptor.Decrypt(user.MFASecret, mfa.Scope{
		UserID:  user.ID,
		Purpose: mfa.PurposeOTPSeed,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to decrypt totp secret", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if !s.totp.Validate(in.Code, string(secretBytes), s.clock.Now()) {
		slog.WarnContext(ctx, "invalid totp code", "user_id", user.ID)
		return nil, goerror.NewBusiness("invalid code", goerror.CodeUnauthorized)
	}

	recoveryCodes, err := s.recoveryCodes.Generate()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate recovery codes", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	hashed := make([]entity.RecoveryCode, 0, len(recoveryCodes))
	for _, code := range recoveryCodes {
		h, err := s.bcrypt.Hash(code)
		if err != nil {
			slog.ErrorContext(ctx, "failed to hash recovery code", "user_id", user.ID, "error", err)
			return nil, goerror.NewServer(err)
		}

		hashed = append(hashed, entity.RecoveryCode{
			ID:     s.uid.Generate(),
			UserID: user.ID,
			Code:   string(h),
		})
	}

	if err := s.repoDB.ActivateMFA(ctx, user.ID, hashed); err != nil {
		slog.ErrorContext(ctx, "failed to repo activate mfa", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &TOTPConfirmOutput{RecoveryCodes: recoveryCodes}, nil
}
