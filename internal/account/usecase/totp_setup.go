package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/gokode/internal/account/entity"
	"github.com/shandysiswandi/gokode/internal/pkg/goerror"
	"github.com/shandysiswandi/gokode/internal/pkg/jwt"
	"github.com/shandysiswandi/gokode/internal/pkg/mfa"
)

type TOTPSetupOutput struct {
	Key string
	URI string
}

// TOTPSetup provisions a TOTP secret for the authenticated user. The
// secret lands encrypted in the pending state and only becomes a login
// gate once TOTPConfirm proves the authenticator holds it.
func (s *Usecase) TOTPSetup(ctx context.Context) (*TOTPSetupOutput, error) {
	ctx, span := s.startSpan(ctx, "TOTPSetup")
	defer span.End()

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

	if user.MFAStatus == entity.MFAStatusActive {
		return nil, goerror.NewBusiness("MFA is already active", goerror.CodeConflict)
	}

	secret, uri, err := s.totp.Generate(user.Email)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate totp secret", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	encryptedSecret, err := s.mfaEncryptor.Encrypt([]byte(secret), mfa.Scope{
		UserID:  user.ID,
		Purpose: mfa.PurposeOTPSeed,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to encrypt totp secret", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	// A repeated setup overwrites the previous pending secret.
	if err := s.repoDB.SetPendingTOTPSecret(ctx, user.ID, encryptedSecret); err != nil {
		slog.ErrorContext(ctx, "failed to repo store pending totp secret", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &TOTPSetupOutput{Key: secret, URI: uri}, nil
}
