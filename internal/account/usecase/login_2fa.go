package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/gokode/internal/account/entity"
	"github.com/shandysiswandi/gokode/internal/pkg/goerror"
	"github.com/shandysiswandi/gokode/internal/pkg/mfa"
)

type Login2FAInput struct {
	ChallengeToken string `validate:"required"`
	Method         string `validate:"required"`
	Code           string `validate:"required"`
}

type Login2FAOutput struct {
	AccessToken  string
	RefreshToken string
}

// Login2FA finishes a password-verified login parked behind a second
// factor. The challenge is single use: success deletes it before tokens
// are issued.
func (s *Usecase) Login2FA(ctx context.Context, in Login2FAInput) (*Login2FAOutput, error) {
	ctx, span := s.startSpan(ctx, "Login2FA")
	defer span.End()

	in.Code = strings.TrimSpace(in.Code)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	method := entity.ParseChallengeMethod(in.Method)
	if method == entity.ChallengeMethodUnknown {
		slog.WarnContext(ctx, "challenge method not supported", "method", in.Method)
		return nil, goerror.NewBusiness("method not supported", goerror.CodeUnauthorized)
	}

	cu, err := s.loadLoginChallenge(ctx, in.ChallengeToken)
	if err != nil {
		return nil, err
	}

	if err := s.ensureUserStatusAllowed(ctx, cu.UserID, cu.UserStatus); err != nil {
		return nil, err
	}

	if cu.MFAStatus != entity.MFAStatusActive {
		slog.WarnContext(ctx, "login challenge for account without active mfa", "user_id", cu.UserID)
		return nil, goerror.NewBusiness("invalid challenge session or code", goerror.CodeUnauthorized)
	}

	switch method {
	case entity.ChallengeMethodTOTP:
		if err := s.verifyTOTP(ctx, cu, in.Code); err != nil {
			return nil, err
		}
	case entity.ChallengeMethodRecoveryCode:
		if err := s.verifyRecoveryCode(ctx, cu.UserID, in.Code); err != nil {
			return nil, err
		}
	}

	if err := s.repoDB.DeleteLoginChallenge(ctx, cu.ChallengeID); err != nil {
		slog.ErrorContext(ctx, "failed to repo delete login challenge", "challenge_id", cu.ChallengeID, "error", err)
		return nil, goerror.NewServer(err)
	}

	tokens, err := s.issueSession(ctx, cu.UserID, cu.UserEmail)
	if err != nil {
		return nil, err
	}

	return &Login2FAOutput{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

func (s *Usecase) loadLoginChallenge(ctx context.Context, token string) (*entity.LoginChallengeUser, error) {
	cTokenHash, err := s.hmac.Hash(token)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash challenge token", "error", err)
		return nil, goerror.NewServer(err)
	}

	cu, err := s.repoDB.GetLoginChallengeByToken(ctx, string(cTokenHash))
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "login challenge not found")
		return nil, goerror.NewBusiness("invalid challenge session or code", goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get login challenge by token", "error", err)
		return nil, goerror.NewServer(err)
	}

	if s.clock.Now().After(cu.ChallengeExpiresAt) {
		slog.WarnContext(ctx, "login challenge expired", "challenge_id", cu.ChallengeID)
		return nil, goerror.NewBusiness("invalid challenge session or code", goerror.CodeUnauthorized)
	}

	return cu, nil
}

func (s *Usecase) verifyTOTP(ctx context.Context, cu *entity.LoginChallengeUser, code string) error {
	if !isNumericCode(code, 6) {
		slog.WarnContext(ctx, "totp code shape is not valid", "user_id", cu.UserID)
		return goerror.NewBusiness("invalid challenge session or code", goerror.CodeUnauthorized)
	}

	secretBytes, err := s.mfaEncryptor.Decrypt(cu.MFASecret, mfa.Scope{
		UserID:  cu.UserID,
		Purpose: mfa.PurposeOTPSeed,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to decrypt totp secret", "user_id", cu.UserID, "error", err)
		return goerror.NewServer(err)
	}

	if !s.totp.Validate(code, string(secretBytes), s.clock.Now()) {
		slog.WarnContext(ctx, "invalid totp code", "user_id", cu.UserID)
		return goerror.NewBusiness("invalid challenge session or code", goerror.CodeUnauthorized)
	}

	return nil
}

func (s *Usecase) verifyRecoveryCode(ctx context.Context, userID int64, code string) error {
	codes, err := s.repoDB.GetRecoveryCodes(ctx, userID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get recovery codes", "user_id", userID, "error", err)
		return goerror.NewServer(err)
	}

	var match *entity.RecoveryCode
	for i := range codes {
		if s.bcrypt.Verify(codes[i].Code, code) {
			match = &codes[i]
			break
		}
	}

	if match == nil {
		slog.WarnContext(ctx, "recovery code not match", "user_id", userID)
		return goerror.NewBusiness("invalid challenge session or code", goerror.CodeUnauthorized)
	}

	consumed, err := s.repoDB.MarkRecoveryCodeUsed(ctx, match.ID, userID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to consume recovery code", "user_id", userID, "error", err)
		return goerror.NewServer(err)
	}
	if !consumed {
		slog.WarnContext(ctx, "recovery code already used", "user_id", userID)
		return goerror.NewBusiness("invalid challenge session or code", goerror.CodeUnauthorized)
	}

	return nil
}

func isNumericCode(code string, length int) bool {
	if len(code) != length {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}
