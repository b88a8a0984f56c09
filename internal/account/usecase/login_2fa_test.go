package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/shandysiswandi/gokode/internal/account/entity"
	"github.com/shandysiswandi/gokode/internal/pkg/goerror"
)

// startChallenge seeds an MFA-active user, runs the password step and
// returns the challenge token plus the plaintext TOTP secret.
func startChallenge(t *testing.T, h *harness) (string, string) {
	t.Helper()

	id := h.seedUser(t, "user@example.com", "Sup3r-Secret", entity.UserStatusActive)
	secret := h.enableTOTP(t, id)

	out, err := h.uc.Login(context.Background(), LoginInput{
		Email:    "user@example.com",
		Password: "Sup3r-Secret",
	})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	return out.ChallengeToken, secret
}

func TestLogin2FA_TOTP(t *testing.T) {
	h := newHarness(t)
	token, secret := startChallenge(t, h)

	code, err := h.totp.GenerateCode(secret, h.clk.Now())
	if err != nil {
		t.Fatalf("GenerateCode() error = %v", err)
	}

	out, err := h.uc.Login2FA(context.Background(), Login2FAInput{
		ChallengeToken: token,
		Method:         "totp",
		Code:           code,
	})
	if err != nil {
		t.Fatalf("Login2FA() error = %v", err)
	}
	if out.AccessToken == "" || out.RefreshToken == "" {
		t.Fatal("expected both tokens to be issued")
	}

	// the challenge is single use
	_, err = h.uc.Login2FA(context.Background(), Login2FAInput{
		ChallengeToken: token,
		Method:         "totp",
		Code:           code,
	})
	assertCode(t, err, goerror.CodeUnauthorized)
}

func TestLogin2FA_WrongTOTPCode(t *testing.T) {
	h := newHarness(t)
	token, secret := startChallenge(t, h)

	// valid shape, minted far outside the accepted window
	code, err := h.totp.GenerateCode(secret, h.clk.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("GenerateCode() error = %v", err)
	}

	_, err = h.uc.Login2FA(context.Background(), Login2FAInput{
		ChallengeToken: token,
		Method:         "totp",
		Code:           code,
	})
	assertCode(t, err, goerror.CodeUnauthorized)
}

func TestLogin2FA_RecoveryCode(t *testing.T) {
	h := newHarness(t)
	token, _ := startChallenge(t, h)
	h.seedRecoveryCode(t, 1, "ABCDE-FGHIJ")

	out, err := h.uc.Login2FA(context.Background(), Login2FAInput{
		ChallengeToken: token,
		Method:         "recovery_code",
		Code:           "ABCDE-FGHIJ",
	})
	if err != nil {
		t.Fatalf("Login2FA() error = %v", err)
	}
	if out.AccessToken == "" || out.RefreshToken == "" {
		t.Fatal("expected both tokens to be issued")
	}

	// the recovery code is burned even against a fresh challenge
	login, err := h.uc.Login(context.Background(), LoginInput{
		Email:    "user@example.com",
		Password: "Sup3r-Secret",
	})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	_, err = h.uc.Login2FA(context.Background(), Login2FAInput{
		ChallengeToken: login.ChallengeToken,
		Method:         "recovery_code",
		Code:           "ABCDE-FGHIJ",
	})
	assertCode(t, err, goerror.CodeUnauthorized)
}

func TestLogin2FA_UnknownMethod(t *testing.T) {
	h := newHarness(t)
	token, _ := startChallenge(t, h)

	_, err := h.uc.Login2FA(context.Background(), Login2FAInput{
		ChallengeToken: token,
		Method:         "sms",
		Code:           "123456",
	})
	assertCode(t, err, goerror.CodeUnauthorized)
}

func TestLogin2FA_ExpiredChallenge(t *testing.T) {
	h := newHarness(t)
	token, secret := startChallenge(t, h)

	h.clk.Advance(6 * time.Minute)

	code, err := h.totp.GenerateCode(secret, h.clk.Now())
	if err != nil {
		t.Fatalf("GenerateCode() error = %v", err)
	}

	_, err = h.uc.Login2FA(context.Background(), Login2FAInput{
		ChallengeToken: token,
		Method:         "totp",
		Code:           code,
	})
	assertCode(t, err, goerror.CodeUnauthorized)
}

func TestLogin2FA_BogusChallengeToken(t *testing.T) {
	h := newHarness(t)
	startChallenge(t, h)

	_, err := h.uc.Login2FA(context.Background(), Login2FAInput{
		ChallengeToken: "not-a-real-token",
		Method:         "totp",
		Code:           "123456",
	})
	assertCode(t, err, goerror.CodeUnauthorized)
}
