package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/shandysiswandi/gokode/internal/account/entity"
	"github.com/shandysiswandi/gokode/internal/pkg/goerror"
)

func TestTOTPSetup(t *testing.T) {
	h := newHarness(t)
	id := h.seedUser(t, "user@example.com", "Sup3r-Secret", entity.UserStatusActive)

	out, err := h.uc.TOTPSetup(h.authCtx(id))
	if err != nil {
		t.Fatalf("TOTPSetup() error = %v", err)
	}
	if out.Key == "" || out.URI == "" {
		t.Fatal("expected secret key and provisioning URI")
	}

	h.repo.mu.Lock()
	row := h.repo.users[id]
	status, secret := row.user.MFAStatus, row.mfaSecret
	h.repo.mu.Unlock()
	if status != entity.MFAStatusPending {
		t.Fatalf("mfa status = %v, want pending", status)
	}
	if len(secret) == 0 {
		t.Fatal("pending secret was not stored")
	}
	if string(secret) == out.Key {
		t.Fatal("secret stored in plaintext")
	}

	// a repeated setup replaces the pending secret
	out2, err := h.uc.TOTPSetup(h.authCtx(id))
	if err != nil {
		t.Fatalf("TOTPSetup() again error = %v", err)
	}
	if out2.Key == out.Key {
		t.Fatal("expected a fresh secret on repeated setup")
	}
}

func TestTOTPSetup_RequiresAuth(t *testing.T) {
	h := newHarness(t)

	_, err := h.uc.TOTPSetup(context.Background())
	assertCode(t, err, goerror.CodeUnauthorized)
}

func TestTOTPSetup_AlreadyActive(t *testing.T) {
	h := newHarness(t)
	id := h.seedUser(t, "user@example.com", "Sup3r-Secret", entity.UserStatusActive)
	h.enableTOTP(t, id)

	_, err := h.uc.TOTPSetup(h.authCtx(id))
	assertCode(t, err, goerror.CodeConflict)
}

func TestTOTPConfirm(t *testing.T) {
	h := newHarness(t)
	id := h.seedUser(t, "user@example.com", "Sup3r-Secret", entity.UserStatusActive)

	setup, err := h.uc.TOTPSetup(h.authCtx(id))
	if err != nil {
		t.Fatalf("TOTPSetup() error = %v", err)
	}

	code, err := h.totp.GenerateCode(setup.Key, h.clk.Now())
	if err != nil {
		t.Fatalf("GenerateCode() error = %v", err)
	}

	out, err := h.uc.TOTPConfirm(h.authCtx(id), TOTPConfirmInput{Code: code})
	if err != nil {
		t.Fatalf("TOTPConfirm() error = %v", err)
	}
	if len(out.RecoveryCodes) == 0 {
		t.Fatal("expected recovery codes")
	}

	h.repo.mu.Lock()
	status := h.repo.users[id].user.MFAStatus
	stored := h.repo.recovery[id]
	h.repo.mu.Unlock()
	if status != entity.MFAStatusActive {
		t.Fatalf("mfa status = %v, want active", status)
	}
	if len(stored) != len(out.RecoveryCodes) {
		t.Fatalf("stored recovery codes = %d, want %d", len(stored), len(out.RecoveryCodes))
	}

	// only hashes survive, and each returned code verifies against one
	if !h.bcr.Verify(stored[0].Code, out.RecoveryCodes[0]) {
		t.Fatal("stored recovery code hash does not verify")
	}
	if stored[0].Code == out.RecoveryCodes[0] {
		t.Fatal("recovery code stored in plaintext")
	}

	// from here on, login is gated by the second factor
	login, err := h.uc.Login(context.Background(), LoginInput{
		Email:    "user@example.com",
		Password: "Sup3r-Secret",
	})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if !login.MfaRequired {
		t.Fatal("login should require the second factor after activation")
	}
}

func TestTOTPConfirm_WrongCode(t *testing.T) {
	h := newHarness(t)
	id := h.seedUser(t, "user@example.com", "Sup3r-Secret", entity.UserStatusActive)

	setup, err := h.uc.TOTPSetup(h.authCtx(id))
	if err != nil {
		t.Fatalf("TOTPSetup() error = %v", err)
	}

	code, err := h.totp.GenerateCode(setup.Key, h.clk.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("GenerateCode() error = %v", err)
	}

	_, err = h.uc.TOTPConfirm(h.authCtx(id), TOTPConfirmInput{Code: code})
	assertCode(t, err, goerror.CodeUnauthorized)

	h.repo.mu.Lock()
	status := h.repo.users[id].user.MFAStatus
	h.repo.mu.Unlock()
	if status != entity.MFAStatusPending {
		t.Fatalf("mfa status = %v, want still pending", status)
	}
}

func TestTOTPConfirm_NoPendingSetup(t *testing.T) {
	h := newHarness(t)
	id := h.seedUser(t, "user@example.com", "Sup3r-Secret", entity.UserStatusActive)

	_, err := h.uc.TOTPConfirm(h.authCtx(id), TOTPConfirmInput{Code: "123456"})
	assertCode(t, err, goerror.CodeConflict)
}

func TestTOTPConfirm_RequiresAuth(t *testing.T) {
	h := newHarness(t)

	_, err := h.uc.TOTPConfirm(context.Background(), TOTPConfirmInput{Code: "123456"})
	assertCode(t, err, goerror.CodeUnauthorized)
}
