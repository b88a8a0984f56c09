package usecase

import (
	"context"
	"testing"

	"github.com/shandysiswandi/gokode/internal/account/entity"
	"github.com/shandysiswandi/gokode/internal/pkg/goerror"
)

func TestLogin(t *testing.T) {
	h := newHarness(t)
	h.seedUser(t, "user@example.com", "Sup3r-Secret", entity.UserStatusActive)

	out, err := h.uc.Login(context.Background(), LoginInput{
		Email:    "User@Example.com",
		Password: "Sup3r-Secret",
	})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if out.MfaRequired {
		t.Fatal("MfaRequired = true, want false")
	}
	if out.AccessToken == "" || out.RefreshToken == "" {
		t.Fatal("expected both tokens to be issued")
	}

	// the refresh token lands in storage as its digest, not verbatim
	h.repo.mu.Lock()
	_, stored := h.repo.refresh[out.RefreshToken]
	n := len(h.repo.refresh)
	h.repo.mu.Unlock()
	if stored {
		t.Fatal("refresh token stored in plaintext")
	}
	if n != 1 {
		t.Fatalf("stored refresh rows = %d, want 1", n)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	h := newHarness(t)
	h.seedUser(t, "user@example.com", "Sup3r-Secret", entity.UserStatusActive)

	_, err := h.uc.Login(context.Background(), LoginInput{
		Email:    "user@example.com",
		Password: "not-the-password",
	})
	assertCode(t, err, goerror.CodeUnauthorized)
}

func TestLogin_UnknownEmail(t *testing.T) {
	h := newHarness(t)

	_, err := h.uc.Login(context.Background(), LoginInput{
		Email:    "ghost@example.com",
		Password: "Sup3r-Secret",
	})
	assertCode(t, err, goerror.CodeUnauthorized)
}

func TestLogin_StatusGates(t *testing.T) {
	tests := []struct {
		name   string
		status entity.UserStatus
	}{
		{"pending verification", entity.UserStatusPendingVerification},
		{"banned", entity.UserStatusBanned},
		{"inactive", entity.UserStatusInactive},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			h.seedUser(t, "user@example.com", "Sup3r-Secret", tc.status)

			_, err := h.uc.Login(context.Background(), LoginInput{
				Email:    "user@example.com",
				Password: "Sup3r-Secret",
			})
			assertCode(t, err, goerror.CodeForbidden)
		})
	}
}

func TestLogin_MFAGate(t *testing.T) {
	h := newHarness(t)
	id := h.seedUser(t, "user@example.com", "Sup3r-Secret", entity.UserStatusActive)
	h.enableTOTP(t, id)

	out, err := h.uc.Login(context.Background(), LoginInput{
		Email:    "user@example.com",
		Password: "Sup3r-Secret",
	})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if !out.MfaRequired {
		t.Fatal("MfaRequired = false, want true")
	}
	if out.ChallengeToken == "" {
		t.Fatal("expected a challenge token")
	}
	if out.AccessToken != "" || out.RefreshToken != "" {
		t.Fatal("tokens must not be issued before the second factor")
	}
	if len(out.AvailableMethods) != 2 {
		t.Fatalf("AvailableMethods = %v, want totp and recovery_code", out.AvailableMethods)
	}

	h.repo.mu.Lock()
	n := len(h.repo.challenges)
	h.repo.mu.Unlock()
	if n != 1 {
		t.Fatalf("stored challenges = %d, want 1", n)
	}
}
