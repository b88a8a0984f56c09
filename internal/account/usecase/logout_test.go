package usecase

import (
	"context"
	"testing"

	"github.com/shandysiswandi/gokode/internal/pkg/goerror"
)

func TestLogout(t *testing.T) {
	h := newHarness(t)
	session := loginFor(t, h)

	err := h.uc.Logout(h.authCtx(1), LogoutInput{RefreshToken: session.RefreshToken})
	if err != nil {
		t.Fatalf("Logout() error = %v", err)
	}

	// the revoked token is gone for good
	_, err = h.uc.RefreshToken(context.Background(), RefreshTokenInput{RefreshToken: session.RefreshToken})
	assertCode(t, err, goerror.CodeUnauthorized)
}

func TestLogout_RequiresAuth(t *testing.T) {
	h := newHarness(t)

	err := h.uc.Logout(context.Background(), LogoutInput{RefreshToken: "whatever"})
	assertCode(t, err, goerror.CodeUnauthorized)
}

func TestLogout_EmptyTokenIsNoop(t *testing.T) {
	h := newHarness(t)
	session := loginFor(t, h)

	if err := h.uc.Logout(h.authCtx(1), LogoutInput{}); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}

	// nothing was revoked
	if _, err := h.uc.RefreshToken(context.Background(), RefreshTokenInput{RefreshToken: session.RefreshToken}); err != nil {
		t.Fatalf("RefreshToken() error = %v", err)
	}
}
