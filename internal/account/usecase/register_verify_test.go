package usecase

import (
	"context"
	"testing"

	"github.com/shandysiswandi/gokode/internal/account/entity"
	"github.com/shandysiswandi/gokode/internal/pkg/goerror"
)

func TestRegisterVerify(t *testing.T) {
	h := newHarness(t)
	id := h.seedUser(t, "pending@example.com", "Sup3r-Secret", entity.UserStatusPendingVerification)

	err := h.uc.RegisterVerify(context.Background(), RegisterVerifyInput{
		Email: "Pending@Example.com",
		Code:  "123456",
	})
	if err != nil {
		t.Fatalf("RegisterVerify() error = %v", err)
	}

	h.repo.mu.Lock()
	status := h.repo.users[id].user.Status
	h.repo.mu.Unlock()
	if status != entity.UserStatusActive {
		t.Fatalf("user status = %v, want active", status)
	}
}

func TestRegisterVerify_UnknownEmail(t *testing.T) {
	h := newHarness(t)

	err := h.uc.RegisterVerify(context.Background(), RegisterVerifyInput{
		Email: "ghost@example.com",
		Code:  "123456",
	})
	assertCode(t, err, goerror.CodeNotFoundOrExpired)
}

func TestRegisterVerify_AlreadyActive(t *testing.T) {
	h := newHarness(t)
	h.seedUser(t, "active@example.com", "Sup3r-Secret", entity.UserStatusActive)

	err := h.uc.RegisterVerify(context.Background(), RegisterVerifyInput{
		Email: "active@example.com",
		Code:  "123456",
	})
	assertCode(t, err, goerror.CodeNotFoundOrExpired)
}

func TestRegisterVerify_EngineErrorPassesThrough(t *testing.T) {
	h := newHarness(t)
	id := h.seedUser(t, "pending@example.com", "Sup3r-Secret", entity.UserStatusPendingVerification)
	h.codes.confirmErr = goerror.NewInvalidCode()

	err := h.uc.RegisterVerify(context.Background(), RegisterVerifyInput{
		Email: "pending@example.com",
		Code:  "000000",
	})
	assertCode(t, err, goerror.CodeInvalidCode)

	h.repo.mu.Lock()
	status := h.repo.users[id].user.Status
	h.repo.mu.Unlock()
	if status != entity.UserStatusPendingVerification {
		t.Fatalf("user status = %v, want still pending", status)
	}
}
