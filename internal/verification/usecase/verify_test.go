package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shandysiswandi/gokode/internal/pkg/goerror"
	"github.com/shandysiswandi/gokode/internal/verification/entity"
)

// wrongCode returns a syntactically valid code that differs from code.
func wrongCode(code string) string {
	if code[0] == '0' {
		return "1" + code[1:]
	}
	return "0" + code[1:]
}

func TestUsecase_Verify_MatchConsumesRecord(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	in := SendInput{Channel: entity.ChannelEmail, Recipient: "a@b.test", Purpose: entity.PurposeAuth}
	code := h.sendAndCapture(t, in)

	verify := VerifyInput{
		Channel:   entity.ChannelEmail,
		Recipient: "a@b.test",
		Code:      code,
		Purpose:   entity.PurposeAuth,
	}
	if err := h.uc.Verify(ctx, verify); err != nil {
		t.Fatalf("Verify() error = %v", err)
	}

	// One-time use: the same code is dead after success.
	err := h.uc.Verify(ctx, verify)
	var gerr *goerror.Error
	if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeNotFoundOrExpired {
		t.Errorf("Verify() replay error = %v, want not found or expired", err)
	}

	events := h.repo.eventSequence()
	want := []entity.AuditEvent{entity.AuditEventCodeIssued, entity.AuditEventVerified, entity.AuditEventMissed}
	if len(events) != len(want) {
		t.Fatalf("audit events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("audit events[%d] = %v, want %v", i, events[i], want[i])
		}
	}
}

func TestUsecase_Verify_WrongCodeBurnsAttempts(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	in := SendInput{Channel: entity.ChannelEmail, Recipient: "a@b.test", Purpose: entity.PurposeAuth}
	code := h.sendAndCapture(t, in)

	verify := VerifyInput{
		Channel:   entity.ChannelEmail,
		Recipient: "a@b.test",
		Code:      wrongCode(code),
		Purpose:   entity.PurposeAuth,
	}

	// Attempts one through four reject but keep the record alive.
	for i := 0; i < 4; i++ {
		err := h.uc.Verify(ctx, verify)
		var gerr *goerror.Error
		if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeInvalidCode {
			t.Fatalf("Verify() wrong #%d error = %v, want invalid code", i+1, err)
		}
		if gerr.Error() != "Invalid code" {
			t.Errorf("Verify() wrong #%d message = %q, want %q", i+1, gerr.Error(), "Invalid code")
		}
	}

	// The fifth wrong attempt exhausts and destroys the record.
	err := h.uc.Verify(ctx, verify)
	var gerr *goerror.Error
	if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeInvalidCode {
		t.Fatalf("Verify() wrong #5 error = %v, want invalid code", err)
	}

	// Even the right code is now useless.
	verify.Code = code
	err = h.uc.Verify(ctx, verify)
	if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeNotFoundOrExpired {
		t.Errorf("Verify() right code after exhaustion error = %v, want not found or expired", err)
	}

	events := h.repo.eventSequence()
	if events[len(events)-2] != entity.AuditEventExhausted {
		t.Errorf("audit events = %v, want exhausted before final missed", events)
	}
}

func TestUsecase_Verify_RightCodeAfterFourWrongSucceeds(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	in := SendInput{Channel: entity.ChannelEmail, Recipient: "a@b.test", Purpose: entity.PurposeAuth}
	code := h.sendAndCapture(t, in)

	verify := VerifyInput{
		Channel:   entity.ChannelEmail,
		Recipient: "a@b.test",
		Code:      wrongCode(code),
		Purpose:   entity.PurposeAuth,
	}
	for i := 0; i < 4; i++ {
		if err := h.uc.Verify(ctx, verify); err == nil {
			t.Fatalf("Verify() wrong #%d error = nil", i+1)
		}
	}

	verify.Code = code
	if err := h.uc.Verify(ctx, verify); err != nil {
		t.Errorf("Verify() right code on attempt 5 error = %v", err)
	}
}

func TestUsecase_Verify_ExpiredCode(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	in := SendInput{Channel: entity.ChannelEmail, Recipient: "a@b.test", Purpose: entity.PurposeAuth}
	code := h.sendAndCapture(t, in)

	h.clk.Advance(301 * time.Second)

	err := h.uc.Verify(ctx, VerifyInput{
		Channel:   entity.ChannelEmail,
		Recipient: "a@b.test",
		Code:      code,
		Purpose:   entity.PurposeAuth,
	})
	var gerr *goerror.Error
	if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeNotFoundOrExpired {
		t.Errorf("Verify() expired error = %v, want not found or expired", err)
	}
	if gerr != nil && gerr.Error() != "Expired or not found" {
		t.Errorf("Verify() expired message = %q, want %q", gerr.Error(), "Expired or not found")
	}
}

func TestUsecase_Verify_UnknownRecipient(t *testing.T) {
	h := newHarness(t)

	err := h.uc.Verify(context.Background(), VerifyInput{
		Channel:   entity.ChannelEmail,
		Recipient: "nobody@b.test",
		Code:      "123456",
		Purpose:   entity.PurposeAuth,
	})
	var gerr *goerror.Error
	if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeNotFoundOrExpired {
		t.Fatalf("Verify() error = %v, want not found or expired", err)
	}

	// The message never betrays whether a code was ever issued.
	if strings.Contains(strings.ToLower(gerr.Error()), "recipient") {
		t.Errorf("Verify() message leaks recipient state: %q", gerr.Error())
	}
}

func TestUsecase_Verify_PurposeMismatch(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	in := SendInput{Channel: entity.ChannelEmail, Recipient: "a@b.test", Purpose: entity.PurposeAuth}
	code := h.sendAndCapture(t, in)

	err := h.uc.Confirm(ctx, "email", "a@b.test", "register", code)
	var gerr *goerror.Error
	if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeNotFoundOrExpired {
		t.Errorf("Confirm() cross purpose error = %v, want not found or expired", err)
	}

	// The record survives a purpose mismatch.
	if err := h.uc.Confirm(ctx, "email", "a@b.test", "auth", code); err != nil {
		t.Errorf("Confirm() right purpose error = %v", err)
	}
}

func TestUsecase_Verify_RejectsMalformedCode(t *testing.T) {
	h := newHarness(t)

	tests := []string{"", "12345a", "123", "12345678901"}
	for _, code := range tests {
		err := h.uc.Verify(context.Background(), VerifyInput{
			Channel:   entity.ChannelEmail,
			Recipient: "a@b.test",
			Code:      code,
			Purpose:   entity.PurposeAuth,
		})
		var gerr *goerror.Error
		if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeValidation {
			t.Errorf("Verify(%q) error = %v, want validation", code, err)
		}
	}
}

func TestUsecase_Verify_EleventhIsRateLimited(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	in := VerifyInput{
		Channel:   entity.ChannelEmail,
		Recipient: "a@b.test",
		Code:      "123456",
		Purpose:   entity.PurposeAuth,
	}
	for i := 0; i < 10; i++ {
		err := h.uc.Verify(ctx, in)
		var gerr *goerror.Error
		if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeNotFoundOrExpired {
			t.Fatalf("Verify() #%d error = %v, want not found or expired", i+1, err)
		}
	}

	err := h.uc.Verify(ctx, in)
	var gerr *goerror.Error
	if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeRateLimited {
		t.Fatalf("Verify() #11 error = %v, want rate limited", err)
	}
	if gerr.RetryAfter() <= 0 {
		t.Errorf("RetryAfter() = %v, want positive", gerr.RetryAfter())
	}
}

func TestUsecase_Verify_ConsumeRaceLosesSafely(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	in := SendInput{Channel: entity.ChannelEmail, Recipient: "a@b.test", Purpose: entity.PurposeAuth}
	code := h.sendAndCapture(t, in)

	// Another verifier got there first.
	if err := h.store.Delete(ctx, entity.ChannelEmail, "a@b.test"); err != nil {
		t.Fatalf("store Delete() error = %v", err)
	}

	err := h.uc.Verify(ctx, VerifyInput{
		Channel:   entity.ChannelEmail,
		Recipient: "a@b.test",
		Code:      code,
		Purpose:   entity.PurposeAuth,
	})
	var gerr *goerror.Error
	if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeNotFoundOrExpired {
		t.Errorf("Verify() after concurrent consume error = %v, want not found or expired", err)
	}
}

func TestUsecase_Verify_CodeIsBoundToRecipient(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	in := SendInput{Channel: entity.ChannelEmail, Recipient: "a@b.test", Purpose: entity.PurposeAuth}
	code := h.sendAndCapture(t, in)

	// Give b@b.test a pending record holding a@b.test's digest, as if
	// the digest were not keyed to the recipient.
	rec, err := h.store.Get(ctx, entity.ChannelEmail, "a@b.test")
	if err != nil {
		t.Fatalf("store Get() error = %v", err)
	}
	if err := h.store.Put(ctx, entity.ChannelEmail, "b@b.test", *rec, 5*time.Minute); err != nil {
		t.Fatalf("store Put() error = %v", err)
	}

	// The same plaintext recomputes to a different digest for another
	// recipient, so the replay rejects.
	err = h.uc.Verify(ctx, VerifyInput{
		Channel:   entity.ChannelEmail,
		Recipient: "b@b.test",
		Code:      code,
		Purpose:   entity.PurposeAuth,
	})
	var gerr *goerror.Error
	if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeInvalidCode {
		t.Fatalf("Verify() cross-recipient error = %v, want invalid code", err)
	}

	// The owner's verify is untouched by the failed replay.
	err = h.uc.Verify(ctx, VerifyInput{
		Channel:   entity.ChannelEmail,
		Recipient: "a@b.test",
		Code:      code,
		Purpose:   entity.PurposeAuth,
	})
	if err != nil {
		t.Errorf("Verify() owner error = %v", err)
	}
}
