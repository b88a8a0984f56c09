package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shandysiswandi/gokode/internal/pkg/goerror"
	"github.com/shandysiswandi/gokode/internal/verification/entity"
)

func TestUsecase_Send_IssuesAndPublishes(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	in := SendInput{
		Channel:   entity.ChannelEmail,
		Recipient: "a@b.test",
		Purpose:   entity.PurposeAuth,
		ClientIP:  "203.0.113.7",
	}
	if err := h.uc.Send(ctx, in); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if h.msgs.count() != 1 {
		t.Fatalf("published events = %d, want 1", h.msgs.count())
	}
	ev := h.msgs.last()
	if ev.Channel != "email" || ev.Recipient != "a@b.test" || ev.Purpose != "auth" {
		t.Errorf("published event = %+v", ev)
	}
	if len(ev.Code) != 6 {
		t.Errorf("published code length = %d, want 6", len(ev.Code))
	}
	if ev.TTLSeconds != 300 {
		t.Errorf("published ttl = %d, want 300", ev.TTLSeconds)
	}

	rec, err := h.store.Get(ctx, entity.ChannelEmail, "a@b.test")
	if err != nil {
		t.Fatalf("store Get() error = %v", err)
	}
	if rec.Digest == "" || rec.Digest == ev.Code {
		t.Error("store must hold a digest, not the plaintext code")
	}

	events := h.repo.eventSequence()
	if len(events) != 1 || events[0] != entity.AuditEventCodeIssued {
		t.Errorf("audit events = %v, want [code_issued]", events)
	}
}

func TestUsecase_Send_SixthIsRateLimited(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	in := SendInput{
		Channel:   entity.ChannelEmail,
		Recipient: "a@b.test",
		Purpose:   entity.PurposeAuth,
	}
	for i := 0; i < 5; i++ {
		if err := h.uc.Send(ctx, in); err != nil {
			t.Fatalf("Send() #%d error = %v", i+1, err)
		}
	}

	err := h.uc.Send(ctx, in)
	if err == nil {
		t.Fatal("Send() #6 error = nil, want rate limited")
	}

	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		t.Fatalf("Send() #6 error type = %T", err)
	}
	if gerr.Code() != goerror.CodeRateLimited {
		t.Errorf("Code() = %v, want %v", gerr.Code(), goerror.CodeRateLimited)
	}
	if gerr.StatusCode() != 429 {
		t.Errorf("StatusCode() = %d, want 429", gerr.StatusCode())
	}
	if gerr.RetryAfter() <= 0 || gerr.RetryAfter() > 15*time.Minute {
		t.Errorf("RetryAfter() = %v, want within (0, 15m]", gerr.RetryAfter())
	}

	if h.msgs.count() != 5 {
		t.Errorf("published events = %d, want 5", h.msgs.count())
	}
}

func TestUsecase_Send_WindowRefillAllowsAgain(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	in := SendInput{
		Channel:   entity.ChannelEmail,
		Recipient: "a@b.test",
		Purpose:   entity.PurposeAuth,
	}
	for i := 0; i < 5; i++ {
		if err := h.uc.Send(ctx, in); err != nil {
			t.Fatalf("Send() #%d error = %v", i+1, err)
		}
	}
	if err := h.uc.Send(ctx, in); err == nil {
		t.Fatal("Send() #6 error = nil, want rate limited")
	}

	// One token refills every window/capacity = 3 minutes.
	h.clk.Advance(3 * time.Minute)
	if err := h.uc.Send(ctx, in); err != nil {
		t.Errorf("Send() after refill error = %v", err)
	}
}

func TestUsecase_Send_ResendReplacesCode(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	in := SendInput{Channel: entity.ChannelEmail, Recipient: "a@b.test", Purpose: entity.PurposeAuth}
	first := h.sendAndCapture(t, in)
	second := h.sendAndCapture(t, in)

	verify := VerifyInput{
		Channel:   entity.ChannelEmail,
		Recipient: "a@b.test",
		Code:      first,
		Purpose:   entity.PurposeAuth,
	}
	err := h.uc.Verify(ctx, verify)
	if first == second {
		t.Skip("generator repeated the code, replacement is unobservable")
	}
	var gerr *goerror.Error
	if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeInvalidCode {
		t.Errorf("Verify(first) error = %v, want invalid code", err)
	}

	verify.Code = second
	if err := h.uc.Verify(ctx, verify); err != nil {
		t.Errorf("Verify(second) error = %v", err)
	}
}

func TestUsecase_Send_RejectsBadRecipient(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	tests := []struct {
		name string
		in   SendInput
	}{
		{
			name: "malformed email",
			in:   SendInput{Channel: entity.ChannelEmail, Recipient: "not-an-email", Purpose: entity.PurposeAuth},
		},
		{
			name: "malformed phone",
			in:   SendInput{Channel: entity.ChannelPhone, Recipient: "0812abc", Purpose: entity.PurposeAuth},
		},
		{
			name: "empty recipient",
			in:   SendInput{Channel: entity.ChannelEmail, Recipient: "", Purpose: entity.PurposeAuth},
		},
		{
			name: "unknown channel",
			in:   SendInput{Channel: entity.ChannelUnknown, Recipient: "a@b.test", Purpose: entity.PurposeAuth},
		},
		{
			name: "unknown purpose",
			in:   SendInput{Channel: entity.ChannelEmail, Recipient: "a@b.test", Purpose: entity.PurposeUnknown},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := h.uc.Send(ctx, tc.in)
			var gerr *goerror.Error
			if !errors.As(err, &gerr) {
				t.Fatalf("Send() error = %v, want goerror", err)
			}
			if gerr.StatusCode() != 400 {
				t.Errorf("StatusCode() = %d, want 400", gerr.StatusCode())
			}
		})
	}

	if h.msgs.count() != 0 {
		t.Errorf("published events = %d, want 0", h.msgs.count())
	}
}

func TestUsecase_Send_LimiterDownFailsOpen(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	if err := h.limiter.Close(); err != nil {
		t.Fatalf("limiter Close() error = %v", err)
	}

	in := SendInput{Channel: entity.ChannelEmail, Recipient: "a@b.test", Purpose: entity.PurposeAuth}
	if err := h.uc.Send(ctx, in); err != nil {
		t.Errorf("Send() with limiter down error = %v, want nil", err)
	}
	if h.msgs.count() != 1 {
		t.Errorf("published events = %d, want 1", h.msgs.count())
	}
}

func TestUsecase_Send_IPGateThrottlesAcrossRecipients(t *testing.T) {
	ctx := context.Background()
	h := newHarnessWithConfig(t, `
modules:
  verification:
    code_digits: 6
    code_ttl_seconds: 300
    max_attempts: 5
    send_limit: 5
    send_ip_limit: 5
    send_window_minutes: 1
    verify_limit: 10
    verify_window_minutes: 15
`)

	// Five sends from one address inside the window, each to a fresh
	// recipient so only the per-IP bucket drains.
	for i := 0; i < 5; i++ {
		in := SendInput{
			Channel:   entity.ChannelEmail,
			Recipient: fmt.Sprintf("user%d@b.test", i),
			Purpose:   entity.PurposeAuth,
			ClientIP:  "203.0.113.7",
		}
		if err := h.uc.Send(ctx, in); err != nil {
			t.Fatalf("Send() #%d error = %v", i+1, err)
		}
	}

	err := h.uc.Send(ctx, SendInput{
		Channel:   entity.ChannelEmail,
		Recipient: "user9@b.test",
		Purpose:   entity.PurposeAuth,
		ClientIP:  "203.0.113.7",
	})
	var gerr *goerror.Error
	if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeRateLimited {
		t.Fatalf("Send() #6 from hot IP error = %v, want rate limited", err)
	}
	if gerr.RetryAfter() <= 0 {
		t.Errorf("RetryAfter() = %v, want positive", gerr.RetryAfter())
	}

	// A different address is unaffected.
	if err := h.uc.Send(ctx, SendInput{
		Channel:   entity.ChannelEmail,
		Recipient: "user9@b.test",
		Purpose:   entity.PurposeAuth,
		ClientIP:  "198.51.100.4",
	}); err != nil {
		t.Errorf("Send() from other IP error = %v", err)
	}
}

func TestUsecase_Send_PublishFailureSurfaces(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.msgs.err = errors.New("broker down")

	in := SendInput{Channel: entity.ChannelEmail, Recipient: "a@b.test", Purpose: entity.PurposeAuth}
	err := h.uc.Send(ctx, in)
	var gerr *goerror.Error
	if !errors.As(err, &gerr) || gerr.StatusCode() != 500 {
		t.Errorf("Send() with broker down error = %v, want internal", err)
	}
}

func TestUsecase_Issue_AppliesRecipientGate(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	for i := 0; i < 5; i++ {
		if err := h.uc.Issue(ctx, "email", "a@b.test", "register"); err != nil {
			t.Fatalf("Issue() #%d error = %v", i+1, err)
		}
	}

	err := h.uc.Issue(ctx, "email", "a@b.test", "register")
	var gerr *goerror.Error
	if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeRateLimited {
		t.Errorf("Issue() #6 error = %v, want rate limited", err)
	}
}

func TestUsecase_Issue_RejectsUnknownChannel(t *testing.T) {
	h := newHarness(t)

	err := h.uc.Issue(context.Background(), "carrier-pigeon", "a@b.test", "auth")
	var gerr *goerror.Error
	if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeValidation {
		t.Errorf("Issue() error = %v, want validation", err)
	}
}

func TestUsecase_Send_GateHoldsOnUnsetLimitConfig(t *testing.T) {
	ctx := context.Background()
	h := newHarnessWithConfig(t, `
modules:
  verification:
    code_digits: 6
`)

	in := SendInput{
		Channel:   entity.ChannelEmail,
		Recipient: "a@b.test",
		Purpose:   entity.PurposeAuth,
		ClientIP:  "203.0.113.7",
	}
	for i := 0; i < 5; i++ {
		if err := h.uc.Send(ctx, in); err != nil {
			t.Fatalf("Send() #%d error = %v", i+1, err)
		}
	}

	err := h.uc.Send(ctx, in)
	var gerr *goerror.Error
	if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeRateLimited {
		t.Fatalf("Send() #6 with unset limits error = %v, want rate limited", err)
	}
	if h.msgs.count() != 5 {
		t.Errorf("published events = %d, want 5", h.msgs.count())
	}

	verify := VerifyInput{
		Channel:   entity.ChannelEmail,
		Recipient: "a@b.test",
		Code:      wrongCode(h.msgs.last().Code),
		Purpose:   entity.PurposeAuth,
		ClientIP:  "203.0.113.7",
	}
	for i := 0; i < 10; i++ {
		if err := h.uc.Verify(ctx, verify); err == nil {
			t.Fatalf("Verify() #%d error = nil, want invalid code or expired", i+1)
		}
	}
	err = h.uc.Verify(ctx, verify)
	if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeRateLimited {
		t.Errorf("Verify() #11 with unset limits error = %v, want rate limited", err)
	}
}
