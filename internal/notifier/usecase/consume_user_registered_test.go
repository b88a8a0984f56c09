package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/shandysiswandi/gokode/internal/notifier/entity"
)

func userRegisteredInput() ConsumeUserRegisteredInput {
	return ConsumeUserRegisteredInput{
		MessageID: "msg-1",
		UserID:    42,
		Email:     "new@example.com",
		FullName:  "New User",
	}
}

func TestConsumeUserRegistered(t *testing.T) {
	h := newHarness(t)
	h.seedTemplate(entity.TriggerKeyUserWelcome, entity.ChannelEmail,
		"Welcome", "Hello {{.full_name}}, welcome to {{.app_name}}! Year {{.year}}.")

	if err := h.uc.ConsumeUserRegistered(context.Background(), userRegisteredInput()); err != nil {
		t.Fatalf("ConsumeUserRegistered() error = %v", err)
	}

	h.mail.mu.Lock()
	defer h.mail.mu.Unlock()
	if len(h.mail.sent) != 1 {
		t.Fatalf("sent emails = %d, want 1", len(h.mail.sent))
	}
	body := h.mail.sent[0].HTMLBody
	if !strings.Contains(body, "Hello New User, welcome to Gokode! Year 2026.") {
		t.Fatalf("HTMLBody = %q, want rendered name, app and year", body)
	}
}

func TestConsumeUserRegistered_DuplicateMessageID(t *testing.T) {
	h := newHarness(t)
	h.seedTemplate(entity.TriggerKeyUserWelcome, entity.ChannelEmail, "Welcome", "Hi {{.full_name}}")

	for i := 0; i < 2; i++ {
		if err := h.uc.ConsumeUserRegistered(context.Background(), userRegisteredInput()); err != nil {
			t.Fatalf("ConsumeUserRegistered() error = %v", err)
		}
	}

	if got := h.mail.sentCount(); got != 1 {
		t.Fatalf("sent emails = %d, want 1 despite redelivery", got)
	}
}

func TestConsumeUserRegistered_InvalidPayloadSwallowed(t *testing.T) {
	h := newHarness(t)

	in := userRegisteredInput()
	in.Email = "not-an-email"
	if err := h.uc.ConsumeUserRegistered(context.Background(), in); err != nil {
		t.Fatalf("ConsumeUserRegistered() error = %v, want nil so the broker drops it", err)
	}
	if got := h.mail.sentCount(); got != 0 {
		t.Fatalf("sent emails = %d, want 0", got)
	}
}

func TestConsumeUserRegistered_MissingTemplateSkips(t *testing.T) {
	h := newHarness(t)

	if err := h.uc.ConsumeUserRegistered(context.Background(), userRegisteredInput()); err != nil {
		t.Fatalf("ConsumeUserRegistered() error = %v, want nil when no template exists", err)
	}
	if got := h.mail.sentCount(); got != 0 {
		t.Fatalf("sent emails = %d, want 0", got)
	}
}
