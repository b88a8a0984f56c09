package mail

import (
	"context"
	"io"
)

// Message is a provider-agnostic email payload. When both bodies are
// set the sender builds a multipart/alternative message.
type Message struct {
	// From overrides the configured sender when non-empty.
	From string
	// To lists the recipients; at least one is required.
	To []string
	// Cc lists carbon copy recipients.
	Cc []string
	// Bcc lists blind carbon copy recipients.
	Bcc []string
	// Subject is the subject line.
	Subject string
	// TextBody is the plain-text body.
	TextBody string
	// HTMLBody is the HTML body.
	HTMLBody string
}

// Mail abstracts an email provider.
type Mail interface {
	io.Closer
	Send(ctx context.Context, msg Message) error
}
