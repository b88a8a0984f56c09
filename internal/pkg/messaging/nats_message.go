package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go"
)

// natsAckUnsupported reports whether an ack call failed only because the
// message has no reply subject to target, which is the normal case on
// core NATS.
func natsAckUnsupported(err error) bool {
	return errors.Is(err, nats.ErrMsgNoReply) || errors.Is(err, nats.ErrMsgNotBound)
}

// natsMessage adapts an inbound *nats.Msg to the Message interface.
// On core NATS the ack family of calls has no reply subject to target,
// so those errors are treated as a no-op rather than a failure; on
// JetStream they behave as real acks.
type natsMessage struct {
	msg        *nats.Msg
	receivedAt time.Time

	responded atomic.Bool
}

func newNATSMessage(msg *nats.Msg, receivedAt time.Time) *natsMessage {
	return &natsMessage{msg: msg, receivedAt: receivedAt}
}

func (m *natsMessage) hasResponded() bool { return m.responded.Load() }

func (m *natsMessage) Body() []byte { return m.msg.Data }

func (m *natsMessage) Key() []byte { return nil }

// ID is empty: core NATS messages carry no server-assigned identity.
func (m *natsMessage) ID() string { return "" }

func (m *natsMessage) Topic() string { return "" }

func (m *natsMessage) Subject() string { return m.msg.Subject }

// Timestamp is the local receive time; the protocol does not stamp
// messages on the server side.
func (m *natsMessage) Timestamp() time.Time { return m.receivedAt }

func (m *natsMessage) Headers() []Header {
	if len(m.msg.Header) == 0 {
		return nil
	}

	headers := make([]Header, 0, len(m.msg.Header))
	for k, values := range m.msg.Header {
		for _, v := range values {
			headers = append(headers, Header{Key: k, Value: []byte(v)})
		}
	}
	return headers
}

func (m *natsMessage) Attributes() map[string]string {
	if len(m.msg.Header) == 0 {
		return nil
	}

	attrs := make(map[string]string, len(m.msg.Header))
	for k, values := range m.msg.Header {
		if len(values) > 0 {
			attrs[k] = values[0]
		}
	}
	return attrs
}

// respond issues one of the ack-family calls at most once, swallowing
// the not-supported errors core NATS produces.
func (m *natsMessage) respond(ctx context.Context, call func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.responded.Swap(true) {
		return nil
	}
	if err := call(); err != nil && !natsAckUnsupported(err) {
		return err
	}
	return nil
}

func (m *natsMessage) Ack(ctx context.Context) error {
	return m.respond(ctx, func() error { return m.msg.Ack() })
}

func (m *natsMessage) Nack(ctx context.Context) error {
	return m.respond(ctx, func() error { return m.msg.Nak() })
}

// Extend marks the message in progress on JetStream. It does not count
// as a response, the handler still has to ack or nack.
func (m *natsMessage) Extend(ctx context.Context, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.msg.InProgress(); err != nil && !natsAckUnsupported(err) {
		return err
	}
	return nil
}

// Metadata exposes the reply subject plus JetStream delivery details
// when the message came through a stream.
func (m *natsMessage) Metadata() map[string]any {
	meta := map[string]any{"reply": m.msg.Reply}

	if md, err := m.msg.Metadata(); err == nil && md != nil {
		meta["sequence_stream"] = md.Sequence.Stream
		meta["sequence_consumer"] = md.Sequence.Consumer
		meta["num_delivered"] = md.NumDelivered
		meta["num_pending"] = md.NumPending
		meta["timestamp"] = md.Timestamp
		meta["domain"] = md.Domain
	}

	return meta
}

func (m *natsMessage) Raw() any { return m.msg }

func (m *natsMessage) String() string {
	return fmt.Sprintf("nats subject=%q", m.msg.Subject)
}
