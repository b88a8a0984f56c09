package messaging

import (
	"context"
	"encoding/hex"
	"sync/atomic"
	"time"

	nsq "github.com/nsqio/go-nsq"
)

// nsqMessage adapts an *nsq.Message to the Message interface. Ack maps
// to Finish, Nack to an immediate Requeue, and Extend to Touch. NSQ
// messages carry no headers, so Headers and Attributes are always nil.
// The topic is tracked alongside the message since the wire format
// does not include it.
type nsqMessage struct {
	topic string
	msg   *nsq.Message

	responded atomic.Bool
}

func newNSQMessage(topic string, msg *nsq.Message) *nsqMessage {
	return &nsqMessage{topic: topic, msg: msg}
}

func (m *nsqMessage) hasResponded() bool { return m.responded.Load() }

func (m *nsqMessage) Body() []byte { return m.msg.Body }

func (m *nsqMessage) Key() []byte { return nil }

func (m *nsqMessage) ID() string { return hex.EncodeToString(m.msg.ID[:]) }

func (m *nsqMessage) Topic() string { return m.topic }

func (m *nsqMessage) Subject() string { return "" }

func (m *nsqMessage) Timestamp() time.Time { return time.Unix(0, m.msg.Timestamp) }

func (m *nsqMessage) Headers() []Header { return nil }

func (m *nsqMessage) Attributes() map[string]string { return nil }

// finalize runs the Finish or Requeue call at most once.
func (m *nsqMessage) finalize(ctx context.Context, call func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !m.responded.Swap(true) {
		call()
	}
	return nil
}

func (m *nsqMessage) Ack(ctx context.Context) error {
	return m.finalize(ctx, m.msg.Finish)
}

func (m *nsqMessage) Nack(ctx context.Context) error {
	return m.finalize(ctx, func() { m.msg.Requeue(0) })
}

func (m *nsqMessage) Extend(ctx context.Context, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.msg.Touch()
	return nil
}

func (m *nsqMessage) Metadata() map[string]any {
	return map[string]any{
		"attempts":      m.msg.Attempts,
		"nsqd_address":  m.msg.NSQDAddress,
		"raw_timestamp": m.msg.Timestamp,
	}
}

func (m *nsqMessage) Raw() any { return m.msg }
