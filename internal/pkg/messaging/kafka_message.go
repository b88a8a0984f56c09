package messaging

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"
)

// kafkaMessage adapts a fetched kafka.Message to the Message interface.
// Ack commits the offset; Nack simply leaves it uncommitted so the
// group redelivers after a rebalance or restart.
type kafkaMessage struct {
	reader *kafka.Reader
	rec    kafka.Message

	responded atomic.Bool
}

func newKafkaMessage(reader *kafka.Reader, rec kafka.Message) *kafkaMessage {
	return &kafkaMessage{reader: reader, rec: rec}
}

func (m *kafkaMessage) hasResponded() bool { return m.responded.Load() }

func (m *kafkaMessage) Body() []byte { return m.rec.Value }

func (m *kafkaMessage) Key() []byte { return m.rec.Key }

// ID is the topic/partition/offset coordinate, which uniquely
// identifies a record within a cluster.
func (m *kafkaMessage) ID() string {
	return fmt.Sprintf("%s/%d/%d", m.rec.Topic, m.rec.Partition, m.rec.Offset)
}

func (m *kafkaMessage) Topic() string { return m.rec.Topic }

func (m *kafkaMessage) Subject() string { return "" }

func (m *kafkaMessage) Timestamp() time.Time { return m.rec.Time }

func (m *kafkaMessage) Headers() []Header {
	if len(m.rec.Headers) == 0 {
		return nil
	}
	out := make([]Header, len(m.rec.Headers))
	for i, h := range m.rec.Headers {
		out[i] = Header{Key: h.Key, Value: h.Value}
	}
	return out
}

// Attributes flattens headers into a string map. Kafka allows repeated
// header keys; the first value wins here.
func (m *kafkaMessage) Attributes() map[string]string {
	if len(m.rec.Headers) == 0 {
		return nil
	}
	attrs := make(map[string]string, len(m.rec.Headers))
	for _, h := range m.rec.Headers {
		if _, dup := attrs[h.Key]; !dup {
			attrs[h.Key] = string(h.Value)
		}
	}
	return attrs
}

func (m *kafkaMessage) Ack(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.responded.Swap(true) {
		return nil
	}
	return m.reader.CommitMessages(ctx, m.rec)
}

func (m *kafkaMessage) Nack(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.responded.Store(true)
	return nil
}

// Extend is meaningless for Kafka, which has no per-message lease.
func (m *kafkaMessage) Extend(ctx context.Context, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return ErrUnsupported
}

func (m *kafkaMessage) Metadata() map[string]any {
	return map[string]any{
		"partition": m.rec.Partition,
		"offset":    m.rec.Offset,
		"topic":     m.rec.Topic,
	}
}

func (m *kafkaMessage) Raw() any { return m.rec }
