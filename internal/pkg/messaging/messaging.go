package messaging

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrUnsupported is returned when the selected broker lacks a feature,
// such as delayed delivery.
var ErrUnsupported = errors.New("pkgmessage: unsupported operation")

// Messaging is the broker-agnostic client the event producers and the
// notifier consumers are written against.
type Messaging interface {
	io.Closer

	Publisher
	Consumer
}

// Publisher sends messages to a destination, whatever the broker calls
// it: topic, subject, exchange or queue.
type Publisher interface {
	Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error)
}

// Consumer reads messages from a source.
type Consumer interface {
	Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error
}

// Handler processes one received message. What a non-nil error means is
// up to the broker adapter: ack anyway, nack, or leave unacked.
type Handler func(ctx context.Context, msg Message) error

// OutgoingMessage is a message to publish, with fields for each
// broker's extras; adapters ignore what they cannot express.
type OutgoingMessage struct {
	// Body is the payload.
	Body []byte

	// Key drives partitioning on Kafka-like brokers.
	Key []byte

	// Headers allow binary values and duplicate keys.
	Headers []Header

	// Attributes are string attributes for brokers that model them (Pub/Sub).
	Attributes map[string]string

	// OrderingKey is Google Pub/Sub's ordering handle.
	OrderingKey string

	// Delay defers delivery where the broker supports it.
	Delay time.Duration

	// Metadata carries broker-specific publish settings.
	Metadata map[string]any
}

// Header is one message header.
type Header struct {
	Key   string
	Value []byte
}

// PublishResult reports what the broker said about an accepted publish.
type PublishResult struct {
	// MessageID is the broker-assigned message ID.
	MessageID string

	// Topic, Partition and Offset locate the message on Kafka-like brokers.
	Topic     string
	Partition int32
	Offset    int64

	// Sequence is the JetStream publish sequence.
	Sequence uint64

	// Timestamp is when the broker accepted the message.
	Timestamp time.Time

	// Raw is the underlying broker-specific result, if exposed.
	Raw any
}

// Message is one received message.
type Message interface {
	Body() []byte
	Key() []byte
	Headers() []Header
	Attributes() map[string]string

	// ID returns the broker message ID; consumers dedupe on it.
	ID() string
	Topic() string
	Subject() string
	Timestamp() time.Time

	// Ack acknowledges successful processing.
	Ack(ctx context.Context) error
}

// Nackable is implemented by messages that can request redelivery.
type Nackable interface {
	Nack(ctx context.Context) error
}

// Extendable is implemented by messages whose ack deadline can move.
type Extendable interface {
	Extend(ctx context.Context, d time.Duration) error
}

// MetadataCarrier exposes broker-specific delivery metadata.
type MetadataCarrier interface {
	Metadata() map[string]any
}

// RawCarrier exposes the underlying broker message type.
type RawCarrier interface {
	Raw() any
}
