// Package messaging publishes and consumes the service's events behind
// one broker-agnostic interface. Kafka, NATS, NSQ and Google Pub/Sub
// backends are selected by configuration; the event producers and the
// notifier consumers never see which one is wired in.
package messaging
