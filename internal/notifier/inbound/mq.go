package inbound

import (
	"context"
	"log/slog"
	"slices"

	"github.com/shandysiswandi/gokode/internal/pkg/config"
	"github.com/shandysiswandi/gokode/internal/pkg/goroutine"
	"github.com/shandysiswandi/gokode/internal/pkg/instrument"
	"github.com/shandysiswandi/gokode/internal/pkg/messaging"
	"github.com/shandysiswandi/gokode/internal/pkg/uid"
	"github.com/shandysiswandi/gokode/internal/shared/event"
)

func RegisterMQConsumer(
	ctx context.Context,
	cfg config.Config,
	routine *goroutine.Manager,
	messenger messaging.Messaging,
	uuid uid.StringID,
	uc uc,
	ins instrument.Instrumentation,
) {
	mqHandler := &MQHandler{uc: uc, uuid: uuid, ins: ins}

	enableConsumerNames := cfg.GetArray("modules.notifier.consumer_names")

	var consumers = []struct {
		name               string
		topic              string // destination where publisher sent message
		nsqConsumerName    string // for nsq
		natsConsumerName   string // for nats
		kafkaConsumerName  string // for kafka
		pubsubConsumerName string // for google pubsub
		handler            messaging.Handler
	}{
		{
			name:               event.VerificationCodeIssuedConsumerNotifier,
			topic:              event.VerificationCodeIssuedDestination,
			nsqConsumerName:    event.VerificationCodeIssuedConsumerNotifier,
			natsConsumerName:   event.VerificationCodeIssuedConsumerNotifier,
			kafkaConsumerName:  event.VerificationCodeIssuedConsumerNotifier,
			pubsubConsumerName: event.VerificationCodeIssuedConsumerNotifier,
			handler:            mqHandler.CodeIssuedNotifier,
		},
		{
			name:               event.UserRegisteredConsumerNotifier,
			topic:              event.UserRegisteredDestination,
			nsqConsumerName:    event.UserRegisteredConsumerNotifier,
			natsConsumerName:   event.UserRegisteredConsumerNotifier,
			kafkaConsumerName:  event.UserRegisteredConsumerNotifier,
			pubsubConsumerName: event.UserRegisteredConsumerNotifier,
			handler:            mqHandler.UserRegisteredNotifier,
		},
	}

	for _, consumer := range consumers {
		if len(enableConsumerNames) > 0 && slices.Contains(enableConsumerNames, consumer.name) {
			routine.Go(ctx, func(pCtx context.Context) error {
				slog.InfoContext(ctx, "Running job for handling consumer", "consumer", consumer.name)
				return messenger.Consume(pCtx,
					consumer.topic,
					consumer.handler,
					messaging.WithChannel(consumer.nsqConsumerName),
					messaging.WithQueueGroup(consumer.natsConsumerName),
					messaging.WithGroup(consumer.kafkaConsumerName),
					messaging.WithSubscription(consumer.pubsubConsumerName),
					messaging.WithAutoAck(true),
					messaging.WithConcurrency(10),
					messaging.WithMaxInFlight(10),
				)
			})
		}
	}
}
