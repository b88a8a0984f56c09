package inbound

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/shandysiswandi/gokode/internal/notifier/usecase"
	"github.com/shandysiswandi/gokode/internal/pkg/instrument"
	"github.com/shandysiswandi/gokode/internal/pkg/messaging"
	"github.com/shandysiswandi/gokode/internal/pkg/uid"
	"github.com/shandysiswandi/gokode/internal/shared/event"
)

const keyOfCorrelationID string = "cID"

type MQHandler struct {
	uc   uc
	uuid uid.StringID
	ins  instrument.Instrumentation
}

func (h *MQHandler) ensureCorrelationID(ctx context.Context, headers []messaging.Header) context.Context {
	for i := range headers {
		if headers[i].Key == keyOfCorrelationID {
			return instrument.SetCorrelationID(ctx, string(headers[i].Value))
		}
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}

func (h *MQHandler) CodeIssuedNotifier(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg.Headers())

	ctx, span := h.ins.Tracer("notifier.inbound.mq").Start(ctx, "CodeIssuedNotifier")
	defer span.End()

	body := msg.Body()
	slog.InfoContext(ctx, "consume: verification code issued", "msg_id", msg.ID())

	var payload event.VerificationCodeIssuedMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of verification code issued", "msg_body", string(body), "error", err)
		return nil
	}

	if err := h.uc.ConsumeCodeIssued(ctx, usecase.ConsumeCodeIssuedInput{
		MessageID:  msg.ID(),
		Channel:    payload.Channel,
		Recipient:  payload.Recipient,
		Code:       payload.Code,
		Purpose:    payload.Purpose,
		TTLSeconds: payload.TTLSeconds,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume verification code issued", "msg_id", msg.ID(), "error", err)
		return err
	}

	return nil
}

func (h *MQHandler) UserRegisteredNotifier(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg.Headers())

	ctx, span := h.ins.Tracer("notifier.inbound.mq").Start(ctx, "UserRegisteredNotifier")
	defer span.End()

	body := msg.Body()
	slog.InfoContext(ctx, "consume: user registered", "msg_body", string(body))

	var payload event.UserRegisteredMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of user registered", "msg_body", string(body), "error", err)
		return nil
	}

	if err := h.uc.ConsumeUserRegistered(ctx, usecase.ConsumeUserRegisteredInput{
		MessageID: msg.ID(),
		UserID:    payload.UserID,
		Email:     payload.Email,
		FullName:  payload.FullName,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume user registered", "msg_body", string(body), "error", err)
		return err
	}

	return nil
}
