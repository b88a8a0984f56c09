package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/gokode/internal/pkg/goerror"
	"github.com/shandysiswandi/gokode/internal/pkg/instrument"
	"github.com/shandysiswandi/gokode/internal/verification/entity"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// failScript bumps the wrong-attempt counter only while the record is
// still alive, so the counter can never outlive (or resurrect) its key.
var failScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return -1
end
return redis.call('HINCRBY', KEYS[1], 'attempts', 1)
`)

// consumeScript deletes the record iff the stored digest matches, which
// keeps one-time use intact when two verifies race across replicas. The
// digest equality here is only for atomicity; the secret-bearing
// comparison already happened constant-time on the caller's side.
var consumeScript = redis.NewScript(`
local digest = redis.call('HGET', KEYS[1], 'digest')
if digest == false then
  return -1
end
if digest == ARGV[1] then
  redis.call('DEL', KEYS[1])
  return 1
end
return 0
`)

// Redis stores code records in a shared Redis instance. Expiry is owned
// by Redis itself via PEXPIRE, so restarts and replicas agree on it.
type Redis struct {
	client *redis.Client
	ins    instrument.Instrumentation
}

// NewRedis creates a Redis-backed code store.
func NewRedis(client *redis.Client, ins instrument.Instrumentation) *Redis {
	return &Redis{client: client, ins: ins}
}

func (s *Redis) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("verification.outbound.store").Start(ctx, name)
}

func (s *Redis) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Put replaces any live record for (channel, recipient) and arms the TTL.
func (s *Redis) Put(ctx context.Context, channel entity.Channel, recipient string, rec entity.CodeRecord, ttl time.Duration) (err error) {
	ctx, span := s.startSpan(ctx, "Put")
	defer func() { s.endSpan(span, err) }()

	k := key(channel, recipient)

	// DEL first so a previous record's attempts never leak into the new one.
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, k)
	pipe.HSet(ctx, k,
		"digest", rec.Digest,
		"purpose", int16(rec.Purpose),
		"attempts", rec.Attempts,
		"issued_at_ms", rec.IssuedAt.UnixMilli(),
	)
	pipe.PExpire(ctx, k, ttl)

	if _, err = pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store: redis put: %w", err)
	}
	return nil
}

// Get returns the live record or goerror.ErrNotFound.
func (s *Redis) Get(ctx context.Context, channel entity.Channel, recipient string) (rec *entity.CodeRecord, err error) {
	ctx, span := s.startSpan(ctx, "Get")
	defer func() { s.endSpan(span, err) }()

	fields, err := s.client.HGetAll(ctx, key(channel, recipient)).Result()
	if err != nil {
		return nil, fmt.Errorf("store: redis get: %w", err)
	}
	if len(fields) == 0 {
		return nil, goerror.ErrNotFound
	}

	return parseRecord(fields)
}

// Fail increments the wrong-attempt counter and returns the new value.
func (s *Redis) Fail(ctx context.Context, channel entity.Channel, recipient string) (attempts int32, err error) {
	ctx, span := s.startSpan(ctx, "Fail")
	defer func() { s.endSpan(span, err) }()

	n, err := failScript.Run(ctx, s.client, []string{key(channel, recipient)}).Int64()
	if err != nil {
		return 0, fmt.Errorf("store: redis fail: %w", err)
	}
	if n < 0 {
		return 0, goerror.ErrNotFound
	}
	return int32(n), nil
}

// Consume deletes the record iff its digest equals digest. It reports
// false when the record is gone or holds a different digest.
func (s *Redis) Consume(ctx context.Context, channel entity.Channel, recipient, digest string) (consumed bool, err error) {
	ctx, span := s.startSpan(ctx, "Consume")
	defer func() { s.endSpan(span, err) }()

	n, err := consumeScript.Run(ctx, s.client, []string{key(channel, recipient)}, digest).Int64()
	if err != nil {
		return false, fmt.Errorf("store: redis consume: %w", err)
	}
	return n == 1, nil
}

// Delete removes the record unconditionally.
func (s *Redis) Delete(ctx context.Context, channel entity.Channel, recipient string) (err error) {
	ctx, span := s.startSpan(ctx, "Delete")
	defer func() { s.endSpan(span, err) }()

	if err = s.client.Del(ctx, key(channel, recipient)).Err(); err != nil {
		return fmt.Errorf("store: redis delete: %w", err)
	}
	return nil
}

func parseRecord(fields map[string]string) (*entity.CodeRecord, error) {
	purpose, err := strconv.ParseInt(fields["purpose"], 10, 16)
	if err != nil {
		return nil, fmt.Errorf("store: parse purpose: %w", err)
	}
	attempts, err := strconv.ParseInt(fields["attempts"], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("store: parse attempts: %w", err)
	}
	issuedAtMs, err := strconv.ParseInt(fields["issued_at_ms"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("store: parse issued_at_ms: %w", err)
	}

	return &entity.CodeRecord{
		Digest:   fields["digest"],
		Purpose:  entity.Purpose(purpose),
		Attempts: int32(attempts),
		IssuedAt: time.UnixMilli(issuedAtMs),
	}, nil
}
