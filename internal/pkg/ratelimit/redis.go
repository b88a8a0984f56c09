package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/gokode/internal/pkg/clock"
)

const keyPrefix = "ratelimit:"

// allowScript holds the whole refill-and-consume step so concurrent
// callers across replicas observe one consistent bucket. The refill
// timestamp advances only by the milliseconds the granted tokens cost,
// so fractional refill progress carries over to the next call.
var allowScript = redis.NewScript(`
local capacity = tonumber(ARGV[1])
local window_ms = tonumber(ARGV[2])
local now_ms = tonumber(ARGV[3])

local bucket = redis.call('HMGET', KEYS[1], 'tokens', 'last_refill_ms')
local tokens = tonumber(bucket[1])
local last_refill = tonumber(bucket[2])

if tokens == nil or last_refill == nil then
  tokens = capacity
  last_refill = now_ms
end

local elapsed = now_ms - last_refill
if elapsed < 0 then
  elapsed = 0
end

local refill = math.floor(elapsed * capacity / window_ms)
if refill > 0 then
  if tokens + refill >= capacity then
    tokens = capacity
    last_refill = now_ms
  else
    tokens = tokens + refill
    last_refill = last_refill + math.floor(refill * window_ms / capacity)
  end
end

local allowed = 0
local retry_after_ms = 0
if tokens >= 1 then
  tokens = tokens - 1
  allowed = 1
else
  retry_after_ms = math.ceil(window_ms / capacity) - (now_ms - last_refill)
  if retry_after_ms < 1 then
    retry_after_ms = 1
  end
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'last_refill_ms', last_refill)
redis.call('PEXPIRE', KEYS[1], window_ms * 2)

return {allowed, retry_after_ms}
`)

// Redis is a Limiter backed by a shared Redis instance.
type Redis struct {
	client *redis.Client
	clock  clock.Clocker
}

// NewRedis creates a Redis-backed limiter.
func NewRedis(client *redis.Client, clk clock.Clocker) *Redis {
	return &Redis{client: client, clock: clk}
}

// Allow refills and consumes one token for key atomically.
func (r *Redis) Allow(ctx context.Context, key string, capacity int64, window time.Duration) (Result, error) {
	if capacity < 1 || window <= 0 {
		return Result{Allowed: true}, nil
	}

	now := r.clock.Now().UnixMilli()
	vals, err := allowScript.Run(ctx, r.client,
		[]string{keyPrefix + key}, capacity, window.Milliseconds(), now,
	).Int64Slice()
	if err != nil {
		return Result{}, fmt.Errorf("ratelimit: redis allow: %w", err)
	}
	if len(vals) != 2 {
		return Result{}, fmt.Errorf("ratelimit: redis allow: unexpected reply length %d", len(vals))
	}

	return Result{
		Allowed:    vals[0] == 1,
		RetryAfter: time.Duration(vals[1]) * time.Millisecond,
	}, nil
}
