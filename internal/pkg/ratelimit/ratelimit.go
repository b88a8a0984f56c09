// Package ratelimit implements per-key token-bucket rate limiting.
//
// Buckets refill continuously: a key with capacity C and window W earns
// floor(elapsed/W * C) tokens since its last refill, capped at C, and a
// request consumes one token. Each key's bucket is independent; there is
// no fairness across keys.
//
// Two backends exist: Redis (shared, correct across replicas) and an
// in-process map (single instance only, meant for development).
package ratelimit

import (
	"context"
	"time"
)

// Result is the outcome of an Allow call.
type Result struct {
	// Allowed reports whether the request may proceed.
	Allowed bool
	// RetryAfter is the time until the next token accrues. Zero when
	// the request was allowed.
	RetryAfter time.Duration
}

// Limiter gates requests per key.
//
// Allow always yields a usable Result; a non-nil error means the backend
// could not be consulted and the caller chooses the failure policy.
type Limiter interface {
	Allow(ctx context.Context, key string, capacity int64, window time.Duration) (Result, error)
}
