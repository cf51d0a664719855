package ratelimit

import (
	"sync"
	"time"
)

// tokenBucket represents a single token bucket for rate limiting.
type tokenBucket struct {
	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
	lastUsed   time.Time
	capacity   float64
	refillRate float64 // tokens per second
}

func newTokenBucket(capacity float64, window time.Duration) *tokenBucket {
	now := time.Now()
	return &tokenBucket{
		tokens:     capacity,
		lastRefill: now,
		lastUsed:   now,
		capacity:   capacity,
		refillRate: capacity / window.Seconds(),
	}
}

// consume attempts to consume the requested number of tokens.
// Returns true if tokens were available and consumed, false otherwise.
func (tb *tokenBucket) consume(tokens float64) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()

	// Refill tokens based on elapsed time
	elapsed := now.Sub(tb.lastRefill).Seconds()
	tb.tokens = min(tb.capacity, tb.tokens+elapsed*tb.refillRate)
	tb.lastRefill = now
	tb.lastUsed = now

	if tb.tokens >= tokens {
		tb.tokens -= tokens
		return true
	}

	return false
}

func (tb *tokenBucket) idleSince(cutoff time.Time) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.lastUsed.Before(cutoff)
}
