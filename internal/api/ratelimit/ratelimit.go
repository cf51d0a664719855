// Package ratelimit provides token-bucket rate limiting for the auth
// endpoints, with in-memory storage for single instances and a Redis storage
// for deployments running more than one replica.
package ratelimit

import (
	"context"
	"time"
)

// Limit describes how many requests a client may make within a window.
type Limit struct {
	Requests int
	Window   time.Duration
}

// Storage tracks token bucket state per client key.
type Storage interface {
	// Allow reports whether a request for the key is within the limit and
	// consumes one token when it is.
	Allow(ctx context.Context, key string, limit Limit) (bool, error)
}
