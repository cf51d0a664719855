package ratelimit

import (
	"context"
	"sync"
	"time"
)

// InMemoryStorage implements Storage using in-memory token buckets. Suitable
// for a single server instance; use RedisStorage when running replicas.
type InMemoryStorage struct {
	mu          sync.RWMutex
	buckets     map[string]*tokenBucket
	cleanup     *time.Ticker
	stopCleanup chan struct{}
}

// NewInMemoryStorage creates a new in-memory rate limiter storage.
// It includes a background cleanup goroutine to remove unused buckets.
func NewInMemoryStorage() *InMemoryStorage {
	storage := &InMemoryStorage{
		buckets:     make(map[string]*tokenBucket),
		cleanup:     time.NewTicker(5 * time.Minute),
		stopCleanup: make(chan struct{}),
	}

	go storage.cleanupUnusedBuckets()

	return storage
}

// Stop stops the background cleanup goroutine. Call this when shutting down.
func (s *InMemoryStorage) Stop() {
	s.cleanup.Stop()
	close(s.stopCleanup)
}

// Allow checks if a request is allowed and consumes a token if available.
func (s *InMemoryStorage) Allow(ctx context.Context, key string, limit Limit) (bool, error) {
	s.mu.Lock()
	bucket, exists := s.buckets[key]
	if !exists {
		bucket = newTokenBucket(float64(limit.Requests), limit.Window)
		s.buckets[key] = bucket
	}
	s.mu.Unlock()

	return bucket.consume(1), nil
}

// cleanupUnusedBuckets periodically removes buckets that haven't been used recently.
func (s *InMemoryStorage) cleanupUnusedBuckets() {
	for {
		select {
		case <-s.cleanup.C:
			cutoff := time.Now().Add(-30 * time.Minute)

			s.mu.Lock()
			for key, bucket := range s.buckets {
				if bucket.idleSince(cutoff) {
					delete(s.buckets, key)
				}
			}
			s.mu.Unlock()
		case <-s.stopCleanup:
			return
		}
	}
}
