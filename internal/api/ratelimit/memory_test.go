package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStorageLimitsPerKey(t *testing.T) {
	storage := NewInMemoryStorage()
	defer storage.Stop()

	limit := Limit{Requests: 2, Window: time.Minute}

	for i := 0; i < 2; i++ {
		allowed, err := storage.Allow(context.Background(), "1.2.3.4", limit)
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, err := storage.Allow(context.Background(), "1.2.3.4", limit)
	require.NoError(t, err)
	assert.False(t, allowed)

	// A different client is unaffected
	allowed, err = storage.Allow(context.Background(), "5.6.7.8", limit)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestInMemoryStorageRefills(t *testing.T) {
	storage := NewInMemoryStorage()
	defer storage.Stop()

	limit := Limit{Requests: 1, Window: 50 * time.Millisecond}

	allowed, err := storage.Allow(context.Background(), "1.2.3.4", limit)
	require.NoError(t, err)
	require.True(t, allowed)

	allowed, err = storage.Allow(context.Background(), "1.2.3.4", limit)
	require.NoError(t, err)
	require.False(t, allowed)

	time.Sleep(60 * time.Millisecond)

	allowed, err = storage.Allow(context.Background(), "1.2.3.4", limit)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestTokenBucketConsume(t *testing.T) {
	bucket := newTokenBucket(3, time.Minute)

	assert.True(t, bucket.consume(1))
	assert.True(t, bucket.consume(1))
	assert.True(t, bucket.consume(1))
	assert.False(t, bucket.consume(1))
}
