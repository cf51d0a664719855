package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStorage implements Storage on Redis so the limit holds across server
// replicas. Bucket state lives in a Redis hash and the refill/consume step
// runs as a Lua script, keeping it atomic.
type RedisStorage struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisStorage creates a Redis-backed rate limiter storage. keyPrefix is
// optional and defaults to "rate_limit:" when empty.
func NewRedisStorage(client *redis.Client, keyPrefix string) *RedisStorage {
	if keyPrefix == "" {
		keyPrefix = "rate_limit:"
	}

	return &RedisStorage{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// The script atomically:
// 1. Gets or initializes bucket state
// 2. Refills tokens based on elapsed time
// 3. Consumes a token if available
// 4. Updates bucket state and expiration
const consumeScript = `
	local key = KEYS[1]
	local capacity = tonumber(ARGV[1])
	local refillRate = tonumber(ARGV[2])
	local now = tonumber(ARGV[3])
	local tokensToConsume = tonumber(ARGV[4])
	local windowSeconds = tonumber(ARGV[5])

	local bucketData = redis.call('HMGET', key, 'tokens', 'lastRefill')
	local tokensStr = bucketData[1]
	local lastRefillStr = bucketData[2]

	local tokens
	local lastRefill
	if tokensStr == false or tokensStr == nil then
		tokens = capacity
		lastRefill = now
	else
		tokens = tonumber(tokensStr)
		if tokens == nil then
			tokens = capacity
		end
		lastRefill = tonumber(lastRefillStr)
		if lastRefill == nil then
			lastRefill = now
		end
	end

	-- nanoseconds to seconds
	local elapsed = (now - lastRefill) / 1000000000
	if elapsed > 0 then
		tokens = math.min(capacity, tokens + elapsed * refillRate)
	end

	if tokens >= tokensToConsume then
		tokens = tokens - tokensToConsume
		redis.call('HSET', key, 'tokens', tostring(tokens), 'lastRefill', tostring(now))
		redis.call('EXPIRE', key, math.ceil(windowSeconds * 1.1))
		return 1
	else
		redis.call('HSET', key, 'tokens', tostring(tokens), 'lastRefill', tostring(now))
		redis.call('EXPIRE', key, math.ceil(windowSeconds * 1.1))
		return 0
	end
`

// Allow checks if a request is allowed and consumes a token if available.
func (r *RedisStorage) Allow(ctx context.Context, key string, limit Limit) (bool, error) {
	capacity := float64(limit.Requests)
	refillRate := capacity / limit.Window.Seconds()

	result, err := r.client.Eval(ctx, consumeScript, []string{r.keyPrefix + key},
		capacity,
		refillRate,
		time.Now().UnixNano(),
		1.0,
		limit.Window.Seconds(),
	).Result()
	if err != nil {
		return false, fmt.Errorf("redis rate limit check failed: %w", err)
	}

	return result.(int64) == 1, nil
}

// Ping checks if the Redis connection is healthy.
func (r *RedisStorage) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis client connection.
func (r *RedisStorage) Close() error {
	return r.client.Close()
}
