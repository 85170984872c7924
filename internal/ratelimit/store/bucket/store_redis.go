package bucket

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/ratelimit/models"
	"github.com/bhumeshparihar/e-matdaan-voting-system/pkg/requestcontext"
)

const keyPrefix = "matdaan:ratelimit:"

// slidingWindowScript trims, counts and conditionally adds in one round trip
// so concurrent requests from many replicas see a single counter.
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
local allowed = 0
if count < limit then
  redis.call('ZADD', key, now, ARGV[4])
  count = count + 1
  allowed = 1
end
redis.call('PEXPIRE', key, window)
local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
local first = now
if oldest[2] then first = tonumber(oldest[2]) end
return {allowed, count, first}
`)

// RedisBucketStore shares sliding windows across server replicas. Each
// window is a sorted set of request timestamps in milliseconds.
type RedisBucketStore struct {
	client redis.UniversalClient
}

func NewRedisBucketStore(client redis.UniversalClient) *RedisBucketStore {
	return &RedisBucketStore{client: client}
}

func (s *RedisBucketStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error) {
	now := requestcontext.Now(ctx)
	nowMs := now.UnixMilli()

	raw, err := slidingWindowScript.Run(ctx, s.client, []string{keyPrefix + key},
		nowMs, window.Milliseconds(), limit, fmt.Sprintf("%d-%s", nowMs, uuid.NewString()),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("rate limit script: %w", err)
	}
	if len(raw) != 3 {
		return nil, fmt.Errorf("rate limit script: unexpected reply length %d", len(raw))
	}

	count := int(raw[1])
	resetAt := time.UnixMilli(raw[2]).Add(window)
	if raw[0] == 1 {
		return &models.RateLimitResult{
			Allowed:   true,
			Limit:     limit,
			Remaining: limit - count,
			ResetAt:   resetAt,
		}, nil
	}
	return &models.RateLimitResult{
		Allowed:    false,
		Limit:      limit,
		ResetAt:    resetAt,
		RetryAfter: retryAfter(now, resetAt),
	}, nil
}

func (s *RedisBucketStore) Reset(ctx context.Context, key string) error {
	return s.client.Del(ctx, keyPrefix+key).Err()
}
