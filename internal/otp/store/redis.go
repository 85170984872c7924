package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bhumeshparihar/e-matdaan-voting-system/pkg/platform/sentinel"
)

const keyPrefix = "matdaan:otp:"

// RedisStore keeps codes in Redis and lets key expiry enforce the TTL.
type RedisStore struct {
	client redis.UniversalClient
}

func NewRedis(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Save(ctx context.Context, key, hash string, ttl time.Duration) error {
	if err := s.client.Set(ctx, keyPrefix+key, hash, ttl).Err(); err != nil {
		return fmt.Errorf("save otp: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	hash, err := s.client.Get(ctx, keyPrefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", sentinel.ErrNotFound
		}
		return "", fmt.Errorf("get otp: %w", err)
	}
	return hash, nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("delete otp: %w", err)
	}
	return nil
}
