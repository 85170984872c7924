package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/ratelimit/models"
)

// fallbackStore answers from the primary store while it is healthy and from
// a process-local store while the circuit is open. The primary is still
// probed on every call so the circuit can close again.
type fallbackStore struct {
	primary  BucketStore
	fallback BucketStore
	breaker  *CircuitBreaker
	logger   *slog.Logger
	onError  func()
}

func newFallbackStore(primary, fallback BucketStore, logger *slog.Logger, onError func()) *fallbackStore {
	return &fallbackStore{
		primary:  primary,
		fallback: fallback,
		breaker:  newCircuitBreaker(5, 3),
		logger:   logger,
		onError:  onError,
	}
}

// allow returns the result and whether it came from the fallback.
func (f *fallbackStore) allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, bool, error) {
	result, err := f.primary.Allow(ctx, key, limit, window)
	if err != nil {
		f.onError()
		if f.breaker.RecordFailure() {
			res, ferr := f.fallback.Allow(ctx, key, limit, window)
			return res, true, ferr
		}
		return nil, false, err
	}
	wasOpen := f.breaker.IsOpen()
	if f.breaker.RecordSuccess() && wasOpen {
		f.logger.InfoContext(ctx, "rate limit store recovered")
	}
	if f.breaker.IsOpen() {
		res, ferr := f.fallback.Allow(ctx, key, limit, window)
		return res, true, ferr
	}
	return result, false, nil
}
