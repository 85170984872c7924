// Package middleware applies per-IP request budgets to API routes.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/ratelimit/metrics"
	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/ratelimit/models"
	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/ratelimit/store/bucket"
	"github.com/bhumeshparihar/e-matdaan-voting-system/pkg/platform/httputil"
	"github.com/bhumeshparihar/e-matdaan-voting-system/pkg/requestcontext"
)

// BucketStore counts requests in a sliding window.
type BucketStore interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error)
}

// Classifier picks the budget that applies to a request.
type Classifier func(r *http.Request) models.EndpointClass

type Middleware struct {
	store    *fallbackStore
	policies map[models.EndpointClass]models.Policy
	logger   *slog.Logger
	metrics  *metrics.Metrics
	disabled bool
}

type Option func(*Middleware)

// WithDisabled disables rate limiting entirely (for testing/demo mode).
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Middleware) {
		m.metrics = mt
	}
}

// New builds the middleware. Classes without a policy are not limited.
func New(store BucketStore, policies map[models.EndpointClass]models.Policy, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{
		policies: policies,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.store = newFallbackStore(store, bucket.NewInMemoryBucketStore(), logger, m.metrics.IncrementStoreErrors)
	if m.disabled {
		logger.Info("rate limiting disabled")
	}
	return m
}

// RateLimit limits each client IP per endpoint class. Store errors fail open.
func (m *Middleware) RateLimit(classify Classifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m.disabled {
				next.ServeHTTP(w, r)
				return
			}
			class := classify(r)
			policy, ok := m.policies[class]
			if !ok || policy.Requests <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			ip := requestcontext.ClientIP(ctx)
			result, degraded, err := m.store.allow(ctx, models.NewIPKey(ip, class), policy.Requests, policy.Window)
			if err != nil {
				m.logger.ErrorContext(ctx, "failed to check rate limit",
					"error", err,
					"class", class,
					"request_id", requestcontext.RequestID(ctx),
				)
				next.ServeHTTP(w, r)
				return
			}
			if degraded {
				m.metrics.IncrementDegraded()
				w.Header().Set("X-RateLimit-Status", "degraded")
			}

			addRateLimitHeaders(w, result)
			if !result.Allowed {
				m.metrics.IncrementRejected(string(class))
				m.logger.WarnContext(ctx, "rate limit exceeded",
					"class", class,
					"request_id", requestcontext.RequestID(ctx),
				)
				writeRateLimitExceeded(w, result)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// PathClassifier maps exact request paths to classes.
func PathClassifier(paths map[string]models.EndpointClass, fallback models.EndpointClass) Classifier {
	return func(r *http.Request) models.EndpointClass {
		if class, ok := paths[r.URL.Path]; ok {
			return class
		}
		return fallback
	}
}

func addRateLimitHeaders(w http.ResponseWriter, result *models.RateLimitResult) {
	if result == nil {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

func writeRateLimitExceeded(w http.ResponseWriter, result *models.RateLimitResult) {
	w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
	httputil.WriteJSON(w, http.StatusTooManyRequests, &models.RateLimitExceededResponse{
		Error:      "too_many_requests",
		Message:    "too many requests from this address, retry later",
		RetryAfter: result.RetryAfter,
	})
}
