// Package authlockout locks face login for a national id after repeated
// biometric mismatches.
package authlockout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/audit"
	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/ratelimit/models"
	id "github.com/bhumeshparihar/e-matdaan-voting-system/pkg/domain"
	dErrors "github.com/bhumeshparihar/e-matdaan-voting-system/pkg/domain-errors"
	"github.com/bhumeshparihar/e-matdaan-voting-system/pkg/requestcontext"
)

// Store persists per-identity failure counters.
type Store interface {
	Get(ctx context.Context, nationalID id.NationalID) (*models.Lockout, error)
	RecordFailure(ctx context.Context, nationalID id.NationalID, now, windowStart time.Time) (*models.Lockout, error)
	Lock(ctx context.Context, nationalID id.NationalID, until time.Time) error
	Clear(ctx context.Context, nationalID id.NationalID) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Config bounds face login attempts: Attempts failures within Window lock the
// identity for Duration.
type Config struct {
	Attempts int
	Window   time.Duration
	Duration time.Duration
}

func DefaultConfig() Config {
	return Config{Attempts: 5, Window: 15 * time.Minute, Duration: 15 * time.Minute}
}

type Service struct {
	store          Store
	auditPublisher AuditPublisher
	logger         *slog.Logger
	config         Config
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithConfig(cfg Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("lockout store is required")
	}
	svc := &Service{
		store:  store,
		config: DefaultConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.config.Attempts <= 0 {
		return nil, errors.New("lockout attempts must be positive")
	}
	return svc, nil
}

// Check returns CodeTooManyRequests while the identity is locked.
func (s *Service) Check(ctx context.Context, nationalID id.NationalID) error {
	record, err := s.store.Get(ctx, nationalID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to get lockout record")
	}
	now := requestcontext.Now(ctx)
	if record.IsLockedAt(now) {
		retryAfter := max(int(record.RetryAfter(now).Seconds()), 1)
		return dErrors.New(dErrors.CodeTooManyRequests,
			fmt.Sprintf("too many failed face logins, retry after %d seconds", retryAfter))
	}
	return nil
}

// RecordFailure counts a mismatch and locks the identity when the threshold
// is reached inside the window.
func (s *Service) RecordFailure(ctx context.Context, nationalID id.NationalID) (*models.Lockout, error) {
	now := requestcontext.Now(ctx)
	current, err := s.store.RecordFailure(ctx, nationalID, now, now.Add(-s.config.Window))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record face login failure")
	}

	if current.ShouldLock(s.config.Attempts, now) {
		until := now.Add(s.config.Duration)
		if err := s.store.Lock(ctx, nationalID, until); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to apply lockout")
		}
		current.LockedUntil = &until
		current.FailureCount = 0
		s.logger.WarnContext(ctx, "face login locked",
			"national_id", nationalID.Masked(),
			"locked_until", until,
			"request_id", requestcontext.RequestID(ctx),
		)
		s.emit(ctx, nationalID, fmt.Sprintf("locked until %s", until.UTC().Format(time.RFC3339)))
	}
	return current, nil
}

// Clear resets the counter after a successful login.
func (s *Service) Clear(ctx context.Context, nationalID id.NationalID) error {
	if err := s.store.Clear(ctx, nationalID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to clear face login failures")
	}
	return nil
}

func (s *Service) emit(ctx context.Context, nationalID id.NationalID, detail string) {
	if s.auditPublisher == nil {
		return
	}
	err := s.auditPublisher.Emit(ctx, audit.Event{
		Action:  audit.ActionFaceLoginLocked,
		Subject: nationalID.Masked(),
		Detail:  detail,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event", "action", audit.ActionFaceLoginLocked, "error", err)
	}
}
