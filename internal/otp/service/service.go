// Package service issues and verifies demo one-time codes bound to a national
// id and phone pair. Codes are never delivered over SMS; the demo code is
// returned to the caller.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/audit"
	id "github.com/bhumeshparihar/e-matdaan-voting-system/pkg/domain"
	dErrors "github.com/bhumeshparihar/e-matdaan-voting-system/pkg/domain-errors"
	"github.com/bhumeshparihar/e-matdaan-voting-system/pkg/platform/sentinel"
	"github.com/bhumeshparihar/e-matdaan-voting-system/pkg/requestcontext"
)

// Store keeps code hashes with an expiry. Get reports sentinel.ErrNotFound
// for missing or expired codes.
type Store interface {
	Save(ctx context.Context, key, hash string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Config controls the demo code and how long it stays valid.
type Config struct {
	DemoCode string
	TTL      time.Duration
}

type Service struct {
	store          Store
	config         Config
	hashCost       int
	auditPublisher AuditPublisher
	logger         *slog.Logger
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

// WithHashCost overrides the bcrypt cost.
func WithHashCost(cost int) Option {
	return func(s *Service) {
		s.hashCost = cost
	}
}

func New(store Store, cfg Config, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("otp store is required")
	}
	if cfg.DemoCode == "" {
		return nil, errors.New("otp demo code is required")
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("otp ttl must be positive")
	}
	s := &Service{store: store, config: cfg, hashCost: bcrypt.DefaultCost, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issued is a freshly stored code.
type Issued struct {
	Code      string
	ExpiresAt time.Time
}

func key(nationalID id.NationalID, phone id.Phone) string {
	return nationalID.String() + "::" + phone.String()
}

// Send stores a new code for the pair, replacing any earlier one.
func (s *Service) Send(ctx context.Context, nationalID id.NationalID, phone id.Phone) (*Issued, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(s.config.DemoCode), s.hashCost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash otp")
	}
	if err := s.store.Save(ctx, key(nationalID, phone), string(hash), s.config.TTL); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store otp")
	}
	s.logger.InfoContext(ctx, "otp issued",
		"national_id", nationalID.Masked(),
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emit(ctx, audit.ActionOTPIssued, nationalID)
	return &Issued{Code: s.config.DemoCode, ExpiresAt: requestcontext.Now(ctx).Add(s.config.TTL)}, nil
}

// Verify checks code against the stored hash and consumes it on success.
// Missing, expired and wrong codes are indistinguishable to the caller.
func (s *Service) Verify(ctx context.Context, nationalID id.NationalID, phone id.Phone, code string) error {
	invalid := dErrors.New(dErrors.CodeBadRequest, "invalid or expired otp")
	k := key(nationalID, phone)

	hash, err := s.store.Get(ctx, k)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return invalid
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load otp")
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) != nil {
		s.logger.WarnContext(ctx, "otp mismatch",
			"national_id", nationalID.Masked(),
			"request_id", requestcontext.RequestID(ctx),
		)
		return invalid
	}
	if err := s.store.Delete(ctx, k); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to consume otp")
	}
	s.emit(ctx, audit.ActionOTPVerified, nationalID)
	return nil
}

func (s *Service) emit(ctx context.Context, action audit.Action, nationalID id.NationalID) {
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, audit.Event{Action: action, Subject: nationalID.Masked()}); err != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event", "action", action, "error", err)
	}
}
