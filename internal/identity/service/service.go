// Package service enrols identities, authenticates returning voters by face
// and links identities to the voter roll.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/audit"
	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/biometric"
	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/biometric/matcher"
	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/identity/metrics"
	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/identity/models"
	ratelimitmodels "github.com/bhumeshparihar/e-matdaan-voting-system/internal/ratelimit/models"
	registrymodels "github.com/bhumeshparihar/e-matdaan-voting-system/internal/registry/models"
	id "github.com/bhumeshparihar/e-matdaan-voting-system/pkg/domain"
)

var tracer = otel.Tracer("github.com/bhumeshparihar/e-matdaan-voting-system/internal/identity/service")

// Store persists identities. CreateIfAbsent and LinkVoter enforce uniqueness
// of national id and linked voter id and report collisions as
// sentinel.ErrAlreadyUsed.
type Store interface {
	matcher.CandidateSource
	CreateIfAbsent(ctx context.Context, identity *models.Identity) error
	FindByNationalID(ctx context.Context, nationalID id.NationalID) (*models.Identity, error)
	FindByNationalIDAndPhone(ctx context.Context, nationalID id.NationalID, phone id.Phone) (*models.Identity, error)
	LinkVoter(ctx context.Context, nationalID id.NationalID, voterID id.VoterID, constituency string) (*models.Identity, error)
	ListAll(ctx context.Context) ([]models.Identity, error)
}

// VoterLookup reads the voter roll.
type VoterLookup interface {
	FindByVoterID(ctx context.Context, voterID id.VoterID) (*registrymodels.Voter, error)
}

// Lockout throttles repeated face mismatches per national id.
type Lockout interface {
	Check(ctx context.Context, nationalID id.NationalID) error
	RecordFailure(ctx context.Context, nationalID id.NationalID) (*ratelimitmodels.Lockout, error)
	Clear(ctx context.Context, nationalID id.NationalID) error
}

// TokenIssuer signs session tokens after a successful login.
type TokenIssuer interface {
	IssueSessionToken(nationalID id.NationalID, now time.Time) (string, time.Time, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service orchestrates the identity flows.
type Service struct {
	identities     Store
	voters         VoterLookup
	extractor      biometric.Extractor
	matcher        *matcher.Matcher
	archive        biometric.CaptureArchive
	lockout        Lockout
	tokens         TokenIssuer
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
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

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithCaptureArchive(archive biometric.CaptureArchive) Option {
	return func(s *Service) {
		s.archive = archive
	}
}

func WithLockout(lockout Lockout) Option {
	return func(s *Service) {
		s.lockout = lockout
	}
}

func WithTokenIssuer(tokens TokenIssuer) Option {
	return func(s *Service) {
		s.tokens = tokens
	}
}

func New(identities Store, voters VoterLookup, extractor biometric.Extractor, m *matcher.Matcher, opts ...Option) (*Service, error) {
	if identities == nil {
		return nil, errors.New("identity store is required")
	}
	if voters == nil {
		return nil, errors.New("voter lookup is required")
	}
	if extractor == nil {
		return nil, errors.New("descriptor extractor is required")
	}
	if m == nil {
		return nil, errors.New("matcher is required")
	}
	s := &Service{
		identities: identities,
		voters:     voters,
		extractor:  extractor,
		matcher:    m,
		archive:    biometric.NopArchive{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ListAll returns every enrolled identity in enrolment order.
func (s *Service) ListAll(ctx context.Context) ([]models.Identity, error) {
	return s.identities.ListAll(ctx)
}

func (s *Service) archiveCapture(ctx context.Context, kind biometric.CaptureKind, nationalID id.NationalID, img biometric.DecodedImage, now time.Time) {
	err := s.archive.Archive(ctx, biometric.Capture{
		Kind:        kind,
		Subject:     nationalID.String(),
		Image:       img.Data,
		ContentType: img.ContentType,
		UnixMilli:   now.UnixMilli(),
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to archive capture",
			"kind", kind,
			"national_id", nationalID.Masked(),
			"error", err,
		)
	}
}

func (s *Service) emit(ctx context.Context, action audit.Action, nationalID id.NationalID, detail string) {
	if s.auditPublisher == nil {
		return
	}
	err := s.auditPublisher.Emit(ctx, audit.Event{
		Action:  action,
		Subject: nationalID.Masked(),
		Detail:  detail,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event",
			"action", action,
			"error", err,
		)
	}
}
