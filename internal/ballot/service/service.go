// Package service casts votes against the ballot ledger.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/audit"
	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/ballot/metrics"
	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/ballot/models"
	identitymodels "github.com/bhumeshparihar/e-matdaan-voting-system/internal/identity/models"
	id "github.com/bhumeshparihar/e-matdaan-voting-system/pkg/domain"
	dErrors "github.com/bhumeshparihar/e-matdaan-voting-system/pkg/domain-errors"
	"github.com/bhumeshparihar/e-matdaan-voting-system/pkg/platform/sentinel"
	"github.com/bhumeshparihar/e-matdaan-voting-system/pkg/requestcontext"
)

var tracer = otel.Tracer("github.com/bhumeshparihar/e-matdaan-voting-system/internal/ballot/service")

// Ledger records votes. RecordVote must insert the vote and increment the
// party as one atomic unit, returning sentinel.ErrAlreadyUsed for a voter who
// already voted (checked first) and sentinel.ErrNotFound for an unknown party.
type Ledger interface {
	RecordVote(ctx context.Context, vote models.Vote) (*models.Party, error)
	ListParties(ctx context.Context) ([]models.Party, error)
}

// IdentityLookup resolves the caller's identity.
type IdentityLookup interface {
	FindByNationalID(ctx context.Context, nationalID id.NationalID) (*identitymodels.Identity, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	ledger         Ledger
	identities     IdentityLookup
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

func New(ledger Ledger, identities IdentityLookup, opts ...Option) (*Service, error) {
	if ledger == nil {
		return nil, errors.New("ballot ledger is required")
	}
	if identities == nil {
		return nil, errors.New("identity lookup is required")
	}
	s := &Service{ledger: ledger, identities: identities, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// CastVoteCommand carries validated vote input.
type CastVoteCommand struct {
	NationalID id.NationalID
	VoterID    id.VoterID
	PartyID    id.PartyID
}

// CastVote records one vote for the voter linked to the caller. Checks run in
// order: identity exists, voter id is the one linked to it, voter has not
// voted, party exists. The last two are decided atomically by the ledger.
func (s *Service) CastVote(ctx context.Context, cmd CastVoteCommand) (party *models.Party, err error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "ballot.CastVote")
	span.SetAttributes(attribute.String("party.id", cmd.PartyID.String()))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
		}
		span.End()
		s.metrics.ObserveCastVote(start)
	}()

	identity, err := s.identities.FindByNationalID(ctx, cmd.NationalID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.metrics.IncrementVote(metrics.OutcomeRejected)
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up identity")
	}
	if !identity.IsLinked() || identity.LinkedVoterID != cmd.VoterID {
		s.metrics.IncrementVote(metrics.OutcomeRejected)
		return nil, dErrors.New(dErrors.CodeValidation, "voterID not linked to this user")
	}

	party, err = s.ledger.RecordVote(ctx, models.Vote{
		ID:      id.VoteID(uuid.New()),
		VoterID: cmd.VoterID,
		PartyID: cmd.PartyID,
		CastAt:  requestcontext.Now(ctx),
	})
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrAlreadyUsed):
			s.metrics.IncrementVote(metrics.OutcomeAlreadyVoted)
			return nil, dErrors.New(dErrors.CodeConflict, "already voted")
		case errors.Is(err, sentinel.ErrNotFound):
			s.metrics.IncrementVote(metrics.OutcomeRejected)
			return nil, dErrors.New(dErrors.CodeNotFound, "party not found")
		case dErrors.HasCode(err, dErrors.CodeTimeout):
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record vote")
	}

	s.metrics.IncrementVote(metrics.OutcomeRecorded)
	s.logger.InfoContext(ctx, "vote recorded",
		"national_id", cmd.NationalID.Masked(),
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emit(ctx, cmd.NationalID)
	return party, nil
}

// ListParties returns the ballot with current tallies.
func (s *Service) ListParties(ctx context.Context) ([]models.Party, error) {
	parties, err := s.ledger.ListParties(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list parties")
	}
	return parties, nil
}

// emit records that the caller voted. The chosen party stays out of the trail.
func (s *Service) emit(ctx context.Context, nationalID id.NationalID) {
	if s.auditPublisher == nil {
		return
	}
	err := s.auditPublisher.Emit(ctx, audit.Event{
		Action:  audit.ActionVoteCast,
		Subject: nationalID.Masked(),
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event",
			"action", audit.ActionVoteCast,
			"error", err,
		)
	}
}
