// Package admin exposes an operator snapshot of every store. Face descriptors
// are never part of it.
package admin

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/admin/types"
	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/audit"
	ballotModels "github.com/bhumeshparihar/e-matdaan-voting-system/internal/ballot/models"
	registryModels "github.com/bhumeshparihar/e-matdaan-voting-system/internal/registry/models"
	dErrors "github.com/bhumeshparihar/e-matdaan-voting-system/pkg/domain-errors"
)

type IdentitySource interface {
	ListIdentities(ctx context.Context) ([]types.ExportedIdentity, error)
}

type VoterSource interface {
	ListAll(ctx context.Context) ([]registryModels.Voter, error)
}

type BallotSource interface {
	ListParties(ctx context.Context) ([]ballotModels.Party, error)
	ListVotes(ctx context.Context) ([]ballotModels.Vote, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	identities     IdentitySource
	voters         VoterSource
	ballot         BallotSource
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

func NewService(identities IdentitySource, voters VoterSource, ballot BallotSource, opts ...Option) (*Service, error) {
	if identities == nil || voters == nil || ballot == nil {
		return nil, errors.New("identity, voter and ballot sources are required")
	}
	s := &Service{identities: identities, voters: voters, ballot: ballot, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Snapshot is the full export. Slices are never nil so they encode as [].
type Snapshot struct {
	Users   []types.ExportedIdentity `json:"users"`
	Voters  []registryModels.Voter   `json:"voters"`
	Parties []ballotModels.Party     `json:"parties"`
	Votes   []ballotModels.Vote      `json:"votes"`
}

// Export reads the four datasets concurrently. Any failure fails the export.
func (s *Service) Export(ctx context.Context) (*Snapshot, error) {
	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		snap.Users, err = s.identities.ListIdentities(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.Voters, err = s.voters.ListAll(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.Parties, err = s.ballot.ListParties(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.Votes, err = s.ballot.ListVotes(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to export data")
	}

	if snap.Users == nil {
		snap.Users = []types.ExportedIdentity{}
	}
	if snap.Voters == nil {
		snap.Voters = []registryModels.Voter{}
	}
	if snap.Parties == nil {
		snap.Parties = []ballotModels.Party{}
	}
	if snap.Votes == nil {
		snap.Votes = []ballotModels.Vote{}
	}

	if s.auditPublisher != nil {
		if err := s.auditPublisher.Emit(ctx, audit.Event{Action: audit.ActionDataExported}); err != nil {
			s.logger.ErrorContext(ctx, "failed to emit audit event", "action", audit.ActionDataExported, "error", err)
		}
	}
	return &snap, nil
}
