package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/audit"
	auditstore "github.com/bhumeshparihar/e-matdaan-voting-system/internal/audit/store"
	ballotmodels "github.com/bhumeshparihar/e-matdaan-voting-system/internal/ballot/models"
	ballotstore "github.com/bhumeshparihar/e-matdaan-voting-system/internal/ballot/store"
	identityservice "github.com/bhumeshparihar/e-matdaan-voting-system/internal/identity/service"
	identitystore "github.com/bhumeshparihar/e-matdaan-voting-system/internal/identity/store"
	otpservice "github.com/bhumeshparihar/e-matdaan-voting-system/internal/otp/service"
	otpstore "github.com/bhumeshparihar/e-matdaan-voting-system/internal/otp/store"
	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/platform/config"
	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/platform/postgres"
	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/platform/redis"
	lockoutservice "github.com/bhumeshparihar/e-matdaan-voting-system/internal/ratelimit/service/authlockout"
	lockoutstore "github.com/bhumeshparihar/e-matdaan-voting-system/internal/ratelimit/store/authlockout"
	registrymodels "github.com/bhumeshparihar/e-matdaan-voting-system/internal/registry/models"
	registrystore "github.com/bhumeshparihar/e-matdaan-voting-system/internal/registry/store"
	id "github.com/bhumeshparihar/e-matdaan-voting-system/pkg/domain"
)

type voterStore interface {
	FindByVoterID(ctx context.Context, voterID id.VoterID) (*registrymodels.Voter, error)
	ListAll(ctx context.Context) ([]registrymodels.Voter, error)
	Seed(ctx context.Context, voters []registrymodels.Voter) (int, error)
}

type ledgerStore interface {
	RecordVote(ctx context.Context, vote ballotmodels.Vote) (*ballotmodels.Party, error)
	ListParties(ctx context.Context) ([]ballotmodels.Party, error)
	ListVotes(ctx context.Context) ([]ballotmodels.Vote, error)
	Seed(ctx context.Context, parties []ballotmodels.Party) (int, error)
}

// stores groups every persistence dependency for the selected driver.
type stores struct {
	identities identityservice.Store
	voters     voterStore
	ledger     ledgerStore
	lockouts   lockoutservice.Store
	audit      audit.Store
	otp        otpservice.Store
	redis      *redis.Client

	closers []func() error
}

func (s *stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		_ = s.closers[i]()
	}
}

func buildStores(ctx context.Context, cfg config.Server, log *slog.Logger) (*stores, error) {
	s := &stores{}
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		db, err := openPostgres(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, db.Close)
		s.identities = identitystore.NewPostgres(db)
		s.voters = registrystore.NewPostgres(db)
		s.ledger = ballotstore.NewPostgres(db)
		s.lockouts = lockoutstore.NewPostgres(db)
		s.audit = auditstore.NewPostgres(db)
		log.Info("using postgres stores")
	default:
		s.identities = identitystore.NewInMemory()
		s.voters = registrystore.NewInMemory()
		s.ledger = ballotstore.NewInMemory()
		s.lockouts = lockoutstore.NewInMemory()
		s.audit = auditstore.NewInMemory()
		log.Info("using in-memory stores")
	}

	rc, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		s.Close()
		return nil, err
	}
	if rc != nil {
		s.closers = append(s.closers, rc.Close)
		s.redis = rc
		s.otp = otpstore.NewRedis(rc.Client)
		log.Info("using redis otp store")
	} else {
		s.otp = otpstore.NewInMemory()
	}
	return s, nil
}

func openPostgres(ctx context.Context, cfg config.PostgresConfig) (*sql.DB, error) {
	db, err := postgres.Open(ctx, postgres.Config{
		URL:             cfg.URL,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	})
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// seed loads the demo roll and ballot. Existing rows are left alone.
func seed(ctx context.Context, s *stores, log *slog.Logger) error {
	voters, err := s.voters.Seed(ctx, registrystore.DefaultVoters())
	if err != nil {
		return fmt.Errorf("seed voters: %w", err)
	}
	parties, err := s.ledger.Seed(ctx, ballotstore.DefaultParties())
	if err != nil {
		return fmt.Errorf("seed parties: %w", err)
	}
	log.Info("seed data loaded", "voters_added", voters, "parties_added", parties)
	return nil
}
