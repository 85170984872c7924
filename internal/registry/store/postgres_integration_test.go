//go:build integration

package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/registry/store"
	"github.com/bhumeshparihar/e-matdaan-voting-system/pkg/platform/sentinel"
	"github.com/bhumeshparihar/e-matdaan-voting-system/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "voters"))
}

func (s *PostgresStoreSuite) TestSeedAndLookup() {
	ctx := context.Background()
	added, err := s.store.Seed(ctx, store.DefaultVoters())
	s.Require().NoError(err)
	s.Equal(5, added)

	added, err = s.store.Seed(ctx, store.DefaultVoters())
	s.Require().NoError(err)
	s.Zero(added)

	v, err := s.store.FindByVoterID(ctx, "GHI111222")
	s.Require().NoError(err)
	s.Equal("Sunita Verma", v.Name)
	s.Equal("1985-07-03", v.DateOfBirth)

	_, err = s.store.FindByVoterID(ctx, "MISSING00")
	s.ErrorIs(err, sentinel.ErrNotFound)

	all, err := s.store.ListAll(ctx)
	s.Require().NoError(err)
	s.Len(all, 5)
}
