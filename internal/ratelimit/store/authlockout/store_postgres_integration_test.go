//go:build integration

package authlockout_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/ratelimit/store/authlockout"
	"github.com/bhumeshparihar/e-matdaan-voting-system/pkg/testutil/containers"
)

type PostgresLockoutStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *authlockout.PostgresStore
}

func TestPostgresLockoutStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresLockoutStoreSuite))
}

func (s *PostgresLockoutStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = authlockout.NewPostgres(s.postgres.DB)
}

func (s *PostgresLockoutStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "face_login_lockouts"))
}

// TestConcurrentFailuresAreNotLost verifies the upsert increment is atomic.
func (s *PostgresLockoutStoreSuite) TestConcurrentFailuresAreNotLost() {
	ctx := context.Background()
	now := time.Now().UTC()
	const goroutines = 30

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.RecordFailure(ctx, "RACE0001", now, now.Add(-15*time.Minute))
			s.NoError(err)
		}()
	}
	wg.Wait()

	record, err := s.store.Get(ctx, "RACE0001")
	s.Require().NoError(err)
	s.Equal(goroutines, record.FailureCount)
}

func (s *PostgresLockoutStoreSuite) TestWindowRestartLockAndClear() {
	ctx := context.Background()
	t0 := time.Now().UTC().Truncate(time.Microsecond)

	_, err := s.store.RecordFailure(ctx, "WIN00001", t0, t0.Add(-15*time.Minute))
	s.Require().NoError(err)
	later := t0.Add(time.Hour)
	record, err := s.store.RecordFailure(ctx, "WIN00001", later, later.Add(-15*time.Minute))
	s.Require().NoError(err)
	s.Equal(1, record.FailureCount)

	until := later.Add(15 * time.Minute)
	s.Require().NoError(s.store.Lock(ctx, "WIN00001", until))
	record, err = s.store.Get(ctx, "WIN00001")
	s.Require().NoError(err)
	s.True(record.IsLockedAt(later))
	s.Zero(record.FailureCount)

	s.Require().NoError(s.store.Clear(ctx, "WIN00001"))
	record, err = s.store.Get(ctx, "WIN00001")
	s.NoError(err)
	s.Nil(record)
}
