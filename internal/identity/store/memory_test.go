package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/biometric"
	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/identity/models"
	id "github.com/bhumeshparihar/e-matdaan-voting-system/pkg/domain"
	"github.com/bhumeshparihar/e-matdaan-voting-system/pkg/platform/sentinel"
)

type InMemoryIdentityStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
	t0    time.Time
}

func TestInMemoryIdentityStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryIdentityStoreSuite))
}

func (s *InMemoryIdentityStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
	s.t0 = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
}

func (s *InMemoryIdentityStoreSuite) identity(nid string, offset time.Duration) *models.Identity {
	return &models.Identity{
		NationalID: id.NationalID(nid),
		Name:       "Voter " + nid,
		Phone:      "9876543210",
		Descriptor: biometric.Descriptor{0.1, 0.2, 0.3},
		CreatedAt:  s.t0.Add(offset),
	}
}

func (s *InMemoryIdentityStoreSuite) TestCreateIfAbsent() {
	s.Run("duplicate national id keeps the first identity", func() {
		s.Require().NoError(s.store.CreateIfAbsent(s.ctx, s.identity("111122223333", 0)))

		dup := s.identity("111122223333", time.Minute)
		dup.Name = "Impostor"
		err := s.store.CreateIfAbsent(s.ctx, dup)
		s.ErrorIs(err, sentinel.ErrAlreadyUsed)

		stored, err := s.store.FindByNationalID(s.ctx, "111122223333")
		s.Require().NoError(err)
		s.Equal("Voter 111122223333", stored.Name)
	})

	s.Run("concurrent creates admit exactly one", func() {
		var wg sync.WaitGroup
		var mu sync.Mutex
		successes := 0
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := s.store.CreateIfAbsent(s.ctx, s.identity("RACE1234", 0)); err == nil {
					mu.Lock()
					successes++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		s.Equal(1, successes)
	})

	s.Run("stored descriptor is isolated from caller mutation", func() {
		identity := s.identity("444455556666", 0)
		s.Require().NoError(s.store.CreateIfAbsent(s.ctx, identity))
		identity.Descriptor[0] = 99

		stored, err := s.store.FindByNationalID(s.ctx, "444455556666")
		s.Require().NoError(err)
		s.InDelta(0.1, stored.Descriptor[0], 1e-12)
	})
}

func (s *InMemoryIdentityStoreSuite) TestFindByNationalIDAndPhone() {
	s.Require().NoError(s.store.CreateIfAbsent(s.ctx, s.identity("123412341234", 0)))

	found, err := s.store.FindByNationalIDAndPhone(s.ctx, "123412341234", "9876543210")
	s.Require().NoError(err)
	s.Equal(id.NationalID("123412341234"), found.NationalID)

	_, err = s.store.FindByNationalIDAndPhone(s.ctx, "123412341234", "9000000000")
	s.ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.store.FindByNationalIDAndPhone(s.ctx, "999999999999", "9876543210")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryIdentityStoreSuite) TestLinkVoter() {
	s.Require().NoError(s.store.CreateIfAbsent(s.ctx, s.identity("AAAA1111", 0)))
	s.Require().NoError(s.store.CreateIfAbsent(s.ctx, s.identity("BBBB2222", time.Second)))

	linked, err := s.store.LinkVoter(s.ctx, "AAAA1111", "VOTER001", "North")
	s.Require().NoError(err)
	s.Equal(id.VoterID("VOTER001"), linked.LinkedVoterID)
	s.Equal("North", linked.Constituency)

	s.Run("same link again is idempotent", func() {
		again, err := s.store.LinkVoter(s.ctx, "AAAA1111", "VOTER001", "North")
		s.Require().NoError(err)
		s.Equal(linked.LinkedVoterID, again.LinkedVoterID)
	})

	s.Run("voter held by another identity is rejected", func() {
		_, err := s.store.LinkVoter(s.ctx, "BBBB2222", "VOTER001", "North")
		s.ErrorIs(err, sentinel.ErrAlreadyUsed)
	})

	s.Run("relinking frees the previous voter id", func() {
		_, err := s.store.LinkVoter(s.ctx, "AAAA1111", "VOTER002", "South")
		s.Require().NoError(err)
		_, err = s.store.LinkVoter(s.ctx, "BBBB2222", "VOTER001", "North")
		s.NoError(err)
	})

	s.Run("unknown identity", func() {
		_, err := s.store.LinkVoter(s.ctx, "ZZZZ9999", "VOTER003", "East")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *InMemoryIdentityStoreSuite) TestCandidatesOrder() {
	s.Require().NoError(s.store.CreateIfAbsent(s.ctx, s.identity("CCCC3333", 2*time.Minute)))
	s.Require().NoError(s.store.CreateIfAbsent(s.ctx, s.identity("BBBB2222", time.Minute)))
	s.Require().NoError(s.store.CreateIfAbsent(s.ctx, s.identity("AAAA1111", time.Minute)))

	candidates, err := s.store.Candidates(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(candidates, 3)
	s.Equal(id.NationalID("AAAA1111"), candidates[0].NationalID)
	s.Equal(id.NationalID("BBBB2222"), candidates[1].NationalID)
	s.Equal(id.NationalID("CCCC3333"), candidates[2].NationalID)

	all, err := s.store.ListAll(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 3)
	s.Equal(id.NationalID("AAAA1111"), all[0].NationalID)
}
