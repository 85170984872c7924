package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/audit"
	auditstore "github.com/bhumeshparihar/e-matdaan-voting-system/internal/audit/store"
	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/ballot/models"
	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/ballot/service"
	ballotstore "github.com/bhumeshparihar/e-matdaan-voting-system/internal/ballot/store"
	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/biometric"
	identitymodels "github.com/bhumeshparihar/e-matdaan-voting-system/internal/identity/models"
	identitystore "github.com/bhumeshparihar/e-matdaan-voting-system/internal/identity/store"
	id "github.com/bhumeshparihar/e-matdaan-voting-system/pkg/domain"
	dErrors "github.com/bhumeshparihar/e-matdaan-voting-system/pkg/domain-errors"
)

type CastVoteSuite struct {
	suite.Suite
	ctx        context.Context
	ledger     *ballotstore.InMemory
	identities *identitystore.InMemory
	audits     *auditstore.InMemory
	svc        *service.Service
	parties    []models.Party
}

func TestCastVoteSuite(t *testing.T) {
	suite.Run(t, new(CastVoteSuite))
}

func (s *CastVoteSuite) SetupTest() {
	s.ctx = context.Background()
	s.ledger = ballotstore.NewInMemory()
	s.identities = identitystore.NewInMemory()
	s.audits = auditstore.NewInMemory()

	_, err := s.ledger.Seed(s.ctx, ballotstore.DefaultParties())
	s.Require().NoError(err)
	s.parties, err = s.ledger.ListParties(s.ctx)
	s.Require().NoError(err)

	s.Require().NoError(s.identities.CreateIfAbsent(s.ctx, &identitymodels.Identity{
		NationalID: "123412341234",
		Name:       "Amit Kumar",
		Phone:      "9876543210",
		Descriptor: biometric.Descriptor{0.1, 0.2},
		CreatedAt:  time.Now(),
	}))
	_, err = s.identities.LinkVoter(s.ctx, "123412341234", "ABC123456", "North Delhi")
	s.Require().NoError(err)

	s.svc, err = service.New(s.ledger, s.identities, service.WithAuditPublisher(audit.NewPublisher(s.audits)))
	s.Require().NoError(err)
}

func (s *CastVoteSuite) cast(voterID string, party id.PartyID) (*models.Party, error) {
	return s.svc.CastVote(s.ctx, service.CastVoteCommand{
		NationalID: "123412341234",
		VoterID:    id.VoterID(voterID),
		PartyID:    party,
	})
}

func (s *CastVoteSuite) tally(index int) int64 {
	parties, err := s.svc.ListParties(s.ctx)
	s.Require().NoError(err)
	return parties[index].VoteCount
}

func (s *CastVoteSuite) TestSuccessfulVoteIsReflectedOnce() {
	party, err := s.cast("ABC123456", s.parties[2].ID)
	s.Require().NoError(err)
	s.Equal("Aam Aadmi Party", party.Name)
	s.Equal(int64(1), party.VoteCount)

	s.Equal(int64(1), s.tally(2))
	s.Equal(int64(1), s.tally(2), "listing twice does not change the count")

	events, err := s.audits.ListAll(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(audit.ActionVoteCast, events[0].Action)
	s.Empty(events[0].Detail)
}

func (s *CastVoteSuite) TestVoterIDMustBeTheLinkedOne() {
	_, err := s.cast("XYZ789012", s.parties[0].ID)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	votes, err := s.ledger.ListVotes(s.ctx)
	s.Require().NoError(err)
	s.Empty(votes)
	for i := range s.parties {
		s.Zero(s.tally(i))
	}
}

func (s *CastVoteSuite) TestUnlinkedIdentityCannotVote() {
	s.Require().NoError(s.identities.CreateIfAbsent(s.ctx, &identitymodels.Identity{
		NationalID: "567856785678",
		Name:       "Priya Sharma",
		Phone:      "9123456780",
		Descriptor: biometric.Descriptor{0.3, 0.4},
		CreatedAt:  time.Now(),
	}))

	for _, voterID := range []id.VoterID{"", "ABC123456"} {
		_, err := s.svc.CastVote(s.ctx, service.CastVoteCommand{
			NationalID: "567856785678", VoterID: voterID, PartyID: s.parties[0].ID,
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation), "voter id %q", voterID)
	}

	votes, err := s.ledger.ListVotes(s.ctx)
	s.Require().NoError(err)
	s.Empty(votes)
	for i := range s.parties {
		s.Zero(s.tally(i))
	}
}

func (s *CastVoteSuite) TestUnknownIdentity() {
	_, err := s.svc.CastVote(s.ctx, service.CastVoteCommand{
		NationalID: "000011112222", VoterID: "ABC123456", PartyID: s.parties[0].ID,
	})
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	s.Equal("user not found", dErrors.Message(err))
}

func (s *CastVoteSuite) TestAlreadyVotedThenUnknownParty() {
	_, err := s.cast("ABC123456", s.parties[0].ID)
	s.Require().NoError(err)

	_, err = s.cast("ABC123456", id.PartyID(uuid.New()))
	s.True(dErrors.HasCode(err, dErrors.CodeConflict), "already voted is reported before party lookup")
	s.Equal("already voted", dErrors.Message(err))
}

func (s *CastVoteSuite) TestUnknownParty() {
	_, err := s.cast("ABC123456", id.PartyID(uuid.New()))
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	s.Equal("party not found", dErrors.Message(err))
}

func (s *CastVoteSuite) TestConcurrentVotesRecordExactlyOne() {
	const n = 40
	var wg sync.WaitGroup
	var mu sync.Mutex
	successes, conflicts := 0, 0
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.cast("ABC123456", s.parties[1].ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case dErrors.HasCode(err, dErrors.CodeConflict):
				conflicts++
			}
		}()
	}
	wg.Wait()

	s.Equal(1, successes)
	s.Equal(n-1, conflicts)
	s.Equal(int64(1), s.tally(1))
}
