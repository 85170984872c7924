package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/ballot/models"
	id "github.com/bhumeshparihar/e-matdaan-voting-system/pkg/domain"
	"github.com/bhumeshparihar/e-matdaan-voting-system/pkg/platform/sentinel"
)

// InMemory is a ballot ledger guarded by a single mutex. Recording a vote and
// incrementing its party happen inside one critical section.
type InMemory struct {
	mu      sync.Mutex
	parties map[id.PartyID]*models.Party
	votes   map[id.VoterID]models.Vote
}

func NewInMemory() *InMemory {
	return &InMemory{
		parties: make(map[id.PartyID]*models.Party),
		votes:   make(map[id.VoterID]models.Vote),
	}
}

// RecordVote stores vote and increments its party. A voter id that already
// voted yields ErrAlreadyUsed; an unknown party yields ErrNotFound. Neither
// failure changes any state.
func (s *InMemory) RecordVote(_ context.Context, vote models.Vote) (*models.Party, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, voted := s.votes[vote.VoterID]; voted {
		return nil, sentinel.ErrAlreadyUsed
	}
	party, ok := s.parties[vote.PartyID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	s.votes[vote.VoterID] = vote
	party.VoteCount++
	out := *party
	return &out, nil
}

func (s *InMemory) HasVoted(_ context.Context, voterID id.VoterID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, voted := s.votes[voterID]
	return voted, nil
}

// ListParties returns parties in seeding order.
func (s *InMemory) ListParties(_ context.Context) ([]models.Party, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Party, 0, len(s.parties))
	for _, p := range s.parties {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// ListVotes returns votes ordered by cast time.
func (s *InMemory) ListVotes(_ context.Context) ([]models.Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Vote, 0, len(s.votes))
	for _, v := range s.votes {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CastAt.Equal(out[j].CastAt) {
			return out[i].CastAt.Before(out[j].CastAt)
		}
		return out[i].VoterID < out[j].VoterID
	})
	return out, nil
}

// Seed adds parties whose name is not yet on the ballot and reports how many
// were added. Seeded parties start at zero votes.
func (s *InMemory) Seed(_ context.Context, parties []models.Party) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make(map[string]struct{}, len(s.parties))
	for _, p := range s.parties {
		names[p.Name] = struct{}{}
	}
	base := time.Now()
	added := 0
	for i, p := range parties {
		if _, exists := names[p.Name]; exists {
			continue
		}
		if p.ID.IsNil() {
			p.ID = id.PartyID(uuid.New())
		}
		p.VoteCount = 0
		p.CreatedAt = base.Add(time.Duration(i) * time.Microsecond)
		party := p
		s.parties[p.ID] = &party
		names[p.Name] = struct{}{}
		added++
	}
	return added, nil
}
