package store

import (
	"context"
	"sort"
	"sync"

	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/registry/models"
	id "github.com/bhumeshparihar/e-matdaan-voting-system/pkg/domain"
	"github.com/bhumeshparihar/e-matdaan-voting-system/pkg/platform/sentinel"
)

// InMemory is a voter roll held in a map.
type InMemory struct {
	mu     sync.RWMutex
	voters map[id.VoterID]models.Voter
}

func NewInMemory() *InMemory {
	return &InMemory{voters: make(map[id.VoterID]models.Voter)}
}

func (s *InMemory) FindByVoterID(_ context.Context, voterID id.VoterID) (*models.Voter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.voters[voterID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &v, nil
}

// ListAll returns voters ordered by voter id.
func (s *InMemory) ListAll(_ context.Context) ([]models.Voter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Voter, 0, len(s.voters))
	for _, v := range s.voters {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VoterID < out[j].VoterID })
	return out, nil
}

// Seed inserts voters that are not present yet and reports how many were added.
func (s *InMemory) Seed(_ context.Context, voters []models.Voter) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	added := 0
	for _, v := range voters {
		if _, exists := s.voters[v.VoterID]; exists {
			continue
		}
		s.voters[v.VoterID] = v
		added++
	}
	return added, nil
}
