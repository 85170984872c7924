package store

import (
	"context"
	"sort"
	"sync"

	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/biometric/matcher"
	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/identity/models"
	id "github.com/bhumeshparihar/e-matdaan-voting-system/pkg/domain"
	"github.com/bhumeshparihar/e-matdaan-voting-system/pkg/platform/sentinel"
)

// InMemory keeps identities in maps guarded by one lock. The byVoter index
// enforces one identity per linked voter id.
type InMemory struct {
	mu         sync.RWMutex
	identities map[id.NationalID]*models.Identity
	byVoter    map[id.VoterID]id.NationalID
}

func NewInMemory() *InMemory {
	return &InMemory{
		identities: make(map[id.NationalID]*models.Identity),
		byVoter:    make(map[id.VoterID]id.NationalID),
	}
}

// CreateIfAbsent stores identity unless its national id is taken.
func (s *InMemory) CreateIfAbsent(_ context.Context, identity *models.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.identities[identity.NationalID]; ok {
		return sentinel.ErrAlreadyUsed
	}
	s.identities[identity.NationalID] = identity.Clone()
	if identity.IsLinked() {
		s.byVoter[identity.LinkedVoterID] = identity.NationalID
	}
	return nil
}

func (s *InMemory) FindByNationalID(_ context.Context, nationalID id.NationalID) (*models.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	identity, ok := s.identities[nationalID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return identity.Clone(), nil
}

// FindByNationalIDAndPhone requires both values to match the enrolment.
func (s *InMemory) FindByNationalIDAndPhone(_ context.Context, nationalID id.NationalID, phone id.Phone) (*models.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	identity, ok := s.identities[nationalID]
	if !ok || identity.Phone != phone {
		return nil, sentinel.ErrNotFound
	}
	return identity.Clone(), nil
}

// LinkVoter attaches voterID and constituency. It fails with ErrAlreadyUsed
// when another identity already holds voterID; the check and the write share
// one critical section.
func (s *InMemory) LinkVoter(_ context.Context, nationalID id.NationalID, voterID id.VoterID, constituency string) (*models.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	identity, ok := s.identities[nationalID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if holder, taken := s.byVoter[voterID]; taken && holder != nationalID {
		return nil, sentinel.ErrAlreadyUsed
	}
	if identity.IsLinked() && identity.LinkedVoterID != voterID {
		delete(s.byVoter, identity.LinkedVoterID)
	}
	identity.LinkedVoterID = voterID
	identity.Constituency = constituency
	s.byVoter[voterID] = nationalID
	return identity.Clone(), nil
}

// Candidates returns every enrolled descriptor ordered by enrolment time, then
// national id.
func (s *InMemory) Candidates(_ context.Context) ([]matcher.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ordered := s.ordered()
	out := make([]matcher.Candidate, 0, len(ordered))
	for _, identity := range ordered {
		out = append(out, matcher.Candidate{NationalID: identity.NationalID, Descriptor: identity.Descriptor.Clone()})
	}
	return out, nil
}

// ListAll returns every identity in candidate order.
func (s *InMemory) ListAll(_ context.Context) ([]models.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ordered := s.ordered()
	out := make([]models.Identity, 0, len(ordered))
	for _, identity := range ordered {
		out = append(out, *identity.Clone())
	}
	return out, nil
}

func (s *InMemory) ordered() []*models.Identity {
	out := make([]*models.Identity, 0, len(s.identities))
	for _, identity := range s.identities {
		out = append(out, identity)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].NationalID < out[j].NationalID
	})
	return out
}
