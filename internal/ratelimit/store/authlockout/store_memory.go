package authlockout

import (
	"context"
	"sync"
	"time"

	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/ratelimit/models"
	id "github.com/bhumeshparihar/e-matdaan-voting-system/pkg/domain"
)

// InMemoryStore keeps lockout records in a map. Pure I/O: thresholds and lock
// durations are decided by the service.
type InMemoryStore struct {
	mu      sync.Mutex
	records map[id.NationalID]*models.Lockout
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{records: make(map[id.NationalID]*models.Lockout)}
}

func (s *InMemoryStore) Get(_ context.Context, nationalID id.NationalID) (*models.Lockout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[nationalID]
	if !ok {
		return nil, nil
	}
	return copyLockout(r), nil
}

// RecordFailure increments the counter, restarting it when the previous
// failure happened before windowStart.
func (s *InMemoryStore) RecordFailure(_ context.Context, nationalID id.NationalID, now, windowStart time.Time) (*models.Lockout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[nationalID]
	if !ok {
		r = &models.Lockout{NationalID: nationalID}
		s.records[nationalID] = r
	}
	if ok && r.LastFailureAt.Before(windowStart) {
		r.FailureCount = 0
	}
	r.FailureCount++
	r.LastFailureAt = now
	return copyLockout(r), nil
}

// Lock sets locked_until and restarts the window count.
func (s *InMemoryStore) Lock(_ context.Context, nationalID id.NationalID, until time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[nationalID]
	if !ok {
		r = &models.Lockout{NationalID: nationalID, LastFailureAt: until}
		s.records[nationalID] = r
	}
	u := until
	r.LockedUntil = &u
	r.FailureCount = 0
	return nil
}

func (s *InMemoryStore) Clear(_ context.Context, nationalID id.NationalID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, nationalID)
	return nil
}

func copyLockout(r *models.Lockout) *models.Lockout {
	out := *r
	if r.LockedUntil != nil {
		t := *r.LockedUntil
		out.LockedUntil = &t
	}
	return &out
}
