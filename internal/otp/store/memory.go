// Package store keeps hashed one-time codes with an expiry.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/bhumeshparihar/e-matdaan-voting-system/pkg/platform/sentinel"
	"github.com/bhumeshparihar/e-matdaan-voting-system/pkg/requestcontext"
)

type entry struct {
	hash      string
	expiresAt time.Time
}

// InMemory holds codes in a map. Expired entries are treated as missing and
// removed on access.
type InMemory struct {
	mu      sync.Mutex
	entries map[string]entry
}

func NewInMemory() *InMemory {
	return &InMemory{entries: make(map[string]entry)}
}

// Save replaces any code stored under key.
func (s *InMemory) Save(ctx context.Context, key, hash string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry{hash: hash, expiresAt: requestcontext.Now(ctx).Add(ttl)}
	return nil
}

// Get returns the stored hash, or ErrNotFound when absent or expired.
func (s *InMemory) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return "", sentinel.ErrNotFound
	}
	if !requestcontext.Now(ctx).Before(e.expiresAt) {
		delete(s.entries, key)
		return "", sentinel.ErrNotFound
	}
	return e.hash, nil
}

func (s *InMemory) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}
