package geocache

import (
	"context"
	"sync"
	"time"

	"github.com/yanqian/walkcast/internal/domain/walkplan"
)

type placesRecord struct {
	places    []walkplan.Place
	expiresAt time.Time
}

// MemoryStore is an in-memory implementation of the geocode store for tests/dev.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]placesRecord
	now     func() time.Time
}

// NewMemoryStore constructs a store backed by process memory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]placesRecord),
		now:     time.Now,
	}
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, key string) ([]walkplan.Place, bool, error) {
	s.mu.RLock()
	record, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if s.hasExpired(record.expiresAt) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return nil, false, nil
	}
	places := make([]walkplan.Place, len(record.places))
	copy(places, record.places)
	return places, true, nil
}

// Set caches the places with optional TTL.
func (s *MemoryStore) Set(_ context.Context, key string, places []walkplan.Place, ttl time.Duration) error {
	stored := make([]walkplan.Place, len(places))
	copy(stored, places)

	s.mu.Lock()
	defer s.mu.Unlock()
	exp := time.Time{}
	if ttl > 0 {
		exp = s.now().Add(ttl)
	}
	s.entries[key] = placesRecord{places: stored, expiresAt: exp}
	return nil
}

// Ping always succeeds; the store lives in process.
func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

func (s *MemoryStore) hasExpired(ts time.Time) bool {
	if ts.IsZero() {
		return false
	}
	return ts.Before(s.now())
}

var _ Store = (*MemoryStore)(nil)
