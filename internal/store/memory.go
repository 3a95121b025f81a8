package store

import (
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/i474232898/pk-weather-dashboard/internal/weather"
)

var (
	// ErrNotFound is returned when no batch is stored for the request.
	ErrNotFound = errors.New("no weather batch stored")
)

// MemoryStore is a concurrency-safe in-memory history of roster batches,
// ordered by GeneratedAt as saved.
type MemoryStore struct {
	mu      sync.RWMutex
	batches []weather.Batch

	// retention configuration
	maxHistory int           // max number of batches kept (0 = unlimited)
	maxAge     time.Duration // max age of batches (0 = unlimited)
	clock      clockwork.Clock
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return NewMemoryStoreWithClock(maxHistory, maxAge, clockwork.NewRealClock())
}

// NewMemoryStoreWithClock is NewMemoryStore with an explicit time source for
// age-based retention.
func NewMemoryStoreWithClock(maxHistory int, maxAge time.Duration, clock clockwork.Clock) *MemoryStore {
	return &MemoryStore{
		maxHistory: maxHistory,
		maxAge:     maxAge,
		clock:      clock,
	}
}

// SaveBatch appends a batch and enforces retention.
func (s *MemoryStore) SaveBatch(batch weather.Batch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.batches = append(s.batches, batch)

	// Enforce retention by count.
	if s.maxHistory > 0 && len(s.batches) > s.maxHistory {
		over := len(s.batches) - s.maxHistory
		s.batches = s.batches[over:]
	}

	// Enforce retention by age; the batch just saved is always kept.
	if s.maxAge > 0 {
		cutoff := s.clock.Now().Add(-s.maxAge)
		i := 0
		for ; i < len(s.batches)-1; i++ {
			if !s.batches[i].GeneratedAt.Before(cutoff) {
				break
			}
		}
		s.batches = s.batches[i:]
	}
}

// GetLatest returns the most recently saved batch.
func (s *MemoryStore) GetLatest() (weather.Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.batches) == 0 {
		return weather.Batch{}, ErrNotFound
	}
	return s.batches[len(s.batches)-1], nil
}

// GetRange returns all batches generated between from and to (inclusive).
func (s *MemoryStore) GetRange(from, to time.Time) ([]weather.Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []weather.Batch
	for _, b := range s.batches {
		if !b.GeneratedAt.Before(from) && !b.GeneratedAt.After(to) {
			result = append(result, b)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}
	return result, nil
}
