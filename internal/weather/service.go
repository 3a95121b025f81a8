package weather

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Store keeps completed roster batches for the dashboard.
type Store interface {
	SaveBatch(batch Batch)
	GetLatest() (Batch, error)
	GetRange(from, to time.Time) ([]Batch, error)
}

// Service ties the aggregator to the configured roster and the batch store.
type Service struct {
	aggregator     *Aggregator
	store          Store
	roster         []Location
	maxConcurrency int
}

// NewService creates a new Service. A copy of roster is kept.
func NewService(aggregator *Aggregator, store Store, roster []Location, maxConcurrency int) *Service {
	return &Service{
		aggregator:     aggregator,
		store:          store,
		roster:         append([]Location(nil), roster...),
		maxConcurrency: maxConcurrency,
	}
}

// Roster returns a copy of the configured locations.
func (s *Service) Roster() []Location {
	return append([]Location(nil), s.roster...)
}

// RefreshRoster runs a fresh aggregation of the roster and saves it.
func (s *Service) RefreshRoster(ctx context.Context) (Batch, error) {
	if len(s.roster) == 0 {
		return Batch{}, fmt.Errorf("no roster locations configured")
	}
	log.Printf("DEBUG: RefreshRoster called for %d locations", len(s.roster))

	batch := s.Aggregate(ctx, s.roster)
	if s.store != nil {
		s.store.SaveBatch(batch)
	}
	return batch, nil
}

// Aggregate runs an ad-hoc batch without saving it.
func (s *Service) Aggregate(ctx context.Context, locations []Location) Batch {
	return s.aggregator.Aggregate(ctx, BatchConfig{
		Locations:      locations,
		MaxConcurrency: s.maxConcurrency,
	})
}

// Lookup fetches a single location as a one-entry batch.
func (s *Service) Lookup(ctx context.Context, loc Location) LocationWeatherResult {
	return s.Aggregate(ctx, []Location{loc}).Results[0]
}

// GetLatest delegates to the underlying store.
func (s *Service) GetLatest() (Batch, error) {
	if s.store == nil {
		return Batch{}, ErrNoStore
	}
	return s.store.GetLatest()
}

// GetRange delegates to the underlying store.
func (s *Service) GetRange(from, to time.Time) ([]Batch, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}
	return s.store.GetRange(from, to)
}
