package weather

import (
	"context"
	"fmt"
	"log"
	"maps"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/i474232898/pk-weather-dashboard/internal/observability"
)

// Fetcher retrieves the raw provider payload for one location.
type Fetcher interface {
	Fetch(ctx context.Context, loc Location) (*ProviderPayload, error)
}

// BatchConfig is the caller-owned input of one aggregation.
type BatchConfig struct {
	Locations []Location

	// MaxConcurrency bounds in-flight fetches; 0 starts every location at once.
	MaxConcurrency int
}

// Aggregator runs fetch-and-normalize concurrently over a set of locations.
type Aggregator struct {
	fetcher    Fetcher
	normalizer *Normalizer
	metrics    *observability.Metrics
	clock      clockwork.Clock
	validate   *validator.Validate
}

// NewAggregator creates an Aggregator. metrics may be nil; a nil clock uses
// real time.
func NewAggregator(fetcher Fetcher, normalizer *Normalizer, metrics *observability.Metrics, clock clockwork.Clock) *Aggregator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if normalizer == nil {
		normalizer = NewNormalizer(NewTimeIndexResolver(clock))
	}
	return &Aggregator{
		fetcher:    fetcher,
		normalizer: normalizer,
		metrics:    metrics,
		clock:      clock,
		validate:   validator.New(),
	}
}

// Aggregate fetches and normalizes every location and returns one result per
// input location, in input order. A failing location produces an entry with
// Error set and nil Weather; it never fails the batch or cancels siblings.
//
// Tasks are detached from ctx cancellation; once started they run to
// completion or failure.
func (a *Aggregator) Aggregate(ctx context.Context, cfg BatchConfig) Batch {
	start := a.clock.Now()
	taskCtx := context.WithoutCancel(ctx)

	results := make([]LocationWeatherResult, len(cfg.Locations))

	var g errgroup.Group
	if cfg.MaxConcurrency > 0 {
		g.SetLimit(cfg.MaxConcurrency)
	}
	for i, loc := range cfg.Locations {
		i, loc := i, loc
		g.Go(func() error {
			// Each task owns results[i] exclusively.
			results[i] = a.run(taskCtx, loc)
			return nil
		})
	}
	_ = g.Wait()

	batch := Batch{
		ID:          uuid.NewString(),
		GeneratedAt: start,
		Results:     results,
	}
	a.metrics.ObserveBatch(len(results), a.clock.Since(start))
	log.Printf("INFO: aggregated %d locations (%d failed) in batch %s", len(results), batch.FailedCount(), batch.ID)
	return batch
}

// run processes a single location, converting every failure into an entry.
func (a *Aggregator) run(ctx context.Context, loc Location) (result LocationWeatherResult) {
	loc.Metadata = maps.Clone(loc.Metadata)
	result.Location = loc

	defer func() {
		if r := recover(); r != nil {
			result = failedResult(loc, fmt.Errorf("panic while processing location: %v", r))
		}
		a.metrics.ObserveLocation(result.Failed())
	}()

	lw, err := a.fetchAndNormalize(ctx, loc)
	if err != nil {
		log.Printf("ERROR: weather for %s failed: %v", loc.Key(), err)
		return failedResult(loc, err)
	}
	a.metrics.ObserveAlignment(string(lw.Alignment))
	result.Weather = lw
	return result
}

func (a *Aggregator) fetchAndNormalize(ctx context.Context, loc Location) (*LocationWeather, error) {
	if err := a.validate.Struct(loc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLocation, err)
	}
	if a.fetcher == nil {
		return nil, fmt.Errorf("%w: no fetcher configured", ErrTransport)
	}

	payload, err := a.fetcher.Fetch(ctx, loc)
	if err != nil {
		return nil, err
	}
	return a.normalizer.Normalize(payload)
}

func failedResult(loc Location, err error) LocationWeatherResult {
	msg := err.Error()
	return LocationWeatherResult{
		Location: loc,
		Error:    &msg,
	}
}
