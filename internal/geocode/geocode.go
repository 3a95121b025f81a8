// Package geocode turns city names into roster locations for ad-hoc lookups.
package geocode

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/pk-weather-dashboard/internal/weather"
)

// ErrNotConfigured is returned when no geocoding API key is set.
var ErrNotConfigured = errors.New("geocoding is not configured")

// Resolver converts a city and country into a location.
type Resolver interface {
	Resolve(ctx context.Context, city, country string) (weather.Location, error)
}

// GoogleResolver resolves names with the Google Geocoding API.
type GoogleResolver struct {
	apiKey string
}

// NewGoogleResolver creates a resolver using apiKey.
func NewGoogleResolver(apiKey string) *GoogleResolver {
	return &GoogleResolver{apiKey: apiKey}
}

// geocoder keeps its key in a package variable.
var keyMu sync.Mutex

func (g *GoogleResolver) Resolve(ctx context.Context, city, country string) (weather.Location, error) {
	if g.apiKey == "" {
		return weather.Location{}, ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return weather.Location{}, err
	}

	keyMu.Lock()
	geocoder.ApiKey = g.apiKey
	loc, err := geocoder.Geocoding(geocoder.Address{City: city, Country: country})
	keyMu.Unlock()
	if err != nil {
		return weather.Location{}, fmt.Errorf("geocode %s, %s: %w", city, country, err)
	}

	return weather.Location{
		Name:      city,
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
		Metadata:  map[string]string{"country": country},
	}, nil
}

// CachedResolver wraps a Resolver with an unbounded in-memory cache of
// successful lookups.
type CachedResolver struct {
	inner Resolver

	mu    sync.Mutex
	cache map[string]weather.Location
}

// NewCachedResolver creates a cache decorator around inner.
func NewCachedResolver(inner Resolver) *CachedResolver {
	return &CachedResolver{
		inner: inner,
		cache: make(map[string]weather.Location),
	}
}

func (c *CachedResolver) Resolve(ctx context.Context, city, country string) (weather.Location, error) {
	key := strings.ToLower(city + "|" + country)

	c.mu.Lock()
	loc, ok := c.cache[key]
	c.mu.Unlock()
	if ok {
		return loc, nil
	}

	loc, err := c.inner.Resolve(ctx, city, country)
	if err != nil {
		return loc, err
	}

	c.mu.Lock()
	c.cache[key] = loc
	c.mu.Unlock()
	return loc, nil
}
