package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/i474232898/pk-weather-dashboard/internal/weather"
)

type AppConfig struct {
	// OpenMeteoBaseURL is the upstream host; the provider appends /v1/forecast.
	OpenMeteoBaseURL string
	HTTPTimeout      time.Duration

	// RefreshInterval controls how often the roster batch is refreshed.
	RefreshInterval time.Duration

	// BatchConcurrency bounds in-flight fetches per batch (0 = unbounded).
	BatchConcurrency int

	// Locations on the dashboard roster.
	Locations []weather.Location

	// In-memory batch history retention.
	StoreMaxHistory int           // max number of batches kept (0 = unlimited)
	StoreMaxAge     time.Duration // max age of batches (0 = unlimited)

	GeocoderAPIKey string

	Port string
}

// DefaultRoster is the fixed set of Pakistani cities shown on the dashboard.
var DefaultRoster = []weather.Location{
	{Name: "Islamabad", Latitude: 33.6844, Longitude: 73.0479, Metadata: map[string]string{"province": "Islamabad Capital Territory"}},
	{Name: "Lahore", Latitude: 31.5204, Longitude: 74.3587, Metadata: map[string]string{"province": "Punjab"}},
	{Name: "Karachi", Latitude: 24.8607, Longitude: 67.0011, Metadata: map[string]string{"province": "Sindh"}},
	{Name: "Peshawar", Latitude: 34.0151, Longitude: 71.5249, Metadata: map[string]string{"province": "Khyber Pakhtunkhwa"}},
	{Name: "Quetta", Latitude: 30.1798, Longitude: 66.9750, Metadata: map[string]string{"province": "Balochistan"}},
	{Name: "Multan", Latitude: 30.1575, Longitude: 71.5249, Metadata: map[string]string{"province": "Punjab"}},
	{Name: "Hyderabad", Latitude: 25.3960, Longitude: 68.3578, Metadata: map[string]string{"province": "Sindh"}},
	{Name: "Faisalabad", Latitude: 31.4504, Longitude: 73.1350, Metadata: map[string]string{"province": "Punjab"}},
	{Name: "Gilgit", Latitude: 35.9208, Longitude: 74.3144, Metadata: map[string]string{"province": "Gilgit-Baltistan"}},
	{Name: "Muzaffarabad", Latitude: 34.3700, Longitude: 73.4711, Metadata: map[string]string{"province": "Azad Kashmir"}},
}

var validate = validator.New()

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{}

	cfg.OpenMeteoBaseURL = getenvDefault("OPEN_METEO_BASE_URL", "https://api.open-meteo.com")
	cfg.GeocoderAPIKey = os.Getenv("GOOGLE_GEOCODING_API_KEY")

	timeout, err := time.ParseDuration(getenvDefault("HTTP_TIMEOUT", "10s"))
	if err != nil || timeout <= 0 {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %q", os.Getenv("HTTP_TIMEOUT"))
	}
	cfg.HTTPTimeout = timeout

	// Refresh interval: default 15 minutes.
	interval, err := time.ParseDuration(getenvDefault("REFRESH_INTERVAL", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_INTERVAL: %w", err)
	}
	cfg.RefreshInterval = interval

	cfg.BatchConcurrency = getenvInt("BATCH_CONCURRENCY", 0)

	// Store retention.
	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", 96) // roughly 24h at 15-minute intervals

	maxAge, err := time.ParseDuration(getenvDefault("STORE_MAX_AGE", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid STORE_MAX_AGE: %w", err)
	}
	cfg.StoreMaxAge = maxAge
	cfg.Port = getenvDefault("PORT", "8080")

	locs, err := loadRoster(os.Getenv("WEATHER_LOCATIONS"))
	if err != nil {
		return nil, err
	}
	cfg.Locations = locs

	return cfg, nil
}

// loadRoster parses "name:lat:lon;name:lat:lon". An empty value yields a copy
// of DefaultRoster.
func loadRoster(spec string) ([]weather.Location, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return append([]weather.Location(nil), DefaultRoster...), nil
	}

	var locs []weather.Location
	for _, entry := range strings.Split(spec, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("invalid WEATHER_LOCATIONS entry %q: want name:lat:lon", entry)
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid latitude in %q: %w", entry, err)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid longitude in %q: %w", entry, err)
		}
		loc := weather.Location{Name: strings.TrimSpace(parts[0]), Latitude: lat, Longitude: lon}
		if err := validate.Struct(loc); err != nil {
			return nil, fmt.Errorf("invalid WEATHER_LOCATIONS entry %q: %w", entry, err)
		}
		locs = append(locs, loc)
	}

	if len(locs) == 0 {
		return nil, fmt.Errorf("WEATHER_LOCATIONS contains no locations")
	}
	return locs, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
