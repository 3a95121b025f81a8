package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/i474232898/pk-weather-dashboard/internal/weather"
)

// DefaultOpenMeteoURL is the public Open-Meteo API host.
const DefaultOpenMeteoURL = "https://api.open-meteo.com"

// OpenMeteoProvider implements weather.Fetcher for the Open-Meteo forecast API.
// Each location gets its own circuit breaker.
type OpenMeteoProvider struct {
	name     string
	baseURL  string
	client   *http.Client
	breakers *breakerSet
}

// NewOpenMeteoProvider creates a provider against baseURL (DefaultOpenMeteoURL
// when empty). Requests are never retried.
func NewOpenMeteoProvider(client *http.Client, baseURL string) *OpenMeteoProvider {
	if baseURL == "" {
		baseURL = DefaultOpenMeteoURL
	}
	return &OpenMeteoProvider{
		name:     "openmeteo",
		baseURL:  strings.TrimRight(baseURL, "/") + "/v1/forecast",
		client:   client,
		breakers: newBreakerSet("openmeteo"),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

// Fetch requests current weather and the hourly series for loc.
func (p *OpenMeteoProvider) Fetch(ctx context.Context, loc weather.Location) (*weather.ProviderPayload, error) {
	values := url.Values{}
	values.Set("latitude", strconv.FormatFloat(loc.Latitude, 'f', -1, 64))
	values.Set("longitude", strconv.FormatFloat(loc.Longitude, 'f', -1, 64))
	values.Set("hourly", hourlyQuery())
	values.Set("current_weather", "true")
	values.Set("timezone", "auto")

	req, err := http.NewRequest(http.MethodGet, p.baseURL+"?"+values.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := doRequest(ctx, p.client, p.breakers.get(loc.Key()), req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body openMeteoResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", weather.ErrMalformedResponse, err)
	}
	return body.toPayload()
}

func hourlyQuery() string {
	names := make([]string, len(weather.HourlyParameters))
	for i, p := range weather.HourlyParameters {
		names[i] = string(p)
	}
	return strings.Join(names, ",")
}

type openMeteoResponse struct {
	Elevation        *float64 `json:"elevation"`
	Timezone         string   `json:"timezone"`
	UTCOffsetSeconds int      `json:"utc_offset_seconds"`
	CurrentWeather   *struct {
		Temperature float64 `json:"temperature"`
		WindSpeed   float64 `json:"windspeed"`
		WeatherCode int     `json:"weathercode"`
		Time        string  `json:"time"`
	} `json:"current_weather"`
	Hourly map[string]json.RawMessage `json:"hourly"`
}

func (r openMeteoResponse) toPayload() (*weather.ProviderPayload, error) {
	zone := r.zone()

	payload := &weather.ProviderPayload{
		Elevation: r.Elevation,
		Timezone:  r.Timezone,
		Hourly:    weather.RawSeries{Values: map[weather.Parameter][]*float64{}},
	}

	if r.CurrentWeather != nil {
		snap := &weather.CurrentSnapshot{
			Temperature:   r.CurrentWeather.Temperature,
			WindSpeed:     r.CurrentWeather.WindSpeed,
			ConditionCode: r.CurrentWeather.WeatherCode,
		}
		if r.CurrentWeather.Time != "" {
			ts, err := parseOpenMeteoTime(r.CurrentWeather.Time, zone)
			if err != nil {
				return nil, err
			}
			snap.Timestamp = ts
		}
		payload.Current = snap
	}

	if raw, ok := r.Hourly["time"]; ok {
		var stamps []string
		if err := json.Unmarshal(raw, &stamps); err != nil {
			return nil, fmt.Errorf("%w: hourly time: %v", weather.ErrMalformedResponse, err)
		}
		axis := make([]time.Time, len(stamps))
		for i, s := range stamps {
			ts, err := parseOpenMeteoTime(s, zone)
			if err != nil {
				return nil, err
			}
			axis[i] = ts
		}
		payload.Hourly.Time = axis
	}

	for _, p := range weather.HourlyParameters {
		raw, ok := r.Hourly[string(p)]
		if !ok {
			continue
		}
		var values []*float64
		if err := json.Unmarshal(raw, &values); err != nil {
			return nil, fmt.Errorf("%w: hourly %s: %v", weather.ErrMalformedResponse, p, err)
		}
		payload.Hourly.Values[p] = values
	}

	return payload, nil
}

// zone resolves the IANA zone so offsets follow daylight-saving changes along
// the axis. Unknown names fall back to the fixed offset of the response.
func (r openMeteoResponse) zone() *time.Location {
	if r.Timezone == "" {
		return time.UTC
	}
	if loc, err := time.LoadLocation(r.Timezone); err == nil {
		return loc
	}
	return time.FixedZone(r.Timezone, r.UTCOffsetSeconds)
}

var openMeteoLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// parseOpenMeteoTime parses a local ISO-8601 timestamp in zone; RFC3339
// values carry their own offset.
func parseOpenMeteoTime(s string, zone *time.Location) (time.Time, error) {
	for _, layout := range openMeteoLayouts {
		if ts, err := time.ParseInLocation(layout, s, zone); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: invalid timestamp %q", weather.ErrMalformedResponse, s)
}
