package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/pk-weather-dashboard/internal/weather"
)

const karachiResponse = `{
  "latitude": 24.86,
  "longitude": 67.0,
  "elevation": 8.0,
  "timezone": "Asia/Karachi",
  "utc_offset_seconds": 18000,
  "current_weather": {"time": "2025-07-01T11:00", "temperature": 33.4, "windspeed": 18.2, "weathercode": 2},
  "hourly": {
    "time": ["2025-07-01T10:00", "2025-07-01T11:00", "2025-07-01T12:00"],
    "temperature_2m": [32.1, 33.4, null],
    "relative_humidity_2m": [70, 68, 66],
    "precipitation": [0, 0.2, 0],
    "cloud_cover": [10, 20, 30]
  }
}`

var karachi = weather.Location{Name: "Karachi", Latitude: 24.8607, Longitude: 67.0011}

func newTestProvider(t *testing.T, handler http.HandlerFunc) *OpenMeteoProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOpenMeteoProvider(srv.Client(), srv.URL)
}

func TestOpenMeteoFetch(t *testing.T) {
	var gotQuery map[string][]string
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/forecast", r.URL.Path)
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(karachiResponse))
	})

	payload, err := p.Fetch(context.Background(), karachi)
	require.NoError(t, err)

	assert.Equal(t, []string{"24.8607"}, gotQuery["latitude"])
	assert.Equal(t, []string{"true"}, gotQuery["current_weather"])
	assert.Equal(t, []string{"auto"}, gotQuery["timezone"])
	assert.Contains(t, gotQuery["hourly"][0], "relative_humidity_2m")

	require.NotNil(t, payload.Current)
	zone := time.FixedZone("Asia/Karachi", 5*3600)
	assert.True(t, payload.Current.Timestamp.Equal(time.Date(2025, 7, 1, 11, 0, 0, 0, zone)))
	assert.Equal(t, 33.4, payload.Current.Temperature)
	assert.Equal(t, 18.2, payload.Current.WindSpeed)
	assert.Equal(t, 2, payload.Current.ConditionCode)
	assert.Equal(t, "Asia/Karachi", payload.Timezone)
	require.NotNil(t, payload.Elevation)
	assert.Equal(t, 8.0, *payload.Elevation)

	require.Len(t, payload.Hourly.Time, 3)
	assert.Equal(t, 10, payload.Hourly.Time[0].Hour())
	temps := payload.Hourly.Values[weather.ParamTemperature]
	require.Len(t, temps, 3)
	assert.Nil(t, temps[2])
	_, hasRain := payload.Hourly.Values[weather.ParamRain]
	assert.False(t, hasRain)
}

func TestOpenMeteoMissingCurrent(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"hourly": {"time": ["2025-07-01T10:00"]}}`))
	})

	payload, err := p.Fetch(context.Background(), karachi)
	require.NoError(t, err)
	assert.Nil(t, payload.Current)
	assert.Len(t, payload.Hourly.Time, 1)
}

func TestOpenMeteoMalformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"hourly":`},
		{"bad timestamp", `{"current_weather": {"time": "yesterday"}}`},
		{"bad series", `{"hourly": {"time": ["2025-07-01T10:00"], "rain": "lots"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProvider(t, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := p.Fetch(context.Background(), karachi)
			require.Error(t, err)
			assert.ErrorIs(t, err, weather.ErrMalformedResponse)
		})
	}
}

func TestOpenMeteoServerErrorIsTransport(t *testing.T) {
	calls := 0
	p := newTestProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := p.Fetch(context.Background(), karachi)
	require.Error(t, err)
	assert.ErrorIs(t, err, weather.ErrTransport)
	assert.Equal(t, 1, calls, "requests are not retried")
}

func TestOpenMeteoNotFoundIsTransport(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := p.Fetch(context.Background(), karachi)
	assert.ErrorIs(t, err, weather.ErrTransport)
}

func TestOpenMeteoFollowsDaylightSaving(t *testing.T) {
	tests := []struct {
		name     string
		timezone string
		want     []time.Time
	}{
		{
			name:     "iana zone",
			timezone: "Europe/Berlin",
			want: []time.Time{
				time.Date(2025, 3, 29, 11, 0, 0, 0, time.UTC),
				time.Date(2025, 3, 31, 10, 0, 0, 0, time.UTC),
			},
		},
		{
			name:     "unknown zone uses fixed offset",
			timezone: "Nowhere/Special",
			want: []time.Time{
				time.Date(2025, 3, 29, 10, 0, 0, 0, time.UTC),
				time.Date(2025, 3, 31, 10, 0, 0, 0, time.UTC),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := `{"timezone": "` + tt.timezone + `", "utc_offset_seconds": 7200,
				"hourly": {"time": ["2025-03-29T12:00", "2025-03-31T12:00"]}}`
			p := newTestProvider(t, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(body))
			})

			payload, err := p.Fetch(context.Background(), karachi)
			require.NoError(t, err)
			require.Len(t, payload.Hourly.Time, 2)
			for i, want := range tt.want {
				assert.True(t, payload.Hourly.Time[i].Equal(want), "got %s, want %s", payload.Hourly.Time[i], want)
			}
		})
	}
}

func TestOpenMeteoFailuresDoNotBlockSiblings(t *testing.T) {
	islamabad := weather.Location{Name: "Islamabad", Latitude: 33.6844, Longitude: 73.0479}
	healthyLat := strconv.FormatFloat(islamabad.Latitude, 'f', -1, 64)

	var healthyHits atomic.Int32
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("latitude") != healthyLat {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		healthyHits.Add(1)
		_, _ = w.Write([]byte(karachiResponse))
	})

	var locations []weather.Location
	for i := 0; i < 6; i++ {
		locations = append(locations, weather.Location{
			Name:      "Down" + strconv.Itoa(i),
			Latitude:  float64(10 + i),
			Longitude: 70,
		})
	}
	locations = append(locations, islamabad)

	clock := clockwork.NewFakeClockAt(time.Date(2025, 7, 1, 6, 0, 0, 0, time.UTC))
	agg := weather.NewAggregator(p, nil, nil, clock)

	batch := agg.Aggregate(context.Background(), weather.BatchConfig{Locations: locations, MaxConcurrency: 1})
	require.Len(t, batch.Results, 7)
	assert.Equal(t, 6, batch.FailedCount())
	last := batch.Results[6]
	assert.Equal(t, "Islamabad", last.Name)
	assert.Nil(t, last.Error)
	assert.EqualValues(t, 1, healthyHits.Load())

	next := agg.Aggregate(context.Background(), weather.BatchConfig{Locations: []weather.Location{islamabad}})
	assert.Nil(t, next.Results[0].Error)
	assert.EqualValues(t, 2, healthyHits.Load())
}

func TestOpenMeteoBreakerTripsPerLocation(t *testing.T) {
	var calls atomic.Int32
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("latitude") == "24.8607" {
			calls.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(karachiResponse))
	})

	for i := 0; i < 6; i++ {
		_, err := p.Fetch(context.Background(), karachi)
		require.ErrorIs(t, err, weather.ErrTransport)
	}
	_, err := p.Fetch(context.Background(), karachi)
	assert.ErrorIs(t, err, errCircuitOpen)
	assert.EqualValues(t, 6, calls.Load(), "open breaker skips the request")

	lahore := weather.Location{Name: "Lahore", Latitude: 31.5204, Longitude: 74.3587}
	_, err = p.Fetch(context.Background(), lahore)
	assert.NoError(t, err)
}

func TestOpenMeteoClientErrorsDoNotTrip(t *testing.T) {
	var calls atomic.Int32
	p := newTestProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	})

	for i := 0; i < 10; i++ {
		_, err := p.Fetch(context.Background(), karachi)
		require.ErrorIs(t, err, weather.ErrTransport)
		require.NotErrorIs(t, err, errCircuitOpen)
	}
	assert.EqualValues(t, 10, calls.Load())
}
