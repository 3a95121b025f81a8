package weather

import (
	"fmt"
	"time"
)

// Parameter names an hourly series reported by the provider.
type Parameter string

const (
	ParamTemperature   Parameter = "temperature_2m"
	ParamHumidity      Parameter = "relative_humidity_2m"
	ParamWindSpeed     Parameter = "wind_speed_10m"
	ParamPrecipitation Parameter = "precipitation"
	ParamRain          Parameter = "rain"
	ParamSnowfall      Parameter = "snowfall"
	ParamPressure      Parameter = "surface_pressure"
	ParamCloudCover    Parameter = "cloud_cover"
)

// HourlyParameters is the set of series requested from the provider.
var HourlyParameters = []Parameter{
	ParamTemperature,
	ParamRain,
	ParamSnowfall,
	ParamPrecipitation,
	ParamPressure,
	ParamWindSpeed,
	ParamCloudCover,
	ParamHumidity,
}

// Location describes a place on the dashboard roster.
type Location struct {
	Name      string            `json:"name" validate:"required"`
	Latitude  float64           `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64           `json:"longitude" validate:"gte=-180,lte=180"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Key returns a canonical string key for logging and metrics.
func (l Location) Key() string {
	return fmt.Sprintf("%s@%.4f,%.4f", l.Name, l.Latitude, l.Longitude)
}

// RawSeries is the provider's hourly data: one time axis shared by every
// parameter sequence. A nil entry marks a sample the provider did not report.
type RawSeries struct {
	Time   []time.Time
	Values map[Parameter][]*float64
}

// Len returns the length of the time axis.
func (s RawSeries) Len() int {
	return len(s.Time)
}

// Validate checks that every parameter sequence matches the time axis.
func (s RawSeries) Validate() error {
	for p, values := range s.Values {
		if len(values) != len(s.Time) {
			return fmt.Errorf("%w: series %q has %d samples, time axis has %d",
				ErrMalformedResponse, p, len(values), len(s.Time))
		}
	}
	return nil
}

// At returns the sample of p at index i, or nil when the parameter is
// missing, the index is out of range, or the provider reported null.
func (s RawSeries) At(p Parameter, i int) *float64 {
	values, ok := s.Values[p]
	if !ok || i < 0 || i >= len(values) {
		return nil
	}
	if values[i] == nil {
		return nil
	}
	v := *values[i]
	return &v
}

// zeroAt is At with numeric zero for absent samples.
func (s RawSeries) zeroAt(p Parameter, i int) float64 {
	if v := s.At(p, i); v != nil {
		return *v
	}
	return 0
}

// CurrentSnapshot is the provider's instantaneous reading. Its timestamp is
// not guaranteed to appear on the hourly time axis.
type CurrentSnapshot struct {
	Timestamp     time.Time
	Temperature   float64
	WindSpeed     float64
	ConditionCode int
}

// ProviderPayload is what a Fetcher returns for one location.
type ProviderPayload struct {
	// Current is nil when the response lacked the instantaneous section.
	Current   *CurrentSnapshot
	Hourly    RawSeries
	Elevation *float64
	Timezone  string
}

// ForecastSample is one normalized hourly record.
type ForecastSample struct {
	Time          time.Time `json:"time"`
	Hour          int       `json:"hour"`
	Temperature   *float64  `json:"temperature"`
	Humidity      *float64  `json:"humidity"`
	WindSpeed     *float64  `json:"windSpeed"`
	Precipitation float64   `json:"precipitation"`
	Rain          float64   `json:"rain"`
	Snowfall      float64   `json:"snowfall"`
	CloudCover    *float64  `json:"cloudCover"`
}

// ForecastWindow holds up to WindowSize samples starting at the alignment index.
type ForecastWindow []ForecastSample

// WindowSummary aggregates a forecast window for cards and reports.
type WindowSummary struct {
	Hours              int      `json:"hours"`
	TotalPrecipitation float64  `json:"totalPrecipitation"`
	TotalRain          float64  `json:"totalRain"`
	TotalSnowfall      float64  `json:"totalSnowfall"`
	MinTemperature     *float64 `json:"minTemperature"`
	MaxTemperature     *float64 `json:"maxTemperature"`
}

// Summary totals precipitation, rain and snowfall, and finds the temperature range over
// samples whose temperature is known.
func (w ForecastWindow) Summary() WindowSummary {
	sum := WindowSummary{Hours: len(w)}
	for _, s := range w {
		sum.TotalPrecipitation += s.Precipitation
		sum.TotalRain += s.Rain
		sum.TotalSnowfall += s.Snowfall
		if s.Temperature == nil {
			continue
		}
		t := *s.Temperature
		if sum.MinTemperature == nil || t < *sum.MinTemperature {
			sum.MinTemperature = &t
		}
		if sum.MaxTemperature == nil || t > *sum.MaxTemperature {
			sum.MaxTemperature = &t
		}
	}
	return sum
}

// CurrentConditions is the normalized "now" view of a location. Fields read
// from the hourly series are nil when no alignment index could be found.
type CurrentConditions struct {
	Timestamp     time.Time `json:"timestamp"`
	Temperature   float64   `json:"temperature"`
	WindSpeed     float64   `json:"windSpeed"`
	ConditionCode int       `json:"weatherCode"`
	Condition     Condition `json:"condition"`
	Description   string    `json:"description"`
	Humidity      *float64  `json:"humidity"`
	Precipitation *float64  `json:"precipitation"`
	Rain          *float64  `json:"rain"`
	Pressure      *float64  `json:"pressure"`
	CloudCover    *float64  `json:"cloudCover"`
}

// LocationWeather is the normalizer's output for a single location.
type LocationWeather struct {
	Current   CurrentConditions `json:"current"`
	Forecast  ForecastWindow    `json:"forecast24h"`
	Summary   WindowSummary     `json:"summary"`
	Alignment AlignMethod       `json:"alignment"`
	Elevation *float64          `json:"elevation"`
	Timezone  string            `json:"timezone,omitempty"`
}

// LocationWeatherResult is one entry of a batch. Weather is nil and Error is
// set when the location could not be fetched or normalized.
type LocationWeatherResult struct {
	Location
	Weather *LocationWeather `json:"weather"`
	Error   *string          `json:"error"`
}

// Failed reports whether the entry carries an error.
func (r LocationWeatherResult) Failed() bool {
	return r.Error != nil
}

// Batch is the ordered result of one aggregation, one entry per input location.
type Batch struct {
	ID          string                  `json:"id"`
	GeneratedAt time.Time               `json:"generatedAt"`
	Results     []LocationWeatherResult `json:"results"`
}

// FailedCount returns the number of entries that carry an error.
func (b Batch) FailedCount() int {
	n := 0
	for _, r := range b.Results {
		if r.Failed() {
			n++
		}
	}
	return n
}
