package weather

import "time"

// Normalizer combines a provider's current snapshot and hourly series into a
// single LocationWeather.
type Normalizer struct {
	resolver *TimeIndexResolver
}

// NewNormalizer creates a Normalizer aligning with resolver.
func NewNormalizer(resolver *TimeIndexResolver) *Normalizer {
	if resolver == nil {
		resolver = NewTimeIndexResolver(nil)
	}
	return &Normalizer{resolver: resolver}
}

// Normalize builds current conditions and the forecast window for one
// location. It returns ErrNoCurrentData when the payload has no snapshot and
// ErrMalformedResponse when the hourly series are inconsistent. The payload
// is not modified.
func (n *Normalizer) Normalize(payload *ProviderPayload) (*LocationWeather, error) {
	if payload == nil || payload.Current == nil {
		return nil, ErrNoCurrentData
	}
	series := payload.Hourly
	if err := series.Validate(); err != nil {
		return nil, err
	}

	snap := payload.Current
	var target *time.Time
	if !snap.Timestamp.IsZero() {
		ts := snap.Timestamp
		target = &ts
	}
	idx, method := n.resolver.resolve(series.Time, target)

	current := CurrentConditions{
		Timestamp:     snap.Timestamp,
		Temperature:   snap.Temperature,
		WindSpeed:     snap.WindSpeed,
		ConditionCode: snap.ConditionCode,
		Condition:     ConditionForCode(snap.ConditionCode),
		Description:   DescribeCode(snap.ConditionCode),
	}
	if idx != NotFound {
		precip := series.zeroAt(ParamPrecipitation, idx)
		rain := series.zeroAt(ParamRain, idx)
		current.Humidity = series.At(ParamHumidity, idx)
		current.Precipitation = &precip
		current.Rain = &rain
		current.Pressure = series.At(ParamPressure, idx)
		current.CloudCover = series.At(ParamCloudCover, idx)
	}

	forecast := BuildForecastWindow(series, idx)

	var elevation *float64
	if payload.Elevation != nil {
		e := *payload.Elevation
		elevation = &e
	}

	return &LocationWeather{
		Current:   current,
		Forecast:  forecast,
		Summary:   forecast.Summary(),
		Alignment: method,
		Elevation: elevation,
		Timezone:  payload.Timezone,
	}, nil
}
