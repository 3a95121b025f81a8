package weather

// WindowSize is the maximum number of hourly samples in a forecast window.
const WindowSize = 24

// BuildForecastWindow extracts up to WindowSize samples from series starting
// at start. It returns an empty window when start is NotFound and stops early
// when the series runs out; it never pads.
//
// Precipitation, rain and snowfall default to zero when absent so they can be summed.
// Temperature, humidity, wind speed and cloud cover stay nil.
func BuildForecastWindow(series RawSeries, start int) ForecastWindow {
	if start < 0 || start >= series.Len() {
		return ForecastWindow{}
	}

	n := min(WindowSize, series.Len()-start)
	window := make(ForecastWindow, 0, n)
	for offset := 0; offset < n; offset++ {
		i := start + offset
		ts := series.Time[i]
		window = append(window, ForecastSample{
			Time:          ts,
			Hour:          ts.Hour(),
			Temperature:   series.At(ParamTemperature, i),
			Humidity:      series.At(ParamHumidity, i),
			WindSpeed:     series.At(ParamWindSpeed, i),
			Precipitation: series.zeroAt(ParamPrecipitation, i),
			Rain:          series.zeroAt(ParamRain, i),
			Snowfall:      series.zeroAt(ParamSnowfall, i),
			CloudCover:    series.At(ParamCloudCover, i),
		})
	}
	return window
}
