package weather

import (
	"time"
)

var day = time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

func at(hour int) time.Time {
	return day.Add(time.Duration(hour) * time.Hour)
}

func ptr(v float64) *float64 {
	return &v
}

// hourlyAxis returns n consecutive hours starting at hour start.
func hourlyAxis(start, n int) []time.Time {
	axis := make([]time.Time, n)
	for i := range axis {
		axis[i] = at(start + i)
	}
	return axis
}

// constantSeries returns n samples all equal to v.
func constantSeries(n int, v float64) []*float64 {
	out := make([]*float64, n)
	for i := range out {
		out[i] = ptr(v)
	}
	return out
}

// fullSeries builds a series with every parameter present.
func fullSeries(start, n int) RawSeries {
	s := RawSeries{Time: hourlyAxis(start, n), Values: map[Parameter][]*float64{}}
	for _, p := range HourlyParameters {
		s.Values[p] = make([]*float64, n)
		for i := 0; i < n; i++ {
			s.Values[p][i] = ptr(float64(i))
		}
	}
	return s
}
