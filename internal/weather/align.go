package weather

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// NotFound is the index returned when no alignment is possible.
const NotFound = -1

// AlignMethod records how an alignment index was chosen.
type AlignMethod string

const (
	AlignExact      AlignMethod = "exact"
	AlignNearestNow AlignMethod = "nearest_now"
	AlignNone       AlignMethod = "none"
)

// TimeIndexResolver finds the position on an hourly time axis that
// corresponds to a reported "current" instant.
type TimeIndexResolver struct {
	clock clockwork.Clock
}

// NewTimeIndexResolver creates a resolver reading wall-clock time from clock.
// A nil clock uses real time.
func NewTimeIndexResolver(clock clockwork.Clock) *TimeIndexResolver {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &TimeIndexResolver{clock: clock}
}

// Resolve returns the index of target on axis, or NotFound for an empty axis.
//
// An exact match against target wins (earliest index on duplicates).
// Otherwise, including when target is nil, the index nearest to the current
// wall-clock time is returned, not the one nearest to target. Equal distances
// resolve to the earliest index.
func (r *TimeIndexResolver) Resolve(axis []time.Time, target *time.Time) int {
	idx, _ := r.resolve(axis, target)
	return idx
}

func (r *TimeIndexResolver) resolve(axis []time.Time, target *time.Time) (int, AlignMethod) {
	if len(axis) == 0 {
		return NotFound, AlignNone
	}

	if target != nil {
		for i, ts := range axis {
			if ts.Equal(*target) {
				return i, AlignExact
			}
		}
	}

	// Full scan; the metric is distance to now, not axis position.
	now := r.clock.Now()
	best := 0
	bestDiff := absDuration(axis[0].Sub(now))
	for i := 1; i < len(axis); i++ {
		if d := absDuration(axis[i].Sub(now)); d < bestDiff {
			best = i
			bestDiff = d
		}
	}
	return best, AlignNearestNow
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
