// internal/status/tracker.go
package status

import (
	"math"
	"time"

	"github.com/tamzrod/ddcpacer/internal/poller"
)

// Tracker folds poll results into snapshots.
// It is owned by one display goroutine.
type Tracker struct {
	last       Snapshot
	errorSince time.Time
	inError    bool
}

// Current returns the latest snapshot without observing anything.
func (t *Tracker) Current() Snapshot { return t.last }

// Observe records one poll result and returns the resulting snapshot.
func (t *Tracker) Observe(res poller.PollResult) Snapshot {
	s := Snapshot{
		MultiplierCount:   clampU16(float64(res.MultiplierCount)),
		AdjustmentPercent: clampU16(math.Round(res.AdjustmentFactor * 100)),
	}

	if res.Err == nil {
		t.inError = false
		s.Health = HealthOK
		t.last = s
		return s
	}

	if !t.inError {
		t.inError = true
		t.errorSince = res.At
	}
	s.Health = HealthError
	s.LastStatusCode = clampU16(math.Abs(float64(res.LastStatus)))
	s.SecondsInError = clampU16(res.At.Sub(t.errorSince).Seconds())
	t.last = s
	return s
}

// Tick advances seconds_in_error while the display stays in error.
func (t *Tracker) Tick(now time.Time) Snapshot {
	if t.inError {
		t.last.SecondsInError = clampU16(now.Sub(t.errorSince).Seconds())
	}
	return t.last
}

// clampU16 saturates; status slots MUST NOT wrap.
func clampU16(v float64) uint16 {
	switch {
	case v <= 0:
		return 0
	case v >= math.MaxUint16:
		return math.MaxUint16
	default:
		return uint16(v)
	}
}
