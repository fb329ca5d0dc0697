// internal/stats/recorder.go
package stats

import (
	"sync/atomic"

	"github.com/tamzrod/ddcpacer/internal/sleepevent"
)

// Recorder counts sleep events. Safe for concurrent use.
type Recorder struct {
	counts [16]atomic.Uint64
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

// RecordEvent implements timing.EventRecorder.
func (r *Recorder) RecordEvent(ev sleepevent.Event) {
	if !ev.Valid() || int(ev) >= len(r.counts) {
		return
	}
	r.counts[ev].Add(1)
}

// Count returns how often ev was recorded.
func (r *Recorder) Count(ev sleepevent.Event) uint64 {
	if !ev.Valid() || int(ev) >= len(r.counts) {
		return 0
	}
	return r.counts[ev].Load()
}

// Snapshot returns counts keyed by event name. Zero counts are included.
func (r *Recorder) Snapshot() map[string]uint64 {
	out := make(map[string]uint64)
	for _, ev := range sleepevent.All() {
		out[ev.String()] = r.Count(ev)
	}
	return out
}

// Total is the sum over all events.
func (r *Recorder) Total() uint64 {
	var n uint64
	for _, ev := range sleepevent.All() {
		n += r.Count(ev)
	}
	return n
}
