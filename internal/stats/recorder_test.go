package stats

import (
	"sync"
	"testing"

	"github.com/tamzrod/ddcpacer/internal/sleepevent"
)

func TestRecorder_Counts(t *testing.T) {
	r := NewRecorder()

	r.RecordEvent(sleepevent.PostWrite)
	r.RecordEvent(sleepevent.PostWrite)
	r.RecordEvent(sleepevent.WriteToRead)
	r.RecordEvent(sleepevent.Event(-1)) // ignored

	if r.Count(sleepevent.PostWrite) != 2 {
		t.Fatalf("post_write=%d want=2", r.Count(sleepevent.PostWrite))
	}
	if r.Total() != 3 {
		t.Fatalf("total=%d want=3", r.Total())
	}

	snap := r.Snapshot()
	if len(snap) != len(sleepevent.All()) {
		t.Fatalf("snapshot has %d keys, want %d", len(snap), len(sleepevent.All()))
	}
	if snap["write_to_read"] != 1 {
		t.Fatalf("snapshot write_to_read=%d", snap["write_to_read"])
	}
}

func TestRecorder_Concurrent(t *testing.T) {
	r := NewRecorder()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.RecordEvent(sleepevent.PostRead)
			}
		}()
	}
	wg.Wait()

	if r.Count(sleepevent.PostRead) != 800 {
		t.Fatalf("post_read=%d want=800", r.Count(sleepevent.PostRead))
	}
}
