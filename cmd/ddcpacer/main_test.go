package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/tamzrod/ddcpacer/internal/poller"
	"github.com/tamzrod/ddcpacer/internal/status"
)

type fakeData struct {
	mu  sync.Mutex
	got []poller.PollResult
}

func (f *fakeData) Write(res poller.PollResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, res)
	return nil
}

type fakeStatus struct {
	mu   sync.Mutex
	snap []status.Snapshot
}

func (f *fakeStatus) WriteStatus(s status.Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snap = append(f.snap, s)
	return nil
}

func (f *fakeStatus) last() (status.Snapshot, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap[len(f.snap)-1], len(f.snap)
}

func TestOrchestrator_DeliversDataAndStatus(t *testing.T) {
	data := &fakeData{}
	st := &fakeStatus{}
	o := &orchestrator{
		displayID: "d1",
		data:      data,
		status:    st,
		log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	ctx, cancel := context.WithCancel(context.Background())
	in := make(chan poller.PollResult)
	done := make(chan error, 1)
	go func() { done <- o.run(ctx, in) }()

	in <- poller.PollResult{DisplayID: "d1", At: time.Now(), Err: errors.New("nack"), LastStatus: -6, MultiplierCount: 2, AdjustmentFactor: 1}
	in <- poller.PollResult{DisplayID: "d1", At: time.Now(), MultiplierCount: 1, AdjustmentFactor: 1}
	cancel()

	if err := <-done; err != nil {
		t.Fatalf("run err=%v", err)
	}

	if len(data.got) != 2 {
		t.Fatalf("expected 2 data deliveries, got %d", len(data.got))
	}

	// boot snapshot + one per result (plus any second ticks)
	s, n := st.last()
	if n < 3 {
		t.Fatalf("expected at least 3 status writes, got %d", n)
	}
	if st.snap[0].Health != status.HealthUnknown {
		t.Fatalf("first status must be the boot snapshot, got %+v", st.snap[0])
	}
	if s.Health != status.HealthOK || s.MultiplierCount != 1 {
		t.Fatalf("last status=%+v", s)
	}
}

func TestNewLogger_Levels(t *testing.T) {
	ctx := context.Background()
	if !newLogger("debug").Enabled(ctx, slog.LevelDebug) {
		t.Fatalf("debug level not enabled")
	}
	if newLogger("").Enabled(ctx, slog.LevelDebug) {
		t.Fatalf("default level must be info")
	}
	if newLogger("error").Enabled(ctx, slog.LevelWarn) {
		t.Fatalf("error level must suppress warn")
	}
}
