// internal/poller/poller_test.go
package poller

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/tamzrod/ddcpacer/internal/ddc"
	"github.com/tamzrod/ddcpacer/internal/display"
	"github.com/tamzrod/ddcpacer/internal/i2c"
	"github.com/tamzrod/ddcpacer/internal/timing"
)

// ---- fakes ----

type fakeClock struct {
	now    int64
	sleeps []time.Duration
}

func (c *fakeClock) NowNanos() int64 { return c.now }

func (c *fakeClock) Sleep(d time.Duration) {
	c.sleeps = append(c.sleeps, d)
	c.now += int64(d)
}

type fakeBus struct {
	writes   [][]byte
	writeRC  i2c.Status
	readRC   i2c.Status
	reply    []byte // framed reply body; padded to the requested size
	lastAddr uint16
}

func (b *fakeBus) Write(_ int, addr uint16, data []byte) i2c.Status {
	b.lastAddr = addr
	b.writes = append(b.writes, append([]byte(nil), data...))
	return b.writeRC
}

func (b *fakeBus) Read(_ int, _ uint16, _ bool, n int) ([]byte, i2c.Status) {
	if b.readRC != i2c.StatusOK {
		return nil, b.readRC
	}
	out := make([]byte, n)
	copy(out, b.reply)
	return out, i2c.StatusOK
}

type fakeOutcomes struct {
	ok, failed int
}

func (f *fakeOutcomes) RecordOutcome(_ timing.Device, ok bool) {
	if ok {
		f.ok++
	} else {
		f.failed++
	}
}

// frame builds a display->host reply carrying payload.
func frame(payload []byte) []byte {
	out := []byte{0x6e, 0x80 | byte(len(payload))}
	out = append(out, payload...)
	cs := byte(0x50)
	for _, v := range out {
		cs ^= v
	}
	return append(out, cs)
}

var vcpReply = []byte{0x02, 0x00, 0x10, 0x00, 0x00, 0x64, 0x00, 0x32}

type rig struct {
	clock    *fakeClock
	bus      *fakeBus
	outcomes *fakeOutcomes
	sleeper  *timing.Sleeper
	ref      *display.Ref
	poller   *Poller
}

func newRig(t *testing.T, deferred bool, reqs ...Request) *rig {
	t.Helper()

	r := &rig{
		clock:    &fakeClock{now: 1_000_000_000},
		bus:      &fakeBus{reply: frame(vcpReply)},
		outcomes: &fakeOutcomes{},
		ref:      display.NewI2CRef("d1", 4),
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	r.sleeper = timing.NewSleeper(timing.Options{
		Clock:         r.clock,
		Logger:        log,
		DeferredSleep: deferred,
	})

	p, err := New(
		Config{DisplayID: "d1", Interval: time.Second, Requests: reqs},
		display.NewHandle(r.ref, 3),
		r.bus,
		r.sleeper,
		timing.NewSession(timing.SessionConfig{}),
		r.outcomes,
		log,
	)
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}
	r.poller = p
	return r
}

var (
	getBrightness = Request{Payload: []byte{0x01, 0x10}, ReplyBytes: 8}
	saveSettings  = Request{Payload: []byte{0x0c}}
)

// ---- tests ----

func TestNew_Validation(t *testing.T) {
	bus := &fakeBus{}
	h := display.NewHandle(display.NewI2CRef("d1", 1), 3)
	s := timing.NewSleeper(timing.Options{})
	sess := timing.NewSession(timing.SessionConfig{})

	cases := map[string]Config{
		"no id":       {Interval: time.Second, Requests: []Request{getBrightness}},
		"no interval": {DisplayID: "d1", Requests: []Request{getBrightness}},
		"no requests": {DisplayID: "d1", Interval: time.Second},
	}
	for name, c := range cases {
		if _, err := New(c, h, bus, s, sess, nil, nil); err == nil {
			t.Fatalf("%s: expected error, got nil", name)
		}
	}
}

func TestPollOnce_Success(t *testing.T) {
	r := newRig(t, false, getBrightness, saveSettings)

	res := r.poller.PollOnce()
	if res.Err != nil {
		t.Fatalf("PollOnce err=%v", res.Err)
	}
	if len(res.Blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(res.Blocks))
	}
	if !bytes.Equal(res.Blocks[0].Payload, vcpReply) {
		t.Fatalf("payload=%x want=%x", res.Blocks[0].Payload, vcpReply)
	}
	if res.Blocks[1].Payload != nil || res.Blocks[1].Opcode != 0x0c {
		t.Fatalf("write-only block=%+v", res.Blocks[1])
	}
	if r.bus.lastAddr != ddc.SlaveAddress {
		t.Fatalf("addr=0x%x want=0x%x", r.bus.lastAddr, ddc.SlaveAddress)
	}
	if !bytes.Equal(r.bus.writes[0], []byte{0x51, 0x82, 0x01, 0x10, 0xac}) {
		t.Fatalf("wire=%x", r.bus.writes[0])
	}

	// write->read 50, post read 50, post save settings 200
	want := []time.Duration{50 * time.Millisecond, 50 * time.Millisecond, 200 * time.Millisecond}
	if len(r.clock.sleeps) != len(want) {
		t.Fatalf("sleeps=%v want=%v", r.clock.sleeps, want)
	}
	for i := range want {
		if r.clock.sleeps[i] != want[i] {
			t.Fatalf("sleeps=%v want=%v", r.clock.sleeps, want)
		}
	}

	if r.outcomes.ok != 1 || res.MultiplierCount != 1 || res.AdjustmentFactor != 1.0 {
		t.Fatalf("outcomes=%+v result=%+v", r.outcomes, res)
	}
}

func TestPollOnce_DeferredSleep(t *testing.T) {
	r := newRig(t, true, getBrightness, saveSettings)

	res := r.poller.PollOnce()
	if res.Err != nil {
		t.Fatalf("PollOnce err=%v", res.Err)
	}

	// write->read sleeps now; post read is deferred and honored before the next write
	want := []time.Duration{50 * time.Millisecond, 50 * time.Millisecond}
	if len(r.clock.sleeps) != len(want) || r.clock.sleeps[0] != want[0] || r.clock.sleeps[1] != want[1] {
		t.Fatalf("sleeps=%v want=%v", r.clock.sleeps, want)
	}

	// post save settings stays pending on the display anchor
	if got, want := r.ref.NextIOAfter().Load(), r.clock.now+int64(200*time.Millisecond); got != want {
		t.Fatalf("anchor=%d want=%d", got, want)
	}
}

func TestPollOnce_FailureRaisesMultiplier(t *testing.T) {
	r := newRig(t, false, getBrightness)
	r.bus.writeRC = i2c.StatusNoAck

	res := r.poller.PollOnce()
	if res.Err == nil {
		t.Fatalf("expected error, got nil")
	}
	if res.Blocks != nil {
		t.Fatalf("failed cycle must not commit blocks")
	}
	if res.LastStatus != int(i2c.StatusNoAck) {
		t.Fatalf("LastStatus=%d want=%d", res.LastStatus, int(i2c.StatusNoAck))
	}
	var se *i2c.StatusError
	if !errors.As(res.Err, &se) {
		t.Fatalf("expected *i2c.StatusError, got %T", res.Err)
	}
	if res.MultiplierCount != 2 || r.outcomes.failed != 1 {
		t.Fatalf("multiplier=%d failed=%d", res.MultiplierCount, r.outcomes.failed)
	}

	// retry is paced by the raised multiplier
	r.bus.writeRC = i2c.StatusOK
	r.clock.sleeps = nil
	res = r.poller.PollOnce()
	if res.Err != nil {
		t.Fatalf("PollOnce err=%v", res.Err)
	}
	if r.clock.sleeps[0] != 100*time.Millisecond {
		t.Fatalf("write->read sleep=%v want=100ms", r.clock.sleeps[0])
	}
	if res.MultiplierCount != 1 {
		t.Fatalf("multiplier not reset: %d", res.MultiplierCount)
	}
}

func TestPollOnce_MultiplierCapped(t *testing.T) {
	r := newRig(t, false, getBrightness)
	r.bus.readRC = i2c.StatusBusy

	var res PollResult
	for i := 0; i < timing.MaxMultiplierCount+5; i++ {
		res = r.poller.PollOnce()
	}
	if res.MultiplierCount != timing.MaxMultiplierCount {
		t.Fatalf("multiplier=%d want=%d", res.MultiplierCount, timing.MaxMultiplierCount)
	}
}

func TestPollOnce_NullResponse(t *testing.T) {
	r := newRig(t, false, getBrightness)
	r.bus.reply = frame(nil)

	res := r.poller.PollOnce()
	if !errors.Is(res.Err, ddc.ErrNullResponse) {
		t.Fatalf("expected ErrNullResponse, got %v", res.Err)
	}
	if res.LastStatus != ddc.CodeNullResponse {
		t.Fatalf("LastStatus=%d", res.LastStatus)
	}

	// write->read 50, post read 50, null response 100
	last := r.clock.sleeps[len(r.clock.sleeps)-1]
	if len(r.clock.sleeps) != 3 || last != 100*time.Millisecond {
		t.Fatalf("sleeps=%v", r.clock.sleeps)
	}
}
