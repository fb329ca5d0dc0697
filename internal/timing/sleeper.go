// internal/timing/sleeper.go
package timing

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/tamzrod/ddcpacer/internal/display"
	"github.com/tamzrod/ddcpacer/internal/sleepevent"
)

// Device is the display reference the timing layer needs:
// its transport tag and its persistent next-I/O anchor.
type Device interface {
	IOMode() display.IOMode
	NextIOAfter() *display.Anchor
	String() string
}

// FeedbackController maintains the dynamic adjustment factor.
// It consumes the device and the nominal delay and returns a
// non-negative multiplicative factor.
type FeedbackController interface {
	UpdateAndGetAdjustmentFactor(dev Device, nominalMillis int) float64
}

// EventRecorder counts sleep events. Fire-and-forget.
type EventRecorder interface {
	RecordEvent(ev sleepevent.Event)
}

// Options configures a Sleeper. Zero value is usable.
type Options struct {
	Clock         Clock
	Feedback      FeedbackController
	Recorder      EventRecorder
	Logger        *slog.Logger
	DeferredSleep bool
}

// Sleeper computes protocol delays and either sleeps or defers them.
// One Sleeper is shared by all sessions; per-worker state lives in Session.
type Sleeper struct {
	clock    Clock
	feedback FeedbackController
	recorder EventRecorder
	log      *slog.Logger

	deferred atomic.Bool
}

func NewSleeper(opts Options) *Sleeper {
	s := &Sleeper{
		clock:    opts.Clock,
		feedback: opts.Feedback,
		recorder: opts.Recorder,
		log:      opts.Logger,
	}
	if s.clock == nil {
		s.clock = SystemClock()
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	s.deferred.Store(opts.DeferredSleep)
	return s
}

// SetDeferredSleepEnabled returns the previous setting.
// Already stored anchors are not touched.
func (s *Sleeper) SetDeferredSleepEnabled(on bool) bool {
	old := s.deferred.Swap(on)
	if old != on {
		s.log.Debug("timing: deferred sleep toggled", "enabled", on)
	}
	return old
}

func (s *Sleeper) IsDeferredSleepEnabled() bool {
	return s.deferred.Load()
}

// Decision is the outcome of one delay computation.
type Decision struct {
	Event         sleepevent.Event
	NominalMillis int
	Millis        int // truncated final delay
	Dynamic       bool
	Factor        float64 // adjustment factor or multiplier count, whichever applied
	Deferred      bool
}

// Delay resolves the final delay for ev without sleeping.
// It refreshes the session's adjustment factor when dynamic mode is on.
func (s *Sleeper) Delay(sess *Session, dev Device, ev sleepevent.Event, overrideMillis int) (Decision, error) {
	nominal, err := sleepevent.Lookup(dev.IOMode(), ev, overrideMillis)
	if err != nil {
		return Decision{}, err
	}

	d := Decision{
		Event:         ev,
		NominalMillis: nominal.Millis,
		Dynamic:       sess.DynamicEnabled(),
		Deferred:      nominal.Deferrable && s.IsDeferredSleepEnabled(),
	}

	var adjusted float64
	if d.Dynamic {
		if s.feedback != nil {
			sess.setAdjustmentFactor(s.feedback.UpdateAndGetAdjustmentFactor(dev, nominal.Millis))
		}
		d.Factor = sess.AdjustmentFactor()
		adjusted = d.Factor * sess.MultiplierFactor() * float64(nominal.Millis)
	} else {
		d.Factor = float64(sess.MultiplierCount())
		adjusted = d.Factor * sess.MultiplierFactor() * float64(nominal.Millis)
	}

	d.Millis = int(adjusted)
	if d.Millis < 0 {
		d.Millis = 0
	}
	return d, nil
}

// PerformTimedSleep applies the delay owed after ev on dev.
// Deferrable delays are recorded on the device anchor when deferred
// sleep is enabled; everything else sleeps now.
func (s *Sleeper) PerformTimedSleep(sess *Session, dev Device, ev sleepevent.Event, overrideMillis int, site CallSite) error {
	d, err := s.Delay(sess, dev, ev, overrideMillis)
	if err != nil {
		cerr := &ContractError{Op: "PerformTimedSleep", Device: dev.String(), Site: site, Err: err}
		s.log.Error("timing: rejected sleep request",
			"event", ev,
			"override_ms", overrideMillis,
			"site", site.String(),
			"device", dev.String(),
			"error", err,
		)
		return cerr
	}

	if s.recorder != nil {
		s.recorder.RecordEvent(ev)
	}

	s.log.Debug("timing: sleep computed",
		"session", sess.ID(),
		"device", dev.String(),
		"event", ev,
		"nominal_ms", d.NominalMillis,
		"multiplier_factor", sess.MultiplierFactor(),
		"dynamic", d.Dynamic,
		"factor", d.Factor,
		"final_ms", d.Millis,
		"deferred", d.Deferred,
		"site", site.String(),
	)

	if d.Deferred {
		s.Defer(dev, d.Millis)
		return nil
	}
	s.sleepMillis(d.Millis, fmt.Sprintf("event %s", ev), site)
	return nil
}

// Defer records that no bus operation may start on dev before
// now+millis. An existing later deadline is kept.
func (s *Sleeper) Defer(dev Device, millis int) {
	if millis < 0 {
		millis = 0
	}
	deadline := s.clock.NowNanos() + int64(millis)*int64(time.Millisecond)
	if dev.NextIOAfter().Raise(deadline) {
		s.log.Debug("timing: deferred sleep set", "device", dev.String(), "delay_ms", millis, "next_io_after_ns", deadline)
	}
}

// HonorDeferredWait blocks until dev's anchor has passed.
// Callers invoke it before every bus operation.
func (s *Sleeper) HonorDeferredWait(dev Device, site CallSite) {
	now := s.clock.NowNanos()
	next := dev.NextIOAfter().Load()
	if next <= now {
		s.log.Debug("timing: no deferred sleep necessary", "device", dev.String(), "site", site.String())
		return
	}
	remaining := int((next - now) / int64(time.Millisecond))
	s.sleepMillis(remaining, "deferred", site)
}

func (s *Sleeper) sleepMillis(millis int, reason string, site CallSite) {
	if millis <= 0 {
		return
	}
	s.log.Debug("timing: sleeping", "ms", millis, "reason", reason, "site", site.String())
	s.clock.Sleep(time.Duration(millis) * time.Millisecond)
}
