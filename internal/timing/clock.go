// internal/timing/clock.go
package timing

import (
	"time"

	"golang.org/x/sys/unix"
)

// Clock is the time source for sleeps and deferred deadlines.
// NowNanos must be monotonic.
type Clock interface {
	NowNanos() int64
	Sleep(d time.Duration)
}

// SystemClock reads CLOCK_MONOTONIC and sleeps with nanosleep(2).
func SystemClock() Clock {
	return monoClock{}
}

type monoClock struct{}

func (monoClock) NowNanos() int64 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		// Go's runtime clock is monotonic too; only the epoch differs.
		return int64(time.Since(processStart))
	}
	return ts.Nano()
}

// Sleep blocks the calling thread for d, resuming after EINTR
// with whatever was left.
func (monoClock) Sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	req := unix.NsecToTimespec(d.Nanoseconds())
	for {
		var rem unix.Timespec
		err := unix.Nanosleep(&req, &rem)
		if err != unix.EINTR {
			return
		}
		req = rem
	}
}

var processStart = time.Now()
