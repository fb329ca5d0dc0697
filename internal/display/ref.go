// internal/display/ref.go
package display

import (
	"fmt"
	"sync/atomic"
)

// IOMode identifies the transport a display is reached through.
type IOMode int

const (
	ModeI2C IOMode = iota
	ModeUSB
)

func (m IOMode) String() string {
	switch m {
	case ModeI2C:
		return "i2c"
	case ModeUSB:
		return "usb"
	default:
		return fmt.Sprintf("iomode(%d)", int(m))
	}
}

// Anchor is the earliest monotonic time (ns) the next bus operation
// on a display may start. It only ever moves forward.
type Anchor struct {
	ns atomic.Int64
}

// Load returns the stored deadline in nanoseconds (0 = none).
func (a *Anchor) Load() int64 {
	return a.ns.Load()
}

// Raise stores ns if it is strictly later than the current value.
// Reports whether the anchor moved.
func (a *Anchor) Raise(ns int64) bool {
	for {
		cur := a.ns.Load()
		if ns <= cur {
			return false
		}
		if a.ns.CompareAndSwap(cur, ns) {
			return true
		}
	}
}

// Ref is the long-lived reference to one display.
// It outlives any open Handle, so the anchor survives close/reopen.
type Ref struct {
	ID    string
	BusNo int
	Mode  IOMode

	anchor Anchor
}

// NewI2CRef returns a reference to a display on /dev/i2c-<busNo>.
func NewI2CRef(id string, busNo int) *Ref {
	return &Ref{ID: id, BusNo: busNo, Mode: ModeI2C}
}

func (r *Ref) IOMode() IOMode { return r.Mode }

func (r *Ref) NextIOAfter() *Anchor { return &r.anchor }

// DevicePath is the character device backing the display's bus.
func (r *Ref) DevicePath() string {
	return fmt.Sprintf("/dev/i2c-%d", r.BusNo)
}

func (r *Ref) String() string {
	if r == nil {
		return "display(nil)"
	}
	if r.Mode == ModeI2C {
		return fmt.Sprintf("display(%s bus=%d)", r.ID, r.BusNo)
	}
	return fmt.Sprintf("display(%s %s)", r.ID, r.Mode)
}
