// internal/sleepevent/sleepevent.go
package sleepevent

import (
	"errors"
	"fmt"

	"github.com/tamzrod/ddcpacer/internal/display"
)

// DDC/CI timing constants in milliseconds.
// These values come from the DDC/CI specification or from testing
// against real displays and MUST NOT be configurable.
const (
	// TimeoutMillisDefault is used for write-to-read turnaround.
	// 4.3 asks for at least 40 ms, 4.6 is unclear; 50 ms covers both.
	TimeoutMillisDefault = 50

	// TimeoutMillisPostNormalCommand follows Set VCP Feature (4.4).
	TimeoutMillisPostNormalCommand = 50

	// TimeoutMillisPostSaveSettings follows Save Current Settings (4.5).
	TimeoutMillisPostSaveSettings = 200

	// TimeoutMillisBetweenCapTableFragments paces capability and table segments (4.6, 4.8).
	TimeoutMillisBetweenCapTableFragments = 50

	// TimeoutMillisPostCapTableCommand follows a complete capabilities/table command.
	TimeoutMillisPostCapTableCommand = 50

	// TimeoutMillisNullResponseIncrement is the backoff step after a DDC null message.
	TimeoutMillisNullResponseIncrement = 100

	// TimeoutMillisPreMultiPartRead precedes a capabilities read. Empirical.
	TimeoutMillisPreMultiPartRead = 200
)

// Event classifies the protocol phase a sleep follows.
type Event int

const (
	WriteToRead Event = iota
	PostWrite
	PostRead
	PostSaveSettings
	MultiPartWriteToRead
	AfterEachCapTableSegment
	PostCapTableCommand
	DDCNull
	PreMultiPartRead
	Special

	eventCount
)

var eventNames = [eventCount]string{
	WriteToRead:              "write_to_read",
	PostWrite:                "post_write",
	PostRead:                 "post_read",
	PostSaveSettings:         "post_save_settings",
	MultiPartWriteToRead:     "multi_part_write_to_read",
	AfterEachCapTableSegment: "after_each_cap_table_segment",
	PostCapTableCommand:      "post_cap_table_command",
	DDCNull:                  "ddc_null",
	PreMultiPartRead:         "pre_multi_part_read",
	Special:                  "special",
}

func (e Event) String() string {
	if e.Valid() {
		return eventNames[e]
	}
	return fmt.Sprintf("event(%d)", int(e))
}

func (e Event) Valid() bool {
	return e >= 0 && e < eventCount
}

// All lists every event in declaration order.
func All() []Event {
	out := make([]Event, 0, eventCount)
	for e := Event(0); e < eventCount; e++ {
		out = append(out, e)
	}
	return out
}

var (
	// ErrOverrideMismatch: Special needs overrideMillis > 0, everything else needs 0.
	ErrOverrideMismatch = errors.New("sleepevent: override duration does not match event")

	// ErrNotBusTransport: the table only applies to bus-attached displays.
	ErrNotBusTransport = errors.New("sleepevent: timing policy called for non-i2c transport")

	ErrUnknownEvent = errors.New("sleepevent: unknown event")
)

// Nominal is the policy's answer for one event.
type Nominal struct {
	Millis     int
	Deferrable bool
}

// CheckOverride validates the event/override pairing.
func CheckOverride(e Event, overrideMillis int) error {
	if !e.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownEvent, int(e))
	}
	if e == Special {
		if overrideMillis <= 0 {
			return fmt.Errorf("%w: %s requires override > 0, got %d", ErrOverrideMismatch, e, overrideMillis)
		}
		return nil
	}
	if overrideMillis != 0 {
		return fmt.Errorf("%w: %s requires override 0, got %d", ErrOverrideMismatch, e, overrideMillis)
	}
	return nil
}

// Lookup maps an event to its nominal delay for the given transport.
func Lookup(mode display.IOMode, e Event, overrideMillis int) (Nominal, error) {
	if err := CheckOverride(e, overrideMillis); err != nil {
		return Nominal{}, err
	}
	if mode != display.ModeI2C {
		return Nominal{}, fmt.Errorf("%w: %s", ErrNotBusTransport, mode)
	}

	switch e {
	case WriteToRead:
		return Nominal{Millis: TimeoutMillisDefault}, nil
	case PostWrite, PostRead:
		return Nominal{Millis: TimeoutMillisPostNormalCommand, Deferrable: true}, nil
	case PostSaveSettings:
		return Nominal{Millis: TimeoutMillisPostSaveSettings, Deferrable: true}, nil
	case MultiPartWriteToRead:
		return Nominal{Millis: TimeoutMillisDefault}, nil
	case AfterEachCapTableSegment:
		return Nominal{Millis: TimeoutMillisBetweenCapTableFragments}, nil
	case PostCapTableCommand:
		return Nominal{Millis: TimeoutMillisPostCapTableCommand, Deferrable: true}, nil
	case DDCNull:
		return Nominal{Millis: TimeoutMillisNullResponseIncrement}, nil
	case PreMultiPartRead:
		return Nominal{Millis: TimeoutMillisPreMultiPartRead}, nil
	default: // Special
		return Nominal{Millis: overrideMillis}, nil
	}
}
