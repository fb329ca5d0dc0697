// internal/i2c/status.go
package i2c

import (
	"errors"
	"fmt"
	"syscall"
)

// Status is the result of one bus transaction.
// 0 is success; negative values are errno values or DDC-range codes.
// Strategies never return a positive Status.
type Status int

const StatusOK Status = 0

// errno-backed statuses commonly seen on DDC buses.
const (
	StatusIO      Status = -Status(syscall.EIO)
	StatusNoAck   Status = -Status(syscall.ENXIO)
	StatusAgain   Status = -Status(syscall.EAGAIN)
	StatusBusy    Status = -Status(syscall.EBUSY)
	StatusInvalid Status = -Status(syscall.EINVAL)
	StatusNoSys   Status = -Status(syscall.ENOSYS)
	StatusTimeout Status = -Status(syscall.ETIMEDOUT)
)

// DDC-range statuses; below any errno.
const (
	statusDDCBase Status = -3000

	StatusShortWrite Status = statusDDCBase - 1
	StatusShortRead  Status = statusDDCBase - 2
)

func (s Status) OK() bool { return s == StatusOK }

func (s Status) String() string {
	switch {
	case s == StatusOK:
		return "OK"
	case s == StatusShortWrite:
		return "short write"
	case s == StatusShortRead:
		return "short read"
	case s < 0 && s > statusDDCBase:
		return fmt.Sprintf("%s (errno %d)", syscall.Errno(-s).Error(), int(-s))
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Err returns nil for StatusOK and a *StatusError otherwise.
func (s Status) Err() error {
	if s == StatusOK {
		return nil
	}
	return &StatusError{Status: s}
}

// StatusError lets a Status travel as an error.
// errors.Is(err, syscall.EBUSY) works for errno-backed statuses.
type StatusError struct {
	Status Status
}

func (e *StatusError) Error() string {
	return "i2c: " + e.Status.String()
}

func (e *StatusError) Unwrap() error {
	if e.Status < 0 && e.Status > statusDDCBase {
		return syscall.Errno(-e.Status)
	}
	return nil
}

// statusFromErr maps a syscall error to a Status.
func statusFromErr(err error) Status {
	if err == nil {
		return StatusOK
	}
	var errno syscall.Errno
	if errors.As(err, &errno) && errno != 0 {
		return -Status(errno)
	}
	return StatusIO
}
