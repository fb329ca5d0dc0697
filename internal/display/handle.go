// internal/display/handle.go
package display

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// Handle is an open bus file for one display.
// Timing state lives on the Ref, never on the Handle.
type Handle struct {
	ref *Ref
	fd  int
}

// Open opens the display's bus device read/write.
func Open(ref *Ref) (*Handle, error) {
	if ref == nil {
		return nil, errors.New("display: nil ref")
	}
	if ref.Mode != ModeI2C {
		return nil, fmt.Errorf("display: %s: open not supported for %s", ref.ID, ref.Mode)
	}

	fd, err := unix.Open(ref.DevicePath(), unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("display: open %s: %w", ref.DevicePath(), err)
	}
	return &Handle{ref: ref, fd: fd}, nil
}

// NewHandle wraps an already open descriptor.
func NewHandle(ref *Ref, fd int) *Handle {
	return &Handle{ref: ref, fd: fd}
}

func (h *Handle) Ref() *Ref { return h.ref }

func (h *Handle) Fd() int { return h.fd }

func (h *Handle) IOMode() IOMode { return h.ref.Mode }

func (h *Handle) NextIOAfter() *Anchor { return h.ref.NextIOAfter() }

func (h *Handle) String() string {
	return fmt.Sprintf("%s fd=%d", h.ref, h.fd)
}

// Close releases the descriptor. Safe to call twice.
func (h *Handle) Close() error {
	if h == nil || h.fd < 0 {
		return nil
	}
	err := unix.Close(h.fd)
	h.fd = -1
	return err
}
