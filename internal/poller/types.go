// internal/poller/types.go
package poller

import "time"

// Request is one raw DDC/CI request.
// ReplyBytes == 0 means write-only.
type Request struct {
	Payload    []byte
	ReplyBytes int
}

// BlockResult is the decoded reply to a single request.
type BlockResult struct {
	Opcode  byte
	Size    int    // requested reply bytes; 0 for write-only
	Payload []byte // nil for write-only requests
}

// PollResult is a snapshot produced by one poll cycle.
type PollResult struct {
	DisplayID string
	At        time.Time

	// LastStatus is the status of the failing exchange:
	// an i2c.Status or a ddc decode code. 0 means success.
	LastStatus int

	// Timing state after the cycle.
	MultiplierCount  int
	AdjustmentFactor float64

	Blocks []BlockResult
	Err    error // non-nil means the poll cycle failed
}
