// internal/writer/types.go
package writer

import "github.com/tamzrod/ddcpacer/internal/poller"

// Target is one Modbus destination for a display's reply bytes.
type Target struct {
	Endpoint string
	UnitID   uint8
	Address  uint16 // first holding register
}

// StatusPlan locates a display's status block.
type StatusPlan struct {
	Endpoint   string
	UnitID     uint8
	BaseSlot   uint16
	DeviceName string
}

// Plan is the fully-built write plan for one display.
type Plan struct {
	DisplayID string
	Targets   []Target
	Status    *StatusPlan // nil => status disabled
}

// Writer writes poll snapshots into targets.
type Writer interface {
	Write(res poller.PollResult) error
}
