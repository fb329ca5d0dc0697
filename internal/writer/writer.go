// internal/writer/writer.go
package writer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tamzrod/ddcpacer/internal/poller"
)

// endpointClient is the exact contract the writers use.
// *modbus.EndpointClient satisfies it.
type endpointClient interface {
	WriteRegisters(unitID uint8, addr uint16, regs []uint16) error
}

type modbusWriter struct {
	plan    Plan
	clients map[string]endpointClient
}

// New returns a Writer that publishes reply bytes, one register per byte.
func New(plan Plan, clients map[string]endpointClient) Writer {
	return &modbusWriter{
		plan:    plan,
		clients: clients,
	}
}

// Write publishes a successful cycle. Failed cycles write nothing;
// targets keep the last good values and status carries the failure.
func (w *modbusWriter) Write(res poller.PollResult) error {
	if res.Err != nil {
		return nil
	}

	regs := replyRegisters(res.Blocks)
	if len(regs) == 0 {
		return nil
	}

	var errs []string

	for _, tgt := range w.plan.Targets {
		cli := w.clients[tgt.Endpoint]
		if cli == nil {
			errs = append(errs, fmt.Sprintf(
				"writer: missing client for endpoint %s",
				tgt.Endpoint,
			))
			continue
		}

		if err := cli.WriteRegisters(tgt.UnitID, tgt.Address, regs); err != nil {
			errs = append(errs, fmt.Sprintf(
				"writer: ep=%s unit=%d addr=%d qty=%d err=%v",
				tgt.Endpoint, tgt.UnitID, tgt.Address, len(regs), err,
			))
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, " | "))
	}

	return nil
}

// replyRegisters lays blocks out back to back. Each block occupies
// exactly Size registers; short payloads are zero-padded.
func replyRegisters(blocks []poller.BlockResult) []uint16 {
	n := 0
	for _, b := range blocks {
		n += b.Size
	}

	regs := make([]uint16, n)
	off := 0
	for _, b := range blocks {
		for i := 0; i < b.Size && i < len(b.Payload); i++ {
			regs[off+i] = uint16(b.Payload[i])
		}
		off += b.Size
	}
	return regs
}
