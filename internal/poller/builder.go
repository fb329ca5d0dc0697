// internal/poller/builder.go
package poller

import (
	"log/slog"
	"time"

	cfg "github.com/tamzrod/ddcpacer/internal/config"
	"github.com/tamzrod/ddcpacer/internal/display"
	"github.com/tamzrod/ddcpacer/internal/timing"
)

// Deps are the process-wide collaborators shared by every poller.
type Deps struct {
	Bus          Bus
	Timer        Timer
	Outcomes     OutcomeRecorder
	Logger       *slog.Logger
	Session      timing.SessionConfig
	ReadBytewise bool
}

// Build opens the display's bus device and constructs its Poller.
// The returned closer releases the device descriptor.
// The display reference is returned so other components can share its anchor.
func Build(d cfg.DisplayConfig, deps Deps) (*Poller, *display.Ref, func() error, error) {
	ref := display.NewI2CRef(d.ID, d.Bus)

	h, err := display.Open(ref)
	if err != nil {
		return nil, nil, nil, err
	}

	reqs := make([]Request, 0, len(d.Requests))
	for _, r := range d.Requests {
		payload := make([]byte, len(r.Payload))
		for i, v := range r.Payload {
			payload[i] = byte(v)
		}
		reqs = append(reqs, Request{
			Payload:    payload,
			ReplyBytes: r.ReplyBytes,
		})
	}

	p, err := New(
		Config{
			DisplayID:    d.ID,
			Interval:     time.Duration(d.Poll.IntervalMs) * time.Millisecond,
			Requests:     reqs,
			SlaveAddress: d.SlaveAddress,
			ReadBytewise: deps.ReadBytewise,
		},
		h,
		deps.Bus,
		deps.Timer,
		timing.NewSession(deps.Session),
		deps.Outcomes,
		deps.Logger,
	)
	if err != nil {
		_ = h.Close()
		return nil, nil, nil, err
	}

	return p, ref, h.Close, nil
}
