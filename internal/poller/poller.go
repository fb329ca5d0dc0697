// internal/poller/poller.go
package poller

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tamzrod/ddcpacer/internal/ddc"
	"github.com/tamzrod/ddcpacer/internal/i2c"
	"github.com/tamzrod/ddcpacer/internal/sleepevent"
	"github.com/tamzrod/ddcpacer/internal/timing"
)

// opcodeSaveSettings is the DDC/CI "save current settings" command.
const opcodeSaveSettings byte = 0x0c

// Bus abstracts the raw I2C operations needed by the poller.
// *i2c.Dispatcher satisfies it.
type Bus interface {
	Write(fd int, addr uint16, data []byte) i2c.Status
	Read(fd int, addr uint16, bytewise bool, n int) ([]byte, i2c.Status)
}

// Timer applies protocol delays. *timing.Sleeper satisfies it.
type Timer interface {
	PerformTimedSleep(sess *timing.Session, dev timing.Device, ev sleepevent.Event, overrideMillis int, site timing.CallSite) error
	HonorDeferredWait(dev timing.Device, site timing.CallSite)
}

// OutcomeRecorder receives one outcome per poll cycle.
// *feedback.Controller satisfies it.
type OutcomeRecorder interface {
	RecordOutcome(dev timing.Device, ok bool)
}

// Device is an open display: a timing device plus its bus descriptor.
type Device interface {
	timing.Device
	Fd() int
}

// Config is the minimal runtime config the poller needs.
type Config struct {
	DisplayID    string
	Interval     time.Duration
	Requests     []Request
	SlaveAddress uint16
	ReadBytewise bool
}

// Poller is a clock-driven DDC/CI requester for one display.
// A Poller owns its session; it must not be shared between goroutines.
type Poller struct {
	cfg      Config
	dev      Device
	bus      Bus
	timer    Timer
	sess     *timing.Session
	outcomes OutcomeRecorder
	log      *slog.Logger
}

// New creates a poller with immutable config.
// outcomes and log may be nil.
func New(cfg Config, dev Device, bus Bus, timer Timer, sess *timing.Session, outcomes OutcomeRecorder, log *slog.Logger) (*Poller, error) {
	if cfg.DisplayID == "" {
		return nil, errors.New("poller: display id required")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("poller: interval must be > 0")
	}
	if len(cfg.Requests) == 0 {
		return nil, errors.New("poller: at least one request required")
	}
	if dev == nil || bus == nil || timer == nil || sess == nil {
		return nil, errors.New("poller: device, bus, timer and session are required")
	}
	if cfg.SlaveAddress == 0 {
		cfg.SlaveAddress = ddc.SlaveAddress
	}
	if log == nil {
		log = slog.Default()
	}
	return &Poller{
		cfg:      cfg,
		dev:      dev,
		bus:      bus,
		timer:    timer,
		sess:     sess,
		outcomes: outcomes,
		log:      log.With("display", cfg.DisplayID),
	}, nil
}

// Session returns the poller's timing session.
func (p *Poller) Session() *timing.Session { return p.sess }

// PollOnce performs exactly one poll cycle.
// All-or-nothing: any failure aborts the cycle.
// A failed cycle raises the retry multiplier; a clean one resets it.
func (p *Poller) PollOnce() PollResult {
	res := PollResult{
		DisplayID: p.cfg.DisplayID,
		At:        time.Now(),
	}

	var blocks []BlockResult

	for i, req := range p.cfg.Requests {
		b, code, err := p.exchange(req)
		if err != nil {
			res.LastStatus = code
			res.Err = fmt.Errorf("poller: request %d: %w", i, err)
			p.finish(&res, false)
			return res
		}
		blocks = append(blocks, b)
	}

	// Commit only if all exchanges succeeded
	res.Blocks = blocks
	p.finish(&res, true)
	return res
}

func (p *Poller) finish(res *PollResult, ok bool) {
	if ok {
		p.sess.ResetMultiplierCount()
	} else {
		n := p.sess.IncrementMultiplierCount()
		p.log.Warn("poller: cycle failed", "err", res.Err, "status", res.LastStatus, "multiplier_count", n)
	}
	if p.outcomes != nil {
		p.outcomes.RecordOutcome(p.dev, ok)
	}
	res.MultiplierCount = p.sess.MultiplierCount()
	res.AdjustmentFactor = p.sess.AdjustmentFactor()
}

// exchange runs one write (and optional read) with the delays DDC/CI requires.
func (p *Poller) exchange(req Request) (BlockResult, int, error) {
	site := timing.Caller()
	fd := p.dev.Fd()
	addr := p.cfg.SlaveAddress
	b := BlockResult{Opcode: req.Payload[0], Size: req.ReplyBytes}

	p.timer.HonorDeferredWait(p.dev, site)

	pkt, err := ddc.Encode(req.Payload)
	if err != nil {
		return b, ddc.CodeMalformed, err
	}
	if rc := p.bus.Write(fd, addr, pkt); !rc.OK() {
		return b, int(rc), rc.Err()
	}

	if req.ReplyBytes == 0 {
		ev := sleepevent.PostWrite
		if b.Opcode == opcodeSaveSettings {
			ev = sleepevent.PostSaveSettings
		}
		return b, 0, p.sleep(ev, site)
	}

	if err := p.sleep(sleepevent.WriteToRead, site); err != nil {
		return b, 0, err
	}

	raw, rc := p.bus.Read(fd, addr, p.cfg.ReadBytewise, ddc.ReplySize(req.ReplyBytes))
	if !rc.OK() {
		return b, int(rc), rc.Err()
	}
	if err := p.sleep(sleepevent.PostRead, site); err != nil {
		return b, 0, err
	}

	payload, err := ddc.Decode(raw)
	if err != nil {
		if errors.Is(err, ddc.ErrNullResponse) {
			if serr := p.sleep(sleepevent.DDCNull, site); serr != nil {
				return b, 0, serr
			}
		}
		return b, ddc.Code(err), err
	}

	b.Payload = payload
	return b, 0, nil
}

func (p *Poller) sleep(ev sleepevent.Event, site timing.CallSite) error {
	return p.timer.PerformTimedSleep(p.sess, p.dev, ev, 0, site)
}
