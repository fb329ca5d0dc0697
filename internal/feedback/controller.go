// internal/feedback/controller.go
package feedback

import (
	"log/slog"
	"sync"

	"github.com/eapache/queue"

	"github.com/tamzrod/ddcpacer/internal/display"
	"github.com/tamzrod/ddcpacer/internal/timing"
)

// Config tunes the controller. Zero fields take DefaultConfig values.
type Config struct {
	Window         int     // outcomes kept per display
	MinSamples     int     // no adjustment below this many outcomes
	CheckInterval  int     // re-evaluate every N factor requests
	ErrorThreshold float64 // error rate above which delays grow
	StepUp         float64
	StepDown       float64
	MinFactor      float64
	MaxFactor      float64
}

func DefaultConfig() Config {
	return Config{
		Window:         30,
		MinSamples:     5,
		CheckInterval:  3,
		ErrorThreshold: 0.1,
		StepUp:         1.5,
		StepDown:       0.9,
		MinFactor:      0.2,
		MaxFactor:      3.0,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Window <= 0 {
		c.Window = d.Window
	}
	if c.MinSamples <= 0 {
		c.MinSamples = d.MinSamples
	}
	if c.MinSamples > c.Window {
		c.MinSamples = c.Window
	}
	if c.CheckInterval <= 0 {
		c.CheckInterval = d.CheckInterval
	}
	if c.ErrorThreshold <= 0 {
		c.ErrorThreshold = d.ErrorThreshold
	}
	if c.StepUp <= 1 {
		c.StepUp = d.StepUp
	}
	if c.StepDown <= 0 || c.StepDown >= 1 {
		c.StepDown = d.StepDown
	}
	if c.MinFactor <= 0 {
		c.MinFactor = d.MinFactor
	}
	if c.MaxFactor < c.MinFactor {
		c.MaxFactor = d.MaxFactor
	}
	return c
}

type deviceState struct {
	outcomes *queue.Queue // bool, oldest first
	failures int
	calls    int
	factor   float64
}

// Controller derives a per-display adjustment factor from a sliding
// window of exchange outcomes. Safe for concurrent use.
type Controller struct {
	cfg Config
	log *slog.Logger

	mu      sync.Mutex
	devices map[*display.Anchor]*deviceState
}

func New(cfg Config, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	return &Controller{
		cfg:     cfg.withDefaults(),
		log:     log,
		devices: make(map[*display.Anchor]*deviceState),
	}
}

// state must be called with mu held.
func (c *Controller) state(dev timing.Device) *deviceState {
	key := dev.NextIOAfter()
	st, ok := c.devices[key]
	if !ok {
		st = &deviceState{outcomes: queue.New(), factor: 1.0}
		c.devices[key] = st
	}
	return st
}

// RecordOutcome adds one exchange result for dev.
func (c *Controller) RecordOutcome(dev timing.Device, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := c.state(dev)
	st.outcomes.Add(ok)
	if !ok {
		st.failures++
	}
	for st.outcomes.Length() > c.cfg.Window {
		if !st.outcomes.Remove().(bool) {
			st.failures--
		}
	}
}

// UpdateAndGetAdjustmentFactor implements timing.FeedbackController.
func (c *Controller) UpdateAndGetAdjustmentFactor(dev timing.Device, nominalMillis int) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := c.state(dev)
	st.calls++
	if st.calls%c.cfg.CheckInterval != 0 {
		return st.factor
	}

	n := st.outcomes.Length()
	if n < c.cfg.MinSamples {
		return st.factor
	}

	old := st.factor
	rate := float64(st.failures) / float64(n)
	switch {
	case rate > c.cfg.ErrorThreshold:
		st.factor = min(st.factor*c.cfg.StepUp, c.cfg.MaxFactor)
	case st.failures == 0:
		st.factor = max(st.factor*c.cfg.StepDown, c.cfg.MinFactor)
	}

	if st.factor != old {
		c.log.Debug("feedback: adjustment factor changed",
			"device", dev.String(),
			"nominal_ms", nominalMillis,
			"error_rate", rate,
			"samples", n,
			"old", old,
			"new", st.factor,
		)
	}
	return st.factor
}

// Factor returns the current factor for dev without updating it.
func (c *Controller) Factor(dev timing.Device) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state(dev).factor
}

// ErrorRate returns failures/outcomes in the current window.
func (c *Controller) ErrorRate(dev timing.Device) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.state(dev)
	if st.outcomes.Length() == 0 {
		return 0
	}
	return float64(st.failures) / float64(st.outcomes.Length())
}
