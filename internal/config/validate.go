// internal/config/validate.go
package config

import (
	"fmt"

	"github.com/tamzrod/ddcpacer/internal/ddc"
	"github.com/tamzrod/ddcpacer/internal/i2c"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	type span struct {
		start   uint32
		end     uint32
		display string
	}

	if cfg == nil {
		return fmt.Errorf("config: nil config")
	}

	// ------------------------------------------------------------
	// GLOBAL SETTINGS
	// ------------------------------------------------------------

	switch cfg.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q: must be debug, info, warn or error", cfg.Log.Level)
	}

	if cfg.Timing.SleepMultiplier < 0 {
		return fmt.Errorf("timing.sleep_multiplier must be >= 0, got %v", cfg.Timing.SleepMultiplier)
	}

	if _, err := i2c.ParseStrategy(cfg.I2C.IOStrategy); err != nil {
		return fmt.Errorf("i2c.io_strategy: %w", err)
	}

	if cfg.Feedback.Window < 0 || cfg.Feedback.MinSamples < 0 || cfg.Feedback.CheckInterval < 0 {
		return fmt.Errorf("feedback: window, min_samples and check_interval must be >= 0")
	}

	if len(cfg.Displays) == 0 {
		return fmt.Errorf("at least one display is required")
	}

	// ------------------------------------------------------------
	// DISPLAYS
	// ------------------------------------------------------------

	ids := make(map[string]struct{})
	// one session owns one bus
	busOwner := make(map[int]string)

	for _, d := range cfg.Displays {
		if d.ID == "" {
			return fmt.Errorf("display: id is required")
		}
		if _, dup := ids[d.ID]; dup {
			return fmt.Errorf("display %q: duplicate id", d.ID)
		}
		ids[d.ID] = struct{}{}

		if d.Bus < 0 {
			return fmt.Errorf("display %q: bus must be >= 0, got %d", d.ID, d.Bus)
		}
		if prev, taken := busOwner[d.Bus]; taken {
			return fmt.Errorf("display %q: bus %d already used by display %q", d.ID, d.Bus, prev)
		}
		busOwner[d.Bus] = d.ID

		if d.SlaveAddress > 0x3ff {
			return fmt.Errorf("display %q: slave_address 0x%x exceeds 10 bits", d.ID, d.SlaveAddress)
		}
		if d.Poll.IntervalMs < 0 {
			return fmt.Errorf("display %q: poll.interval_ms must be >= 0", d.ID)
		}

		if len(d.Requests) == 0 {
			return fmt.Errorf("display %q: at least one request is required", d.ID)
		}
		for ri, r := range d.Requests {
			if len(r.Payload) == 0 || len(r.Payload) > ddc.MaxPayload {
				return fmt.Errorf("display %q: request %d: payload must be 1..%d bytes", d.ID, ri, ddc.MaxPayload)
			}
			for _, b := range r.Payload {
				if b < 0 || b > 0xff {
					return fmt.Errorf("display %q: request %d: payload byte %d out of range", d.ID, ri, b)
				}
			}
			if r.ReplyBytes < 0 || r.ReplyBytes > ddc.MaxPayload {
				return fmt.Errorf("display %q: request %d: reply_bytes must be 0..%d", d.ID, ri, ddc.MaxPayload)
			}
		}

		// device_name sanity (ASCII only)
		for i := 0; i < len(d.DeviceName); i++ {
			if d.DeviceName[i] > 0x7F {
				return fmt.Errorf("display %q: device_name must contain ASCII characters only", d.ID)
			}
		}

		for _, t := range d.Targets {
			if t.Endpoint == "" {
				return fmt.Errorf("display %q: target endpoint is required", d.ID)
			}
		}
	}

	// ------------------------------------------------------------
	// STATUS BLOCK VALIDATION (OPT-IN)
	// ------------------------------------------------------------

	slotOwner := make(map[uint16]string)

	for _, d := range cfg.Displays {
		if d.StatusSlot == nil {
			continue
		}
		if cfg.StatusMemory.Endpoint == "" {
			return fmt.Errorf("display %q: status_slot is set but status_memory.endpoint is empty", d.ID)
		}

		slot := *d.StatusSlot
		if prev, exists := slotOwner[slot]; exists {
			return fmt.Errorf(
				"status_slot collision: slot=%d used by displays %q and %q",
				slot,
				prev,
				d.ID,
			)
		}
		slotOwner[slot] = d.ID
	}

	// ------------------------------------------------------------
	// DESTINATION MEMORY GEOMETRY VALIDATION
	// ------------------------------------------------------------

	// key = endpoint | unit_id
	spans := make(map[string][]span)

	for _, d := range cfg.Displays {
		regs := 0
		for _, r := range d.Requests {
			regs += r.ReplyBytes
		}
		if regs == 0 {
			continue
		}

		for _, t := range d.Targets {
			start := uint32(t.Address)
			end := start + uint32(regs) - 1
			if end > 0xffff {
				return fmt.Errorf(
					"display %q: target %s: registers %d-%d exceed address space",
					d.ID, t.Endpoint, start, end,
				)
			}

			key := fmt.Sprintf("%s|%d", t.Endpoint, t.UnitID)

			for _, s := range spans[key] {
				// overlap check (inclusive)
				if !(end < s.start || start > s.end) {
					return fmt.Errorf(
						"memory overlap: endpoint=%s unit_id=%d range=%d-%d overlaps with display=%s range=%d-%d",
						t.Endpoint,
						t.UnitID,
						start,
						end,
						s.display,
						s.start,
						s.end,
					)
				}
			}

			spans[key] = append(spans[key], span{
				start:   start,
				end:     end,
				display: d.ID,
			})
		}
	}

	return nil
}
