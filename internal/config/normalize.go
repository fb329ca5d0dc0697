// internal/config/normalize.go
package config

import "github.com/tamzrod/ddcpacer/internal/ddc"

const (
	DefaultPollIntervalMs = 5000
	DefaultTimeoutMs      = 2000
	DeviceNameMaxChars    = 16
)

// Normalize applies post-validation defaults.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Timing.SleepMultiplier == 0 {
		cfg.Timing.SleepMultiplier = 1.0
	}
	if cfg.I2C.IOStrategy == "" {
		cfg.I2C.IOStrategy = "ioctl"
	}
	if cfg.StatusMemory.TimeoutMs == 0 {
		cfg.StatusMemory.TimeoutMs = DefaultTimeoutMs
	}

	for di := range cfg.Displays {
		d := &cfg.Displays[di]

		if d.SlaveAddress == 0 {
			d.SlaveAddress = ddc.SlaveAddress
		}
		if d.Poll.IntervalMs == 0 {
			d.Poll.IntervalMs = DefaultPollIntervalMs
		}
		for ti := range d.Targets {
			if d.Targets[ti].TimeoutMs == 0 {
				d.Targets[ti].TimeoutMs = DefaultTimeoutMs
			}
		}

		// device_name: ASCII already validated, truncate to 16 characters
		if len(d.DeviceName) > DeviceNameMaxChars {
			d.DeviceName = d.DeviceName[:DeviceNameMaxChars]
		}
	}
}
