// internal/config/config.go
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Log          LogConfig          `yaml:"log"`
	Timing       TimingConfig       `yaml:"timing"`
	I2C          I2CConfig          `yaml:"i2c"`
	Feedback     FeedbackConfig     `yaml:"feedback"`
	Displays     []DisplayConfig    `yaml:"displays"`
	StatusMemory StatusMemoryConfig `yaml:"status_memory"`
}

type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// ---- TIMING ----

type TimingConfig struct {
	SleepMultiplier float64 `yaml:"sleep_multiplier"` // 0 => 1.0
	DeferredSleep   bool    `yaml:"deferred_sleep"`
	DynamicSleep    bool    `yaml:"dynamic_sleep"`
}

// ---- BUS ----

type I2CConfig struct {
	IOStrategy   string `yaml:"io_strategy"` // ioctl (default), fileio
	ReadBytewise bool   `yaml:"read_bytewise"`
}

type FeedbackConfig struct {
	Window        int `yaml:"window"`
	MinSamples    int `yaml:"min_samples"`
	CheckInterval int `yaml:"check_interval"`
}

// ---- DISPLAY ----

type DisplayConfig struct {
	ID           string          `yaml:"id"`
	Bus          int             `yaml:"bus"`           // /dev/i2c-<bus>
	SlaveAddress uint16          `yaml:"slave_address"` // 0 => 0x37
	Poll         PollConfig      `yaml:"poll"`
	Requests     []RequestConfig `yaml:"requests"`
	Targets      []TargetConfig  `yaml:"targets"`

	// Status block (optional, opt-in)
	StatusSlot *uint16 `yaml:"status_slot"`
	DeviceName string  `yaml:"device_name"`
}

// RequestConfig is one raw DDC/CI request.
// ReplyBytes == 0 means write-only.
type RequestConfig struct {
	Payload    []int `yaml:"payload"`
	ReplyBytes int   `yaml:"reply_bytes"`
}

type PollConfig struct {
	IntervalMs int `yaml:"interval_ms"`
}

// ---- PUBLICATION ----

type TargetConfig struct {
	Endpoint  string `yaml:"endpoint"`
	UnitID    uint8  `yaml:"unit_id"`
	Address   uint16 `yaml:"address"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

type StatusMemoryConfig struct {
	Endpoint  string `yaml:"endpoint"`
	UnitID    uint8  `yaml:"unit_id"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

// Load reads and decodes a YAML config file. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse decodes YAML bytes.
func Parse(raw []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	return &cfg, nil
}
