// internal/timing/session.go
package timing

import "github.com/google/uuid"

// MaxMultiplierCount caps the retry-driven multiplier.
const MaxMultiplierCount = 10

// SessionConfig seeds a Session.
type SessionConfig struct {
	// MultiplierFactor is the static multiplier (e.g. --sleep-multiplier).
	// Zero means 1.0.
	MultiplierFactor float64

	// Dynamic enables feedback-controlled adjustment.
	Dynamic bool
}

// Session is the timing state of one worker.
// It is owned by exactly one goroutine and is not safe for concurrent use.
type Session struct {
	id string

	multiplierFactor float64
	multiplierCount  int

	dynamic          bool
	adjustmentFactor float64
}

// NewSession creates a session with multiplier count 1 and adjustment factor 1.0.
func NewSession(cfg SessionConfig) *Session {
	f := cfg.MultiplierFactor
	if f <= 0 {
		f = 1.0
	}
	return &Session{
		id:               uuid.NewString(),
		multiplierFactor: f,
		multiplierCount:  1,
		dynamic:          cfg.Dynamic,
		adjustmentFactor: 1.0,
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) MultiplierFactor() float64 { return s.multiplierFactor }

// SetMultiplierFactor replaces the static factor. Non-positive values are ignored.
func (s *Session) SetMultiplierFactor(f float64) {
	if f > 0 {
		s.multiplierFactor = f
	}
}

func (s *Session) MultiplierCount() int { return s.multiplierCount }

// IncrementMultiplierCount is called by retry logic after a failed operation.
func (s *Session) IncrementMultiplierCount() int {
	if s.multiplierCount < MaxMultiplierCount {
		s.multiplierCount++
	}
	return s.multiplierCount
}

// ResetMultiplierCount is called after a successful operation.
func (s *Session) ResetMultiplierCount() {
	s.multiplierCount = 1
}

func (s *Session) DynamicEnabled() bool { return s.dynamic }

// EnableDynamic toggles dynamic mode and returns the previous setting.
func (s *Session) EnableDynamic(on bool) bool {
	old := s.dynamic
	s.dynamic = on
	return old
}

// AdjustmentFactor is the last value produced by the feedback controller.
func (s *Session) AdjustmentFactor() float64 { return s.adjustmentFactor }

func (s *Session) setAdjustmentFactor(f float64) {
	if f < 0 {
		f = 0
	}
	s.adjustmentFactor = f
}
