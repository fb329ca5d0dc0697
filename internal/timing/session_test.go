package timing

import "testing"

func TestSession_Defaults(t *testing.T) {
	s := NewSession(SessionConfig{})

	if s.MultiplierFactor() != 1.0 {
		t.Fatalf("factor=%v want=1.0", s.MultiplierFactor())
	}
	if s.MultiplierCount() != 1 {
		t.Fatalf("count=%d want=1", s.MultiplierCount())
	}
	if s.AdjustmentFactor() != 1.0 {
		t.Fatalf("adjustment=%v want=1.0", s.AdjustmentFactor())
	}
	if s.ID() == "" {
		t.Fatalf("session id missing")
	}
}

func TestSession_MultiplierCountCapAndReset(t *testing.T) {
	s := NewSession(SessionConfig{})

	for i := 0; i < MaxMultiplierCount*2; i++ {
		s.IncrementMultiplierCount()
	}
	if s.MultiplierCount() != MaxMultiplierCount {
		t.Fatalf("count=%d want=%d", s.MultiplierCount(), MaxMultiplierCount)
	}

	s.ResetMultiplierCount()
	if s.MultiplierCount() != 1 {
		t.Fatalf("count=%d want=1 after reset", s.MultiplierCount())
	}
}

func TestSession_Isolated(t *testing.T) {
	a := NewSession(SessionConfig{})
	b := NewSession(SessionConfig{})

	a.IncrementMultiplierCount()
	if b.MultiplierCount() != 1 {
		t.Fatalf("sessions share state")
	}
	if a.ID() == b.ID() {
		t.Fatalf("sessions share id")
	}
}

func TestSession_EnableDynamicReturnsPrevious(t *testing.T) {
	s := NewSession(SessionConfig{})
	if old := s.EnableDynamic(true); old {
		t.Fatalf("old=%v want=false", old)
	}
	if !s.DynamicEnabled() {
		t.Fatalf("expected dynamic on")
	}
	s.SetMultiplierFactor(-1)
	if s.MultiplierFactor() != 1.0 {
		t.Fatalf("negative factor accepted")
	}
}
