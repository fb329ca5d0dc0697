package display

import (
	"sync"
	"testing"
)

func TestAnchor_RaiseOnlyForward(t *testing.T) {
	var a Anchor

	if !a.Raise(100) {
		t.Fatalf("first raise should move anchor")
	}
	if a.Raise(50) {
		t.Fatalf("earlier deadline must not move anchor")
	}
	if a.Raise(100) {
		t.Fatalf("equal deadline must not move anchor")
	}
	if a.Load() != 100 {
		t.Fatalf("anchor=%d want=100", a.Load())
	}
}

func TestAnchor_OutOfOrderKeepsMax(t *testing.T) {
	var a Anchor
	a.Raise(200)
	a.Raise(100)
	if a.Load() != 200 {
		t.Fatalf("anchor=%d want=200", a.Load())
	}
}

func TestAnchor_ConcurrentRaise(t *testing.T) {
	var a Anchor
	var wg sync.WaitGroup

	for i := 1; i <= 64; i++ {
		wg.Add(1)
		go func(v int64) {
			defer wg.Done()
			a.Raise(v)
		}(int64(i))
	}
	wg.Wait()

	if a.Load() != 64 {
		t.Fatalf("anchor=%d want=64", a.Load())
	}
}

func TestRef_AnchorSurvivesHandles(t *testing.T) {
	ref := NewI2CRef("left", 4)

	h1 := NewHandle(ref, -1)
	h1.NextIOAfter().Raise(500)

	h2 := NewHandle(ref, -1)
	if h2.NextIOAfter().Load() != 500 {
		t.Fatalf("anchor lost across handles: %d", h2.NextIOAfter().Load())
	}
	if ref.DevicePath() != "/dev/i2c-4" {
		t.Fatalf("unexpected path %s", ref.DevicePath())
	}
}
