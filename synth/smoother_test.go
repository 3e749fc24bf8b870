package synth

import (
	"math"
	"testing"
)

func TestSmootherSettlesWithinBudget(t *testing.T) {
	sampleRate := 48000
	s := NewSmoother(2000, sampleRate)
	s.SetTarget(8000)

	budget := sampleRate / 50 // 20 ms, four time constants
	for i := 0; i < budget; i++ {
		s.Next()
	}
	// e^-4 of the jump remains after four time constants.
	if math.Abs(float64(s.Value()-8000)) > 0.02*6000 {
		t.Fatalf("value after 20 ms = %f, want ~8000", s.Value())
	}
}

func TestSmootherMovesMonotonically(t *testing.T) {
	s := NewSmoother(0, 48000)
	s.SetTarget(1)

	prev := s.Value()
	for i := 0; i < 48000; i++ {
		v := s.Next()
		if v < prev {
			t.Fatalf("smoother moved backwards at sample %d: %f -> %f", i, prev, v)
		}
		if v > 1 {
			t.Fatalf("smoother overshot at sample %d: %f", i, v)
		}
		prev = v
	}
	if prev != 1 {
		t.Fatalf("smoother never settled: %f", prev)
	}
}

func TestSmootherStepIsGradual(t *testing.T) {
	sampleRate := 48000
	s := NewSmoother(0, sampleRate)
	s.SetTarget(1)

	// One sample must not cover more than a small fraction of the jump.
	first := s.Next()
	if first > 0.05 {
		t.Fatalf("first smoothed sample covered %f of the jump", first)
	}
}

func TestSmootherSnapBypassesSmoothing(t *testing.T) {
	s := NewSmoother(100, 48000)
	s.Snap(500)
	if s.Value() != 500 || s.Next() != 500 {
		t.Fatalf("snap did not land immediately: %f", s.Value())
	}
}

func TestSmootherSettledIsStable(t *testing.T) {
	s := NewSmoother(0.7, 48000)
	for i := 0; i < 1000; i++ {
		if v := s.Next(); v != 0.7 {
			t.Fatalf("settled smoother drifted to %f", v)
		}
	}
}
