package analysis

import (
	"math"
	"math/rand"
	"testing"
)

func TestCompareIdenticalSignalsHasLowDistance(t *testing.T) {
	sr := 48000
	x := makeDecaySine(sr, 440.0, 1.5, 0.7)
	m := Compare(x, x, sr)
	if m.Score > 0.05 {
		t.Fatalf("expected very low score for identical signals, got %f", m.Score)
	}
	if m.Similarity < 0.85 {
		t.Fatalf("expected high similarity for identical signals, got %f", m.Similarity)
	}
}

func TestCompareDifferentSignalsHasHigherDistance(t *testing.T) {
	sr := 48000
	a := makeDecaySine(sr, 261.63, 1.8, 0.8)
	b := makeDecaySine(sr, 330.0, 0.8, 0.25)
	m := Compare(a, b, sr)
	if m.Score < 0.25 {
		t.Fatalf("expected higher score for different signals, got %f", m.Score)
	}
}

func TestCompareSeesEnvelopeShape(t *testing.T) {
	sr := 48000
	slow := makeDecaySine(sr, 220.0, 2.0, 1.2)
	fast := makeDecaySine(sr, 220.0, 2.0, 0.15)
	m := Compare(slow, fast, sr)
	if m.EnvelopeRMSEDB < 3.0 {
		t.Fatalf("expected envelope error for different decay times, got %f dB", m.EnvelopeRMSEDB)
	}
}

func TestEstimateLagFindsPositiveShift(t *testing.T) {
	const (
		n      = 8192
		shift  = 237
		maxLag = 600
	)
	ref := randomSignal(n, 7)
	cand := make([]float64, n)
	copy(cand, ref[shift:])

	got := estimateLag(ref, cand, maxLag)
	if got != shift {
		t.Fatalf("estimateLag() = %d, want %d", got, shift)
	}
}

func TestEstimateLagFindsNegativeShift(t *testing.T) {
	const (
		n      = 8192
		shift  = -191
		maxLag = 600
	)
	ref := randomSignal(n, 11)
	cand := make([]float64, n)
	copy(cand[-shift:], ref)

	got := estimateLag(ref, cand, maxLag)
	if got != shift {
		t.Fatalf("estimateLag() = %d, want %d", got, shift)
	}
}

func makeDecaySine(sr int, freq, durationSec, decaySec float64) []float64 {
	n := int(float64(sr) * durationSec)
	if n < 1 {
		n = 1
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(sr)
		out[i] = math.Exp(-t/decaySec) * math.Sin(2*math.Pi*freq*t)
	}
	return out
}

func randomSignal(n int, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	for i := range out {
		out[i] = rng.Float64()*2 - 1
	}
	return out
}
