package dsp

import (
	"math"

	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
)

// Biquad implements a second-order IIR filter in transposed direct form II
// (two delay taps, no heap allocations in Process).
type Biquad struct {
	// Coefficients
	b0, b1, b2 float32
	a1, a2     float32

	// State (two delay taps)
	z1, z2 float32
}

// SetCoefficients replaces the filter coefficients without touching state.
func (b *Biquad) SetCoefficients(b0, b1, b2, a1, a2 float32) {
	b.b0, b.b1, b.b2 = b0, b1, b2
	b.a1, b.a2 = a1, a2
}

// SetLowpass derives RBJ cookbook low-pass coefficients for the given cutoff
// and Q at the given sample rate. The caller is responsible for keeping
// cutoff below Nyquist and Q positive; out-of-range values here would place
// poles outside the unit circle.
func (b *Biquad) SetLowpass(cutoff, sampleRate, q float64) {
	w0 := 2.0 * math.Pi * cutoff / sampleRate
	alpha := math.Sin(w0) / (2.0 * q)
	cosw0 := math.Cos(w0)

	b0 := (1.0 - cosw0) / 2.0
	b1 := 1.0 - cosw0
	b2 := (1.0 - cosw0) / 2.0
	a0 := 1.0 + alpha
	a1 := -2.0 * cosw0
	a2 := 1.0 - alpha

	// Normalize by a0.
	b.SetCoefficients(
		float32(b0/a0),
		float32(b1/a0),
		float32(b2/a0),
		float32(a1/a0),
		float32(a2/a0),
	)
}

// Process filters one sample.
func (b *Biquad) Process(input float32) float32 {
	output := b.b0*input + b.z1
	b.z1 = b.b1*input - b.a1*output + b.z2
	b.z2 = b.b2*input - b.a2*output
	b.z1 = float32(dspcore.FlushDenormals(float64(b.z1)))
	b.z2 = float32(dspcore.FlushDenormals(float64(b.z2)))
	return output
}

// Reset clears the filter state.
func (b *Biquad) Reset() {
	b.z1, b.z2 = 0, 0
}

// DCBlocker is a one-pole high-pass filter removing near-zero-Hz bias:
// y[n] = x[n] - x[n-1] + r*y[n-1].
type DCBlocker struct {
	r      float32
	prevIn float32
	prevY  float32
}

// NewDCBlocker creates a DC blocker with roughly the given cutoff in Hz.
func NewDCBlocker(cutoffHz float32, sampleRate int) *DCBlocker {
	r := 1.0 - 2.0*math.Pi*float64(cutoffHz)/float64(sampleRate)
	if r < 0.9 {
		r = 0.9
	}
	if r > 0.9995 {
		r = 0.9995
	}
	return &DCBlocker{r: float32(r)}
}

// Process removes the DC component from one sample.
func (d *DCBlocker) Process(input float32) float32 {
	output := input - d.prevIn + d.r*d.prevY
	d.prevIn = input
	d.prevY = float32(dspcore.FlushDenormals(float64(output)))
	return output
}

// Reset clears the blocker state.
func (d *DCBlocker) Reset() {
	d.prevIn = 0
	d.prevY = 0
}
