package synth

import (
	"fmt"
	"math"
	"strings"
)

// Waveform selects the oscillator's generator function.
type Waveform int

const (
	Sine Waveform = iota
	Saw
	Square
	Triangle
)

// String returns the lower-case name of the waveform.
func (w Waveform) String() string {
	switch w {
	case Sine:
		return "sine"
	case Saw:
		return "saw"
	case Square:
		return "square"
	case Triangle:
		return "triangle"
	}
	return "unknown"
}

// ParseWaveform converts a waveform name into its Waveform value.
func ParseWaveform(s string) (Waveform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sine":
		return Sine, nil
	case "saw", "sawtooth":
		return Saw, nil
	case "square":
		return Square, nil
	case "triangle":
		return Triangle, nil
	}
	return Sine, fmt.Errorf("unknown waveform %q (expected sine, saw, square or triangle)", s)
}

// Oscillator generates band-limited waveforms one sample at a time. Saw and
// square edges are corrected with a two-sample polynomial step (PolyBLEP);
// triangle is the leaky integral of the corrected square. Frequencies are a
// caller contract: the oscillator does not guard against values at or above
// Nyquist.
type Oscillator struct {
	phase float32 // cycle position, wraps in [0, 1)
	inc   float32 // frequency / sampleRate
	tri   float32 // triangle integrator state
}

// SetFrequency sets the oscillator frequency in Hz for the given sample rate.
func (o *Oscillator) SetFrequency(freq float32, sampleRate int) {
	o.inc = freq / float32(sampleRate)
}

// Reset rewinds the phase and clears the triangle integrator.
func (o *Oscillator) Reset() {
	o.phase = 0
	o.tri = 0
}

// Phase returns the current cycle position in [0, 1).
func (o *Oscillator) Phase() float32 {
	return o.phase
}

// Next produces one sample of the selected waveform and advances the phase.
func (o *Oscillator) Next(w Waveform) float32 {
	var sample float32
	switch w {
	case Sine:
		sample = float32(math.Sin(2.0 * math.Pi * float64(o.phase)))
	case Saw:
		sample = 2.0*o.phase - 1.0
		sample -= polyBLEP(o.phase, o.inc)
	case Square:
		sample = o.squareSample()
	case Triangle:
		// Leaky integral of the corrected square, scaled so a full half
		// period sweeps the output by 2.
		sq := o.squareSample()
		o.tri = o.tri*triLeak + sq*4.0*o.inc
		sample = o.tri
	}

	o.phase += o.inc
	if o.phase >= 1.0 {
		o.phase -= 1.0
	}
	return sample
}

// triLeak bleeds integrator drift without audibly tilting the ramp.
const triLeak = 0.9995

func (o *Oscillator) squareSample() float32 {
	var sample float32
	if o.phase < 0.5 {
		sample = 1.0
	} else {
		sample = -1.0
	}
	sample += polyBLEP(o.phase, o.inc)
	fall := o.phase + 0.5
	if fall >= 1.0 {
		fall -= 1.0
	}
	sample -= polyBLEP(fall, o.inc)
	return sample
}

// polyBLEP returns the 2nd-order residual correcting a unit step at phase 0,
// for the fractional distance t from the step in phase-increment units dt.
func polyBLEP(t, dt float32) float32 {
	if dt <= 0 {
		return 0
	}
	if t < dt {
		t /= dt
		return t + t - t*t - 1.0
	}
	if t > 1.0-dt {
		t = (t - 1.0) / dt
		return t*t + t + t + 1.0
	}
	return 0
}
