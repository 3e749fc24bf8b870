package synth

import "github.com/cwbudde/algo-synth/dsp"

// LowPassFilter is the per-voice resonant low-pass stage. Coefficients are
// re-derived at most once per sample from the smoothed cutoff/resonance, with
// both clamped to their stable range first so the filter can never diverge.
type LowPassFilter struct {
	sampleRate int
	maxCutoff  float32
	biquad     dsp.Biquad
	curCutoff  float32
	curQ       float32
}

func newLowPassFilter(sampleRate int) LowPassFilter {
	f := LowPassFilter{
		sampleRate: sampleRate,
		// Keep the pole frequency well below Nyquist.
		maxCutoff: minf(MaxCutoffHz, 0.45*float32(sampleRate)),
	}
	f.Update(DefaultSettings().FilterCutoff, DefaultSettings().FilterResonance)
	return f
}

// Update re-derives the coefficients when the (smoothed) cutoff or resonance
// moved since the last call.
func (f *LowPassFilter) Update(cutoff, q float32) {
	cutoff = clampf(cutoff, MinCutoffHz, f.maxCutoff)
	q = clampf(q, MinResonance, MaxResonance)
	if cutoff == f.curCutoff && q == f.curQ {
		return
	}
	f.curCutoff = cutoff
	f.curQ = q
	f.biquad.SetLowpass(float64(cutoff), float64(f.sampleRate), float64(q))
}

// Process filters one sample.
func (f *LowPassFilter) Process(input float32) float32 {
	return f.biquad.Process(input)
}

// Reset clears the delay taps. Called when a voice is allocated from the
// free pool so no energy leaks from a prior note into the new one.
func (f *LowPassFilter) Reset() {
	f.biquad.Reset()
}
