package synth

import (
	"math"
	"math/cmplx"
	"testing"

	algofft "github.com/cwbudde/algo-fft"
)

func measureFundamentalFreq(samples []float32, sampleRate float32) float32 {
	startIdx := len(samples) / 10
	crossings := 0
	for i := startIdx + 1; i < len(samples); i++ {
		if (samples[i-1] < 0 && samples[i] >= 0) || (samples[i-1] >= 0 && samples[i] < 0) {
			crossings++
		}
	}
	if crossings == 0 {
		return 0
	}
	duration := float32(len(samples)-startIdx) / sampleRate
	return float32(crossings) / (2.0 * duration)
}

// spectrumMagnitudes returns the Hann-windowed magnitude spectrum of the
// first fftSize samples.
func spectrumMagnitudes(t *testing.T, samples []float32, fftSize int) []float64 {
	t.Helper()
	if len(samples) < fftSize {
		t.Fatalf("need %d samples for spectrum, have %d", fftSize, len(samples))
	}
	plan, err := algofft.NewPlanReal64(fftSize)
	if err != nil {
		t.Fatalf("fft plan: %v", err)
	}
	buf := make([]float64, fftSize)
	for i := 0; i < fftSize; i++ {
		w := 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(fftSize-1))
		buf[i] = float64(samples[i]) * w
	}
	spec := make([]complex128, fftSize/2+1)
	plan.Forward(spec, buf)

	mags := make([]float64, fftSize/2)
	for k := range mags {
		mags[k] = cmplx.Abs(spec[k])
	}
	return mags
}

// bandPower sums spectral power over [loHz, hiHz).
func bandPower(mags []float64, sampleRate, fftSize int, loHz, hiHz float64) float64 {
	binHz := float64(sampleRate) / float64(fftSize)
	var sum float64
	for k, m := range mags {
		f := float64(k) * binHz
		if f >= loHz && f < hiHz {
			sum += m * m
		}
	}
	return sum
}

func meanValue(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += float64(s)
	}
	return sum / float64(len(samples))
}

func renderOscillator(osc *Oscillator, w Waveform, n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = osc.Next(w)
	}
	return out
}
