// Package analysis provides offline spectral measurement and audio distance
// metrics. Nothing in here is real-time safe; it exists for tooling and
// tests, not for the render path.
package analysis

import (
	"fmt"
	"math"
	"math/cmplx"

	algofft "github.com/cwbudde/algo-fft"
)

// Spectrum computes Hann-windowed magnitude spectra over a fixed FFT size,
// reusing one plan and its scratch buffers across calls.
type Spectrum struct {
	fftSize int
	plan    *algofft.PlanRealT[float64, complex128]
	hann    []float64
	buf     []float64
	spec    []complex128
}

// NewSpectrum creates a Spectrum analyzer. fftSize must be a power of two.
func NewSpectrum(fftSize int) (*Spectrum, error) {
	if fftSize < 16 || fftSize&(fftSize-1) != 0 {
		return nil, fmt.Errorf("fft size %d is not a power of two >= 16", fftSize)
	}
	plan, err := algofft.NewPlanReal64(fftSize)
	if err != nil {
		return nil, err
	}
	hann := make([]float64, fftSize)
	for i := range hann {
		hann[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(fftSize-1))
	}
	return &Spectrum{
		fftSize: fftSize,
		plan:    plan,
		hann:    hann,
		buf:     make([]float64, fftSize),
		spec:    make([]complex128, fftSize/2+1),
	}, nil
}

// FFTSize returns the analyzer's transform length.
func (s *Spectrum) FFTSize() int {
	return s.fftSize
}

// BinHz returns the width of one frequency bin at the given sample rate.
func (s *Spectrum) BinHz(sampleRate int) float64 {
	return float64(sampleRate) / float64(s.fftSize)
}

// Magnitudes returns the windowed magnitude spectrum of the first fftSize
// samples of signal (zero-padded when shorter). The result has fftSize/2
// bins; bin 0 is DC.
func (s *Spectrum) Magnitudes(signal []float64) []float64 {
	n := len(signal)
	if n > s.fftSize {
		n = s.fftSize
	}
	for i := 0; i < n; i++ {
		s.buf[i] = signal[i] * s.hann[i]
	}
	for i := n; i < s.fftSize; i++ {
		s.buf[i] = 0
	}
	s.plan.Forward(s.spec, s.buf)

	out := make([]float64, s.fftSize/2)
	for k := range out {
		out[k] = cmplx.Abs(s.spec[k])
	}
	return out
}

// AverageMagnitudes runs an STFT over the whole signal with the given hop
// and returns per-bin magnitudes averaged across frames. Signals shorter
// than one frame fall back to a single zero-padded transform.
func (s *Spectrum) AverageMagnitudes(signal []float64, hop int) []float64 {
	if hop <= 0 {
		hop = s.fftSize / 2
	}
	if len(signal) < s.fftSize {
		return s.Magnitudes(signal)
	}

	avg := make([]float64, s.fftSize/2)
	frames := 0
	for pos := 0; pos+s.fftSize <= len(signal); pos += hop {
		for i := 0; i < s.fftSize; i++ {
			s.buf[i] = signal[pos+i] * s.hann[i]
		}
		s.plan.Forward(s.spec, s.buf)
		for k := range avg {
			avg[k] += cmplx.Abs(s.spec[k])
		}
		frames++
	}
	if frames > 1 {
		inv := 1.0 / float64(frames)
		for k := range avg {
			avg[k] *= inv
		}
	}
	return avg
}

// BandEnergy sums the power of all bins whose center frequency falls in
// [loHz, hiHz).
func BandEnergy(mags []float64, binHz, loHz, hiHz float64) float64 {
	var sum float64
	for k, m := range mags {
		f := float64(k) * binHz
		if f >= loHz && f < hiHz {
			sum += m * m
		}
	}
	return sum
}

// PeakFrequency returns the center frequency of the strongest non-DC bin,
// refined by parabolic interpolation over its neighbors.
func PeakFrequency(mags []float64, binHz float64) float64 {
	if len(mags) < 3 {
		return 0
	}
	peak := 1
	for k := 2; k < len(mags); k++ {
		if mags[k] > mags[peak] {
			peak = k
		}
	}
	offset := 0.0
	if peak > 0 && peak < len(mags)-1 {
		a, b, c := mags[peak-1], mags[peak], mags[peak+1]
		den := a - 2*b + c
		if math.Abs(den) > 1e-18 {
			offset = 0.5 * (a - c) / den
		}
	}
	return (float64(peak) + offset) * binHz
}

// AliasRatio measures how much spectral power lies away from the harmonic
// series of the given fundamental: bins within 1.5 bin widths of an integer
// multiple of fundamental count as harmonic, everything else above DC counts
// as alias. Returns aliasPower / harmonicPower.
func AliasRatio(mags []float64, binHz, fundamental float64) float64 {
	if fundamental <= 0 || binHz <= 0 {
		return 0
	}
	tol := 1.5 * binHz
	var harmonic, alias float64
	for k := 1; k < len(mags); k++ {
		f := float64(k) * binHz
		nearest := math.Round(f/fundamental) * fundamental
		p := mags[k] * mags[k]
		if nearest > 0 && math.Abs(f-nearest) <= tol {
			harmonic += p
		} else {
			alias += p
		}
	}
	if harmonic <= 0 {
		return math.Inf(1)
	}
	return alias / harmonic
}
