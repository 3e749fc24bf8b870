package synth

import dspcore "github.com/cwbudde/algo-dsp/dsp/core"

// smoothingTimeConstant is the one-pole time constant for every audible
// parameter. A 5 ms constant settles to within a few percent inside the
// 20 ms budget.
const smoothingTimeConstant = 0.005

// Smoother low-pass filters control-rate parameter changes before they reach
// the audio-rate path, trading a few milliseconds of latency for the
// guarantee that a controller jump never lands as an audible step.
type Smoother struct {
	current float32
	target  float32
	coeff   float32
	settled bool
}

// NewSmoother creates a smoother resting at the given initial value.
func NewSmoother(initial float32, sampleRate int) Smoother {
	return Smoother{
		current: initial,
		target:  initial,
		coeff:   onePoleCoeff(smoothingTimeConstant, sampleRate),
		settled: true,
	}
}

// SetTarget sets the value the smoother converges toward.
func (s *Smoother) SetTarget(target float32) {
	s.target = target
	s.settled = s.current == target
}

// Snap moves the smoother to the value immediately, bypassing smoothing.
func (s *Smoother) Snap(value float32) {
	s.current = value
	s.target = value
	s.settled = true
}

// Target returns the raw target value.
func (s *Smoother) Target() float32 {
	return s.target
}

// Value returns the current smoothed value without advancing.
func (s *Smoother) Value() float32 {
	return s.current
}

// Next advances the smoother one sample and returns the new value.
func (s *Smoother) Next() float32 {
	if s.settled {
		return s.current
	}
	s.current = s.target + (s.current-s.target)*s.coeff
	diff := s.current - s.target
	if diff < 0 {
		diff = -diff
	}
	thresh := 1e-4 * (1.0 + maxf(s.target, -s.target))
	if diff < thresh {
		s.current = s.target
		s.settled = true
		return s.current
	}
	s.current = float32(dspcore.FlushDenormals(float64(s.current)))
	return s.current
}
