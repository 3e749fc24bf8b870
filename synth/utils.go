package synth

import (
	"math"

	"github.com/cwbudde/algo-approx"
)

// midiNoteToFreq converts a MIDI key number to frequency in Hz.
func midiNoteToFreq(key int) float32 {
	const a4Freq = 440.0
	const a4Key = 69
	exponent := float32(key-a4Key) / 12.0
	return a4Freq * pow2Approx(exponent)
}

func pow2Approx(x float32) float32 {
	const ln2 = 0.69314718055994530942
	return approx.FastExp(x * ln2)
}

// onePoleCoeff returns the feedback coefficient of a one-pole smoother with
// the given time constant in seconds.
func onePoleCoeff(timeConstant float32, sampleRate int) float32 {
	if timeConstant <= 0 || sampleRate <= 0 {
		return 0
	}
	return approx.FastExp(-1.0 / (timeConstant * float32(sampleRate)))
}

// softClip applies a soft knee above ±0.95 and clamps the result to [-1, 1].
func softClip(x float32) float32 {
	const knee = 0.95
	const slope = 0.2
	if x > knee {
		x = knee + (x-knee)*slope
	} else if x < -knee {
		x = -knee - (-x-knee)*slope
	}
	if x > 1.0 {
		return 1.0
	}
	if x < -1.0 {
		return -1.0
	}
	return x
}

func isFinite(x float32) bool {
	return !math.IsNaN(float64(x)) && !math.IsInf(float64(x), 0)
}

func clampf(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func clampi(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func minf(a float32, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxf(a float32, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
