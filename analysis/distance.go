package analysis

import (
	"math"
)

// Metrics holds the distance measurements between a reference signal and a
// candidate rendering, plus a combined score in [0, 1] where 0 is identical.
type Metrics struct {
	SampleRate int `json:"sample_rate"`

	ReferenceFrames int `json:"reference_frames"`
	CandidateFrames int `json:"candidate_frames"`
	AlignedFrames   int `json:"aligned_frames"`
	LagSamples      int `json:"lag_samples"`

	TimeRMSE       float64 `json:"time_rmse"`
	EnvelopeRMSEDB float64 `json:"envelope_rmse_db"`
	SpectralRMSEDB float64 `json:"spectral_rmse_db"`

	Score      float64 `json:"score"`
	Similarity float64 `json:"similarity"`
}

const (
	envFrame = 256
	envHop   = 128
)

// Compare measures how far candidate is from reference. Both signals are
// trimmed of leading silence, RMS-normalized and aligned by cross-correlation
// before the per-domain errors are taken, so absolute level and onset offset
// between the two recordings do not dominate the result.
func Compare(reference, candidate []float64, sampleRate int) Metrics {
	m := Metrics{
		SampleRate:      sampleRate,
		ReferenceFrames: len(reference),
		CandidateFrames: len(candidate),
		Score:           1.0,
	}
	if sampleRate <= 0 {
		return m
	}

	ref := normalizeRMS(trimLeadingSilence(reference, 1e-6), 0.1)
	cand := normalizeRMS(trimLeadingSilence(candidate, 1e-6), 0.1)
	if len(ref) == 0 || len(cand) == 0 {
		return m
	}

	maxLag := sampleRate / 2
	if n := minInt(len(ref), len(cand)) - 1; maxLag > n {
		maxLag = n
	}
	if maxLag < 1 {
		maxLag = 1
	}
	lag := estimateLag(ref, cand, maxLag)
	m.LagSamples = lag

	refA, candA := alignByLag(ref, cand, lag)
	n := minInt(len(refA), len(candA))
	if n < 256 {
		return m
	}
	if maxFrames := sampleRate * 12; n > maxFrames {
		n = maxFrames
	}
	refA = refA[:n]
	candA = candA[:n]
	m.AlignedFrames = n

	m.TimeRMSE = rmse(refA, candA)
	m.EnvelopeRMSEDB = envelopeRMSEDB(refA, candA)
	m.SpectralRMSEDB = spectralRMSEDB(refA, candA)

	timeNorm := clamp01(m.TimeRMSE / 0.25)
	envNorm := clamp01(m.EnvelopeRMSEDB / 30.0)
	specNorm := clamp01(m.SpectralRMSEDB / 30.0)
	m.Score = clamp01(0.35*timeNorm + 0.30*envNorm + 0.35*specNorm)
	m.Similarity = clamp01(math.Exp(-4.0 * m.Score))
	return m
}

// envelopeRMSEDB compares the short-time RMS contours of the two signals in
// decibels. This is the metric that actually sees attack/decay/release
// shape; the raw time RMSE is dominated by phase.
func envelopeRMSEDB(ref, cand []float64) float64 {
	refEnv := rmsEnvelope(ref, envFrame, envHop)
	candEnv := rmsEnvelope(cand, envFrame, envHop)
	n := minInt(len(refEnv), len(candEnv))
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := linToDB(refEnv[i]) - linToDB(candEnv[i])
		sum += d * d
	}
	return math.Sqrt(sum / float64(n))
}

// spectralRMSEDB compares time-averaged magnitude spectra in decibels.
func spectralRMSEDB(ref, cand []float64) float64 {
	const fftSize = 4096
	if minInt(len(ref), len(cand)) < 512 {
		return 0
	}
	spec, err := NewSpectrum(fftSize)
	if err != nil {
		return 0
	}
	refMags := spec.AverageMagnitudes(ref, fftSize/2)
	candMags := spec.AverageMagnitudes(cand, fftSize/2)

	var sum float64
	bins := 0
	for k := 1; k < len(refMags); k++ {
		d := linToDB(refMags[k]) - linToDB(candMags[k])
		sum += d * d
		bins++
	}
	if bins == 0 {
		return 0
	}
	return math.Sqrt(sum / float64(bins))
}

func trimLeadingSilence(x []float64, threshold float64) []float64 {
	for i := range x {
		if math.Abs(x[i]) > threshold {
			return x[i:]
		}
	}
	return nil
}

func normalizeRMS(x []float64, target float64) []float64 {
	if len(x) == 0 {
		return nil
	}
	r := rms1(x)
	if r <= 1e-12 {
		return append([]float64(nil), x...)
	}
	g := target / r
	out := make([]float64, len(x))
	for i := range x {
		out[i] = x[i] * g
	}
	return out
}

// estimateLag finds the integer sample shift that maximizes the
// cross-correlation between ref and cand, searching [-maxLag, maxLag]. Long
// signals are subsampled; the peak is sharp enough that this does not move
// the winner.
func estimateLag(ref, cand []float64, maxLag int) int {
	if len(ref) == 0 || len(cand) == 0 {
		return 0
	}
	step := 2
	if len(ref) > 200000 || len(cand) > 200000 {
		step = 4
	}
	bestLag := 0
	best := math.Inf(-1)
	for lag := -maxLag; lag <= maxLag; lag++ {
		if s := dotAtLag(ref, cand, lag, step); s > best {
			best = s
			bestLag = lag
		}
	}
	return bestLag
}

func dotAtLag(a, b []float64, lag, step int) float64 {
	var ai, bi int
	if lag >= 0 {
		ai = lag
	} else {
		bi = -lag
	}
	n := minInt(len(a)-ai, len(b)-bi)
	if n <= 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i += step {
		sum += a[ai+i] * b[bi+i]
	}
	return sum
}

func alignByLag(ref, cand []float64, lag int) ([]float64, []float64) {
	if lag >= 0 {
		if lag >= len(ref) {
			return nil, nil
		}
		return ref[lag:], cand
	}
	if -lag >= len(cand) {
		return nil, nil
	}
	return ref, cand[-lag:]
}

func rmse(a, b []float64) float64 {
	n := minInt(len(a), len(b))
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(n))
}

func rms1(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(x)))
}

func rmsEnvelope(x []float64, frame, hop int) []float64 {
	if frame <= 0 || hop <= 0 || len(x) < frame {
		return nil
	}
	n := 1 + (len(x)-frame)/hop
	out := make([]float64, n)
	for i := range out {
		out[i] = rms1(x[i*hop : i*hop+frame])
	}
	return out
}

func linToDB(x float64) float64 {
	if x < 1e-12 {
		x = 1e-12
	}
	return 20.0 * math.Log10(x)
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

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
