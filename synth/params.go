package synth

// Engineering ranges for the host-automatable parameters. Values arriving
// from outside are clamped to these bounds at the boundary, never rejected.
const (
	MinAttackSec  = 0.001
	MaxAttackSec  = 2.0
	MinDecaySec   = 0.001
	MaxDecaySec   = 2.0
	MinReleaseSec = 0.001
	MaxReleaseSec = 3.0
	MinCutoffHz   = 200.0
	MaxCutoffHz   = 8000.0
	MinResonance  = 0.1
	MaxResonance  = 10.0
)

// Settings is the read-mostly configuration snapshot shared by all voices.
// The engine owns the only mutable copy; everything else goes through the
// validated setters, which clamp to range and feed the parameter smoothers.
type Settings struct {
	Attack          float32 // seconds
	Decay           float32 // seconds
	Sustain         float32 // level, 0..1
	Release         float32 // seconds
	FilterCutoff    float32 // Hz
	FilterResonance float32 // Q
	Waveform        Waveform
	MasterVolume    float32 // 0..1
}

// DefaultSettings returns the engine's initial configuration.
func DefaultSettings() Settings {
	return Settings{
		Attack:          0.005,
		Decay:           0.1,
		Sustain:         0.7,
		Release:         0.2,
		FilterCutoff:    2000.0,
		FilterResonance: 0.7,
		Waveform:        Saw,
		MasterVolume:    0.8,
	}
}

// Clamp forces every field into its documented range.
func (s *Settings) Clamp() {
	s.Attack = clampf(s.Attack, MinAttackSec, MaxAttackSec)
	s.Decay = clampf(s.Decay, MinDecaySec, MaxDecaySec)
	s.Sustain = clampf(s.Sustain, 0.0, 1.0)
	s.Release = clampf(s.Release, MinReleaseSec, MaxReleaseSec)
	s.FilterCutoff = clampf(s.FilterCutoff, MinCutoffHz, MaxCutoffHz)
	s.FilterResonance = clampf(s.FilterResonance, MinResonance, MaxResonance)
	if s.Waveform < Sine || s.Waveform > Triangle {
		s.Waveform = Sine
	}
	s.MasterVolume = clampf(s.MasterVolume, 0.0, 1.0)
}

func (s *Settings) param(id ParamID) float32 {
	switch id {
	case ParamAttack:
		return s.Attack
	case ParamDecay:
		return s.Decay
	case ParamSustain:
		return s.Sustain
	case ParamRelease:
		return s.Release
	case ParamFilterCutoff:
		return s.FilterCutoff
	case ParamFilterResonance:
		return s.FilterResonance
	case ParamWaveform:
		return float32(s.Waveform)
	case ParamVolume:
		return s.MasterVolume
	}
	return 0
}

// ParamID identifies one host-automatable parameter.
type ParamID int

const (
	ParamAttack ParamID = iota
	ParamDecay
	ParamSustain
	ParamRelease
	ParamFilterCutoff
	ParamFilterResonance
	ParamWaveform
	ParamVolume

	numParams
)

// String returns the parameter's name.
func (p ParamID) String() string {
	switch p {
	case ParamAttack:
		return "attack"
	case ParamDecay:
		return "decay"
	case ParamSustain:
		return "sustain"
	case ParamRelease:
		return "release"
	case ParamFilterCutoff:
		return "filter_cutoff"
	case ParamFilterResonance:
		return "filter_resonance"
	case ParamWaveform:
		return "waveform"
	case ParamVolume:
		return "volume"
	}
	return "unknown"
}

type paramRange struct {
	min float32
	max float32
}

var paramRanges = [numParams]paramRange{
	ParamAttack:          {MinAttackSec, MaxAttackSec},
	ParamDecay:           {MinDecaySec, MaxDecaySec},
	ParamSustain:         {0.0, 1.0},
	ParamRelease:         {MinReleaseSec, MaxReleaseSec},
	ParamFilterCutoff:    {MinCutoffHz, MaxCutoffHz},
	ParamFilterResonance: {MinResonance, MaxResonance},
	ParamWaveform:        {0, float32(Triangle)},
	ParamVolume:          {0.0, 1.0},
}

// ParamFromNormalized maps a normalized 0..1 control value onto the
// parameter's engineering range. The waveform parameter quantizes to its
// nearest discrete step.
func ParamFromNormalized(id ParamID, norm float64) float32 {
	if id < 0 || id >= numParams {
		return 0
	}
	n := clampf(float32(norm), 0.0, 1.0)
	r := paramRanges[id]
	v := r.min + n*(r.max-r.min)
	if id == ParamWaveform {
		v = float32(int(v + 0.5))
	}
	return v
}

// ParamToNormalized maps an engineering value back onto 0..1.
func ParamToNormalized(id ParamID, value float32) float64 {
	if id < 0 || id >= numParams {
		return 0
	}
	r := paramRanges[id]
	if r.max == r.min {
		return 0
	}
	v := clampf(value, r.min, r.max)
	return float64((v - r.min) / (r.max - r.min))
}
