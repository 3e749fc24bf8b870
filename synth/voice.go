package synth

// Voice is one monophonic note generator: oscillator → filter → envelope
// gain, with per-voice smoothing of the filter parameters. The engine is the
// sole owner and mutator of voice state.
type Voice struct {
	sampleRate int
	dt         float32 // sample period in seconds

	key      int // assigned MIDI key, -1 when free
	active   bool
	released bool
	serial   uint64 // allocation counter, drives oldest-wins stealing
	velGain  float32

	waveform Waveform
	osc      Oscillator
	env      Envelope
	filter   LowPassFilter

	cutoff    Smoother
	resonance Smoother
}

func newVoice(sampleRate int, s *Settings) Voice {
	v := Voice{
		sampleRate: sampleRate,
		dt:         1.0 / float32(sampleRate),
		key:        -1,
		waveform:   s.Waveform,
		filter:     newLowPassFilter(sampleRate),
		cutoff:     NewSmoother(s.FilterCutoff, sampleRate),
		resonance:  NewSmoother(s.FilterResonance, sampleRate),
	}
	v.env.SetADSR(s.Attack, s.Decay, s.Sustain, s.Release)
	return v
}

// start binds the voice to a note. A voice taken from the free pool starts
// from a clean slate; a stolen voice keeps its oscillator phase and filter
// taps and restarts the envelope from its current level, so the takeover is
// not a hard discontinuity.
func (v *Voice) start(key, velocity int, s *Settings, serial uint64) {
	wasFree := !v.active

	v.key = key
	v.active = true
	v.released = false
	v.serial = serial
	v.velGain = float32(velocity) / 127.0
	v.waveform = s.Waveform

	v.osc.SetFrequency(midiNoteToFreq(key), v.sampleRate)
	if wasFree {
		v.osc.Reset()
		v.filter.Reset()
	}

	v.env.SetADSR(s.Attack, s.Decay, s.Sustain, s.Release)
	v.env.Trigger()
}

// noteOff transitions the voice into its release stage.
func (v *Voice) noteOff() {
	if !v.active || v.released {
		return
	}
	v.released = true
	v.env.Release()
}

// next renders one sample and retires the voice at the exact sample its
// release completes.
func (v *Voice) next() float32 {
	cut := v.cutoff.Next()
	q := v.resonance.Next()
	v.filter.Update(cut, q)

	raw := v.osc.Next(v.waveform)
	filtered := v.filter.Process(raw)
	level := v.env.Next(v.dt)
	out := filtered * level * v.velGain

	if v.released && !v.env.IsActive() {
		v.free()
	}
	return out
}

func (v *Voice) free() {
	v.active = false
	v.released = false
	v.key = -1
}

// applyEnvelope pushes new ADSR times onto the voice without retriggering.
func (v *Voice) applyEnvelope(s *Settings) {
	v.env.SetADSR(s.Attack, s.Decay, s.Sustain, s.Release)
}
