package synth

import (
	"sync/atomic"

	"github.com/cwbudde/algo-synth/dsp"
)

// NumVoices is the fixed polyphony of the engine.
const NumVoices = 16

// Engine owns the voice pool and turns note events into mixed audio. All of
// its methods must be called from a single context; the Synth boundary
// provides the queue that carries events across from the control context.
type Engine struct {
	sampleRate int
	voices     [NumVoices]Voice
	settings   Settings
	serial     uint64

	volume *Smoother
	dc     *dsp.DCBlocker

	sustainDown bool
	sustained   [128]bool

	activeCount atomic.Int32
}

// NewEngine creates an engine with a 16-slot voice pool at the given sample
// rate. The settings are clamped to their documented ranges first.
func NewEngine(sampleRate int, settings Settings) *Engine {
	settings.Clamp()
	e := &Engine{
		sampleRate: sampleRate,
		settings:   settings,
		dc:         dsp.NewDCBlocker(10.0, sampleRate),
	}
	vol := NewSmoother(settings.MasterVolume, sampleRate)
	e.volume = &vol
	for i := range e.voices {
		e.voices[i] = newVoice(sampleRate, &e.settings)
	}
	return e
}

// SampleRate returns the engine's sample rate in Hz.
func (e *Engine) SampleRate() int {
	return e.sampleRate
}

// Settings returns a copy of the current configuration snapshot.
func (e *Engine) Settings() Settings {
	return e.settings
}

// NoteOn allocates a voice for the key, stealing the oldest-allocated voice
// when the pool is exhausted. Key and velocity are clamped to 0..127; a
// velocity of zero is treated as a note-off per MIDI convention.
func (e *Engine) NoteOn(key, velocity int) {
	key = clampi(key, 0, 127)
	velocity = clampi(velocity, 0, 127)
	if velocity == 0 {
		e.NoteOff(key)
		return
	}
	e.sustained[key] = false

	slot := -1
	for i := range e.voices {
		if e.voices[i].active && e.voices[i].key == key {
			// Retrigger the voice already holding this key.
			slot = i
			break
		}
	}
	if slot < 0 {
		for i := range e.voices {
			if !e.voices[i].active {
				slot = i
				break
			}
		}
	}
	if slot < 0 {
		// Steal the voice with the smallest allocation counter; the strict
		// comparison breaks ties toward the lowest slot index.
		oldest := uint64(0)
		for i := range e.voices {
			if slot < 0 || e.voices[i].serial < oldest {
				slot = i
				oldest = e.voices[i].serial
			}
		}
	}

	e.serial++
	e.voices[slot].start(key, velocity, &e.settings, e.serial)
	e.storeActiveCount()
}

// NoteOff releases every voice holding the key. While the sustain pedal is
// down the release is deferred until the pedal comes up.
func (e *Engine) NoteOff(key int) {
	key = clampi(key, 0, 127)
	if e.sustainDown {
		e.sustained[key] = true
		return
	}
	for i := range e.voices {
		if e.voices[i].active && e.voices[i].key == key {
			e.voices[i].noteOff()
		}
	}
}

// SetParam applies an engineering-unit parameter value, clamped to range.
// Audible parameters reach the audio path only through their smoothers.
func (e *Engine) SetParam(id ParamID, value float32) {
	if id < 0 || id >= numParams {
		return
	}
	r := paramRanges[id]
	value = clampf(value, r.min, r.max)

	switch id {
	case ParamAttack:
		e.settings.Attack = value
		e.applyEnvelopes()
	case ParamDecay:
		e.settings.Decay = value
		e.applyEnvelopes()
	case ParamSustain:
		e.settings.Sustain = value
		e.applyEnvelopes()
	case ParamRelease:
		e.settings.Release = value
		e.applyEnvelopes()
	case ParamFilterCutoff:
		e.settings.FilterCutoff = value
		for i := range e.voices {
			e.voices[i].cutoff.SetTarget(value)
		}
	case ParamFilterResonance:
		e.settings.FilterResonance = value
		for i := range e.voices {
			e.voices[i].resonance.SetTarget(value)
		}
	case ParamWaveform:
		// Applied to voices at their next note start; switching the
		// generator under a sounding note would step the output.
		e.settings.Waveform = Waveform(int(value + 0.5))
	case ParamVolume:
		e.settings.MasterVolume = value
		e.volume.SetTarget(value)
	}
}

// SetParamNormalized applies a normalized 0..1 parameter value.
func (e *Engine) SetParamNormalized(id ParamID, norm float64) {
	e.SetParam(id, ParamFromNormalized(id, norm))
}

func (e *Engine) applyEnvelopes() {
	for i := range e.voices {
		e.voices[i].applyEnvelope(&e.settings)
	}
}

// Render fills out with mono samples: active voices summed, smoothed master
// volume applied, DC blocked and soft-clipped to [-1, 1]. There are no error
// paths and no allocations on this path.
func (e *Engine) Render(out []float32) {
	for i := range out {
		var mix float32
		for j := range e.voices {
			if e.voices[j].active {
				mix += e.voices[j].next()
			}
		}
		mix *= e.volume.Next()
		mix = e.dc.Process(mix)
		out[i] = softClip(mix)
	}
	e.storeActiveCount()
}

// ActiveVoices returns the number of sounding (active or releasing) voices.
// Safe to call from the control context.
func (e *Engine) ActiveVoices() int {
	return int(e.activeCount.Load())
}

func (e *Engine) storeActiveCount() {
	var n int32
	for i := range e.voices {
		if e.voices[i].active {
			n++
		}
	}
	e.activeCount.Store(n)
}
