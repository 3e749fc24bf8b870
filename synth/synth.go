// Package synth implements a real-time polyphonic subtractive synthesizer:
// anti-aliased oscillators, per-voice ADSR envelopes and resonant low-pass
// filters, a fixed sixteen-voice pool with oldest-first stealing, and a
// lock-free event queue separating the control context from the audio
// context.
package synth

// Synth is the two-context front of the engine. Control methods (NoteOn,
// NoteOff, ControllerChange, SetParamNormalized) enqueue events and never
// block; Process drains the queue and renders on the audio context. Each
// side must be driven by a single goroutine.
type Synth struct {
	engine *Engine
	queue  eventQueue

	// Control-side shadow of the normalized parameter values so reads
	// round-trip exactly without crossing into the audio context.
	shadow [numParams]float64
}

// New creates a synthesizer at the given sample rate.
func New(sampleRate int, settings Settings) *Synth {
	settings.Clamp()
	s := &Synth{engine: NewEngine(sampleRate, settings)}
	for id := ParamID(0); id < numParams; id++ {
		s.shadow[id] = ParamToNormalized(id, settings.param(id))
	}
	return s
}

// SampleRate returns the synthesizer's sample rate in Hz.
func (s *Synth) SampleRate() int {
	return s.engine.SampleRate()
}

// NoteOn enqueues a note-on. The event is dropped if the queue is full.
func (s *Synth) NoteOn(key, velocity int) {
	s.queue.push(NoteOnEvent(key, velocity))
}

// NoteOff enqueues a note-off.
func (s *Synth) NoteOff(key int) {
	s.queue.push(NoteOffEvent(key))
}

// ControllerChange enqueues a MIDI control change.
func (s *Synth) ControllerChange(controller, value int) {
	s.queue.push(ControllerEvent(controller, value))
}

// SetParamNormalized enqueues a parameter change given as a normalized 0..1
// value, clamped first.
func (s *Synth) SetParamNormalized(id ParamID, norm float64) {
	if id < 0 || id >= numParams {
		return
	}
	norm = clamp01(norm)
	s.shadow[id] = norm
	s.queue.push(Event{Kind: eventParam, Param: id, Target: norm})
}

// ParamNormalized returns the last normalized value passed to
// SetParamNormalized for the parameter, or the initial setting.
func (s *Synth) ParamNormalized(id ParamID) float64 {
	if id < 0 || id >= numParams {
		return 0
	}
	return s.shadow[id]
}

// ActiveVoices returns the number of sounding voices as of the last
// completed Process call.
func (s *Synth) ActiveVoices() int {
	return s.engine.ActiveVoices()
}

// Process applies all queued events in arrival order and renders the next
// block of mono samples into out. Audio context only.
func (s *Synth) Process(out []float32) {
	var ev Event
	for s.queue.pop(&ev) {
		switch ev.Kind {
		case EventNoteOn:
			s.engine.NoteOn(int(ev.Key), int(ev.Value))
		case EventNoteOff:
			s.engine.NoteOff(int(ev.Key))
		case EventController:
			s.engine.ControllerChange(int(ev.Key), int(ev.Value))
		case eventParam:
			s.engine.SetParamNormalized(ev.Param, ev.Target)
		}
	}
	s.engine.Render(out)
}
