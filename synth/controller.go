package synth

// MIDI controller numbers the engine responds to.
const (
	ccModWheel  = 1
	ccSustain   = 64
	ccResonance = 71
	ccCutoff    = 74
)

// ControllerChange maps a MIDI control change onto engine parameters.
// CC 1 and 74 drive the filter cutoff, CC 71 the resonance and CC 64 the
// sustain pedal; other controller numbers are ignored.
func (e *Engine) ControllerChange(controller, value int) {
	value = clampi(value, 0, 127)
	norm := float64(value) / 127.0

	switch controller {
	case ccModWheel, ccCutoff:
		e.SetParamNormalized(ParamFilterCutoff, norm)
	case ccResonance:
		e.SetParamNormalized(ParamFilterResonance, norm)
	case ccSustain:
		e.setSustainPedal(value >= 64)
	}
}

func (e *Engine) setSustainPedal(down bool) {
	if down == e.sustainDown {
		return
	}
	e.sustainDown = down
	if down {
		return
	}
	// Pedal up: deliver the note-offs that arrived while it was held.
	for key := range e.sustained {
		if e.sustained[key] {
			e.sustained[key] = false
			e.NoteOff(key)
		}
	}
}
