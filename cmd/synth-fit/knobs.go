package main

import (
	"math"

	fitcommon "github.com/cwbudde/algo-synth/internal/fitcommon"
	"github.com/cwbudde/algo-synth/synth"
)

// knobDef describes one optimizable dimension. The optimizer works in
// normalized [0, 1] space; Min/Max give the engineering range and IsInt
// marks discrete knobs (the waveform selector).
type knobDef struct {
	Name  string
	Min   float64
	Max   float64
	IsInt bool
}

func knobDefs() []knobDef {
	return []knobDef{
		{Name: "attack", Min: synth.MinAttackSec, Max: synth.MaxAttackSec},
		{Name: "decay", Min: synth.MinDecaySec, Max: synth.MaxDecaySec},
		{Name: "sustain", Min: 0, Max: 1},
		{Name: "release", Min: synth.MinReleaseSec, Max: synth.MaxReleaseSec},
		{Name: "filter_cutoff", Min: synth.MinCutoffHz, Max: synth.MaxCutoffHz},
		{Name: "filter_resonance", Min: synth.MinResonance, Max: synth.MaxResonance},
		{Name: "waveform", Min: 0, Max: 3, IsInt: true},
	}
}

// settingsFromPosition decodes a normalized optimizer position into engine
// settings.
func settingsFromPosition(pos []float64, defs []knobDef) synth.Settings {
	s := synth.DefaultSettings()
	for i, d := range defs {
		if i >= len(pos) {
			break
		}
		v := fitcommon.Lerp(fitcommon.Clamp(pos[i], 0, 1), d.Min, d.Max)
		if d.IsInt {
			v = math.Round(v)
		}
		switch d.Name {
		case "attack":
			s.Attack = float32(v)
		case "decay":
			s.Decay = float32(v)
		case "sustain":
			s.Sustain = float32(v)
		case "release":
			s.Release = float32(v)
		case "filter_cutoff":
			s.FilterCutoff = float32(v)
		case "filter_resonance":
			s.FilterResonance = float32(v)
		case "waveform":
			s.Waveform = synth.Waveform(int(v))
		}
	}
	s.Clamp()
	return s
}

// positionFromSettings encodes settings back into normalized space, used to
// seed the search at the defaults.
func positionFromSettings(s synth.Settings, defs []knobDef) []float64 {
	pos := make([]float64, len(defs))
	for i, d := range defs {
		var v float64
		switch d.Name {
		case "attack":
			v = float64(s.Attack)
		case "decay":
			v = float64(s.Decay)
		case "sustain":
			v = float64(s.Sustain)
		case "release":
			v = float64(s.Release)
		case "filter_cutoff":
			v = float64(s.FilterCutoff)
		case "filter_resonance":
			v = float64(s.FilterResonance)
		case "waveform":
			v = float64(s.Waveform)
		}
		pos[i] = fitcommon.Norm(v, d.Min, d.Max)
	}
	return pos
}

func knobMap(pos []float64, defs []knobDef) map[string]float64 {
	out := make(map[string]float64, len(defs))
	for i, d := range defs {
		if i >= len(pos) {
			break
		}
		v := fitcommon.Lerp(fitcommon.Clamp(pos[i], 0, 1), d.Min, d.Max)
		if d.IsInt {
			v = math.Round(v)
		}
		out[d.Name] = v
	}
	return out
}
