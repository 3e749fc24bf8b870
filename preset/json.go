// Package preset loads and saves synthesizer settings as JSON files.
// Absent fields keep their defaults; present fields are validated strictly,
// since a bad value in a preset file is an authoring error worth surfacing
// rather than silently clamping.
package preset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cwbudde/algo-synth/synth"
)

// File is the JSON schema for synthesizer presets.
type File struct {
	Name            string   `json:"name,omitempty"`
	Attack          *float32 `json:"attack"`
	Decay           *float32 `json:"decay"`
	Sustain         *float32 `json:"sustain"`
	Release         *float32 `json:"release"`
	FilterCutoff    *float32 `json:"filter_cutoff"`
	FilterResonance *float32 `json:"filter_resonance"`
	Waveform        string   `json:"waveform,omitempty"`
	MasterVolume    *float32 `json:"master_volume"`
}

// LoadJSON loads a preset file and applies it on top of the default
// settings.
func LoadJSON(path string) (synth.Settings, error) {
	s := synth.DefaultSettings()

	b, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return s, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := ApplyFile(&s, &f); err != nil {
		return s, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ApplyFile applies a parsed preset file onto existing settings.
func ApplyFile(dst *synth.Settings, f *File) error {
	if dst == nil {
		return fmt.Errorf("nil destination settings")
	}
	if f == nil {
		return nil
	}

	if err := applyRanged(&dst.Attack, f.Attack, "attack", synth.MinAttackSec, synth.MaxAttackSec); err != nil {
		return err
	}
	if err := applyRanged(&dst.Decay, f.Decay, "decay", synth.MinDecaySec, synth.MaxDecaySec); err != nil {
		return err
	}
	if err := applyRanged(&dst.Sustain, f.Sustain, "sustain", 0, 1); err != nil {
		return err
	}
	if err := applyRanged(&dst.Release, f.Release, "release", synth.MinReleaseSec, synth.MaxReleaseSec); err != nil {
		return err
	}
	if err := applyRanged(&dst.FilterCutoff, f.FilterCutoff, "filter_cutoff", synth.MinCutoffHz, synth.MaxCutoffHz); err != nil {
		return err
	}
	if err := applyRanged(&dst.FilterResonance, f.FilterResonance, "filter_resonance", synth.MinResonance, synth.MaxResonance); err != nil {
		return err
	}
	if err := applyRanged(&dst.MasterVolume, f.MasterVolume, "master_volume", 0, 1); err != nil {
		return err
	}
	if f.Waveform != "" {
		w, err := synth.ParseWaveform(f.Waveform)
		if err != nil {
			return err
		}
		dst.Waveform = w
	}
	return nil
}

func applyRanged(dst *float32, src *float32, name string, lo, hi float32) error {
	if src == nil {
		return nil
	}
	if *src < lo || *src > hi {
		return fmt.Errorf("%s must be in [%g, %g], got %g", name, lo, hi, *src)
	}
	*dst = *src
	return nil
}

// SaveJSON writes the settings as a preset file, creating parent
// directories as needed.
func SaveJSON(path, name string, s synth.Settings) error {
	f := File{
		Name:            name,
		Attack:          &s.Attack,
		Decay:           &s.Decay,
		Sustain:         &s.Sustain,
		Release:         &s.Release,
		FilterCutoff:    &s.FilterCutoff,
		FilterResonance: &s.FilterResonance,
		Waveform:        s.Waveform.String(),
		MasterVolume:    &s.MasterVolume,
	}
	b, err := json.MarshalIndent(&f, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, b, 0o644)
}
