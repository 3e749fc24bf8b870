package synth

import (
	"math"
	"testing"
)

func TestSynthNoteFlowThroughQueue(t *testing.T) {
	s := New(48000, DefaultSettings())

	s.NoteOn(69, 100)
	if s.ActiveVoices() != 0 {
		t.Fatal("note became active before Process drained the queue")
	}

	out := make([]float32, 4800)
	s.Process(out)
	if s.ActiveVoices() != 1 {
		t.Fatalf("active voices = %d, want 1", s.ActiveVoices())
	}

	var peak float64
	for _, v := range out {
		if a := math.Abs(float64(v)); a > peak {
			peak = a
		}
	}
	if peak < 0.01 {
		t.Fatalf("peak %f, expected audible output", peak)
	}
}

func TestSynthEventOrderPreserved(t *testing.T) {
	settings := DefaultSettings()
	settings.Release = 0.02
	s := New(48000, settings)

	// On followed by off in the same block: the voice must go through its
	// release, not stay held.
	s.NoteOn(60, 100)
	s.NoteOff(60)
	out := make([]float32, 4800)
	s.Process(out)

	if n := s.ActiveVoices(); n != 0 {
		t.Fatalf("active voices = %d, want 0 after on+off in one block", n)
	}
}

func TestSynthParamNormalizedRoundTrip(t *testing.T) {
	s := New(48000, DefaultSettings())

	for id := ParamID(0); id < numParams; id++ {
		s.SetParamNormalized(id, 0.5)
		if got := s.ParamNormalized(id); got != 0.5 {
			t.Errorf("param %v: round trip 0.5 -> %f", id, got)
		}
	}
}

func TestSynthParamNormalizedClamped(t *testing.T) {
	s := New(48000, DefaultSettings())
	s.SetParamNormalized(ParamFilterCutoff, 2.5)
	if got := s.ParamNormalized(ParamFilterCutoff); got != 1.0 {
		t.Fatalf("normalized value = %f, want clamped to 1", got)
	}
	s.SetParamNormalized(ParamFilterCutoff, -3)
	if got := s.ParamNormalized(ParamFilterCutoff); got != 0.0 {
		t.Fatalf("normalized value = %f, want clamped to 0", got)
	}
}

func TestSynthParamReachesEngine(t *testing.T) {
	s := New(48000, DefaultSettings())
	s.SetParamNormalized(ParamWaveform, 1.0)
	s.Process(make([]float32, 64))

	if got := s.engine.Settings().Waveform; got != Triangle {
		t.Fatalf("engine waveform = %v, want triangle", got)
	}
}

func TestSynthControllerChange(t *testing.T) {
	s := New(48000, DefaultSettings())
	s.ControllerChange(74, 127)
	s.Process(make([]float32, 64))

	if got := s.engine.Settings().FilterCutoff; got != MaxCutoffHz {
		t.Fatalf("cutoff after CC74=127 is %f, want %f", got, float32(MaxCutoffHz))
	}

	s.ControllerChange(71, 0)
	s.Process(make([]float32, 64))
	if got := s.engine.Settings().FilterResonance; got != MinResonance {
		t.Fatalf("resonance after CC71=0 is %f, want %f", got, float32(MinResonance))
	}
}

func TestParamFromNormalizedWaveformQuantizes(t *testing.T) {
	cases := []struct {
		norm float64
		want Waveform
	}{
		{0.0, Sine},
		{0.1, Sine},
		{0.34, Saw},
		{0.5, Square},
		{0.67, Square},
		{0.84, Triangle},
		{1.0, Triangle},
	}
	for _, tt := range cases {
		got := Waveform(int(ParamFromNormalized(ParamWaveform, tt.norm)))
		if got != tt.want {
			t.Errorf("norm %.2f -> %v, want %v", tt.norm, got, tt.want)
		}
	}
}

func TestSettingsClamp(t *testing.T) {
	s := Settings{
		Attack:          -1,
		Decay:           100,
		Sustain:         2,
		Release:         0,
		FilterCutoff:    1,
		FilterResonance: 1000,
		Waveform:        Waveform(9),
		MasterVolume:    -0.5,
	}
	s.Clamp()
	if s.Attack != MinAttackSec || s.Decay != MaxDecaySec || s.Sustain != 1 {
		t.Fatalf("envelope clamp failed: %+v", s)
	}
	if s.FilterCutoff != MinCutoffHz || s.FilterResonance != MaxResonance {
		t.Fatalf("filter clamp failed: %+v", s)
	}
	if s.Waveform != Sine || s.MasterVolume != 0 {
		t.Fatalf("waveform/volume clamp failed: %+v", s)
	}
}

func BenchmarkSynthProcess(b *testing.B) {
	s := New(48000, DefaultSettings())
	for key := 60; key < 68; key++ {
		s.NoteOn(key, 100)
	}
	out := make([]float32, 512)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Process(out)
	}
}
