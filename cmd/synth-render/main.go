package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	fitcommon "github.com/cwbudde/algo-synth/internal/fitcommon"
	"github.com/cwbudde/algo-synth/preset"
	"github.com/cwbudde/algo-synth/synth"
)

func main() {
	notes := flag.String("notes", "69", "Comma-separated MIDI note numbers (69 = A4 = 440 Hz)")
	velocity := flag.Int("velocity", 100, "MIDI velocity (1-127)")
	gate := flag.Float64("gate", 1.0, "Seconds before NoteOff")
	duration := flag.Float64("duration", 2.0, "Total render duration in seconds")
	sampleRate := flag.Int("sample-rate", 48000, "Render sample rate in Hz")
	outRate := flag.Int("out-rate", 0, "Resample the output to this rate (0 = keep render rate)")
	presetPath := flag.String("preset", "", "Preset JSON file path (optional)")
	waveform := flag.String("waveform", "", "Waveform override: sine, saw, square, triangle")
	cutoff := flag.Float64("cutoff", 0, "Filter cutoff override in Hz (0 = preset value)")
	output := flag.String("output", "output.wav", "Output WAV file path")
	flag.Parse()

	settings := synth.DefaultSettings()
	if *presetPath != "" {
		var err error
		settings, err = preset.LoadJSON(*presetPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading preset %q: %v\n", *presetPath, err)
			os.Exit(1)
		}
	}
	if *waveform != "" {
		w, err := synth.ParseWaveform(*waveform)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		settings.Waveform = w
	}
	if *cutoff > 0 {
		settings.FilterCutoff = float32(*cutoff)
	}

	keys, err := parseNotes(*notes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	totalFrames := int(float64(*sampleRate) * (*duration))
	if totalFrames < 1 {
		totalFrames = 1
	}
	gateFrame := int(float64(*sampleRate) * (*gate))
	if gateFrame > totalFrames {
		gateFrame = totalFrames
	}

	fmt.Printf("Rendering notes %v, velocity %d, %.2fs gate, %.2fs total at %d Hz (waveform: %s)...\n",
		keys, *velocity, *gate, *duration, *sampleRate, settings.Waveform)

	s := synth.New(*sampleRate, settings)
	for _, key := range keys {
		s.NoteOn(key, *velocity)
	}

	const blockSize = 128
	samples := make([]float32, 0, totalFrames)
	block := make([]float32, blockSize)
	released := false
	for rendered := 0; rendered < totalFrames; {
		n := blockSize
		if rendered+n > totalFrames {
			n = totalFrames - rendered
		}
		if !released && rendered >= gateFrame {
			for _, key := range keys {
				s.NoteOff(key)
			}
			released = true
		}
		s.Process(block[:n])
		samples = append(samples, block[:n]...)
		rendered += n
	}

	writeRate := *sampleRate
	if *outRate > 0 && *outRate != *sampleRate {
		res, err := fitcommon.ResampleIfNeeded(fitcommon.MonoToFloat64(samples), *sampleRate, *outRate)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error resampling to %d Hz: %v\n", *outRate, err)
			os.Exit(1)
		}
		samples = samples[:0]
		for _, v := range res {
			samples = append(samples, float32(v))
		}
		writeRate = *outRate
	}

	if err := fitcommon.WriteMonoWAV(*output, samples, writeRate); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing WAV file: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Successfully wrote %s (%d frames, RMS %.4f)\n", *output, len(samples), fitcommon.RMS(samples))
}

func parseNotes(raw string) ([]int, error) {
	parts := strings.Split(raw, ",")
	keys := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		var key int
		if _, err := fmt.Sscanf(p, "%d", &key); err != nil {
			return nil, fmt.Errorf("invalid note %q", p)
		}
		if key < 0 || key > 127 {
			return nil, fmt.Errorf("note %d out of MIDI range 0..127", key)
		}
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("no notes given")
	}
	return keys, nil
}
