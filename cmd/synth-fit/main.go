package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"runtime"

	"github.com/cwbudde/algo-synth/analysis"
	fitcommon "github.com/cwbudde/algo-synth/internal/fitcommon"
	"github.com/cwbudde/algo-synth/preset"
)

func main() {
	reference := flag.String("reference", "", "Reference WAV file to match")
	note := flag.Int("note", 0, "MIDI note of the reference (0 = detect from spectral peak)")
	velocity := flag.Int("velocity", 100, "MIDI velocity used for candidate renders")
	gate := flag.Float64("gate", 0.5, "Seconds before NoteOff in candidate renders")
	sampleRate := flag.Int("sample-rate", 48000, "Working sample rate in Hz")
	seed := flag.Int64("seed", 1, "Random seed")
	maxEvals := flag.Int("max-evals", 2000, "Evaluation budget")
	timeBudget := flag.Float64("time-budget", 300, "Wall-clock budget in seconds")
	pop := flag.Int("pop", 20, "Mayfly population size per worker")
	workersRaw := flag.String("workers", "auto", "Parallel workers (integer or 'auto')")
	topK := flag.Int("top", 10, "Candidates kept in the report")
	outputPreset := flag.String("output-preset", "fitted.json", "Fitted preset output path")
	reportPath := flag.String("report", "", "JSON report output path (optional)")
	flag.Parse()

	if *reference == "" {
		fmt.Fprintln(os.Stderr, "Usage: synth-fit -reference target.wav [-note 69] [-output-preset fitted.json]")
		os.Exit(2)
	}

	workers, err := fitcommon.ParseWorkers(*workersRaw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid -workers: %v\n", err)
		os.Exit(2)
	}
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	ref, refSR, err := fitcommon.ReadWAVMono(*reference)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %q: %v\n", *reference, err)
		os.Exit(1)
	}
	ref, err = fitcommon.ResampleIfNeeded(ref, refSR, *sampleRate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resampling reference: %v\n", err)
		os.Exit(1)
	}

	fitNote := *note
	if fitNote <= 0 {
		fitNote, err = detectNote(ref, *sampleRate)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error detecting note: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Detected reference note: %d\n", fitNote)
	}

	cfg := &fitConfig{
		reference:  ref,
		sampleRate: *sampleRate,
		note:       fitNote,
		velocity:   *velocity,
		gate:       *gate,
		duration:   float64(len(ref)) / float64(*sampleRate),
		seed:       *seed,
		maxEvals:   *maxEvals,
		timeBudget: *timeBudget,
		pop:        *pop,
		workers:    workers,
		topK:       *topK,
	}

	fmt.Printf("Fitting %d knobs against %s (%.2fs) with %d workers, budget %d evals / %.0fs...\n",
		len(knobDefs()), *reference, cfg.duration, workers, *maxEvals, *timeBudget)

	res, err := optimize(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Optimization failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Best score %.4f (similarity %.4f) after %d evals in %.1fs\n",
		res.metrics.Score, res.metrics.Similarity, res.evals, res.elapsed)
	fmt.Printf("  attack=%.3fs decay=%.3fs sustain=%.2f release=%.3fs cutoff=%.0fHz Q=%.2f waveform=%s\n",
		res.settings.Attack, res.settings.Decay, res.settings.Sustain, res.settings.Release,
		res.settings.FilterCutoff, res.settings.FilterResonance, res.settings.Waveform)

	if err := preset.SaveJSON(*outputPreset, "fitted", res.settings); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing preset: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", *outputPreset)

	if *reportPath != "" {
		report := struct {
			Reference string           `json:"reference"`
			Note      int              `json:"note"`
			Evals     int              `json:"evals"`
			ElapsedS  float64          `json:"elapsed_s"`
			Metrics   analysis.Metrics `json:"metrics"`
			Top       []topCandidate   `json:"top"`
		}{*reference, fitNote, res.evals, res.elapsed, res.metrics, res.top}
		b, err := json.MarshalIndent(&report, "", "  ")
		if err == nil {
			err = os.WriteFile(*reportPath, append(b, '\n'), 0o644)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error writing report: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", *reportPath)
	}
}

// detectNote estimates the nearest MIDI note from the reference's spectral
// peak.
func detectNote(signal []float64, sampleRate int) (int, error) {
	spec, err := analysis.NewSpectrum(8192)
	if err != nil {
		return 0, err
	}
	mags := spec.AverageMagnitudes(signal, 4096)
	peak := analysis.PeakFrequency(mags, spec.BinHz(sampleRate))
	if peak <= 0 {
		return 0, fmt.Errorf("no spectral peak found")
	}
	note := int(math.Round(69.0 + 12.0*math.Log2(peak/440.0)))
	if note < 0 || note > 127 {
		return 0, fmt.Errorf("peak %.1f Hz outside MIDI range", peak)
	}
	return note, nil
}
