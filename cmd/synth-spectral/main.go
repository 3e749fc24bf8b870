package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/cwbudde/algo-synth/analysis"
	fitcommon "github.com/cwbudde/algo-synth/internal/fitcommon"
)

type band struct {
	name string
	loHz float64
	hiHz float64
}

var bands = []band{
	{"sub-bass (20-100Hz)", 20, 100},
	{"bass (100-300Hz)", 100, 300},
	{"low-mid (300-1kHz)", 300, 1000},
	{"mid (1-3kHz)", 1000, 3000},
	{"hi-mid (3-6kHz)", 3000, 6000},
	{"high (6-12kHz)", 6000, 12000},
	{"air (12-20kHz)", 12000, 20000},
}

func main() {
	input := flag.String("input", "", "Input WAV file")
	reference := flag.String("reference", "", "Reference WAV for distance metrics (optional)")
	fftSize := flag.Int("fft-size", 4096, "FFT size (power of two)")
	fundamental := flag.Float64("fundamental", 0, "Report alias ratio against this fundamental in Hz (0 = detect from peak)")
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "Usage: synth-spectral -input take.wav [-reference ref.wav]")
		os.Exit(2)
	}

	signal, sr, err := fitcommon.ReadWAVMono(*input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %q: %v\n", *input, err)
		os.Exit(1)
	}
	fmt.Printf("%s: %d frames at %d Hz (%.2fs)\n", *input, len(signal), sr, float64(len(signal))/float64(sr))

	spec, err := analysis.NewSpectrum(*fftSize)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	binHz := spec.BinHz(sr)
	mags := spec.AverageMagnitudes(signal, *fftSize/2)

	peak := analysis.PeakFrequency(mags, binHz)
	fmt.Printf("\npeak frequency: %.2f Hz\n", peak)

	f0 := *fundamental
	if f0 <= 0 {
		f0 = peak
	}
	ratio := analysis.AliasRatio(mags, binHz, f0)
	fmt.Printf("alias ratio vs %.2f Hz fundamental: %.3e (%.1f dB)\n", f0, ratio, 10*math.Log10(ratio+1e-30))

	var total float64
	for _, m := range mags {
		total += m * m
	}
	fmt.Println("\nband energy:")
	for _, b := range bands {
		e := analysis.BandEnergy(mags, binHz, b.loHz, b.hiHz)
		share := 0.0
		if total > 0 {
			share = 100 * e / total
		}
		fmt.Printf("  %-22s %8.3e  (%5.1f%%)\n", b.name, e, share)
	}

	if *reference == "" {
		return
	}
	ref, refSR, err := fitcommon.ReadWAVMono(*reference)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %q: %v\n", *reference, err)
		os.Exit(1)
	}
	ref, err = fitcommon.ResampleIfNeeded(ref, refSR, sr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resampling reference: %v\n", err)
		os.Exit(1)
	}

	m := analysis.Compare(ref, signal, sr)
	fmt.Printf("\ndistance vs %s:\n", *reference)
	fmt.Printf("  aligned frames:   %d (lag %d)\n", m.AlignedFrames, m.LagSamples)
	fmt.Printf("  time RMSE:        %.4f\n", m.TimeRMSE)
	fmt.Printf("  envelope RMSE:    %.2f dB\n", m.EnvelopeRMSEDB)
	fmt.Printf("  spectral RMSE:    %.2f dB\n", m.SpectralRMSEDB)
	fmt.Printf("  score:            %.4f\n", m.Score)
	fmt.Printf("  similarity:       %.4f\n", m.Similarity)
}
