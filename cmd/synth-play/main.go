package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/cwbudde/algo-synth/preset"
	"github.com/cwbudde/algo-synth/synth"
)

// synthStream adapts the synthesizer to oto's pull model. Read runs on the
// audio goroutine and is the only caller of Process; main stays on the
// control side of the event queue.
type synthStream struct {
	synth *synth.Synth
	buf   []float32
}

func (st *synthStream) Read(p []byte) (int, error) {
	frames := len(p) / 4
	if cap(st.buf) < frames {
		st.buf = make([]float32, frames)
	}
	block := st.buf[:frames]
	st.synth.Process(block)
	for i, v := range block {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(v))
	}
	return frames * 4, nil
}

func main() {
	sampleRate := flag.Int("sample-rate", 48000, "Playback sample rate in Hz")
	presetPath := flag.String("preset", "", "Preset JSON file path (optional)")
	waveform := flag.String("waveform", "", "Waveform override: sine, saw, square, triangle")
	tempo := flag.Float64("tempo", 120, "Demo sequence tempo in BPM")
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

	s := synth.New(*sampleRate, settings)
	stream := &synthStream{synth: s}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   *sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
		BufferSize:   20 * time.Millisecond,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening audio device: %v\n", err)
		os.Exit(1)
	}
	<-ready

	player := ctx.NewPlayer(stream)
	player.Play()
	defer player.Close()

	fmt.Printf("Playing demo sequence at %d Hz (%s, %g BPM)...\n", *sampleRate, settings.Waveform, *tempo)
	playDemo(s, *tempo)

	// Let the release tails ring out.
	time.Sleep(time.Duration(float64(settings.Release)*float64(time.Second)) + 250*time.Millisecond)
	fmt.Println("Done.")
}

// playDemo walks a I-vi-IV-V progression in C with a closing chord.
func playDemo(s *synth.Synth, bpm float64) {
	beat := time.Duration(60.0 / bpm * float64(time.Second))
	arpeggios := [][]int{
		{60, 64, 67, 72}, // C
		{57, 60, 64, 69}, // Am
		{53, 57, 60, 65}, // F
		{55, 59, 62, 67}, // G
	}
	for _, arp := range arpeggios {
		for _, key := range arp {
			s.NoteOn(key, 96)
			time.Sleep(beat / 2)
			s.NoteOff(key)
		}
	}

	for _, key := range []int{48, 60, 64, 67, 72} {
		s.NoteOn(key, 110)
	}
	time.Sleep(2 * beat)
	for _, key := range []int{48, 60, 64, 67, 72} {
		s.NoteOff(key)
	}
}
