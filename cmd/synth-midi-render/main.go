package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"gitlab.com/gomidi/midi/v2/smf"

	fitcommon "github.com/cwbudde/algo-synth/internal/fitcommon"
	"github.com/cwbudde/algo-synth/preset"
	"github.com/cwbudde/algo-synth/synth"
)

// scheduledEvent is one MIDI message pinned to an absolute sample offset.
type scheduledEvent struct {
	frame      int
	kind       eventKind
	key        uint8
	value      uint8
	controller uint8
}

type eventKind int

const (
	evNoteOn eventKind = iota
	evNoteOff
	evController
)

func main() {
	input := flag.String("input", "", "Input Standard MIDI File")
	presetPath := flag.String("preset", "", "Preset JSON file path (optional)")
	sampleRate := flag.Int("sample-rate", 48000, "Render sample rate in Hz")
	tail := flag.Float64("tail", 1.0, "Seconds of tail after the last event")
	output := flag.String("output", "output.wav", "Output WAV file path")
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "Usage: synth-midi-render -input song.mid [-preset p.json] [-output out.wav]")
		os.Exit(2)
	}

	settings := synth.DefaultSettings()
	if *presetPath != "" {
		var err error
		settings, err = preset.LoadJSON(*presetPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading preset %q: %v\n", *presetPath, err)
			os.Exit(1)
		}
	}

	events, err := scheduleMIDIFile(*input, *sampleRate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %q: %v\n", *input, err)
		os.Exit(1)
	}
	if len(events) == 0 {
		fmt.Fprintf(os.Stderr, "No note events in %q\n", *input)
		os.Exit(1)
	}

	lastFrame := events[len(events)-1].frame
	totalFrames := lastFrame + int(float64(*sampleRate)*(*tail))

	fmt.Printf("Rendering %d events (%.2fs + %.2fs tail) at %d Hz...\n",
		len(events), float64(lastFrame)/float64(*sampleRate), *tail, *sampleRate)

	s := synth.New(*sampleRate, settings)

	const blockSize = 128
	samples := make([]float32, 0, totalFrames)
	block := make([]float32, blockSize)
	next := 0
	for rendered := 0; rendered < totalFrames; {
		n := blockSize
		if rendered+n > totalFrames {
			n = totalFrames - rendered
		}
		for next < len(events) && events[next].frame < rendered+n {
			ev := events[next]
			switch ev.kind {
			case evNoteOn:
				s.NoteOn(int(ev.key), int(ev.value))
			case evNoteOff:
				s.NoteOff(int(ev.key))
			case evController:
				s.ControllerChange(int(ev.controller), int(ev.value))
			}
			next++
		}
		s.Process(block[:n])
		samples = append(samples, block[:n]...)
		rendered += n
	}

	if err := fitcommon.WriteMonoWAV(*output, samples, *sampleRate); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing WAV file: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Successfully wrote %s (%d frames)\n", *output, len(samples))
}

// scheduleMIDIFile reads an SMF from disk and flattens it into a single
// frame-ordered event list.
func scheduleMIDIFile(path string, sampleRate int) ([]scheduledEvent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := smf.ReadFrom(f)
	if err != nil {
		return nil, fmt.Errorf("parse SMF: %w", err)
	}
	return scheduleSMF(s, sampleRate), nil
}

// scheduleSMF flattens all tracks of an SMF into one list of events at
// absolute sample offsets. Tempo metas from every track are collected into a
// shared tempo map first, so a format-1 tempo track governs the note tracks.
func scheduleSMF(s *smf.SMF, sampleRate int) []scheduledEvent {
	ticksPerQuarter := uint16(480)
	if mt, ok := s.TimeFormat.(smf.MetricTicks); ok {
		ticksPerQuarter = mt.Resolution()
	}
	tempo := buildTempoMap(s.Tracks, ticksPerQuarter)

	var events []scheduledEvent
	for _, track := range s.Tracks {
		var tick int64
		for _, ev := range track {
			tick += int64(ev.Delta)
			msg := ev.Message
			if len(msg) < 3 || msg[0] == 0xFF {
				continue
			}
			frame := int(tickSeconds(tempo, tick) * float64(sampleRate))
			status := msg[0] & 0xF0
			switch {
			case status == 0x90 && msg[2] > 0:
				events = append(events, scheduledEvent{frame: frame, kind: evNoteOn, key: msg[1], value: msg[2]})
			case status == 0x80 || (status == 0x90 && msg[2] == 0):
				events = append(events, scheduledEvent{frame: frame, kind: evNoteOff, key: msg[1]})
			case status == 0xB0:
				events = append(events, scheduledEvent{frame: frame, kind: evController, controller: msg[1], value: msg[2]})
			}
		}
	}

	sort.SliceStable(events, func(i, j int) bool { return events[i].frame < events[j].frame })
	return events
}

// tempoChange marks the tempo in effect from an absolute tick onward, with
// the wall time at that tick precomputed.
type tempoChange struct {
	tick       int64
	seconds    float64
	secPerTick float64
}

// buildTempoMap gathers tempo meta events across all tracks in tick order.
// The map always starts with the 120 BPM default at tick zero.
func buildTempoMap(tracks []smf.Track, ticksPerQuarter uint16) []tempoChange {
	type rawTempo struct {
		tick       int64
		secPerTick float64
	}
	var raw []rawTempo
	for _, track := range tracks {
		var tick int64
		for _, ev := range track {
			tick += int64(ev.Delta)
			msg := ev.Message
			if len(msg) < 6 || msg[0] != 0xFF || msg[1] != 0x51 || msg[2] != 0x03 {
				continue
			}
			usPerBeat := uint32(msg[3])<<16 | uint32(msg[4])<<8 | uint32(msg[5])
			if usPerBeat > 0 {
				raw = append(raw, rawTempo{tick: tick, secPerTick: float64(usPerBeat) / 1e6 / float64(ticksPerQuarter)})
			}
		}
	}
	sort.SliceStable(raw, func(i, j int) bool { return raw[i].tick < raw[j].tick })

	changes := []tempoChange{{secPerTick: 0.5 / float64(ticksPerQuarter)}}
	for _, r := range raw {
		prev := changes[len(changes)-1]
		if r.tick == prev.tick {
			changes[len(changes)-1].secPerTick = r.secPerTick
			continue
		}
		changes = append(changes, tempoChange{
			tick:       r.tick,
			seconds:    prev.seconds + float64(r.tick-prev.tick)*prev.secPerTick,
			secPerTick: r.secPerTick,
		})
	}
	return changes
}

// tickSeconds converts an absolute tick to seconds through the tempo map.
func tickSeconds(tempo []tempoChange, tick int64) float64 {
	i := sort.Search(len(tempo), func(i int) bool { return tempo[i].tick > tick }) - 1
	c := tempo[i]
	return c.seconds + float64(tick-c.tick)*c.secPerTick
}
