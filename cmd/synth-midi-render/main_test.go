package main

import (
	"testing"

	"gitlab.com/gomidi/midi/v2/smf"
)

func tempoMeta(usPerBeat uint32) smf.Message {
	return smf.Message([]byte{
		0xFF, 0x51, 0x03,
		byte(usPerBeat >> 16),
		byte(usPerBeat >> 8),
		byte(usPerBeat),
	})
}

// A format-1 file keeps tempo in track 0 and notes in later tracks; the
// tempo track must still govern note timing.
func TestScheduleSMFTempoTrackGovernsNoteTracks(t *testing.T) {
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(480)

	var tempoTrack smf.Track
	tempoTrack.Add(0, tempoMeta(1000000)) // 60 BPM
	tempoTrack.Close(0)
	if err := s.Add(tempoTrack); err != nil {
		t.Fatalf("add tempo track: %v", err)
	}

	var notes smf.Track
	notes.Add(480, smf.Message([]byte{0x90, 60, 100}))
	notes.Add(480, smf.Message([]byte{0x80, 60, 0}))
	notes.Close(0)
	if err := s.Add(notes); err != nil {
		t.Fatalf("add note track: %v", err)
	}

	events := scheduleSMF(s, 48000)
	if len(events) != 2 {
		t.Fatalf("scheduled %d events, want 2", len(events))
	}
	// One quarter note at 60 BPM is one second.
	if events[0].kind != evNoteOn || events[0].frame != 48000 {
		t.Errorf("note-on scheduled at frame %d, want 48000", events[0].frame)
	}
	if events[1].kind != evNoteOff || events[1].frame != 96000 {
		t.Errorf("note-off scheduled at frame %d, want 96000", events[1].frame)
	}
}

func TestScheduleSMFMidSongTempoChange(t *testing.T) {
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(480)

	var track smf.Track
	track.Add(480, smf.Message([]byte{0x90, 60, 100})) // quarter at default 120 BPM
	track.Add(0, tempoMeta(1000000))                   // drop to 60 BPM
	track.Add(480, smf.Message([]byte{0x90, 64, 100})) // quarter at 60 BPM
	track.Close(0)
	if err := s.Add(track); err != nil {
		t.Fatalf("add track: %v", err)
	}

	events := scheduleSMF(s, 48000)
	if len(events) != 2 {
		t.Fatalf("scheduled %d events, want 2", len(events))
	}
	if events[0].frame != 24000 {
		t.Errorf("first note at frame %d, want 24000 (120 BPM)", events[0].frame)
	}
	if events[1].frame != 24000+48000 {
		t.Errorf("second note at frame %d, want 72000 (60 BPM after the change)", events[1].frame)
	}
}

func TestScheduleSMFDefaultsTo120BPM(t *testing.T) {
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(960)

	var track smf.Track
	track.Add(960, smf.Message([]byte{0x90, 60, 100}))
	track.Close(0)
	if err := s.Add(track); err != nil {
		t.Fatalf("add track: %v", err)
	}

	events := scheduleSMF(s, 48000)
	if len(events) != 1 || events[0].frame != 24000 {
		t.Fatalf("got %v, want one note at frame 24000", events)
	}
}
