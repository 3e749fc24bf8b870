package synth

import (
	"testing"
)

const envDT = 1.0 / 48000.0

func runEnvelope(e *Envelope, samples int) float32 {
	var level float32
	for i := 0; i < samples; i++ {
		level = e.Next(envDT)
	}
	return level
}

func TestEnvelopeStageProgression(t *testing.T) {
	var e Envelope
	e.SetADSR(0.01, 0.02, 0.5, 0.05)

	if e.Stage() != StageIdle {
		t.Fatalf("initial stage = %v, want idle", e.Stage())
	}
	e.Trigger()
	if e.Stage() != StageAttack {
		t.Fatalf("stage after trigger = %v, want attack", e.Stage())
	}

	runEnvelope(&e, 48000/100+10) // past 10 ms attack
	if e.Stage() != StageDecay {
		t.Fatalf("stage after attack time = %v, want decay", e.Stage())
	}

	runEnvelope(&e, 48000/50+10) // past 20 ms decay
	if e.Stage() != StageSustain {
		t.Fatalf("stage after decay time = %v, want sustain", e.Stage())
	}
	if lvl := e.Level(); lvl != 0.5 {
		t.Fatalf("sustain level = %f, want 0.5", lvl)
	}

	e.Release()
	if e.Stage() != StageRelease {
		t.Fatalf("stage after release = %v, want release", e.Stage())
	}
	runEnvelope(&e, 48000/20+10) // past 50 ms release
	if e.Stage() != StageIdle {
		t.Fatalf("stage after release time = %v, want idle", e.Stage())
	}
	if e.IsActive() {
		t.Fatal("envelope still active after release completed")
	}
}

func TestEnvelopeSustainHoldsIndefinitely(t *testing.T) {
	var e Envelope
	e.SetADSR(0.001, 0.001, 0.6, 0.1)
	e.Trigger()
	runEnvelope(&e, 48000) // one second, far past attack+decay

	if e.Stage() != StageSustain {
		t.Fatalf("stage = %v, want sustain", e.Stage())
	}
	if lvl := runEnvelope(&e, 48000); lvl != 0.6 {
		t.Fatalf("level after 2s = %f, want 0.6", lvl)
	}
}

func TestEnvelopeReleaseFromMidAttack(t *testing.T) {
	var e Envelope
	e.SetADSR(1.0, 0.1, 0.8, 0.05)
	e.Trigger()
	runEnvelope(&e, 4800) // 100 ms into a 1 s attack

	levelAtRelease := e.Level()
	if levelAtRelease <= 0 || levelAtRelease >= 0.5 {
		t.Fatalf("unexpected mid-attack level %f", levelAtRelease)
	}

	e.Release()
	first := e.Next(envDT)
	if first > levelAtRelease {
		t.Fatalf("release jumped up: %f -> %f", levelAtRelease, first)
	}
	if levelAtRelease-first > 0.01 {
		t.Fatalf("release stepped down: %f -> %f", levelAtRelease, first)
	}
}

func TestEnvelopeRetriggerFromCurrentLevel(t *testing.T) {
	var e Envelope
	e.SetADSR(0.001, 0.01, 0.7, 0.5)
	e.Trigger()
	runEnvelope(&e, 4800) // settle at sustain
	e.Release()
	runEnvelope(&e, 2400) // partway through release

	levelAtRetrigger := e.Level()
	if levelAtRetrigger <= 0 || levelAtRetrigger >= 0.7 {
		t.Fatalf("unexpected mid-release level %f", levelAtRetrigger)
	}

	e.Trigger()
	first := e.Next(envDT)
	if first < levelAtRetrigger {
		t.Fatalf("retrigger dropped level: %f -> %f", levelAtRetrigger, first)
	}
	if first-levelAtRetrigger > 0.01 {
		t.Fatalf("retrigger stepped up: %f -> %f", levelAtRetrigger, first)
	}
}

func TestEnvelopeTimeChangeMidStageIsContinuous(t *testing.T) {
	t.Run("attack", func(t *testing.T) {
		var e Envelope
		e.SetADSR(1.0, 0.1, 0.8, 0.05)
		e.Trigger()
		runEnvelope(&e, 4800) // 100 ms into a 1 s attack

		before := e.Level()
		e.SetADSR(0.01, 0.1, 0.8, 0.05)
		after := e.Next(envDT)
		if after < before {
			t.Fatalf("shortening attack dropped level: %f -> %f", before, after)
		}
		if after-before > 0.01 {
			t.Fatalf("shortening attack stepped level: %f -> %f", before, after)
		}
	})

	t.Run("decay", func(t *testing.T) {
		var e Envelope
		e.SetADSR(0.001, 1.0, 0.2, 0.05)
		e.Trigger()
		runEnvelope(&e, 9600) // 200 ms into a 1 s decay

		before := e.Level()
		e.SetADSR(0.001, 0.02, 0.2, 0.05)
		after := e.Next(envDT)
		if before-after > 0.01 || after > before {
			t.Fatalf("shortening decay stepped level: %f -> %f", before, after)
		}
	})

	t.Run("release", func(t *testing.T) {
		var e Envelope
		e.SetADSR(0.001, 0.01, 0.7, 2.0)
		e.Trigger()
		runEnvelope(&e, 4800)
		e.Release()
		runEnvelope(&e, 4800) // 100 ms into a 2 s release

		before := e.Level()
		e.SetADSR(0.001, 0.01, 0.7, 0.05)
		after := e.Next(envDT)
		if before-after > 0.01 || after > before {
			t.Fatalf("shortening release stepped level: %f -> %f", before, after)
		}
	})

	t.Run("unchanged params leave ramp alone", func(t *testing.T) {
		var e Envelope
		e.SetADSR(0.1, 0.1, 0.5, 0.1)
		e.Trigger()
		runEnvelope(&e, 2400) // halfway through a 100 ms attack

		before := e.Level()
		e.SetADSR(0.1, 0.1, 0.5, 0.1)
		runEnvelope(&e, 2400+10)
		if e.Stage() != StageDecay {
			t.Fatalf("attack did not finish on schedule, stage = %v at level %f (was %f)",
				e.Stage(), e.Level(), before)
		}
	})
}

func TestEnvelopeSustainRaisedMidDecayRampsUp(t *testing.T) {
	var e Envelope
	e.SetADSR(0.001, 0.5, 0.2, 0.05)
	e.Trigger()
	runEnvelope(&e, 12000) // 250 ms in, level near 0.6

	before := e.Level()
	e.SetADSR(0.001, 0.5, 0.9, 0.05)
	prev := before
	for i := 0; i < 48000; i++ {
		lvl := e.Next(envDT)
		if lvl+0.001 < prev {
			t.Fatalf("level fell at sample %d: %f -> %f", i, prev, lvl)
		}
		if lvl-prev > 0.01 {
			t.Fatalf("level stepped at sample %d: %f -> %f", i, prev, lvl)
		}
		prev = lvl
	}
	if e.Stage() != StageSustain || e.Level() != 0.9 {
		t.Fatalf("stage = %v level = %f, want sustain at 0.9", e.Stage(), e.Level())
	}
}

func TestEnvelopeReleaseWhileIdleIsNoOp(t *testing.T) {
	var e Envelope
	e.SetADSR(0.01, 0.01, 0.5, 0.1)
	e.Release()
	if e.Stage() != StageIdle {
		t.Fatalf("release from idle moved stage to %v", e.Stage())
	}
	if lvl := e.Next(envDT); lvl != 0 {
		t.Fatalf("idle level = %f, want 0", lvl)
	}
}

func TestEnvelopeOutputAlwaysInRange(t *testing.T) {
	var e Envelope
	e.SetADSR(0.002, 0.003, 0.4, 0.004)
	e.Trigger()
	for i := 0; i < 48000; i++ {
		lvl := e.Next(envDT)
		if lvl < 0 || lvl > 1 {
			t.Fatalf("level out of range at sample %d: %f", i, lvl)
		}
		if i == 10000 {
			e.Release()
		}
		if i == 20000 {
			e.Trigger()
		}
	}
}
