package synth

// EnvelopeStage identifies the ADSR state machine's current state.
type EnvelopeStage int

const (
	StageIdle EnvelopeStage = iota
	StageAttack
	StageDecay
	StageSustain
	StageRelease
)

// String returns the stage name.
func (s EnvelopeStage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageAttack:
		return "attack"
	case StageDecay:
		return "decay"
	case StageSustain:
		return "sustain"
	case StageRelease:
		return "release"
	}
	return "unknown"
}

// Envelope is a linear ADSR amplitude generator ticked once per sample.
// Attack ramps from whatever level was current at trigger time to 1.0, and
// release ramps from whatever level was current at note-off to 0.0, so a
// retrigger or an early note-off never produces a level jump.
type Envelope struct {
	attack  float32 // seconds
	decay   float32 // seconds
	sustain float32 // level, 0..1
	release float32 // seconds

	stage      EnvelopeStage
	elapsed    float32 // seconds in the current stage
	stageLevel float32 // level at the moment of the last stage transition
	level      float32
}

// SetADSR sets all four envelope parameters, clamping times to a 1 ms
// minimum and the sustain level to [0, 1]. When the parameter governing the
// running stage changes, the ramp is rebased on the current level so the
// output stays continuous.
func (e *Envelope) SetADSR(attack, decay, sustain, release float32) {
	attack = maxf(attack, 0.001)
	decay = maxf(decay, 0.001)
	sustain = clampf(sustain, 0.0, 1.0)
	release = maxf(release, 0.001)

	switch {
	case e.stage == StageAttack && attack != e.attack:
		e.stageLevel = e.level
		e.elapsed = 0
	case e.stage == StageDecay && (decay != e.decay || sustain != e.sustain):
		e.stageLevel = e.level
		e.elapsed = 0
	case e.stage == StageRelease && release != e.release:
		e.stageLevel = e.level
		e.elapsed = 0
	}

	e.attack = attack
	e.decay = decay
	e.sustain = sustain
	e.release = release
}

// Trigger starts the attack stage from the current level.
func (e *Envelope) Trigger() {
	e.stageLevel = e.level
	e.elapsed = 0
	e.stage = StageAttack
}

// Release starts the release stage from the current level. It is a no-op
// when the envelope is idle or already releasing.
func (e *Envelope) Release() {
	if e.stage == StageIdle || e.stage == StageRelease {
		return
	}
	e.stageLevel = e.level
	e.elapsed = 0
	e.stage = StageRelease
}

// Reset forces the envelope back to idle at zero level.
func (e *Envelope) Reset() {
	e.stage = StageIdle
	e.elapsed = 0
	e.stageLevel = 0
	e.level = 0
}

// Stage returns the current envelope stage.
func (e *Envelope) Stage() EnvelopeStage {
	return e.stage
}

// Level returns the last generated level.
func (e *Envelope) Level() float32 {
	return e.level
}

// IsActive reports whether the envelope is producing non-idle output.
func (e *Envelope) IsActive() bool {
	return e.stage != StageIdle
}

// Next advances the envelope by one sample period dt (seconds) and returns
// the new level in [0, 1].
func (e *Envelope) Next(dt float32) float32 {
	switch e.stage {
	case StageAttack:
		e.elapsed += dt
		if e.elapsed >= e.attack {
			e.level = 1.0
			e.stageLevel = 1.0
			e.elapsed = 0
			e.stage = StageDecay
		} else {
			e.level = e.stageLevel + (1.0-e.stageLevel)*(e.elapsed/e.attack)
		}

	case StageDecay:
		e.elapsed += dt
		if e.elapsed >= e.decay {
			e.level = e.sustain
			e.stageLevel = e.sustain
			e.elapsed = 0
			e.stage = StageSustain
		} else {
			// stageLevel is 1.0 coming out of attack; a mid-stage rebase may
			// land it above or below the sustain target.
			e.level = e.stageLevel - (e.stageLevel-e.sustain)*(e.elapsed/e.decay)
		}

	case StageSustain:
		e.level = e.sustain

	case StageRelease:
		e.elapsed += dt
		if e.elapsed >= e.release {
			e.level = 0
			e.stageLevel = 0
			e.elapsed = 0
			e.stage = StageIdle
		} else {
			e.level = e.stageLevel * (1.0 - e.elapsed/e.release)
		}

	case StageIdle:
		e.level = 0
	}

	e.level = clampf(e.level, 0.0, 1.0)
	return e.level
}
