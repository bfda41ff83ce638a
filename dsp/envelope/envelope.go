// SPDX-License-Identifier: EPL-2.0

// Package envelope provides the AHDSHR envelope generator used for the
// amplitude, filter and pitch modulation of each sampler voice.
package envelope

import "math"

// Stage represents the current envelope stage
type Stage int

const (
	// StageIdle means the envelope produces 0 and the voice may be freed
	StageIdle Stage = iota
	// StagePreStart ramps the previous note down before a retrigger
	StagePreStart
	StageAttack
	StageHold
	StageDecay
	StageSustain
	// StageReleaseHold keeps the level for a while after note-off
	StageReleaseHold
	StageRelease
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StagePreStart:
		return "prestart"
	case StageAttack:
		return "attack"
	case StageHold:
		return "hold"
	case StageDecay:
		return "decay"
	case StageSustain:
		return "sustain"
	case StageReleaseHold:
		return "releasehold"
	case StageRelease:
		return "release"
	default:
		return "unknown"
	}
}

// PreStartSeconds is the length of the damping ramp entered by Restart.
const PreStartSeconds = 0.01

// Parameters holds the segment settings shared by every envelope of one
// category. Durations are in seconds, Sustain is a fraction in [0, 1].
// The rate is the control rate the envelopes are advanced at.
type Parameters struct {
	Attack      float64
	Hold        float64
	Decay       float64
	Sustain     float64
	ReleaseHold float64
	Release     float64

	rate float64
}

// NewParameters returns instant segments with full sustain.
func NewParameters(rate float64) *Parameters {
	return &Parameters{Sustain: 1, rate: rate}
}

// UpdateSampleRate sets the rate Next is called at.
func (p *Parameters) UpdateSampleRate(rate float64) { p.rate = rate }

// SampleRate returns the control rate.
func (p *Parameters) SampleRate() float64 { return p.rate }

func (p *Parameters) steps(seconds float64) int {
	if seconds <= 0 || p.rate <= 0 {
		return 0
	}
	return int(math.Round(seconds * p.rate))
}

func (p *Parameters) sustain() float64 {
	return min(1, max(0, p.Sustain))
}

// Envelope is a linear-segment attack/hold/decay/sustain/release-hold/release
// generator with an extra pre-start stage used for click-free retriggers.
type Envelope struct {
	params *Parameters

	stage Stage
	value float64

	// current segment
	from  float64
	to    float64
	count int
	steps int
}

// New creates an idle envelope reading from params.
func New(params *Parameters) *Envelope {
	return &Envelope{params: params}
}

// Parameters returns the shared parameter set.
func (e *Envelope) Parameters() *Parameters { return e.params }

// Start begins the attack from zero.
func (e *Envelope) Start() {
	e.value = 0
	e.enter(StageAttack)
}

// Restart damps the current level to zero over PreStartSeconds and then
// attacks. An idle envelope starts directly.
func (e *Envelope) Restart() {
	if e.stage == StageIdle {
		e.Start()
		return
	}
	e.enter(StagePreStart)
}

// Release moves to the release-hold stage from whatever level is current.
func (e *Envelope) Release() {
	if e.stage == StageIdle {
		return
	}
	e.enter(StageReleaseHold)
}

// Reset returns the envelope to idle at zero.
func (e *Envelope) Reset() {
	e.stage = StageIdle
	e.value = 0
	e.count, e.steps = 0, 0
}

// IsIdle reports whether the envelope has finished.
func (e *Envelope) IsIdle() bool { return e.stage == StageIdle }

// IsPreStarting reports whether a retrigger damping ramp is running.
// It stays true for the call to Next that returns the final zero.
func (e *Envelope) IsPreStarting() bool { return e.stage == StagePreStart }

// Stage returns the current stage.
func (e *Envelope) Stage() Stage { return e.stage }

// Value returns the last output without advancing.
func (e *Envelope) Value() float64 { return e.value }

// UpdateParams rescales the running segment after a parameter change,
// keeping its progress.
func (e *Envelope) UpdateParams() {
	switch e.stage {
	case StageAttack:
		e.steps = e.params.steps(e.params.Attack)
	case StageHold:
		e.steps = e.params.steps(e.params.Hold)
	case StageDecay:
		e.steps = e.params.steps(e.params.Decay)
		e.to = e.params.sustain()
	case StageReleaseHold:
		e.steps = e.params.steps(e.params.ReleaseHold)
	case StageRelease:
		e.steps = e.params.steps(e.params.Release)
	}
	e.count = min(e.count, e.steps)
}

func (e *Envelope) enter(s Stage) {
	e.stage = s
	e.from = e.value
	e.count = 0

	switch s {
	case StagePreStart:
		e.to = 0
		e.steps = max(1, e.params.steps(PreStartSeconds))
	case StageAttack:
		e.to = 1
		e.steps = e.params.steps(e.params.Attack)
	case StageHold:
		e.to = e.value
		e.steps = e.params.steps(e.params.Hold)
	case StageDecay:
		e.to = e.params.sustain()
		e.steps = e.params.steps(e.params.Decay)
	case StageReleaseHold:
		e.to = e.value
		e.steps = e.params.steps(e.params.ReleaseHold)
	case StageRelease:
		e.to = 0
		e.steps = e.params.steps(e.params.Release)
	default:
		e.steps = 0
	}
}

// Next advances one control step and returns the envelope level in [0, 1].
// Zero-length segments are passed through within the same call.
func (e *Envelope) Next() float64 {
	for {
		switch e.stage {
		case StageIdle:
			e.value = 0
			return 0

		case StageSustain:
			e.value = e.params.sustain()
			return e.value

		case StagePreStart, StageAttack, StageDecay, StageRelease,
			StageHold, StageReleaseHold:
			if e.count >= e.steps {
				e.value = e.to
				e.enter(e.following())
				continue
			}
			e.count++
			e.value = e.from + (e.to-e.from)*float64(e.count)/float64(e.steps)
			return e.value

		default:
			e.Reset()
			return 0
		}
	}
}

func (e *Envelope) following() Stage {
	switch e.stage {
	case StagePreStart:
		return StageAttack
	case StageAttack:
		return StageHold
	case StageHold:
		return StageDecay
	case StageDecay:
		return StageSustain
	case StageReleaseHold:
		return StageRelease
	default:
		return StageIdle
	}
}
