// SPDX-License-Identifier: EPL-2.0

package sampler

import (
	"math"
	"sync/atomic"

	"github.com/ik5/audsampler/dsp/envelope"
	"github.com/ik5/audsampler/dsp/filter"
	"github.com/ik5/audsampler/dsp/lfo"
	"github.com/ik5/audsampler/dsp/ramp"
	"github.com/ik5/audsampler/utils"
)

const glideFloor = 0.01 // semitones

// Voice plays one note at a time. Its current event is what sounds; next
// is the event waiting for its scheduled frame.
type Voice struct {
	index int
	cfg   *Config
	bound *atomic.Int32

	noteNumber atomic.Int32

	current PlayEvent
	next    PlayEvent

	group *SelectionGroup
	loop  LoopDescriptor
	osc   Oscillator

	noteFrequency  float64
	noteVolume     float64
	prevNoteVolume float64

	swapPending      bool
	pendingGroup     *SelectionGroup
	pendingLoop      LoopDescriptor
	pendingIncrement float64

	// a release that arrived while the start was still scheduled
	pendingRelease bool

	glideSemitones    float64
	pitchEnvSemitones float64
	vibratoSemitones  float64

	ampEnv    *envelope.Envelope
	filterEnv *envelope.Envelope
	pitchEnv  *envelope.Envelope

	volumeRamp ramp.Linear
	tempGain   float64

	leftFilter  *filter.LowPass
	rightFilter *filter.LowPass
	filterOn    bool

	vibrato    lfo.Sine
	lfoStarted bool

	prepared bool
}

func newVoice(index int, cfg *Config, bound *atomic.Int32, amp, flt, pitch *envelope.Parameters) *Voice {
	v := &Voice{
		index:       index,
		cfg:         cfg,
		bound:       bound,
		ampEnv:      envelope.New(amp),
		filterEnv:   envelope.New(flt),
		pitchEnv:    envelope.New(pitch),
		leftFilter:  filter.NewLowPass(cfg.SampleRate),
		rightFilter: filter.NewLowPass(cfg.SampleRate),
	}
	v.noteNumber.Store(-1)
	v.osc.fade = cfg.SampleRate / 100
	v.vibrato.Init(cfg.SampleRate/ChunkSize, cfg.VoiceVibratoFrequency)
	return v
}

// NoteNumber returns the bound note, or -1 for a free voice. Safe to call
// from any goroutine.
func (v *Voice) NoteNumber() int { return int(v.noteNumber.Load()) }

func (v *Voice) bind(note int) {
	if v.noteNumber.Swap(int32(note)) < 0 {
		v.bound.Add(1)
	}
}

func (v *Voice) unbind() {
	if v.noteNumber.Swap(-1) >= 0 {
		v.bound.Add(-1)
	}
}

// sounding reports whether the voice has started and should be rendered.
func (v *Voice) sounding() bool { return v.current.State == EventPlaying }

func (v *Voice) increment(g *SelectionGroup, freq float64, loop *LoopDescriptor) float64 {
	return (g.sampleRate / v.cfg.SampleRate) * (freq / g.noteFrequency) * loop.varispeed()
}

// glideFrom returns the semitone offset that makes the new note start at
// the voice's last frequency, or zero when glide is off or negligible.
func (v *Voice) glideFrom(freq float64) float64 {
	if v.cfg.GlideRate <= 0 || v.noteFrequency <= 0 || freq == v.noteFrequency {
		return 0
	}
	g := -utils.RatioToSemitones(freq / v.noteFrequency)
	if math.Abs(g) < glideFloor {
		return 0
	}
	return g
}

// prepare fills next. The event is only created when it differs from what
// is already sounding, so identical retriggers of a held note are ignored.
// A releasing note is always retriggered.
func (v *Voice) prepare(note int, freq, volume float64, loop LoopDescriptor, g *SelectionGroup, t Transition) {
	v.bind(note)

	ev := PlayEvent{
		Note:       note,
		Frequency:  freq,
		SampleRate: v.cfg.SampleRate,
		Volume:     volume,
		Loop:       loop,
		Group:      g,
		Increment:  v.increment(g, freq, &loop),
		Transition: t,
	}
	if t != TransitionRestartSame {
		ev.GlideSemitones = v.glideFrom(freq)
	}

	if v.current.State == EventPlaying && !v.releasing() && v.current.Equal(&ev) {
		v.next = PlayEvent{}
		return
	}
	ev.State = EventCreated
	v.next = ev
	v.pendingRelease = false
}

// prepareLegato re-pitches the sounding note, keeping its source and level.
func (v *Voice) prepareLegato(note int, freq float64) {
	v.prepare(note, freq, v.noteVolume, v.loop, v.group, TransitionRestartLegato)
}

// schedule stamps the pending event with its start frame.
func (v *Voice) schedule(t int64) {
	if v.next.State != EventCreated {
		return
	}
	v.next.SampleTime = t
	v.next.Scheduled = true
}

// commit makes next the sounding event. late is how many frames the event
// is overdue; a fresh start skips that far into the source.
func (v *Voice) commit(late int64) {
	ev := &v.next
	switch ev.Transition {
	case TransitionStart:
		v.start(late)
	case TransitionRestartNew:
		v.restart(true)
	case TransitionRestartLegato:
		v.restartLegato()
	case TransitionRestartSame:
		v.restart(false)
	}

	ev.State = EventPlaying
	v.current = *ev
	v.next = PlayEvent{}

	if v.pendingRelease {
		v.pendingRelease = false
		v.release(v.cfg.LoopThruRelease)
	}
}

func (v *Voice) start(late int64) {
	ev := &v.next
	v.group = ev.Group
	v.loop = ev.Loop

	index := 0.0
	if late > 0 && v.group.count > 0 {
		index = float64(late % int64(v.group.count))
	}
	v.osc.reset(index, ev.Increment, ev.Loop.IsLooping)
	v.group.Reset()

	v.noteVolume = ev.Volume
	v.noteFrequency = ev.Frequency
	v.glideSemitones = ev.GlideSemitones
	v.pitchEnvSemitones = 0
	v.vibratoSemitones = 0
	v.clearPending()

	v.ampEnv.Start()
	v.volumeRamp.Init(0)
	v.filterEnv.Start()
	v.pitchEnv.Start()
	v.leftFilter.Reset()
	v.rightFilter.Reset()
	v.restartLFO()
}

// restart retriggers with new data. The old source keeps sounding at its
// old level while the amplitude envelope damps to zero, then swap installs
// the new one. An idle envelope swaps at once.
func (v *Voice) restart(glide bool) {
	ev := &v.next
	v.prevNoteVolume = v.noteVolume
	v.pendingGroup = ev.Group
	v.pendingLoop = ev.Loop
	v.pendingIncrement = ev.Increment
	v.swapPending = true

	v.noteFrequency = ev.Frequency
	if glide {
		v.glideSemitones += ev.GlideSemitones
	}
	v.pitchEnvSemitones = 0
	v.vibratoSemitones = 0

	v.ampEnv.Restart()
	v.noteVolume = ev.Volume
	v.filterEnv.Restart()
	v.pitchEnv.Restart()
	v.restartLFO()

	if !v.ampEnv.IsPreStarting() {
		v.swap()
		v.volumeRamp.Init(0)
	}
}

func (v *Voice) restartLegato() {
	ev := &v.next
	v.osc.increment = ev.Increment
	v.glideSemitones += ev.GlideSemitones
	v.noteFrequency = ev.Frequency
}

// swap installs the pending source once the damping phase is over.
func (v *Voice) swap() {
	if !v.swapPending {
		return
	}
	v.group = v.pendingGroup
	v.loop = v.pendingLoop
	v.osc.reset(0, v.pendingIncrement, v.loop.IsLooping)
	v.group.Reset()
	v.clearPending()
}

func (v *Voice) clearPending() {
	v.swapPending = false
	v.pendingGroup = nil
	v.pendingLoop = LoopDescriptor{}
	v.pendingIncrement = 0
}

func (v *Voice) releasing() bool {
	s := v.ampEnv.Stage()
	return s == envelope.StageReleaseHold || s == envelope.StageRelease
}

func (v *Voice) restartLFO() {
	v.vibrato.SetFrequency(v.cfg.VoiceVibratoFrequency)
	if v.cfg.RestartVoiceLFO || !v.lfoStarted {
		v.vibrato.ResetPhase()
		v.lfoStarted = true
	}
}

// release lets the envelopes run out. A release arriving before the pending
// event has committed is applied right after the commit. A retrigger still
// damping the old source is abandoned so the old note fades out where it is.
func (v *Voice) release(loopThru bool) {
	if v.next.State == EventCreated {
		v.pendingRelease = true
		return
	}
	if !loopThru {
		v.osc.stopLooping(v.group)
	}
	if v.swapPending && v.ampEnv.IsPreStarting() {
		v.clearPending()
		v.noteVolume = v.prevNoteVolume
	}
	v.ampEnv.Release()
	v.filterEnv.Release()
	v.pitchEnv.Release()
}

// stop frees the voice at once.
func (v *Voice) stop() {
	v.unbind()
	v.ampEnv.Reset()
	v.filterEnv.Reset()
	v.pitchEnv.Reset()
	v.volumeRamp.Init(0)
	v.current = PlayEvent{}
	v.next = PlayEvent{}
	v.group = nil
	v.loop = LoopDescriptor{}
	v.clearPending()
	v.pendingRelease = false
	v.glideSemitones = 0
	v.osc.reset(0, 0, false)
}

// retire silences the sounding note but keeps the binding and the pending
// event, which then starts the voice from scratch.
func (v *Voice) retire() {
	v.ampEnv.Reset()
	v.filterEnv.Reset()
	v.pitchEnv.Reset()
	v.volumeRamp.Init(0)
	v.current = PlayEvent{}
	v.clearPending()
	v.next.Transition = TransitionStart
}

// prepToGetSamples advances the control-rate state for the next frames
// frames and reports whether the voice has finished. pitchDev is the
// engine-wide pitch offset for this chunk in semitones.
func (v *Voice) prepToGetSamples(frames int, pitchDev float64) bool {
	if v.ampEnv.IsIdle() {
		return true
	}

	master := v.cfg.MasterVolume
	if v.ampEnv.IsPreStarting() {
		v.tempGain = master * v.prevNoteVolume
		env := v.ampEnv.Next()
		if !v.ampEnv.IsPreStarting() {
			v.swap()
			v.tempGain = master * v.noteVolume
		}
		v.volumeRamp.Reinit(env, frames)
	} else {
		v.tempGain = master * v.noteVolume
		v.volumeRamp.Reinit(v.ampEnv.Next(), frames)
	}

	if v.cfg.GlideRate > 0 && v.glideSemitones != 0 {
		step := 12 * (float64(frames) / v.cfg.SampleRate) / v.cfg.GlideRate
		if v.glideSemitones < 0 {
			v.glideSemitones = min(0, v.glideSemitones+step)
		} else {
			v.glideSemitones = max(0, v.glideSemitones-step)
		}
	} else {
		v.glideSemitones = 0
	}

	v.pitchEnvSemitones = v.pitchEnv.Next() * v.cfg.PitchADSRSemitones
	v.vibrato.SetFrequency(v.cfg.VoiceVibratoFrequency)
	v.vibratoSemitones = v.vibrato.Next() * v.cfg.VoiceVibratoDepth
	v.filterEnv.Next()

	v.applyControl(pitchDev)
	return false
}

// reramp aims the remaining frames of a chunk at the state a mid-chunk
// commit left behind. Envelopes and LFOs keep the step this chunk already
// took.
func (v *Voice) reramp(frames int, pitchDev float64) bool {
	if v.ampEnv.IsIdle() {
		return true
	}
	master := v.cfg.MasterVolume
	if v.ampEnv.IsPreStarting() {
		v.tempGain = master * v.prevNoteVolume
	} else {
		v.tempGain = master * v.noteVolume
	}
	v.volumeRamp.Reinit(v.ampEnv.Value(), frames)
	v.applyControl(pitchDev)
	return false
}

// applyControl sets the oscillator pitch and the filter from the current
// control state.
func (v *Voice) applyControl(pitchDev float64) {
	offset := pitchDev + v.glideSemitones + v.pitchEnvSemitones + v.vibratoSemitones
	v.osc.multiplier = utils.SemitonesToRatio(offset)

	if !v.cfg.FilterEnabled || v.cfg.CutoffMultiple < 0 {
		v.filterOn = false
		return
	}
	v.filterOn = true

	noteHz := v.noteFrequency * v.osc.multiplier
	base := MiddleCHz + v.cfg.KeyTracking*(noteHz-MiddleCHz)
	velScale := v.cfg.FilterEnvelopeVelocityScaling
	envStrength := (1 - velScale) + velScale*v.noteVolume
	cutoff := base * (1 + v.cfg.CutoffMultiple + v.cfg.CutoffEnvelopeStrength*envStrength*v.filterEnv.Value())
	v.leftFilter.SetParameters(cutoff, v.cfg.LinearResonance)
	v.rightFilter.SetParameters(cutoff, v.cfg.LinearResonance)
}

// getSamples adds len(left) frames into left and right and reports whether
// the source ran out.
func (v *Voice) getSamples(left, right []float32) bool {
	if v.group == nil {
		return true
	}
	right = right[:len(left)]
	for i := range left {
		gain := float32(v.tempGain * v.volumeRamp.Next())
		l, r, done := v.osc.next(v.group, gain)
		if done {
			// the retrigger's source takes over once damping ends
			return !v.swapPending
		}
		if v.filterOn {
			l = v.leftFilter.Process(l)
			r = v.rightFilter.Process(r)
		}
		left[i] += l
		right[i] += r
	}
	return false
}
