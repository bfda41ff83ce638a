// SPDX-License-Identifier: EPL-2.0

package sampler

import (
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/ik5/audsampler/dsp/envelope"
	"github.com/ik5/audsampler/dsp/lfo"
	"github.com/ik5/audsampler/pedal"
	"github.com/ik5/audsampler/utils"
)

// monoFollowVelocity is the velocity a held key is retriggered with when
// the mono note above it is released.
const monoFollowVelocity = 100

// Engine is a polyphonic sample player.
//
// Note events, parameter setters and Render must be called from one
// goroutine (or otherwise serialized). Sample loading and key map builds may
// run elsewhere only between StopAllVoices and RestartVoices; ReplaceSamples
// does both. Select is safe from any goroutine.
type Engine struct {
	cfg Config
	log *slog.Logger

	voices   []*Voice
	prepared []*Voice

	poolMu      sync.RWMutex
	samples     []*SampleBuffer
	keyMap      [NoteCount][]*SampleBuffer
	keyMapValid bool
	groups      map[int]*SelectionGroup

	tuning [NoteCount]float64
	pedal  pedal.Tracker

	vibrato lfo.Sine

	ampParams    *envelope.Parameters
	filterParams *envelope.Parameters
	pitchParams  *envelope.Parameters

	stopping  atomic.Bool
	bound     atomic.Int32
	preparing atomic.Int32
}

// New builds an engine with a fixed pool of cfg.Polyphony voices.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.normalize()

	controlRate := cfg.SampleRate / ChunkSize
	e := &Engine{
		cfg:          cfg,
		log:          cfg.Logger,
		groups:       make(map[int]*SelectionGroup, NoteCount),
		ampParams:    envelope.NewParameters(controlRate),
		filterParams: envelope.NewParameters(controlRate),
		pitchParams:  envelope.NewParameters(controlRate),
	}
	for n := range e.tuning {
		e.tuning[n] = utils.NoteHz(float64(n))
	}
	e.vibrato.Init(controlRate, cfg.VibratoFrequency)

	e.voices = make([]*Voice, cfg.Polyphony)
	for i := range e.voices {
		e.voices[i] = newVoice(i, &e.cfg, &e.bound, e.ampParams, e.filterParams, e.pitchParams)
	}
	e.prepared = make([]*Voice, 0, cfg.Polyphony)

	e.log.Debug("sampler engine created",
		"sample_rate", cfg.SampleRate,
		"polyphony", cfg.Polyphony)
	return e, nil
}

// Config returns a copy of the current settings.
func (e *Engine) Config() Config { return e.cfg }

// SampleRate returns the output rate.
func (e *Engine) SampleRate() float64 { return e.cfg.SampleRate }

// Polyphony returns the voice pool size.
func (e *Engine) Polyphony() int { return len(e.voices) }

// ActiveVoices counts voices bound to a note. Safe from any goroutine.
func (e *Engine) ActiveVoices() int { return int(e.bound.Load()) }

// VoiceNote returns the note bound to voice i, or -1. Safe from any
// goroutine.
func (e *Engine) VoiceNote(i int) int {
	if i < 0 || i >= len(e.voices) {
		return -1
	}
	return e.voices[i].NoteNumber()
}

// SetNoteFrequency retunes one note. Key maps built afterwards use it.
func (e *Engine) SetNoteFrequency(note int, hz float64) error {
	if note < 0 || note >= NoteCount {
		return fmt.Errorf("%w: %d", ErrInvalidNote, note)
	}
	if !(hz > 0) || math.IsInf(hz, 0) {
		return fmt.Errorf("%w: frequency %v for note %d", ErrInvalidSampleData, hz, note)
	}
	e.tuning[note] = hz
	return nil
}

// NoteFrequency returns the tuned frequency of note, or 0 when out of range.
func (e *Engine) NoteFrequency(note int) float64 {
	if note < 0 || note >= NoteCount {
		return 0
	}
	return e.tuning[note]
}

// PrepareNote claims a voice for note and readies its start. Nothing sounds
// until Play stamps the start time. Velocity is 0-127. A note with no
// mapped samples, or with every voice busy, is dropped.
func (e *Engine) PrepareNote(note, velocity int, loop LoopDescriptor) {
	if note < 0 || note >= NoteCount {
		e.log.Debug("note out of range", "note", note)
		return
	}
	loop = loop.Clone()
	if err := loop.Validate(); err != nil {
		e.log.Warn("note dropped", "note", note, "error", err)
		return
	}
	e.startNote(note, velocity, loop, nil, false)
}

// PrepareNoteGroup is PrepareNote with a group built by Select for the same
// note. It does not allocate. A nil g still records the key, and a legato
// glide still happens; only a new start is dropped.
func (e *Engine) PrepareNoteGroup(note, velocity int, g *SelectionGroup) {
	if note < 0 || note >= NoteCount {
		e.log.Debug("note out of range", "note", note)
		return
	}
	var loop LoopDescriptor
	if g != nil {
		if g.note != note {
			e.log.Warn("note dropped, group built for another note", "note", note, "group_note", g.note)
			return
		}
		loop = g.loop
	}
	e.startNote(note, velocity, loop, g, true)
}

func (e *Engine) startNote(note, velocity int, loop LoopDescriptor, g *SelectionGroup, selected bool) {
	e.preparing.Add(1)
	defer e.preparing.Add(-1)

	anotherKeyDown := e.pedal.IsAnyKeyDown()
	e.pedal.KeyDownAction(note)
	e.prepare(note, min(127, max(0, velocity)), anotherKeyDown, loop, selection{g, selected})
}

// selection is a group chosen ahead of prepare. When done is false prepare
// looks the note up itself.
type selection struct {
	group *SelectionGroup
	done  bool
}

func (e *Engine) groupFor(note, velocity int, loop *LoopDescriptor, sel selection) *SelectionGroup {
	if !sel.done {
		return e.lookupSamples(note, velocity, loop)
	}
	if sel.group == nil {
		return nil
	}
	e.cacheGroup(sel.group)
	return sel.group
}

func (e *Engine) prepare(note, velocity int, anotherKeyDown bool, loop LoopDescriptor, sel selection) {
	if e.stopping.Load() {
		return
	}
	if !sel.done && !e.KeyMapValid() {
		e.log.Debug("note dropped, key map not built", "note", note)
		return
	}

	freq := e.tuning[note]
	volume := float64(velocity) / 127

	if e.cfg.Monophonic {
		v := e.voices[0]
		if e.cfg.Legato && anotherKeyDown && v.NoteNumber() >= 0 && v.group != nil {
			v.prepareLegato(note, freq)
			e.markPrepared(v)
			return
		}

		g := e.groupFor(note, velocity, &loop, sel)
		if g == nil {
			return
		}
		t := TransitionStart
		if v.NoteNumber() >= 0 {
			t = TransitionRestartNew
		}
		v.prepare(note, freq, volume, loop, g, t)
		e.markPrepared(v)
		return
	}

	if v := e.voicePlayingNote(note); v != nil {
		g := e.groupFor(note, velocity, &loop, sel)
		if g == nil {
			return
		}
		v.prepare(note, freq, volume, loop, g, TransitionRestartSame)
		e.markPrepared(v)
		return
	}

	for _, v := range e.voices {
		if v.NoteNumber() >= 0 {
			continue
		}
		g := e.groupFor(note, velocity, &loop, sel)
		if g == nil {
			return
		}
		v.prepare(note, freq, volume, loop, g, TransitionStart)
		e.markPrepared(v)
		if debugChecks {
			e.checkExclusive(note)
		}
		return
	}
	e.log.Debug("note dropped, no free voice", "note", note)
}

func (e *Engine) markPrepared(v *Voice) {
	if v.prepared {
		return
	}
	v.prepared = true
	e.prepared = append(e.prepared, v)
}

func (e *Engine) voicePlayingNote(note int) *Voice {
	for _, v := range e.voices {
		if v.NoteNumber() == note {
			return v
		}
	}
	return nil
}

func (e *Engine) checkExclusive(note int) {
	n := 0
	for _, v := range e.voices {
		if v.NoteNumber() == note {
			n++
		}
	}
	assertf(n <= 1, "note %d bound to %d voices", note, n)
}

// Play schedules every prepared note to start at the absolute frame
// sampleTime. Frames already in the past start at the next render.
func (e *Engine) Play(sampleTime int64) {
	for _, v := range e.prepared {
		v.schedule(sampleTime)
		v.prepared = false
	}
	clear(e.prepared)
	e.prepared = e.prepared[:0]
}

// StopNote handles a key-up. With the sustain pedal down the note keeps
// sounding until the pedal is released; immediate frees the voice at once.
func (e *Engine) StopNote(note int, immediate bool) {
	if note < 0 || note >= NoteCount {
		return
	}
	releaseNow := e.pedal.KeyUpAction(note)
	if immediate || releaseNow {
		e.stop(note, immediate)
	}
}

func (e *Engine) stop(note int, immediate bool) {
	v := e.voicePlayingNote(note)
	if v == nil {
		return
	}
	if immediate {
		e.stopVoice(v)
		return
	}

	if !e.cfg.Monophonic {
		v.release(e.cfg.LoopThruRelease)
		return
	}

	// last-note priority: fall back to the lowest key still held
	key := e.pedal.FirstKeyDown()
	switch {
	case key < 0:
		v.release(e.cfg.LoopThruRelease)
	case e.cfg.Legato && v.group != nil:
		v.prepareLegato(key, e.tuning[key])
		v.schedule(immediately)
	default:
		loop := v.loop.Clone()
		g := e.lookupSamples(key, monoFollowVelocity, &loop)
		if g == nil {
			v.release(e.cfg.LoopThruRelease)
			return
		}
		v.prepare(key, e.tuning[key], monoFollowVelocity/127.0, loop, g, TransitionRestartNew)
		v.schedule(immediately)
	}
}

func (e *Engine) stopVoice(v *Voice) {
	v.stop()
	if !v.prepared {
		return
	}
	v.prepared = false
	if i := slices.Index(e.prepared, v); i >= 0 {
		e.prepared = slices.Delete(e.prepared, i, i+1)
	}
}

// SustainPedal records the pedal. Releasing it releases every note whose
// key is already up.
func (e *Engine) SustainPedal(down bool) {
	if down {
		e.pedal.PedalDown()
		return
	}
	for note := range NoteCount {
		if e.pedal.IsNoteSustaining(note) {
			e.stop(note, false)
		}
	}
	e.pedal.PedalUp()
}

// AllNotesOff releases every sounding note, or frees them at once when
// immediate is set, and forgets held keys and the pedal.
func (e *Engine) AllNotesOff(immediate bool) {
	for _, v := range e.voices {
		note := v.NoteNumber()
		if note < 0 {
			continue
		}
		if immediate {
			e.stopVoice(v)
		} else {
			v.release(e.cfg.LoopThruRelease)
		}
	}
	e.pedal.Reset()
}

// Render adds len(out[0]) frames of every voice into out[0] (left) and
// out[1] (right). now is the absolute frame of out[0][0]; note starts due
// inside the block begin at their exact frame. The buffers are not cleared.
func (e *Engine) Render(out [][]float32, now int64) {
	if len(out) < 2 {
		return
	}
	left, right := out[0], out[1]
	n := min(len(left), len(right))

	stopping := e.stopping.Load()
	allowRunout := !(e.cfg.Monophonic && e.cfg.Legato)

	for c0 := 0; c0 < n; c0 += ChunkSize {
		c1 := min(n, c0+ChunkSize)
		chunkStart := now + int64(c0)

		e.vibrato.SetFrequency(e.cfg.VibratoFrequency)
		pitchDev := e.cfg.PitchOffset + e.cfg.VibratoDepth*e.vibrato.Next()

		for _, v := range e.voices {
			if v.NoteNumber() < 0 {
				continue
			}
			if stopping {
				e.stopVoice(v)
				continue
			}

			from, stepped := c0, false
			if off, late := v.next.due(chunkStart, c1-c0); off >= 0 {
				if off > 0 {
					stepped = e.renderVoice(v, left[c0:c0+off], right[c0:c0+off], c1-c0, pitchDev, allowRunout, false)
				}
				if v.next.State == EventCreated {
					v.commit(late)
				}
				from = c0 + off
			}
			e.renderVoice(v, left[from:c1], right[from:c1], c1-from, pitchDev, allowRunout, stepped)
		}
	}
}

// renderVoice renders part of a chunk. Control state advances once per
// chunk: the first span steps it over ramp frames, and a span following a
// mid-chunk commit only re-aims the ramps. It reports whether the voice
// took its step and is still sounding.
func (e *Engine) renderVoice(v *Voice, left, right []float32, ramp int, pitchDev float64, allowRunout, stepped bool) bool {
	if len(left) == 0 || !v.sounding() {
		return false
	}
	var done bool
	if stepped {
		done = v.reramp(ramp, pitchDev)
	} else {
		done = v.prepToGetSamples(ramp, pitchDev)
	}
	if done {
		e.finishVoice(v)
		return false
	}
	if v.getSamples(left, right) && allowRunout {
		e.finishVoice(v)
		return false
	}
	return true
}

// finishVoice frees a voice whose note has ended, unless a start is
// already waiting on it.
func (e *Engine) finishVoice(v *Voice) {
	if v.next.State == EventCreated {
		v.retire()
		return
	}
	e.stopVoice(v)
}
