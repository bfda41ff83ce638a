// SPDX-License-Identifier: EPL-2.0

package sampler

import (
	"math"

	"github.com/ik5/audsampler/utils"
)

// LoadSampleData copies d into the sample pool. The key map is invalid until
// the next build.
func (e *Engine) LoadSampleData(d SampleData) error {
	b, err := newSampleBuffer(d)
	if err != nil {
		return err
	}
	e.poolMu.Lock()
	e.samples = append(e.samples, b)
	e.invalidateKeyMap()
	e.poolMu.Unlock()
	e.log.Debug("sample loaded",
		"name", b.name,
		"frames", b.frames,
		"channels", b.channels,
		"sample_rate", b.sampleRate,
		"note_hz", b.noteFrequency)
	return nil
}

// UnloadAllSamples empties the pool and the key map.
func (e *Engine) UnloadAllSamples() {
	e.poolMu.Lock()
	n := len(e.samples)
	clear(e.samples)
	e.samples = e.samples[:0]
	e.invalidateKeyMap()
	e.poolMu.Unlock()
	e.log.Debug("samples unloaded", "count", n)
}

// SampleCount returns the number of loaded buffers.
func (e *Engine) SampleCount() int {
	e.poolMu.RLock()
	defer e.poolMu.RUnlock()
	return len(e.samples)
}

func (e *Engine) invalidateKeyMap() {
	e.keyMapValid = false
	for n := range e.keyMap {
		e.keyMap[n] = nil
	}
	clear(e.groups)
}

// KeyMapValid reports whether notes can currently be looked up.
func (e *Engine) KeyMapValid() bool {
	e.poolMu.RLock()
	defer e.poolMu.RUnlock()
	return e.keyMapValid
}

// Samples returns the candidates mapped to note, in pool order.
func (e *Engine) Samples(note int) []*SampleBuffer {
	e.poolMu.RLock()
	defer e.poolMu.RUnlock()
	if !e.keyMapValid || note < 0 || note >= NoteCount {
		return nil
	}
	return append([]*SampleBuffer(nil), e.keyMap[note]...)
}

// BuildSimpleKeyMap maps every note to the samples whose nominal pitch is
// nearest its tuned frequency. Equally near samples are all kept.
func (e *Engine) BuildSimpleKeyMap() {
	e.poolMu.Lock()
	defer e.poolMu.Unlock()
	e.invalidateKeyMap()

	mapped := 0
	for note := range NoteCount {
		hz := e.tuning[note]
		best := math.Inf(1)
		for _, b := range e.samples {
			if d := math.Abs(hz - simplePitch(b)); d < best {
				best = d
			}
		}
		for _, b := range e.samples {
			if math.Abs(hz-simplePitch(b)) == best {
				e.keyMap[note] = append(e.keyMap[note], b)
			}
		}
		if len(e.keyMap[note]) > 0 {
			mapped++
		}
	}
	e.keyMapValid = true
	e.log.Info("key map built", "mode", KeyMapSimple, "samples", len(e.samples), "notes", mapped)
}

// simplePitch is the pitch a buffer is matched on in the simple map: its
// mapped note when it has one, otherwise its nominal frequency.
func simplePitch(b *SampleBuffer) float64 {
	if b.mapping != nil && b.mapping.NoteNumber >= 0 {
		return utils.NoteHz(float64(b.mapping.NoteNumber))
	}
	return b.noteFrequency
}

// BuildKeyMap maps every note to the key-mapped samples whose note range
// contains its tuned frequency. A negative lower bound reaches down to 0 Hz
// and a negative upper bound has no limit. Unmapped buffers are skipped.
func (e *Engine) BuildKeyMap() {
	e.poolMu.Lock()
	defer e.poolMu.Unlock()
	e.invalidateKeyMap()

	mapped := 0
	for note := range NoteCount {
		hz := e.tuning[note]
		for _, b := range e.samples {
			if b.mapping == nil {
				continue
			}
			lo, hi := 0.0, math.Inf(1)
			if b.mapping.MinNote >= 0 {
				lo = utils.NoteHz(float64(b.mapping.MinNote))
			}
			if b.mapping.MaxNote >= 0 {
				hi = utils.NoteHz(float64(b.mapping.MaxNote))
			}
			if hz >= lo && hz <= hi {
				e.keyMap[note] = append(e.keyMap[note], b)
			}
		}
		if len(e.keyMap[note]) > 0 {
			mapped++
		}
	}
	e.keyMapValid = true
	e.log.Info("key map built", "mode", KeyMapRanges, "samples", len(e.samples), "notes", mapped)
}

// BuildKeyMapMode builds the map of the given kind.
func (e *Engine) BuildKeyMapMode(mode KeyMapMode) {
	if mode == KeyMapSimple {
		e.BuildSimpleKeyMap()
		return
	}
	e.BuildKeyMap()
}

// Select builds the selection group a note-on would play, without claiming
// a voice. It may run on any goroutine, including while another renders, so
// the copying and allocation of a note start stay off the render path. The
// result goes to PrepareNoteGroup. It is nil when nothing is selected.
func (e *Engine) Select(note, velocity int, loop LoopDescriptor) *SelectionGroup {
	if note < 0 || note >= NoteCount {
		return nil
	}
	loop = loop.Clone()
	if err := loop.Validate(); err != nil {
		e.log.Warn("note dropped", "note", note, "error", err)
		return nil
	}

	e.poolMu.RLock()
	defer e.poolMu.RUnlock()
	if !e.keyMapValid {
		return nil
	}
	selected := e.selectBuffers(note, min(127, max(0, velocity)), &loop)
	if selected == nil {
		return nil
	}
	return newSelectionGroup(note, selected, &loop)
}

// selectBuffers picks the candidates of note enabled by the loop's track
// mask whose velocity layer accepts velocity. A lone candidate ignores
// velocity.
func (e *Engine) selectBuffers(note, velocity int, loop *LoopDescriptor) []*SampleBuffer {
	candidates := e.keyMap[note]

	var selected []*SampleBuffer
	if len(candidates) == 1 && loop.trackEnabled(0) {
		selected = []*SampleBuffer{candidates[0]}
	} else {
		for i, b := range candidates {
			if loop.trackEnabled(i) && b.acceptsVelocity(velocity) {
				selected = append(selected, b)
			}
		}
	}
	if len(selected) == 0 {
		e.log.Debug("note dropped, no sample selected", "note", note, "velocity", velocity)
		return nil
	}
	return selected
}

// lookupSamples selects the buffers for one note and builds a fresh
// selection group for them, replacing any cached one for the note.
func (e *Engine) lookupSamples(note, velocity int, loop *LoopDescriptor) *SelectionGroup {
	e.poolMu.RLock()
	defer e.poolMu.RUnlock()
	if !e.keyMapValid {
		return nil
	}
	selected := e.selectBuffers(note, velocity, loop)
	if selected == nil {
		return nil
	}
	g := newSelectionGroup(note, selected, loop)
	e.cacheGroup(g)
	return g
}

// cacheGroup makes g the current group of its note.
func (e *Engine) cacheGroup(g *SelectionGroup) {
	note := g.note
	if debugChecks && !e.cfg.Monophonic {
		if old, ok := e.groups[note]; ok {
			for _, v := range e.voices {
				owned := v.group == old && v.NoteNumber() != note
				assertf(!owned, "group for note %d read by voice %d on note %d", note, v.index, v.NoteNumber())
			}
		}
	}
	e.groups[note] = g
}
