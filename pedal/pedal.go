// SPDX-License-Identifier: EPL-2.0

// Package pedal tracks which keys are held and which notes the sustain pedal
// is keeping alive after their key was released.
package pedal

// NoteCount is the number of MIDI note numbers tracked.
const NoteCount = 128

// Tracker is not safe for concurrent use. The zero value has every key up
// and the pedal released.
type Tracker struct {
	keyDown   [NoteCount]bool
	isPlaying [NoteCount]bool
	pedalDown bool
}

func valid(note int) bool { return note >= 0 && note < NoteCount }

// KeyDownAction records a key press.
func (t *Tracker) KeyDownAction(note int) {
	if !valid(note) {
		return
	}
	t.keyDown[note] = true
	t.isPlaying[note] = true
}

// KeyUpAction records a key release and reports whether the note should be
// released now. With the pedal down the note keeps sounding and false is
// returned.
func (t *Tracker) KeyUpAction(note int) bool {
	if !valid(note) {
		return false
	}
	t.keyDown[note] = false
	if t.pedalDown {
		return false
	}
	t.isPlaying[note] = false
	return true
}

// PedalDown records the pedal being pressed.
func (t *Tracker) PedalDown() { t.pedalDown = true }

// PedalUp releases the pedal; notes whose keys are up stop sustaining.
// Callers that need to release those notes must query IsNoteSustaining
// before calling PedalUp.
func (t *Tracker) PedalUp() {
	for n := range t.isPlaying {
		if !t.keyDown[n] {
			t.isPlaying[n] = false
		}
	}
	t.pedalDown = false
}

// IsPedalDown reports the pedal state.
func (t *Tracker) IsPedalDown() bool { return t.pedalDown }

// IsKeyDown reports whether note's key is held.
func (t *Tracker) IsKeyDown(note int) bool {
	return valid(note) && t.keyDown[note]
}

// IsNoteSustaining reports whether note sounds only because of the pedal.
func (t *Tracker) IsNoteSustaining(note int) bool {
	return valid(note) && t.isPlaying[note] && !t.keyDown[note]
}

// IsAnyKeyDown reports whether any key is held.
func (t *Tracker) IsAnyKeyDown() bool {
	for _, down := range t.keyDown {
		if down {
			return true
		}
	}
	return false
}

// FirstKeyDown returns the lowest held note, or -1 when no key is down.
func (t *Tracker) FirstKeyDown() int {
	for n, down := range t.keyDown {
		if down {
			return n
		}
	}
	return -1
}

// Reset clears every key and releases the pedal.
func (t *Tracker) Reset() {
	*t = Tracker{}
}
