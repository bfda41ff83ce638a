// SPDX-License-Identifier: EPL-2.0

package pedal

import "testing"

func TestTracker_KeyUpWithoutPedal(t *testing.T) {
	t.Parallel()

	var tr Tracker
	tr.KeyDownAction(60)
	if !tr.IsKeyDown(60) || !tr.IsAnyKeyDown() {
		t.Fatal("key 60 not recorded as down")
	}
	if !tr.KeyUpAction(60) {
		t.Error("KeyUpAction without pedal should release now")
	}
	if tr.IsNoteSustaining(60) || tr.IsAnyKeyDown() {
		t.Error("note still tracked after release")
	}
}

func TestTracker_Sustain(t *testing.T) {
	t.Parallel()

	var tr Tracker
	tr.KeyDownAction(60)
	tr.KeyDownAction(64)
	tr.PedalDown()

	if tr.KeyUpAction(60) {
		t.Error("KeyUpAction with pedal down should defer the release")
	}
	if !tr.IsNoteSustaining(60) {
		t.Error("60 should be sustaining")
	}
	if tr.IsNoteSustaining(64) {
		t.Error("64 is still held, not sustaining")
	}

	var sustaining []int
	for n := range NoteCount {
		if tr.IsNoteSustaining(n) {
			sustaining = append(sustaining, n)
		}
	}
	tr.PedalUp()

	if len(sustaining) != 1 || sustaining[0] != 60 {
		t.Errorf("sustaining before pedal up = %v, want [60]", sustaining)
	}
	if tr.IsNoteSustaining(60) || tr.IsPedalDown() {
		t.Error("pedal up left 60 sustaining")
	}
	if !tr.IsKeyDown(64) {
		t.Error("pedal up released a held key")
	}
}

func TestTracker_FirstKeyDown(t *testing.T) {
	t.Parallel()

	var tr Tracker
	if got := tr.FirstKeyDown(); got != -1 {
		t.Errorf("FirstKeyDown() with no keys = %d", got)
	}
	tr.KeyDownAction(72)
	tr.KeyDownAction(48)
	tr.KeyDownAction(60)
	if got := tr.FirstKeyDown(); got != 48 {
		t.Errorf("FirstKeyDown() = %d, want 48", got)
	}
	tr.KeyUpAction(48)
	if got := tr.FirstKeyDown(); got != 60 {
		t.Errorf("FirstKeyDown() = %d, want 60", got)
	}
}

func TestTracker_OutOfRange(t *testing.T) {
	t.Parallel()

	var tr Tracker
	tr.KeyDownAction(-1)
	tr.KeyDownAction(128)
	if tr.IsAnyKeyDown() || tr.KeyUpAction(200) || tr.IsNoteSustaining(-5) {
		t.Error("out of range notes should be ignored")
	}
}

func TestTracker_Reset(t *testing.T) {
	t.Parallel()

	var tr Tracker
	tr.KeyDownAction(1)
	tr.PedalDown()
	tr.Reset()
	if tr.IsAnyKeyDown() || tr.IsPedalDown() {
		t.Error("Reset left state behind")
	}
}
