// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"math"
	"testing"
)

func TestNoteHz(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		note float64
		want float64
	}{
		{name: "A4", note: 69, want: 440},
		{name: "A5", note: 81, want: 880},
		{name: "middle C", note: 60, want: 261.6256},
		{name: "lowest MIDI note", note: 0, want: 8.1758},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := NoteHz(tt.note); math.Abs(got-tt.want) > 0.001 {
				t.Errorf("NoteHz(%v) = %v, want %v", tt.note, got, tt.want)
			}
		})
	}
}

func TestSemitoneRatioRoundTrip(t *testing.T) {
	t.Parallel()

	for _, st := range []float64{-24, -7, -0.5, 0, 0.01, 12, 19} {
		ratio := SemitonesToRatio(st)
		if got := RatioToSemitones(ratio); math.Abs(got-st) > 1e-9 {
			t.Errorf("RatioToSemitones(SemitonesToRatio(%v)) = %v", st, got)
		}
	}

	if got := RatioToSemitones(0); got != 0 {
		t.Errorf("RatioToSemitones(0) = %v, want 0", got)
	}
}

func TestIsFinite32(t *testing.T) {
	t.Parallel()

	if !IsFinite32(0.5) {
		t.Error("IsFinite32(0.5) = false")
	}
	if IsFinite32(float32(math.NaN())) {
		t.Error("IsFinite32(NaN) = true")
	}
	if IsFinite32(float32(math.Inf(-1))) {
		t.Error("IsFinite32(-Inf) = true")
	}
}

func TestClamp(t *testing.T) {
	t.Parallel()

	if got := Clamp(1.5, 0, 1); got != 1 {
		t.Errorf("Clamp(1.5, 0, 1) = %v", got)
	}
	if got := Clamp(-2, 0, 1); got != 0 {
		t.Errorf("Clamp(-2, 0, 1) = %v", got)
	}
	if got := Clamp(0.25, 0, 1); got != 0.25 {
		t.Errorf("Clamp(0.25, 0, 1) = %v", got)
	}
}
