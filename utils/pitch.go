// SPDX-License-Identifier: EPL-2.0

package utils

import "math"

// ConcertA is the reference pitch used by NoteHz.
const ConcertA = 440.0

// NoteHz converts a (possibly fractional) MIDI note number to Hz using
// 12-tone equal temperament around A4 = 440 Hz.
func NoteHz(note float64) float64 {
	return ConcertA * math.Pow(2.0, (note-69.0)/12.0)
}

// SemitonesToRatio converts a pitch offset in semitones to a frequency ratio.
func SemitonesToRatio(semitones float64) float64 {
	return math.Pow(2.0, semitones/12.0)
}

// RatioToSemitones converts a frequency ratio to semitones. Non-positive
// ratios report zero.
func RatioToSemitones(ratio float64) float64 {
	if ratio <= 0 {
		return 0
	}
	return 12.0 * math.Log2(ratio)
}

// IsFinite32 reports whether x is neither NaN nor infinite.
func IsFinite32(x float32) bool {
	return !math.IsNaN(float64(x)) && !math.IsInf(float64(x), 0)
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
