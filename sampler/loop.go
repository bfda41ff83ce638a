// SPDX-License-Identifier: EPL-2.0

package sampler

import (
	"fmt"
	"math"
	"slices"

	"github.com/ik5/audsampler/utils"
)

// Region is a half-open frame range [Start, End).
type Region struct {
	Start int
	End   int
}

// LoopDescriptor says how a selection is played back. The zero value plays
// every layer of the buffer's own region once, forward, at normal speed.
//
// Frame positions are in source frames. StartPoint/EndPoint override the
// buffer's region when positive. LoopStartPoint, LoopEndPoint and the Muted
// regions are relative to the region start; a LoopEndPoint of zero means
// the region end.
type LoopDescriptor struct {
	IsLooping     bool
	Reversed      bool
	PhaseInverted bool

	StartPoint int
	EndPoint   int

	LoopStartPoint int
	LoopEndPoint   int

	// Muted regions must be ordered and must not overlap.
	Muted []Region

	// EnabledTracks lists the candidate indexes allowed to sound.
	// Empty enables every layer.
	EnabledTracks []int

	// Speed scales playback duration by 1/Speed without changing pitch.
	Speed float64
	// Pitch shifts the content in semitones without changing duration.
	Pitch float64
	// Varispeed scales the read rate like a tape machine.
	Varispeed float64
}

// Validate checks the descriptor's ranges.
func (l *LoopDescriptor) Validate() error {
	for _, v := range []float64{l.Speed, l.Pitch, l.Varispeed} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite modifier", ErrInvalidLoop)
		}
	}
	if l.Speed < 0 || l.Varispeed < 0 {
		return fmt.Errorf("%w: negative speed", ErrInvalidLoop)
	}
	if l.StartPoint < 0 || l.EndPoint < 0 || (l.EndPoint > 0 && l.EndPoint <= l.StartPoint) {
		return fmt.Errorf("%w: region [%d, %d)", ErrInvalidLoop, l.StartPoint, l.EndPoint)
	}
	if l.LoopStartPoint < 0 || l.LoopEndPoint < 0 || (l.LoopEndPoint > 0 && l.LoopEndPoint <= l.LoopStartPoint) {
		return fmt.Errorf("%w: loop [%d, %d)", ErrInvalidLoop, l.LoopStartPoint, l.LoopEndPoint)
	}

	prev := 0
	for i, m := range l.Muted {
		if m.Start < 0 || m.Start > m.End {
			return fmt.Errorf("%w: muted region %d [%d, %d)", ErrInvalidLoop, i, m.Start, m.End)
		}
		if i > 0 && m.Start < prev {
			return fmt.Errorf("%w: muted region %d overlaps its predecessor", ErrInvalidLoop, i)
		}
		prev = m.End
	}

	for _, t := range l.EnabledTracks {
		if t < 0 {
			return fmt.Errorf("%w: track %d", ErrInvalidLoop, t)
		}
	}
	return nil
}

// Clone returns a copy that shares no slices with l.
func (l LoopDescriptor) Clone() LoopDescriptor {
	l.Muted = slices.Clone(l.Muted)
	l.EnabledTracks = slices.Clone(l.EnabledTracks)
	return l
}

// Equal compares every field, including slice contents.
func (l *LoopDescriptor) Equal(o *LoopDescriptor) bool {
	return l.IsLooping == o.IsLooping &&
		l.Reversed == o.Reversed &&
		l.PhaseInverted == o.PhaseInverted &&
		l.StartPoint == o.StartPoint &&
		l.EndPoint == o.EndPoint &&
		l.LoopStartPoint == o.LoopStartPoint &&
		l.LoopEndPoint == o.LoopEndPoint &&
		l.Speed == o.Speed &&
		l.Pitch == o.Pitch &&
		l.Varispeed == o.Varispeed &&
		slices.Equal(l.Muted, o.Muted) &&
		slices.Equal(l.EnabledTracks, o.EnabledTracks)
}

func (l *LoopDescriptor) trackEnabled(i int) bool {
	return len(l.EnabledTracks) == 0 || slices.Contains(l.EnabledTracks, i)
}

func (l *LoopDescriptor) timeRatio() float64 {
	if l.Speed <= 0 {
		return 1
	}
	return 1 / l.Speed
}

func (l *LoopDescriptor) pitchScale() float64 {
	return utils.SemitonesToRatio(l.Pitch)
}

func (l *LoopDescriptor) varispeed() float64 {
	if l.Varispeed <= 0 {
		return 1
	}
	return l.Varispeed
}
