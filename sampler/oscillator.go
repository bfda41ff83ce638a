// SPDX-License-Identifier: EPL-2.0

package sampler

import (
	"math"

	"github.com/ik5/audsampler/utils"
)

// Oscillator is a voice's fractional read head over a SelectionGroup.
type Oscillator struct {
	index      float64
	increment  float64
	multiplier float64

	// looping is cleared on release unless the loop plays through it
	looping bool
	wrapped bool

	// a seam fade still under way when looping stopped
	seamIn  bool
	seamOut bool

	muteCursor int
	fade       float64
}

// reset rewinds to index with a new increment.
func (o *Oscillator) reset(index, increment float64, looping bool) {
	o.index = index
	o.increment = increment
	o.multiplier = 1
	o.looping = looping
	o.wrapped = false
	o.seamIn = false
	o.seamOut = false
	o.muteCursor = 0
}

// stopLooping lets the read head run on past the loop end. A seam fade that
// is under way is played out instead of jumping back to full gain.
func (o *Oscillator) stopLooping(g *SelectionGroup) {
	if !o.looping {
		return
	}
	o.looping = false
	if g == nil || !g.looping {
		return
	}
	fade := seamFade(g, max(1, o.fade))
	switch {
	case o.index > g.loopEnd-fade:
		o.seamOut = true
	case o.wrapped && o.index >= g.loopStart && o.index < g.loopStart+fade:
		o.seamIn = true
	}
}

// Index returns the read position in output-domain frames.
func (o *Oscillator) Index() float64 { return o.index }

// next reads one frame scaled by gain and advances. done reports that the
// read head has passed the end of a non-looping source; the frame is
// silent then.
func (o *Oscillator) next(g *SelectionGroup, gain float32) (left, right float32, done bool) {
	looping := o.looping && g.looping
	if o.index > g.endPoint() && !looping {
		o.muteCursor = 0
		return 0, 0, true
	}

	fade := max(1, o.fade)
	gain *= o.muteGain(g, fade)

	if looping {
		gain *= o.loopGain(g, fade)
	} else if o.seamIn || o.seamOut {
		gain *= o.seamGain(g, fade)
	}

	pos := o.index
	if g.reversed {
		if g.looping {
			pos = g.loopStart + g.loopEnd - 1 - pos
		} else {
			pos = g.endPoint() - pos
		}
		pos = min(max(0, pos), g.endPoint())
	}

	if g.inverted {
		gain = -gain
	}

	left, right = g.Frame(pos)
	left *= gain
	right *= gain
	if !utils.IsFinite32(left) {
		left = 0
	}
	if !utils.IsFinite32(right) {
		right = 0
	}

	o.index += o.increment * o.multiplier
	if looping && o.index >= g.loopEnd {
		span := g.loopEnd - g.loopStart
		if span > 0 {
			for o.index >= g.loopEnd {
				o.index -= span
			}
		} else {
			o.index = g.loopStart
		}
		o.muteCursor = 0
		o.wrapped = true
	}
	return left, right, false
}

// muteGain ramps to silence over fade frames before a muted region and back
// after it. The cursor moves on once a region's fade-in has completed.
func (o *Oscillator) muteGain(g *SelectionGroup, fade float64) float32 {
	for o.muteCursor < len(g.muted) && o.index >= g.muted[o.muteCursor].end+fade {
		o.muteCursor++
	}
	if o.muteCursor >= len(g.muted) {
		return 1
	}

	m := g.muted[o.muteCursor]
	into := (m.start - o.index) / fade
	out := (o.index - m.end) / fade
	return float32(min(1, max(0, max(into, out))))
}

// loopGain fades out approaching the loop end and, after the first wrap,
// fades in leaving the loop start.
func (o *Oscillator) loopGain(g *SelectionGroup, fade float64) float32 {
	fade = seamFade(g, fade)
	gain := min(1, max(0, (g.loopEnd-o.index)/fade))
	if o.wrapped && o.index >= g.loopStart {
		gain *= min(1, max(0, (o.index-g.loopStart)/fade))
	}
	return float32(gain)
}

// seamGain finishes the fade that was running when looping stopped: a
// fade-in completes as before, a fade-out reaches silence at the loop end
// and rises again past it.
func (o *Oscillator) seamGain(g *SelectionGroup, fade float64) float32 {
	fade = seamFade(g, fade)
	if o.seamIn {
		if o.index >= g.loopStart+fade {
			o.seamIn = false
			return 1
		}
		return float32(min(1, max(0, (o.index-g.loopStart)/fade)))
	}
	if o.index >= g.loopEnd+fade {
		o.seamOut = false
		return 1
	}
	return float32(min(1, math.Abs(g.loopEnd-o.index)/fade))
}

// seamFade is the fade length used at the loop seam, at most half the loop.
func seamFade(g *SelectionGroup, fade float64) float64 {
	return min(fade, max(1, (g.loopEnd-g.loopStart)/2))
}
