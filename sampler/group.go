// SPDX-License-Identifier: EPL-2.0

package sampler

import (
	"math"

	"github.com/ik5/audsampler/dsp/stretch"
)

type span struct {
	start, end float64
}

// SelectionGroup is the audio a voice reads for one (note, velocity, loop)
// query: the selected buffers mixed to one stereo source and, when the loop
// asks for it, run through a time-stretch engine.
//
// Positions handed to Frame are in output-domain frames (source frames
// scaled by the time ratio). Stretched frames are produced lazily as the
// read head reaches them, so a group must only be read from the render
// goroutine once a voice owns it.
type SelectionGroup struct {
	note    int
	buffers []*SampleBuffer
	loop    LoopDescriptor

	sampleRate    float64
	noteFrequency float64

	srcL, srcR []float32

	stretcher stretch.Stretcher
	timeRatio float64
	scaledL   []float32
	scaledR   []float32
	count     int
	produced  int
	fed       int

	looping   bool
	reversed  bool
	inverted  bool
	loopStart float64
	loopEnd   float64
	muted     []span
}

// newSelectionGroup mixes the buffers' regions into one stereo source.
// The first buffer sets the source rate and nominal pitch.
func newSelectionGroup(note int, buffers []*SampleBuffer, loop *LoopDescriptor) *SelectionGroup {
	g := &SelectionGroup{
		note:          note,
		buffers:       buffers,
		loop:          *loop,
		sampleRate:    buffers[0].sampleRate,
		noteFrequency: buffers[0].noteFrequency,
		looping:       loop.IsLooping,
		reversed:      loop.Reversed,
		inverted:      loop.PhaseInverted,
	}

	length := 0
	for _, b := range buffers {
		start, end := region(b, loop)
		length = max(length, end-start)
	}
	g.srcL = make([]float32, length)
	g.srcR = make([]float32, length)
	for _, b := range buffers {
		start, end := region(b, loop)
		for i := start; i < end; i++ {
			l, r := b.Frame(i)
			g.srcL[i-start] += l
			g.srcR[i-start] += r
		}
	}

	tr, ps := loop.timeRatio(), loop.pitchScale()
	if stretch.IsIdentity(tr, ps) {
		g.timeRatio = 1
		g.scaledL, g.scaledR = g.srcL, g.srcR
		g.count = length
		g.produced = length
	} else {
		ola := stretch.NewOLA(stretch.DefaultWindow)
		ola.SetTimeRatio(tr)
		ola.SetPitchScale(ps)
		g.stretcher = ola
		g.timeRatio = ola.TimeRatio()
		g.count = max(1, int(math.Round(float64(length)*g.timeRatio)))
		g.scaledL = make([]float32, g.count)
		g.scaledR = make([]float32, g.count)
	}

	ls := min(max(0, loop.LoopStartPoint), length)
	le := length
	if loop.LoopEndPoint > 0 {
		le = min(loop.LoopEndPoint, length)
	}
	if le <= ls {
		ls, le = 0, length
	}
	g.loopStart = float64(ls) * g.timeRatio
	g.loopEnd = float64(le) * g.timeRatio
	if ls == 0 && le == length {
		g.loopEnd = float64(g.count)
	}

	g.muted = make([]span, 0, len(loop.Muted))
	for _, m := range loop.Muted {
		s := float64(min(m.Start, length)) * g.timeRatio
		e := float64(min(m.End, length)) * g.timeRatio
		if e <= s {
			continue
		}
		g.muted = append(g.muted, span{s, e})
	}

	// reversed playback starts reading at the far end
	if g.reversed && g.stretcher != nil {
		g.produce(g.count)
	}
	return g
}

// region resolves a buffer's playable frames under the loop's override.
func region(b *SampleBuffer, loop *LoopDescriptor) (start, end int) {
	start, end = b.start, b.end
	if loop.StartPoint > 0 {
		start = loop.StartPoint
	}
	if loop.EndPoint > 0 {
		end = loop.EndPoint
	}
	start = min(max(0, start), b.frames)
	end = min(max(0, end), b.frames)
	if end <= start {
		return b.start, b.end
	}
	return start, end
}

// Note returns the note number the group was built for.
func (g *SelectionGroup) Note() int { return g.note }

// Buffers returns the selected buffers in key-map order.
func (g *SelectionGroup) Buffers() []*SampleBuffer { return g.buffers }

// Len returns the playable length in output-domain frames.
func (g *SelectionGroup) Len() int { return g.count }

// endPoint is the last readable position.
func (g *SelectionGroup) endPoint() float64 { return float64(g.count - 1) }

// Reset rewinds the time-stretch engine. Frames already produced are kept
// since the same input always yields the same output.
func (g *SelectionGroup) Reset() {
	if g.stretcher == nil || g.produced >= g.count {
		return
	}
	g.stretcher.Reset()
	g.produced = 0
	g.fed = 0
}

// Frame returns the stereo frame at a fractional position in [0, Len()),
// interpolating linearly towards the next frame (wrapping to the first).
func (g *SelectionGroup) Frame(pos float64) (left, right float32) {
	i := int(pos)
	if i < 0 || i >= g.count {
		return 0, 0
	}
	j := i + 1
	if j >= g.count {
		j = 0
	}
	if g.produced < g.count && max(i, j) >= g.produced {
		g.produce(i + 2)
	}

	frac := float32(pos - float64(i))
	l0, r0 := g.scaledL[i], g.scaledR[i]
	if frac == 0 {
		return l0, r0
	}
	left = l0 + (g.scaledL[j]-l0)*frac
	right = r0 + (g.scaledR[j]-r0)*frac
	return left, right
}

// produce runs the stretcher until need frames exist or it stalls. Frames
// it cannot produce stay silent.
func (g *SelectionGroup) produce(need int) {
	need = min(need, g.count)
	for g.produced < need {
		if g.stretcher.Available() > 0 {
			g.produced += g.stretcher.Retrieve(g.scaledL[g.produced:], g.scaledR[g.produced:])
			continue
		}
		if g.stretcher.Done() {
			return
		}

		if g.fed < len(g.srcL) {
			want := max(1, g.stretcher.SamplesRequired())
			end := min(len(g.srcL), g.fed+want)
			used := g.stretcher.Process(g.srcL[g.fed:end], g.srcR[g.fed:end], end == len(g.srcL))
			g.fed += used
			if used == 0 && g.stretcher.Available() == 0 {
				return
			}
			continue
		}

		g.stretcher.Process(nil, nil, true)
		if g.stretcher.Available() == 0 {
			return
		}
	}
}
