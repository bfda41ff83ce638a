// SPDX-License-Identifier: EPL-2.0

package stretch

import "math"

const (
	// DefaultWindow is the analysis/synthesis frame length in frames.
	DefaultWindow = 1024

	minRatio = 0.125
	maxRatio = 8.0

	inputSlack  = 4096
	outputSpace = 4096
)

// OLA is a windowed overlap-add stretcher. Frames of the input are taken
// every Ha frames, Hann windowed and summed every Hs = window/2 frames, which
// scales duration by timeRatio*pitchScale without touching pitch. A linear
// resampler stepping by pitchScale then restores the duration and shifts the
// pitch. The input is padded with half a window of silence so the first
// output frame lines up with the first input frame. Each output frame is
// divided by the window weight that real input contributed to it, so the
// padding and the end of the input do not dip the level when Ha != Hs.
type OLA struct {
	window []float64
	size   int
	hop    int

	timeRatio  float64
	pitchScale float64
	anaHop     float64

	in      [2][]float32
	inLen   int
	lead    int // padding frames still at the front of in
	anaPos  float64
	discard int
	final   bool
	drained bool

	acc    [2][]float64
	weight []float64

	mid    [2][]float32
	midLen int
	skip   int
	resPos float64

	out    [2][]float32
	outLen int
}

// NewOLA builds a stretcher with the given window length (rounded up to an
// even number, at least 64).
func NewOLA(window int) *OLA {
	window = max(64, window+window%2)

	s := &OLA{
		window:     make([]float64, window),
		size:       window,
		hop:        window / 2,
		timeRatio:  1,
		pitchScale: 1,
		weight:     make([]float64, window),
	}
	for n := range s.window {
		// periodic Hann sums to exactly 1 at 50% overlap
		s.window[n] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(n)/float64(window))
	}
	for c := range 2 {
		s.in[c] = make([]float32, window+inputSlack)
		s.acc[c] = make([]float64, window)
		s.mid[c] = make([]float32, outputSpace+window)
		s.out[c] = make([]float32, outputSpace)
	}
	s.updateHop()
	s.Reset()
	return s
}

func clampRatio(v float64) float64 {
	if math.IsNaN(v) || v <= 0 {
		return 1
	}
	return min(max(v, minRatio), maxRatio)
}

func (s *OLA) updateHop() {
	s.anaHop = float64(s.hop) / (s.timeRatio * s.pitchScale)
}

func (s *OLA) SetTimeRatio(ratio float64) {
	s.timeRatio = clampRatio(ratio)
	s.updateHop()
}

func (s *OLA) SetPitchScale(scale float64) {
	s.pitchScale = clampRatio(scale)
	s.updateHop()
}

// TimeRatio returns the effective (clamped) time ratio.
func (s *OLA) TimeRatio() float64 { return s.timeRatio }

// PitchScale returns the effective (clamped) pitch scale.
func (s *OLA) PitchScale() float64 { return s.pitchScale }

func (s *OLA) Reset() {
	for c := range 2 {
		clear(s.in[c])
		clear(s.acc[c])
	}
	clear(s.weight)
	s.inLen = s.size / 2
	s.lead = s.size / 2
	s.anaPos = 0
	s.discard = 0
	s.final = false
	s.drained = false
	s.midLen = 0
	s.skip = s.size / 2
	s.resPos = 0
	s.outLen = 0
}

func (s *OLA) SamplesRequired() int {
	if s.final {
		return 0
	}
	return s.discard + max(0, int(s.anaPos)+s.size-s.inLen)
}

func (s *OLA) Process(left, right []float32, final bool) int {
	used := 0
	if !s.final {
		n := min(len(left), len(right))
		if s.discard > 0 {
			d := min(s.discard, n)
			s.discard -= d
			used = d
		}

		take := min(n-used, len(s.in[0])-s.inLen)
		copy(s.in[0][s.inLen:], left[used:used+take])
		copy(s.in[1][s.inLen:], right[used:used+take])
		s.inLen += take
		used += take

		if final && used == n {
			s.final = true
		}
	}

	s.pump()
	return used
}

func (s *OLA) Available() int { return s.outLen }

func (s *OLA) Retrieve(left, right []float32) int {
	n := min(len(left), len(right), s.outLen)
	copy(left, s.out[0][:n])
	copy(right, s.out[1][:n])

	for c := range 2 {
		copy(s.out[c], s.out[c][n:s.outLen])
	}
	s.outLen -= n

	s.pump()
	return n
}

func (s *OLA) Done() bool {
	return s.drained && s.resPos >= float64(s.midLen) && s.outLen == 0
}

// pump moves data through the pipeline until it stalls.
func (s *OLA) pump() {
	for {
		progressed := s.resample()
		if s.midLen+s.hop <= len(s.mid[0]) && s.synthesize() {
			progressed = true
		}
		if !progressed {
			return
		}
	}
}

// resample steps through mid by pitchScale with linear interpolation.
func (s *OLA) resample() bool {
	progressed := false
	ml, mr := s.mid[0], s.mid[1]
	for s.outLen < len(s.out[0]) {
		i := int(s.resPos)
		if i+1 >= s.midLen && (!s.drained || i >= s.midLen) {
			break
		}
		frac := float32(s.resPos - float64(i))

		l0, r0 := ml[i], mr[i]
		var l1, r1 float32
		if i+1 < s.midLen {
			l1, r1 = ml[i+1], mr[i+1]
		}

		s.out[0][s.outLen] = l0 + (l1-l0)*frac
		s.out[1][s.outLen] = r0 + (r1-r0)*frac
		s.outLen++
		s.resPos += s.pitchScale
		progressed = true
	}

	if drop := min(int(s.resPos), s.midLen); drop > 0 {
		for c := range 2 {
			copy(s.mid[c], s.mid[c][drop:s.midLen])
		}
		s.midLen -= drop
		s.resPos -= float64(drop)
	}
	return progressed
}

// synthesize overlap-adds one analysis frame and emits hop frames to mid.
func (s *OLA) synthesize() bool {
	if s.drained {
		return false
	}

	start := int(s.anaPos)
	if start+s.size > s.inLen && !s.final {
		return false
	}

	if s.final && start >= s.inLen {
		// only the tail held in the accumulator is left
		s.emit(s.size - s.hop)
		s.drained = true
		return true
	}

	inL, inR := s.in[0], s.in[1]
	accL, accR := s.acc[0], s.acc[1]
	for n, w := range s.window {
		i := start + n
		if i < s.lead || i >= s.inLen {
			continue
		}
		s.weight[n] += w
		accL[n] += w * float64(inL[i])
		accR[n] += w * float64(inR[i])
	}
	s.emit(s.hop)

	s.anaPos += s.anaHop
	drop := int(s.anaPos)
	if drop > s.inLen {
		extra := drop - s.inLen
		s.discard += extra
		s.anaPos -= float64(extra)
		drop = s.inLen
	}
	s.anaPos -= float64(drop)
	s.lead = max(0, s.lead-drop)
	for c := range 2 {
		copy(s.in[c], s.in[c][drop:s.inLen])
	}
	s.inLen -= drop
	return true
}

// emit moves the first n accumulated frames to mid, dropping any latency
// frames still to skip, then shifts the accumulator by hop.
func (s *OLA) emit(n int) {
	sk := min(s.skip, n)
	s.skip -= sk
	k := n - sk

	midL, midR := s.mid[0][s.midLen:], s.mid[1][s.midLen:]
	for i := range k {
		w := s.weight[sk+i]
		if w <= 0 {
			midL[i], midR[i] = 0, 0
			continue
		}
		midL[i] = float32(s.acc[0][sk+i] / w)
		midR[i] = float32(s.acc[1][sk+i] / w)
	}
	s.shift(s.acc[0])
	s.shift(s.acc[1])
	s.shift(s.weight)
	s.midLen += k
}

func (s *OLA) shift(a []float64) {
	copy(a, a[s.hop:])
	clear(a[s.size-s.hop:])
}
