// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audsampler/utils"
)

// Resampler streams src at a new sample rate using Catmull-Rom
// interpolation. Works on interleaved samples; preserves channel count.
// A one-pole low-pass runs ahead of the interpolator when downsampling.
type Resampler struct {
	src      Source
	dstRate  int
	step     float64 // source frames per output frame
	channels int

	// hist[1] is the frame at the integer read position; interpolation runs
	// between hist[1] and hist[2].
	hist [4][]float32
	live int // real (non-padded) frames among hist[1..3]
	frac float64

	block    []float32
	blockPos int
	blockLen int
	srcDone  bool
	srcErr   error
	started  bool

	lp       []float32
	lpAlpha  float32
	lpSeeded bool
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := src.Channels()
	r := &Resampler{
		src:      src,
		dstRate:  dstRate,
		step:     float64(src.SampleRate()) / float64(dstRate),
		channels: channels,
		block:    make([]float32, 1024*channels),
		lp:       make([]float32, channels),
	}
	for i := range r.hist {
		r.hist[i] = make([]float32, channels)
	}
	if r.step > 1 {
		r.lpAlpha = float32(1 / r.step)
	}
	return r
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

func (r *Resampler) Close() error {
	return r.src.Close()
}

// pull copies the next source frame into dst.
func (r *Resampler) pull(dst []float32) bool {
	for r.blockPos >= r.blockLen {
		if r.srcDone {
			return false
		}
		n, err := r.src.ReadSamples(r.block)
		r.blockLen = n - n%r.channels
		r.blockPos = 0
		if err != nil {
			r.srcDone = true
			if !errors.Is(err, io.EOF) {
				r.srcErr = err
			}
		}
	}

	copy(dst, r.block[r.blockPos:r.blockPos+r.channels])
	r.blockPos += r.channels

	if r.lpAlpha > 0 {
		// the filter starts at the first frame instead of ramping from zero
		if !r.lpSeeded {
			copy(r.lp, dst)
			r.lpSeeded = true
		}
		for c := range dst {
			r.lp[c] += r.lpAlpha * (dst[c] - r.lp[c])
			dst[c] = r.lp[c]
		}
	}
	return true
}

func (r *Resampler) prime() {
	r.started = true
	if !r.pull(r.hist[1]) {
		return
	}
	copy(r.hist[0], r.hist[1])
	r.live = 1
	for i := 2; i < 4; i++ {
		if r.pull(r.hist[i]) {
			r.live++
		} else {
			copy(r.hist[i], r.hist[i-1])
		}
	}
}

func (r *Resampler) advance() {
	first := r.hist[0]
	r.hist[0], r.hist[1], r.hist[2] = r.hist[1], r.hist[2], r.hist[3]
	r.hist[3] = first
	r.live--
	if r.pull(r.hist[3]) {
		r.live++
		return
	}
	copy(r.hist[3], r.hist[2])
}

// ReadSamples produces dst samples at the destination rate.
// dst length must be a multiple of the channel count.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}
	if !r.started {
		r.prime()
	}

	written := 0
	for written+r.channels <= len(dst) {
		for r.frac >= 1 {
			r.frac--
			r.advance()
		}
		if r.live < 2 {
			break
		}

		x := float32(r.frac)
		for c := range r.channels {
			dst[written+c] = utils.CubicInterpolate(r.hist[0][c], r.hist[1][c], r.hist[2][c], r.hist[3][c], x)
		}
		written += r.channels
		r.frac += r.step
	}

	if written == 0 && r.live < 2 {
		if r.srcErr != nil {
			return 0, fmt.Errorf("resample: %w", r.srcErr)
		}
		return 0, io.EOF
	}
	return written, nil
}
