// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"

	"github.com/ik5/audsampler/utils"
)

// Encoder writes interleaved float32 frames as integer PCM WAV.
// The header sizes are patched on Close, so the writer must seek.
type Encoder struct {
	enc      *gowav.Encoder
	buf      *goaudio.IntBuffer
	bitDepth int
	channels int
	closed   bool
}

// NewEncoder prepares a WAV stream of the given format. bitDepth is 16 or 24.
func NewEncoder(w io.WriteSeeker, sampleRate, channels, bitDepth int) (*Encoder, error) {
	if bitDepth != 16 && bitDepth != 24 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}
	if sampleRate <= 0 || channels <= 0 {
		return nil, ErrUnsupportedWavLayout
	}

	return &Encoder{
		enc: gowav.NewEncoder(w, sampleRate, bitDepth, channels, wavFormatPCM),
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
			SourceBitDepth: bitDepth,
		},
		bitDepth: bitDepth,
		channels: channels,
	}, nil
}

// Write appends interleaved samples. len(samples) must be a multiple of
// the channel count.
func (e *Encoder) Write(samples []float32) error {
	if e.closed {
		return ErrEncoderClosed
	}
	if len(samples)%e.channels != 0 {
		return fmt.Errorf("%w: %d samples for %d channels", ErrUnsupportedWavLayout, len(samples), e.channels)
	}
	if len(samples) == 0 {
		return nil
	}

	if cap(e.buf.Data) < len(samples) {
		e.buf.Data = make([]int, len(samples))
	}
	e.buf.Data = e.buf.Data[:len(samples)]
	for i, v := range samples {
		e.buf.Data[i] = utils.Float32ToPCM(v, e.bitDepth)
	}

	if err := e.enc.Write(e.buf); err != nil {
		return fmt.Errorf("wav write: %w", err)
	}
	return nil
}

// Close finalizes the header. It does not close the underlying writer.
func (e *Encoder) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	if err := e.enc.Close(); err != nil {
		return fmt.Errorf("wav close: %w", err)
	}
	return nil
}

// Write encodes a complete buffer of interleaved samples to w.
func Write(w io.WriteSeeker, samples []float32, sampleRate, channels, bitDepth int) error {
	enc, err := NewEncoder(w, sampleRate, channels, bitDepth)
	if err != nil {
		return err
	}
	if err := enc.Write(samples); err != nil {
		return err
	}
	return enc.Close()
}
