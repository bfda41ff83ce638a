// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Clip is a fully decoded, interleaved block of PCM.
type Clip struct {
	Samples    []float32
	SampleRate int
	Channels   int
}

// Frames returns the number of sample frames held by the clip.
func (c *Clip) Frames() int {
	if c.Channels <= 0 {
		return 0
	}
	return len(c.Samples) / c.Channels
}

// Collect drains src into memory. The context is checked between reads so
// that a long decode can be abandoned. src is not closed.
func Collect(ctx context.Context, src Source) (*Clip, error) {
	if src.SampleRate() <= 0 {
		return nil, ErrInvalidRate
	}
	channels := src.Channels()
	if channels <= 0 {
		return nil, ErrInvalidChannels
	}

	size := src.BufSize()
	if size < channels {
		size = 4096
	}
	size -= size % channels
	buf := make([]float32, size)

	clip := &Clip{SampleRate: src.SampleRate(), Channels: channels}
	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("collect: %w", err)
		}

		n, err := src.ReadSamples(buf)
		if n > 0 {
			clip.Samples = append(clip.Samples, buf[:n]...)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("collect: %w", err)
		}
	}

	// drop a trailing partial frame
	clip.Samples = clip.Samples[:clip.Frames()*channels]
	return clip, nil
}

// NewClipSource wraps an in-memory clip as a Source.
func NewClipSource(c *Clip) Source {
	return &clipSource{clip: c}
}

type clipSource struct {
	clip *Clip
	pos  int
}

func (s *clipSource) SampleRate() int { return s.clip.SampleRate }
func (s *clipSource) Channels() int   { return s.clip.Channels }
func (s *clipSource) BufSize() int    { return 4096 }
func (s *clipSource) Close() error    { return nil }

func (s *clipSource) ReadSamples(dst []float32) (int, error) {
	if len(dst)%s.clip.Channels != 0 {
		return 0, ErrInvalidDstSize
	}
	if s.pos >= len(s.clip.Samples) {
		return 0, io.EOF
	}
	n := copy(dst, s.clip.Samples[s.pos:])
	s.pos += n
	return n, nil
}
