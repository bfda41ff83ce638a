// SPDX-License-Identifier: EPL-2.0

package sampler

import (
	"fmt"
	"math"

	"github.com/ik5/audsampler/utils"
)

// Unmapped marks a note or velocity bound as unconstrained.
const Unmapped = -1

// SampleData is a fully decoded recording handed to LoadSampleData.
//
// Data holds Frames frames of Channels samples each, either interleaved
// (LRLR...) or planar (all left, then all right). Negative note and velocity
// fields mean "unconstrained". StartPoint and EndPoint select the playable
// region in frames; an EndPoint of zero means the last frame.
type SampleData struct {
	Name string

	Data        []float32
	SampleRate  float64
	Channels    int
	Frames      int
	Interleaved bool

	NoteNumber    int
	NoteFrequency float64
	MinNote       int
	MaxNote       int
	MinVelocity   int
	MaxVelocity   int

	StartPoint int
	EndPoint   int
}

// NewSampleData returns mono interleaved data with every mapping field
// unconstrained.
func NewSampleData(data []float32, sampleRate float64) SampleData {
	return SampleData{
		Data:        data,
		SampleRate:  sampleRate,
		Channels:    1,
		Frames:      len(data),
		Interleaved: true,
		NoteNumber:  Unmapped,
		MinNote:     Unmapped,
		MaxNote:     Unmapped,
		MinVelocity: Unmapped,
		MaxVelocity: Unmapped,
	}
}

// KeyMapping is the note and velocity metadata of a key-mapped buffer.
type KeyMapping struct {
	NoteNumber  int
	MinNote     int
	MaxNote     int
	MinVelocity int
	MaxVelocity int
}

// acceptsVelocity treats a negative bound as open.
func (m *KeyMapping) acceptsVelocity(velocity int) bool {
	if m.MinVelocity >= 0 && velocity < m.MinVelocity {
		return false
	}
	if m.MaxVelocity >= 0 && velocity > m.MaxVelocity {
		return false
	}
	return true
}

// SampleBuffer is an immutable loaded recording. It is shared read-only by
// every voice playing it until the pool is unloaded.
type SampleBuffer struct {
	name          string
	samples       []float32
	sampleRate    float64
	channels      int
	frames        int
	interleaved   bool
	start, end    int
	noteFrequency float64
	mapping       *KeyMapping
}

func newSampleBuffer(d SampleData) (*SampleBuffer, error) {
	switch {
	case !(d.SampleRate > 0) || math.IsInf(d.SampleRate, 0):
		return nil, fmt.Errorf("%w: %q: sample rate %v", ErrInvalidSampleData, d.Name, d.SampleRate)
	case d.Channels < 1 || d.Channels > 2:
		return nil, fmt.Errorf("%w: %q: %d channels", ErrInvalidSampleData, d.Name, d.Channels)
	case d.Frames < 1:
		return nil, fmt.Errorf("%w: %q: no frames", ErrInvalidSampleData, d.Name)
	case len(d.Data) < d.Frames*d.Channels:
		return nil, fmt.Errorf("%w: %q: %d samples for %d frames", ErrInvalidSampleData, d.Name, len(d.Data), d.Frames)
	}

	end := d.EndPoint
	if end <= 0 || end > d.Frames {
		end = d.Frames
	}
	start := max(0, d.StartPoint)
	if start >= end {
		return nil, fmt.Errorf("%w: %q: start %d not before end %d", ErrInvalidSampleData, d.Name, start, end)
	}

	freq := d.NoteFrequency
	if freq <= 0 && d.NoteNumber >= 0 {
		freq = utils.NoteHz(float64(d.NoteNumber))
	}
	if !(freq > 0) || math.IsInf(freq, 0) {
		return nil, fmt.Errorf("%w: %q: no note frequency", ErrInvalidSampleData, d.Name)
	}

	b := &SampleBuffer{
		name:          d.Name,
		samples:       append([]float32(nil), d.Data[:d.Frames*d.Channels]...),
		sampleRate:    d.SampleRate,
		channels:      d.Channels,
		frames:        d.Frames,
		interleaved:   d.Interleaved || d.Channels == 1,
		start:         start,
		end:           end,
		noteFrequency: freq,
	}
	if d.NoteNumber >= 0 || d.MinNote >= 0 || d.MaxNote >= 0 || d.MinVelocity >= 0 || d.MaxVelocity >= 0 {
		b.mapping = &KeyMapping{
			NoteNumber:  d.NoteNumber,
			MinNote:     d.MinNote,
			MaxNote:     d.MaxNote,
			MinVelocity: d.MinVelocity,
			MaxVelocity: d.MaxVelocity,
		}
	}
	return b, nil
}

func (b *SampleBuffer) Name() string           { return b.name }
func (b *SampleBuffer) SampleRate() float64    { return b.sampleRate }
func (b *SampleBuffer) Channels() int          { return b.channels }
func (b *SampleBuffer) Frames() int            { return b.frames }
func (b *SampleBuffer) IsInterleaved() bool    { return b.interleaved }
func (b *SampleBuffer) NoteFrequency() float64 { return b.noteFrequency }

// StartPoint is the first playable frame.
func (b *SampleBuffer) StartPoint() int { return b.start }

// EndPoint is one past the last playable frame.
func (b *SampleBuffer) EndPoint() int { return b.end }

// Mapping returns the key-map metadata, or false for a plain buffer.
func (b *SampleBuffer) Mapping() (KeyMapping, bool) {
	if b.mapping == nil {
		return KeyMapping{}, false
	}
	return *b.mapping, true
}

// Frame returns frame i as a stereo pair. Mono buffers return the same value
// on both sides. i must be in [0, Frames()).
func (b *SampleBuffer) Frame(i int) (left, right float32) {
	if b.channels == 1 {
		v := b.samples[i]
		return v, v
	}
	if b.interleaved {
		return b.samples[2*i], b.samples[2*i+1]
	}
	return b.samples[i], b.samples[b.frames+i]
}

// acceptsVelocity reports whether velocity falls in the buffer's range.
// Unmapped buffers and missing bounds accept everything.
func (b *SampleBuffer) acceptsVelocity(velocity int) bool {
	return b.mapping == nil || b.mapping.acceptsVelocity(velocity)
}

func (b *SampleBuffer) String() string {
	if b.name != "" {
		return b.name
	}
	return fmt.Sprintf("buffer(%d frames @ %g Hz)", b.frames, b.sampleRate)
}
