// SPDX-License-Identifier: EPL-2.0

package sampler

import (
	"fmt"
	"log/slog"
	"math"
)

const (
	// NoteCount is the number of MIDI notes the engine maps.
	NoteCount = 128

	// DefaultPolyphony is the voice pool size DefaultConfig asks for.
	DefaultPolyphony = 64
	// MaxPolyphony bounds Config.Polyphony.
	MaxPolyphony = 1024

	// ChunkSize is the number of frames rendered between control updates.
	// Envelopes and LFOs advance once per chunk.
	ChunkSize = 16

	// MiddleCHz is the key-tracking pivot of the filter cutoff.
	MiddleCHz = 262.626

	minResonance   = 0.1
	maxResonance   = 10.0
	maxKeyTracking = 2.0
)

// KeyMapMode selects how samples are spread over the keyboard.
type KeyMapMode int

const (
	// KeyMapRanges maps each sample over its declared note range.
	KeyMapRanges KeyMapMode = iota
	// KeyMapSimple maps every note to the nearest pitched sample(s).
	KeyMapSimple
)

func (m KeyMapMode) String() string {
	switch m {
	case KeyMapRanges:
		return "ranges"
	case KeyMapSimple:
		return "simple"
	default:
		return fmt.Sprintf("KeyMapMode(%d)", int(m))
	}
}

// EnvelopeKind names one of the three per-voice envelopes.
type EnvelopeKind int

const (
	AmpEnvelope EnvelopeKind = iota
	FilterEnvelope
	PitchEnvelope
)

func (k EnvelopeKind) String() string {
	switch k {
	case AmpEnvelope:
		return "amp"
	case FilterEnvelope:
		return "filter"
	case PitchEnvelope:
		return "pitch"
	default:
		return fmt.Sprintf("EnvelopeKind(%d)", int(k))
	}
}

// Config holds every global performance setting of an Engine.
// Pitch values are in semitones, frequencies in Hz.
type Config struct {
	SampleRate float64
	Polyphony  int

	MasterVolume float64
	PitchOffset  float64

	VibratoDepth          float64
	VibratoFrequency      float64
	VoiceVibratoDepth     float64
	VoiceVibratoFrequency float64

	// GlideRate is the portamento speed in seconds per octave. Zero
	// disables glide.
	GlideRate float64

	Monophonic bool
	Legato     bool

	FilterEnabled                 bool
	CutoffMultiple                float64
	KeyTracking                   float64
	CutoffEnvelopeStrength        float64
	FilterEnvelopeVelocityScaling float64
	LinearResonance               float64

	PitchADSRSemitones float64

	LoopThruRelease bool
	RestartVoiceLFO bool

	// Logger receives control-path events. Nil uses slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns the stock settings for the given output rate.
func DefaultConfig(sampleRate float64) Config {
	return Config{
		SampleRate:             sampleRate,
		Polyphony:              DefaultPolyphony,
		MasterVolume:           1,
		VibratoFrequency:       5,
		VoiceVibratoFrequency:  5,
		CutoffMultiple:         4,
		KeyTracking:            1,
		CutoffEnvelopeStrength: 20,
		LinearResonance:        0.5,
	}
}

// Validate reports settings New cannot work with.
func (c Config) Validate() error {
	if !(c.SampleRate > 0) || math.IsInf(c.SampleRate, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRate, c.SampleRate)
	}
	if c.Polyphony < 1 || c.Polyphony > MaxPolyphony {
		return fmt.Errorf("%w: %d", ErrInvalidPolyphony, c.Polyphony)
	}
	return nil
}

func finiteOr(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}

func unit(v float64) float64 {
	return min(1, max(0, finiteOr(v, 0)))
}

func nonNegative(v float64) float64 {
	return max(0, finiteOr(v, 0))
}

func resonance(v float64) float64 {
	return min(maxResonance, max(minResonance, finiteOr(v, 1)))
}

// normalize clamps the tunable fields the same way the setters do.
func (c *Config) normalize() {
	c.MasterVolume = nonNegative(c.MasterVolume)
	c.PitchOffset = finiteOr(c.PitchOffset, 0)
	c.VibratoDepth = finiteOr(c.VibratoDepth, 0)
	c.VibratoFrequency = nonNegative(c.VibratoFrequency)
	c.VoiceVibratoDepth = finiteOr(c.VoiceVibratoDepth, 0)
	c.VoiceVibratoFrequency = nonNegative(c.VoiceVibratoFrequency)
	c.GlideRate = nonNegative(c.GlideRate)
	c.CutoffMultiple = finiteOr(c.CutoffMultiple, 0)
	c.KeyTracking = min(maxKeyTracking, max(-maxKeyTracking, finiteOr(c.KeyTracking, 1)))
	c.CutoffEnvelopeStrength = finiteOr(c.CutoffEnvelopeStrength, 0)
	c.FilterEnvelopeVelocityScaling = unit(c.FilterEnvelopeVelocityScaling)
	c.LinearResonance = resonance(c.LinearResonance)
	c.PitchADSRSemitones = finiteOr(c.PitchADSRSemitones, 0)
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}
