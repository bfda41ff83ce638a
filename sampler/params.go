// SPDX-License-Identifier: EPL-2.0

package sampler

import "github.com/ik5/audsampler/dsp/envelope"

// Performance setters clamp out-of-range values instead of failing. Like
// note events they must be serialized with Render.

func (e *Engine) SetMasterVolume(v float64) { e.cfg.MasterVolume = nonNegative(v) }
func (e *Engine) MasterVolume() float64     { return e.cfg.MasterVolume }

// SetPitchOffset transposes every voice by semitones.
func (e *Engine) SetPitchOffset(semitones float64) { e.cfg.PitchOffset = finiteOr(semitones, 0) }
func (e *Engine) PitchOffset() float64             { return e.cfg.PitchOffset }

// SetVibrato sets the shared vibrato depth in semitones and its rate in Hz.
func (e *Engine) SetVibrato(depth, frequency float64) {
	e.cfg.VibratoDepth = finiteOr(depth, 0)
	e.cfg.VibratoFrequency = nonNegative(frequency)
}

// SetVoiceVibrato sets the per-voice vibrato depth and rate.
func (e *Engine) SetVoiceVibrato(depth, frequency float64) {
	e.cfg.VoiceVibratoDepth = finiteOr(depth, 0)
	e.cfg.VoiceVibratoFrequency = nonNegative(frequency)
}

// SetGlideRate sets the portamento time in seconds per octave; zero turns
// glide off.
func (e *Engine) SetGlideRate(secondsPerOctave float64) {
	e.cfg.GlideRate = nonNegative(secondsPerOctave)
}
func (e *Engine) GlideRate() float64 { return e.cfg.GlideRate }

func (e *Engine) SetMonophonic(on bool) { e.cfg.Monophonic = on }
func (e *Engine) SetLegato(on bool)     { e.cfg.Legato = on }

func (e *Engine) SetFilterEnabled(on bool) { e.cfg.FilterEnabled = on }

// SetCutoffMultiple sets the cutoff relative to the key-tracked base.
// A negative value bypasses the filter.
func (e *Engine) SetCutoffMultiple(m float64) { e.cfg.CutoffMultiple = finiteOr(m, 0) }

func (e *Engine) SetKeyTracking(amount float64) {
	e.cfg.KeyTracking = min(maxKeyTracking, max(-maxKeyTracking, finiteOr(amount, 1)))
}

func (e *Engine) SetCutoffEnvelopeStrength(s float64) {
	e.cfg.CutoffEnvelopeStrength = finiteOr(s, 0)
}

// SetFilterEnvelopeVelocityScaling sets how much velocity scales the filter
// envelope, from 0 (not at all) to 1 (fully).
func (e *Engine) SetFilterEnvelopeVelocityScaling(s float64) {
	e.cfg.FilterEnvelopeVelocityScaling = unit(s)
}

func (e *Engine) SetLinearResonance(r float64) { e.cfg.LinearResonance = resonance(r) }

// SetPitchADSRSemitones sets the pitch envelope's full-scale excursion.
func (e *Engine) SetPitchADSRSemitones(semitones float64) {
	e.cfg.PitchADSRSemitones = finiteOr(semitones, 0)
}

func (e *Engine) SetLoopThruRelease(on bool) { e.cfg.LoopThruRelease = on }
func (e *Engine) SetRestartVoiceLFO(on bool) { e.cfg.RestartVoiceLFO = on }

func (e *Engine) params(kind EnvelopeKind) *envelope.Parameters {
	switch kind {
	case FilterEnvelope:
		return e.filterParams
	case PitchEnvelope:
		return e.pitchParams
	default:
		return e.ampParams
	}
}

// EnvelopeParameters returns a copy of one envelope category's settings.
func (e *Engine) EnvelopeParameters(kind EnvelopeKind) envelope.Parameters {
	return *e.params(kind)
}

func (e *Engine) updateEnvelopes(kind EnvelopeKind) {
	for _, v := range e.voices {
		switch kind {
		case FilterEnvelope:
			v.filterEnv.UpdateParams()
		case PitchEnvelope:
			v.pitchEnv.UpdateParams()
		default:
			v.ampEnv.UpdateParams()
		}
	}
}

// SetAttack sets the attack time in seconds.
func (e *Engine) SetAttack(kind EnvelopeKind, seconds float64) {
	e.params(kind).Attack = nonNegative(seconds)
	e.updateEnvelopes(kind)
}

func (e *Engine) SetHold(kind EnvelopeKind, seconds float64) {
	e.params(kind).Hold = nonNegative(seconds)
	e.updateEnvelopes(kind)
}

func (e *Engine) SetDecay(kind EnvelopeKind, seconds float64) {
	e.params(kind).Decay = nonNegative(seconds)
	e.updateEnvelopes(kind)
}

// SetSustain sets the sustain level as a fraction of full scale.
func (e *Engine) SetSustain(kind EnvelopeKind, level float64) {
	e.params(kind).Sustain = unit(level)
	e.updateEnvelopes(kind)
}

func (e *Engine) SetReleaseHold(kind EnvelopeKind, seconds float64) {
	e.params(kind).ReleaseHold = nonNegative(seconds)
	e.updateEnvelopes(kind)
}

func (e *Engine) SetRelease(kind EnvelopeKind, seconds float64) {
	e.params(kind).Release = nonNegative(seconds)
	e.updateEnvelopes(kind)
}

func (e *Engine) Attack(kind EnvelopeKind) float64      { return e.params(kind).Attack }
func (e *Engine) Hold(kind EnvelopeKind) float64        { return e.params(kind).Hold }
func (e *Engine) Decay(kind EnvelopeKind) float64       { return e.params(kind).Decay }
func (e *Engine) Sustain(kind EnvelopeKind) float64     { return e.params(kind).Sustain }
func (e *Engine) ReleaseHold(kind EnvelopeKind) float64 { return e.params(kind).ReleaseHold }
func (e *Engine) Release(kind EnvelopeKind) float64     { return e.params(kind).Release }
