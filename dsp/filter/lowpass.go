// SPDX-License-Identifier: EPL-2.0

// Package filter provides the resonant low-pass filter applied per voice
// channel.
package filter

import "math"

const (
	// MinResonance and MaxResonance bound the linear resonance argument.
	MinResonance = 0.1
	MaxResonance = 10.0

	minCutoff = 10.0
	// cutoff is kept below this fraction of the sample rate
	maxCutoffRatio = 0.49
)

// LowPass is an RBJ biquad low-pass in Direct Form I. Resonance is given as
// a linear gain at the corner, which makes Q equal to its reciprocal.
type LowPass struct {
	sampleRate float64

	cutoff    float64
	resonance float64

	b0, b1, b2 float64
	a1, a2     float64

	x1, x2 float64
	y1, y2 float64
}

// NewLowPass creates a filter with the cutoff at the highest usable
// frequency, which is close to transparent.
func NewLowPass(sampleRate float64) *LowPass {
	f := &LowPass{sampleRate: sampleRate}
	f.SetParameters(sampleRate*maxCutoffRatio, 1)
	return f
}

// UpdateSampleRate changes the rate and recomputes coefficients.
func (f *LowPass) UpdateSampleRate(sampleRate float64) {
	f.sampleRate = sampleRate
	cutoff, res := f.cutoff, f.resonance
	f.cutoff = -1
	f.SetParameters(cutoff, res)
}

// SetParameters sets the corner frequency in Hz and the linear resonance.
// Both are clamped to the usable range. Unchanged values are a no-op.
func (f *LowPass) SetParameters(cutoffHz, linearResonance float64) {
	cutoffHz = min(max(cutoffHz, minCutoff), f.sampleRate*maxCutoffRatio)
	linearResonance = min(max(linearResonance, MinResonance), MaxResonance)
	if math.IsNaN(cutoffHz) {
		cutoffHz = f.sampleRate * maxCutoffRatio
	}
	if cutoffHz == f.cutoff && linearResonance == f.resonance {
		return
	}
	f.cutoff = cutoffHz
	f.resonance = linearResonance

	w := 2 * math.Pi * cutoffHz / f.sampleRate
	sn, cs := math.Sincos(w)
	alpha := sn * 0.5 * linearResonance

	a0 := 1 + alpha
	f.b1 = (1 - cs) / a0
	f.b0 = f.b1 * 0.5
	f.b2 = f.b0
	f.a1 = -2 * cs / a0
	f.a2 = (1 - alpha) / a0
}

// Cutoff returns the effective corner frequency.
func (f *LowPass) Cutoff() float64 { return f.cutoff }

// Process filters one sample.
func (f *LowPass) Process(x float32) float32 {
	in := float64(x)
	y := f.b0*in + f.b1*f.x1 + f.b2*f.x2 - f.a1*f.y1 - f.a2*f.y2

	// flush denormals and recover from blow-ups
	if math.Abs(y) < 1e-20 || math.IsNaN(y) || math.IsInf(y, 0) {
		if math.IsNaN(y) || math.IsInf(y, 0) {
			f.Reset()
			return 0
		}
		y = 0
	}

	f.x2, f.x1 = f.x1, in
	f.y2, f.y1 = f.y1, y
	return float32(y)
}

// Reset clears the delay lines.
func (f *LowPass) Reset() {
	f.x1, f.x2, f.y1, f.y2 = 0, 0, 0, 0
}
