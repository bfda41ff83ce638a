// SPDX-License-Identifier: EPL-2.0

// Package lfo provides a table-driven low frequency oscillator used for
// vibrato.
package lfo

import "math"

// TableSize is the length of the shared sine table.
const TableSize = 1024

var sineTable = func() []float64 {
	t := make([]float64, TableSize)
	for i := range t {
		t[i] = math.Sin(2 * math.Pi * float64(i) / TableSize)
	}
	return t
}()

// Sine reads the shared sine table with linear interpolation.
// The zero value is silent until Init is called.
type Sine struct {
	sampleRate float64
	frequency  float64
	phase      float64 // in table entries
	phaseInc   float64
}

// Init sets the rate Next is called at and the frequency, and rewinds.
func (o *Sine) Init(sampleRate, frequency float64) {
	o.sampleRate = sampleRate
	o.phase = 0
	o.SetFrequency(frequency)
}

// SetFrequency changes the frequency without touching the phase.
func (o *Sine) SetFrequency(hz float64) {
	o.frequency = max(0, hz)
	if o.sampleRate <= 0 {
		o.phaseInc = 0
		return
	}
	o.phaseInc = o.frequency * TableSize / o.sampleRate
}

// Frequency returns the current frequency in Hz.
func (o *Sine) Frequency() float64 { return o.frequency }

// ResetPhase rewinds to the zero crossing.
func (o *Sine) ResetPhase() { o.phase = 0 }

// Next returns the value at the current phase in [-1, 1] and advances.
func (o *Sine) Next() float64 {
	i := int(o.phase)
	frac := o.phase - float64(i)
	a := sineTable[i]
	b := sineTable[(i+1)%TableSize]

	o.phase += o.phaseInc
	for o.phase >= TableSize {
		o.phase -= TableSize
	}
	return a + (b-a)*frac
}
