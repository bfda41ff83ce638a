// SPDX-License-Identifier: EPL-2.0

// Package ramp provides a linear ramper for smoothing control-rate values
// across audio-rate frames.
package ramp

// Linear moves from its current value to a target in a fixed number of steps.
// The zero value rests at 0.
type Linear struct {
	value  float64
	target float64
	inc    float64
	count  int
}

// Init jumps straight to v.
func (r *Linear) Init(v float64) {
	r.value = v
	r.target = v
	r.inc = 0
	r.count = 0
}

// Reinit starts a new ramp from the current value to target over steps
// calls to Next. steps <= 0 jumps immediately.
func (r *Linear) Reinit(target float64, steps int) {
	if steps <= 0 {
		r.Init(target)
		return
	}
	r.target = target
	r.inc = (target - r.value) / float64(steps)
	r.count = steps
}

// Next advances one step and returns the new value.
func (r *Linear) Next() float64 {
	if r.count > 0 {
		r.count--
		if r.count == 0 {
			r.value = r.target
		} else {
			r.value += r.inc
		}
	}
	return r.value
}

// Value returns the current value without advancing.
func (r *Linear) Value() float64 { return r.value }

// IsRamping reports whether steps remain.
func (r *Linear) IsRamping() bool { return r.count > 0 }
