// SPDX-License-Identifier: EPL-2.0

package audiotest

import "math"

// Ramp returns n samples rising linearly from 1/n to 1.
func Ramp(n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(i+1) / float32(n)
	}
	return out
}

// Sine returns n samples of a unit sine with the given period in samples.
func Sine(n int, period float64) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(math.Sin(2 * math.Pi * float64(i) / period))
	}
	return out
}

// Constant returns n copies of v.
func Constant(n int, v float32) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// Approx reports whether a and b differ by at most tol.
func Approx(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// Peak returns the largest absolute value in buf.
func Peak(buf []float32) float32 {
	var p float32
	for _, v := range buf {
		if v < 0 {
			v = -v
		}
		p = max(p, v)
	}
	return p
}

// MaxStep returns the largest absolute difference between adjacent samples.
func MaxStep(buf []float32) float32 {
	var p float32
	for i := 1; i < len(buf); i++ {
		d := buf[i] - buf[i-1]
		if d < 0 {
			d = -d
		}
		p = max(p, d)
	}
	return p
}
