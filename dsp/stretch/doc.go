// SPDX-License-Identifier: EPL-2.0

// Package stretch provides the time-stretch / pitch-shift engine consumed by
// the sampler's selection groups.
//
// The Stretcher interface is push/pull: feed stereo input with Process,
// drain stereo output with Retrieve. OLA is the bundled implementation, a
// Hann-windowed overlap-add with a resampling stage for pitch. It keeps the
// signal aligned, so output frame n corresponds to input frame
// n / timeRatio, and it never allocates after NewOLA.
//
//	st := stretch.NewOLA(stretch.DefaultWindow)
//	st.SetTimeRatio(2)     // twice as long
//	st.SetPitchScale(1.5)  // a fifth up
//
// Overlap-add is transparent at identity settings and for periodic material
// whose period divides the analysis/synthesis hop difference. Everything
// else picks up the usual comb and flutter artifacts of the method.
package stretch
