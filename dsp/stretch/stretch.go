// SPDX-License-Identifier: EPL-2.0

package stretch

// Stretcher changes the duration and pitch of a stereo stream independently.
//
// Input is pushed with Process and output pulled with Retrieve. Both sides
// are bounded by internal buffers sized at construction, so neither call
// allocates. A caller feeds input until Available reports output, drains it,
// and repeats. Passing final on the last input lets the engine flush its
// tail.
type Stretcher interface {
	// SetTimeRatio sets output duration / input duration.
	SetTimeRatio(ratio float64)
	// SetPitchScale sets the frequency multiplier applied to the content.
	SetPitchScale(scale float64)
	// SamplesRequired is the number of input frames needed before more
	// output can be produced.
	SamplesRequired() int
	// Process accepts up to len(left) frames and returns how many were taken.
	Process(left, right []float32, final bool) int
	// Available is the number of frames ready for Retrieve.
	Available() int
	// Retrieve copies ready frames into left and right and returns the count.
	Retrieve(left, right []float32) int
	// Done reports that final input was given and every frame retrieved.
	Done() bool
	// Reset discards all buffered state.
	Reset()
}

// IsIdentity reports whether the given settings leave audio unchanged.
func IsIdentity(timeRatio, pitchScale float64) bool {
	return timeRatio == 1 && pitchScale == 1
}
