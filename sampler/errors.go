// SPDX-License-Identifier: EPL-2.0

package sampler

import "errors"

var (
	ErrInvalidSampleRate = errors.New("sample rate must be positive")
	ErrInvalidPolyphony  = errors.New("polyphony out of range")
	ErrInvalidNote       = errors.New("note number out of range")
	ErrInvalidSampleData = errors.New("invalid sample data")
	ErrInvalidLoop       = errors.New("invalid loop descriptor")
	ErrStopTimeout       = errors.New("voices did not stop before the deadline")
)
