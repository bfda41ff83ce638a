// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDstSize  = errors.New("dst size must be multiple of channels")
	ErrInvalidRate     = errors.New("sample rate must be positive")
	ErrInvalidChannels = errors.New("channel count must be positive")
	ErrUnknownFormat   = errors.New("unknown audio format")
)

// UnknownFormatError reports a path whose extension has no decoder.
type UnknownFormatError struct {
	Path string
}

func (e *UnknownFormatError) Error() string {
	return fmt.Sprintf("%s: %s", ErrUnknownFormat, e.Path)
}

func (e *UnknownFormatError) Unwrap() error { return ErrUnknownFormat }
