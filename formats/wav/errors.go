// SPDX-License-Identifier: EPL-2.0

package wav

import "errors"

var (
	ErrNotWavFile           = errors.New("not a WAV file")
	ErrUnsupportedWavLayout = errors.New("unsupported WAV layout")
	ErrUnsupportedBitDepth  = errors.New("unsupported PCM bit depth")
	ErrNotPCM               = errors.New("only integer PCM WAV is supported")
	ErrEncoderClosed        = errors.New("encoder already closed")
)
