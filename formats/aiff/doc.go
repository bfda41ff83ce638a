// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF sample files using github.com/go-audio/aiff.
//
// Integer PCM at 8, 16, 24 and 32 bits is supported with any channel count
// and sample rate:
//
//	src, err := aiff.Decoder{}.Decode(file)
//	if errors.Is(err, aiff.ErrNotAiffFile) {
//	    // try another decoder
//	}
//
// go-audio needs an io.ReadSeeker. Plain readers are read into memory
// before decoding.
package aiff
