// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis files with github.com/jfreymuth/oggvorbis.
//
// The reader already yields interleaved float32 values, so the source is a
// thin pass-through that keeps reads aligned to whole frames:
//
//	src, err := vorbis.Decoder{}.Decode(file)
//	clip, err := audio.Collect(ctx, src)
package vorbis
