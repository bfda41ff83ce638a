// SPDX-License-Identifier: EPL-2.0

// Package loader reads instrument manifests and decodes their sample files
// into sampler.SampleData.
//
// A manifest is YAML:
//
//	name: piano
//	keymap: ranges      # or "simple": nearest pitch wins
//	sample_rate: 48000  # optional, resample every file
//	mono: false
//	samples:
//	  - path: C3.wav
//	    note: 48
//	    min_note: 0
//	    max_note: 53
//	  - path: C4-soft.wav
//	    note: 60
//	    min_note: 54
//	    max_note: 127
//	    max_velocity: 63
//	  - path: C4-hard.ogg
//	    note: 60
//	    min_note: 54
//	    min_velocity: 64
//
// Files are decoded in parallel through an audio.Registry (WAV, AIFF, MP3
// and Ogg Vorbis by default), resampled and folded to mono as asked, and
// collected into memory. LoadInto installs the result into a running engine
// with Engine.ReplaceSamples.
package loader
