// SPDX-License-Identifier: EPL-2.0

// Package audsampler plays sampled instruments.
//
// The polyphonic engine lives in the sampler subpackage. This package wraps
// it for the two common ways of getting sound out of it: live streaming and
// offline rendering.
//
// # Live playback
//
// Stream turns an engine into an audio.Source producing interleaved stereo
// float32 frames. Note events are sent from any goroutine and applied by the
// goroutine reading the stream:
//
//	eng, _ := sampler.New(sampler.DefaultConfig(48000))
//	// load samples, build the key map ...
//
//	s := audsampler.NewStream(eng, audsampler.StreamOptions{})
//	_ = s.NoteOn(60, 100)
//
//	buf := make([]float32, 1024)
//	n, _ := s.ReadSamples(buf)
//
// # Offline rendering
//
// Bounce renders a score of timed notes with sample-accurate starts and
// keeps going until the released voices have died away:
//
//	score := []audsampler.Note{
//		{Note: 60, Velocity: 100, Length: 500 * time.Millisecond},
//		{Note: 64, Velocity: 90, Start: 250 * time.Millisecond, Length: 250 * time.Millisecond},
//	}
//	frames, err := audsampler.Bounce(ctx, eng, score, audsampler.BounceOptions{})
//
// RenderToWAV streams the same output into a PCM WAV file through
// formats/wav.
//
// # Loading instruments
//
// The loader subpackage decodes WAV, AIFF, MP3 and Ogg Vorbis files listed
// in a YAML manifest and installs them into an engine. The midievent
// subpackage maps MIDI messages onto a Stream.
package audsampler
