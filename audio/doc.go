// SPDX-License-Identifier: EPL-2.0

// Package audio provides the streaming PCM plumbing used to get sample
// material into the sampler.
//
// # Source Interface
//
// Every decoder and processor implements Source:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// Samples are interleaved float32 values in [-1, 1]. ReadSamples returns
// the number of values written; io.EOF marks the end of the stream.
//
// # Processing
//
// Resampler converts between sample rates with Catmull-Rom interpolation
// and MonoMixer folds any channel layout down to mono:
//
//	src, _ := wav.Decoder{}.Decode(f)
//	mono := audio.NewMonoMixer(audio.NewResampler(src, 48000))
//	clip, err := audio.Collect(ctx, mono)
//
// Collect drains a Source into a Clip, which is the form the loader hands
// to the sampler engine.
//
// # Format Registry
//
// The registry maps format names and file extensions to decoders:
//
//	registry := audio.NewRegistry()
//	registry.Register("wav", wav.Decoder{}, ".wav", ".wave")
//	dec, err := registry.ForPath("piano/C4.wav")
//
// Unknown extensions produce an *UnknownFormatError wrapping
// ErrUnknownFormat.
package audio
