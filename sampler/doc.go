// SPDX-License-Identifier: EPL-2.0

// Package sampler is a polyphonic sample-playback engine.
//
// Decoded recordings are loaded into an Engine as SampleData and spread over
// the 128 MIDI notes by a key map, either by declared note ranges
// (BuildKeyMap) or by nearest pitch (BuildSimpleKeyMap). Each note-on claims
// one voice from a fixed pool:
//
//	eng, _ := sampler.New(sampler.DefaultConfig(48000))
//	_ = eng.LoadSampleData(data)
//	eng.BuildKeyMap()
//
//	eng.PrepareNote(60, 100, sampler.LoopDescriptor{})
//	eng.Play(0)
//
//	out := [][]float32{make([]float32, 256), make([]float32, 256)}
//	eng.Render(out, 0)
//
// PrepareNote and Play are split so a host can stamp the exact frame a note
// starts at; Render splits its block at that frame.
//
// # Voices
//
// Every voice reads its source through an Oscillator and a SelectionGroup,
// shapes it with amplitude, filter and pitch envelopes, and optionally runs
// it through a resonant low-pass pair. Retriggering a sounding voice damps
// the old source to silence before the new one is swapped in, so restarts
// do not click. In monophonic mode a single voice is reused; with legato it
// glides to the new pitch without retriggering.
//
// Control values (envelopes, LFOs, glide, filter cutoff) are updated every
// ChunkSize frames.
//
// # Concurrency
//
// Render, Play and note events must be serialized by the caller. The sample
// pool may be replaced from another goroutine inside the StopAllVoices /
// RestartVoices barrier, or in one step with ReplaceSamples. Render does not
// allocate.
//
// Building with the samplerdebug tag enables invariant checks that panic
// on violation.
package sampler
