// SPDX-License-Identifier: EPL-2.0

// Package wav reads and writes integer PCM WAV files on top of
// github.com/go-audio/wav.
//
// # Decoding
//
//	src, err := wav.Decoder{}.Decode(file)
//	buf := make([]float32, 4096)
//	n, err := src.ReadSamples(buf)
//
// 8, 16, 24 and 32 bit integer PCM is accepted, with any channel count and
// sample rate. Samples come back as float32 in [-1, 1]. Readers that cannot
// seek are buffered into memory first.
//
// # Encoding
//
// Encoder accepts interleaved float32 frames and writes 16 or 24 bit PCM.
// go-audio patches the RIFF sizes on Close, so the destination must be an
// io.WriteSeeker such as *os.File:
//
//	enc, err := wav.NewEncoder(f, 48000, 2, 16)
//	err = enc.Write(block)
//	err = enc.Close()
//
// Write is a one-shot helper for buffers that are already complete.
package wav
