// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
)

// fakeMP3 serves a fixed PCM byte stream in chunks of at most step bytes.
type fakeMP3 struct {
	data []byte
	step int
	err  error
}

func (f *fakeMP3) SampleRate() int { return 44100 }
func (f *fakeMP3) Length() int64   { return int64(len(f.data)) }

func (f *fakeMP3) Read(p []byte) (int, error) {
	if len(f.data) == 0 {
		if f.err != nil {
			return 0, f.err
		}
		return 0, io.EOF
	}
	n := min(len(p), f.step, len(f.data))
	copy(p, f.data[:n])
	f.data = f.data[n:]
	return n, nil
}

func pcm(values ...int16) []byte {
	out := make([]byte, 2*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(v))
	}
	return out
}

func TestSource_ReadSamples(t *testing.T) {
	t.Parallel()

	dec := &fakeMP3{data: pcm(16384, -16384, 0, 32767), step: 3}
	s := &source{dec: dec}

	if s.Channels() != 2 || s.SampleRate() != 44100 {
		t.Fatalf("format = %d/%d", s.SampleRate(), s.Channels())
	}
	if s.Frames() != 2 {
		t.Errorf("Frames() = %d, want 2", s.Frames())
	}

	var got []float32
	dst := make([]float32, 4)
	for range 10 {
		n, err := s.ReadSamples(dst)
		got = append(got, dst[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("ReadSamples() error = %v", err)
		}
	}

	want := []float32{0.5, -0.5, 0, 32767.0 / 32768}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSource_Error(t *testing.T) {
	t.Parallel()

	boom := errors.New("corrupt frame")
	s := &source{dec: &fakeMP3{err: boom, step: 8}}
	if _, err := s.ReadSamples(make([]float32, 4)); !errors.Is(err, boom) {
		t.Errorf("ReadSamples() error = %v, want %v", err, boom)
	}
}

func TestDecode_Invalid(t *testing.T) {
	t.Parallel()

	if _, err := (Decoder{}).Decode(bytes.NewReader([]byte("not an mp3"))); err == nil {
		t.Error("Decode() accepted garbage input")
	}
}
