// SPDX-License-Identifier: EPL-2.0

package audsampler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ik5/audsampler/audio"
	"github.com/ik5/audsampler/formats/wav"
	"github.com/ik5/audsampler/sampler"
)

func TestBounce_Timing(t *testing.T) {
	t.Parallel()

	eng := newEngine(t, 48000, 0.5)
	score := []Note{{Note: 60, Velocity: 127, Start: 10 * time.Millisecond, Length: 10 * time.Millisecond}}

	out, err := Bounce(context.Background(), eng, score, BounceOptions{})
	if err != nil {
		t.Fatalf("Bounce: %v", err)
	}

	// 480 silent frames, 480 sounding, then one block of release
	if len(out) != 2*(960+DefaultBlockSize) {
		t.Fatalf("len = %d, want %d", len(out), 2*(960+DefaultBlockSize))
	}
	if out[2*479] != 0 || out[2*480] <= 0 {
		t.Errorf("start not sample accurate: %v, %v", out[2*479], out[2*480])
	}
	if out[2*959] != 0.5 || out[2*959+1] != 0.5 {
		t.Errorf("held frame = %v/%v, want 0.5", out[2*959], out[2*959+1])
	}
	if eng.ActiveVoices() != 0 {
		t.Error("voice left active")
	}
}

func TestBounce_RetriggerAtNoteOff(t *testing.T) {
	t.Parallel()

	eng := newEngine(t, 48000, 0.5)
	score := []Note{
		{Note: 60, Velocity: 127, Length: 10 * time.Millisecond},
		{Note: 60, Velocity: 127, Start: 10 * time.Millisecond, Length: 20 * time.Millisecond},
	}

	out, err := Bounce(context.Background(), eng, score, BounceOptions{})
	if err != nil {
		t.Fatalf("Bounce: %v", err)
	}

	// the first note damps out over 480 frames before the second swaps in
	if out[2*959] > 0.01 {
		t.Errorf("old note not damped: %v", out[2*959])
	}
	if out[2*1439] != 0.5 {
		t.Errorf("second note silent: %v", out[2*1439])
	}
}

func TestBounce_MaxTail(t *testing.T) {
	t.Parallel()

	eng := newEngine(t, 4096, 0.5)
	eng.SetRelease(sampler.AmpEnvelope, 60)
	eng.SetLoopThruRelease(true)

	score := []Note{{
		Note:     60,
		Velocity: 100,
		Length:   10 * time.Millisecond,
		Loop:     sampler.LoopDescriptor{IsLooping: true},
	}}
	out, err := Bounce(context.Background(), eng, score, BounceOptions{MaxTail: 100 * time.Millisecond})
	if err != nil {
		t.Fatalf("Bounce: %v", err)
	}
	if len(out) != 2*(480+4800) {
		t.Errorf("len = %d, want %d", len(out), 2*(480+4800))
	}
	if eng.ActiveVoices() != 1 {
		t.Errorf("active %d, want the releasing voice", eng.ActiveVoices())
	}
}

func TestBounce_InvalidScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		note Note
	}{
		{"note too high", Note{Note: 128, Velocity: 100, Length: time.Second}},
		{"negative note", Note{Note: -1, Velocity: 100, Length: time.Second}},
		{"velocity", Note{Note: 60, Velocity: 200, Length: time.Second}},
		{"zero length", Note{Note: 60, Velocity: 100}},
		{"negative start", Note{Note: 60, Velocity: 100, Start: -time.Second, Length: time.Second}},
		{"bad loop", Note{Note: 60, Velocity: 100, Length: time.Second, Loop: sampler.LoopDescriptor{Speed: -1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			eng := newEngine(t, 1024, 0.5)
			_, err := Bounce(context.Background(), eng, []Note{tt.note}, BounceOptions{})
			if !errors.Is(err, ErrInvalidScore) {
				t.Errorf("err = %v, want ErrInvalidScore", err)
			}
		})
	}
}

func TestBounce_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	eng := newEngine(t, 1024, 0.5)
	score := []Note{{Note: 60, Velocity: 100, Start: time.Second, Length: time.Second}}
	if _, err := Bounce(ctx, eng, score, BounceOptions{}); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRenderToWAV(t *testing.T) {
	t.Parallel()

	eng := newEngine(t, 48000, 0.5)
	score := []Note{{Note: 60, Velocity: 127, Length: 20 * time.Millisecond}}

	path := filepath.Join(t.TempDir(), "bounce.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := RenderToWAV(context.Background(), f, eng, score, 16, BounceOptions{}); err != nil {
		t.Fatalf("RenderToWAV: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	f, err = os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	src, err := wav.Decoder{}.Decode(f)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	clip, err := audio.Collect(context.Background(), src)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	if clip.SampleRate != testRate || clip.Channels != 2 {
		t.Fatalf("format %d Hz x %d", clip.SampleRate, clip.Channels)
	}
	if clip.Frames() != 960+DefaultBlockSize {
		t.Errorf("frames = %d, want %d", clip.Frames(), 960+DefaultBlockSize)
	}
	if v := clip.Samples[2*500]; v < 0.49 || v > 0.51 {
		t.Errorf("held frame = %v, want about 0.5", v)
	}
}

func TestRenderToWAV_BitDepth(t *testing.T) {
	t.Parallel()

	f, err := os.Create(filepath.Join(t.TempDir(), "x.wav"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()

	eng := newEngine(t, 1024, 0.5)
	if err := RenderToWAV(context.Background(), f, eng, nil, 12, BounceOptions{}); !errors.Is(err, wav.ErrUnsupportedBitDepth) {
		t.Errorf("err = %v, want ErrUnsupportedBitDepth", err)
	}
}
