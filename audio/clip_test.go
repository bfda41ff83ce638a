// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/ik5/audsampler/internal/audiotest"
)

func TestCollect(t *testing.T) {
	t.Parallel()

	src := audiotest.NewMockSource(22050, 2, 10000, func(i, ch int) float32 {
		return float32(i*2+ch) / 20000
	})

	clip, err := Collect(context.Background(), src)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if clip.SampleRate != 22050 || clip.Channels != 2 {
		t.Errorf("Collect() format = %d Hz / %d ch", clip.SampleRate, clip.Channels)
	}
	if clip.Frames() != 10000 {
		t.Fatalf("Frames() = %d, want 10000", clip.Frames())
	}
	for i, v := range clip.Samples {
		if want := float32(i) / 20000; v != want {
			t.Fatalf("Samples[%d] = %v, want %v", i, v, want)
		}
	}
}

func TestCollect_Errors(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")

	tests := []struct {
		name    string
		ctx     func() context.Context
		src     Source
		wantErr error
	}{
		{
			name:    "source error",
			ctx:     context.Background,
			src:     audiotest.NewConstantSource(8000, 1, 100, 0.1).FailAfter(50, boom),
			wantErr: boom,
		},
		{
			name: "cancelled context",
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			},
			src:     audiotest.NewConstantSource(8000, 1, 100, 0.1),
			wantErr: context.Canceled,
		},
		{
			name:    "zero rate",
			ctx:     context.Background,
			src:     audiotest.NewConstantSource(0, 1, 100, 0.1),
			wantErr: ErrInvalidRate,
		},
		{
			name:    "zero channels",
			ctx:     context.Background,
			src:     audiotest.NewConstantSource(8000, 0, 100, 0.1),
			wantErr: ErrInvalidChannels,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := Collect(tt.ctx(), tt.src); !errors.Is(err, tt.wantErr) {
				t.Errorf("Collect() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestClipSource(t *testing.T) {
	t.Parallel()

	clip := &Clip{Samples: []float32{1, 2, 3, 4, 5, 6}, SampleRate: 100, Channels: 2}
	src := NewClipSource(clip)

	if _, err := src.ReadSamples(make([]float32, 3)); !errors.Is(err, ErrInvalidDstSize) {
		t.Errorf("odd dst error = %v, want ErrInvalidDstSize", err)
	}

	buf := make([]float32, 4)
	n, err := src.ReadSamples(buf)
	if n != 4 || err != nil {
		t.Fatalf("first read = %d, %v", n, err)
	}
	n, err = src.ReadSamples(buf)
	if n != 2 || err != nil || buf[0] != 5 || buf[1] != 6 {
		t.Fatalf("second read = %d, %v, %v", n, err, buf[:n])
	}
	if n, err = src.ReadSamples(buf); n != 0 || !errors.Is(err, io.EOF) {
		t.Errorf("final read = %d, %v, want 0, EOF", n, err)
	}
}
