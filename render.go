// SPDX-License-Identifier: EPL-2.0

package audsampler

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/ik5/audsampler/formats/wav"
	"github.com/ik5/audsampler/sampler"
)

// DefaultMaxTail bounds how long a bounce keeps rendering released notes.
const DefaultMaxTail = 10 * time.Second

// Note is one entry of an offline score.
type Note struct {
	Note     int
	Velocity int
	Start    time.Duration
	Length   time.Duration
	Loop     sampler.LoopDescriptor
}

// BounceOptions tunes offline rendering. Zero values pick the defaults.
type BounceOptions struct {
	BlockSize int
	// MaxTail is how long rendering may continue after the last note-off
	// while voices are still releasing.
	MaxTail time.Duration
	Logger  *slog.Logger
}

type scoreEvent struct {
	frame int64
	on    bool
	index int
}

// Bounce renders score offline and returns interleaved stereo frames at the
// engine's rate. Note starts are sample accurate. Rendering ends once every
// voice is free after the last note-off, or after MaxTail.
//
// The engine is driven from the calling goroutine and must not be rendered
// elsewhere at the same time.
func Bounce(ctx context.Context, eng *sampler.Engine, score []Note, opts BounceOptions) ([]float32, error) {
	var out []float32
	err := bounce(ctx, eng, score, opts, func(left, right []float32) error {
		start := len(out)
		out = slices.Grow(out, 2*len(left))[:start+2*len(left)]
		interleave(out[start:], left, right)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RenderToWAV bounces score straight into a stereo PCM WAV stream of the
// given bit depth (16 or 24).
func RenderToWAV(ctx context.Context, w io.WriteSeeker, eng *sampler.Engine, score []Note, bitDepth int, opts BounceOptions) error {
	rate := int(math.Round(eng.SampleRate()))
	enc, err := wav.NewEncoder(w, rate, 2, bitDepth)
	if err != nil {
		return err
	}

	var buf []float32
	err = bounce(ctx, eng, score, opts, func(left, right []float32) error {
		if cap(buf) < 2*len(left) {
			buf = make([]float32, 2*len(left))
		}
		buf = buf[:2*len(left)]
		interleave(buf, left, right)
		return enc.Write(buf)
	})
	if err != nil {
		return err
	}
	return enc.Close()
}

func bounce(ctx context.Context, eng *sampler.Engine, score []Note, opts BounceOptions, emit func(left, right []float32) error) error {
	if opts.BlockSize <= 0 {
		opts.BlockSize = DefaultBlockSize
	}
	if opts.MaxTail <= 0 {
		opts.MaxTail = DefaultMaxTail
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	rate := eng.SampleRate()
	toFrames := func(d time.Duration) int64 {
		return int64(math.Round(d.Seconds() * rate))
	}

	events := make([]scoreEvent, 0, 2*len(score))
	for i, n := range score {
		switch {
		case n.Note < 0 || n.Note >= sampler.NoteCount:
			return fmt.Errorf("%w: note %d: number %d", ErrInvalidScore, i, n.Note)
		case n.Velocity < 0 || n.Velocity > 127:
			return fmt.Errorf("%w: note %d: velocity %d", ErrInvalidScore, i, n.Velocity)
		case n.Start < 0 || n.Length <= 0:
			return fmt.Errorf("%w: note %d: start %v length %v", ErrInvalidScore, i, n.Start, n.Length)
		}
		if err := n.Loop.Validate(); err != nil {
			return fmt.Errorf("%w: note %d: %w", ErrInvalidScore, i, err)
		}

		start := toFrames(n.Start)
		events = append(events,
			scoreEvent{frame: start, on: true, index: i},
			scoreEvent{frame: max(start+1, toFrames(n.Start+n.Length)), index: i})
	}

	// a note-off sorts before a note-on at the same frame
	slices.SortStableFunc(events, func(a, b scoreEvent) int {
		if c := cmp.Compare(a.frame, b.frame); c != 0 {
			return c
		}
		switch {
		case a.on == b.on:
			return 0
		case a.on:
			return 1
		default:
			return -1
		}
	})

	left := make([]float32, opts.BlockSize)
	right := make([]float32, opts.BlockSize)
	out := make([][]float32, 2)

	var now int64
	renderTo := func(end int64) error {
		for now < end {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("bounce: %w", err)
			}
			n := int(min(int64(len(left)), end-now))
			l, r := left[:n], right[:n]
			clear(l)
			clear(r)

			out[0], out[1] = l, r
			eng.Render(out, now)
			if err := emit(l, r); err != nil {
				return fmt.Errorf("bounce: %w", err)
			}
			now += int64(n)
		}
		return nil
	}

	for _, ev := range events {
		if err := renderTo(ev.frame); err != nil {
			return err
		}
		n := &score[ev.index]
		if ev.on {
			eng.PrepareNote(n.Note, n.Velocity, n.Loop)
			eng.Play(ev.frame)
		} else {
			eng.StopNote(n.Note, false)
		}
	}

	tailEnd := now + toFrames(opts.MaxTail)
	for now < tailEnd && eng.ActiveVoices() > 0 {
		if err := renderTo(min(now+int64(len(left)), tailEnd)); err != nil {
			return err
		}
	}

	log.Debug("bounce finished",
		"notes", len(score),
		"frames", now,
		"active", eng.ActiveVoices())
	return nil
}
