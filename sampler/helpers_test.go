// SPDX-License-Identifier: EPL-2.0

package sampler

import (
	"io"
	"log/slog"
	"testing"
)

const testRate = 48000

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(t testing.TB, configure func(*Config)) *Engine {
	t.Helper()

	cfg := DefaultConfig(testRate)
	cfg.Polyphony = 4
	cfg.Logger = quietLogger()
	if configure != nil {
		configure(&cfg)
	}
	e, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

// mapped returns mono data pitched at note covering [lo, hi].
func mapped(data []float32, note, lo, hi int) SampleData {
	d := NewSampleData(data, testRate)
	d.NoteNumber = note
	d.MinNote = lo
	d.MaxNote = hi
	return d
}

func load(t testing.TB, e *Engine, data ...SampleData) {
	t.Helper()
	for _, d := range data {
		if err := e.LoadSampleData(d); err != nil {
			t.Fatalf("LoadSampleData: %v", err)
		}
	}
	e.BuildKeyMap()
}

func render(e *Engine, n int, now int64) (left, right []float32) {
	left = make([]float32, n)
	right = make([]float32, n)
	e.Render([][]float32{left, right}, now)
	return left, right
}

func noteOn(e *Engine, note, velocity int, at int64) {
	e.PrepareNote(note, velocity, LoopDescriptor{})
	e.Play(at)
}
