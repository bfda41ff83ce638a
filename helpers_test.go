// SPDX-License-Identifier: EPL-2.0

package audsampler

import (
	"io"
	"log/slog"
	"testing"

	"github.com/ik5/audsampler/internal/audiotest"
	"github.com/ik5/audsampler/sampler"
)

const testRate = 48000

// newEngine returns an engine with one constant sample covering every note.
func newEngine(t testing.TB, frames int, value float32) *sampler.Engine {
	t.Helper()

	cfg := sampler.DefaultConfig(testRate)
	cfg.Polyphony = 8
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	eng, err := sampler.New(cfg)
	if err != nil {
		t.Fatalf("sampler.New: %v", err)
	}

	d := sampler.NewSampleData(audiotest.Constant(frames, value), testRate)
	d.NoteNumber = 60
	d.MinNote = 0
	d.MaxNote = 127
	if err := eng.LoadSampleData(d); err != nil {
		t.Fatalf("LoadSampleData: %v", err)
	}
	eng.BuildKeyMap()
	return eng
}
