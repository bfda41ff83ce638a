// SPDX-License-Identifier: EPL-2.0

package loader

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/ik5/audsampler/sampler"
)

const pianoYAML = `
name: piano
keymap: simple
sample_rate: 44100
mono: true
samples:
  - path: low/C3.wav
    note: 48
    max_note: 53
  - path: C4.ogg
    frequency: 261.63
    min_velocity: 64
    start: 100
    end: 2000
`

func TestParseManifest(t *testing.T) {
	t.Parallel()

	m, err := ParseManifest(strings.NewReader(pianoYAML))
	if err != nil {
		t.Fatalf("ParseManifest: %v", err)
	}

	if m.Name != "piano" || m.SampleRate != 44100 || !m.Mono || len(m.Samples) != 2 {
		t.Fatalf("manifest = %+v", m)
	}
	if mode, _ := m.Mode(); mode != sampler.KeyMapSimple {
		t.Errorf("mode = %v", mode)
	}

	low := m.Samples[0]
	if low.Path != "low/C3.wav" || *low.Note != 48 || *low.MaxNote != 53 || low.MinNote != nil {
		t.Errorf("first sample = %+v", low)
	}

	d := sampler.NewSampleData([]float32{0}, 44100)
	m.Samples[1].data(&d)
	if d.NoteNumber != sampler.Unmapped || d.NoteFrequency != 261.63 || d.MinVelocity != 64 || d.MaxVelocity != sampler.Unmapped {
		t.Errorf("mapping = %+v", d)
	}
}

func TestParseManifest_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		yaml string
		want error
	}{
		{"empty", "", ErrNoSamples},
		{"no samples", "name: x\n", ErrNoSamples},
		{"unknown key", "name: x\ncolour: red\nsamples:\n  - {path: a.wav, note: 60}\n", ErrInvalidManifest},
		{"bad keymap", "keymap: fuzzy\nsamples:\n  - {path: a.wav, note: 60}\n", ErrInvalidManifest},
		{"negative rate", "sample_rate: -1\nsamples:\n  - {path: a.wav, note: 60}\n", ErrInvalidManifest},
		{"no path", "samples:\n  - {note: 60}\n", ErrInvalidManifest},
		{"no pitch", "samples:\n  - {path: a.wav}\n", ErrInvalidManifest},
		{"note range", "samples:\n  - {path: a.wav, note: 128}\n", ErrInvalidManifest},
		{"velocity range", "samples:\n  - {path: a.wav, note: 60, max_velocity: -2}\n", ErrInvalidManifest},
		{"region", "samples:\n  - {path: a.wav, note: 60, start: 50, end: 10}\n", ErrInvalidManifest},
		{"not yaml", "samples: [\n", ErrInvalidManifest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := ParseManifest(strings.NewReader(tt.yaml))
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestReadManifest(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"instruments/piano.yaml": {Data: []byte(pianoYAML)},
	}
	m, err := ReadManifest(fsys, "instruments/piano.yaml")
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if m.Dir != "instruments" {
		t.Errorf("Dir = %q", m.Dir)
	}

	if _, err := ReadManifest(fsys, "missing.yaml"); err == nil {
		t.Error("missing manifest accepted")
	}
}
