// SPDX-License-Identifier: EPL-2.0

package loader

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"

	"gopkg.in/yaml.v3"

	"github.com/ik5/audsampler/sampler"
)

// Manifest describes one instrument: the files that make it up and how
// they are spread over the keyboard.
type Manifest struct {
	Name string `yaml:"name"`
	// KeyMap is "ranges" (default) or "simple".
	KeyMap string `yaml:"keymap"`
	// SampleRate resamples every file to this rate; 0 keeps each file's own.
	SampleRate int  `yaml:"sample_rate"`
	Mono       bool `yaml:"mono"`

	Samples []Sample `yaml:"samples"`

	// Dir is the directory sample paths are relative to.
	Dir string `yaml:"-"`
}

// Sample is one file of a Manifest. Unset mapping fields leave the buffer
// unmapped in that respect; Frequency defaults to the pitch of Note.
type Sample struct {
	Path        string  `yaml:"path"`
	Note        *int    `yaml:"note"`
	Frequency   float64 `yaml:"frequency"`
	MinNote     *int    `yaml:"min_note"`
	MaxNote     *int    `yaml:"max_note"`
	MinVelocity *int    `yaml:"min_velocity"`
	MaxVelocity *int    `yaml:"max_velocity"`
	// Start and End are frame offsets in the file; End 0 means the last frame.
	Start int `yaml:"start"`
	End   int `yaml:"end"`
}

// ParseManifest decodes and validates a YAML manifest. Unknown keys are
// rejected.
func ParseManifest(r io.Reader) (*Manifest, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoSamples
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// ReadManifest parses name from fsys. Sample paths resolve against the
// manifest's directory.
func ReadManifest(fsys fs.FS, name string) (*Manifest, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	defer f.Close()

	m, err := ParseManifest(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	m.Dir = path.Dir(name)
	return m, nil
}

// Mode returns the key map kind the manifest asks for.
func (m *Manifest) Mode() (sampler.KeyMapMode, error) {
	switch m.KeyMap {
	case "", "ranges":
		return sampler.KeyMapRanges, nil
	case "simple":
		return sampler.KeyMapSimple, nil
	default:
		return 0, fmt.Errorf("%w: keymap %q", ErrInvalidManifest, m.KeyMap)
	}
}

func (m *Manifest) Validate() error {
	if len(m.Samples) == 0 {
		return ErrNoSamples
	}
	if _, err := m.Mode(); err != nil {
		return err
	}
	if m.SampleRate < 0 {
		return fmt.Errorf("%w: sample_rate %d", ErrInvalidManifest, m.SampleRate)
	}

	for i := range m.Samples {
		if err := m.Samples[i].validate(); err != nil {
			return fmt.Errorf("%w: sample %d: %w", ErrInvalidManifest, i, err)
		}
	}
	return nil
}

func (s *Sample) validate() error {
	if s.Path == "" {
		return errors.New("missing path")
	}
	for _, f := range []struct {
		name string
		v    *int
	}{
		{"note", s.Note},
		{"min_note", s.MinNote},
		{"max_note", s.MaxNote},
		{"min_velocity", s.MinVelocity},
		{"max_velocity", s.MaxVelocity},
	} {
		if f.v != nil && (*f.v < 0 || *f.v > 127) {
			return fmt.Errorf("%s %d out of range", f.name, *f.v)
		}
	}
	if s.Note == nil && s.Frequency <= 0 {
		return errors.New("needs a note or a frequency")
	}
	if s.Frequency < 0 {
		return fmt.Errorf("frequency %v", s.Frequency)
	}
	if s.Start < 0 || s.End < 0 || (s.End > 0 && s.End <= s.Start) {
		return fmt.Errorf("region %d-%d", s.Start, s.End)
	}
	return nil
}

// data fills the mapping fields of a SampleData from the entry.
func (s *Sample) data(d *sampler.SampleData) {
	set := func(dst *int, v *int) {
		if v != nil {
			*dst = *v
		}
	}
	set(&d.NoteNumber, s.Note)
	set(&d.MinNote, s.MinNote)
	set(&d.MaxNote, s.MaxNote)
	set(&d.MinVelocity, s.MinVelocity)
	set(&d.MaxVelocity, s.MaxVelocity)
	d.NoteFrequency = s.Frequency
}
