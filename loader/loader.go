// SPDX-License-Identifier: EPL-2.0

package loader

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"path"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/ik5/audsampler/audio"
	"github.com/ik5/audsampler/formats/aiff"
	"github.com/ik5/audsampler/formats/mp3"
	"github.com/ik5/audsampler/formats/vorbis"
	"github.com/ik5/audsampler/formats/wav"
	"github.com/ik5/audsampler/sampler"
)

// DefaultRegistry knows every format shipped with the module.
func DefaultRegistry() *audio.Registry {
	r := audio.NewRegistry()
	r.Register("wav", wav.Decoder{}, ".wav", ".wave")
	r.Register("aiff", aiff.Decoder{}, ".aiff", ".aif")
	r.Register("mp3", mp3.Decoder{}, ".mp3")
	r.Register("ogg", vorbis.Decoder{}, ".ogg", ".oga")
	return r
}

// Loader decodes the files of a manifest.
type Loader struct {
	FS       fs.FS
	Registry *audio.Registry
	// Concurrency caps parallel decodes; 0 means GOMAXPROCS.
	Concurrency int
	Logger      *slog.Logger
}

// New returns a loader reading from fsys with the default registry.
func New(fsys fs.FS) *Loader {
	return &Loader{FS: fsys, Registry: DefaultRegistry()}
}

func (l *Loader) log() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}

// Load decodes every sample of m concurrently and returns them in manifest
// order. The first failure cancels the rest.
func (l *Loader) Load(ctx context.Context, m *Manifest) ([]sampler.SampleData, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	limit := l.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	out := make([]sampler.SampleData, len(m.Samples))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i := range m.Samples {
		g.Go(func() error {
			d, err := l.decode(ctx, m, &m.Samples[i])
			if err != nil {
				return fmt.Errorf("sample %d (%s): %w", i, m.Samples[i].Path, err)
			}
			out[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	l.log().Info("instrument loaded",
		"name", m.Name,
		"samples", len(out))
	return out, nil
}

// LoadInto loads m and swaps it into eng as the whole sample pool. Voices
// are stopped for the swap; eng must be rendering (or idle) meanwhile.
func (l *Loader) LoadInto(ctx context.Context, eng *sampler.Engine, m *Manifest) error {
	mode, err := m.Mode()
	if err != nil {
		return err
	}
	data, err := l.Load(ctx, m)
	if err != nil {
		return err
	}
	return eng.ReplaceSamples(ctx, data, mode)
}

func (l *Loader) decode(ctx context.Context, m *Manifest, s *Sample) (sampler.SampleData, error) {
	name := s.Path
	if m.Dir != "" && !path.IsAbs(name) {
		name = path.Join(m.Dir, name)
	}

	dec, err := l.Registry.ForPath(name)
	if err != nil {
		return sampler.SampleData{}, err
	}
	f, err := l.FS.Open(name)
	if err != nil {
		return sampler.SampleData{}, err
	}
	defer f.Close()

	src, err := dec.Decode(f)
	if err != nil {
		return sampler.SampleData{}, err
	}
	defer src.Close()

	fileRate := src.SampleRate()
	var pipeline audio.Source = src
	if m.SampleRate > 0 && m.SampleRate != fileRate {
		pipeline = audio.NewResampler(pipeline, m.SampleRate)
	}
	if m.Mono || pipeline.Channels() > 2 {
		pipeline = audio.NewMonoMixer(pipeline)
	}

	clip, err := audio.Collect(ctx, pipeline)
	if err != nil {
		return sampler.SampleData{}, err
	}
	if clip.Frames() == 0 {
		return sampler.SampleData{}, ErrEmptySample
	}

	// region offsets are in file frames
	scale := float64(clip.SampleRate) / float64(fileRate)
	d := sampler.NewSampleData(clip.Samples, float64(clip.SampleRate))
	d.Name = path.Base(name)
	d.Channels = clip.Channels
	d.Frames = clip.Frames()
	d.StartPoint = int(math.Round(float64(s.Start) * scale))
	d.EndPoint = int(math.Round(float64(s.End) * scale))
	s.data(&d)

	l.log().Debug("sample decoded",
		"path", name,
		"frames", d.Frames,
		"channels", d.Channels,
		"sample_rate", clip.SampleRate,
		"file_rate", fileRate)
	return d, nil
}
