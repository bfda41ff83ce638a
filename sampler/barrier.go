// SPDX-License-Identifier: EPL-2.0

package sampler

import (
	"context"
	"fmt"
	"runtime"
)

// StopAllVoices raises the stop flag and waits until the render goroutine
// has freed every voice and no PrepareNote is in flight. While the flag is
// up no note can start. It returns ErrStopTimeout, leaving the flag raised,
// if ctx ends first; call RestartVoices either way.
//
// Render must keep running for sounding voices to be freed. Offline
// callers that are not rendering free them first with AllNotesOff(true).
func (e *Engine) StopAllVoices(ctx context.Context) error {
	e.stopping.Store(true)
	e.log.Debug("stopping all voices", "active", e.bound.Load())

	for e.bound.Load() > 0 || e.preparing.Load() > 0 {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %d still active: %w", ErrStopTimeout, e.bound.Load(), ctx.Err())
		default:
		}
		runtime.Gosched()
	}
	return nil
}

// RestartVoices lowers the stop flag raised by StopAllVoices.
func (e *Engine) RestartVoices() {
	e.stopping.Store(false)
	e.log.Debug("voices restarted")
}

// Stopping reports whether the stop flag is raised.
func (e *Engine) Stopping() bool { return e.stopping.Load() }

// ReplaceSamples swaps the whole sample pool inside the stop barrier: it
// stops every voice, unloads, loads data, builds the key map of the given
// mode and lets notes start again. On a load error the pool is left empty.
func (e *Engine) ReplaceSamples(ctx context.Context, data []SampleData, mode KeyMapMode) error {
	defer e.RestartVoices()
	if err := e.StopAllVoices(ctx); err != nil {
		return err
	}

	e.UnloadAllSamples()
	for i := range data {
		if err := e.LoadSampleData(data[i]); err != nil {
			e.UnloadAllSamples()
			return fmt.Errorf("sample %d: %w", i, err)
		}
	}
	e.BuildKeyMapMode(mode)
	return nil
}
