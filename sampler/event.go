// SPDX-License-Identifier: EPL-2.0

package sampler

import (
	"math"
	"slices"
)

// immediately is the schedule time of events due at the next render.
const immediately = math.MinInt64

// EventState is the lifecycle of a PlayEvent.
type EventState int

const (
	EventNone EventState = iota
	EventCreated
	EventPlaying
)

// Transition says how a committed event takes over its voice.
type Transition int

const (
	// TransitionStart starts a free voice.
	TransitionStart Transition = iota
	// TransitionRestartNew retriggers a mono voice with a different note.
	TransitionRestartNew
	// TransitionRestartLegato re-pitches a mono voice without retriggering.
	TransitionRestartLegato
	// TransitionRestartSame retriggers a poly voice on its own note.
	TransitionRestartSame
)

func (t Transition) String() string {
	switch t {
	case TransitionStart:
		return "start"
	case TransitionRestartNew:
		return "restart-new"
	case TransitionRestartLegato:
		return "restart-legato"
	case TransitionRestartSame:
		return "restart-same"
	default:
		return "unknown"
	}
}

// PlayEvent is a pending or sounding note of a voice.
type PlayEvent struct {
	Note           int
	Frequency      float64
	SampleRate     float64
	Volume         float64
	GlideSemitones float64
	Increment      float64

	Loop  LoopDescriptor
	Group *SelectionGroup

	// SampleTime is the absolute frame the event is due at, valid once
	// Scheduled is set by Play.
	SampleTime int64
	Scheduled  bool

	State      EventState
	Transition Transition
}

// Equal reports whether two events would sound the same: note, rates,
// volume, buffer identity and loop all match.
func (e *PlayEvent) Equal(o *PlayEvent) bool {
	if e.Note != o.Note || e.SampleRate != o.SampleRate ||
		e.Frequency != o.Frequency || e.Volume != o.Volume {
		return false
	}
	if (e.Group == nil) != (o.Group == nil) {
		return false
	}
	if e.Group != nil && !slices.Equal(e.Group.buffers, o.Group.buffers) {
		return false
	}
	return e.Loop.Equal(&o.Loop)
}

// due returns the offset of the event inside the chunk [start, start+n):
// 0 with the lateness for events already past, -1 when not yet due.
func (e *PlayEvent) due(start int64, n int) (offset int, late int64) {
	if e.State != EventCreated || !e.Scheduled {
		return -1, 0
	}
	switch t := e.SampleTime; {
	case t == immediately:
		return 0, 0
	case t < start:
		return 0, start - t
	case t < start+int64(n):
		return int(t - start), 0
	default:
		return -1, 0
	}
}
