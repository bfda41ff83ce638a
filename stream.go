// SPDX-License-Identifier: EPL-2.0

package audsampler

import (
	"io"
	"math"
	"sync/atomic"

	"github.com/ik5/audsampler/audio"
	"github.com/ik5/audsampler/sampler"
)

const (
	// DefaultBlockSize is the number of frames rendered per engine call.
	DefaultBlockSize = 256
	// DefaultQueueSize is the number of events a Stream buffers between
	// two blocks.
	DefaultQueueSize = 256
)

// EventKind selects what an Event does to the engine.
type EventKind int

const (
	EventNoteOn EventKind = iota
	EventNoteOff
	EventSustain
	EventPitchBend
	EventAllNotesOff
	EventControl
)

func (k EventKind) String() string {
	switch k {
	case EventNoteOn:
		return "note-on"
	case EventNoteOff:
		return "note-off"
	case EventSustain:
		return "sustain"
	case EventPitchBend:
		return "pitch-bend"
	case EventAllNotesOff:
		return "all-notes-off"
	case EventControl:
		return "control"
	default:
		return "unknown"
	}
}

// Event is a queued engine call. Which fields are read depends on Kind:
// Note and Velocity for note events, Flag for the pedal (down) and
// all-notes-off (immediate), Value for pitch bend in semitones and Control
// for arbitrary engine access.
//
// A note-on's Group is filled in by Send from Note, Velocity and Loop when
// it is nil, so the samples are selected and mixed on the sending goroutine.
type Event struct {
	Kind     EventKind
	Note     int
	Velocity int
	Loop     sampler.LoopDescriptor
	Group    *sampler.SelectionGroup
	Flag     bool
	Value    float64
	Control  func(*sampler.Engine)
}

// StreamOptions tunes a Stream. Zero values pick the defaults.
type StreamOptions struct {
	BlockSize int
	QueueSize int
}

// Stream plays an engine as an interleaved stereo audio.Source.
//
// Events may be sent from any goroutine. They are queued and applied by
// ReadSamples on the reading goroutine before the next block, which keeps
// every engine call on one goroutine. A note-on's samples are selected by
// the sender, so applying it does not allocate. Notes start at the first
// frame of the block following their arrival.
type Stream struct {
	eng    *sampler.Engine
	events chan Event

	left  []float32
	right []float32
	out   [][]float32

	now    atomic.Int64
	closed atomic.Bool
}

var _ audio.Source = (*Stream)(nil)

// NewStream wraps eng. The engine must not be driven directly while the
// stream is being read, except through the sample barrier.
func NewStream(eng *sampler.Engine, opts StreamOptions) *Stream {
	if opts.BlockSize <= 0 {
		opts.BlockSize = DefaultBlockSize
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}

	return &Stream{
		eng:    eng,
		events: make(chan Event, opts.QueueSize),
		left:   make([]float32, opts.BlockSize),
		right:  make([]float32, opts.BlockSize),
		out:    make([][]float32, 2),
	}
}

func (s *Stream) SampleRate() int { return int(math.Round(s.eng.SampleRate())) }
func (s *Stream) Channels() int   { return 2 }
func (s *Stream) BufSize() int    { return 2 * len(s.left) }

// Engine returns the wrapped engine.
func (s *Stream) Engine() *sampler.Engine { return s.eng }

// Now returns the absolute frame the next block starts at.
func (s *Stream) Now() int64 { return s.now.Load() }

// Close ends the stream: later reads return io.EOF and sends fail.
// Queued events are discarded.
func (s *Stream) Close() error {
	s.closed.Store(true)
	return nil
}

// Send queues ev without blocking.
func (s *Stream) Send(ev Event) error {
	if s.closed.Load() {
		return ErrStreamClosed
	}
	if ev.Kind == EventNoteOn && ev.Group == nil {
		ev.Group = s.eng.Select(ev.Note, ev.Velocity, ev.Loop)
	}
	select {
	case s.events <- ev:
		return nil
	default:
		return ErrQueueFull
	}
}

func (s *Stream) NoteOn(note, velocity int) error {
	return s.Send(Event{Kind: EventNoteOn, Note: note, Velocity: velocity})
}

// NoteOnLoop starts a note with playback modifiers.
func (s *Stream) NoteOnLoop(note, velocity int, loop sampler.LoopDescriptor) error {
	return s.Send(Event{Kind: EventNoteOn, Note: note, Velocity: velocity, Loop: loop})
}

func (s *Stream) NoteOff(note int) error {
	return s.Send(Event{Kind: EventNoteOff, Note: note})
}

func (s *Stream) SustainPedal(down bool) error {
	return s.Send(Event{Kind: EventSustain, Flag: down})
}

// PitchBend sets the engine-wide pitch offset in semitones.
func (s *Stream) PitchBend(semitones float64) error {
	return s.Send(Event{Kind: EventPitchBend, Value: semitones})
}

func (s *Stream) AllNotesOff(immediate bool) error {
	return s.Send(Event{Kind: EventAllNotesOff, Flag: immediate})
}

// Do runs fn on the reading goroutine before the next block. Use it for
// parameter changes.
func (s *Stream) Do(fn func(*sampler.Engine)) error {
	if fn == nil {
		return nil
	}
	return s.Send(Event{Kind: EventControl, Control: fn})
}

// ReadSamples renders len(dst)/2 stereo frames into dst. It never returns
// a short read before Close.
func (s *Stream) ReadSamples(dst []float32) (int, error) {
	if s.closed.Load() {
		return 0, io.EOF
	}
	if len(dst)%2 != 0 {
		return 0, audio.ErrInvalidDstSize
	}

	written := 0
	for written < len(dst) {
		s.drain()

		now := s.now.Load()
		n := min(len(s.left), (len(dst)-written)/2)
		left, right := s.left[:n], s.right[:n]
		clear(left)
		clear(right)

		s.out[0], s.out[1] = left, right
		s.eng.Render(s.out, now)

		interleave(dst[written:written+2*n], left, right)
		written += 2 * n
		s.now.Store(now + int64(n))
	}
	return written, nil
}

func (s *Stream) drain() {
	for {
		select {
		case ev := <-s.events:
			s.apply(&ev)
		default:
			return
		}
	}
}

func (s *Stream) apply(ev *Event) {
	switch ev.Kind {
	case EventNoteOn:
		s.eng.PrepareNoteGroup(ev.Note, ev.Velocity, ev.Group)
		s.eng.Play(s.now.Load())
	case EventNoteOff:
		s.eng.StopNote(ev.Note, false)
	case EventSustain:
		s.eng.SustainPedal(ev.Flag)
	case EventPitchBend:
		s.eng.SetPitchOffset(ev.Value)
	case EventAllNotesOff:
		s.eng.AllNotesOff(ev.Flag)
	case EventControl:
		if ev.Control != nil {
			ev.Control(s.eng)
		}
	}
}

func interleave(dst, left, right []float32) {
	for i := range left {
		dst[2*i] = left[i]
		dst[2*i+1] = right[i]
	}
}
