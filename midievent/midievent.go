// SPDX-License-Identifier: EPL-2.0

package midievent

import (
	"errors"

	"gitlab.com/gomidi/midi/v2"
)

// Controller numbers handled by Handler.
const (
	CCSustain     = 64
	CCAllSoundOff = 120
	CCResetAll    = 121
	CCAllNotesOff = 123
)

// DefaultBendRange is the bend excursion in semitones.
const DefaultBendRange = 2.0

// ErrUnhandled is returned for messages Handler does not act on.
var ErrUnhandled = errors.New("unhandled MIDI message")

// Target receives decoded MIDI actions. audsampler.Stream implements it.
type Target interface {
	NoteOn(note, velocity int) error
	NoteOff(note int) error
	SustainPedal(down bool) error
	PitchBend(semitones float64) error
	AllNotesOff(immediate bool) error
}

// Handler maps channel voice messages onto a Target.
type Handler struct {
	Target Target
	// Channel filters messages; negative accepts every channel.
	Channel int
	// BendRange is the pitch-bend excursion in semitones at full deflection.
	BendRange float64
}

// NewHandler returns an omni handler with a two-semitone bend range.
func NewHandler(t Target) *Handler {
	return &Handler{Target: t, Channel: -1, BendRange: DefaultBendRange}
}

// Handle applies msg. A note-on with velocity 0 is a note-off. Sustain is
// down at controller values of 64 and above. All-sound-off stops voices at
// once; all-notes-off releases them.
func (h *Handler) Handle(msg midi.Message) error {
	var ch, key, vel, cc, val uint8
	var rel int16
	var abs uint16

	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
		if !h.accepts(ch) {
			return nil
		}
		return h.Target.NoteOn(int(key), int(vel))

	case msg.GetNoteEnd(&ch, &key):
		if !h.accepts(ch) {
			return nil
		}
		return h.Target.NoteOff(int(key))

	case msg.GetControlChange(&ch, &cc, &val):
		if !h.accepts(ch) {
			return nil
		}
		switch cc {
		case CCSustain:
			return h.Target.SustainPedal(val >= 64)
		case CCAllSoundOff:
			return h.Target.AllNotesOff(true)
		case CCResetAll:
			if err := h.Target.SustainPedal(false); err != nil {
				return err
			}
			return h.Target.PitchBend(0)
		case CCAllNotesOff:
			return h.Target.AllNotesOff(false)
		}
		return ErrUnhandled

	case msg.GetPitchBend(&ch, &rel, &abs):
		if !h.accepts(ch) {
			return nil
		}
		return h.Target.PitchBend(BendSemitones(rel, h.BendRange))
	}
	return ErrUnhandled
}

func (h *Handler) accepts(ch uint8) bool {
	return h.Channel < 0 || int(ch) == h.Channel
}

// BendSemitones converts a relative 14-bit bend value (-8192..8191) to
// semitones for the given range.
func BendSemitones(rel int16, bendRange float64) float64 {
	if rel >= 0 {
		return float64(rel) / 8191 * bendRange
	}
	return float64(rel) / 8192 * bendRange
}
