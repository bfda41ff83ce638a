// SPDX-License-Identifier: EPL-2.0

// Package midievent drives a sampler from MIDI channel messages.
//
//	h := midievent.NewHandler(stream)
//	_ = h.Handle(midi.NoteOn(0, 60, 100))
//	_ = h.Handle(midi.ControlChange(0, midievent.CCSustain, 127))
//
// Note on/off, the sustain pedal (CC 64), all-sound-off (CC 120), reset-all
// (CC 121), all-notes-off (CC 123) and pitch bend are understood. Anything
// else returns ErrUnhandled so callers can log or ignore it.
package midievent
