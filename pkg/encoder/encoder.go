// Copyright (c) midiwire contributors
// SPDX-License-Identifier: Apache-2.0

package encoder

import (
	"github.com/midiwire/midiwire/pkg/midi"
	"github.com/midiwire/midiwire/pkg/transport"
)

// Controller numbers used by the RPN/NRPN helpers.
const (
	ccDataEntryMSB   = 6
	ccDataEntryLSB   = 38
	ccDataIncrement  = 96
	ccDataDecrement  = 97
	ccNRPNLSB        = 98
	ccNRPNMSB        = 99
	ccRPNLSB         = 100
	ccRPNMSB         = 101
)

// noParameter marks the RPN/NRPN latches as idle.
const noParameter = 0xFFFF

// Option configures an Encoder.
type Option func(*Encoder)

// WithRunningStatus enables send-side running-status compression: the
// status byte is omitted when it repeats the previous one. Off by
// default, since not every receiver copes with compressed streams.
func WithRunningStatus() Option {
	return func(e *Encoder) { e.useRunningStatus = true }
}

// Encoder frames messages onto a transport. It maintains its own
// running-status latch and the 14-bit RPN/NRPN parameter latches. Not
// safe for concurrent use.
type Encoder struct {
	tr transport.Transport

	runningStatusTX  byte
	useRunningStatus bool

	currentRPN  uint16
	currentNRPN uint16

	// sentHook, when set, runs after every successful transmission. The
	// engine uses it to timestamp outgoing traffic for active sensing.
	sentHook func()
}

// New creates an Encoder writing to the given transport.
func New(tr transport.Transport, opts ...Option) *Encoder {
	e := &Encoder{tr: tr}
	for _, opt := range opts {
		opt(e)
	}
	e.Reset()
	return e
}

// Reset clears the running-status and parameter latches, as on begin().
func (e *Encoder) Reset() {
	e.runningStatusTX = byte(midi.InvalidType)
	e.currentRPN = noParameter
	e.currentNRPN = noParameter
}

// SetSentHook registers a function invoked after each successful send.
func (e *Encoder) SetSentHook(fn func()) { e.sentHook = fn }

func (e *Encoder) markSent() {
	if e.sentHook != nil {
		e.sentHook()
	}
}

// Send frames one channel voice message. It reports false when the
// channel is outside 1-16, the type is not a channel voice type, or the
// transport refuses the transmission. Data bytes are clamped to 7 bits.
func (e *Encoder) Send(t midi.Type, data1, data2 midi.DataByte, ch midi.Channel) bool {
	if ch < 1 || ch > 16 || !t.IsChannelMessage() {
		return false
	}
	if !e.tr.BeginTransmission(t) {
		return false
	}
	defer e.tr.EndTransmission()

	status := midi.StatusFrom(t, ch)
	if !e.useRunningStatus || status != e.runningStatusTX {
		e.runningStatusTX = status
		if e.tr.WriteByte(status) != nil {
			return false
		}
	}

	if e.tr.WriteByte(data1&0x7F) != nil {
		return false
	}
	if n, _ := t.DataLength(); n == 2 {
		if e.tr.WriteByte(data2&0x7F) != nil {
			return false
		}
	}

	e.markSent()
	return true
}

// SendNoteOn frames a Note On for the given pitch and velocity.
func (e *Encoder) SendNoteOn(note, velocity midi.DataByte, ch midi.Channel) bool {
	return e.Send(midi.NoteOn, note, velocity, ch)
}

// SendNoteOff frames a Note Off (release velocity in velocity).
func (e *Encoder) SendNoteOff(note, velocity midi.DataByte, ch midi.Channel) bool {
	return e.Send(midi.NoteOff, note, velocity, ch)
}

// SendControlChange frames a controller update.
func (e *Encoder) SendControlChange(number, value midi.DataByte, ch midi.Channel) bool {
	return e.Send(midi.ControlChange, number, value, ch)
}

// SendProgramChange frames a patch select.
func (e *Encoder) SendProgramChange(number midi.DataByte, ch midi.Channel) bool {
	return e.Send(midi.ProgramChange, number, 0, ch)
}

// SendAfterTouch frames a monophonic (channel) aftertouch.
func (e *Encoder) SendAfterTouch(pressure midi.DataByte, ch midi.Channel) bool {
	return e.Send(midi.AfterTouchChannel, pressure, 0, ch)
}

// SendPolyAfterTouch frames a polyphonic aftertouch for one key.
func (e *Encoder) SendPolyAfterTouch(note, pressure midi.DataByte, ch midi.Channel) bool {
	return e.Send(midi.AfterTouchPoly, note, pressure, ch)
}

// SendPitchBend frames a bend in the signed PitchBendMin..PitchBendMax
// range; zero is center.
func (e *Encoder) SendPitchBend(bend int, ch midi.Channel) bool {
	if bend < midi.PitchBendMin {
		bend = midi.PitchBendMin
	} else if bend > midi.PitchBendMax {
		bend = midi.PitchBendMax
	}
	value := uint16(bend - midi.PitchBendMin)
	return e.Send(midi.PitchBend, byte(value&0x7F), byte(value>>7), ch)
}

// SendSysEx frames an exclusive dump. With framed set, data already
// carries its start/end markers and is written verbatim; otherwise it
// is wrapped in 0xF0/0xF7. The payload must be 7-bit clean (see
// midi.EncodeSysEx for packing arbitrary data).
func (e *Encoder) SendSysEx(data []byte, framed bool) bool {
	if !e.tr.BeginTransmission(midi.SystemExclusive) {
		return false
	}
	defer e.tr.EndTransmission()

	if !framed {
		if e.tr.WriteByte(byte(midi.SystemExclusiveStart)) != nil {
			return false
		}
	}
	for _, b := range data {
		if e.tr.WriteByte(b) != nil {
			return false
		}
	}
	if !framed {
		if e.tr.WriteByte(byte(midi.SystemExclusiveEnd)) != nil {
			return false
		}
	}

	// Exclusive traffic invalidates any compressed status on the wire.
	e.runningStatusTX = byte(midi.InvalidType)
	e.markSent()
	return true
}

// SendTimeCodeQuarterFrame frames an MTC quarter-frame byte.
func (e *Encoder) SendTimeCodeQuarterFrame(data midi.DataByte) bool {
	return e.sendCommon(midi.TimeCodeQuarterFrame, data&0x7F)
}

// SendSongPosition frames a Song Position Pointer, in MIDI beats.
func (e *Encoder) SendSongPosition(beats uint16) bool {
	return e.sendCommon(midi.SongPosition, byte(beats&0x7F), byte(beats>>7&0x7F))
}

// SendSongSelect frames a Song Select.
func (e *Encoder) SendSongSelect(song midi.DataByte) bool {
	return e.sendCommon(midi.SongSelect, song&0x7F)
}

// SendTuneRequest asks analog synthesizers to tune their oscillators.
func (e *Encoder) SendTuneRequest() bool {
	return e.sendCommon(midi.TuneRequest)
}

func (e *Encoder) sendCommon(t midi.Type, data ...byte) bool {
	if !e.tr.BeginTransmission(t) {
		return false
	}
	defer e.tr.EndTransmission()

	if e.tr.WriteByte(byte(t)) != nil {
		return false
	}
	for _, b := range data {
		if e.tr.WriteByte(b) != nil {
			return false
		}
	}

	// System common messages cancel running status.
	e.runningStatusTX = byte(midi.InvalidType)
	e.markSent()
	return true
}

// SendRealTime frames a single-byte real-time message. Running status
// is deliberately left alone: real-time bytes may interleave anywhere
// without disturbing the surrounding stream.
func (e *Encoder) SendRealTime(t midi.Type) bool {
	if !t.IsRealTime() {
		return false
	}
	if !e.tr.BeginTransmission(t) {
		return false
	}
	defer e.tr.EndTransmission()

	if e.tr.WriteByte(byte(t)) != nil {
		return false
	}
	e.markSent()
	return true
}
