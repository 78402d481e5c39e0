// Copyright (c) midiwire contributors
// SPDX-License-Identifier: Apache-2.0

package handler

import "github.com/midiwire/midiwire/pkg/midi"

// Callbacks holds the per-category handler slots. The zero value is a
// valid dispatcher that drops everything.
//
// Channel message slots receive the 1-16 channel and the raw data
// bytes, except PitchBend which gets the decoded signed bend. The
// SystemExclusive slot receives the captured byte sequence including
// framing markers; the slice is only valid for the duration of the
// call.
type Callbacks struct {
	NoteOff           func(ch midi.Channel, note, velocity midi.DataByte)
	NoteOn            func(ch midi.Channel, note, velocity midi.DataByte)
	AfterTouchPoly    func(ch midi.Channel, note, pressure midi.DataByte)
	ControlChange     func(ch midi.Channel, number, value midi.DataByte)
	ProgramChange     func(ch midi.Channel, number midi.DataByte)
	AfterTouchChannel func(ch midi.Channel, pressure midi.DataByte)
	PitchBend         func(ch midi.Channel, bend int)

	SystemExclusive      func(data []byte)
	TimeCodeQuarterFrame func(data midi.DataByte)
	SongPosition         func(beats uint16)
	SongSelect           func(song midi.DataByte)
	TuneRequest          func()

	Clock         func()
	Tick          func()
	Start         func()
	Continue      func()
	Stop          func()
	ActiveSensing func()
	SystemReset   func()

	// Message fires for every dispatched message, before the
	// category-specific slot.
	Message func(msg midi.Message)

	// Error receives the accumulated error bits whenever they change.
	Error func(errs midi.Errors)
}

// Dispatch invokes the slot registered for the message's category.
func (c *Callbacks) Dispatch(msg midi.Message) {
	if c.Message != nil {
		c.Message(msg)
	}

	switch msg.Type {
	case midi.NoteOff:
		if c.NoteOff != nil {
			c.NoteOff(msg.Channel, msg.Data1, msg.Data2)
		}
	case midi.NoteOn:
		if c.NoteOn != nil {
			c.NoteOn(msg.Channel, msg.Data1, msg.Data2)
		}
	case midi.AfterTouchPoly:
		if c.AfterTouchPoly != nil {
			c.AfterTouchPoly(msg.Channel, msg.Data1, msg.Data2)
		}
	case midi.ControlChange:
		if c.ControlChange != nil {
			c.ControlChange(msg.Channel, msg.Data1, msg.Data2)
		}
	case midi.ProgramChange:
		if c.ProgramChange != nil {
			c.ProgramChange(msg.Channel, msg.Data1)
		}
	case midi.AfterTouchChannel:
		if c.AfterTouchChannel != nil {
			c.AfterTouchChannel(msg.Channel, msg.Data1)
		}
	case midi.PitchBend:
		if c.PitchBend != nil {
			c.PitchBend(msg.Channel, msg.PitchBendValue())
		}
	case midi.SystemExclusive:
		if c.SystemExclusive != nil {
			c.SystemExclusive(msg.SysExData)
		}
	case midi.TimeCodeQuarterFrame:
		if c.TimeCodeQuarterFrame != nil {
			c.TimeCodeQuarterFrame(msg.Data1)
		}
	case midi.SongPosition:
		if c.SongPosition != nil {
			c.SongPosition(msg.SongPositionBeats())
		}
	case midi.SongSelect:
		if c.SongSelect != nil {
			c.SongSelect(msg.Data1)
		}
	case midi.TuneRequest:
		if c.TuneRequest != nil {
			c.TuneRequest()
		}
	case midi.Clock:
		if c.Clock != nil {
			c.Clock()
		}
	case midi.Tick:
		if c.Tick != nil {
			c.Tick()
		}
	case midi.Start:
		if c.Start != nil {
			c.Start()
		}
	case midi.Continue:
		if c.Continue != nil {
			c.Continue()
		}
	case midi.Stop:
		if c.Stop != nil {
			c.Stop()
		}
	case midi.ActiveSensing:
		if c.ActiveSensing != nil {
			c.ActiveSensing()
		}
	case midi.SystemReset:
		if c.SystemReset != nil {
			c.SystemReset()
		}
	}
}

// ReportError invokes the error slot, if registered.
func (c *Callbacks) ReportError(errs midi.Errors) {
	if c.Error != nil {
		c.Error(errs)
	}
}
