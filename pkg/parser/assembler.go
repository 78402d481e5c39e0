// Copyright (c) midiwire contributors
// SPDX-License-Identifier: Apache-2.0

package parser

import (
	"github.com/midiwire/midiwire/pkg/midi"
	"github.com/midiwire/midiwire/pkg/transport"
)

// DefaultSysExCapacity bounds the exclusive buffer when no capacity is
// configured. Dumps longer than this are chunked, so a small value only
// costs extra emissions, never data.
const DefaultSysExCapacity = 128

// Status tags the outcome of a parse attempt.
type Status int

const (
	// NoData means the transport had nothing buffered.
	NoData Status = iota

	// NeedMoreData means bytes were consumed but no message completed.
	NeedMoreData

	// Complete means a message was fully reconstructed.
	Complete

	// Failed means a protocol error was detected; the framing state has
	// been reset and parsing resumes from the next byte.
	Failed
)

// Option configures an Assembler.
type Option func(*Assembler)

// WithSysExCapacity sets the bound of the exclusive buffer. Values
// below 3 (the smallest framed chunk) fall back to the default.
func WithSysExCapacity(n int) Option {
	return func(a *Assembler) {
		if n >= 3 {
			a.sysexCap = n
		}
	}
}

// WithOneByteParsing makes TryParseOne consume at most one byte per
// call instead of draining the transport until a message completes.
// Useful inside tight control loops that must bound per-iteration work.
func WithOneByteParsing() Option {
	return func(a *Assembler) { a.oneByte = true }
}

// Assembler is the receive state machine. It owns all parser state
// exclusively; only completed Messages are observable. Not safe for
// concurrent use, by design: the engine drives it from a single control
// loop.
type Assembler struct {
	tr transport.Transport

	runningStatusRX byte
	pending         [3]byte
	pendingIndex    int
	expectedLength  int

	sysex    []byte
	sysexCap int

	// Set when a chunk was flushed mid-dump: the next call re-primes the
	// buffer with a continuation header before touching the transport,
	// so the flushed chunk stays intact while callbacks run.
	sysexResume     bool
	sysexDisplaced  byte

	oneByte bool
}

// New creates an Assembler reading from the given transport.
func New(tr transport.Transport, opts ...Option) *Assembler {
	a := &Assembler{
		tr:       tr,
		sysexCap: DefaultSysExCapacity,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.sysex = make([]byte, a.sysexCap)
	a.Reset()
	return a
}

// Reset clears all framing and running-status state, as on begin().
func (a *Assembler) Reset() {
	a.runningStatusRX = byte(midi.InvalidType)
	a.pendingIndex = 0
	a.expectedLength = 0
	a.sysexResume = false
}

// SysExCapacity returns the configured bound of the exclusive buffer.
func (a *Assembler) SysExCapacity() int { return a.sysexCap }

// TryParseOne advances the state machine. In the default mode it keeps
// consuming bytes until a message completes, a protocol error occurs,
// or the transport runs dry; with one-byte parsing it consumes at most
// a single byte. The returned Message is only meaningful when the
// Status is Complete.
func (a *Assembler) TryParseOne() (midi.Message, Status) {
	for {
		if a.tr.Available() == 0 {
			return midi.Message{}, NoData
		}

		b := a.tr.ReadByte()

		// Reserved status bytes carry no meaning; drop them wherever
		// they appear.
		if b == midi.UndefinedF4 || b == midi.UndefinedF5 || b == midi.UndefinedFD {
			if a.oneByte {
				return midi.Message{}, NeedMoreData
			}
			continue
		}

		msg, st := a.consume(b)
		if st == Complete || st == Failed {
			return msg, st
		}
		if a.oneByte {
			return midi.Message{}, NeedMoreData
		}
	}
}

func (a *Assembler) consume(b byte) (midi.Message, Status) {
	if a.pendingIndex == 0 {
		return a.consumeStart(b)
	}
	return a.consumeContinuation(b)
}

// consumeStart begins a new message with b, applying running-status
// compression when b is a data byte.
func (a *Assembler) consumeStart(b byte) (midi.Message, Status) {
	a.pending[0] = b

	if b < 0x80 {
		// Data byte with no message in progress: legal only under an
		// active running status.
		if !midi.TypeFromStatus(a.runningStatusRX).IsChannelMessage() {
			a.failInput()
			return midi.Message{}, Failed
		}
		a.pending[0] = a.runningStatusRX
		a.pending[1] = b
		a.pendingIndex = 1
	}

	pendingType := midi.TypeFromStatus(a.pending[0])

	switch pendingType {
	case midi.Start, midi.Continue, midi.Stop, midi.Clock, midi.Tick,
		midi.ActiveSensing, midi.SystemReset, midi.TuneRequest:
		// Complete in a single byte. Running status stays untouched.
		a.pendingIndex = 0
		a.expectedLength = 0
		return midi.Message{
			Type:  pendingType,
			Valid: true,
		}, Complete

	case midi.ProgramChange, midi.AfterTouchChannel,
		midi.TimeCodeQuarterFrame, midi.SongSelect:
		a.expectedLength = 2

	case midi.NoteOn, midi.NoteOff, midi.ControlChange, midi.PitchBend,
		midi.AfterTouchPoly, midi.SongPosition:
		a.expectedLength = 3

	case midi.SystemExclusiveStart, midi.SystemExclusiveEnd:
		// Anything up to the buffer bound; a terminator or an overflow
		// flush ends the segment. SysEx kills running status.
		a.expectedLength = a.sysexCap
		a.runningStatusRX = byte(midi.InvalidType)
		a.sysex[0] = byte(pendingType)

	default:
		a.failInput()
		return midi.Message{}, Failed
	}

	if a.pendingIndex >= a.expectedLength-1 {
		// Running status already supplied the only data byte.
		msg := midi.Message{
			Type:    pendingType,
			Channel: midi.ChannelFromStatus(a.pending[0]),
			Data1:   a.pending[1],
			Valid:   true,
		}
		a.pendingIndex = 0
		a.expectedLength = 0
		return msg, Complete
	}

	a.pendingIndex++
	return midi.Message{}, NeedMoreData
}

// consumeContinuation feeds b into the message in progress.
func (a *Assembler) consumeContinuation(b byte) (midi.Message, Status) {
	if a.sysexResume {
		// Continuation header for the segment after a chunk flush.
		a.sysex[0] = byte(midi.SystemExclusiveEnd)
		a.sysex[1] = a.sysexDisplaced
		a.sysexResume = false
	}

	if b >= 0x80 {
		t := midi.Type(b)

		if t.IsRealTime() {
			// Interleaved real-time byte: emit it on its own and leave
			// the pending message exactly as it was.
			return midi.Message{
				Type:  t,
				Valid: true,
			}, Complete
		}

		if t == midi.SystemExclusiveStart || t == midi.SystemExclusiveEnd {
			if !a.inSysEx() {
				a.failInput()
				return midi.Message{}, Failed
			}
			// Terminator: close the open segment.
			a.sysex[a.pendingIndex] = b
			a.pendingIndex++

			msg := a.sysexMessage(a.pendingIndex)
			a.pendingIndex = 0
			a.expectedLength = 0
			a.runningStatusRX = byte(midi.InvalidType)
			return msg, Complete
		}

		// Any other status byte midstream is a framing violation.
		a.failInput()
		return midi.Message{}, Failed
	}

	if a.inSysEx() {
		a.sysex[a.pendingIndex] = b
	} else {
		a.pending[a.pendingIndex] = b
	}

	if a.pendingIndex < a.expectedLength-1 {
		a.pendingIndex++
		return midi.Message{}, NeedMoreData
	}

	if a.inSysEx() {
		return a.flushSysExChunk(), Complete
	}

	msg := midi.Message{
		Type:  midi.TypeFromStatus(a.pending[0]),
		Data1: a.pending[1],
		Valid: true,
	}
	if msg.Type.IsChannelMessage() {
		msg.Channel = midi.ChannelFromStatus(a.pending[0])
	}
	if a.expectedLength == 3 {
		msg.Data2 = a.pending[2]
	}

	a.pendingIndex = 0
	a.expectedLength = 0

	// Channel voice messages arm running status; everything else
	// disarms it.
	if msg.Type.IsChannelMessage() {
		a.runningStatusRX = a.pending[0]
	} else {
		a.runningStatusRX = byte(midi.InvalidType)
	}

	return msg, Complete
}

// flushSysExChunk emits a full buffer as one marker-framed chunk and
// arms the resume state so the next segment continues the dump:
//
//	first chunk:  F0 .... F0
//	middle chunk: F7 .... F0
//	last chunk:   F7 .... F7
//
// The byte displaced by the trailing continuation marker is carried
// into position 1 of the next segment, so concatenating chunk payloads
// covers every received byte.
func (a *Assembler) flushSysExChunk() midi.Message {
	a.sysexDisplaced = a.sysex[a.sysexCap-1]
	a.sysex[a.sysexCap-1] = byte(midi.SystemExclusiveStart)

	msg := a.sysexMessage(a.sysexCap)

	a.sysexResume = true
	a.pendingIndex = 2

	return msg
}

func (a *Assembler) sysexMessage(length int) midi.Message {
	return midi.Message{
		Type:      midi.SystemExclusive,
		Data1:     byte(length),      // length LSB
		Data2:     byte(length >> 8), // length MSB
		SysExData: a.sysex[:length],
		Valid:     true,
	}
}

func (a *Assembler) inSysEx() bool {
	return a.pending[0] == byte(midi.SystemExclusiveStart) ||
		a.pending[0] == byte(midi.SystemExclusiveEnd)
}

// failInput resets framing state after a protocol error so parsing can
// resume cleanly from the next byte.
func (a *Assembler) failInput() {
	a.pendingIndex = 0
	a.expectedLength = 0
	a.runningStatusRX = byte(midi.InvalidType)
}
