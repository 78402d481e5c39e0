// Copyright (c) midiwire contributors
// SPDX-License-Identifier: Apache-2.0

package midi

// Type identifies the category of a MIDI message. Channel-voice types
// carry the value of their status byte with the channel nibble cleared;
// system types carry their full status byte.
type Type byte

const (
	// InvalidType is the zero value, used for notifying errors.
	InvalidType Type = 0x00

	// Channel voice messages.
	NoteOff          Type = 0x80 // Note Off
	NoteOn           Type = 0x90 // Note On
	AfterTouchPoly   Type = 0xA0 // Polyphonic AfterTouch
	ControlChange    Type = 0xB0 // Control Change
	ProgramChange    Type = 0xC0 // Program Change
	AfterTouchChannel Type = 0xD0 // Channel (monophonic) AfterTouch
	PitchBend        Type = 0xE0 // Pitch Bend

	// System common messages.
	SystemExclusive      Type = 0xF0 // System Exclusive
	TimeCodeQuarterFrame Type = 0xF1 // MIDI Time Code Quarter Frame
	SongPosition         Type = 0xF2 // Song Position Pointer
	SongSelect           Type = 0xF3 // Song Select
	TuneRequest          Type = 0xF6 // Tune Request
	SystemExclusiveEnd   Type = 0xF7 // End of Exclusive

	// System real-time messages.
	Clock         Type = 0xF8 // Timing Clock
	Tick          Type = 0xF9 // Tick (every 10ms when transport is running)
	Start         Type = 0xFA // Start
	Continue      Type = 0xFB // Continue
	Stop          Type = 0xFC // Stop
	ActiveSensing Type = 0xFE // Active Sensing
	SystemReset   Type = 0xFF // System Reset
)

// SystemExclusiveStart is an alias for the SysEx opening status byte.
const SystemExclusiveStart = SystemExclusive

// Undefined, reserved status bytes. The parser discards them silently.
const (
	UndefinedF4 byte = 0xF4
	UndefinedF5 byte = 0xF5
	UndefinedFD byte = 0xFD
)

// String returns a human-readable name for the message type.
func (t Type) String() string {
	switch t {
	case NoteOff:
		return "note_off"
	case NoteOn:
		return "note_on"
	case AfterTouchPoly:
		return "aftertouch_poly"
	case ControlChange:
		return "control_change"
	case ProgramChange:
		return "program_change"
	case AfterTouchChannel:
		return "aftertouch_channel"
	case PitchBend:
		return "pitch_bend"
	case SystemExclusive:
		return "sysex"
	case TimeCodeQuarterFrame:
		return "time_code_quarter_frame"
	case SongPosition:
		return "song_position"
	case SongSelect:
		return "song_select"
	case TuneRequest:
		return "tune_request"
	case SystemExclusiveEnd:
		return "sysex_end"
	case Clock:
		return "clock"
	case Tick:
		return "tick"
	case Start:
		return "start"
	case Continue:
		return "continue"
	case Stop:
		return "stop"
	case ActiveSensing:
		return "active_sensing"
	case SystemReset:
		return "system_reset"
	default:
		return "invalid"
	}
}

// Channel is a MIDI channel in the range 1-16, or one of the pseudo
// channels ChannelOmni and ChannelOff. Channel 0 on a decoded Message
// means the message is not a channel message.
type Channel byte

const (
	// ChannelOmni makes the input listen on every channel.
	ChannelOmni Channel = 0

	// ChannelOff disables MIDI input; the transport is not even polled.
	ChannelOff Channel = 17
)

// DataByte is a 7-bit MIDI payload byte.
type DataByte = byte

// Pitch bend range of the 14-bit bend value, centered on zero.
const (
	PitchBendMin = -8192
	PitchBendMax = 8191
)

// TypeFromStatus extracts the message type from a raw status byte.
// Data bytes and undefined status bytes yield InvalidType.
func TypeFromStatus(status byte) Type {
	if status < 0x80 ||
		status == UndefinedF4 ||
		status == UndefinedF5 ||
		status == UndefinedFD {
		return InvalidType
	}
	if status < 0xF0 {
		// Channel voice message, drop the channel nibble.
		return Type(status & 0xF0)
	}
	return Type(status)
}

// ChannelFromStatus extracts the 1-16 channel number from a channel
// voice status byte.
func ChannelFromStatus(status byte) Channel {
	return Channel(status&0x0F) + 1
}

// StatusFrom builds the raw status byte for a channel voice message.
// The channel must already be validated to the 1-16 range.
func StatusFrom(t Type, ch Channel) byte {
	return byte(t) | byte(ch-1)&0x0F
}

// IsChannelMessage reports whether the type is a channel voice message,
// i.e. one that carries a 1-16 channel and supports running status.
func (t Type) IsChannelMessage() bool {
	switch t {
	case NoteOff, NoteOn, AfterTouchPoly, ControlChange,
		ProgramChange, AfterTouchChannel, PitchBend:
		return true
	}
	return false
}

// IsRealTime reports whether the type is a single-byte system real-time
// message, allowed to interleave inside other messages on the wire.
func (t Type) IsRealTime() bool {
	switch t {
	case Clock, Tick, Start, Continue, Stop, ActiveSensing, SystemReset:
		return true
	}
	return false
}

// DataLength returns the number of data bytes following the status byte
// for fixed-length message types, and ok=false for SysEx and invalid
// types whose length is not fixed.
func (t Type) DataLength() (n int, ok bool) {
	switch t {
	case ProgramChange, AfterTouchChannel, TimeCodeQuarterFrame, SongSelect:
		return 1, true
	case NoteOff, NoteOn, AfterTouchPoly, ControlChange, PitchBend, SongPosition:
		return 2, true
	case TuneRequest, Clock, Tick, Start, Continue, Stop, ActiveSensing, SystemReset:
		return 0, true
	}
	return 0, false
}

// CombineLSBMSB rebuilds a 14-bit value from its two 7-bit halves.
func CombineLSBMSB(lsb, msb byte) uint16 {
	return uint16(lsb&0x7F) | uint16(msb&0x7F)<<7
}
