// Copyright (c) midiwire contributors
// SPDX-License-Identifier: Apache-2.0

package midi

// Message is one decoded MIDI message.
//
// For channel voice messages Channel is 1-16 and Data1/Data2 hold the
// payload bytes (Data2 is 0 for single-data-byte types). For system
// messages Channel is 0. For SysEx messages the captured byte sequence,
// framing bytes included, is in SysExData and Data1/Data2 encode its
// length as LSB/MSB.
type Message struct {
	Type    Type
	Channel Channel
	Data1   DataByte
	Data2   DataByte

	// SysExData is the captured exclusive byte sequence, only set when
	// Type == SystemExclusive. The slice aliases the assembler's bounded
	// buffer and is only valid until the next parse call; callers that
	// retain it must copy.
	SysExData []byte

	// Valid reports whether the last parse attempt produced a usable
	// message.
	Valid bool
}

// SysExLen returns the length of the captured SysEx sequence, decoded
// from the Data1 (LSB) and Data2 (MSB) bytes.
func (m Message) SysExLen() int {
	return int(CombineLSBMSB(m.Data1, m.Data2))
}

// PitchBendValue returns the signed 14-bit bend for a PitchBend message,
// in the range PitchBendMin..PitchBendMax.
func (m Message) PitchBendValue() int {
	return int(CombineLSBMSB(m.Data1, m.Data2)) + PitchBendMin
}

// SongPositionBeats returns the 14-bit song position for a SongPosition
// message, counted in MIDI beats (sixteenth notes).
func (m Message) SongPositionBeats() uint16 {
	return CombineLSBMSB(m.Data1, m.Data2)
}

// IsChannelMessage reports whether the message is a channel voice
// message.
func (m Message) IsChannelMessage() bool {
	return m.Type.IsChannelMessage()
}
