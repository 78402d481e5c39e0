// Copyright (c) midiwire contributors
// SPDX-License-Identifier: Apache-2.0

package midi

import "testing"

func TestTypeFromStatus(t *testing.T) {
	tests := []struct {
		status byte
		want   Type
	}{
		{0x00, InvalidType},
		{0x7F, InvalidType},
		{0x80, NoteOff},
		{0x9F, NoteOn},
		{0xB3, ControlChange},
		{0xE0, PitchBend},
		{0xF0, SystemExclusive},
		{0xF2, SongPosition},
		{0xF4, InvalidType},
		{0xF5, InvalidType},
		{0xF8, Clock},
		{0xFD, InvalidType},
		{0xFE, ActiveSensing},
		{0xFF, SystemReset},
	}
	for _, tt := range tests {
		if got := TypeFromStatus(tt.status); got != tt.want {
			t.Errorf("TypeFromStatus(%02X) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestChannelRoundTrip(t *testing.T) {
	for ch := Channel(1); ch <= 16; ch++ {
		status := StatusFrom(NoteOn, ch)
		if got := ChannelFromStatus(status); got != ch {
			t.Errorf("channel %d round-tripped to %d via status %02X", ch, got, status)
		}
		if got := TypeFromStatus(status); got != NoteOn {
			t.Errorf("status %02X decoded type %v", status, got)
		}
	}
}

func TestDataLength(t *testing.T) {
	tests := []struct {
		t    Type
		n    int
		ok   bool
	}{
		{NoteOn, 2, true},
		{ProgramChange, 1, true},
		{SongPosition, 2, true},
		{SongSelect, 1, true},
		{TuneRequest, 0, true},
		{Clock, 0, true},
		{SystemExclusive, 0, false},
		{InvalidType, 0, false},
	}
	for _, tt := range tests {
		n, ok := tt.t.DataLength()
		if n != tt.n || ok != tt.ok {
			t.Errorf("%v.DataLength() = %d, %v, want %d, %v", tt.t, n, ok, tt.n, tt.ok)
		}
	}
}

func TestCombineLSBMSB(t *testing.T) {
	if got := CombineLSBMSB(0x34, 0x24); got != 0x1234 {
		t.Errorf("CombineLSBMSB(34, 24) = %04X, want 1234", got)
	}
	if got := CombineLSBMSB(0x7F, 0x7F); got != 0x3FFF {
		t.Errorf("CombineLSBMSB(7F, 7F) = %04X, want 3FFF", got)
	}
}

func TestPitchBendValue(t *testing.T) {
	tests := []struct {
		lsb, msb byte
		want     int
	}{
		{0x00, 0x00, PitchBendMin},
		{0x00, 0x40, 0},
		{0x7F, 0x7F, PitchBendMax},
	}
	for _, tt := range tests {
		m := Message{Type: PitchBend, Data1: tt.lsb, Data2: tt.msb}
		if got := m.PitchBendValue(); got != tt.want {
			t.Errorf("PitchBendValue(%02X %02X) = %d, want %d", tt.lsb, tt.msb, got, tt.want)
		}
	}
}

func TestErrorsBitset(t *testing.T) {
	var e Errors
	if e.String() != "none" {
		t.Errorf("Expected none, got %s", e.String())
	}

	e |= ErrorParse
	if !e.Has(ErrorParse) || e.Has(ErrorActiveSensingTimeout) {
		t.Error("Expected only the parse bit set")
	}

	e |= ErrorActiveSensingTimeout
	if e.String() != "parse|active_sensing_timeout" {
		t.Errorf("Unexpected rendering %s", e.String())
	}

	e &^= ErrorParse
	if e.String() != "active_sensing_timeout" {
		t.Errorf("Unexpected rendering %s", e.String())
	}
}
