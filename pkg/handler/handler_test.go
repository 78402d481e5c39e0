// Copyright (c) midiwire contributors
// SPDX-License-Identifier: Apache-2.0

package handler

import (
	"testing"

	"github.com/midiwire/midiwire/pkg/midi"
)

func TestCallbacks_ZeroValueDropsEverything(t *testing.T) {
	var c Callbacks

	// Must not panic with no slots registered.
	c.Dispatch(midi.Message{Type: midi.NoteOn, Channel: 1, Data1: 60, Data2: 100, Valid: true})
	c.Dispatch(midi.Message{Type: midi.Clock, Valid: true})
	c.ReportError(midi.ErrorParse)
}

func TestCallbacks_DispatchRouting(t *testing.T) {
	var c Callbacks

	var gotNote midi.DataByte
	c.NoteOn = func(ch midi.Channel, note, velocity midi.DataByte) { gotNote = note }

	var gotBend int
	c.PitchBend = func(ch midi.Channel, bend int) { gotBend = bend }

	var gotBeats uint16
	c.SongPosition = func(beats uint16) { gotBeats = beats }

	var gotSysEx []byte
	c.SystemExclusive = func(data []byte) { gotSysEx = data }

	clocks := 0
	c.Clock = func() { clocks++ }

	messages := 0
	c.Message = func(midi.Message) { messages++ }

	c.Dispatch(midi.Message{Type: midi.NoteOn, Channel: 1, Data1: 60, Data2: 100, Valid: true})
	c.Dispatch(midi.Message{Type: midi.PitchBend, Channel: 1, Data1: 0x00, Data2: 0x40, Valid: true})
	c.Dispatch(midi.Message{Type: midi.SongPosition, Data1: 0x34, Data2: 0x24, Valid: true})
	c.Dispatch(midi.Message{Type: midi.SystemExclusive, SysExData: []byte{0xF0, 1, 0xF7}, Data1: 3, Valid: true})
	c.Dispatch(midi.Message{Type: midi.Clock, Valid: true})

	if gotNote != 60 {
		t.Errorf("Expected note 60, got %d", gotNote)
	}
	if gotBend != 0 {
		t.Errorf("Expected centered bend 0, got %d", gotBend)
	}
	if gotBeats != 0x1234 {
		t.Errorf("Expected beats 1234h, got %04X", gotBeats)
	}
	if len(gotSysEx) != 3 {
		t.Errorf("Expected 3 sysex bytes, got %d", len(gotSysEx))
	}
	if clocks != 1 {
		t.Errorf("Expected 1 clock, got %d", clocks)
	}
	if messages != 5 {
		t.Errorf("Expected 5 catch-all invocations, got %d", messages)
	}
}

func TestCallbacks_ReportError(t *testing.T) {
	var c Callbacks

	var got midi.Errors
	c.Error = func(errs midi.Errors) { got = errs }

	c.ReportError(midi.ErrorParse | midi.ErrorActiveSensingTimeout)
	if got != midi.ErrorParse|midi.ErrorActiveSensingTimeout {
		t.Errorf("Expected both bits reported, got %v", got)
	}
}
