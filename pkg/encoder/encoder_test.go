// Copyright (c) midiwire contributors
// SPDX-License-Identifier: Apache-2.0

package encoder

import (
	"bytes"
	"testing"

	"github.com/midiwire/midiwire/pkg/midi"
	"github.com/midiwire/midiwire/pkg/transport/memory"
)

func TestEncoder_SendNoteOn(t *testing.T) {
	tr := memory.New()
	e := New(tr)

	if !e.SendNoteOn(60, 100, 4) {
		t.Fatal("SendNoteOn returned false")
	}
	if got := tr.Drain(); !bytes.Equal(got, []byte{0x93, 60, 100}) {
		t.Errorf("Expected 93 3C 64, got % X", got)
	}
}

func TestEncoder_InvalidChannel(t *testing.T) {
	tr := memory.New()
	e := New(tr)

	if e.SendNoteOn(60, 100, 0) {
		t.Error("Expected false for channel 0")
	}
	if e.SendNoteOn(60, 100, 17) {
		t.Error("Expected false for channel 17")
	}
	if got := tr.Drain(); len(got) != 0 {
		t.Errorf("Expected no bytes written, got % X", got)
	}
}

func TestEncoder_DataByteClamping(t *testing.T) {
	tr := memory.New()
	e := New(tr)

	e.SendNoteOn(0xFF, 0x80, 1)
	if got := tr.Drain(); !bytes.Equal(got, []byte{0x90, 0x7F, 0x00}) {
		t.Errorf("Expected clamped data bytes, got % X", got)
	}
}

func TestEncoder_NoRunningStatusByDefault(t *testing.T) {
	tr := memory.New()
	e := New(tr)

	e.SendNoteOn(60, 100, 1)
	e.SendNoteOn(61, 100, 1)

	want := []byte{0x90, 60, 100, 0x90, 61, 100}
	if got := tr.Drain(); !bytes.Equal(got, want) {
		t.Errorf("Expected % X, got % X", want, got)
	}
}

func TestEncoder_RunningStatus(t *testing.T) {
	tr := memory.New()
	e := New(tr, WithRunningStatus())

	e.SendNoteOn(60, 100, 1)
	e.SendNoteOn(61, 100, 1)
	e.SendNoteOff(60, 0, 1) // different status, emitted again

	want := []byte{0x90, 60, 100, 61, 100, 0x80, 60, 0}
	if got := tr.Drain(); !bytes.Equal(got, want) {
		t.Errorf("Expected % X, got % X", want, got)
	}
}

func TestEncoder_RunningStatusPerChannel(t *testing.T) {
	tr := memory.New()
	e := New(tr, WithRunningStatus())

	// Same type on another channel is a different status byte.
	e.SendNoteOn(60, 100, 1)
	e.SendNoteOn(60, 100, 2)

	want := []byte{0x90, 60, 100, 0x91, 60, 100}
	if got := tr.Drain(); !bytes.Equal(got, want) {
		t.Errorf("Expected % X, got % X", want, got)
	}
}

func TestEncoder_SystemCommonCancelsRunningStatus(t *testing.T) {
	tr := memory.New()
	e := New(tr, WithRunningStatus())

	e.SendNoteOn(60, 100, 1)
	e.SendTuneRequest()
	e.SendNoteOn(61, 100, 1)

	want := []byte{0x90, 60, 100, 0xF6, 0x90, 61, 100}
	if got := tr.Drain(); !bytes.Equal(got, want) {
		t.Errorf("Expected % X, got % X", want, got)
	}
}

func TestEncoder_RealTimeKeepsRunningStatus(t *testing.T) {
	tr := memory.New()
	e := New(tr, WithRunningStatus())

	e.SendNoteOn(60, 100, 1)
	e.SendRealTime(midi.Clock)
	e.SendNoteOn(61, 100, 1)

	want := []byte{0x90, 60, 100, 0xF8, 61, 100}
	if got := tr.Drain(); !bytes.Equal(got, want) {
		t.Errorf("Expected % X, got % X", want, got)
	}
}

func TestEncoder_SendRealTimeRejectsOthers(t *testing.T) {
	tr := memory.New()
	e := New(tr)

	if e.SendRealTime(midi.NoteOn) {
		t.Error("Expected false for a non-real-time type")
	}
	if got := tr.Drain(); len(got) != 0 {
		t.Errorf("Expected no bytes written, got % X", got)
	}
}

func TestEncoder_SendPitchBend(t *testing.T) {
	tr := memory.New()
	e := New(tr)

	// Center bend is the 14-bit midpoint 0x2000.
	e.SendPitchBend(0, 1)
	if got := tr.Drain(); !bytes.Equal(got, []byte{0xE0, 0x00, 0x40}) {
		t.Errorf("Expected center bend E0 00 40, got % X", got)
	}

	// Out-of-range values clamp to the extremes.
	e.SendPitchBend(-100000, 1)
	if got := tr.Drain(); !bytes.Equal(got, []byte{0xE0, 0x00, 0x00}) {
		t.Errorf("Expected min bend E0 00 00, got % X", got)
	}
	e.SendPitchBend(100000, 1)
	if got := tr.Drain(); !bytes.Equal(got, []byte{0xE0, 0x7F, 0x7F}) {
		t.Errorf("Expected max bend E0 7F 7F, got % X", got)
	}
}

func TestEncoder_SendSysEx(t *testing.T) {
	tr := memory.New()
	e := New(tr)

	e.SendSysEx([]byte{0x7E, 0x09, 0x01}, false)
	want := []byte{0xF0, 0x7E, 0x09, 0x01, 0xF7}
	if got := tr.Drain(); !bytes.Equal(got, want) {
		t.Errorf("Expected wrapped dump % X, got % X", want, got)
	}

	// Framed payloads pass through verbatim.
	e.SendSysEx(want, true)
	if got := tr.Drain(); !bytes.Equal(got, want) {
		t.Errorf("Expected verbatim dump % X, got % X", want, got)
	}
}

func TestEncoder_SysExCancelsRunningStatus(t *testing.T) {
	tr := memory.New()
	e := New(tr, WithRunningStatus())

	e.SendNoteOn(60, 100, 1)
	e.SendSysEx([]byte{1}, false)
	e.SendNoteOn(61, 100, 1)

	want := []byte{0x90, 60, 100, 0xF0, 1, 0xF7, 0x90, 61, 100}
	if got := tr.Drain(); !bytes.Equal(got, want) {
		t.Errorf("Expected % X, got % X", want, got)
	}
}

func TestEncoder_SendSongPosition(t *testing.T) {
	tr := memory.New()
	e := New(tr)

	e.SendSongPosition(0x1234)
	want := []byte{0xF2, 0x34, 0x24}
	if got := tr.Drain(); !bytes.Equal(got, want) {
		t.Errorf("Expected % X, got % X", want, got)
	}
}

func TestEncoder_TransportRefusal(t *testing.T) {
	tr := memory.New()
	tr.RefuseTransmission = true
	e := New(tr)

	if e.SendNoteOn(60, 100, 1) {
		t.Error("Expected false when the transport refuses transmission")
	}
	if e.SendRealTime(midi.Clock) {
		t.Error("Expected false for real-time when the transport refuses")
	}
}

func TestEncoder_SentHook(t *testing.T) {
	tr := memory.New()
	e := New(tr)

	sent := 0
	e.SetSentHook(func() { sent++ })

	e.SendNoteOn(60, 100, 1)
	e.SendRealTime(midi.Clock)
	e.SendNoteOn(60, 100, 0) // invalid, must not fire the hook

	if sent != 2 {
		t.Errorf("Expected 2 hook invocations, got %d", sent)
	}
}

func TestEncoder_RPNSequence(t *testing.T) {
	tr := memory.New()
	e := New(tr)

	// Pitch bend range (RPN 0) set to 12 semitones.
	e.BeginRPN(0, 1)
	e.SendRPNValue(12<<7, 1)
	e.EndRPN(1)

	want := []byte{
		0xB0, 101, 0x00,
		0xB0, 100, 0x00,
		0xB0, 6, 12,
		0xB0, 38, 0,
		0xB0, 101, 0x7F,
		0xB0, 100, 0x7F,
	}
	if got := tr.Drain(); !bytes.Equal(got, want) {
		t.Errorf("Expected % X, got % X", want, got)
	}
}

func TestEncoder_RPNLatch(t *testing.T) {
	tr := memory.New()
	e := New(tr)

	e.BeginRPN(0x0102, 1)
	tr.Drain()

	// Re-selecting the same parameter sends nothing.
	if !e.BeginRPN(0x0102, 1) {
		t.Fatal("BeginRPN returned false on latched parameter")
	}
	if got := tr.Drain(); len(got) != 0 {
		t.Errorf("Expected no bytes for latched re-select, got % X", got)
	}

	// A different parameter re-sends the selection.
	e.BeginRPN(0x0103, 1)
	if got := tr.Drain(); len(got) != 6 {
		t.Errorf("Expected 6 bytes for new selection, got % X", got)
	}
}

func TestEncoder_NRPNSequence(t *testing.T) {
	tr := memory.New()
	e := New(tr)

	e.BeginNRPN(0x0182, 1)
	e.SendNRPNValue(0x0203, 1)
	e.EndNRPN(1)

	want := []byte{
		0xB0, 99, 0x03,
		0xB0, 98, 0x02,
		0xB0, 6, 0x04,
		0xB0, 38, 0x03,
		0xB0, 99, 0x7F,
		0xB0, 98, 0x7F,
	}
	if got := tr.Drain(); !bytes.Equal(got, want) {
		t.Errorf("Expected % X, got % X", want, got)
	}
}
