// Copyright (c) midiwire contributors
// SPDX-License-Identifier: Apache-2.0

package thru

import (
	"testing"

	"github.com/midiwire/midiwire/pkg/midi"
)

func TestDecide(t *testing.T) {
	note := func(ch midi.Channel) midi.Message {
		return midi.Message{Type: midi.NoteOn, Channel: ch, Valid: true}
	}
	clock := midi.Message{Type: midi.Clock, Valid: true}

	tests := []struct {
		name   string
		msg    midi.Message
		listen midi.Channel
		mode   Mode
		want   bool
	}{
		{"off drops channel", note(1), 1, Off, false},
		{"off drops system", clock, 1, Off, false},
		{"full passes match", note(1), 1, Full, true},
		{"full passes mismatch", note(2), 1, Full, true},
		{"full passes system", clock, 1, Full, true},
		{"same passes match", note(3), 3, SameChannel, true},
		{"same drops mismatch", note(4), 3, SameChannel, false},
		{"same passes system", clock, 3, SameChannel, true},
		{"same omni passes all", note(9), midi.ChannelOmni, SameChannel, true},
		{"different drops match", note(3), 3, DifferentChannel, false},
		{"different passes mismatch", note(4), 3, DifferentChannel, true},
		{"different passes system", clock, 3, DifferentChannel, true},
		{"different omni drops all", note(9), midi.ChannelOmni, DifferentChannel, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decide(tt.msg, tt.listen, tt.mode); got != tt.want {
				t.Errorf("Decide() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	for _, mode := range []Mode{Off, Full, SameChannel, DifferentChannel} {
		got, ok := ParseMode(mode.String())
		if !ok || got != mode {
			t.Errorf("ParseMode(%q) = %v, %v", mode.String(), got, ok)
		}
	}
	if _, ok := ParseMode("bogus"); ok {
		t.Error("Expected ParseMode to reject unknown mode")
	}
}
