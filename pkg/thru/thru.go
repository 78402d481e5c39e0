// Copyright (c) midiwire contributors
// SPDX-License-Identifier: Apache-2.0

// Package thru implements the soft-thru forwarding policy: deciding
// whether a just-received message is mirrored back to the output.
package thru

import "github.com/midiwire/midiwire/pkg/midi"

// Mode selects which received messages are mirrored to the output.
type Mode byte

const (
	// Off disables mirroring entirely.
	Off Mode = iota

	// Full mirrors every message regardless of channel.
	Full

	// SameChannel mirrors channel messages only when they match the
	// listening channel (always, when listening omni).
	SameChannel

	// DifferentChannel mirrors the complement: channel messages that do
	// NOT match the listening channel.
	DifferentChannel
)

// String returns the mode name for logging and configuration.
func (m Mode) String() string {
	switch m {
	case Off:
		return "off"
	case Full:
		return "full"
	case SameChannel:
		return "same_channel"
	case DifferentChannel:
		return "different_channel"
	default:
		return "unknown"
	}
}

// ParseMode maps a configuration string to a Mode.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "off":
		return Off, true
	case "full":
		return Full, true
	case "same_channel":
		return SameChannel, true
	case "different_channel":
		return DifferentChannel, true
	}
	return Off, false
}

// Decide reports whether the message should be forwarded given the
// listening channel and filter mode. System messages always pass a
// non-Off filter; channel messages pass per the mode's channel
// condition.
func Decide(msg midi.Message, listen midi.Channel, mode Mode) bool {
	if mode == Off {
		return false
	}
	if !msg.IsChannelMessage() {
		return true
	}

	match := msg.Channel == listen || listen == midi.ChannelOmni
	switch mode {
	case Full:
		return true
	case SameChannel:
		return match
	case DifferentChannel:
		return !match
	default:
		return false
	}
}
