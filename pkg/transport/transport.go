// Copyright (c) midiwire contributors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"time"

	"github.com/midiwire/midiwire/pkg/midi"
)

// Transport moves raw MIDI bytes between the engine and the medium.
//
// The receive side is a non-blocking poll: Available returns the number
// of bytes currently buffered and ReadByte pops the next one. ReadByte
// must only be called when Available has reported at least one byte.
//
// The send side frames one message per BeginTransmission/EndTransmission
// pair. Stream transports treat the pair as a no-op; packet transports
// (RTP-MIDI style) may use it to delimit datagrams. BeginTransmission
// returning false means the medium refuses the message, and no bytes
// may be written for it.
type Transport interface {
	Available() int
	ReadByte() byte

	BeginTransmission(midi.Type) bool
	WriteByte(b byte) error
	EndTransmission()
}

// Clock is the monotonic time source used by the active-sensing
// watchdogs. It exists as an interface so tests can drive time by hand.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall Clock backed by time.Now.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now() }
