// Copyright (c) midiwire contributors
// SPDX-License-Identifier: Apache-2.0

package midi

import "errors"

// Common error values for the send path and transports. Receive-side
// protocol errors are reported through the Errors bitset instead, since
// they are recoverable conditions, not call failures.
var (
	// ErrInvalidChannel indicates a channel outside the 1-16 range on a
	// channel voice send.
	ErrInvalidChannel = errors.New("invalid midi channel")

	// ErrTransportBusy indicates the transport refused the transmission.
	ErrTransportBusy = errors.New("transport busy")

	// ErrTransportClosed indicates the underlying byte stream was closed.
	ErrTransportClosed = errors.New("transport closed")
)

// Errors is the sticky receive-error accumulator. Bits are set when a
// condition is observed and cleared once it no longer holds; every
// transition is reported through the registered error callback.
type Errors uint8

const (
	// ErrorParse flags a malformed or unrecognized status byte.
	ErrorParse Errors = 1 << iota

	// ErrorActiveSensingTimeout flags an expired active-sensing watchdog.
	ErrorActiveSensingTimeout
)

// Has reports whether the given bit is set.
func (e Errors) Has(bit Errors) bool { return e&bit != 0 }

// String renders the set bits for logging.
func (e Errors) String() string {
	switch {
	case e == 0:
		return "none"
	case e.Has(ErrorParse) && e.Has(ErrorActiveSensingTimeout):
		return "parse|active_sensing_timeout"
	case e.Has(ErrorParse):
		return "parse"
	case e.Has(ErrorActiveSensingTimeout):
		return "active_sensing_timeout"
	default:
		return "unknown"
	}
}
