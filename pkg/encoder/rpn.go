// Copyright (c) midiwire contributors
// SPDX-License-Identifier: Apache-2.0

package encoder

import "github.com/midiwire/midiwire/pkg/midi"

// BeginRPN selects a 14-bit Registered Parameter Number for the
// following value messages. The selection is latched, so repeated
// begins for the same parameter send nothing.
func (e *Encoder) BeginRPN(number uint16, ch midi.Channel) bool {
	if e.currentRPN == number {
		return true
	}
	if !e.SendControlChange(ccRPNMSB, byte(number>>7&0x7F), ch) {
		return false
	}
	if !e.SendControlChange(ccRPNLSB, byte(number&0x7F), ch) {
		return false
	}
	e.currentRPN = number
	return true
}

// SendRPNValue sets the 14-bit value of the currently selected RPN.
func (e *Encoder) SendRPNValue(value uint16, ch midi.Channel) bool {
	return e.SendControlChange(ccDataEntryMSB, byte(value>>7&0x7F), ch) &&
		e.SendControlChange(ccDataEntryLSB, byte(value&0x7F), ch)
}

// SendRPNIncrement nudges the selected RPN up by the given amount.
func (e *Encoder) SendRPNIncrement(amount midi.DataByte, ch midi.Channel) bool {
	return e.SendControlChange(ccDataIncrement, amount, ch)
}

// SendRPNDecrement nudges the selected RPN down by the given amount.
func (e *Encoder) SendRPNDecrement(amount midi.DataByte, ch midi.Channel) bool {
	return e.SendControlChange(ccDataDecrement, amount, ch)
}

// EndRPN deselects the current RPN (null parameter 0x3FFF) and clears
// the latch.
func (e *Encoder) EndRPN(ch midi.Channel) bool {
	if !e.SendControlChange(ccRPNMSB, 0x7F, ch) {
		return false
	}
	if !e.SendControlChange(ccRPNLSB, 0x7F, ch) {
		return false
	}
	e.currentRPN = noParameter
	return true
}

// BeginNRPN selects a 14-bit Non-Registered Parameter Number, with the
// same latching as BeginRPN.
func (e *Encoder) BeginNRPN(number uint16, ch midi.Channel) bool {
	if e.currentNRPN == number {
		return true
	}
	if !e.SendControlChange(ccNRPNMSB, byte(number>>7&0x7F), ch) {
		return false
	}
	if !e.SendControlChange(ccNRPNLSB, byte(number&0x7F), ch) {
		return false
	}
	e.currentNRPN = number
	return true
}

// SendNRPNValue sets the 14-bit value of the currently selected NRPN.
func (e *Encoder) SendNRPNValue(value uint16, ch midi.Channel) bool {
	return e.SendControlChange(ccDataEntryMSB, byte(value>>7&0x7F), ch) &&
		e.SendControlChange(ccDataEntryLSB, byte(value&0x7F), ch)
}

// EndNRPN deselects the current NRPN and clears the latch.
func (e *Encoder) EndNRPN(ch midi.Channel) bool {
	if !e.SendControlChange(ccNRPNMSB, 0x7F, ch) {
		return false
	}
	if !e.SendControlChange(ccNRPNLSB, 0x7F, ch) {
		return false
	}
	e.currentNRPN = noParameter
	return true
}
