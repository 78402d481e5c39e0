// Copyright (c) midiwire contributors
// SPDX-License-Identifier: Apache-2.0

// Package encoder implements the send-side MIDI framer: it turns typed
// messages back into the correct wire byte sequences, with optional
// running-status compression and RPN/NRPN controller helpers.
//
// The encoder keeps its own running-status latch, independent of the
// receive side; forwarding a message through both never shares state.
package encoder
