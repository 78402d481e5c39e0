// Copyright (c) midiwire contributors
// SPDX-License-Identifier: Apache-2.0

// Package parser implements the receive-side MIDI state machine.
//
// The Assembler consumes bytes from a transport one at a time and
// reconstructs discrete messages, handling the protocol's framing
// quirks:
//
//   - running status: a data byte arriving with no message in progress
//     reuses the last channel-voice status byte
//   - real-time interleaving: single-byte real-time messages may arrive
//     in the middle of another message and are emitted without
//     disturbing it
//   - SysEx segmentation: exclusive dumps longer than the configured
//     buffer are delivered as a sequence of marker-framed chunks
//
// Each TryParseOne call returns a tagged Status instead of mutating
// shared fields, so callers can distinguish "nothing buffered",
// "message in progress", "message completed" and "protocol error".
package parser
