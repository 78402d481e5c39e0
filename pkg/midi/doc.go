// Copyright (c) midiwire contributors
// SPDX-License-Identifier: Apache-2.0

// Package midi defines the wire-level vocabulary of the MIDI 1.0 byte
// protocol: message types, status bytes, channel numbers, the decoded
// Message value, the parser error bitset, and the 7-bit SysEx payload
// codec.
//
// The package is pure data and free functions. The receive state machine
// lives in package parser, the send path in package encoder, and the
// polling read cycle that ties them together in package engine.
//
// # Status bytes
//
// A status byte has the high bit set. Channel-voice status bytes occupy
// 0x80-0xEF with the channel number (0-15 on the wire, 1-16 in this API)
// in the low nibble. System status bytes occupy 0xF0-0xFF and carry no
// channel. Data bytes are 7-bit (0x00-0x7F). The reserved status bytes
// 0xF4, 0xF5 and 0xFD are undefined by the MIDI specification and are
// discarded by the parser.
package midi
