// Copyright (c) midiwire contributors
// SPDX-License-Identifier: Apache-2.0

// Package transport defines the byte-level interface between the MIDI
// engine and the physical medium carrying the stream.
//
// Implementations live in subpackages:
//   - memory: an in-process loopback, used by tests and examples
//   - serialport: a UART port via go.bug.st/serial
//   - netconn: any net.Conn, pumped into a non-blocking buffer
//   - wsconn: a gorilla/websocket connection carrying binary frames
//
// All reads are non-blocking polls: Available reports what is buffered
// right now and ReadByte must only be called when Available is positive.
package transport
