// Copyright (c) midiwire contributors
// SPDX-License-Identifier: Apache-2.0

// Package memory provides an in-process loopback transport. It is the
// reference Transport used by tests and the loopback example: bytes
// written to one end become readable on the other.
package memory

import (
	"sync"

	"github.com/midiwire/midiwire/pkg/midi"
	"github.com/midiwire/midiwire/pkg/transport"
)

// Transport is a pair of byte queues. The zero value is not usable;
// create one with New or NewPair.
type Transport struct {
	mu sync.Mutex
	rx []byte

	peer *Transport

	// RefuseTransmission makes BeginTransmission report a busy medium,
	// for exercising the send-side failure path in tests.
	RefuseTransmission bool
}

var _ transport.Transport = (*Transport)(nil)

// New returns a transport whose writes loop back into its own read
// queue.
func New() *Transport {
	t := &Transport{}
	t.peer = t
	return t
}

// NewPair returns two connected transports: writes on one are reads on
// the other.
func NewPair() (*Transport, *Transport) {
	a := &Transport{}
	b := &Transport{}
	a.peer = b
	b.peer = a
	return a, b
}

// Feed injects bytes into the transport's own read queue, simulating
// arrival from the wire.
func (t *Transport) Feed(data ...byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rx = append(t.rx, data...)
}

// Available implements transport.Transport.
func (t *Transport) Available() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.rx)
}

// ReadByte implements transport.Transport.
func (t *Transport) ReadByte() byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.rx) == 0 {
		return 0
	}
	b := t.rx[0]
	t.rx = t.rx[1:]
	return b
}

// BeginTransmission implements transport.Transport.
func (t *Transport) BeginTransmission(midi.Type) bool {
	return !t.RefuseTransmission
}

// WriteByte implements transport.Transport.
func (t *Transport) WriteByte(b byte) error {
	t.peer.Feed(b)
	return nil
}

// EndTransmission implements transport.Transport.
func (t *Transport) EndTransmission() {}

// Drain removes and returns everything currently readable, a test
// convenience for inspecting what was sent to this end.
func (t *Transport) Drain() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := t.rx
	t.rx = nil
	return out
}
