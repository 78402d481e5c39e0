// Copyright (c) midiwire contributors
// SPDX-License-Identifier: Apache-2.0

// Package netconn adapts any net.Conn into a non-blocking byte
// transport, for raw MIDI streamed over TCP or similar.
package netconn

import (
	"context"
	"log/slog"
	"net"
	"sync"

	"github.com/midiwire/midiwire/pkg/midi"
	"github.com/midiwire/midiwire/pkg/transport"
)

// Transport pumps a net.Conn into an internal queue and coalesces each
// outgoing message into a single conn write.
type Transport struct {
	conn   net.Conn
	logger *slog.Logger
	rx     *transport.Queue

	txMu sync.Mutex
	tx   []byte

	done chan struct{}
}

var (
	_ transport.Transport = (*Transport)(nil)
	_ transport.Waiter    = (*Transport)(nil)
)

// New wraps the connection and starts the receive pump.
func New(conn net.Conn, logger *slog.Logger) *Transport {
	if logger == nil {
		logger = slog.Default()
	}

	t := &Transport{
		conn:   conn,
		logger: logger,
		rx:     transport.NewQueue(),
		done:   make(chan struct{}),
	}

	go t.pump()

	return t
}

func (t *Transport) pump() {
	defer t.rx.Close()
	defer close(t.done)

	buf := make([]byte, 1024)
	for {
		n, err := t.conn.Read(buf)
		if n > 0 {
			t.rx.Push(buf[:n])
		}
		if err != nil {
			return
		}
	}
}

// Available implements transport.Transport.
func (t *Transport) Available() int { return t.rx.Available() }

// ReadByte implements transport.Transport.
func (t *Transport) ReadByte() byte { return t.rx.ReadByte() }

// WaitReadable implements transport.Waiter.
func (t *Transport) WaitReadable(ctx context.Context) bool {
	return t.rx.WaitReadable(ctx)
}

// BeginTransmission implements transport.Transport.
func (t *Transport) BeginTransmission(midi.Type) bool {
	t.txMu.Lock()
	t.tx = t.tx[:0]
	return true
}

// WriteByte implements transport.Transport.
func (t *Transport) WriteByte(b byte) error {
	t.tx = append(t.tx, b)
	return nil
}

// EndTransmission implements transport.Transport.
func (t *Transport) EndTransmission() {
	frame := t.tx
	defer t.txMu.Unlock()

	if len(frame) == 0 {
		return
	}
	if _, err := t.conn.Write(frame); err != nil {
		t.logger.Debug("conn write failed",
			slog.String("remote", t.conn.RemoteAddr().String()),
			slog.String("error", err.Error()))
	}
}

// Close closes the connection and waits for the pump to stop.
func (t *Transport) Close() error {
	err := t.conn.Close()
	<-t.done
	return err
}
