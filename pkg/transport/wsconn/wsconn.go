// Copyright (c) midiwire contributors
// SPDX-License-Identifier: Apache-2.0

// Package wsconn adapts a gorilla/websocket connection into a byte
// transport: incoming binary frames are drained into the receive
// queue, and each outgoing message is sent as one binary frame.
package wsconn

import (
	"context"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/midiwire/midiwire/pkg/midi"
	"github.com/midiwire/midiwire/pkg/transport"
)

// Transport carries a MIDI byte stream over WebSocket binary frames.
// Frame boundaries carry no protocol meaning on receive; the parser
// reassembles messages from the concatenated stream.
type Transport struct {
	ws     *websocket.Conn
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

// New wraps the websocket connection and starts the receive pump.
func New(ws *websocket.Conn, logger *slog.Logger) *Transport {
	if logger == nil {
		logger = slog.Default()
	}

	t := &Transport{
		ws:     ws,
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

	for {
		kind, data, err := t.ws.ReadMessage()
		if err != nil {
			return
		}
		if kind != websocket.BinaryMessage {
			t.logger.Debug("ignoring non-binary websocket frame",
				slog.Int("type", kind))
			continue
		}
		t.rx.Push(data)
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

// EndTransmission implements transport.Transport. The buffered message
// goes out as one binary frame, preserving message boundaries for
// frame-aware peers.
func (t *Transport) EndTransmission() {
	frame := t.tx
	defer t.txMu.Unlock()

	if len(frame) == 0 {
		return
	}
	if err := t.ws.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		t.logger.Debug("websocket write failed", slog.String("error", err.Error()))
	}
}

// Close closes the websocket and waits for the pump to stop.
func (t *Transport) Close() error {
	err := t.ws.Close()
	<-t.done
	return err
}
