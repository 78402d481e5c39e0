// Copyright (c) midiwire contributors
// SPDX-License-Identifier: Apache-2.0

// Package serialport provides a Transport backed by a UART serial
// device via go.bug.st/serial. Classic DIN MIDI runs at 31250 baud;
// USB-serial adapters commonly use 115200.
package serialport

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"go.bug.st/serial"

	"github.com/midiwire/midiwire/pkg/midi"
	"github.com/midiwire/midiwire/pkg/transport"
)

// DefaultBaudRate is the DIN MIDI line rate.
const DefaultBaudRate = 31250

// Config holds the serial transport configuration.
type Config struct {
	// Device is the port name, e.g. /dev/ttyUSB0 or COM3.
	Device string

	// BaudRate defaults to the DIN MIDI rate when zero.
	BaudRate int

	// Logger for transport events.
	Logger *slog.Logger
}

// Transport is a serial-port byte transport. A pump goroutine drains
// the port into an internal queue so the engine's polls never block.
type Transport struct {
	cfg  Config
	port serial.Port
	rx   *transport.Queue

	txMu sync.Mutex
	tx   []byte

	done chan struct{}
}

var (
	_ transport.Transport = (*Transport)(nil)
	_ transport.Waiter    = (*Transport)(nil)
)

// Open opens the serial device and starts the receive pump.
func Open(cfg Config) (*Transport, error) {
	if cfg.BaudRate == 0 {
		cfg.BaudRate = DefaultBaudRate
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	port, err := serial.Open(cfg.Device, &serial.Mode{BaudRate: cfg.BaudRate})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", cfg.Device, err)
	}

	t := &Transport{
		cfg:  cfg,
		port: port,
		rx:   transport.NewQueue(),
		done: make(chan struct{}),
	}

	go t.pump()

	cfg.Logger.Info("serial port opened",
		slog.String("device", cfg.Device),
		slog.Int("baud", cfg.BaudRate))

	return t, nil
}

// pump drains the port into the receive queue until the port closes.
func (t *Transport) pump() {
	defer t.rx.Close()
	defer close(t.done)

	buf := make([]byte, 256)
	for {
		n, err := t.port.Read(buf)
		if n > 0 {
			t.rx.Push(buf[:n])
		}
		if err != nil {
			t.cfg.Logger.Debug("serial read ended", slog.String("error", err.Error()))
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

// BeginTransmission implements transport.Transport. Bytes written
// until EndTransmission are coalesced into a single port write.
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
	if _, err := t.port.Write(frame); err != nil {
		t.cfg.Logger.Error("serial write failed",
			slog.String("device", t.cfg.Device),
			slog.String("error", err.Error()))
	}
}

// Close closes the port and waits for the pump to stop.
func (t *Transport) Close() error {
	err := t.port.Close()
	<-t.done
	return err
}
