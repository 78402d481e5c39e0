// Copyright (c) midiwire contributors
// SPDX-License-Identifier: Apache-2.0

package tcp

import (
	"context"
	"log/slog"
	"net"
	"os"
	"testing"
	"time"

	"github.com/midiwire/midiwire/pkg/engine"
	"github.com/midiwire/midiwire/pkg/midi"
	"github.com/midiwire/midiwire/pkg/thru"
	"github.com/midiwire/midiwire/pkg/transport"
)

// freeAddress reserves an ephemeral port and releases it for the
// server to bind.
func freeAddress(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		t.Fatalf("Failed to reserve port: %v", err)
	}
	addr := l.Addr().String()
	l.Close()
	return addr
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func TestTCPServer_SessionDispatch(t *testing.T) {
	addr := freeAddress(t)

	notes := make(chan midi.DataByte, 16)
	newSession := func(tr transport.Transport, sessionID string) *engine.Engine {
		eng := engine.New(tr, engine.WithThru(thru.Off), engine.WithInputChannel(midi.ChannelOmni))
		eng.Callbacks().NoteOn = func(ch midi.Channel, note, velocity midi.DataByte) {
			notes <- note
		}
		return eng
	}

	server := New(Config{
		Address:         addr,
		ShutdownTimeout: 5 * time.Second,
		Logger:          testLogger(),
	}, newSession)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Listen(ctx)
	}()

	// Wait for the listener to come up.
	var conn net.Conn
	var err error
	for i := 0; i < 50; i++ {
		conn, err = net.Dial("tcp", addr)
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("Failed to dial server: %v", err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte{0x90, 60, 100, 0x90, 61, 100}); err != nil {
		t.Fatalf("Failed to write stream: %v", err)
	}

	for _, want := range []midi.DataByte{60, 61} {
		select {
		case got := <-notes:
			if got != want {
				t.Errorf("Expected note %d, got %d", want, got)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("Timed out waiting for dispatched note")
		}
	}

	conn.Close()
	cancel()

	select {
	case err := <-serverErr:
		if err != nil && err != context.Canceled {
			t.Errorf("Server shutdown with error: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Error("Server shutdown timeout")
	}
}

func TestTCPServer_SessionEndsOnDisconnect(t *testing.T) {
	addr := freeAddress(t)

	sessions := make(chan string, 1)
	newSession := func(tr transport.Transport, sessionID string) *engine.Engine {
		sessions <- sessionID
		return engine.New(tr, engine.WithThru(thru.Off))
	}

	server := New(Config{
		Address:         addr,
		ShutdownTimeout: time.Second,
		Logger:          testLogger(),
	}, newSession)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Listen(ctx)
	}()

	var conn net.Conn
	var err error
	for i := 0; i < 50; i++ {
		conn, err = net.Dial("tcp", addr)
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("Failed to dial server: %v", err)
	}

	select {
	case id := <-sessions:
		if id == "" {
			t.Error("Expected a non-empty session ID")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for session establishment")
	}

	// Peer disconnect must not wedge shutdown.
	conn.Close()
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-serverErr:
		if err != nil && err != context.Canceled {
			t.Errorf("Server shutdown with error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Error("Server shutdown timeout")
	}
}

func TestTCPServer_InvalidAddress(t *testing.T) {
	server := New(Config{
		Address: "invalid:address:99999",
		Logger:  testLogger(),
	}, func(tr transport.Transport, sessionID string) *engine.Engine {
		return engine.New(tr, engine.WithThru(thru.Off))
	})

	if err := server.Listen(context.Background()); err == nil {
		t.Error("Expected error for invalid address")
	}
}
