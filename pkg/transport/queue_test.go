// Copyright (c) midiwire contributors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"testing"
	"time"
)

func TestQueue_PushRead(t *testing.T) {
	q := NewQueue()

	q.Push([]byte{1, 2, 3})
	if q.Available() != 3 {
		t.Fatalf("Expected 3 available, got %d", q.Available())
	}

	for _, want := range []byte{1, 2, 3} {
		if got := q.ReadByte(); got != want {
			t.Errorf("Expected %d, got %d", want, got)
		}
	}
	if q.Available() != 0 {
		t.Errorf("Expected empty queue, got %d", q.Available())
	}
}

func TestQueue_WaitReadable(t *testing.T) {
	q := NewQueue()

	done := make(chan bool)
	go func() {
		done <- q.WaitReadable(context.Background())
	}()

	q.Push([]byte{42})

	select {
	case ok := <-done:
		if !ok {
			t.Error("Expected WaitReadable to report a readable byte")
		}
	case <-time.After(time.Second):
		t.Fatal("WaitReadable did not wake on Push")
	}
}

func TestQueue_WaitReadableCancel(t *testing.T) {
	q := NewQueue()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan bool)
	go func() {
		done <- q.WaitReadable(ctx)
	}()

	cancel()

	select {
	case ok := <-done:
		if ok {
			t.Error("Expected false on cancellation")
		}
	case <-time.After(time.Second):
		t.Fatal("WaitReadable did not wake on cancel")
	}
}

func TestQueue_Close(t *testing.T) {
	q := NewQueue()

	q.Push([]byte{1})
	q.Close()

	// Buffered bytes stay readable after close.
	if !q.WaitReadable(context.Background()) {
		t.Error("Expected buffered byte readable after close")
	}
	q.ReadByte()

	// A drained, closed queue reports end of stream.
	if q.WaitReadable(context.Background()) {
		t.Error("Expected false on drained closed queue")
	}

	// Pushes after close are dropped.
	q.Push([]byte{2})
	if q.Available() != 0 {
		t.Errorf("Expected push after close dropped, got %d", q.Available())
	}
}
