// Copyright (c) midiwire contributors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"sync"
)

// Waiter is implemented by transports that can block until input
// arrives, letting session loops sleep instead of spinning on
// Available.
type Waiter interface {
	// WaitReadable blocks until at least one byte is buffered, the
	// context is cancelled, or the stream is closed and drained. It
	// returns true when a byte is readable.
	WaitReadable(ctx context.Context) bool
}

// Queue bridges a blocking reader goroutine to the engine's
// non-blocking polls: the pump goroutine pushes whatever it reads from
// the medium, the engine pops bytes one at a time.
type Queue struct {
	mu     sync.Mutex
	buf    []byte
	closed bool
	notify chan struct{}
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{notify: make(chan struct{}, 1)}
}

// Push appends bytes from the medium. Pushes after Close are dropped.
func (q *Queue) Push(p []byte) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.buf = append(q.buf, p...)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Available returns the number of buffered bytes.
func (q *Queue) Available() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.buf)
}

// ReadByte pops the next buffered byte. It must only be called after
// Available reported at least one byte.
func (q *Queue) ReadByte() byte {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.buf) == 0 {
		return 0
	}
	b := q.buf[0]
	q.buf = q.buf[1:]
	return b
}

// Close marks the stream as ended and wakes any waiter.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// WaitReadable implements Waiter.
func (q *Queue) WaitReadable(ctx context.Context) bool {
	for {
		q.mu.Lock()
		n := len(q.buf)
		closed := q.closed
		q.mu.Unlock()

		if n > 0 {
			return true
		}
		if closed {
			return false
		}

		select {
		case <-ctx.Done():
			return false
		case <-q.notify:
		}
	}
}
