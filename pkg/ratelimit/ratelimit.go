// Copyright (c) midiwire contributors
// SPDX-License-Identifier: Apache-2.0

// Package ratelimit provides token-bucket rate limiting for message
// streams. The TCP server uses one bucket per session to keep a
// misbehaving peer from flooding the shared output (a DIN MIDI link
// tops out near a thousand messages per second).
package ratelimit

import (
	"errors"
	"sync"
	"time"
)

// ErrRateLimitExceeded is returned when the message rate limit is
// exceeded.
var ErrRateLimitExceeded = errors.New("rate limit exceeded")

// TokenBucket implements the token bucket algorithm.
type TokenBucket struct {
	mu         sync.Mutex
	capacity   int64
	tokens     int64
	refillRate int64 // tokens per second
	lastRefill time.Time
}

// NewTokenBucket creates a bucket holding at most capacity tokens,
// refilled at refillRate tokens per second.
func NewTokenBucket(capacity, refillRate int64) *TokenBucket {
	return &TokenBucket{
		capacity:   capacity,
		tokens:     capacity,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// Allow reports whether one message should be admitted.
func (tb *TokenBucket) Allow() bool {
	return tb.AllowN(1)
}

// AllowN reports whether n messages should be admitted.
func (tb *TokenBucket) AllowN(n int64) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()

	if tb.tokens >= n {
		tb.tokens -= n
		return true
	}

	return false
}

// refill adds tokens based on elapsed time.
func (tb *TokenBucket) refill() {
	now := time.Now()
	elapsed := now.Sub(tb.lastRefill).Seconds()

	tokensToAdd := int64(elapsed * float64(tb.refillRate))
	if tokensToAdd > 0 {
		tb.tokens += tokensToAdd
		if tb.tokens > tb.capacity {
			tb.tokens = tb.capacity
		}
		tb.lastRefill = now
	}
}

// Available returns the number of available tokens.
func (tb *TokenBucket) Available() int64 {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	return tb.tokens
}
