// Copyright (c) midiwire contributors
// SPDX-License-Identifier: Apache-2.0

// Package engine ties the receive state machine, the callback
// dispatcher, the thru filter and the send-side framer into one polled
// MIDI endpoint.
//
// An Engine is driven by repeated Read calls from a single control
// loop: each call attempts to advance the parser by one message,
// dispatches it to the registered callbacks when it matches the
// listening channel, and mirrors it to the output per the thru policy.
// There are no background goroutines and no locks; all state belongs to
// the calling goroutine. Callbacks run synchronously inside Read and
// must not re-enter it.
package engine
