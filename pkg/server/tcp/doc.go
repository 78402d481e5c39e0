// Copyright (c) midiwire contributors
// SPDX-License-Identifier: Apache-2.0

// Package tcp implements a stream server for raw MIDI over TCP.
//
// Each accepted connection becomes an independent session: the
// connection is wrapped in a netconn transport, handed to a
// caller-supplied session factory that builds and wires an Engine
// (callbacks, thru policy, output routing), and then polled until the
// peer disconnects or the server shuts down.
//
// The server supports TLS, per-session message rate limiting, and
// graceful shutdown with connection draining, in the same shape as any
// long-lived stream daemon: an accept loop feeding per-connection
// goroutines tracked by a WaitGroup.
package tcp
