// Copyright (c) midiwire contributors
// SPDX-License-Identifier: Apache-2.0

package tcp

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/midiwire/midiwire/pkg/engine"
	"github.com/midiwire/midiwire/pkg/metrics"
	"github.com/midiwire/midiwire/pkg/ratelimit"
	"github.com/midiwire/midiwire/pkg/transport"
	"github.com/midiwire/midiwire/pkg/transport/netconn"
)

// ErrShutdownTimeout is returned when graceful shutdown exceeds the
// configured timeout.
var ErrShutdownTimeout = errors.New("shutdown timeout exceeded")

// SessionFunc builds the Engine for one accepted connection. The
// factory wires callbacks, thru policy, and output routing; the server
// owns the polling loop.
type SessionFunc func(tr transport.Transport, sessionID string) *engine.Engine

// Config holds the TCP server configuration.
type Config struct {
	// Address is the listen address (host:port).
	Address string

	// TLSConfig is optional TLS configuration for the listener.
	TLSConfig *tls.Config

	// MessageRate caps dispatched messages per second per session.
	// Zero disables limiting.
	MessageRate int64

	// ShutdownTimeout is the maximum time to wait for active sessions
	// to drain during graceful shutdown.
	ShutdownTimeout time.Duration

	// Metrics is optional Prometheus instrumentation.
	Metrics *metrics.Metrics

	// Logger for server events.
	Logger *slog.Logger
}

// Server accepts raw MIDI byte streams over TCP, one engine session
// per connection.
type Server struct {
	config     Config
	newSession SessionFunc
	wg         sync.WaitGroup
}

// New creates a TCP server with the given configuration and session
// factory.
func New(cfg Config, newSession SessionFunc) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}

	return &Server{
		config:     cfg,
		newSession: newSession,
	}
}

// Listen starts the server and blocks until the context is cancelled.
// It implements graceful shutdown with session draining.
func (s *Server) Listen(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Address, err)
	}

	if s.config.TLSConfig != nil {
		listener = tls.NewListener(listener, s.config.TLSConfig)
		s.config.Logger.Info("TLS enabled", slog.String("address", s.config.Address))
	}

	s.config.Logger.Info("MIDI stream server started", slog.String("address", s.config.Address))

	// Sessions get their own context so shutdown can first drain, then
	// force-close whatever is left.
	connCtx, connCancel := context.WithCancel(context.Background())
	defer connCancel()

	acceptDone := make(chan struct{})
	go func() {
		defer close(acceptDone)
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			conn, err := listener.Accept()
			if err != nil {
				select {
				case <-ctx.Done():
					return
				default:
					s.config.Logger.Error("failed to accept connection", slog.String("error", err.Error()))
					continue
				}
			}

			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				if err := s.handleConn(connCtx, conn); err != nil {
					s.config.Logger.Debug("session ended with error",
						slog.String("remote", conn.RemoteAddr().String()),
						slog.String("error", err.Error()))
				}
			}()
		}
	}()

	<-ctx.Done()
	s.config.Logger.Info("shutdown signal received, closing listener")

	if err := listener.Close(); err != nil {
		s.config.Logger.Error("error closing listener", slog.String("error", err.Error()))
	}

	<-acceptDone

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.config.Logger.Info("all sessions closed gracefully")
		return nil
	case <-time.After(s.config.ShutdownTimeout):
		s.config.Logger.Warn("shutdown timeout exceeded, forcing session closure")
		connCancel()
		select {
		case <-done:
			return ErrShutdownTimeout
		case <-time.After(1 * time.Second):
			return ErrShutdownTimeout
		}
	}
}

// handleConn runs one session: wrap the connection in a transport,
// build the engine, poll until the peer disconnects.
func (s *Server) handleConn(ctx context.Context, conn net.Conn) error {
	sessionID := uuid.New().String()

	tr := netconn.New(conn, s.config.Logger)
	defer tr.Close()

	if tlsConn, ok := conn.(*tls.Conn); ok {
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			return fmt.Errorf("TLS handshake failed: %w", err)
		}
	}

	eng := s.newSession(tr, sessionID)

	s.config.Logger.Debug("session established",
		slog.String("session", sessionID),
		slog.String("remote", conn.RemoteAddr().String()))

	run := func() error {
		return s.poll(ctx, tr, eng)
	}

	var err error
	if s.config.Metrics != nil {
		err = s.config.Metrics.ObserveSession(run)
	} else {
		err = run()
	}

	s.config.Logger.Debug("session closed", slog.String("session", sessionID))
	return err
}

// poll drives the engine until the stream ends or the context is
// cancelled.
func (s *Server) poll(ctx context.Context, tr *netconn.Transport, eng *engine.Engine) error {
	var bucket *ratelimit.TokenBucket
	if s.config.MessageRate > 0 {
		bucket = ratelimit.NewTokenBucket(s.config.MessageRate, s.config.MessageRate)
	}

	for {
		if !tr.WaitReadable(ctx) {
			return ctx.Err()
		}

		for tr.Available() > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			dispatched := eng.Read()

			// The message that overdrew the bucket has already been
			// dispatched; the pause throttles whatever follows until
			// tokens refill.
			if dispatched && bucket != nil && !bucket.Allow() {
				if s.config.Metrics != nil {
					s.config.Metrics.RateLimitedMessages.Inc()
				}
				time.Sleep(10 * time.Millisecond)
			}
		}
	}
}
