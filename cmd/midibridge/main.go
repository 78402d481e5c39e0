// Copyright (c) midiwire contributors
// SPDX-License-Identifier: Apache-2.0

// midibridge bridges a serial MIDI stream into the operating system's
// MIDI subsystem and, optionally, exposes the same engine over a TCP
// listener and a WebSocket endpoint. Configuration comes from
// MIDIWIRE_-prefixed environment variables; metrics and health probes
// are served over HTTP.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
	"golang.org/x/sync/errgroup"

	"github.com/midiwire/midiwire"
	"github.com/midiwire/midiwire/pkg/breaker"
	"github.com/midiwire/midiwire/pkg/engine"
	"github.com/midiwire/midiwire/pkg/health"
	"github.com/midiwire/midiwire/pkg/metrics"
	"github.com/midiwire/midiwire/pkg/midi"
	"github.com/midiwire/midiwire/pkg/server/tcp"
	"github.com/midiwire/midiwire/pkg/transport"
	"github.com/midiwire/midiwire/pkg/transport/serialport"
	"github.com/midiwire/midiwire/pkg/transport/wsconn"
)

const envPrefix = "MIDIWIRE_"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(ctx)

	logHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	logger := slog.New(logHandler)

	// Load .env file
	if err := godotenv.Load(); err != nil {
		logger.Warn("no .env file found, using environment variables")
	}

	cfg, err := midiwire.NewConfig(env.Options{Prefix: envPrefix})
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	m := metrics.New("midiwire")
	checker := health.NewChecker(0)

	// OS MIDI output, guarded by a circuit breaker so an unplugged
	// interface does not stall the read loop.
	var forward func(midi.Message)
	if cfg.MIDIOutPort != "" {
		send, closePort, err := openOutput(cfg.MIDIOutPort)
		if err != nil {
			logger.Error("failed to open MIDI output", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer closePort()

		cb := breaker.New(breaker.Config{})
		cb.OnStateChange(func(from, to breaker.State) {
			logger.Warn("MIDI output circuit state changed",
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		})
		checker.Register("midi_output", func(context.Context) error {
			if cb.State() == breaker.StateOpen {
				return breaker.ErrCircuitOpen
			}
			return nil
		})

		forward = func(msg midi.Message) {
			raw, ok := portMessage(msg)
			if !ok {
				return
			}
			err := cb.Call(func() error { return send(raw) })
			if err != nil && err != breaker.ErrCircuitOpen {
				logger.Debug("MIDI output write failed", slog.String("error", err.Error()))
			}
		}

		logger.Info("MIDI output opened", slog.String("port", cfg.MIDIOutPort))
	}

	if cfg.SerialDevice != "" {
		if err := startSerialBridge(g, ctx, cfg, m, forward, logger); err != nil {
			logger.Error("serial bridge not started", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	if cfg.TCPAddress != "" {
		startTCPServer(g, ctx, cfg, m, forward, logger)
	}

	startHTTPEndpoint(g, ctx, cfg, m, forward, checker, logger)

	// Signal handler
	g.Go(func() error {
		return stopSignalHandler(ctx, cancel, logger)
	})

	if err := g.Wait(); err != nil {
		logger.Error(fmt.Sprintf("midibridge terminated with error: %s", err))
	} else {
		logger.Info("midibridge stopped")
	}
}

// newEngine builds one engine from the shared configuration, wiring
// its message callback to the OS MIDI output when one is configured.
func newEngine(tr transport.Transport, cfg midiwire.Config, m *metrics.Metrics, forward func(midi.Message), logger *slog.Logger) *engine.Engine {
	opts := []engine.Option{
		engine.WithInputChannel(cfg.Channel()),
		engine.WithThru(cfg.Thru()),
		engine.WithSysExCapacity(cfg.SysExCapacity),
		engine.WithMetrics(m),
	}
	if cfg.ActiveSensingTimeoutMS > 0 {
		opts = append(opts, engine.WithReceiverActiveSensing(
			time.Duration(cfg.ActiveSensingTimeoutMS)*time.Millisecond))
	}

	eng := engine.New(tr, opts...)

	cb := eng.Callbacks()
	if forward != nil {
		cb.Message = forward
	}
	cb.Error = func(errs midi.Errors) {
		if errs != 0 {
			logger.Warn("stream error", slog.String("errors", errs.String()))
		}
	}

	return eng
}

func startSerialBridge(g *errgroup.Group, ctx context.Context, cfg midiwire.Config, m *metrics.Metrics, forward func(midi.Message), logger *slog.Logger) error {
	tr, err := serialport.Open(serialport.Config{
		Device:   cfg.SerialDevice,
		BaudRate: cfg.BaudRate,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	eng := newEngine(tr, cfg, m, forward, logger)

	g.Go(func() error {
		defer tr.Close()
		for {
			if !tr.WaitReadable(ctx) {
				return ctx.Err()
			}
			for tr.Available() > 0 {
				eng.Read()
			}
		}
	})

	logger.Info("serial bridge started", slog.String("device", cfg.SerialDevice))
	return nil
}

func startTCPServer(g *errgroup.Group, ctx context.Context, cfg midiwire.Config, m *metrics.Metrics, forward func(midi.Message), logger *slog.Logger) {
	srv := tcp.New(tcp.Config{
		Address:     cfg.TCPAddress,
		MessageRate: cfg.MessageRate,
		Metrics:     m,
		Logger:      logger,
	}, func(tr transport.Transport, sessionID string) *engine.Engine {
		return newEngine(tr, cfg, m, forward, logger.With(slog.String("session", sessionID)))
	})

	g.Go(func() error {
		return srv.Listen(ctx)
	})

	logger.Info("TCP listener started", slog.String("address", cfg.TCPAddress))
}

func startHTTPEndpoint(g *errgroup.Group, ctx context.Context, cfg midiwire.Config, m *metrics.Metrics, forward func(midi.Message), checker *health.Checker, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", checker.HTTPHandler())
	mux.HandleFunc("/livez", health.LivenessHandler())
	mux.HandleFunc("/readyz", checker.ReadinessHandler())
	mux.HandleFunc("/stream", streamHandler(cfg, m, forward, logger))

	srv := &http.Server{Addr: cfg.HTTPAddress, Handler: mux}

	g.Go(func() error {
		errCh := make(chan error, 1)
		go func() { errCh <- srv.ListenAndServe() }()

		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		case err := <-errCh:
			return err
		}
	})

	logger.Info("HTTP endpoint started", slog.String("address", cfg.HTTPAddress))
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// streamHandler upgrades the request to a WebSocket session carrying
// raw MIDI in binary frames, driven by its own engine like a TCP
// session.
func streamHandler(cfg midiwire.Config, m *metrics.Metrics, forward func(midi.Message), logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("websocket upgrade failed", slog.String("error", err.Error()))
			return
		}

		sessionID := uuid.New().String()
		tr := wsconn.New(ws, logger)
		defer tr.Close()

		eng := newEngine(tr, cfg, m, forward, logger.With(slog.String("session", sessionID)))

		logger.Debug("websocket session established",
			slog.String("session", sessionID),
			slog.String("remote", r.RemoteAddr))

		run := func() error {
			ctx := r.Context()
			for {
				if !tr.WaitReadable(ctx) {
					return ctx.Err()
				}
				for tr.Available() > 0 {
					eng.Read()
				}
			}
		}

		if err := m.ObserveSession(run); err != nil && err != context.Canceled {
			logger.Debug("websocket session ended with error",
				slog.String("session", sessionID),
				slog.String("error", err.Error()))
		}

		logger.Debug("websocket session closed", slog.String("session", sessionID))
	}
}

// openOutput opens the first OS MIDI output port whose name contains
// the given substring, case-insensitively.
func openOutput(name string) (func(gomidi.Message) error, func(), error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize MIDI driver: %w", err)
	}

	outs, err := drv.Outs()
	if err != nil {
		drv.Close()
		return nil, nil, err
	}

	var port drivers.Out
	for _, out := range outs {
		if strings.Contains(strings.ToLower(out.String()), strings.ToLower(name)) {
			port = out
			break
		}
	}
	if port == nil {
		drv.Close()
		return nil, nil, fmt.Errorf("no MIDI output port matching %q", name)
	}

	if err := port.Open(); err != nil {
		drv.Close()
		return nil, nil, err
	}

	send, err := gomidi.SendTo(port)
	if err != nil {
		port.Close()
		drv.Close()
		return nil, nil, err
	}

	closer := func() {
		port.Close()
		drv.Close()
	}
	return send, closer, nil
}

// portMessage re-serializes a decoded message for the OS port. SysEx
// segments carrying continuation markers are skipped: the OS driver
// only accepts whole exclusives.
func portMessage(msg midi.Message) (gomidi.Message, bool) {
	switch {
	case msg.IsChannelMessage():
		status := midi.StatusFrom(msg.Type, msg.Channel)
		if n, _ := msg.Type.DataLength(); n == 1 {
			return gomidi.Message{status, byte(msg.Data1)}, true
		}
		return gomidi.Message{status, byte(msg.Data1), byte(msg.Data2)}, true

	case msg.Type == midi.SystemExclusive:
		data := msg.SysExData
		if len(data) < 2 ||
			data[0] != byte(midi.SystemExclusiveStart) ||
			data[len(data)-1] != byte(midi.SystemExclusiveEnd) {
			return nil, false
		}
		raw := make(gomidi.Message, len(data))
		copy(raw, data)
		return raw, true

	case msg.Type == midi.TimeCodeQuarterFrame, msg.Type == midi.SongSelect:
		return gomidi.Message{byte(msg.Type), byte(msg.Data1)}, true

	case msg.Type == midi.SongPosition:
		return gomidi.Message{byte(msg.Type), byte(msg.Data1), byte(msg.Data2)}, true

	case msg.Type == midi.TuneRequest, msg.Type.IsRealTime():
		return gomidi.Message{byte(msg.Type)}, true
	}

	return nil, false
}

func stopSignalHandler(ctx context.Context, cancel context.CancelFunc, logger *slog.Logger) error {
	c := make(chan os.Signal, 2)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-c:
		logger.Info("received shutdown signal")
		cancel()
		return nil
	case <-ctx.Done():
		return nil
	}
}
