// Copyright (c) midiwire contributors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"time"

	"github.com/midiwire/midiwire/pkg/encoder"
	"github.com/midiwire/midiwire/pkg/handler"
	"github.com/midiwire/midiwire/pkg/metrics"
	"github.com/midiwire/midiwire/pkg/midi"
	"github.com/midiwire/midiwire/pkg/parser"
	"github.com/midiwire/midiwire/pkg/thru"
	"github.com/midiwire/midiwire/pkg/transport"
)

// DefaultActiveSensingTimeout is how long the receiver waits for
// traffic after active sensing has been observed once, per the MIDI
// specification's 300 ms convention.
const DefaultActiveSensingTimeout = 300 * time.Millisecond

// Option configures an Engine.
type Option func(*Engine)

// WithInputChannel sets the initial listening channel (default 1).
func WithInputChannel(ch midi.Channel) Option {
	return func(e *Engine) { e.inputChannel = ch }
}

// WithThru sets the initial thru filter mode (default Full, matching
// hardware MIDI-thru behavior).
func WithThru(mode thru.Mode) Option {
	return func(e *Engine) {
		e.thruMode = mode
		e.thruActivated = mode != thru.Off
	}
}

// WithSysExCapacity bounds the parser's exclusive buffer.
func WithSysExCapacity(n int) Option {
	return func(e *Engine) { e.parserOpts = append(e.parserOpts, parser.WithSysExCapacity(n)) }
}

// WithOneByteParsing limits each Read call to consuming one byte.
func WithOneByteParsing() Option {
	return func(e *Engine) { e.parserOpts = append(e.parserOpts, parser.WithOneByteParsing()) }
}

// WithRunningStatus enables send-side running-status compression.
func WithRunningStatus() Option {
	return func(e *Engine) { e.encoderOpts = append(e.encoderOpts, encoder.WithRunningStatus()) }
}

// WithClock replaces the monotonic time source (tests drive this).
func WithClock(c transport.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithMetrics attaches Prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithSenderActiveSensing makes the engine emit an ActiveSensing byte
// whenever nothing has been sent for the given period.
func WithSenderActiveSensing(period time.Duration) Option {
	return func(e *Engine) { e.senderASPeriod = period }
}

// WithReceiverActiveSensing arms the receive watchdog: once active
// sensing has been observed, silence longer than the timeout raises
// the ErrorActiveSensingTimeout bit. A zero timeout selects the
// default 300 ms.
func WithReceiverActiveSensing(timeout time.Duration) Option {
	return func(e *Engine) {
		if timeout == 0 {
			timeout = DefaultActiveSensingTimeout
		}
		e.receiverASEnabled = true
		e.asTimeout = timeout
	}
}

// WithoutNullVelocityRewrite disables the MIDI convention of treating
// a zero-velocity NoteOn as a NoteOff.
func WithoutNullVelocityRewrite() Option {
	return func(e *Engine) { e.nullVelocityRewrite = false }
}

// Engine is a complete polled MIDI endpoint on one transport.
type Engine struct {
	tr  transport.Transport
	asm *parser.Assembler
	enc *encoder.Encoder
	cb  handler.Callbacks

	clock   transport.Clock
	metrics *metrics.Metrics

	parserOpts  []parser.Option
	encoderOpts []encoder.Option

	inputChannel  midi.Channel
	thruActivated bool
	thruMode      thru.Mode

	lastError midi.Errors

	nullVelocityRewrite bool

	senderASPeriod    time.Duration
	receiverASEnabled bool
	asTimeout         time.Duration
	receiverASActive  bool
	lastSent          time.Time
	lastReceived      time.Time
}

// New creates an Engine on the given transport and initializes it as
// begin() would: listening on channel 1 with full thru.
func New(tr transport.Transport, opts ...Option) *Engine {
	e := &Engine{
		tr:                  tr,
		clock:               transport.SystemClock{},
		inputChannel:        1,
		thruActivated:       true,
		thruMode:            thru.Full,
		nullVelocityRewrite: true,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.asm = parser.New(tr, e.parserOpts...)
	e.enc = encoder.New(tr, e.encoderOpts...)
	e.enc.SetSentHook(func() { e.lastSent = e.clock.Now() })
	e.lastSent = e.clock.Now()

	return e
}

// Callbacks exposes the handler registry for slot registration.
func (e *Engine) Callbacks() *handler.Callbacks { return &e.cb }

// Encoder exposes the send path.
func (e *Engine) Encoder() *encoder.Encoder { return e.enc }

// InputChannel returns the current listening channel.
func (e *Engine) InputChannel() midi.Channel { return e.inputChannel }

// SetInputChannel changes the listening channel: 1-16, ChannelOmni to
// listen everywhere, or ChannelOff to disable input entirely.
func (e *Engine) SetInputChannel(ch midi.Channel) { e.inputChannel = ch }

// ThruState reports whether thru mirroring is active.
func (e *Engine) ThruState() bool { return e.thruActivated }

// ThruFilterMode returns the current thru policy.
func (e *Engine) ThruFilterMode() thru.Mode { return e.thruMode }

// TurnThruOn activates mirroring with the given policy.
func (e *Engine) TurnThruOn(mode thru.Mode) {
	e.thruActivated = true
	e.thruMode = mode
}

// TurnThruOff deactivates mirroring.
func (e *Engine) TurnThruOff() {
	e.thruActivated = false
	e.thruMode = thru.Off
}

// SetThruFilterMode changes the policy; Off deactivates mirroring.
func (e *Engine) SetThruFilterMode(mode thru.Mode) {
	e.thruMode = mode
	e.thruActivated = mode != thru.Off
}

// LastError returns the current error accumulator bits.
func (e *Engine) LastError() midi.Errors { return e.lastError }

// Begin resets all receive, send and watchdog state and sets the
// listening channel.
func (e *Engine) Begin(ch midi.Channel) {
	e.inputChannel = ch
	e.asm.Reset()
	e.enc.Reset()
	e.lastError = 0
	e.receiverASActive = false
	e.lastSent = e.clock.Now()
}

// Read runs one cycle of the polling loop: service the active-sensing
// watchdogs, attempt to parse one message, dispatch and mirror it. It
// returns true when a message matching the listening channel was
// dispatched this cycle.
func (e *Engine) Read() bool {
	now := e.clock.Now()

	if e.senderASPeriod > 0 && now.Sub(e.lastSent) > e.senderASPeriod {
		e.enc.SendRealTime(midi.ActiveSensing)
	}

	if e.receiverASEnabled && e.receiverASActive &&
		e.lastReceived.Add(e.asTimeout).Before(now) {
		e.receiverASActive = false
		e.setError(midi.ErrorActiveSensingTimeout)
		if e.metrics != nil {
			e.metrics.ActiveSensingTimeouts.Inc()
		}
	}

	if e.inputChannel == midi.ChannelOff {
		return false
	}

	msg, st := e.asm.TryParseOne()
	switch st {
	case parser.NoData:
		return false
	case parser.NeedMoreData:
		// A clean partial advance clears any previous parse error.
		e.lastError &^= midi.ErrorParse
		return false
	case parser.Failed:
		e.setError(midi.ErrorParse)
		if e.metrics != nil {
			e.metrics.ParseErrors.Inc()
		}
		return false
	}

	e.lastError &^= midi.ErrorParse

	if e.receiverASEnabled {
		if msg.Type == midi.ActiveSensing {
			e.receiverASActive = true
			if e.lastError.Has(midi.ErrorActiveSensingTimeout) {
				e.lastError &^= midi.ErrorActiveSensingTimeout
				e.cb.ReportError(e.lastError)
			}
		}
		if e.receiverASActive {
			e.lastReceived = e.clock.Now()
		}
	}

	if e.nullVelocityRewrite && msg.Type == midi.NoteOn && msg.Data2 == 0 {
		msg.Type = midi.NoteOff
	}

	if e.metrics != nil {
		e.metrics.MessagesParsed.WithLabelValues(msg.Type.String()).Inc()
		if msg.Type == midi.SystemExclusive &&
			msg.SysExData[len(msg.SysExData)-1] == byte(midi.SystemExclusiveStart) {
			e.metrics.SysExChunks.Inc()
		}
	}

	channelMatch := e.accepts(msg)
	if channelMatch {
		e.cb.Dispatch(msg)
	}

	e.thruFilter(msg)

	return channelMatch
}

// accepts implements the input channel filter: system messages always
// pass; channel messages pass on a channel match or in omni mode.
func (e *Engine) accepts(msg midi.Message) bool {
	if !msg.IsChannelMessage() {
		return true
	}
	return msg.Channel == e.inputChannel || e.inputChannel == midi.ChannelOmni
}

func (e *Engine) setError(bit midi.Errors) {
	e.lastError |= bit
	e.cb.ReportError(e.lastError)
}

// thruFilter mirrors a just-received message to the output per the
// configured policy, re-encoding through the send path so thru traffic
// gets its own running-status treatment.
func (e *Engine) thruFilter(msg midi.Message) {
	if !e.thruActivated || e.thruMode == thru.Off {
		return
	}
	if !thru.Decide(msg, e.inputChannel, e.thruMode) {
		return
	}

	forwarded := false
	switch {
	case msg.IsChannelMessage():
		forwarded = e.enc.Send(msg.Type, msg.Data1, msg.Data2, msg.Channel)

	case msg.Type.IsRealTime():
		forwarded = e.enc.SendRealTime(msg.Type)

	case msg.Type == midi.TuneRequest:
		forwarded = e.enc.SendTuneRequest()

	case msg.Type == midi.SystemExclusive:
		// The captured sequence already carries its framing bytes.
		forwarded = e.enc.SendSysEx(msg.SysExData, true)

	case msg.Type == midi.SongSelect:
		forwarded = e.enc.SendSongSelect(msg.Data1)

	case msg.Type == midi.SongPosition:
		forwarded = e.enc.SendSongPosition(msg.SongPositionBeats())

	case msg.Type == midi.TimeCodeQuarterFrame:
		forwarded = e.enc.SendTimeCodeQuarterFrame(msg.Data1)
	}

	if forwarded && e.metrics != nil {
		e.metrics.ThruForwarded.WithLabelValues(msg.Type.String()).Inc()
	}
}
