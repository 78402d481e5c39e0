// Copyright (c) midiwire contributors
// SPDX-License-Identifier: Apache-2.0

// Package midiwire holds the environment-driven configuration shared
// by the midiwire commands.
package midiwire

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/midiwire/midiwire/pkg/midi"
	"github.com/midiwire/midiwire/pkg/thru"
)

// Config is the bridge daemon configuration, populated from the
// environment.
type Config struct {
	// Serial input side.
	SerialDevice string `env:"SERIAL_DEVICE"`
	BaudRate     int    `env:"BAUD_RATE" envDefault:"31250"`

	// Engine behavior. InputChannel 0 means omni.
	InputChannel  int    `env:"INPUT_CHANNEL" envDefault:"0"`
	ThruMode      string `env:"THRU_MODE" envDefault:"full"`
	SysExCapacity int    `env:"SYSEX_CAPACITY" envDefault:"128"`

	// ActiveSensingTimeoutMS arms the receiver watchdog when positive.
	ActiveSensingTimeoutMS int `env:"ACTIVE_SENSING_TIMEOUT_MS" envDefault:"0"`

	// OS MIDI output: substring match on the port name; empty disables
	// the bridge output.
	MIDIOutPort string `env:"MIDI_OUT_PORT"`

	// Optional MIDI-over-TCP listener.
	TCPAddress  string `env:"TCP_ADDRESS"`
	MessageRate int64  `env:"MESSAGE_RATE" envDefault:"1000"`

	// Metrics / health endpoint.
	HTTPAddress string `env:"HTTP_ADDRESS" envDefault:":8946"`
}

// NewConfig parses a Config from the environment.
func NewConfig(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.InputChannel < 0 || c.InputChannel > 17 {
		return fmt.Errorf("input channel %d out of range", c.InputChannel)
	}
	if _, ok := thru.ParseMode(c.ThruMode); !ok {
		return fmt.Errorf("unknown thru mode %q", c.ThruMode)
	}
	return nil
}

// Channel returns the configured listening channel.
func (c Config) Channel() midi.Channel {
	return midi.Channel(c.InputChannel)
}

// Thru returns the configured thru filter mode.
func (c Config) Thru() thru.Mode {
	mode, _ := thru.ParseMode(c.ThruMode)
	return mode
}
