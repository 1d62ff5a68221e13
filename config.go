// config.go

// Copyright (C) 2018  Steve Merrony

// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.

// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package tello

import (
	"fmt"
	"os"
	"time"

	"github.com/flynn/json5"
)

const (
	defaultTelloAddr        = "192.168.10.1"
	defaultTelloControlPort = 8889
	defaultLocalControlPort = 8800
	defaultLocalVideoPort   = 11111
	defaultLocalStatePort   = 8890
	defaultCommandTimeoutMs = 5000
	defaultCommandRetries   = 2
)

// Config holds the addressing and acknowledgement policy for a session.
// The zero value is not usable, start from DefaultConfig or LoadConfig.
type Config struct {
	DroneAddr   string `json:"droneAddr"`   // drone's network address
	ControlPort int    `json:"controlPort"` // drone's UDP control port
	LocalPort   int    `json:"localPort"`   // local UDP port for the control connection
	VideoPort   int    `json:"videoPort"`   // local UDP port the video stream is requested on
	StatePort   int    `json:"statePort"`   // local UDP port command-mode state arrives on

	CommandTimeoutMs int `json:"commandTimeoutMs"` // how long to wait for an acknowledgement
	CommandRetries   int `json:"commandRetries"`   // resends after the first timeout

	// StrictAckSequence additionally requires acknowledgements to echo the
	// sequence number of the outstanding command. Some firmware versions
	// do not echo sequence numbers faithfully, so this is off by default.
	StrictAckSequence bool `json:"strictAckSequence"`
}

// DefaultConfig returns the stock Tello addressing and acknowledgement policy.
func DefaultConfig() Config {
	return Config{
		DroneAddr:        defaultTelloAddr,
		ControlPort:      defaultTelloControlPort,
		LocalPort:        defaultLocalControlPort,
		VideoPort:        defaultLocalVideoPort,
		StatePort:        defaultLocalStatePort,
		CommandTimeoutMs: defaultCommandTimeoutMs,
		CommandRetries:   defaultCommandRetries,
	}
}

// LoadConfig reads a JSON5 configuration file. Fields absent from the file
// keep their DefaultConfig values.
func LoadConfig(filename string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(filename)
	if err != nil {
		return cfg, err
	}
	if err := json5.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("could not parse config %s: %v", filename, err)
	}
	return cfg, nil
}

func (cfg Config) commandTimeout() time.Duration {
	if cfg.CommandTimeoutMs <= 0 {
		return defaultCommandTimeoutMs * time.Millisecond
	}
	return time.Duration(cfg.CommandTimeoutMs) * time.Millisecond
}
