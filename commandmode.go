// commandmode.go

// This file contains the text-SDK ("command mode") API

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
	"bytes"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// EnableCommandMode switches the drone to its text SDK. It binds the local
// state port, sends the mode-change handshake and moves the session to
// CommandModeHandshake; the returned channel resolves once the drone
// acknowledges and the session reaches CommandModeReady. From then on the
// binary protocol is retired: TakeOff, Land and Flip use their text
// equivalents automatically and the movement verbs below become available.
func (tello *Tello) EnableCommandMode() (<-chan error, error) {
	tello.ctrlMu.Lock()
	defer tello.ctrlMu.Unlock()
	if tello.phase < Connected {
		return nil, ErrNotConnected
	}
	if tello.phase > Connected {
		return nil, ErrAlreadyConnected // command mode already requested
	}
	if tello.pending != nil {
		return nil, ErrCommandPending
	}

	stateAddr, err := net.ResolveUDPAddr("udp", ":"+strconv.Itoa(tello.cfg.StatePort))
	if err != nil {
		return nil, err
	}
	if tello.stateConn != nil {
		tello.stateConn.Close()
	}
	tello.stateConn, err = net.ListenUDP("udp", stateAddr)
	if err != nil {
		return nil, err
	}
	tello.stateStopChan = make(chan bool, 2)

	buff := []byte("command")
	if _, err := tello.ctrlConn.Write(buff); err != nil {
		tello.disconnectLocked(err)
		return nil, err
	}
	tello.phase = CommandModeHandshake
	p := &pendingCommand{
		text:     true,
		verb:     "command",
		buff:     buff,
		deadline: time.Now().Add(tello.cfg.commandTimeout()),
		done:     make(chan error, 1),
	}
	tello.pending = p
	if tello.listening {
		go tello.stateResponseListener()
	}
	return p.done, nil
}

// sendTextCommand transmits one text-SDK command, recording it as the
// outstanding command. An "ok" reply resolves it with nil, an error reply
// with ErrCommandRejected, and the usual retry and timeout rules apply.
func (tello *Tello) sendTextCommand(cmd string) (<-chan error, error) {
	tello.ctrlMu.Lock()
	defer tello.ctrlMu.Unlock()
	if tello.phase != CommandModeReady {
		return nil, ErrNotCommandMode
	}
	if tello.pending != nil {
		return nil, ErrCommandPending
	}

	verb, _, _ := strings.Cut(cmd, " ")
	buff := []byte(cmd)
	if _, err := tello.ctrlConn.Write(buff); err != nil {
		tello.disconnectLocked(err)
		return nil, err
	}
	p := &pendingCommand{
		text:     true,
		verb:     verb,
		buff:     buff,
		deadline: time.Now().Add(tello.cfg.commandTimeout()),
		done:     make(chan error, 1),
	}
	tello.pending = p
	return p.done, nil
}

// Forward moves the drone forward the given number of centimetres, clamped
// to the 20..500 range the firmware accepts. Command mode only.
func (tello *Tello) Forward(cm int) (<-chan error, error) {
	return tello.sendTextCommand(fmt.Sprintf("forward %d", clampInt(cm, 20, 500)))
}

// Back moves the drone backward the given number of centimetres, clamped
// to 20..500. Command mode only.
func (tello *Tello) Back(cm int) (<-chan error, error) {
	return tello.sendTextCommand(fmt.Sprintf("back %d", clampInt(cm, 20, 500)))
}

// Left moves the drone left the given number of centimetres, clamped to
// 20..500. Command mode only.
func (tello *Tello) Left(cm int) (<-chan error, error) {
	return tello.sendTextCommand(fmt.Sprintf("left %d", clampInt(cm, 20, 500)))
}

// Right moves the drone right the given number of centimetres, clamped to
// 20..500. Command mode only.
func (tello *Tello) Right(cm int) (<-chan error, error) {
	return tello.sendTextCommand(fmt.Sprintf("right %d", clampInt(cm, 20, 500)))
}

// Up climbs the given number of centimetres, clamped to 20..500. Command
// mode only.
func (tello *Tello) Up(cm int) (<-chan error, error) {
	return tello.sendTextCommand(fmt.Sprintf("up %d", clampInt(cm, 20, 500)))
}

// Down descends the given number of centimetres, clamped to 20..500.
// Command mode only.
func (tello *Tello) Down(cm int) (<-chan error, error) {
	return tello.sendTextCommand(fmt.Sprintf("down %d", clampInt(cm, 20, 500)))
}

// TurnClockwise rotates clockwise by the given number of degrees, clamped
// to 1..3600. Command mode only.
func (tello *Tello) TurnClockwise(deg int) (<-chan error, error) {
	return tello.sendTextCommand(fmt.Sprintf("cw %d", clampInt(deg, 1, 3600)))
}

// TurnCounterClockwise rotates anticlockwise by the given number of
// degrees, clamped to 1..3600. Command mode only.
func (tello *Tello) TurnCounterClockwise(deg int) (<-chan error, error) {
	return tello.sendTextCommand(fmt.Sprintf("ccw %d", clampInt(deg, 1, 3600)))
}

// SetSpeed sets the cruise speed in cm/s, clamped to 10..100. Command mode
// only.
func (tello *Tello) SetSpeed(cms int) (<-chan error, error) {
	return tello.sendTextCommand(fmt.Sprintf("speed %d", clampInt(cms, 10, 100)))
}

// Emergency cuts the motors immediately. Command mode only.
func (tello *Tello) Emergency() (<-chan error, error) {
	return tello.sendTextCommand("emergency")
}

// StreamOn asks the drone to start the SDK video stream. Command mode
// only; see StartVideo for the binary protocol equivalent.
func (tello *Tello) StreamOn() (<-chan error, error) {
	return tello.sendTextCommand("streamon")
}

// StreamOff asks the drone to stop the SDK video stream. Command mode only.
func (tello *Tello) StreamOff() (<-chan error, error) {
	return tello.sendTextCommand("streamoff")
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// stateResponseListener services the state socket in ControlConnect mode.
func (tello *Tello) stateResponseListener() {
	buff := make([]byte, 1024)
	for {
		n, _, err := tello.stateConn.ReadFromUDP(buff)
		select {
		case <-tello.stateStopChan:
			log.Debug("state listener stopped")
			return
		default:
		}
		if err != nil {
			if isTimeout(err) {
				continue
			}
			tello.ctrlMu.Lock()
			tello.disconnectLocked(err)
			tello.ctrlMu.Unlock()
			return
		}
		tello.handleStateLine(string(bytes.TrimRight(buff[:n], "\x00\r\n")))
	}
}

// handleStateLine parses one command-mode state report, folds it into the
// session state and the odometry estimate, and delivers it on the state
// stream. Returns nil when the text is not recognisable as a state line.
func (tello *Tello) handleStateLine(text string) *Message {
	tello.fdMu.Lock()
	ds := tello.droneState
	if !ds.parseStateLine(text) {
		tello.fdMu.Unlock()
		log.Debugf("ignoring text from Tello <%s>", text)
		return nil
	}
	now := time.Now()
	if tello.stateSeen {
		prev := tello.droneState
		tello.odo.integrate(&prev, &ds, now.Sub(tello.lastStateAt))
	} else {
		tello.odo.integrate(nil, &ds, 0)
		tello.stateSeen = true
	}
	tello.droneState = ds
	tello.lastStateAt = now
	tello.fdMu.Unlock()

	tello.pushState(ds)
	msg := Message{Type: MessageData, State: &ds, Text: text}
	return &msg
}
