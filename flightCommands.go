// flightCommands.go

// This file contains the high-level Tello flight command API

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
	"time"
)

// sendPacketCommand encodes and transmits a binary command packet,
// recording it as the outstanding command. The returned channel resolves
// with nil once the drone acknowledges, ErrCommandTimeout once the
// configured retries are spent, or ErrDisconnected if the session ends
// first. While a command is outstanding further commands are refused with
// ErrCommandPending.
func (tello *Tello) sendPacketCommand(pt uint8, messageID uint16, payload []byte) (<-chan error, error) {
	tello.ctrlMu.Lock()
	defer tello.ctrlMu.Unlock()
	if tello.phase < Connected {
		return nil, ErrNotConnected
	}
	if tello.pending != nil {
		return nil, ErrCommandPending
	}

	tello.ctrlSeq++
	pkt := newPacket(pt, messageID, tello.ctrlSeq, len(payload))
	copy(pkt.payload, payload)
	buff := packetToBuffer(pkt)
	if _, err := tello.ctrlConn.Write(buff); err != nil {
		tello.disconnectLocked(err)
		return nil, err
	}
	p := &pendingCommand{
		id:       messageID,
		sequence: tello.ctrlSeq,
		buff:     buff,
		deadline: time.Now().Add(tello.cfg.commandTimeout()),
		done:     make(chan error, 1),
	}
	tello.pending = p
	return p.done, nil
}

// sendHousekeeping transmits a fire-and-forget packet: one that is either
// unacknowledged or whose reply arrives as ordinary telemetry rather than
// as a command acknowledgement, so it is never recorded as outstanding.
func (tello *Tello) sendHousekeeping(pt uint8, messageID uint16, payload []byte) error {
	tello.ctrlMu.Lock()
	defer tello.ctrlMu.Unlock()
	if tello.phase < Connected {
		return ErrNotConnected
	}
	tello.ctrlSeq++
	pkt := newPacket(pt, messageID, tello.ctrlSeq, len(payload))
	copy(pkt.payload, payload)
	if _, err := tello.ctrlConn.Write(packetToBuffer(pkt)); err != nil {
		tello.disconnectLocked(err)
		return err
	}
	return nil
}

// TakeOff sends a normal takeoff request to the Tello. In command mode the
// text verb is used instead of the binary packet.
func (tello *Tello) TakeOff() (<-chan error, error) {
	if tello.Phase() == CommandModeReady {
		return tello.sendTextCommand("takeoff")
	}
	return tello.sendPacketCommand(ptSet, msgDoTakeoff, nil)
}

// ThrowTakeOff initiates a 'throw and go' launch. The drone acknowledges
// the request immediately, not the launch itself.
func (tello *Tello) ThrowTakeOff() (<-chan error, error) {
	return tello.sendPacketCommand(ptGet, msgDoThrowTakeoff, nil)
}

// Land sends a normal Land request to the Tello. In command mode the text
// verb is used instead of the binary packet.
func (tello *Tello) Land() (<-chan error, error) {
	if tello.Phase() == CommandModeReady {
		return tello.sendTextCommand("land")
	}
	return tello.sendPacketCommand(ptSet, msgDoLand, []byte{0})
}

// PalmLand initiates a Palm Landing.
func (tello *Tello) PalmLand() (<-chan error, error) {
	return tello.sendPacketCommand(ptSet, msgDoLand, []byte{1})
}

// Bounce toggles the bouncing mode of the Tello.
func (tello *Tello) Bounce() (<-chan error, error) {
	tello.ctrlMu.Lock()
	var payload byte
	if tello.bouncing {
		payload = 0x31
		tello.bouncing = false
	} else {
		payload = 0x30
		tello.bouncing = true
	}
	tello.ctrlMu.Unlock()
	return tello.sendPacketCommand(ptSet, msgDoBounce, []byte{payload})
}

// Flip performs a flip in the given direction. In command mode only the
// four cardinal directions are available.
func (tello *Tello) Flip(dir FlipType) (<-chan error, error) {
	if tello.Phase() == CommandModeReady {
		var d string
		switch dir {
		case FlipForward:
			d = "f"
		case FlipBackward:
			d = "b"
		case FlipLeft:
			d = "l"
		case FlipRight:
			d = "r"
		default:
			return nil, fmt.Errorf("flip direction %d not available in command mode", dir)
		}
		return tello.sendTextCommand("flip " + d)
	}
	return tello.sendPacketCommand(ptFlip, msgDoFlip, []byte{byte(dir)})
}

// ForwardFlip flips the drone forwards.
func (tello *Tello) ForwardFlip() (<-chan error, error) {
	return tello.Flip(FlipForward)
}

// BackFlip flips the drone backwards.
func (tello *Tello) BackFlip() (<-chan error, error) {
	return tello.Flip(FlipBackward)
}

// LeftFlip flips the drone to the left.
func (tello *Tello) LeftFlip() (<-chan error, error) {
	return tello.Flip(FlipLeft)
}

// RightFlip flips the drone to the right.
func (tello *Tello) RightFlip() (<-chan error, error) {
	return tello.Flip(FlipRight)
}
