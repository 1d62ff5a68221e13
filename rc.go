// rc.go

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
	"math"
	"sync/atomic"
	"time"
)

// RCState is the continuously transmitted four-axis control vector. Each
// axis is normalised to the range -1.0 .. +1.0 and held as atomic float
// bits, so input handlers may update axes while the transmitter reads them
// without any locking. Setting an axis to a value it already holds is
// harmless, the vector is resent on every transmit cycle regardless.
type RCState struct {
	leftRight   uint32
	forwardBack uint32
	upDown      uint32
	turn        uint32
}

func clampAxis(v float32) float32 {
	switch {
	case v > 1:
		return 1
	case v < -1:
		return -1
	}
	return v
}

func storeAxis(axis *uint32, v float32) {
	atomic.StoreUint32(axis, math.Float32bits(clampAxis(v)))
}

func loadAxis(axis *uint32) float32 {
	return math.Float32frombits(atomic.LoadUint32(axis))
}

// GoLeftRight sets the roll axis, -1.0 is full left, +1.0 full right.
func (rc *RCState) GoLeftRight(v float32) { storeAxis(&rc.leftRight, v) }

// GoLeft applies full left roll.
func (rc *RCState) GoLeft() { rc.GoLeftRight(-1) }

// GoRight applies full right roll.
func (rc *RCState) GoRight() { rc.GoLeftRight(1) }

// StopLeftRight centres the roll axis.
func (rc *RCState) StopLeftRight() { rc.GoLeftRight(0) }

// GoForwardBack sets the pitch axis, -1.0 is full backward, +1.0 full forward.
func (rc *RCState) GoForwardBack(v float32) { storeAxis(&rc.forwardBack, v) }

// GoForward applies full forward pitch.
func (rc *RCState) GoForward() { rc.GoForwardBack(1) }

// GoBack applies full backward pitch.
func (rc *RCState) GoBack() { rc.GoForwardBack(-1) }

// StopForwardBack centres the pitch axis.
func (rc *RCState) StopForwardBack() { rc.GoForwardBack(0) }

// GoUpDown sets the throttle axis, -1.0 is full descent, +1.0 full climb.
func (rc *RCState) GoUpDown(v float32) { storeAxis(&rc.upDown, v) }

// GoUp applies full climb.
func (rc *RCState) GoUp() { rc.GoUpDown(1) }

// GoDown applies full descent.
func (rc *RCState) GoDown() { rc.GoUpDown(-1) }

// StopUpDown centres the throttle axis.
func (rc *RCState) StopUpDown() { rc.GoUpDown(0) }

// Turn sets the yaw axis, -1.0 is full anticlockwise, +1.0 full clockwise.
func (rc *RCState) Turn(v float32) { storeAxis(&rc.turn, v) }

// TurnLeft applies full anticlockwise yaw.
func (rc *RCState) TurnLeft() { rc.Turn(-1) }

// TurnRight applies full clockwise yaw.
func (rc *RCState) TurnRight() { rc.Turn(1) }

// StopTurn centres the yaw axis.
func (rc *RCState) StopTurn() { rc.Turn(0) }

// Stop centres all four axes, i.e. hover in place.
func (rc *RCState) Stop() {
	rc.StopLeftRight()
	rc.StopForwardBack()
	rc.StopUpDown()
	rc.StopTurn()
}

// LeftRight returns the current roll axis value.
func (rc *RCState) LeftRight() float32 { return loadAxis(&rc.leftRight) }

// ForwardBack returns the current pitch axis value.
func (rc *RCState) ForwardBack() float32 { return loadAxis(&rc.forwardBack) }

// UpDown returns the current throttle axis value.
func (rc *RCState) UpDown() float32 { return loadAxis(&rc.upDown) }

// TurnLR returns the current yaw axis value.
func (rc *RCState) TurnLR() float32 { return loadAxis(&rc.turn) }

// axisToStick converts a normalised axis value to the 11-bit stick range
// the drone expects, 364..1684 centred on 1024.
func axisToStick(v float32) uint64 {
	return uint64(1024+660*clampAxis(v)) & 0x07ff
}

// stickPayload packs the four axes and the sports-mode flag into the
// 11-byte payload of a stick update packet. The axes are 11-bit fields
// packed low-to-high as roll, pitch, throttle, yaw, with sports mode as a
// single bit above them, followed by a wall-clock timestamp.
func (rc *RCState) stickPayload(sportsMode bool, now time.Time) []byte {
	packedAxes := axisToStick(rc.LeftRight())
	packedAxes |= axisToStick(rc.ForwardBack()) << 11
	packedAxes |= axisToStick(rc.UpDown()) << 22
	packedAxes |= axisToStick(rc.TurnLR()) << 33
	if sportsMode {
		packedAxes |= 1 << 44
	}
	pl := make([]byte, 11)
	pl[0] = byte(packedAxes)
	pl[1] = byte(packedAxes >> 8)
	pl[2] = byte(packedAxes >> 16)
	pl[3] = byte(packedAxes >> 24)
	pl[4] = byte(packedAxes >> 32)
	pl[5] = byte(packedAxes >> 40)
	pl[6] = byte(now.Hour())
	pl[7] = byte(now.Minute())
	pl[8] = byte(now.Second())
	ms := now.Nanosecond() / 1000000
	pl[9] = byte(ms & 0xff)
	pl[10] = byte(ms >> 8)
	return pl
}

// rcCommand renders the axes as a command-mode rc line, each scaled to the
// -100..100 range the text SDK expects.
func (rc *RCState) rcCommand() string {
	return fmt.Sprintf("rc %d %d %d %d",
		int(rc.LeftRight()*100),
		int(rc.ForwardBack()*100),
		int(rc.UpDown()*100),
		int(rc.TurnLR()*100))
}

// RC returns the session's control vector for direct axis manipulation.
func (tello *Tello) RC() *RCState {
	return &tello.rc
}

// Hover centres all stick axes so the drone holds position.
func (tello *Tello) Hover() {
	tello.rc.Stop()
}

// UpdateSticks feeds a raw four-axis sample, eg. from a physical game
// controller, into the control vector. Full deflection on the int16 range
// maps to full deflection on each axis.
func (tello *Tello) UpdateSticks(sm StickMessage) {
	tello.rc.GoLeftRight(float32(sm.Rx) / 32767)
	tello.rc.GoForwardBack(float32(sm.Ry) / 32767)
	tello.rc.GoUpDown(float32(sm.Ly) / 32767)
	tello.rc.Turn(float32(sm.Lx) / 32767)
}

// StartStickListener starts a goroutine which processes StickMessages
// from the returned channel until the channel is closed.
func (tello *Tello) StartStickListener() chan<- StickMessage {
	sChan := make(chan StickMessage, 10)
	go func() {
		for sm := range sChan {
			tello.UpdateSticks(sm)
		}
	}()
	return sChan
}
