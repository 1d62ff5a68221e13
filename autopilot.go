// autopilot.go

// This file contains simple navigation helpers built on the RC axes.

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
	"errors"
	"time"
)

const autopilotPeriodMs = 25 // how often the autopilot(s) monitor the drone

// CancelFlyToHeight stops any in-flight FlyToHeight navigation.
// The drone should stop moving vertically.
func (tello *Tello) CancelFlyToHeight() {
	tello.autoHeightMu.Lock()
	tello.autoHeight = false
	tello.autoHeightMu.Unlock()
}

// FlyToHeight starts vertical movement to the specified height in
// decimetres. It returns immediately and a goroutine adjusts the throttle
// axis until the reported height matches; the actual transmission rides
// the normal keep-alive cycle. The caller may optionally listen on the
// 'done' channel for a signal that the navigation is complete (it may
// have been cancelled).
func (tello *Tello) FlyToHeight(dm int16) (done chan bool, err error) {
	// are we already navigating?
	tello.autoHeightMu.RLock()
	if tello.autoHeight {
		tello.autoHeightMu.RUnlock()
		return nil, errors.New("already navigating vertically")
	}
	tello.autoHeightMu.RUnlock()

	tello.autoHeightMu.Lock()
	tello.autoHeight = true
	tello.autoHeightMu.Unlock()

	done = make(chan bool, 1) // buffered so send doesn't block

	go func() {
		for {
			// has autoflight been cancelled, or the session ended?
			tello.autoHeightMu.RLock()
			cancelled := !tello.autoHeight
			tello.autoHeightMu.RUnlock()
			if cancelled || tello.Phase() == Disconnected {
				tello.rc.StopUpDown()
				done <- true
				return
			}

			tello.fdMu.RLock()
			delta := dm - tello.fd.Height // positive if we are too low
			tello.fdMu.RUnlock()

			switch {
			case delta > 4:
				tello.rc.GoUpDown(1) // full throttle if >40cm off target
			case delta > 0:
				tello.rc.GoUpDown(0.5) // half throttle if <40cm off target
			case delta < -4:
				tello.rc.GoUpDown(-1)
			case delta < 0:
				tello.rc.GoUpDown(-0.5)
			default:
				// we're there! Cancel...
				tello.autoHeightMu.Lock()
				tello.autoHeight = false
				tello.autoHeightMu.Unlock()
			}

			time.Sleep(autopilotPeriodMs * time.Millisecond)
		}
	}()

	return done, nil
}

// CancelFlyToYaw stops any in-flight FlyToYaw navigation.
// The drone should stop rotating.
func (tello *Tello) CancelFlyToYaw() {
	tello.autoYawMu.Lock()
	tello.autoYaw = false
	tello.autoYawMu.Unlock()
}

// FlyToYaw starts rotational movement to the specified yaw in degrees,
// which must be between -180 and +180. It returns immediately and a
// goroutine adjusts the yaw axis, always turning the shorter way round,
// until the IMU-reported yaw matches. The caller may optionally listen on
// the 'done' channel for a signal that the navigation is complete (it may
// have been cancelled).
func (tello *Tello) FlyToYaw(targetYaw int16) (done chan bool, err error) {
	if targetYaw < -180 || targetYaw > 180 {
		return nil, errors.New("target yaw must be between -180 and +180")
	}

	// are we already navigating?
	tello.autoYawMu.RLock()
	if tello.autoYaw {
		tello.autoYawMu.RUnlock()
		return nil, errors.New("already navigating rotationally")
	}
	tello.autoYawMu.RUnlock()

	tello.autoYawMu.Lock()
	tello.autoYaw = true
	tello.autoYawMu.Unlock()

	done = make(chan bool, 1) // buffered so send doesn't block

	go func() {
		for {
			// has autoflight been cancelled, or the session ended?
			tello.autoYawMu.RLock()
			cancelled := !tello.autoYaw
			tello.autoYawMu.RUnlock()
			if cancelled || tello.Phase() == Disconnected {
				tello.rc.StopTurn()
				done <- true
				return
			}

			tello.fdMu.RLock()
			currentYaw := tello.fd.IMU.Yaw
			tello.fdMu.RUnlock()

			delta := yawDeltaDeg(targetYaw, currentYaw)
			switch {
			case delta > 10:
				tello.rc.Turn(1) // full rate if >10deg off target
			case delta > 0:
				tello.rc.Turn(0.5) // half rate if <10deg off target
			case delta < -10:
				tello.rc.Turn(-1)
			case delta < 0:
				tello.rc.Turn(-0.5)
			default:
				// we're there! Cancel...
				tello.autoYawMu.Lock()
				tello.autoYaw = false
				tello.autoYawMu.Unlock()
			}

			time.Sleep(autopilotPeriodMs * time.Millisecond)
		}
	}()

	return done, nil
}

// yawDeltaDeg returns the signed shortest rotation from current to target,
// in degrees: positive means turn clockwise.
func yawDeltaDeg(target, current int16) int16 {
	delta := target - current
	for delta > 180 {
		delta -= 360
	}
	for delta < -180 {
		delta += 360
	}
	return delta
}
