// odometry.go

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
	"math"
	"time"
)

// Odometry is a dead-reckoning estimate of the drone's position relative to
// where state reporting began. It is integrated from the ground velocities
// the drone reports in command mode, so it accumulates drift and is only as
// frequent as the state lines themselves. X and Y are in the horizontal
// plane of the initial heading, Z is vertical, all in the units the drone
// reports velocity in (cm) since velocities arrive in cm/s.
type Odometry struct {
	X, Y, Z float64
	Yaw     float64 // heading in radians
}

// integrate advances the estimate by one state sample. The displacement
// since prev is each velocity scaled by the elapsed time, rotated from the
// drone's body frame into the world frame by the current heading. The
// heading itself is not integrated, it is replaced by the yaw the drone
// reports. On the first sample prev is nil and only the heading is taken,
// there is no interval to integrate over yet.
func (odo *Odometry) integrate(prev, cur *DroneState, elapsed time.Duration) {
	if prev != nil {
		dt := elapsed.Seconds()
		dx := cur.VgX * dt
		dy := cur.VgY * dt
		odo.X += dx*math.Cos(odo.Yaw) - dy*math.Sin(odo.Yaw)
		odo.Y += dx*math.Sin(odo.Yaw) + dy*math.Cos(odo.Yaw)
		odo.Z += cur.VgZ * dt
	}
	odo.Yaw = float64(cur.Yaw) / 180 * math.Pi
}
