// autopilot_test.go

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
	"testing"
	"time"
)

func TestYawDeltaDeg(t *testing.T) {
	tests := []struct {
		target, current, want int16
	}{
		{0, 0, 0},
		{90, 0, 90},
		{-90, 0, -90},
		{179, -179, -2},
		{-179, 179, 2},
		{180, -180, 0},
		{-45, 45, -90},
		{170, -170, -20},
	}
	for _, tc := range tests {
		if got := yawDeltaDeg(tc.target, tc.current); got != tc.want {
			t.Errorf("yawDeltaDeg(%d, %d) = %d, want %d", tc.target, tc.current, got, tc.want)
		}
	}
}

// flyingDrone fakes an airborne session: the autopilots only need a live
// phase and flight data to steer by.
func flyingDrone(heightDm, yawDeg int16) *Tello {
	drone := new(Tello)
	drone.ctrlMu.Lock()
	drone.phase = Connected
	drone.ctrlMu.Unlock()
	drone.fdMu.Lock()
	drone.fd.Height = heightDm
	drone.fd.IMU.Yaw = yawDeg
	drone.fdMu.Unlock()
	return drone
}

func waitForAxis(t *testing.T, what string, axis func() float32, want float32) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if axis() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s, axis at %v want %v", what, axis(), want)
}

func TestFlyToHeight(t *testing.T) {
	drone := flyingDrone(10, 0)

	done, err := drone.FlyToHeight(30)
	if err != nil {
		t.Fatalf("FlyToHeight refused: %v", err)
	}
	if _, err := drone.FlyToHeight(5); err == nil {
		t.Error("second vertical navigation accepted while one is active")
	}

	waitForAxis(t, "full climb", drone.RC().UpDown, 1)

	drone.fdMu.Lock()
	drone.fd.Height = 28
	drone.fdMu.Unlock()
	waitForAxis(t, "half climb", drone.RC().UpDown, 0.5)

	drone.fdMu.Lock()
	drone.fd.Height = 30
	drone.fdMu.Unlock()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("vertical navigation never completed")
	}
	if ud := drone.RC().UpDown(); ud != 0 {
		t.Errorf("throttle axis %v after arrival, want 0", ud)
	}

	// back down, then cancel midway
	done, err = drone.FlyToHeight(20)
	if err != nil {
		t.Fatalf("descent refused: %v", err)
	}
	waitForAxis(t, "full descent", drone.RC().UpDown, -1)
	drone.fdMu.Lock()
	drone.fd.Height = 22
	drone.fdMu.Unlock()
	waitForAxis(t, "half descent", drone.RC().UpDown, -0.5)

	drone.CancelFlyToHeight()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled navigation never completed")
	}
	if ud := drone.RC().UpDown(); ud != 0 {
		t.Errorf("throttle axis %v after cancel, want 0", ud)
	}
}

func TestFlyToYaw(t *testing.T) {
	drone := flyingDrone(10, 170)

	if _, err := drone.FlyToYaw(200); err == nil {
		t.Error("out-of-range target yaw accepted")
	}

	// -170 is 20 degrees clockwise through the 180 wrap
	done, err := drone.FlyToYaw(-170)
	if err != nil {
		t.Fatalf("FlyToYaw refused: %v", err)
	}
	if _, err := drone.FlyToYaw(0); err == nil {
		t.Error("second rotational navigation accepted while one is active")
	}

	waitForAxis(t, "full clockwise", drone.RC().TurnLR, 1)

	drone.fdMu.Lock()
	drone.fd.IMU.Yaw = -175 // 5 degrees to go
	drone.fdMu.Unlock()
	waitForAxis(t, "half clockwise", drone.RC().TurnLR, 0.5)

	drone.fdMu.Lock()
	drone.fd.IMU.Yaw = -170
	drone.fdMu.Unlock()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("rotational navigation never completed")
	}
	if y := drone.RC().TurnLR(); y != 0 {
		t.Errorf("yaw axis %v after arrival, want 0", y)
	}
}

func TestFlyToHeightAndYawConcurrently(t *testing.T) {
	drone := flyingDrone(0, 0)

	hDone, err := drone.FlyToHeight(40)
	if err != nil {
		t.Fatalf("FlyToHeight refused: %v", err)
	}
	yDone, err := drone.FlyToYaw(90)
	if err != nil {
		t.Fatalf("FlyToYaw refused: %v", err)
	}

	waitForAxis(t, "climb", drone.RC().UpDown, 1)
	waitForAxis(t, "clockwise", drone.RC().TurnLR, 1)

	drone.fdMu.Lock()
	drone.fd.Height = 40
	drone.fd.IMU.Yaw = 90
	drone.fdMu.Unlock()

	for i := 0; i < 2; i++ {
		select {
		case <-hDone:
			hDone = nil
		case <-yDone:
			yDone = nil
		case <-time.After(2 * time.Second):
			t.Fatal("a navigation never completed")
		}
	}
}

func TestFlyToHeightEndsWithSession(t *testing.T) {
	drone := new(Tello) // never connected
	done, err := drone.FlyToHeight(10)
	if err != nil {
		t.Fatalf("FlyToHeight refused: %v", err)
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("navigation on a dead session never completed")
	}
}
