// rc_test.go

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

func TestClampAxis(t *testing.T) {
	tests := []struct{ in, want float32 }{
		{0, 0},
		{0.25, 0.25},
		{1, 1},
		{-1, -1},
		{2, 1},
		{-5, -1},
	}
	for _, tc := range tests {
		if got := clampAxis(tc.in); got != tc.want {
			t.Errorf("clampAxis(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestAxisToStick(t *testing.T) {
	tests := []struct {
		in   float32
		want uint64
	}{
		{0, 1024},
		{1, 1684},
		{-1, 364},
		{0.5, 1354},
		{2, 1684}, // clamped
		{-2, 364}, // clamped
	}
	for _, tc := range tests {
		if got := axisToStick(tc.in); got != tc.want {
			t.Errorf("axisToStick(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestStickPayloadCentred(t *testing.T) {
	var rc RCState
	at := time.Date(2018, 5, 4, 10, 30, 25, 123000000, time.UTC)

	pl := rc.stickPayload(false, at)
	if len(pl) != 11 {
		t.Fatalf("payload length %d, want 11", len(pl))
	}
	// all four axes at 1024
	wantAxes := []byte{0x00, 0x04, 0x20, 0x00, 0x01, 0x08}
	for i, b := range wantAxes {
		if pl[i] != b {
			t.Errorf("axis byte %d is %#02x, want %#02x", i, pl[i], b)
		}
	}
	if pl[6] != 10 || pl[7] != 30 || pl[8] != 25 {
		t.Errorf("time bytes % x, want 10 30 25", pl[6:9])
	}
	if pl[9] != 123 || pl[10] != 0 {
		t.Errorf("millisecond bytes % x, want 123 0", pl[9:11])
	}

	// sports mode is one bit above the packed axes
	sports := rc.stickPayload(true, at)
	if sports[5] != 0x18 {
		t.Errorf("sports flag byte %#02x, want 0x18", sports[5])
	}
}

func TestStickPayloadPacking(t *testing.T) {
	var rc RCState
	rc.GoRight()
	rc.GoForwardBack(-0.5)
	rc.GoUp()
	rc.Turn(0.25)

	pl := rc.stickPayload(false, time.Now())
	var packed uint64
	for i := 0; i < 6; i++ {
		packed |= uint64(pl[i]) << (8 * i)
	}

	if got := packed & 0x7ff; got != axisToStick(1) {
		t.Errorf("roll field %d, want %d", got, axisToStick(1))
	}
	if got := (packed >> 11) & 0x7ff; got != axisToStick(-0.5) {
		t.Errorf("pitch field %d, want %d", got, axisToStick(-0.5))
	}
	if got := (packed >> 22) & 0x7ff; got != axisToStick(1) {
		t.Errorf("throttle field %d, want %d", got, axisToStick(1))
	}
	if got := (packed >> 33) & 0x7ff; got != axisToStick(0.25) {
		t.Errorf("yaw field %d, want %d", got, axisToStick(0.25))
	}
	if packed&(1<<44) != 0 {
		t.Error("sports bit set without sports mode")
	}
}

func TestRCCommand(t *testing.T) {
	var rc RCState
	rc.GoLeftRight(-1)
	rc.GoForwardBack(0.5)
	rc.GoUpDown(0)
	rc.Turn(1)

	if got := rc.rcCommand(); got != "rc -100 50 0 100" {
		t.Errorf("rc line %q, want \"rc -100 50 0 100\"", got)
	}

	rc.Stop()
	if got := rc.rcCommand(); got != "rc 0 0 0 0" {
		t.Errorf("rc line after Stop %q", got)
	}
}

func TestUpdateSticks(t *testing.T) {
	drone := new(Tello)
	drone.UpdateSticks(StickMessage{Rx: 32767, Ry: -32767, Lx: 16384, Ly: 0})

	if v := drone.rc.LeftRight(); v != 1 {
		t.Errorf("roll axis %v, want 1", v)
	}
	if v := drone.rc.ForwardBack(); v != -1 {
		t.Errorf("pitch axis %v, want -1", v)
	}
	if v := drone.rc.UpDown(); v != 0 {
		t.Errorf("throttle axis %v, want 0", v)
	}
	if v := drone.rc.TurnLR(); v < 0.49 || v > 0.51 {
		t.Errorf("yaw axis %v, want about 0.5", v)
	}
}

func TestStickListener(t *testing.T) {
	drone := new(Tello)
	ch := drone.StartStickListener()
	ch <- StickMessage{Rx: 32767}
	close(ch)

	deadline := time.Now().Add(time.Second)
	for drone.rc.LeftRight() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("stick message never applied")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestHover(t *testing.T) {
	drone := new(Tello)
	drone.rc.GoForward()
	drone.rc.TurnRight()
	drone.Hover()

	if drone.rc.ForwardBack() != 0 || drone.rc.TurnLR() != 0 ||
		drone.rc.LeftRight() != 0 || drone.rc.UpDown() != 0 {
		t.Error("Hover did not centre all axes")
	}
}
