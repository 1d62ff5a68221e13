// commandmode_test.go

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
	"math"
	"net"
	"testing"
	"time"
)

// commandModeDrone walks a session all the way to CommandModeReady.
func commandModeDrone(t *testing.T, f *fakeDrone) *Tello {
	t.Helper()
	drone := connectedDrone(t, f, f.config())
	done, err := drone.EnableCommandMode()
	if err != nil {
		t.Fatalf("EnableCommandMode failed: %v", err)
	}
	text, addr := f.expectText(time.Second)
	if text != "command" {
		t.Fatalf("handshake sent %q, want \"command\"", text)
	}
	f.send(addr, []byte("ok"))
	if err := resolveWithin(t, drone, done, time.Second); err != nil {
		t.Fatalf("handshake resolved with %v", err)
	}
	if drone.Phase() != CommandModeReady {
		t.Fatalf("phase %s after handshake, want CommandModeReady", drone.Phase())
	}
	return drone
}

func TestEnableCommandMode(t *testing.T) {
	f := newFakeDrone(t)
	defer f.conn.Close()

	unconnected := new(Tello)
	if _, err := unconnected.EnableCommandMode(); !errors.Is(err, ErrNotConnected) {
		t.Errorf("EnableCommandMode before Connect returned %v, want ErrNotConnected", err)
	}

	drone := connectedDrone(t, f, f.config())
	defer drone.Disconnect()

	done, err := drone.EnableCommandMode()
	if err != nil {
		t.Fatalf("EnableCommandMode failed: %v", err)
	}
	if drone.Phase() != CommandModeHandshake {
		t.Errorf("phase %s, want CommandModeHandshake", drone.Phase())
	}
	if _, err := drone.EnableCommandMode(); !errors.Is(err, ErrAlreadyConnected) {
		t.Errorf("second EnableCommandMode returned %v, want ErrAlreadyConnected", err)
	}
	// movement verbs need the handshake to finish first
	if _, err := drone.Forward(50); !errors.Is(err, ErrNotCommandMode) {
		t.Errorf("Forward during handshake returned %v, want ErrNotCommandMode", err)
	}

	text, addr := f.expectText(time.Second)
	if text != "command" {
		t.Fatalf("handshake sent %q, want \"command\"", text)
	}
	f.send(addr, []byte("ok"))
	if err := resolveWithin(t, drone, done, time.Second); err != nil {
		t.Fatalf("handshake resolved with %v", err)
	}
	if drone.Phase() != CommandModeReady {
		t.Errorf("phase %s, want CommandModeReady", drone.Phase())
	}
}

func TestCommandModeRefused(t *testing.T) {
	f := newFakeDrone(t)
	defer f.conn.Close()
	drone := connectedDrone(t, f, f.config())
	defer drone.Disconnect()

	done, err := drone.EnableCommandMode()
	if err != nil {
		t.Fatalf("EnableCommandMode failed: %v", err)
	}
	_, addr := f.expectText(time.Second)
	f.send(addr, []byte("unknown command: command"))

	err = resolveWithin(t, drone, done, time.Second)
	if !errors.Is(err, ErrCommandRejected) {
		t.Errorf("refused handshake resolved with %v, want ErrCommandRejected", err)
	}
	// the session stays usable on the binary protocol
	if drone.Phase() != Connected {
		t.Errorf("phase %s after refusal, want Connected", drone.Phase())
	}
}

func TestTextCommands(t *testing.T) {
	f := newFakeDrone(t)
	defer f.conn.Close()
	drone := commandModeDrone(t, f)
	defer drone.Disconnect()

	tests := []struct {
		name string
		call func() (<-chan error, error)
		want string
	}{
		{"forward clamped up", func() (<-chan error, error) { return drone.Forward(5) }, "forward 20"},
		{"back clamped down", func() (<-chan error, error) { return drone.Back(9000) }, "back 500"},
		{"up passthrough", func() (<-chan error, error) { return drone.Up(150) }, "up 150"},
		{"down passthrough", func() (<-chan error, error) { return drone.Down(20) }, "down 20"},
		{"left passthrough", func() (<-chan error, error) { return drone.Left(40) }, "left 40"},
		{"right passthrough", func() (<-chan error, error) { return drone.Right(40) }, "right 40"},
		{"cw clamped", func() (<-chan error, error) { return drone.TurnClockwise(9999) }, "cw 3600"},
		{"ccw floor", func() (<-chan error, error) { return drone.TurnCounterClockwise(0) }, "ccw 1"},
		{"speed clamped", func() (<-chan error, error) { return drone.SetSpeed(500) }, "speed 100"},
		{"emergency", func() (<-chan error, error) { return drone.Emergency() }, "emergency"},
		{"streamon", func() (<-chan error, error) { return drone.StreamOn() }, "streamon"},
		{"streamoff", func() (<-chan error, error) { return drone.StreamOff() }, "streamoff"},
		{"takeoff verb", func() (<-chan error, error) { return drone.TakeOff() }, "takeoff"},
		{"land verb", func() (<-chan error, error) { return drone.Land() }, "land"},
		{"flip verb", func() (<-chan error, error) { return drone.Flip(FlipLeft) }, "flip l"},
	}
	for _, tc := range tests {
		done, err := tc.call()
		if err != nil {
			t.Fatalf("%s: refused: %v", tc.name, err)
		}
		text, addr := f.expectText(time.Second)
		if text != tc.want {
			t.Errorf("%s: sent %q, want %q", tc.name, text, tc.want)
		}
		f.send(addr, []byte("ok"))
		if err := resolveWithin(t, drone, done, time.Second); err != nil {
			t.Fatalf("%s: resolved with %v", tc.name, err)
		}
	}

	// the diagonal flips have no text equivalent
	if _, err := drone.Flip(FlipForwardLeft); err == nil {
		t.Error("diagonal flip accepted in command mode")
	}
}

func TestTextCommandRejected(t *testing.T) {
	f := newFakeDrone(t)
	defer f.conn.Close()
	drone := commandModeDrone(t, f)
	defer drone.Disconnect()

	done, err := drone.Forward(100)
	if err != nil {
		t.Fatalf("Forward refused: %v", err)
	}

	// one outstanding command at a time, text or binary
	if _, err := drone.Right(50); !errors.Is(err, ErrCommandPending) {
		t.Errorf("second text command returned %v, want ErrCommandPending", err)
	}

	_, addr := f.expectText(time.Second)
	f.send(addr, []byte("error Motor stop"))

	err = resolveWithin(t, drone, done, time.Second)
	if !errors.Is(err, ErrCommandRejected) {
		t.Errorf("rejected command resolved with %v, want ErrCommandRejected", err)
	}
}

func TestRCLineTransmitted(t *testing.T) {
	f := newFakeDrone(t)
	defer f.conn.Close()
	drone := commandModeDrone(t, f)
	defer drone.Disconnect()

	drone.RC().GoForward()

	want := "rc 0 100 0 0"
	deadline := time.Now().Add(2 * time.Second)
	buff := make([]byte, 256)
	for time.Now().Before(deadline) {
		if _, err := drone.Poll(); err != nil {
			t.Fatalf("poll failed: %v", err)
		}
		f.conn.SetReadDeadline(time.Now().Add(5 * time.Millisecond))
		n, _, err := f.conn.ReadFromUDP(buff)
		if err != nil {
			continue
		}
		if n > 0 && string(buff[:n]) == want {
			return
		}
	}
	t.Fatalf("no %q line transmitted", want)
}

func TestStateLineFlow(t *testing.T) {
	f := newFakeDrone(t)
	defer f.conn.Close()
	drone := commandModeDrone(t, f)
	defer drone.Disconnect()

	states, err := drone.StreamState()
	if err != nil {
		t.Fatalf("StreamState failed: %v", err)
	}

	statePort := drone.stateConn.LocalAddr().(*net.UDPAddr).Port
	stateAddr := &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: statePort}
	line := "pitch:1;roll:0;yaw:90;vgx:0;vgy:0;vgz:0;templ:60;temph:62;" +
		"tof:10;h:40;bat:78;baro:163.10;time:12;agx:0.00;agy:0.00;agz:-999.00;\r\n"
	f.send(stateAddr, []byte(line))

	pollUntil(t, drone, "state line", func(msg *Message) bool {
		return msg != nil && msg.State != nil
	}, time.Second)

	ds := drone.State()
	if ds.Battery != 78 || ds.Height != 40 || ds.Yaw != 90 {
		t.Errorf("state misparsed: %+v", ds)
	}

	select {
	case got := <-states:
		if got.Battery != 78 {
			t.Errorf("streamed state misparsed: %+v", got)
		}
	default:
		t.Error("state report not delivered on the stream")
	}
}

func TestStateOdometry(t *testing.T) {
	f := newFakeDrone(t)
	defer f.conn.Close()
	drone := commandModeDrone(t, f)
	defer drone.Disconnect()

	statePort := drone.stateConn.LocalAddr().(*net.UDPAddr).Port
	stateAddr := &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: statePort}
	line := []byte("pitch:0;roll:0;yaw:90;vgx:100;vgy:0;vgz:0;bat:90;")

	// the first sample fixes the heading, there is nothing to integrate yet
	f.send(stateAddr, line)
	pollUntil(t, drone, "first state line", func(msg *Message) bool {
		return msg != nil && msg.State != nil
	}, time.Second)

	odo := drone.Odometry()
	if odo.X != 0 || odo.Y != 0 || odo.Z != 0 {
		t.Errorf("first state sample moved the estimate: %+v", odo)
	}
	if math.Abs(odo.Yaw-math.Pi/2) > 1e-9 {
		t.Errorf("heading %v, want pi/2", odo.Yaw)
	}

	time.Sleep(20 * time.Millisecond)
	f.send(stateAddr, line)
	pollUntil(t, drone, "second state line", func(msg *Message) bool {
		return msg != nil && msg.State != nil
	}, time.Second)

	// heading 90 degrees: the forward velocity integrates into world Y
	odo = drone.Odometry()
	if odo.Y <= 0 {
		t.Errorf("Y did not advance: %+v", odo)
	}
	if math.Abs(odo.X) > 1e-6 {
		t.Errorf("X drifted: %+v", odo)
	}

	drone.ResetOdometry()
	if o := drone.Odometry(); o != (Odometry{}) {
		t.Errorf("reset left %+v", o)
	}
}
