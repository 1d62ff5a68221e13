// state_test.go

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

import "testing"

func TestParseStateLine(t *testing.T) {
	line := "pitch:2;roll:-1;yaw:-45;vgx:12;vgy:0;vgz:-3;templ:69;temph:70;" +
		"tof:10;h:120;bat:87;baro:548.55;time:163;agx:-5.00;agy:0.00;agz:-998.00;\r\n"

	var ds DroneState
	if !ds.parseStateLine(line) {
		t.Fatal("genuine state line not recognised")
	}
	if ds.Pitch != 2 || ds.Roll != -1 || ds.Yaw != -45 {
		t.Errorf("attitude misparsed: %+v", ds)
	}
	if ds.VgX != 12 || ds.VgY != 0 || ds.VgZ != -3 {
		t.Errorf("velocities misparsed: %+v", ds)
	}
	if ds.TempL != 69 || ds.TempH != 70 {
		t.Errorf("temperatures misparsed: %+v", ds)
	}
	if ds.TOF != 10 || ds.Height != 120 || ds.Battery != 87 {
		t.Errorf("ranges misparsed: %+v", ds)
	}
	if ds.Baro != 548.55 {
		t.Errorf("baro %v, want 548.55", ds.Baro)
	}
	if ds.MotorTime != 163 {
		t.Errorf("motor time %d, want 163", ds.MotorTime)
	}
	if ds.AgX != -5 || ds.AgY != 0 || ds.AgZ != -998 {
		t.Errorf("accelerations misparsed: %+v", ds)
	}
}

func TestParseStateLineUnknownKeys(t *testing.T) {
	// newer firmware adds fields we do not know, they must not break parsing
	var ds DroneState
	if !ds.parseStateLine("mid:-1;x:0;y:0;z:0;bat:55;h:30;") {
		t.Fatal("state line with unknown keys not recognised")
	}
	if ds.Battery != 55 || ds.Height != 30 {
		t.Errorf("known fields lost among unknown keys: %+v", ds)
	}
}

func TestParseStateLineBadValue(t *testing.T) {
	ds := DroneState{Battery: 90}
	if !ds.parseStateLine("bat:abc;yaw:12;") {
		t.Fatal("state line with one bad value not recognised")
	}
	if ds.Battery != 90 {
		t.Errorf("unparseable value overwrote battery, now %d", ds.Battery)
	}
	if ds.Yaw != 12 {
		t.Errorf("yaw %d, want 12", ds.Yaw)
	}
}

func TestParseStateLineRejectsOtherText(t *testing.T) {
	for _, text := range []string{"", "ok", "error", "unknown command: flop", "conn_ack:lh"} {
		var ds DroneState
		if ds.parseStateLine(text) {
			t.Errorf("%q was mistaken for a state line", text)
		}
	}
}
