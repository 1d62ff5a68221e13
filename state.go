// state.go

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
	"strconv"
	"strings"
)

// DroneState is one parsed command-mode state line, eg.
//
//	pitch:0;roll:0;yaw:-45;vgx:0;vgy:0;vgz:0;templ:69;temph:70;tof:10;h:120;bat:87;baro:548.55;time:0;agx:-5.00;agy:0.00;agz:-998.00;
//
// Values are stored as reported, without unit conversion.
type DroneState struct {
	Pitch, Roll, Yaw int     // attitude in degrees
	VgX, VgY, VgZ    float64 // velocities
	TempL, TempH     int     // temperature range, degrees C
	TOF              int     // time-of-flight distance
	Height           int
	Battery          int // percent
	Baro             float64
	MotorTime        int
	AgX, AgY, AgZ    float64 // accelerations
}

// parseStateLine folds a semicolon-separated key:value state line into ds,
// reporting whether any recognised field was found. The wire format is
// undocumented and varies between firmware versions, so parsing is lenient:
// unknown keys are skipped and a missing or unparseable value leaves the
// prior field value in place.
func (ds *DroneState) parseStateLine(line string) bool {
	seen := false
	for _, field := range strings.Split(strings.TrimSpace(line), ";") {
		key, val, found := strings.Cut(field, ":")
		if !found {
			continue
		}
		switch key {
		case "pitch":
			intField(&ds.Pitch, val, &seen)
		case "roll":
			intField(&ds.Roll, val, &seen)
		case "yaw":
			intField(&ds.Yaw, val, &seen)
		case "vgx":
			floatField(&ds.VgX, val, &seen)
		case "vgy":
			floatField(&ds.VgY, val, &seen)
		case "vgz":
			floatField(&ds.VgZ, val, &seen)
		case "templ":
			intField(&ds.TempL, val, &seen)
		case "temph":
			intField(&ds.TempH, val, &seen)
		case "tof":
			intField(&ds.TOF, val, &seen)
		case "h":
			intField(&ds.Height, val, &seen)
		case "bat":
			intField(&ds.Battery, val, &seen)
		case "baro":
			floatField(&ds.Baro, val, &seen)
		case "time":
			intField(&ds.MotorTime, val, &seen)
		case "agx":
			floatField(&ds.AgX, val, &seen)
		case "agy":
			floatField(&ds.AgY, val, &seen)
		case "agz":
			floatField(&ds.AgZ, val, &seen)
		}
	}
	return seen
}

func intField(dst *int, val string, seen *bool) {
	if v, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
		*dst = v
		*seen = true
	}
}

func floatField(dst *float64, val string, seen *bool) {
	if v, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
		*dst = v
		*seen = true
	}
}
