// tello package flog.go - handle the flight logs from the drone

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

import "math"

// ackLogHeader confirms receipt of a flight log header; the drone does not
// start sending log records until it is acknowledged.
func (tello *Tello) ackLogHeader(id []byte) {
	tello.ctrlMu.Lock()
	defer tello.ctrlMu.Unlock()
	if tello.phase == Disconnected {
		return
	}
	tello.ctrlSeq++
	pkt := newPacket(ptData1, msgLogHeader, tello.ctrlSeq, 3)
	pkt.payload[1] = id[0]
	pkt.payload[2] = id[1]
	if _, err := tello.ctrlConn.Write(packetToBuffer(pkt)); err != nil {
		tello.disconnectLocked(err)
	}
}

// parseLogPacket walks the log records packed into one flight log message.
// Each record is XOR-obscured with a per-record key carried in its header.
// Only the visual odometry and IMU record types are currently decoded, the
// rest are skipped.
func (tello *Tello) parseLogPacket(data []byte) {
	pos := 1
	if len(data) < 2 {
		return
	}
	for pos < len(data)-6 {
		if data[pos] != logRecordSeparator {
			log.Debug("error parsing log record (bad separator)")
			break
		}
		recLen := int(data[pos+1])
		if data[pos+2] != 0 || recLen < 7 {
			log.Debug("error parsing log record (bad length)")
			break
		}
		logRecType := uint16(data[pos+3]) | uint16(data[pos+4])<<8
		xorVal := data[pos+6]
		xorBuf := make([]byte, recLen)
		for i := 0; i < recLen && pos+i < len(data); i++ {
			xorBuf[i] = data[pos+i] ^ xorVal
		}
		switch logRecType {
		case logRecNewMVO:
			if recLen >= 30 {
				offset := 12
				tello.fdMu.Lock()
				tello.fd.MVO.VelocityX = int16(xorBuf[offset]) | int16(xorBuf[offset+1])<<8
				offset += 2
				tello.fd.MVO.VelocityY = int16(xorBuf[offset]) | int16(xorBuf[offset+1])<<8
				offset += 2
				tello.fd.MVO.VelocityZ = int16(xorBuf[offset]) | int16(xorBuf[offset+1])<<8
				offset += 2
				tello.fd.MVO.PositionX = bytesToFloat32(xorBuf[offset : offset+4])
				offset += 4
				tello.fd.MVO.PositionY = bytesToFloat32(xorBuf[offset : offset+4])
				offset += 4
				tello.fd.MVO.PositionZ = bytesToFloat32(xorBuf[offset : offset+4])
				tello.fdMu.Unlock()
			}
		case logRecIMU:
			if recLen >= 74 {
				offset := 58
				tello.fdMu.Lock()
				tello.fd.IMU.QuaternionW = bytesToFloat32(xorBuf[offset : offset+4])
				offset += 4
				tello.fd.IMU.QuaternionX = bytesToFloat32(xorBuf[offset : offset+4])
				offset += 4
				tello.fd.IMU.QuaternionY = bytesToFloat32(xorBuf[offset : offset+4])
				offset += 4
				tello.fd.IMU.QuaternionZ = bytesToFloat32(xorBuf[offset : offset+4])
				tello.fd.IMU.Yaw = int16(quatToYawDeg(
					tello.fd.IMU.QuaternionX, tello.fd.IMU.QuaternionY,
					tello.fd.IMU.QuaternionZ, tello.fd.IMU.QuaternionW))
				tello.fdMu.Unlock()
			}
		}
		pos += recLen
	}
}

// QuatToEulerDeg converts a quaternion to pitch, roll and yaw in whole
// degrees, following the conventions the drone's IMU uses.
func QuatToEulerDeg(qX, qY, qZ, qW float32) (pitch, roll, yaw int) {
	x, y, z, w := float64(qX), float64(qY), float64(qZ), float64(qW)
	sinP := 2 * (w*y - z*x)
	switch {
	case sinP > 1:
		sinP = 1
	case sinP < -1:
		sinP = -1
	}
	pitch = int(math.Round(math.Asin(sinP) * 180 / math.Pi))
	roll = int(math.Round(math.Atan2(2*(w*x+y*z), 1-2*(x*x+y*y)) * 180 / math.Pi))
	yaw = int(math.Round(math.Atan2(2*(w*z+x*y), 1-2*(y*y+z*z)) * 180 / math.Pi))
	return pitch, roll, yaw
}

// quatToYawDeg extracts just the yaw angle, in whole degrees, from a
// quaternion.
func quatToYawDeg(qX, qY, qZ, qW float32) float64 {
	x, y, z, w := float64(qX), float64(qY), float64(qZ), float64(qW)
	return math.Round(math.Atan2(2*(w*z+x*y), 1-2*(y*y+z*z)) * 180 / math.Pi)
}
