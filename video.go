// video.go

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
	"net"
	"time"
)

// handleVideoDatagram accumulates one chunk of the H.264 stream. Each
// datagram leads with a sequence byte and a sub-sequence byte; bit 7 of
// the sub-sequence marks the final chunk of a frame, at which point the
// reassembled frame is delivered on the video stream (or dropped if the
// receiver has fallen behind).
func (tello *Tello) handleVideoDatagram(buff []byte) {
	if len(buff) < 2 {
		return
	}
	tello.videoBuf = append(tello.videoBuf, buff[2:]...)
	if buff[1]&0x80 == 0 {
		return
	}
	frame := make([]byte, len(tello.videoBuf))
	copy(frame, tello.videoBuf)
	tello.videoBuf = tello.videoBuf[:0]
	tello.pushVideo(frame)
}

// videoResponseListener services the video socket in ControlConnect mode.
func (tello *Tello) videoResponseListener() {
	vbuf := make([]byte, 2048)
	for {
		n, _, err := tello.videoConn.ReadFromUDP(vbuf)
		select {
		case <-tello.videoStopChan:
			log.Debug("video listener stopped")
			return
		default:
		}
		if err != nil {
			if isTimeout(err) {
				continue
			}
			tello.ctrlMu.Lock()
			tello.disconnectLocked(err)
			tello.ctrlMu.Unlock()
			return
		}
		tello.handleVideoDatagram(vbuf[:n])
	}
}

// pollVideo drains at most one waiting datagram from the video socket.
func (tello *Tello) pollVideo(conn *net.UDPConn) error {
	vbuf := make([]byte, 2048)
	conn.SetReadDeadline(time.Now().Add(pollReadWait))
	n, _, err := conn.ReadFromUDP(vbuf)
	if err != nil {
		if isTimeout(err) {
			return nil
		}
		tello.ctrlMu.Lock()
		tello.disconnectLocked(err)
		tello.ctrlMu.Unlock()
		return err
	}
	tello.handleVideoDatagram(vbuf[:n])
	return nil
}

// GetVideoBitrate requests the current video Mbps from the Tello. The
// answer arrives as telemetry and lands in FlightData.VideoBitrate.
func (tello *Tello) GetVideoBitrate() error {
	return tello.sendHousekeeping(ptGet, msgQueryVideoBitrate, nil)
}

// SetVideoBitrate asks the Tello to use the specified bitrate (or auto) for video encoding.
func (tello *Tello) SetVideoBitrate(vbr VBR) error {
	return tello.sendHousekeeping(ptSet, msgSetVideoBitrate, []byte{byte(vbr)})
}

// StartVideo asks the Tello to (re)send the video SPS/PPS headers and
// start streaming. Resend it periodically, around twice a second, or the
// stream stalls.
func (tello *Tello) StartVideo() error {
	tello.ctrlMu.Lock()
	defer tello.ctrlMu.Unlock()
	if tello.phase < Connected {
		return ErrNotConnected
	}
	pkt := newPacket(ptData2, msgQueryVideoSPSPPS, 0, 0) // not sequenced
	if _, err := tello.ctrlConn.Write(packetToBuffer(pkt)); err != nil {
		tello.disconnectLocked(err)
		return err
	}
	return nil
}

// SetVideoNormal requests video format to be (native) ~4:3 ratio.
func (tello *Tello) SetVideoNormal() error {
	return tello.sendHousekeeping(ptSet, msgSwitchPicVideo, []byte{vmNormal})
}

// SetVideoWide requests video format to be (cropped) 16:9 ratio.
func (tello *Tello) SetVideoWide() error {
	return tello.sendHousekeeping(ptSet, msgSwitchPicVideo, []byte{vmWide})
}
