// errors.go

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

import "errors"

// Errors returned by the package. Compare with errors.Is.
var (
	// ErrPacketTooShort is returned when a buffer is smaller than the minimum raw packet.
	ErrPacketTooShort = errors.New("packet too short")

	// ErrMalformedPacket is returned when a buffer does not parse as a Tello packet
	// (bad header byte or a declared size that disagrees with the buffer).
	ErrMalformedPacket = errors.New("malformed packet")

	// ErrChecksumMismatch is returned when a received packet fails either CRC check.
	ErrChecksumMismatch = errors.New("checksum mismatch")

	// ErrNotConnected is returned when an operation needs an established connection.
	ErrNotConnected = errors.New("not connected to Tello")

	// ErrAlreadyConnected is returned by a connect call on a live session.
	ErrAlreadyConnected = errors.New("already connected to Tello")

	// ErrCommandPending is returned when a command is issued while another is
	// still awaiting its acknowledgement.
	ErrCommandPending = errors.New("another command is awaiting acknowledgement")

	// ErrCommandTimeout resolves a command whose retries are exhausted with no ack.
	ErrCommandTimeout = errors.New("command timed out awaiting acknowledgement")

	// ErrCommandRejected resolves a command the drone answered with an error reply.
	ErrCommandRejected = errors.New("command rejected by Tello")

	// ErrDisconnected resolves any command still pending when the session ends.
	ErrDisconnected = errors.New("disconnected from Tello")

	// ErrNotCommandMode is returned by text-SDK commands outside command mode.
	ErrNotCommandMode = errors.New("drone is not in command mode")

	// ErrStreamTaken is returned when a delivery channel has already been handed over.
	ErrStreamTaken = errors.New("stream receiver already taken")

	// ErrConnectTimeout is returned by ControlConnect when the drone never responds.
	ErrConnectTimeout = errors.New("timeout waiting for response to connection request from Tello")

	// ErrListenerRunning is returned by Poll on a session driven by background listeners.
	ErrListenerRunning = errors.New("session is driven by background listeners")
)
