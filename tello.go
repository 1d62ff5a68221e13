// tello.go

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
	"bytes"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"
)

// keepAlivePeriodMs is the transmit cadence. The drone cuts the motors if
// stick updates stop arriving, so the transmitter runs whether or not the
// axes have changed.
const keepAlivePeriodMs = 50

// pollReadWait is how long a single Poll waits on each socket.
const pollReadWait = time.Millisecond

// Phase is the lifecycle stage of a session. Phases only advance, except
// that Disconnected is reachable from anywhere via socket failure or an
// explicit Disconnect.
type Phase byte

// Session phases, in order.
const (
	Disconnected         Phase = iota
	ConnectingVideo            // connection request sent, awaiting the drone's reply
	Connected                  // control channel established, binary protocol active
	CommandModeHandshake       // "command" sent, awaiting acknowledgement
	CommandModeReady           // text SDK active
)

func (p Phase) String() string {
	switch p {
	case Disconnected:
		return "Disconnected"
	case ConnectingVideo:
		return "ConnectingVideo"
	case Connected:
		return "Connected"
	case CommandModeHandshake:
		return "CommandModeHandshake"
	case CommandModeReady:
		return "CommandModeReady"
	}
	return "Invalid"
}

// pendingCommand is the single command awaiting acknowledgement. The raw
// bytes are kept for retransmission on timeout.
type pendingCommand struct {
	text     bool   // text-SDK command rather than a binary packet
	id       uint16 // binary only: message ID the acknowledgement will carry
	verb     string // text only: leading word of the command
	sequence uint16
	buff     []byte
	deadline time.Time
	retries  int
	done     chan error // buffered, resolved exactly once
}

// resolve delivers the command's outcome without blocking.
func (p *pendingCommand) resolve(err error) {
	select {
	case p.done <- err:
	default:
	}
}

func (p *pendingCommand) describe() string {
	if p.text {
		return fmt.Sprintf("command %q", p.verb)
	}
	return fmt.Sprintf("command %#04x", p.id)
}

// Tello holds the current state of a connection to a Tello drone
type Tello struct {
	ctrlMu        sync.RWMutex // this mutex protects the control fields
	ctrlConn      *net.UDPConn
	videoConn     *net.UDPConn
	stateConn     *net.UDPConn
	ctrlStopChan  chan bool
	videoStopChan chan bool
	stateStopChan chan bool
	phase         Phase
	cfg           Config
	ctrlSeq       uint16
	pending       *pendingCommand
	listening     bool // background listeners own the sockets (ControlConnect mode)
	sportsMode    bool // are we in 'sports' (a.k.a. 'Fast') mode?
	bouncing      bool // do we think we are bouncing?
	lastTickAt    time.Time

	rc RCState // no mutex needed, each axis is individually atomic

	fdMu        sync.RWMutex // this mutex protects the telemetry fields
	fd          FlightData   // our private amalgamated store of the latest data
	droneState  DroneState   // latest parsed command-mode state line
	stateSeen   bool
	lastStateAt time.Time
	odo         Odometry

	chanMu         sync.Mutex // guards the one-shot delivery channel handover
	msgChan        chan Message
	msgChanTaken   bool
	stateChan      chan DroneState
	stateChanTaken bool
	videoChan      chan []byte
	videoChanTaken bool

	videoBuf []byte // partially reassembled video frame

	fileMu   sync.Mutex // this mutex protects the media file fields
	files    []fileData
	fileTemp fileInternal

	autoHeightMu sync.RWMutex
	autoHeight   bool
	autoYawMu    sync.RWMutex
	autoYaw      bool
}

func (tello *Tello) ensureConfig() {
	tello.ctrlMu.Lock()
	if tello.cfg.DroneAddr == "" {
		tello.cfg = DefaultConfig()
	}
	tello.ctrlMu.Unlock()
}

// SetConfig replaces the session configuration. It must be called before
// connecting.
func (tello *Tello) SetConfig(cfg Config) error {
	tello.ctrlMu.Lock()
	defer tello.ctrlMu.Unlock()
	if tello.phase != Disconnected {
		return ErrAlreadyConnected
	}
	tello.cfg = cfg
	return nil
}

// Phase returns the current session phase.
func (tello *Tello) Phase() Phase {
	tello.ctrlMu.RLock()
	p := tello.phase
	tello.ctrlMu.RUnlock()
	return p
}

// SetSportsMode sets the drone's fast flight flag, carried in every stick
// update.
func (tello *Tello) SetSportsMode(sports bool) {
	tello.ctrlMu.Lock()
	tello.sportsMode = sports
	tello.ctrlMu.Unlock()
}

// SportsMode returns true if fast flight is set.
func (tello *Tello) SportsMode() bool {
	tello.ctrlMu.RLock()
	s := tello.sportsMode
	tello.ctrlMu.RUnlock()
	return s
}

// Connect opens the control and video sockets and sends the connection
// request. videoPort overrides the configured local video port when
// positive; whichever port actually gets bound is the one advertised to
// the drone. Connect does not wait for a reply: the session sits in
// ConnectingVideo until one arrives, which the caller observes by looping
// on Poll. Use ControlConnect instead to have background goroutines drive
// the session.
func (tello *Tello) Connect(videoPort int) error {
	tello.ensureConfig()
	tello.ctrlMu.Lock()
	defer tello.ctrlMu.Unlock()
	if tello.phase != Disconnected {
		return ErrAlreadyConnected
	}
	if videoPort > 0 {
		tello.cfg.VideoPort = videoPort
	}

	droneAddr, err := net.ResolveUDPAddr("udp", tello.cfg.DroneAddr+":"+strconv.Itoa(tello.cfg.ControlPort))
	if err != nil {
		return err
	}
	localAddr, err := net.ResolveUDPAddr("udp", ":"+strconv.Itoa(tello.cfg.LocalPort))
	if err != nil {
		return err
	}
	tello.ctrlConn, err = net.DialUDP("udp", localAddr, droneAddr)
	if err != nil {
		return err
	}
	videoAddr, err := net.ResolveUDPAddr("udp", ":"+strconv.Itoa(tello.cfg.VideoPort))
	if err != nil {
		tello.ctrlConn.Close()
		return err
	}
	tello.videoConn, err = net.ListenUDP("udp", videoAddr)
	if err != nil {
		tello.ctrlConn.Close()
		return err
	}

	tello.ctrlStopChan = make(chan bool, 2)
	tello.videoStopChan = make(chan bool, 2)
	tello.stateConn = nil // any previous session's state socket is gone
	tello.ctrlSeq = 0
	tello.pending = nil
	tello.lastTickAt = time.Time{}
	tello.videoBuf = tello.videoBuf[:0]

	// say hello to the Tello, advertising whichever video port we actually
	// bound in case the config asked for any free port
	boundVideoPort := uint16(tello.videoConn.LocalAddr().(*net.UDPAddr).Port)
	return tello.sendConnectRequestLocked(boundVideoPort)
}

// sendConnectRequestLocked sends the connection request and moves the
// session into ConnectingVideo. Callers hold ctrlMu.
func (tello *Tello) sendConnectRequestLocked(videoPort uint16) error {
	// the initial connect request is different to the usual packets...
	msgBuff := []byte("conn_req:lh")
	msgBuff[9] = byte(videoPort & 0xff)
	msgBuff[10] = byte(videoPort >> 8)
	tello.phase = ConnectingVideo
	if _, err := tello.ctrlConn.Write(msgBuff); err != nil {
		tello.disconnectLocked(err)
		return err
	}
	return nil
}

// ControlConnect connects to the drone and hands the session over to
// background goroutines: listeners on the control and video sockets plus
// the keep-alive transmitter. It waits for the drone to respond before
// returning. Telemetry is then consumed via the Stream methods; Poll must
// not be used on such a session.
func (tello *Tello) ControlConnect() error {
	if err := tello.Connect(0); err != nil {
		return err
	}
	tello.ctrlMu.Lock()
	tello.listening = true
	tello.ctrlMu.Unlock()
	go tello.controlResponseListener()
	go tello.videoResponseListener()
	go tello.keepAlive()

	// wait up to 3 seconds for the Tello to respond
	for t := 0; t < 10; t++ {
		if tello.Phase() >= Connected {
			return nil
		}
		time.Sleep(333 * time.Millisecond)
	}
	tello.Disconnect()
	return ErrConnectTimeout
}

// Disconnect ends the session. Any command still awaiting acknowledgement
// resolves with ErrDisconnected, the sockets close and the phase returns
// to Disconnected.
func (tello *Tello) Disconnect() {
	tello.ctrlMu.Lock()
	tello.disconnectLocked(nil)
	tello.ctrlMu.Unlock()
}

func (tello *Tello) disconnectLocked(cause error) {
	if tello.phase == Disconnected {
		return
	}
	if cause != nil {
		log.Errorf("disconnecting: %v", cause)
	}
	tello.phase = Disconnected
	tello.listening = false
	if p := tello.pending; p != nil {
		tello.pending = nil
		p.resolve(ErrDisconnected)
	}
	for _, stop := range []chan bool{tello.ctrlStopChan, tello.videoStopChan, tello.stateStopChan} {
		if stop != nil {
			select {
			case stop <- true:
			default:
			}
		}
	}
	if tello.ctrlConn != nil {
		tello.ctrlConn.Close()
	}
	if tello.videoConn != nil {
		tello.videoConn.Close()
	}
	if tello.stateConn != nil {
		tello.stateConn.Close()
	}
}

// Poll drives a session connected with Connect: it runs the periodic
// transmit duty if one is due, then drains at most one waiting datagram
// from each of the video, state and control sockets. The decoded control
// (or state) message is returned if there was one; nil with a nil error
// just means nothing was waiting.
func (tello *Tello) Poll() (*Message, error) {
	tello.ctrlMu.Lock()
	if tello.phase == Disconnected {
		tello.ctrlMu.Unlock()
		return nil, ErrNotConnected
	}
	if tello.listening {
		tello.ctrlMu.Unlock()
		return nil, ErrListenerRunning
	}
	now := time.Now()
	if tello.lastTickAt.IsZero() || now.Sub(tello.lastTickAt) >= keepAlivePeriodMs*time.Millisecond {
		tello.transmitTickLocked(now)
		tello.lastTickAt = now
	}
	if tello.phase == Disconnected { // the tick may have hit a dead socket
		tello.ctrlMu.Unlock()
		return nil, ErrDisconnected
	}
	ctrlConn, stateConn, videoConn := tello.ctrlConn, tello.stateConn, tello.videoConn
	tello.ctrlMu.Unlock()

	if videoConn != nil {
		if err := tello.pollVideo(videoConn); err != nil {
			return nil, err
		}
	}
	var stateMsg *Message
	if stateConn != nil {
		m, err := tello.pollState(stateConn)
		if err != nil {
			return nil, err
		}
		stateMsg = m
	}
	msg, err := tello.pollControl(ctrlConn)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		msg = stateMsg
	}
	return msg, nil
}

func (tello *Tello) pollControl(conn *net.UDPConn) (*Message, error) {
	buff := make([]byte, 4096)
	conn.SetReadDeadline(time.Now().Add(pollReadWait))
	n, err := conn.Read(buff)
	if err != nil {
		if isTimeout(err) {
			return nil, nil
		}
		tello.ctrlMu.Lock()
		tello.disconnectLocked(err)
		tello.ctrlMu.Unlock()
		return nil, err
	}
	return tello.handleControlDatagram(buff[:n]), nil
}

func (tello *Tello) pollState(conn *net.UDPConn) (*Message, error) {
	buff := make([]byte, 1024)
	conn.SetReadDeadline(time.Now().Add(pollReadWait))
	n, _, err := conn.ReadFromUDP(buff)
	if err != nil {
		if isTimeout(err) {
			return nil, nil
		}
		tello.ctrlMu.Lock()
		tello.disconnectLocked(err)
		tello.ctrlMu.Unlock()
		return nil, err
	}
	return tello.handleStateLine(string(bytes.TrimRight(buff[:n], "\x00\r\n"))), nil
}

// controlResponseListener services the control socket in ControlConnect
// mode, pushing every decoded message onto the message stream.
func (tello *Tello) controlResponseListener() {
	buff := make([]byte, 4096)
	for {
		n, err := tello.ctrlConn.Read(buff)
		select {
		case <-tello.ctrlStopChan:
			log.Debug("control listener stopped")
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
		if msg := tello.handleControlDatagram(buff[:n]); msg != nil {
			tello.pushMessage(*msg)
		}
	}
}

// keepAlive runs the transmit duty in ControlConnect mode.
func (tello *Tello) keepAlive() {
	for {
		tello.ctrlMu.Lock()
		if tello.phase == Disconnected || !tello.listening {
			tello.ctrlMu.Unlock()
			return // we've disconnected
		}
		tello.transmitTickLocked(time.Now())
		tello.ctrlMu.Unlock()
		time.Sleep(keepAlivePeriodMs * time.Millisecond)
	}
}

// transmitTickLocked performs one outbound duty cycle: the control vector
// is sent unconditionally on every tick, then an overdue outstanding
// command is retransmitted or, once its retries are spent, timed out.
// Callers hold ctrlMu.
func (tello *Tello) transmitTickLocked(now time.Time) {
	switch tello.phase {
	case Connected, CommandModeHandshake:
		tello.sendStickUpdateLocked(now)
	case CommandModeReady:
		tello.sendRCCommandLocked()
	}

	p := tello.pending
	if p == nil || now.Before(p.deadline) {
		return
	}
	if p.retries < tello.cfg.CommandRetries {
		p.retries++
		p.deadline = now.Add(tello.cfg.commandTimeout())
		log.Debugf("retransmitting %s (attempt %d)", p.describe(), p.retries+1)
		if _, err := tello.ctrlConn.Write(p.buff); err != nil {
			tello.disconnectLocked(err)
		}
		return
	}
	tello.pending = nil
	log.Warnf("%s timed out after %d attempts", p.describe(), p.retries+1)
	p.resolve(ErrCommandTimeout)
}

func (tello *Tello) sendStickUpdateLocked(now time.Time) {
	var pkt packet
	pkt.header = msgHdr
	pkt.toDrone = true
	pkt.packetType = ptData2
	pkt.messageID = msgSetStick
	pkt.sequence = 0 // stick updates are not sequenced
	pkt.payload = tello.rc.stickPayload(tello.sportsMode, now)
	if _, err := tello.ctrlConn.Write(packetToBuffer(pkt)); err != nil {
		tello.disconnectLocked(err)
	}
}

func (tello *Tello) sendRCCommandLocked() {
	if _, err := tello.ctrlConn.Write([]byte(tello.rc.rcCommand())); err != nil {
		tello.disconnectLocked(err)
	}
}

// handleControlDatagram decodes one datagram from the control socket and
// applies it to the session, returning the decoded message, or nil if the
// datagram was dropped as noise.
func (tello *Tello) handleControlDatagram(buff []byte) *Message {
	if len(buff) == 0 {
		return nil
	}
	if buff[0] != msgHdr {
		return tello.handleTextDatagram(buff)
	}
	pkt, err := bufferToPacket(buff)
	if err != nil {
		log.Debugf("dropping %d byte datagram: %v", len(buff), err)
		return nil
	}
	tello.ctrlMu.Lock()
	if tello.phase == ConnectingVideo {
		// any well-formed packet means the drone is talking to us
		tello.phase = Connected
	}
	tello.ctrlMu.Unlock()
	msg := packetToMessage(&pkt)
	tello.applyMessage(&msg)
	return &msg
}

// handleTextDatagram deals with the non-packet traffic on the control
// socket: the connection acknowledgement and, in command mode, the text
// SDK's replies.
func (tello *Tello) handleTextDatagram(buff []byte) *Message {
	text := string(bytes.TrimRight(buff, "\x00\r\n"))

	if strings.HasPrefix(text, "conn_ack:") {
		tello.ctrlMu.Lock()
		if tello.phase == ConnectingVideo {
			tello.phase = Connected
			log.Debugf("conn_ack received, buffer len: %d", len(buff))
		}
		tello.ctrlMu.Unlock()
		msg := Message{Type: MessageResponse, ID: msgConnected, Payload: append([]byte(nil), buff...), Text: text}
		return &msg
	}

	tello.ctrlMu.Lock()
	if tello.phase < CommandModeHandshake {
		tello.ctrlMu.Unlock()
		log.Warnf("unexpected text from Tello <%s>", text)
		return nil
	}
	switch {
	case text == "ok":
		if p := tello.pending; p != nil && p.text {
			tello.pending = nil
			if tello.phase == CommandModeHandshake {
				tello.phase = CommandModeReady
				log.Info("command mode ready")
			}
			p.resolve(nil)
		} else {
			log.Debug("ok from Tello with no text command outstanding")
		}
		tello.ctrlMu.Unlock()
		msg := Message{Type: MessageResponse, Text: text}
		return &msg
	case strings.HasPrefix(text, "error") || strings.HasPrefix(text, "unknown command"):
		if p := tello.pending; p != nil && p.text {
			tello.pending = nil
			if tello.phase == CommandModeHandshake {
				tello.phase = Connected // handshake refused
			}
			p.resolve(ErrCommandRejected)
		}
		tello.ctrlMu.Unlock()
		log.Warnf("Tello rejected command: %s", text)
		msg := Message{Type: MessageResponse, Text: text}
		return &msg
	default:
		tello.ctrlMu.Unlock()
		// some firmware versions emit state lines on the control socket too
		return tello.handleStateLine(text)
	}
}

// applyMessage folds a decoded message into the session: telemetry
// amalgamation, protocol housekeeping and acknowledgement matching.
func (tello *Tello) applyMessage(msg *Message) {
	switch msg.ID {
	case msgFlightStatus:
		if msg.FlightData != nil {
			tello.updateFlightData(msg.FlightData)
		}
	case msgLightStrength:
		tello.fdMu.Lock()
		tello.fd.LightStrength = msg.LightStrength
		tello.fdMu.Unlock()
	case msgWifiStrength:
		tello.fdMu.Lock()
		tello.fd.WifiStrength = msg.WifiStrength
		tello.fd.WifiInterference = msg.WifiInterference
		tello.fdMu.Unlock()
	case msgLogHeader:
		if len(msg.Payload) >= 2 {
			tello.ackLogHeader(msg.Payload[0:2])
		}
	case msgLogData:
		tello.parseLogPacket(msg.Payload)
	case msgSetDateTime:
		tello.sendDateTime()
	case msgQueryVersion:
		if len(msg.Payload) > 1 {
			tello.fdMu.Lock()
			tello.fd.Version = string(msg.Payload[1:])
			tello.fdMu.Unlock()
		}
	case msgQueryVideoBitrate:
		if len(msg.Payload) > 0 {
			tello.fdMu.Lock()
			tello.fd.VideoBitrate = VBR(msg.Payload[0])
			tello.fdMu.Unlock()
		}
	case msgFileSize:
		tello.handleFileSize(msg.Payload)
	case msgFileData:
		tello.handleFileChunk(msg.Payload)
	case msgError1, msgError2:
		tello.fdMu.Lock()
		tello.fd.ErrorState = true
		tello.fdMu.Unlock()
		log.Warnf("error report from Tello: <% x>", msg.Payload)
	}

	if msg.Type == MessageResponse {
		tello.resolveAck(msg)
	}
}

func (tello *Tello) updateFlightData(tmpFd *FlightData) {
	tello.fdMu.Lock()
	// not all fields are sent in every status report...
	tello.fd.Height = tmpFd.Height
	tello.fd.NorthSpeed = tmpFd.NorthSpeed
	tello.fd.EastSpeed = tmpFd.EastSpeed
	tello.fd.VerticalSpeed = tmpFd.VerticalSpeed
	tello.fd.FlyTime = tmpFd.FlyTime
	tello.fd.ImuState = tmpFd.ImuState
	tello.fd.PressureState = tmpFd.PressureState
	tello.fd.DownVisualState = tmpFd.DownVisualState
	tello.fd.PowerState = tmpFd.PowerState
	tello.fd.BatteryState = tmpFd.BatteryState
	tello.fd.GravityState = tmpFd.GravityState
	tello.fd.WindState = tmpFd.WindState
	tello.fd.ImuCalibrationState = tmpFd.ImuCalibrationState
	tello.fd.BatteryPercentage = tmpFd.BatteryPercentage
	tello.fd.DroneFlyTimeLeft = tmpFd.DroneFlyTimeLeft
	tello.fd.BatteryMilliVolts = tmpFd.BatteryMilliVolts
	tello.fd.Flying = tmpFd.Flying
	tello.fd.OnGround = tmpFd.OnGround
	tello.fd.EmOpen = tmpFd.EmOpen
	tello.fd.DroneHover = tmpFd.DroneHover
	tello.fd.OutageRecording = tmpFd.OutageRecording
	tello.fd.BatteryLow = tmpFd.BatteryLow
	tello.fd.BatteryCritical = tmpFd.BatteryCritical
	tello.fd.FactoryMode = tmpFd.FactoryMode
	tello.fd.FlyMode = tmpFd.FlyMode
	tello.fd.ThrowFlyTimer = tmpFd.ThrowFlyTimer
	tello.fd.CameraState = tmpFd.CameraState
	tello.fd.ElectricalMachineryState = tmpFd.ElectricalMachineryState
	tello.fd.FrontIn = tmpFd.FrontIn
	tello.fd.FrontOut = tmpFd.FrontOut
	tello.fd.FrontLSC = tmpFd.FrontLSC
	tello.fd.OverTemp = tmpFd.OverTemp
	tello.fdMu.Unlock()
}

// resolveAck matches an inbound response against the outstanding command.
// Binary responses match on command kind, i.e. message ID; strict
// configurations also require the echoed sequence number to agree.
func (tello *Tello) resolveAck(msg *Message) {
	tello.ctrlMu.Lock()
	defer tello.ctrlMu.Unlock()
	p := tello.pending
	if p == nil {
		if msg.ID != msgConnected {
			log.Debugf("response %#04x with no command outstanding", msg.ID)
		}
		return
	}
	if p.text {
		// a binary connected-response also completes the command-mode handshake
		if p.verb == "command" && msg.ID == msgConnected {
			tello.pending = nil
			if tello.phase == CommandModeHandshake {
				tello.phase = CommandModeReady
			}
			p.resolve(nil)
		}
		return
	}
	if msg.ID != p.id {
		log.Debugf("response %#04x does not match outstanding %s", msg.ID, p.describe())
		return
	}
	if tello.cfg.StrictAckSequence && msg.Sequence != p.sequence {
		log.Debugf("response sequence %d does not match outstanding sequence %d", msg.Sequence, p.sequence)
		return
	}
	tello.pending = nil
	p.resolve(nil)
}

func (tello *Tello) sendDateTime() {
	tello.ctrlMu.Lock()
	defer tello.ctrlMu.Unlock()
	if tello.phase == Disconnected {
		return
	}
	// create the command packet
	var pkt packet

	// populate the command packet fields we need
	pkt.header = msgHdr
	pkt.toDrone = true
	pkt.packetType = ptData1
	pkt.messageID = msgSetDateTime
	tello.ctrlSeq++
	pkt.sequence = tello.ctrlSeq
	pkt.payload = make([]byte, 15)
	pkt.payload[0] = 0

	now := time.Now()
	pkt.payload[1] = byte(now.Year())
	pkt.payload[2] = byte(now.Year() >> 8)
	pkt.payload[3] = byte(int(now.Month()))
	pkt.payload[4] = byte(int(now.Month()) >> 8)
	pkt.payload[5] = byte(now.Day())
	pkt.payload[6] = byte(now.Day() >> 8)
	pkt.payload[7] = byte(now.Hour())
	pkt.payload[8] = byte(now.Hour() >> 8)
	pkt.payload[9] = byte(now.Minute())
	pkt.payload[10] = byte(now.Minute() >> 8)
	pkt.payload[11] = byte(now.Second())
	pkt.payload[12] = byte(now.Second() >> 8)
	ms := now.UnixNano() / 1000000
	pkt.payload[13] = byte(ms)
	pkt.payload[14] = byte(ms >> 8)

	// pack the packet into raw format and calculate CRCs etc.
	buff := packetToBuffer(pkt)

	// send the command packet
	if _, err := tello.ctrlConn.Write(buff); err != nil {
		tello.disconnectLocked(err)
	}
}

// GetFlightData returns the latest amalgamated flight data.
func (tello *Tello) GetFlightData() FlightData {
	tello.fdMu.RLock()
	rfd := tello.fd
	tello.fdMu.RUnlock()
	return rfd
}

// State returns the most recent command-mode state report.
func (tello *Tello) State() DroneState {
	tello.fdMu.RLock()
	ds := tello.droneState
	tello.fdMu.RUnlock()
	return ds
}

// Odometry returns the current dead-reckoned position estimate.
func (tello *Tello) Odometry() Odometry {
	tello.fdMu.RLock()
	odo := tello.odo
	tello.fdMu.RUnlock()
	return odo
}

// ResetOdometry zeroes the dead-reckoned position estimate, eg. after
// repositioning the drone by hand.
func (tello *Tello) ResetOdometry() {
	tello.fdMu.Lock()
	tello.odo = Odometry{}
	tello.fdMu.Unlock()
}

// StreamMessages hands over the receiving side of the decoded-message
// channel, fed by the background control listener in ControlConnect mode.
// The receiver may be taken once per Tello; further calls return
// ErrStreamTaken. The stream never blocks the listener, messages are
// dropped if the receiver falls behind.
func (tello *Tello) StreamMessages() (<-chan Message, error) {
	tello.chanMu.Lock()
	defer tello.chanMu.Unlock()
	if tello.msgChanTaken {
		return nil, ErrStreamTaken
	}
	tello.msgChan = make(chan Message, 10)
	tello.msgChanTaken = true
	return tello.msgChan, nil
}

// StreamState hands over the receiving side of the state-report channel,
// fed as command-mode state lines arrive. The receiver may be taken once
// per Tello; further calls return ErrStreamTaken.
func (tello *Tello) StreamState() (<-chan DroneState, error) {
	tello.chanMu.Lock()
	defer tello.chanMu.Unlock()
	if tello.stateChanTaken {
		return nil, ErrStreamTaken
	}
	tello.stateChan = make(chan DroneState, 10)
	tello.stateChanTaken = true
	return tello.stateChan, nil
}

// StreamVideo hands over the receiving side of the video-frame channel,
// fed with reassembled frames once the stream is started. The receiver
// may be taken once per Tello; further calls return ErrStreamTaken.
func (tello *Tello) StreamVideo() (<-chan []byte, error) {
	tello.chanMu.Lock()
	defer tello.chanMu.Unlock()
	if tello.videoChanTaken {
		return nil, ErrStreamTaken
	}
	tello.videoChan = make(chan []byte, 100)
	tello.videoChanTaken = true
	return tello.videoChan, nil
}

func (tello *Tello) pushMessage(msg Message) {
	tello.chanMu.Lock()
	ch := tello.msgChan
	tello.chanMu.Unlock()
	select { // drop rather than block
	case ch <- msg:
	default:
	}
}

func (tello *Tello) pushState(ds DroneState) {
	tello.chanMu.Lock()
	ch := tello.stateChan
	tello.chanMu.Unlock()
	select {
	case ch <- ds:
	default:
	}
}

func (tello *Tello) pushVideo(frame []byte) {
	tello.chanMu.Lock()
	ch := tello.videoChan
	tello.chanMu.Unlock()
	select {
	case ch <- frame:
	default:
	}
}

func isTimeout(err error) bool {
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}
