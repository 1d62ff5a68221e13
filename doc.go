/*Package tello provides an unofficial, easy-to-use, standalone API for the Ryze Tello® drone.

Disclaimer

Tello is a registered trademark of Ryze Tech.  The author(s) of this package is/are in no way affiliated with Ryze, DJI, or Intel.
The package has been developed by gathering together information from a variety of sources on the Internet
(especially the generous contributors at  https://tellopilots.com), and by examining data packets sent to/from the Tello.
The package will probably be extended as more knowledge of the drone's protocol is obtained.

Use this package at your own risk.  The author(s) is/are in no way responsible for any damage caused either to or by the
drone when using this software.

Features

The following features have been implemented...
  * Binary-protocol flight commands with per-command acknowledgement tracking, eg. TakeOff(), PalmLand()
  * Text SDK "command mode": metre-scale moves, turns and continuous state reports
  * Stick-based flight control, ie. for joystick, game-, or flight-controller
  * Dead-reckoned odometry integrated from the drone's velocity reports
  * Enriched flight data (some log data is added) for real-time telemetry
  * Video stream support
  * Picture taking/saving
  * Autopilot commands, eg. FlyToHeight(), FlyToYaw()

Concepts

Connection Phases

A session moves through distinct phases: Disconnected, ConnectingVideo (connection requested),
Connected (binary protocol live), CommandModeHandshake and CommandModeReady (text SDK live).
Phases only move forward, except that a socket failure or an explicit Disconnect() returns the
session to Disconnected from anywhere.  Query the current phase with Phase().

Drivers

The session can be driven two ways.  Connect() plus a Poll() loop gives single-threaded
applications complete control: each Poll runs the periodic transmit duty when due and drains at
most one waiting datagram from each socket.  ControlConnect() instead starts background
goroutines servicing the sockets and the keep-alive transmitter; telemetry is then consumed from
the channels returned by StreamMessages(), StreamState() and StreamVideo().  Each of those
receivers can be handed over exactly once.

Commands and Acknowledgements

Command methods such as TakeOff() return a result channel along with an immediate error.  At
most one command is in flight at a time; until it is acknowledged, times out or the session
ends, further commands fail with ErrCommandPending.  The result channel resolves with nil on
acknowledgement, ErrCommandRejected if the drone refuses the command, ErrCommandTimeout once
the configured retries are spent, or ErrDisconnected.

Sticks

The four RC axes live in an RCState (see RC()) and are transmitted continuously by the session
itself; setting an axis only changes what the next cycle sends.  UpdateSticks() and
StartStickListener() feed the axes from raw controller samples.

*/
package tello
