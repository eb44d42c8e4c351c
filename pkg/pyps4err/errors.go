// Package pyps4err defines the sentinel error kinds shared across the
// discovery, credential, session and console packages. Callers should
// match them with errors.Is since most are returned wrapped with
// additional context.
package pyps4err

import "errors"

var (
	// ErrNotReady is returned when a command is issued to a console that
	// is in standby or unreachable and the caller refused queueing.
	ErrNotReady = errors.New("pyps4go: console not ready")

	// ErrLoginFailed is returned when the login frame's reply byte is not
	// in the success set {0x00, 0x11}.
	ErrLoginFailed = errors.New("pyps4go: login failed")

	// ErrUnknownButton is returned when RemoteControl is called with a
	// button name outside the fixed opcode map.
	ErrUnknownButton = errors.New("pyps4go: unknown remote control button")

	// ErrCredentialTimeout is returned when the credential-capture server
	// reaches its deadline without receiving a WAKEUP datagram.
	ErrCredentialTimeout = errors.New("pyps4go: credential capture timed out")

	// ErrUnknownDDPResponse is returned when a datagram parses as DDP but
	// matches no known verb or status form.
	ErrUnknownDDPResponse = errors.New("pyps4go: unrecognized DDP response")

	// ErrPSDataIncomplete is returned by the cover-art collaborator (out of
	// core scope) when a malformed record is returned by the PlayStation
	// Store. The core never produces or consumes this error itself.
	ErrPSDataIncomplete = errors.New("pyps4go: incomplete PlayStation Store data")
)
