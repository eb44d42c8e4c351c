// Package session implements the per-console TCP control connection:
// pre-connect LAUNCH nudge, hello/handshake, login, the framed read loop
// with heartbeat ack and watchdog, and the remote-control micro-sequencing
// (spec.md §4.5, §4.6). It mirrors shadowmesh's connection manager shape
// (state enum, read/heartbeat goroutines, channel-based reply matching)
// adapted from a WebSocket relay connection to a binary AES-framed one.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ps4golib/pyps4go/pkg/ddp"
	"github.com/ps4golib/pyps4go/pkg/frame"
	"github.com/ps4golib/pyps4go/pkg/pyps4err"
)

// DefaultHeartbeatTimeout is how long the session waits for a heartbeat
// frame before force-closing the connection.
const DefaultHeartbeatTimeout = 15 * time.Second

// replyFrameSize is the wire size of every encrypted frame the session
// reads: the login reply, standby/start-title acks, and the heartbeat
// literal are all header(8) + payload(8) bytes.
const replyFrameSize = frame.HeaderSize + 8

// ControlPort is the TCP port the console's control protocol listens on.
const ControlPort = 997

// State is the lifecycle state of a Session.
type State int

const (
	StateConnecting State = iota
	StateHandshaking
	StateLoggedIn
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "Connecting"
	case StateHandshaking:
		return "Handshaking"
	case StateLoggedIn:
		return "LoggedIn"
	case StateClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// DisconnectFunc is invoked exactly once when a session closes, carrying
// the reason (nil for a caller-initiated Close).
type DisconnectFunc func(reason error)

// Option configures a Session.
type Option func(*Session)

// WithHeartbeatTimeout overrides DefaultHeartbeatTimeout.
func WithHeartbeatTimeout(d time.Duration) Option {
	return func(s *Session) { s.heartbeatTimeout = d }
}

// WithOnDisconnect registers a callback fired when the session closes for
// any reason (peer close, watchdog expiry, or explicit Close).
func WithOnDisconnect(fn DisconnectFunc) Option {
	return func(s *Session) { s.onDisconnect = fn }
}

// WithControlPort overrides ControlPort. Tests use this to connect to a
// fake console server on an ephemeral port.
func WithControlPort(port int) Option {
	return func(s *Session) { s.controlPort = port }
}

// Session is one TCP control connection to a single console.
type Session struct {
	id   string
	host string
	conn net.Conn
	log  zerolog.Logger

	heartbeatTimeout time.Duration
	onDisconnect     DisconnectFunc
	controlPort      int

	mu       sync.Mutex
	state    State
	cipher   *frame.SessionCipher
	loggedIn bool

	watchdog *time.Timer
	replyCh  chan []byte

	writeMu sync.Mutex // serializes encrypt+write so frames leave in cipher order

	closeOnce sync.Once
}

// Connect performs steps 1-3 of the session lifecycle: it nudges the
// console awake with a LAUNCH datagram, dials the TCP control port with
// TCP_NODELAY, and completes the hello/handshake exchange that establishes
// the AES session cipher. The session is not logged in yet; call Login.
func Connect(ctx context.Context, host, credential string, opts ...Option) (*Session, error) {
	s := &Session{
		id:               uuid.NewString(),
		host:             host,
		state:            StateConnecting,
		heartbeatTimeout: DefaultHeartbeatTimeout,
		controlPort:      ControlPort,
		replyCh:          make(chan []byte, 1),
	}
	for _, o := range opts {
		o(s)
	}
	s.log = log.Logger.With().Str("component", "session").Str("session_id", s.id).Str("host", host).Logger()

	sendLaunchNudge(host, credential, s.log)

	dialer := net.Dialer{}
	rawConn, err := dialer.DialContext(ctx, "tcp", fmt.Sprintf("%s:%d", host, s.controlPort))
	if err != nil {
		return nil, fmt.Errorf("session: dial %s:%d: %w", host, s.controlPort, err)
	}
	if tcpConn, ok := rawConn.(*net.TCPConn); ok {
		_ = tcpConn.SetNoDelay(true)
	}
	s.conn = rawConn

	if err := s.handshake(); err != nil {
		s.conn.Close()
		return nil, err
	}

	s.mu.Lock()
	s.state = StateHandshaking
	s.mu.Unlock()
	return s, nil
}

// sendLaunchNudge sends a best-effort LAUNCH DDP datagram; a failure here
// is logged, never fatal, since the console may already be reachable over
// TCP regardless.
func sendLaunchNudge(host, credential string, log zerolog.Logger) {
	conn, err := net.Dial("udp", fmt.Sprintf("%s:%d", host, ddp.Port))
	if err != nil {
		log.Warn().Err(err).Msg("launch nudge dial failed")
		return
	}
	defer conn.Close()
	if _, err := conn.Write([]byte(ddp.LaunchMessage(credential))); err != nil {
		log.Warn().Err(err).Msg("launch nudge send failed")
	}
}

func (s *Session) handshake() error {
	if _, err := s.conn.Write(frame.BuildHello()); err != nil {
		return fmt.Errorf("session: write hello: %w", err)
	}

	buf := make([]byte, 256)
	n, err := io.ReadAtLeast(s.conn, buf, 36)
	if err != nil {
		return fmt.Errorf("session: read hello-ack: %w", err)
	}
	ack, err := frame.ParseHelloAck(buf[:n])
	if err != nil {
		return fmt.Errorf("session: parse hello-ack: %w", err)
	}

	cipher, err := frame.NewSessionCipher(ack.Seed)
	if err != nil {
		return fmt.Errorf("session: init cipher: %w", err)
	}
	s.cipher = cipher

	handshakeFrame, err := frame.BuildHandshake(ack.Seed)
	if err != nil {
		return fmt.Errorf("session: build handshake: %w", err)
	}
	if _, err := s.conn.Write(handshakeFrame); err != nil {
		return fmt.Errorf("session: write handshake: %w", err)
	}
	return nil
}

// Login sends the login frame and awaits the reply. If already logged in
// it is a no-op. When pin is empty and poweringOn is false, a successful
// login is followed by the open-remote-control / PS-tap dismiss sequence
// used to clear the 2nd Screen user-selection prompt, then a ~1s settle
// delay, per spec.md §4.5 step 4.
func (s *Session) Login(creds LoginCredentials, poweringOn bool) error {
	s.mu.Lock()
	if s.loggedIn {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	plain := frame.BuildLogin(frame.LoginFields{
		Credential: creds.Credential,
		DeviceName: creds.DeviceName,
		PIN:        creds.PIN,
	})
	if err := s.writeEncrypted(plain); err != nil {
		return fmt.Errorf("session: write login: %w", err)
	}

	reply, err := s.readEncrypted()
	if err != nil {
		return fmt.Errorf("session: read login reply: %w", err)
	}
	if !frame.LoginSucceeded(reply) {
		return pyps4err.ErrLoginFailed
	}

	s.mu.Lock()
	s.loggedIn = true
	s.state = StateLoggedIn
	s.mu.Unlock()

	go s.serve()

	if creds.PIN == "" && !poweringOn {
		if err := s.writeEncrypted(frame.BuildRemoteControl(uint32(OpOpenRC), 0)); err != nil {
			return fmt.Errorf("session: dismiss prompt (open_rc): %w", err)
		}
		if err := s.writeEncrypted(frame.BuildRemoteControl(uint32(OpPS), 0)); err != nil {
			return fmt.Errorf("session: dismiss prompt (ps): %w", err)
		}
		time.Sleep(time.Second)
	}
	return nil
}

// LoginCredentials are the plaintext fields the login frame carries.
type LoginCredentials struct {
	Credential string
	DeviceName string
	PIN        string
}

// Standby sends the standby frame. The caller is responsible for tearing
// the session down once a subsequent DDP status report confirms 620; the
// reply (if any) is not awaited here.
func (s *Session) Standby() error {
	if !s.isLoggedIn() {
		return pyps4err.ErrNotReady
	}
	return s.writeEncrypted(frame.BuildStandby())
}

// StartTitle sends the boot frame for titleID and awaits the start-title
// reply, reporting whether the console acknowledged it.
func (s *Session) StartTitle(ctx context.Context, titleID string) (bool, error) {
	if !s.isLoggedIn() {
		return false, pyps4err.ErrNotReady
	}
	if err := s.writeEncrypted(frame.BuildBoot(titleID)); err != nil {
		return false, fmt.Errorf("session: write boot: %w", err)
	}
	reply, err := s.awaitReply(ctx)
	if err != nil {
		return false, err
	}
	return frame.StartTitleAcked(reply), nil
}

// RemoteControl sends button's opcode sequence. Non-PS buttons are a
// four-frame back-to-back burst (open_rc, button, key_off, close_rc). PS
// is a tap/hold gesture: open_rc, ps(hold=0), ps(hold=1), then a delayed
// key_off (0.5s for a tap, 1s for a hold) - the caller must hold the
// command slot across the whole call, since the delay is part of the
// sequence. No reply is awaited for any remote-control frame.
func (s *Session) RemoteControl(op Opcode, holdMs uint32) error {
	if !s.isLoggedIn() {
		return pyps4err.ErrNotReady
	}
	if op == OpPS {
		return s.remoteControlPS(holdMs >= PSHoldMs)
	}
	for _, frm := range []([]byte){
		frame.BuildRemoteControl(uint32(OpOpenRC), 0),
		frame.BuildRemoteControl(uint32(op), holdMs),
		frame.BuildRemoteControl(uint32(OpKeyOff), 0),
		frame.BuildRemoteControl(uint32(OpCloseRC), 0),
	} {
		if err := s.writeEncrypted(frm); err != nil {
			return fmt.Errorf("session: write remote-control frame: %w", err)
		}
	}
	return nil
}

func (s *Session) remoteControlPS(hold bool) error {
	frames := []([]byte){
		frame.BuildRemoteControl(uint32(OpOpenRC), 0),
		frame.BuildRemoteControl(uint32(OpPS), 0),
		frame.BuildRemoteControl(uint32(OpPS), 1),
	}
	for _, frm := range frames {
		if err := s.writeEncrypted(frm); err != nil {
			return fmt.Errorf("session: write ps remote-control frame: %w", err)
		}
	}

	delay := 500 * time.Millisecond
	if hold {
		delay = time.Second
	}
	time.Sleep(delay)

	return s.writeEncrypted(frame.BuildRemoteControl(uint32(OpKeyOff), 0))
}

func (s *Session) isLoggedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loggedIn
}

func (s *Session) writeEncrypted(plain []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.mu.Lock()
	cipher := s.cipher
	s.mu.Unlock()
	if cipher == nil {
		return errors.New("session: cipher not established")
	}
	ciphertext, err := cipher.Encrypt(plain)
	if err != nil {
		return err
	}
	_, err = s.conn.Write(ciphertext)
	return err
}

func (s *Session) readEncrypted() ([]byte, error) {
	buf := make([]byte, replyFrameSize)
	if _, err := io.ReadFull(s.conn, buf); err != nil {
		return nil, err
	}
	s.mu.Lock()
	cipher := s.cipher
	s.mu.Unlock()
	if cipher == nil {
		return nil, errors.New("session: cipher not established")
	}
	return cipher.Decrypt(buf)
}

// awaitReply blocks for the next non-heartbeat frame delivered by the read
// loop, or until ctx is cancelled.
func (s *Session) awaitReply(ctx context.Context) ([]byte, error) {
	select {
	case reply := <-s.replyCh:
		return reply, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// serve is the session's single read-loop goroutine: it owns the
// decryptor and dispatches every inbound frame to either the heartbeat
// path or the outstanding command's reply channel.
func (s *Session) serve() {
	s.resetWatchdog()
	defer s.stopWatchdog()

	for {
		reply, err := s.readEncrypted()
		if err != nil {
			s.closeWithReason(fmt.Errorf("session: read: %w", err))
			return
		}

		if frame.IsHeartbeat(reply) {
			s.resetWatchdog()
			if err := s.writeEncrypted(frame.BuildStatusAck()); err != nil {
				s.log.Warn().Err(err).Msg("failed to send status-ack")
			}
			continue
		}

		select {
		case s.replyCh <- reply:
		default:
			s.log.Debug().Msg("dropping reply frame with no outstanding command")
		}
	}
}

func (s *Session) resetWatchdog() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watchdog == nil {
		s.watchdog = time.AfterFunc(s.heartbeatTimeout, func() {
			s.closeWithReason(errors.New("session: heartbeat watchdog expired"))
		})
		return
	}
	s.watchdog.Reset(s.heartbeatTimeout)
}

func (s *Session) stopWatchdog() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watchdog != nil {
		s.watchdog.Stop()
	}
}

// Close tears the session down: the AES context is dropped and the
// connection is closed. Safe to call more than once.
func (s *Session) Close() error {
	return s.closeWithReason(nil)
}

func (s *Session) closeWithReason(reason error) error {
	var err error
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.state = StateClosed
		if s.cipher != nil {
			s.cipher.Zero()
		}
		s.mu.Unlock()

		s.stopWatchdog()
		err = s.conn.Close()

		if s.onDisconnect != nil {
			s.onDisconnect(reason)
		}
	})
	return err
}

// State reports the session's current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Host returns the console host this session is connected to.
func (s *Session) Host() string { return s.host }
