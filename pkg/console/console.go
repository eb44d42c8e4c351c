// Package console implements the Console data model and per-console
// command scheduler that ties the DDP multiplexer (pkg/discovery) and the
// TCP control session (pkg/session) together into the power/session state
// machine described in spec.md §3, §4.6, and §4.7.
package console

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ps4golib/pyps4go/pkg/ddp"
	"github.com/ps4golib/pyps4go/pkg/discovery"
	"github.com/ps4golib/pyps4go/pkg/session"
)

// ConnectionState is the console's TCP-session lifecycle, independent of
// its DDP-observed power state.
type ConnectionState int

const (
	Disconnected ConnectionState = iota
	TCPConnected
	LoggedIn
)

func (s ConnectionState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case TCPConnected:
		return "tcp-connected"
	case LoggedIn:
		return "logged-in"
	default:
		return "unknown"
	}
}

// StatusCallback is invoked whenever the console's status map changes.
type StatusCallback func(status ddp.StatusMap, available bool)

// Console is a single PS4 console: its credential, its last-known DDP
// status, and its command scheduler. It is the primary unit of the
// library-facing API (spec.md §6).
type Console struct {
	host       string
	credential string
	deviceName string
	port       int

	mux *discovery.Multiplexer

	mu             sync.Mutex
	status         *ddp.StatusMap
	connState      ConnectionState
	poweringOn     bool
	poweringOff    bool
	sess           *session.Session
	pendingTask    *Task
	statusCallback StatusCallback

	slot chan struct{} // one-slot semaphore: buffered capacity 1, holds a token when free

	log      zerolog.Logger
	unwatch  func()
	closed   bool
	dialOpts []session.Option
}

// Option configures a Console.
type Option func(*Console)

// WithDeviceName overrides the display name advertised during login.
func WithDeviceName(name string) Option {
	return func(c *Console) { c.deviceName = name }
}

// WithPort overrides the TCP control port (997 by default).
func WithPort(port int) Option {
	return func(c *Console) { c.port = port }
}

// WithSessionOptions passes through additional pkg/session.Option values
// (used by tests to point at a fake console server, and by callers who
// want a non-default heartbeat timeout).
func WithSessionOptions(opts ...session.Option) Option {
	return func(c *Console) { c.dialOpts = append(c.dialOpts, opts...) }
}

// New builds a console bound to mux for status observation. host is the
// console's IPv4 address, credential the 64-char PSN account hash
// obtained via pkg/credential.
func New(mux *discovery.Multiplexer, host, credential string, opts ...Option) *Console {
	c := &Console{
		host:       host,
		credential: credential,
		deviceName: "pyps4go",
		port:       session.ControlPort,
		mux:        mux,
		connState:  Disconnected,
		slot:       make(chan struct{}, 1),
		log:        log.Logger.With().Str("component", "console").Str("host", host).Logger(),
	}
	c.slot <- struct{}{}
	for _, o := range opts {
		o(c)
	}
	c.unwatch = mux.Watch(host, c.onStatus)
	return c
}

// SetStatusCallback registers f to be invoked on every status change.
func (c *Console) SetStatusCallback(f StatusCallback) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statusCallback = f
}

// onStatus is the discovery.Callback invoked synchronously on the
// multiplexer's single receive goroutine. It must not block; it updates
// local bookkeeping and posts follow-up work (draining a pending task) to
// the console's own goroutines instead of re-entering the scheduler
// inline (spec.md §5).
func (c *Console) onStatus(status ddp.StatusMap, available bool) {
	c.mu.Lock()
	if !available {
		c.status = nil
		c.poweringOn = false
		c.poweringOff = false
	} else {
		s := status
		c.status = &s
		if status.IsStandby() {
			c.poweringOff = false
			c.teardownSessionLocked()
		} else if status.IsOn() {
			c.poweringOn = false
		}
	}
	cb := c.statusCallback
	pending := c.pendingTask
	turnedOn := available && status.IsOn()
	c.mu.Unlock()

	if cb != nil {
		cb(status, available)
	}

	if turnedOn && pending != nil {
		go c.connectAndDrain(context.Background())
	}
}

// teardownSessionLocked force-closes any live TCP session. Caller must
// hold c.mu.
func (c *Console) teardownSessionLocked() {
	if c.sess != nil {
		sess := c.sess
		c.sess = nil
		c.connState = Disconnected
		go sess.Close()
	}
}

// IsRunning reports whether the console is powered on, per its last-known
// DDP status (status_code 200). This is independent of whether a TCP
// session is currently open; ConnectionState tracks that.
func (c *Console) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status != nil && c.status.IsOn()
}

// IsStandby reports whether the last known status was 620.
func (c *Console) IsStandby() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status != nil && c.status.IsStandby()
}

// IsAvailable reports whether the console has any known status at all
// (reachable, whether on or in standby).
func (c *Console) IsAvailable() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status != nil
}

// RunningAppTitleID returns the last-known running title ID, or "" if the
// console is off or nothing is known to be running.
func (c *Console) RunningAppTitleID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status == nil {
		return ""
	}
	return c.status.RunningAppTitleID
}

// RunningAppName mirrors RunningAppTitleID for the human-readable name.
func (c *Console) RunningAppName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status == nil {
		return ""
	}
	return c.status.RunningAppName
}

// HostName returns the last-known advertised host name.
func (c *Console) HostName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status == nil {
		return ""
	}
	return c.status.HostName
}

// HostID returns the last-known MAC-like host identifier.
func (c *Console) HostID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status == nil {
		return ""
	}
	return c.status.HostID
}

// SystemVersion returns the last-known firmware version string.
func (c *Console) SystemVersion() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status == nil {
		return ""
	}
	return c.status.SystemVersion
}

// Host returns the console's IPv4 address.
func (c *Console) Host() string { return c.host }

// Close tears down any active session and unregisters the console from
// its multiplexer.
func (c *Console) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	sess := c.sess
	c.sess = nil
	c.connState = Disconnected
	c.mu.Unlock()

	if c.unwatch != nil {
		c.unwatch()
	}
	if sess != nil {
		return sess.Close()
	}
	return nil
}
