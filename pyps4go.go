// Package pyps4go is a Go client library for the PS4 "2nd Screen" remote
// control protocol: console discovery over DDP (UDP 987) and remote control
// over the binary TCP control protocol (TCP 997). See pkg/frame, pkg/ddp,
// pkg/discovery, pkg/session and pkg/console for the protocol layers this
// package assembles into the public API (spec.md §6).
package pyps4go

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ps4golib/pyps4go/pkg/console"
	"github.com/ps4golib/pyps4go/pkg/credential"
	"github.com/ps4golib/pyps4go/pkg/ddp"
	"github.com/ps4golib/pyps4go/pkg/discovery"
)

var (
	sharedMux     *discovery.Multiplexer
	sharedMuxOnce sync.Once
	sharedMuxErr  error
)

// defaultMultiplexer lazily builds the package-level DDP multiplexer every
// Console shares, so that multiple Console values on the same process bind
// only one UDP socket (spec.md §4.4).
func defaultMultiplexer() (*discovery.Multiplexer, error) {
	sharedMuxOnce.Do(func() {
		sharedMux, sharedMuxErr = discovery.New(context.Background())
	})
	return sharedMux, sharedMuxErr
}

// Discover sweeps host (use "255.255.255.255" for the whole LAN segment)
// for PS4 consoles and returns every status reply received within timeout.
func Discover(ctx context.Context, host string, timeout time.Duration) ([]ddp.StatusMap, error) {
	return discovery.Discover(ctx, host, timeout)
}

// GetStatus queries a single console's status directly.
func GetStatus(ctx context.Context, host string) (ddp.StatusMap, bool, error) {
	return discovery.GetStatus(ctx, host)
}

// CaptureCredential runs the DDP credential-capture responder until the
// official 2nd Screen mobile app sends a WAKEUP carrying the PSN account
// credential, or until timeout elapses.
func CaptureCredential(ctx context.Context, deviceName string, timeout time.Duration) (string, error) {
	srv := credential.NewServer(credential.WithDeviceName(deviceName))
	return srv.Capture(ctx, timeout)
}

// Console is a single PS4 console: its credential, its last-known DDP
// status, and its command scheduler.
type Console struct {
	inner *console.Console
}

// ConsoleOption configures a Console.
type ConsoleOption func(*console.Console)

// WithDeviceName overrides the display name advertised during login.
func WithDeviceName(name string) ConsoleOption {
	return func(c *console.Console) { console.WithDeviceName(name)(c) }
}

// WithPort overrides the TCP control port (997 by default).
func WithPort(port int) ConsoleOption {
	return func(c *console.Console) { console.WithPort(port)(c) }
}

// NewConsole builds a console bound to the package-level shared DDP
// multiplexer. host is the console's IPv4 address, credential the 64-char
// PSN account hash obtained via CaptureCredential.
func NewConsole(host, credential string, opts ...ConsoleOption) (*Console, error) {
	mux, err := defaultMultiplexer()
	if err != nil {
		return nil, fmt.Errorf("pyps4go: discovery multiplexer: %w", err)
	}
	consoleOpts := make([]console.Option, 0, len(opts))
	for _, o := range opts {
		consoleOpts = append(consoleOpts, console.Option(o))
	}
	return &Console{inner: console.New(mux, host, credential, consoleOpts...)}, nil
}

// Wakeup sends a WAKEUP datagram and marks the console as powering on.
func (c *Console) Wakeup(ctx context.Context) error { return c.inner.Wakeup(ctx) }

// Standby requests the console power down.
func (c *Console) Standby(ctx context.Context) error { return c.inner.Standby(ctx) }

// Login logs in, running the dismiss sequence when pin is empty.
func (c *Console) Login(ctx context.Context, pin string) error { return c.inner.Login(ctx, pin) }

// StartTitle boots titleID, auto-confirming the close-current-app prompt
// when previousTitleID differs from titleID.
func (c *Console) StartTitle(ctx context.Context, titleID, previousTitleID string) error {
	return c.inner.StartTitle(ctx, titleID, previousTitleID)
}

// RemoteControl presses buttonName for holdMs milliseconds. For "ps" holdMs
// only selects the tap or hold gesture; see pkg/console.ButtonOpcode for
// the buttons that force their own hold duration.
func (c *Console) RemoteControl(ctx context.Context, buttonName string, holdMs int) error {
	return c.inner.RemoteControl(ctx, buttonName, uint32(holdMs))
}

// Close tears down any active session and unregisters the console from the
// shared multiplexer.
func (c *Console) Close() error { return c.inner.Close() }

// SetStatusCallback registers f to be invoked with the console's status
// every time it changes while reachable. It is not invoked when the
// console drops off the network entirely; use IsAvailable to detect that.
func (c *Console) SetStatusCallback(f func(ddp.StatusMap)) {
	c.inner.SetStatusCallback(func(status ddp.StatusMap, available bool) {
		if available {
			f(status)
		}
	})
}

// IsRunning reports whether the console is powered on, per its last-known
// DDP status.
func (c *Console) IsRunning() bool { return c.inner.IsRunning() }

// IsStandby reports whether the last known status was 620.
func (c *Console) IsStandby() bool { return c.inner.IsStandby() }

// IsAvailable reports whether the console has any known status at all.
func (c *Console) IsAvailable() bool { return c.inner.IsAvailable() }

// RunningAppTitleID returns the last-known running title ID.
func (c *Console) RunningAppTitleID() string { return c.inner.RunningAppTitleID() }

// RunningAppName returns the last-known running title's display name.
func (c *Console) RunningAppName() string { return c.inner.RunningAppName() }

// HostName returns the last-known advertised host name.
func (c *Console) HostName() string { return c.inner.HostName() }

// HostID returns the last-known MAC-like host identifier.
func (c *Console) HostID() string { return c.inner.HostID() }

// SystemVersion returns the last-known firmware version string.
func (c *Console) SystemVersion() string { return c.inner.SystemVersion() }

// Host returns the console's IPv4 address.
func (c *Console) Host() string { return c.inner.Host() }
