// Package discovery implements the DDP multiplexer: a single shared UDP
// socket that polls many consoles concurrently, dispatches responses to
// per-console observers, and detects unreachability by missed-response
// counting (spec.md §4.4).
package discovery

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ps4golib/pyps4go/pkg/ddp"
	"github.com/ps4golib/pyps4go/pkg/sockopt"
)

// DefaultMaxPolls is the number of consecutive unanswered polls that marks
// a console unreachable.
const DefaultMaxPolls = 5

// DefaultStandbyBackoff is how long sends to a console are suppressed
// after it reports status 620, so the multiplexer does not interfere with
// the console's own standby transition.
const DefaultStandbyBackoff = 5 * time.Second

// Callback receives a status snapshot whenever an observed console's
// status changes, and whether the console is currently considered
// available. It is invoked on the multiplexer's single receive goroutine
// and MUST NOT block or re-enter the multiplexer.
type Callback func(status ddp.StatusMap, available bool)

type observer struct {
	id       uint64
	callback Callback

	mu          sync.Mutex
	pollCount   int
	unreachable bool
	hasStatus   bool
	lastStatus  ddp.StatusMap
}

// Multiplexer owns the single shared UDP socket all console polling goes
// through.
type Multiplexer struct {
	conn     net.PacketConn
	maxPolls int
	backoff  time.Duration
	ddpPort  int
	log      zerolog.Logger

	mu        sync.Mutex
	observers map[string]map[uint64]*observer // keyed by console IP
	standby   map[string]time.Time            // console IP -> backoff expiry
	nextID    uint64

	closed atomic.Bool
	done   chan struct{}
}

// Option configures a Multiplexer.
type Option func(*Multiplexer)

// WithMaxPolls overrides DefaultMaxPolls.
func WithMaxPolls(n int) Option {
	return func(m *Multiplexer) { m.maxPolls = n }
}

// WithStandbyBackoff overrides DefaultStandbyBackoff.
func WithStandbyBackoff(d time.Duration) Option {
	return func(m *Multiplexer) { m.backoff = d }
}

// WithDDPPort overrides the destination port used for outbound SRCH,
// WAKEUP, and LAUNCH datagrams (ddp.Port by default). Tests use this to
// target a fake console on an ephemeral port.
func WithDDPPort(port int) Option {
	return func(m *Multiplexer) { m.ddpPort = port }
}

// New binds the shared UDP socket (0.0.0.0:0, SO_REUSEPORT where
// available) and starts its receive loop on a dedicated goroutine.
func New(ctx context.Context, opts ...Option) (*Multiplexer, error) {
	m := &Multiplexer{
		maxPolls:  DefaultMaxPolls,
		backoff:   DefaultStandbyBackoff,
		ddpPort:   ddp.Port,
		observers: make(map[string]map[uint64]*observer),
		standby:   make(map[string]time.Time),
		log:       log.Logger.With().Str("component", "discovery").Logger(),
		done:      make(chan struct{}),
	}
	for _, o := range opts {
		o(m)
	}

	lc := net.ListenConfig{Control: sockopt.ReusePort()}
	conn, err := lc.ListenPacket(ctx, "udp", "0.0.0.0:0")
	if err != nil {
		return nil, fmt.Errorf("discovery: bind shared udp socket: %w", err)
	}
	m.conn = conn

	go m.readLoop()
	return m, nil
}

// Close shuts down the shared socket and its receive loop.
func (m *Multiplexer) Close() error {
	if !m.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := m.conn.Close()
	<-m.done
	return err
}

// Watch registers cb to be invoked whenever the console at ip changes
// status or transitions to/from unreachable. Multiple watches may attach
// to the same IP (for example two console objects for the same host). The
// returned function removes the watch; the
// per-host entry is pruned once its last watch is removed.
func (m *Multiplexer) Watch(ip string, cb Callback) (unwatch func()) {
	id := atomic.AddUint64(&m.nextID, 1)
	obs := &observer{id: id, callback: cb}

	m.mu.Lock()
	if m.observers[ip] == nil {
		m.observers[ip] = make(map[uint64]*observer)
	}
	m.observers[ip][id] = obs
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if byID, ok := m.observers[ip]; ok {
			delete(byID, id)
			if len(byID) == 0 {
				delete(m.observers, ip)
				delete(m.standby, ip)
			}
		}
	}
}

// Poll sends a SRCH datagram to ip and increments its poll counters,
// unless ip is within its post-standby backoff window, in which case the
// call is a silent no-op (spec.md §4.4).
func (m *Multiplexer) Poll(ip string) error {
	m.mu.Lock()
	if until, ok := m.standby[ip]; ok && time.Now().Before(until) {
		m.mu.Unlock()
		return nil
	}
	observers := m.snapshotObservers(ip)
	m.mu.Unlock()

	_, err := m.conn.WriteTo([]byte(ddp.SearchMessage()), &net.UDPAddr{IP: net.ParseIP(ip), Port: m.ddpPort})
	if err != nil {
		return fmt.Errorf("discovery: send SRCH to %s: %w", ip, err)
	}

	for _, obs := range observers {
		m.countMissedOrSent(obs)
	}
	return nil
}

// SendWakeup sends a WAKEUP datagram carrying credential to ip through the
// shared socket, honoring the same standby backoff as Poll.
func (m *Multiplexer) SendWakeup(ip, credential string) error {
	return m.send(ip, ddp.WakeupMessage(credential))
}

// SendLaunch sends a LAUNCH datagram to ip through the shared socket,
// honoring the same standby backoff as Poll.
func (m *Multiplexer) SendLaunch(ip, credential string) error {
	return m.send(ip, ddp.LaunchMessage(credential))
}

func (m *Multiplexer) send(ip, msg string) error {
	m.mu.Lock()
	if until, ok := m.standby[ip]; ok && time.Now().Before(until) {
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	_, err := m.conn.WriteTo([]byte(msg), &net.UDPAddr{IP: net.ParseIP(ip), Port: m.ddpPort})
	if err != nil {
		return fmt.Errorf("discovery: send to %s: %w", ip, err)
	}
	return nil
}

func (m *Multiplexer) snapshotObservers(ip string) []*observer {
	byID := m.observers[ip]
	out := make([]*observer, 0, len(byID))
	for _, obs := range byID {
		out = append(out, obs)
	}
	return out
}

// countMissedOrSent increments an observer's poll counter and fires the
// unreachable transition exactly once if it crosses the threshold.
func (m *Multiplexer) countMissedOrSent(obs *observer) {
	obs.mu.Lock()
	obs.pollCount++
	crossed := obs.pollCount > m.maxPolls && !obs.unreachable
	if crossed {
		obs.unreachable = true
		obs.hasStatus = false
		obs.lastStatus = ddp.StatusMap{}
	}
	cb := obs.callback
	obs.mu.Unlock()

	if crossed {
		cb(ddp.StatusMap{}, false)
	}
}

// readLoop is the single goroutine permitted to read from the shared
// socket. Each datagram's diff/store step locks the matching observer's
// own mutex, since Poll updates the same poll counters from the caller's
// goroutine; callbacks run after that mutex is released.
func (m *Multiplexer) readLoop() {
	defer close(m.done)
	buf := make([]byte, 2048)
	for {
		n, addr, err := m.conn.ReadFrom(buf)
		if err != nil {
			if m.closed.Load() || errors.Is(err, net.ErrClosed) {
				return
			}
			m.log.Warn().Err(err).Msg("read error on shared ddp socket")
			continue
		}
		m.handleDatagram(buf[:n], addr)
	}
}

func (m *Multiplexer) handleDatagram(data []byte, addr net.Addr) {
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		host = addr.String()
	}

	raw, err := ddp.ParseResponse(string(data))
	if err != nil {
		m.log.Debug().Err(err).Str("host", host).Msg("dropping unparseable ddp datagram")
		return
	}
	raw["host-ip"] = host

	status, err := ddp.DecodeStatus(raw)
	if err != nil {
		m.log.Debug().Err(err).Str("host", host).Msg("dropping undecodable ddp status")
		return
	}

	m.mu.Lock()
	observers := m.snapshotObservers(host)
	if status.IsStandby() {
		m.standby[host] = time.Now().Add(m.backoff)
	}
	m.mu.Unlock()

	for _, obs := range observers {
		obs.mu.Lock()
		changed := !obs.hasStatus || obs.lastStatus != status
		obs.pollCount = 0
		obs.unreachable = false
		obs.hasStatus = true
		obs.lastStatus = status
		cb := obs.callback
		obs.mu.Unlock()

		if changed {
			cb(status, true)
		}
	}
}
