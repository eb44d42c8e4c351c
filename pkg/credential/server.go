// Package credential implements the credential-capture server: a UDP
// responder that impersonates a standby PS4 during the mobile "2nd
// Screen" app's pairing flow in order to extract the long-lived PSN user
// credential the app sends in its WAKEUP datagram (spec.md §4.3).
package credential

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ps4golib/pyps4go/pkg/ddp"
	"github.com/ps4golib/pyps4go/pkg/pyps4err"
	"github.com/ps4golib/pyps4go/pkg/sockopt"
)

// DefaultDeviceName is the host-name the capture server advertises when no
// override is configured, matching the original client's identity.
const DefaultDeviceName = "pyps4-2ndScreen"

const (
	standbyStatus  = "620 Server Standby"
	reqPort        = 997
	readBufferSize = 1024
)

// Server answers DDP discovery on UDP :987 with a fabricated standby
// identity and waits for the resulting WAKEUP to hand back the credential
// it carries.
type Server struct {
	deviceName string
	port       int
	log        zerolog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithDeviceName overrides the host-name advertised in the fabricated
// standby response.
func WithDeviceName(name string) Option {
	return func(s *Server) { s.deviceName = name }
}

// WithPort overrides the bind port (987 by default). Tests use this to
// avoid the privileged-port bind that the real client requires.
func WithPort(port int) Option {
	return func(s *Server) { s.port = port }
}

// NewServer builds a credential-capture server.
func NewServer(opts ...Option) *Server {
	s := &Server{
		deviceName: DefaultDeviceName,
		port:       ddp.Port,
		log:        log.Logger.With().Str("component", "credential").Logger(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Capture binds UDP :987 and serves until it captures a credential, the
// context is cancelled, or timeout elapses with nothing received. Bind
// failure (port in use or privileged-port denied) is returned directly;
// running out the clock returns pyps4err.ErrCredentialTimeout so callers
// can surface the permissions hint.
func (s *Server) Capture(ctx context.Context, timeout time.Duration) (string, error) {
	sessionID := xid.New().String()
	slog := s.log.With().Str("session", sessionID).Logger()

	lc := net.ListenConfig{Control: sockopt.ReuseAddr()}
	packetConn, err := lc.ListenPacket(ctx, "udp", fmt.Sprintf("0.0.0.0:%d", s.port))
	if err != nil {
		return "", fmt.Errorf("credential: bind udp :%d: %w", s.port, err)
	}
	defer packetConn.Close()

	hostID, err := randomHostID()
	if err != nil {
		return "", fmt.Errorf("credential: generate host id: %w", err)
	}

	deadline := time.Now().Add(timeout)
	if err := packetConn.SetDeadline(deadline); err != nil {
		return "", fmt.Errorf("credential: set deadline: %w", err)
	}
	slog.Info().Dur("timeout", timeout).Msg("listening for pairing wakeup")

	// Cancelling ctx expires the read deadline so a blocked ReadFrom returns.
	stop := context.AfterFunc(ctx, func() { _ = packetConn.SetDeadline(time.Now()) })
	defer stop()

	buf := make([]byte, readBufferSize)
	for {
		n, addr, err := packetConn.ReadFrom(buf)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				slog.Info().Msg("capture timed out with no wakeup received")
				return "", pyps4err.ErrCredentialTimeout
			}
			return "", fmt.Errorf("credential: read: %w", err)
		}

		raw := string(buf[:n])
		verb, err := ddp.ParseVerb(raw)
		if err != nil {
			slog.Warn().Str("addr", addr.String()).Msg("ignoring non-DDP datagram")
			continue
		}

		switch verb {
		case ddp.VerbSearch:
			if err := s.replyStandby(packetConn, addr, hostID); err != nil {
				slog.Warn().Err(err).Msg("failed to reply to search")
			}
		case ddp.VerbWakeup:
			cred, ok := ddp.FieldValue(raw, "user-credential")
			if !ok {
				slog.Warn().Msg("wakeup datagram carried no user-credential field")
				continue
			}
			slog.Info().Str("addr", addr.String()).Msg("captured credential")
			return cred, nil
		default:
			slog.Debug().Str("verb", string(verb)).Msg("ignoring unhandled verb")
		}
	}
}

func (s *Server) replyStandby(conn net.PacketConn, addr net.Addr, hostID string) error {
	resp := ddp.BuildResponse(standbyStatus, []ddp.KV{
		{Key: "host-id", Value: hostID},
		{Key: "host-type", Value: "PS4"},
		{Key: "host-name", Value: s.deviceName},
		{Key: "host-request-port", Value: fmt.Sprintf("%d", reqPort)},
	})
	_, err := conn.WriteTo([]byte(resp), addr)
	return err
}

func randomHostID() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
