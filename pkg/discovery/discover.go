package discovery

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/ps4golib/pyps4go/pkg/ddp"
	"github.com/ps4golib/pyps4go/pkg/sockopt"
)

// Discover sends a single SRCH broadcast and collects every response that
// arrives before timeout elapses or ctx's deadline passes, whichever is
// first; a cancellation of ctx is noticed between datagrams. host is the
// broadcast or unicast address to target; pass "255.255.255.255" to sweep
// the whole LAN segment. Unlike Multiplexer, Discover does no polling or
// unreachability bookkeeping: it is a one-shot sweep for callers that just
// want a snapshot (spec.md §6).
func Discover(ctx context.Context, host string, timeout time.Duration) ([]ddp.StatusMap, error) {
	return discoverOnPort(ctx, host, timeout, ddp.Port)
}

func discoverOnPort(ctx context.Context, host string, timeout time.Duration, port int) ([]ddp.StatusMap, error) {
	conn, err := net.ListenPacket("udp4", "0.0.0.0:0")
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if pc, ok := conn.(*net.UDPConn); ok {
		_ = sockopt.SetBroadcast(pc)
	}

	dst, err := net.ResolveUDPAddr("udp4", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return nil, err
	}
	if _, err := conn.WriteTo([]byte(ddp.SearchMessage()), dst); err != nil {
		return nil, err
	}

	deadline := time.Now().Add(timeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}
	_ = conn.SetReadDeadline(deadline)

	var results []ddp.StatusMap
	buf := make([]byte, 2048)
	for {
		select {
		case <-ctx.Done():
			return results, nil
		default:
		}
		n, addr, err := conn.ReadFrom(buf)
		if err != nil {
			return results, nil
		}
		raw, err := ddp.ParseResponse(string(buf[:n]))
		if err != nil {
			continue
		}
		if ip, _, splitErr := net.SplitHostPort(addr.String()); splitErr == nil {
			raw["host-ip"] = ip
		}
		status, err := ddp.DecodeStatus(raw)
		if err != nil {
			continue
		}
		results = append(results, status)
	}
}

// GetStatus sends a single SRCH datagram directly to host and waits for one
// reply until ctx's deadline, or for two seconds when ctx has none. It
// returns ok=false if nothing replies in that time.
func GetStatus(ctx context.Context, host string) (ddp.StatusMap, bool, error) {
	return getStatusOnPort(ctx, host, ddp.Port)
}

func getStatusOnPort(ctx context.Context, host string, port int) (ddp.StatusMap, bool, error) {
	conn, err := net.ListenPacket("udp4", "0.0.0.0:0")
	if err != nil {
		return ddp.StatusMap{}, false, err
	}
	defer conn.Close()

	dst, err := net.ResolveUDPAddr("udp4", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return ddp.StatusMap{}, false, err
	}
	if _, err := conn.WriteTo([]byte(ddp.SearchMessage()), dst); err != nil {
		return ddp.StatusMap{}, false, err
	}

	deadline := time.Now().Add(2 * time.Second)
	if dl, ok := ctx.Deadline(); ok {
		deadline = dl
	}
	_ = conn.SetReadDeadline(deadline)

	buf := make([]byte, 2048)
	n, _, err := conn.ReadFrom(buf)
	if err != nil {
		return ddp.StatusMap{}, false, nil
	}
	raw, err := ddp.ParseResponse(string(buf[:n]))
	if err != nil {
		return ddp.StatusMap{}, false, err
	}
	raw["host-ip"] = host
	status, err := ddp.DecodeStatus(raw)
	if err != nil {
		return ddp.StatusMap{}, false, err
	}
	return status, true, nil
}
