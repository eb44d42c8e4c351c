//go:build unix

// Package sockopt sets the socket-reuse options DDP needs to coexist with
// other processes speaking the same protocol on the same host, grounded on
// the same net.ListenConfig.Control pattern shadowmesh uses to tune its
// relay listeners (relay/server/main.go) but trimmed to the two options
// this protocol actually needs.
package sockopt

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// ReusePort returns a net.ListenConfig.Control function that sets
// SO_REUSEPORT (falling back silently where the kernel does not support
// it) so the DDP multiplexer's shared socket can coexist with other DDP
// speakers on the same host, per spec.md §4.4.
func ReusePort() func(network, address string, c syscall.RawConn) error {
	return func(_, _ string, c syscall.RawConn) error {
		var sockErr error
		err := c.Control(func(fd uintptr) {
			sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
		})
		if err != nil {
			return err
		}
		// Not fatal: older kernels / some platforms lack SO_REUSEPORT.
		_ = sockErr
		return nil
	}
}

// ReuseAddr returns a net.ListenConfig.Control function that sets
// SO_REUSEADDR, which the credential-capture server binds with instead of
// SO_REUSEPORT to avoid rebind failures immediately after a prior capture
// session closes its socket (spec.md §4.3).
func ReuseAddr() func(network, address string, c syscall.RawConn) error {
	return func(_, _ string, c syscall.RawConn) error {
		var sockErr error
		err := c.Control(func(fd uintptr) {
			sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
		})
		if err != nil {
			return err
		}
		_ = sockErr
		return nil
	}
}

// Broadcaster is the subset of net.Conn that exposes the raw file
// descriptor, satisfied by *net.UDPConn.
type Broadcaster interface {
	SyscallConn() (syscall.RawConn, error)
}

// SetBroadcast sets SO_BROADCAST on conn so a SRCH sweep can be addressed to
// the LAN broadcast address (spec.md §6 Discover), matching the original
// implementation's discovery sweep.
func SetBroadcast(conn Broadcaster) error {
	raw, err := conn.SyscallConn()
	if err != nil {
		return err
	}
	var sockErr error
	err = raw.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_BROADCAST, 1)
	})
	if err != nil {
		return err
	}
	return sockErr
}
