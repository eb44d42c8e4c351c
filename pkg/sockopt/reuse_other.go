//go:build !unix

package sockopt

import "syscall"

// ReusePort is a no-op on platforms without SO_REUSEPORT (e.g. Windows);
// the multiplexer still binds and works, it just cannot coexist with a
// second DDP listener on the same host.
func ReusePort() func(network, address string, c syscall.RawConn) error {
	return func(_, _ string, _ syscall.RawConn) error { return nil }
}

// ReuseAddr is a no-op on platforms without SO_REUSEADDR semantics that
// matter here.
func ReuseAddr() func(network, address string, c syscall.RawConn) error {
	return func(_, _ string, _ syscall.RawConn) error { return nil }
}

// Broadcaster is the subset of net.Conn that exposes the raw file
// descriptor, satisfied by *net.UDPConn.
type Broadcaster interface {
	SyscallConn() (syscall.RawConn, error)
}

// SetBroadcast is a no-op on platforms without this build tag's SO_BROADCAST
// support; the discovery sweep still works against a single host.
func SetBroadcast(_ Broadcaster) error { return nil }
