package pyps4go

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ps4golib/pyps4go/pkg/console"
	"github.com/ps4golib/pyps4go/pkg/ddp"
	"github.com/ps4golib/pyps4go/pkg/discovery"
)

func newTestConsole(t *testing.T, mux *discovery.Multiplexer) *Console {
	t.Helper()
	return &Console{inner: console.New(mux, "127.0.0.1", "testcredential")}
}

// startFakeDDPResponder answers SRCH with status on an ephemeral port and
// returns that port for WithDDPPort.
func startFakeDDPResponder(t *testing.T, status string) int {
	t.Helper()
	conn, err := net.ListenPacket("udp4", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	go func() {
		buf := make([]byte, 2048)
		for {
			n, addr, err := conn.ReadFrom(buf)
			if err != nil {
				return
			}
			verb, err := ddp.ParseVerb(string(buf[:n]))
			if err != nil || verb != ddp.VerbSearch {
				continue
			}
			resp := ddp.BuildResponse(status, []ddp.KV{
				{Key: "host-id", Value: "AA11BB22"},
				{Key: "host-name", Value: "fake-ps4"},
			})
			_, _ = conn.WriteTo([]byte(resp), addr)
		}
	}()
	return conn.LocalAddr().(*net.UDPAddr).Port
}

func TestSetStatusCallbackFiresOnlyWhenAvailable(t *testing.T) {
	port := startFakeDDPResponder(t, "200 Ok")

	mux, err := discovery.New(context.Background(), discovery.WithDDPPort(port))
	require.NoError(t, err)
	defer mux.Close()

	c := newTestConsole(t, mux)
	defer c.Close()

	var seen []ddp.StatusMap
	c.SetStatusCallback(func(status ddp.StatusMap) {
		seen = append(seen, status)
	})

	require.NoError(t, mux.Poll("127.0.0.1"))
	require.Eventually(t, func() bool { return len(seen) == 1 }, 2*time.Second, 10*time.Millisecond)
	require.Equal(t, "AA11BB22", seen[0].HostID)
	require.True(t, c.IsAvailable())
	require.False(t, c.IsStandby())
}

func TestConsoleAccessorsDelegateToInnerBeforeAnyStatus(t *testing.T) {
	mux, err := discovery.New(context.Background(), discovery.WithDDPPort(0))
	require.NoError(t, err)
	defer mux.Close()

	c := newTestConsole(t, mux)
	defer c.Close()

	require.Equal(t, "127.0.0.1", c.Host())
	require.False(t, c.IsAvailable())
	require.False(t, c.IsRunning())
	require.False(t, c.IsStandby())
	require.Equal(t, "", c.RunningAppTitleID())
	require.Equal(t, "", c.RunningAppName())
	require.Equal(t, "", c.HostName())
	require.Equal(t, "", c.HostID())
	require.Equal(t, "", c.SystemVersion())
}
