package credential

import (
	"context"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ps4golib/pyps4go/pkg/ddp"
	"github.com/ps4golib/pyps4go/pkg/pyps4err"
)

// pickPort binds a throwaway UDP socket to get a free ephemeral port, then
// closes it immediately so the Server under test can bind it.
func pickPort(t *testing.T) int {
	t.Helper()
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	port := conn.LocalAddr().(*net.UDPAddr).Port
	require.NoError(t, conn.Close())
	return port
}

func TestCaptureAnswersSearchThenReturnsCredentialFromWakeup(t *testing.T) {
	port := pickPort(t)
	srv := NewServer(WithPort(port), WithDeviceName("test-device"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	resultCh := make(chan string, 1)
	errCh := make(chan error, 1)
	go func() {
		cred, err := srv.Capture(ctx, 2*time.Second)
		if err != nil {
			errCh <- err
			return
		}
		resultCh <- cred
	}()

	// Give the server a moment to bind.
	time.Sleep(50 * time.Millisecond)

	client, err := net.Dial("udp", fmt.Sprintf("127.0.0.1:%d", port))
	require.NoError(t, err)
	defer client.Close()

	_, err = client.Write([]byte(ddp.SearchMessage()))
	require.NoError(t, err)

	buf := make([]byte, 1024)
	client.SetReadDeadline(time.Now().Add(time.Second))
	n, err := client.Read(buf)
	require.NoError(t, err)
	resp := string(buf[:n])

	assert.True(t, strings.Contains(resp, "620 Server Standby"))
	assert.True(t, strings.Contains(resp, "host-type:PS4"))
	assert.True(t, strings.Contains(resp, "host-request-port:997"))
	assert.True(t, strings.Contains(resp, "host-name:test-device"))

	credential := strings.Repeat("AB", 32) // 64-char credential
	_, err = client.Write([]byte(ddp.WakeupMessage(credential)))
	require.NoError(t, err)

	select {
	case cred := <-resultCh:
		assert.Equal(t, credential, cred)
	case err := <-errCh:
		t.Fatalf("capture returned error: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for captured credential")
	}
}

func TestCaptureTimesOutWithoutWakeup(t *testing.T) {
	port := pickPort(t)
	srv := NewServer(WithPort(port))

	_, err := srv.Capture(context.Background(), 100*time.Millisecond)
	assert.ErrorIs(t, err, pyps4err.ErrCredentialTimeout)
}
