package discovery

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ps4golib/pyps4go/pkg/ddp"
)

// fakeConsole answers DDP datagrams like a real PS4 would, for driving the
// multiplexer's send/receive path without a live console on the network.
type fakeConsole struct {
	conn   net.PacketConn
	status string
	mu     sync.Mutex
	silent bool
}

func newFakeConsole(t *testing.T) *fakeConsole {
	t.Helper()
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	f := &fakeConsole{conn: conn, status: "200 Ok"}
	go f.serve()
	return f
}

func (f *fakeConsole) port() int {
	return f.conn.LocalAddr().(*net.UDPAddr).Port
}

func (f *fakeConsole) setStatus(s string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = s
}

func (f *fakeConsole) setSilent(silent bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.silent = silent
}

func (f *fakeConsole) serve() {
	buf := make([]byte, 2048)
	for {
		n, addr, err := f.conn.ReadFrom(buf)
		if err != nil {
			return
		}
		verb, err := ddp.ParseVerb(string(buf[:n]))
		if err != nil || verb != ddp.VerbSearch {
			continue
		}

		f.mu.Lock()
		silent := f.silent
		status := f.status
		f.mu.Unlock()
		if silent {
			continue
		}

		resp := ddp.BuildResponse(status, []ddp.KV{
			{Key: "host-id", Value: "AA11BB22"},
			{Key: "host-type", Value: "PS4"},
			{Key: "host-name", Value: "fake-ps4"},
			{Key: "host-request-port", Value: "997"},
			{Key: "running-app-titleid", Value: "CUSA00001"},
			{Key: "running-app-name", Value: "Test Game"},
		})
		_, _ = f.conn.WriteTo([]byte(resp), addr)
	}
}

func (f *fakeConsole) close() { f.conn.Close() }

func TestPollReceivesStatusAndFiresCallbackOnChange(t *testing.T) {
	ctx := context.Background()
	console := newFakeConsole(t)
	defer console.close()

	mux, err := New(ctx, WithDDPPort(console.port()))
	require.NoError(t, err)
	defer mux.Close()

	statuses := make(chan ddp.StatusMap, 10)
	unwatch := mux.Watch("127.0.0.1", func(status ddp.StatusMap, available bool) {
		if available {
			statuses <- status
		}
	})
	defer unwatch()

	require.NoError(t, mux.Poll("127.0.0.1"))

	select {
	case status := <-statuses:
		assert.Equal(t, 200, status.StatusCode)
		assert.Equal(t, "CUSA00001", status.RunningAppTitleID)
		assert.Equal(t, "Test Game", status.RunningAppName)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for status callback")
	}

	// Polling again with an unchanged status must not re-fire the callback.
	require.NoError(t, mux.Poll("127.0.0.1"))
	select {
	case status := <-statuses:
		t.Fatalf("unexpected second callback for unchanged status: %+v", status)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestUnreachableFiresOnceAfterMaxPolls(t *testing.T) {
	ctx := context.Background()
	mux, err := New(ctx, WithMaxPolls(2))
	require.NoError(t, err)
	defer mux.Close()

	// 127.0.0.2 answers nothing: nobody is listening there, but the send
	// itself still succeeds (UDP has no connect-time failure), so the
	// poll counters advance purely on the missing response.
	events := make(chan bool, 10)
	unwatch := mux.Watch("127.0.0.2", func(status ddp.StatusMap, available bool) {
		events <- available
	})
	defer unwatch()

	for i := 0; i < 3; i++ {
		require.NoError(t, mux.Poll("127.0.0.2"))
	}

	select {
	case available := <-events:
		assert.False(t, available)
	case <-time.After(time.Second):
		t.Fatal("expected an unreachable callback")
	}

	select {
	case available := <-events:
		t.Fatalf("unreachable callback fired more than once: available=%v", available)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestStandbyBackoffSuppressesFurtherSends(t *testing.T) {
	ctx := context.Background()
	console := newFakeConsole(t)
	defer console.close()
	console.setStatus("620 Server Standby")

	mux, err := New(ctx, WithStandbyBackoff(time.Hour), WithDDPPort(console.port()))
	require.NoError(t, err)
	defer mux.Close()

	statuses := make(chan ddp.StatusMap, 10)
	unwatch := mux.Watch("127.0.0.1", func(status ddp.StatusMap, available bool) {
		if available {
			statuses <- status
		}
	})
	defer unwatch()

	require.NoError(t, mux.Poll("127.0.0.1"))
	select {
	case status := <-statuses:
		assert.True(t, status.IsStandby())
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for standby status")
	}

	console.setSilent(true)
	require.NoError(t, mux.Poll("127.0.0.1")) // must be a silent no-op now

	select {
	case status := <-statuses:
		t.Fatalf("unexpected status during backoff window: %+v", status)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatchPruneRemovesEmptyHostEntry(t *testing.T) {
	ctx := context.Background()
	mux, err := New(ctx)
	require.NoError(t, err)
	defer mux.Close()

	unwatch := mux.Watch("127.0.0.3", func(ddp.StatusMap, bool) {})
	mux.mu.Lock()
	_, present := mux.observers["127.0.0.3"]
	mux.mu.Unlock()
	assert.True(t, present)

	unwatch()
	mux.mu.Lock()
	_, present = mux.observers["127.0.0.3"]
	mux.mu.Unlock()
	assert.False(t, present)
}
