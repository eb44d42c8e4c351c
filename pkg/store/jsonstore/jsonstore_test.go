package jsonstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ps4golib/pyps4go/pkg/store"
)

func TestCredentialRoundTrip(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	_, ok, err := s.LoadCredential(context.Background())
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.SaveCredential(context.Background(), "deadbeef"))
	cred, ok, err := s.LoadCredential(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "deadbeef", cred)
}

func TestConsoleRegistrySaveUpdateDelete(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.SaveConsole(ctx, store.ConsoleRecord{Host: "10.0.0.5", HostName: "living-room"}))
	require.NoError(t, s.SaveConsole(ctx, store.ConsoleRecord{Host: "10.0.0.6", HostName: "bedroom"}))

	recs, err := s.LoadConsoles(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	// Saving again with the same host updates in place rather than duplicating.
	require.NoError(t, s.SaveConsole(ctx, store.ConsoleRecord{Host: "10.0.0.5", HostName: "renamed"}))
	recs, err = s.LoadConsoles(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	var names []string
	for _, r := range recs {
		names = append(names, r.HostName)
	}
	require.Contains(t, names, "renamed")
	require.Contains(t, names, "bedroom")

	require.NoError(t, s.DeleteConsole(ctx, "10.0.0.5"))
	recs, err = s.LoadConsoles(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, "10.0.0.6", recs[0].Host)
}

func TestGameCacheSaveLookup(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	_, ok, err := s.LookupTitleName(ctx, "CUSA00001")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.SaveTitleName(ctx, "CUSA00001", "Example Game"))
	name, ok, err := s.LookupTitleName(ctx, "CUSA00001")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Example Game", name)
}
