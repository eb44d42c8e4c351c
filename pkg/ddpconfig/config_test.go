package ddpconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "discovery:\n  max_polls: 3\n")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 3, cfg.Discovery.MaxPolls)
	require.Equal(t, 5*time.Second, cfg.Discovery.StandbyBackoff)
	require.Equal(t, 15*time.Second, cfg.Session.HeartbeatTimeout)
	require.Equal(t, "json", cfg.Store.Backend)
	require.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadConfigRejectsUnknownStoreBackend(t *testing.T) {
	path := writeConfig(t, "store:\n  backend: mongodb\n")
	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestLoadConfigRequiresPostgresHostForPostgresBackend(t *testing.T) {
	path := writeConfig(t, "store:\n  backend: postgres\n  postgres_dbname: pyps4\n")
	_, err := LoadConfig(path)
	require.Error(t, err)

	path = writeConfig(t, "store:\n  backend: postgres\n  postgres_host: localhost\n  postgres_dbname: pyps4\n")
	_, err = LoadConfig(path)
	require.NoError(t, err)
}

func TestLoadConfigRejectsInvalidLoggingLevel(t *testing.T) {
	path := writeConfig(t, "logging:\n  level: verbose\n")
	_, err := LoadConfig(path)
	require.Error(t, err)
}
