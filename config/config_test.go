package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "./payvault-data", cfg.DataDir)
	require.Equal(t, ":9190", cfg.MetricsAddress)
	require.Equal(t, "local", cfg.ServiceEnv)
	require.Equal(t, 100, cfg.LogMaxSizeMB)

	// The default file is persisted for the operator to edit.
	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestLoadExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`DataDir = "/var/lib/payvault"
MetricsAddress = ":9999"
LogFile = "/var/log/payvault/payvaultd.log"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/var/lib/payvault", cfg.DataDir)
	require.Equal(t, ":9999", cfg.MetricsAddress)
	require.Equal(t, "/var/log/payvault/payvaultd.log", cfg.LogFile)
	// Unset fields still pick up defaults.
	require.Equal(t, "local", cfg.ServiceEnv)
	require.Equal(t, 100, cfg.LogMaxSizeMB)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`DataDir = "./data"
RPCAddress = ":8080"
`), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown keys")
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("DataDir = [broken"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}
