package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.RPCAddress)
	require.Equal(t, "./gent-data", cfg.DataDir)
	require.Equal(t, "gent-local", cfg.NetworkName)
	require.Equal(t, "development", cfg.Environment)

	// The default file must have been written for the next run.
	_, err = os.Stat(path)
	require.NoError(t, err)

	reloaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, reloaded)
}

func TestLoadParsesExistingConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
RPCAddress = ":9090"
DataDir = "/var/lib/gent"
NetworkName = "gent-testnet"
Environment = "staging"
EarlyAdopterBonusBps = 2500
MinStakeAmount = "1000000"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.RPCAddress)
	require.Equal(t, "/var/lib/gent", cfg.DataDir)
	require.Equal(t, "gent-testnet", cfg.NetworkName)
	require.Equal(t, "staging", cfg.Environment)
	require.Equal(t, uint64(2500), cfg.EarlyAdopterBonusBps)
	require.Equal(t, "1000000", cfg.MinStakeAmount)
}

func TestLoadFillsMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`RPCAddress = ":9090"`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.RPCAddress)
	require.Equal(t, "./gent-data", cfg.DataDir)
	require.Equal(t, "gent-local", cfg.NetworkName)
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`RPCAddress = [`), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}
