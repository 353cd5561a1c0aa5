package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.hcl")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
listen_addr = ":9000"
log_level   = "debug"

store {
  base_url = "http://existdb:8080/exist/rest/db"
  username = "admin"
  password = "secret"
  timeout  = "20s"
}
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "http://existdb:8080/exist/rest/db", cfg.Store.BaseURL)

	clientCfg, err := cfg.Store.ClientConfig()
	require.NoError(t, err)
	assert.Equal(t, 20*time.Second, clientCfg.Timeout)
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
store {
  base_url = "http://existdb:8080/exist/rest/db"
  username = "admin"
  password = "secret"
}
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.ListenAddr)
	assert.Equal(t, "info", cfg.LogLevel)

	clientCfg, err := cfg.Store.ClientConfig()
	require.NoError(t, err)
	assert.Zero(t, clientCfg.Timeout)
}

func TestLoad_MissingPassword(t *testing.T) {
	// The store password is required and has no default.
	path := writeConfig(t, `
store {
  base_url = "http://existdb:8080/exist/rest/db"
  username = "admin"
  password = ""
}
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorContains(t, err, "store.password is required")
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := &Config{Store: &Store{Timeout: "soon"}}

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, "store.base_url is required")
	assert.ErrorContains(t, err, "store.username is required")
	assert.ErrorContains(t, err, "store.password is required")
	assert.ErrorContains(t, err, "store.timeout is not a valid duration")
}
